// Copyright (C) 2017 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package codegen

import (
	"tinygo.org/x/go-llvm"
)

// Module is a unit of IR owned by a Session.
type Module struct {
	llvm     llvm.Module
	session  *Session
	name     string
	released bool
}

// Name returns the module's name.
func (m *Module) Name() string { return m.name }

// Triple returns the module's target triple.
func (m *Module) Triple() string { return m.llvm.Target() }

// DataLayout returns the module's data layout string.
func (m *Module) DataLayout() string { return m.llvm.DataLayout() }

// String returns the module's IR text.
func (m *Module) String() string { return m.llvm.String() }

// Verify checks the structural correctness of the module.
func (m *Module) Verify() error {
	if err := llvm.VerifyModule(m.llvm, llvm.ReturnStatusAction); err != nil {
		return &VerificationError{Module: m.name, Diagnostics: err.Error()}
	}
	return nil
}

// Release destroys the module. Calling Release more than once has no effect.
func (m *Module) Release() {
	if m.released {
		return
	}
	m.released = true
	if !m.session.disposed {
		m.llvm.Dispose()
	}
	m.session.stats.Released++
}
