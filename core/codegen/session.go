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

// Package codegen turns textual LLVM IR into AMD GPU code objects.
//
// A Session owns an LLVM context and the modules allocated in it.
// A Pipeline optimizes a module and a Machine verifies and emits it.
package codegen

import (
	"context"
	"os"

	"github.com/gpuforge/kcc/core/codegen/amdgpu"
	"github.com/gpuforge/kcc/core/fault"
	"github.com/gpuforge/kcc/core/log"
	"github.com/gpuforge/kcc/core/text"

	"tinygo.org/x/go-llvm"
)

// ModulePrefix is the prefix of every module name. The architecture is
// appended to it.
const ModulePrefix = "kernel"

// Stats counts the modules a session has allocated and released.
type Stats struct {
	Allocated int
	Released  int
}

// Live returns the number of modules allocated and not yet released.
func (s Stats) Live() int { return s.Allocated - s.Released }

// Session holds the LLVM context that modules for one architecture are
// created in. A Session is not safe for concurrent use.
type Session struct {
	// ScratchDir holds the transient IR files used while parsing.
	// Empty means os.TempDir.
	ScratchDir string

	arch     amdgpu.Architecture
	triple   string
	layout   string
	llvm     llvm.Context
	stats    Stats
	disposed bool
}

// NewSession returns a new session whose modules target the same triple and
// data layout as machine.
func NewSession(arch amdgpu.Architecture, machine *Machine) *Session {
	return &Session{
		arch:   arch,
		triple: machine.Triple(),
		layout: machine.DataLayout(),
		llvm:   llvm.NewContext(),
	}
}

// ModuleName returns the name given to modules created by the session.
func (s *Session) ModuleName() string { return ModulePrefix + "." + s.arch.String() }

// Stats returns the module counters of the session.
func (s *Session) Stats() Stats { return s.stats }

// NewModule allocates an empty module with the session's triple and data
// layout. The module must be released with Module.Release.
func (s *Session) NewModule(ctx context.Context) (*Module, error) {
	name := s.ModuleName()
	if s.disposed {
		return nil, &AllocationError{Module: name, Reason: "session disposed"}
	}
	mod := s.llvm.NewModule(name)
	if mod.C == nil {
		return nil, &AllocationError{Module: name, Reason: "out of memory"}
	}
	mod.SetTarget(s.triple)
	mod.SetDataLayout(s.layout)
	s.stats.Allocated++
	log.D(ctx, "Allocated module %v", name)
	return &Module{llvm: mod, session: s, name: name}, nil
}

// Load allocates a module and fills it with the parsed IR text.
// If parsing fails the module is released before Load returns.
func (s *Session) Load(ctx context.Context, ir string) (*Module, error) {
	ctx = log.Enter(ctx, "Load")
	m, err := s.NewModule(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.parseInto(ctx, m, ir); err != nil {
		m.Release()
		return nil, err
	}
	return m, nil
}

// parseInto parses ir in the session context and links the result into m.
// The parsed module is consumed by the link. IR declaring a triple other
// than the session's is rejected before linking.
func (s *Session) parseInto(ctx context.Context, m *Module, ir string) error {
	path, err := s.writeScratch(ir)
	if err != nil {
		return &ParseError{Module: m.name, Diagnostics: err.Error()}
	}
	defer os.Remove(path)

	buf, err := llvm.NewMemoryBufferFromFile(path)
	if err != nil {
		return &ParseError{Module: m.name, Diagnostics: err.Error()}
	}
	parsed, err := s.llvm.ParseIR(buf)
	if err != nil {
		log.D(ctx, "Unparsable IR:\n%v", text.LineNumber(ir))
		return &ParseError{Module: m.name, Diagnostics: err.Error()}
	}
	if got := parsed.Target(); got != "" && got != s.triple {
		parsed.Dispose()
		return &TargetMismatchError{Module: m.name, Got: got, Machine: s.triple}
	}
	if err := llvm.LinkModules(m.llvm, parsed); err != nil {
		return &ParseError{Module: m.name, Diagnostics: err.Error()}
	}
	return nil
}

func (s *Session) writeScratch(ir string) (string, error) {
	file, err := os.CreateTemp(s.ScratchDir, ModulePrefix+"-*.ll")
	if err != nil {
		return "", err
	}
	errs := fault.One{}
	_, werr := file.WriteString(ir)
	errs.Collect(werr)
	errs.Collect(file.Close())
	if err := errs.First(); err != nil {
		os.Remove(file.Name())
		return "", err
	}
	return file.Name(), nil
}

// Dispose destroys the session's context. Modules still live are destroyed
// with it and must not be used afterwards.
func (s *Session) Dispose(ctx context.Context) {
	if s.disposed {
		return
	}
	if live := s.stats.Live(); live != 0 {
		log.W(ctx, "Disposing session with %d live modules", live)
	}
	s.disposed = true
	s.llvm.Dispose()
}
