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

// Package shell runs external processes, such as the kernel frontend and the
// disassembler, through a replaceable Target.
package shell

import "context"

// Target is the interface for something that can start a process.
type Target interface {
	// Start begins a new process on the target, returning the Process that
	// represents it.
	Start(cmd Cmd) (Process, error)
}

// Process is the interface to a running process, as started by a Target.
type Process interface {
	// Wait blocks until the process has completed, or the context is
	// cancelled.
	Wait(ctx context.Context) error
	// Kill causes the process to exit immediately.
	Kill() error
}
