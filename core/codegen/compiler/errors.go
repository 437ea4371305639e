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

package compiler

import (
	"fmt"

	"github.com/gpuforge/kcc/core/codegen/amdgpu"
	"github.com/gpuforge/kcc/core/fault"
)

const (
	// ErrCompile is matched by every *CompileError.
	ErrCompile = fault.Const("Compile failed")
	// ErrDisassemble is matched by every *DisassembleError.
	ErrDisassemble = fault.Const("Disassemble failed")
	// ErrClosed is returned by calls on a closed compiler.
	ErrClosed = fault.Const("Compiler closed")
)

// Stage identifies the step of a compile that failed.
type Stage int

const (
	StageFrontend Stage = iota
	StageAllocate
	StageParse
	StageOptimize
	StageEmit
)

func (s Stage) String() string {
	switch s {
	case StageFrontend:
		return "frontend"
	case StageAllocate:
		return "allocate"
	case StageParse:
		return "parse"
	case StageOptimize:
		return "optimize"
	case StageEmit:
		return "emit"
	default:
		return fmt.Sprintf("Stage<%d>", int(s))
	}
}

// CompileError wraps the failure of a single compile. The stage error it
// wraps is returned by Cause and is reachable with errors.As.
type CompileError struct {
	Arch  amdgpu.Architecture
	Stage Stage
	Err   error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%v for %v at %v\n   Cause: %v", ErrCompile, e.Arch, e.Stage, e.Err)
}

// Cause returns the stage error.
func (e *CompileError) Cause() error         { return e.Err }
func (e *CompileError) Unwrap() error        { return e.Err }
func (e *CompileError) Is(target error) bool { return target == ErrCompile }

// DisassembleError is returned when the disassembler could not process a
// code object.
type DisassembleError struct {
	Arch        amdgpu.Architecture
	Diagnostics string
	Err         error
}

func (e *DisassembleError) Error() string {
	if e.Diagnostics == "" {
		return fmt.Sprintf("%v for %v\n   Cause: %v", ErrDisassemble, e.Arch, e.Err)
	}
	return fmt.Sprintf("%v for %v:\n%v", ErrDisassemble, e.Arch, e.Diagnostics)
}

func (e *DisassembleError) Unwrap() error        { return e.Err }
func (e *DisassembleError) Is(target error) bool { return target == ErrDisassemble }
