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
	"fmt"

	"github.com/gpuforge/kcc/core/fault"
)

const (
	// ErrAllocation is matched by every *AllocationError.
	ErrAllocation = fault.Const("Module allocation failed")
	// ErrParse is matched by every *ParseError.
	ErrParse = fault.Const("IR parse failed")
	// ErrOptimization is matched by every *OptimizationError.
	ErrOptimization = fault.Const("Optimization failed")
	// ErrVerification is matched by every *VerificationError.
	ErrVerification = fault.Const("Module verification failed")
	// ErrTargetMismatch is matched by every *TargetMismatchError.
	ErrTargetMismatch = fault.Const("Module target mismatch")
	// ErrEmission is matched by every *EmissionError.
	ErrEmission = fault.Const("Code object emission failed")
	// ErrMachine is the cause used when no target machine could be created.
	ErrMachine = fault.Const("Target machine creation failed")
	// ErrUnknownProcessor is the cause used when LLVM does not know the
	// architecture's processor.
	ErrUnknownProcessor = fault.Const("Unknown processor")
)

// AllocationError is returned when a module could not be created in a
// session.
type AllocationError struct {
	Module string
	Reason string
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("%v: %v (%v)", ErrAllocation, e.Module, e.Reason)
}

func (e *AllocationError) Is(target error) bool { return target == ErrAllocation }

// ParseError is returned when IR text could not be parsed into a module.
type ParseError struct {
	Module string
	// Diagnostics is the parser's message, unmodified.
	Diagnostics string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v for %v:\n%v", ErrParse, e.Module, e.Diagnostics)
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// OptimizationError is returned when the pass pipeline could not be built or
// run.
type OptimizationError struct {
	Module   string
	Pipeline string
	Cause    error
}

func (e *OptimizationError) Error() string {
	return fmt.Sprintf("%v for %v with '%v'\n   Cause: %v", ErrOptimization, e.Module, e.Pipeline, e.Cause)
}

func (e *OptimizationError) Unwrap() error        { return e.Cause }
func (e *OptimizationError) Is(target error) bool { return target == ErrOptimization }

// VerificationError is returned when a module is structurally invalid.
type VerificationError struct {
	Module string
	// Diagnostics is the verifier's report, unmodified.
	Diagnostics string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("%v for %v:\n%v", ErrVerification, e.Module, e.Diagnostics)
}

func (e *VerificationError) Is(target error) bool { return target == ErrVerification }

// TargetMismatchError is returned when a module's triple differs from the
// triple of the machine asked to emit it.
type TargetMismatchError struct {
	Module  string
	Got     string
	Machine string
}

func (e *TargetMismatchError) Error() string {
	return fmt.Sprintf("%v: %v has triple '%v', machine has '%v'", ErrTargetMismatch, e.Module, e.Got, e.Machine)
}

func (e *TargetMismatchError) Is(target error) bool { return target == ErrTargetMismatch }

// EmissionError is returned when the target machine failed to produce a
// code object.
type EmissionError struct {
	Module string
	Cause  error
}

func (e *EmissionError) Error() string {
	return fmt.Sprintf("%v for %v\n   Cause: %v", ErrEmission, e.Module, e.Cause)
}

func (e *EmissionError) Unwrap() error        { return e.Cause }
func (e *EmissionError) Is(target error) bool { return target == ErrEmission }
