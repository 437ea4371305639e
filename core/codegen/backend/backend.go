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

// Package backend registers the LLVM code generation backends with the
// process. Registration happens at most once no matter how many compilers
// are constructed.
package backend

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gpuforge/kcc/core/codegen/amdgpu"
	"github.com/gpuforge/kcc/core/fault"
	"github.com/gpuforge/kcc/core/log"

	"tinygo.org/x/go-llvm"
)

// Family is the name of the GPU target family that must be present.
const Family = "AMDGPU"

// ErrInit is matched by every *InitError.
const ErrInit = fault.Const("Backend initialization failed")

// InitError is returned when a backend component could not be registered.
type InitError struct {
	// Component is the part of the backend that failed.
	Component string
	// Cause is the underlying failure.
	Cause error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("%v: %v\n   Cause: %v", ErrInit, e.Component, e.Cause)
}

func (e *InitError) Unwrap() error        { return e.Cause }
func (e *InitError) Is(target error) bool { return target == ErrInit }

// State reports which backend components were registered.
type State struct {
	// Targets is true once all the LLVM target infos, targets, MC layers and
	// assembly printers are registered.
	Targets bool
	// Native is true once host code generation is available.
	Native bool
	// NativeAsmPrinter is true once host assembly printing is available.
	NativeAsmPrinter bool
	// GPU is true once the AMDGPU target family resolved.
	GPU bool
}

var (
	once          sync.Once
	registrations int32
	state         State
	initErr       error
)

// Ensure registers the backends with the process. Only the first call does
// any work; every call returns the result of that first registration.
func Ensure(ctx context.Context) error {
	once.Do(func() {
		atomic.AddInt32(&registrations, 1)
		initErr = register(log.Enter(ctx, "backend.Ensure"))
	})
	return initErr
}

func register(ctx context.Context) error {
	llvm.InitializeAllTargetInfos()
	llvm.InitializeAllTargets()
	llvm.InitializeAllTargetMCs()
	llvm.InitializeAllAsmPrinters()
	state.Targets = true

	if err := llvm.InitializeNativeTarget(); err != nil {
		return &InitError{Component: "native target", Cause: err}
	}
	state.Native = true

	if err := llvm.InitializeNativeAsmPrinter(); err != nil {
		return &InitError{Component: "native assembly printer", Cause: err}
	}
	state.NativeAsmPrinter = true

	if _, err := llvm.GetTargetFromTriple(amdgpu.HSA.String()); err != nil {
		return &InitError{Component: Family + " target", Cause: err}
	}
	state.GPU = true

	log.D(ctx, "LLVM backends registered")
	return nil
}

// Registrations returns the number of times registration has run.
// It never exceeds 1.
func Registrations() int {
	return int(atomic.LoadInt32(&registrations))
}

// Registered returns the state of the backend registration.
// It is the zero State if Ensure has never been called.
func Registered() State {
	if Registrations() == 0 {
		return State{}
	}
	Ensure(context.Background())
	return state
}

// Target returns the LLVM target for triple, registering the backends first
// if needed.
func Target(ctx context.Context, triple string) (llvm.Target, error) {
	if err := Ensure(ctx); err != nil {
		return llvm.Target{}, err
	}
	t, err := llvm.GetTargetFromTriple(triple)
	if err != nil {
		return llvm.Target{}, &InitError{Component: fmt.Sprintf("target for triple '%v'", triple), Cause: err}
	}
	return t, nil
}
