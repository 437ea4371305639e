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

// Package compiler compiles GPU kernel source into code objects for a single
// architecture and disassembles the result.
package compiler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/gpuforge/kcc/core/codegen"
	"github.com/gpuforge/kcc/core/codegen/amdgpu"
	"github.com/gpuforge/kcc/core/codegen/backend"
	"github.com/gpuforge/kcc/core/codegen/frontend"
	"github.com/gpuforge/kcc/core/log"
	"github.com/gpuforge/kcc/core/os/shell"
)

// CacheKeyPrefix is prepended to the architecture to form the cache key.
const CacheKeyPrefix = "compiler_hip_"

// Compiler compiles kernel source for one architecture.
// Calls to Compile are serialized; a Compiler may be shared between
// goroutines.
type Compiler struct {
	arch         amdgpu.Architecture
	frontend     *frontend.Frontend
	machine      *codegen.Machine
	session      *codegen.Session
	pipeline     *codegen.Pipeline
	disassembler shell.Cmd

	state   int32
	outcome int32
	mutex   sync.Mutex
	closed  bool
}

// New returns a compiler for arch. The LLVM backends are registered on first
// use. If they cannot be, or arch is not a valid target id, New fails with an
// error matching backend.ErrInit.
func New(ctx context.Context, arch string, opts ...Option) (*Compiler, error) {
	ctx = log.Enter(ctx, "compiler.New")
	a, err := amdgpu.Parse(arch)
	if err != nil {
		return nil, &backend.InitError{Component: "architecture", Cause: err}
	}
	o := defaults()
	for _, opt := range opts {
		opt(&o)
	}
	machine, err := codegen.NewMachine(ctx, a, o.features)
	if err != nil {
		return nil, err
	}
	machine.SetObjectWriter(o.objectWriter)
	c := &Compiler{
		arch:         a,
		frontend:     o.frontend,
		machine:      machine,
		session:      codegen.NewSession(a, machine),
		pipeline:     codegen.NewPipeline(o.passes...),
		disassembler: o.disassembler,
	}
	c.session.ScratchDir = o.scratchDir
	c.setState(ctx, Ready)
	return c, nil
}

// Arch returns the architecture the compiler targets.
func (c *Compiler) Arch() amdgpu.Architecture { return c.arch }

// Triple returns the target triple of the emitted code objects.
func (c *Compiler) Triple() string { return c.machine.Triple() }

// CacheKey returns the key under which the compiler's results are cached.
// It is unique per architecture.
func (c *Compiler) CacheKey() string { return CacheKeyPrefix + c.arch.String() }

// Passes returns the optimization passes the compiler runs.
func (c *Compiler) Passes() []string { return c.pipeline.Passes() }

// Stats returns the module counters of the compiler's session.
func (c *Compiler) Stats() codegen.Stats {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.session.Stats()
}

// Compile translates source to IR, optimizes it and returns the code object.
// On failure the returned error is a *CompileError and no module is left
// allocated.
func (c *Compiler) Compile(ctx context.Context, source string) ([]byte, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	ctx = log.Enter(ctx, "Compile")
	ctx = log.V{"arch": c.arch}.Bind(ctx)
	if c.closed {
		return nil, ErrClosed
	}

	c.setState(ctx, Compiling)
	obj, stage, err := c.compile(ctx, source)
	if err != nil {
		c.finish(ctx, Failed)
		return nil, &CompileError{Arch: c.arch, Stage: stage, Err: err}
	}
	c.finish(ctx, Succeeded)
	return obj, nil
}

func (c *Compiler) compile(ctx context.Context, source string) ([]byte, Stage, error) {
	ir, err := c.frontend.Translate(ctx, source, c.arch)
	if err != nil {
		return nil, StageFrontend, err
	}

	m, err := c.session.Load(ctx, ir)
	if err != nil {
		if errors.Is(err, codegen.ErrAllocation) {
			return nil, StageAllocate, err
		}
		return nil, StageParse, err
	}
	defer m.Release()

	if err := c.pipeline.Apply(ctx, m, c.machine); err != nil {
		return nil, StageOptimize, err
	}

	obj, err := c.machine.Emit(ctx, m)
	if err != nil {
		return nil, StageEmit, err
	}
	return obj, StageEmit, nil
}

// Close releases the compiler's LLVM resources. The compiler cannot be used
// afterwards.
func (c *Compiler) Close(ctx context.Context) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.session.Dispose(ctx)
	c.machine.Dispose()
}

func (c *Compiler) setState(ctx context.Context, s State) {
	atomic.StoreInt32(&c.state, int32(s))
	log.D(ctx, "State: %v", s)
}

// finish records the outcome of a compile and makes the compiler ready for
// the next one.
func (c *Compiler) finish(ctx context.Context, outcome State) {
	atomic.StoreInt32(&c.outcome, int32(outcome))
	c.setState(ctx, outcome)
	c.setState(ctx, Ready)
}
