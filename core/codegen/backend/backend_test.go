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

package backend_test

import (
	"sync"
	"testing"

	"github.com/gpuforge/kcc/core/assert"
	"github.com/gpuforge/kcc/core/codegen/amdgpu"
	"github.com/gpuforge/kcc/core/codegen/backend"
	"github.com/gpuforge/kcc/core/log"
)

func TestEnsureRegistersOnce(t *testing.T) {
	ctx := log.Testing(t)
	const callers = 16
	errs := make([]error, callers)
	wg := sync.WaitGroup{}
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = backend.Ensure(ctx)
		}(i)
	}
	wg.Wait()
	for i := range errs {
		assert.For(ctx, "errs[%d]", i).That(errs[i]).Equals(errs[0])
	}
	assert.For(ctx, "registrations").ThatInteger(backend.Registrations()).Equals(1)

	// Subsequent calls never re-register.
	backend.Ensure(ctx)
	assert.For(ctx, "registrations").ThatInteger(backend.Registrations()).Equals(1)

	if errs[0] != nil {
		assert.For(ctx, "err").ThatError(errs[0]).Is(backend.ErrInit)
		return
	}
	state := backend.Registered()
	assert.For(ctx, "targets").That(state.Targets).Equals(true)
	assert.For(ctx, "native").That(state.Native).Equals(true)
	assert.For(ctx, "gpu").That(state.GPU).Equals(true)
}

func TestTarget(t *testing.T) {
	ctx := log.Testing(t)
	if err := backend.Ensure(ctx); err != nil {
		t.Skipf("LLVM backends unavailable: %v", err)
	}
	target, err := backend.Target(ctx, amdgpu.HSA.String())
	assert.For(ctx, "err").ThatError(err).Succeeded()
	assert.For(ctx, "name").ThatString(target.Name()).Equals("amdgcn")

	_, err = backend.Target(ctx, "nonsense-unknown-none")
	assert.For(ctx, "bad triple").ThatError(err).Is(backend.ErrInit)
}

