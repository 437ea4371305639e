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

// Package amdgpu describes the AMD GPU processors the compiler can target.
package amdgpu

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gpuforge/kcc/core/fault"
)

// ErrInvalidArchitecture is returned by Parse for malformed processor names.
const ErrInvalidArchitecture = fault.Const("Invalid GPU architecture")

// Architecture is a target id naming a GPU processor, optionally followed by
// target features, for example "gfx1100" or "gfx90a:xnack+".
type Architecture string

var targetID = regexp.MustCompile(`^gfx[0-9a-f]{3,4}(:(sramecc|xnack)[+-])*$`)

// Parse validates s as a target id.
func Parse(s string) (Architecture, error) {
	s = strings.TrimSpace(s)
	if !targetID.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidArchitecture, s)
	}
	return Architecture(s), nil
}

func (a Architecture) String() string { return string(a) }

// Processor returns the processor name without target features.
// It is the CPU the target machine is created for.
func (a Architecture) Processor() string {
	p, _, _ := strings.Cut(string(a), ":")
	return p
}

// Features returns the LLVM subtarget features encoded in the target id.
// "gfx90a:xnack+:sramecc-" yields ["+xnack", "-sramecc"].
func (a Architecture) Features() []string {
	parts := strings.Split(string(a), ":")[1:]
	out := make([]string, len(parts))
	for i, f := range parts {
		out[i] = f[len(f)-1:] + f[:len(f)-1]
	}
	return out
}

// Triple returns the target triple code objects for a are built for.
// The processor is not part of the triple.
func (a Architecture) Triple() Triple { return HSA }
