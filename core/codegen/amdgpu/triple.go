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

package amdgpu

import "strings"

// Triple is an LLVM target triple in the form:
//
//	<arch>-<vendor>-<os>[-<environment>]
//
// Empty components are left out rather than joined as blank fields.
//
// References:
// https://llvm.org/docs/AMDGPUUsage.html#target-triples
type Triple struct {
	Arch        string
	Vendor      string
	OS          string
	Environment string
}

// HSA is the triple for code objects loaded by the HSA runtime.
var HSA = Triple{Arch: "amdgcn", Vendor: "amd", OS: "amdhsa"}

func (t Triple) String() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{t.Arch, t.Vendor, t.OS, t.Environment} {
		if p = strings.Trim(p, "- "); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "-")
}
