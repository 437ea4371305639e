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
	"bytes"
	"context"
	"strings"

	"github.com/gpuforge/kcc/core/log"
)

// EndOfCodeMarker is the padding instruction the assembler appends after the
// last kernel. Lines containing it are left out of disassembly listings.
const EndOfCodeMarker = "s_code_end"

// DisassemblerArgs returns the arguments appended to the disassembler
// command. The code object is read from standard input.
func (c *Compiler) DisassemblerArgs() []string {
	return []string{
		"--triple=" + c.Triple(),
		"--mcpu=" + c.arch.Processor(),
		"-",
	}
}

// Disassemble returns the listing of a code object produced by Compile.
// The listing is also logged at Info severity.
func (c *Compiler) Disassemble(ctx context.Context, object []byte) (string, error) {
	ctx = log.Enter(ctx, "Disassemble")
	ctx = log.V{"arch": c.arch}.Bind(ctx)

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := c.disassembler.
		With(c.DisassemblerArgs()...).
		Read(bytes.NewReader(object)).
		Capture(stdout, stderr)
	if err := cmd.Run(ctx); err != nil {
		return "", &DisassembleError{Arch: c.arch, Diagnostics: stderr.String(), Err: err}
	}
	listing := FilterListing(stdout.String())
	log.I(ctx, "%s", listing)
	return listing, nil
}

// FilterListing removes the end of code padding lines from a listing.
func FilterListing(listing string) string {
	lines := strings.SplitAfter(listing, "\n")
	out := strings.Builder{}
	for _, line := range lines {
		if !strings.Contains(line, EndOfCodeMarker) {
			out.WriteString(line)
		}
	}
	return out.String()
}
