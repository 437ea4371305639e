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
	"bytes"
	"context"
	"debug/elf"
	"encoding/binary"
	"strings"

	"github.com/gpuforge/kcc/core/codegen/amdgpu"
	"github.com/gpuforge/kcc/core/codegen/backend"
	"github.com/gpuforge/kcc/core/log"

	"tinygo.org/x/go-llvm"
)

// DefaultFeatures selects the code object format version emitted.
const DefaultFeatures = "+code-object-v3"

const (
	optLevel   = llvm.CodeGenLevelAggressive
	relocModel = llvm.RelocPIC
	codeModel  = llvm.CodeModelSmall
)

// ObjectWriter lowers a verified module to a relocatable object file.
type ObjectWriter func(tm llvm.TargetMachine, mod llvm.Module) ([]byte, error)

// WriteObject is the ObjectWriter machines use unless told otherwise.
func WriteObject(tm llvm.TargetMachine, mod llvm.Module) ([]byte, error) {
	buf, err := tm.EmitToMemoryBuffer(mod, llvm.ObjectFile)
	if err != nil {
		return nil, err
	}
	defer buf.Dispose()
	return buf.Bytes(), nil
}

// Machine produces code objects for one GPU architecture.
type Machine struct {
	arch     amdgpu.Architecture
	triple   string
	features string
	layout   string
	llvm     llvm.TargetMachine
	write    ObjectWriter
}

// NewMachine returns a machine for arch. features is the comma separated
// subtarget feature list; the features named by the architecture's target id
// are appended to it.
func NewMachine(ctx context.Context, arch amdgpu.Architecture, features string) (*Machine, error) {
	triple := arch.Triple().String()
	target, err := backend.Target(ctx, triple)
	if err != nil {
		return nil, err
	}
	all := []string{}
	if features != "" {
		all = append(all, features)
	}
	all = append(all, arch.Features()...)
	m := &Machine{
		arch:     arch,
		triple:   triple,
		features: strings.Join(all, ","),
		write:    WriteObject,
	}
	m.llvm = target.CreateTargetMachine(triple, arch.Processor(), m.features, optLevel, relocModel, codeModel)
	if m.llvm.C == nil {
		return nil, &backend.InitError{Component: "target machine for " + arch.String(), Cause: ErrMachine}
	}
	td := m.llvm.CreateTargetData()
	m.layout = td.String()
	td.Dispose()
	if err := m.checkProcessor(); err != nil {
		m.Dispose()
		return nil, err
	}
	log.D(ctx, "Created target machine %v %v '%v'", triple, arch.Processor(), m.features)
	return m, nil
}

// ELF64 e_flags offset and the AMDGPU machine field within it.
const (
	elfFlagsOffset = 48
	elfMachMask    = 0xff
)

// checkProcessor emits an empty module and inspects the object header.
// LLVM falls back to a generic processor for names it does not know, which
// leaves the AMDGPU machine field of e_flags zero.
func (m *Machine) checkProcessor() error {
	fail := func(cause error) error {
		return &backend.InitError{Component: "processor " + m.arch.Processor(), Cause: cause}
	}
	c := llvm.NewContext()
	defer c.Dispose()
	mod := c.NewModule(ModulePrefix + ".processor")
	mod.SetTarget(m.triple)
	mod.SetDataLayout(m.layout)
	obj, err := WriteObject(m.llvm, mod)
	if err != nil {
		return fail(err)
	}
	f, err := elf.NewFile(bytes.NewReader(obj))
	if err != nil {
		return fail(err)
	}
	defer f.Close()
	if f.Class != elf.ELFCLASS64 || f.Machine != elf.EM_AMDGPU || len(obj) < elfFlagsOffset+4 {
		return fail(ErrUnknownProcessor)
	}
	if binary.LittleEndian.Uint32(obj[elfFlagsOffset:])&elfMachMask == 0 {
		return fail(ErrUnknownProcessor)
	}
	return nil
}

// SetObjectWriter replaces the function used to lower modules in Emit.
// A nil writer restores WriteObject.
func (m *Machine) SetObjectWriter(w ObjectWriter) {
	if w == nil {
		w = WriteObject
	}
	m.write = w
}

// Arch returns the machine's architecture.
func (m *Machine) Arch() amdgpu.Architecture { return m.arch }

// Triple returns the triple the machine emits for.
func (m *Machine) Triple() string { return m.triple }

// Features returns the subtarget features the machine was created with.
func (m *Machine) Features() string { return m.features }

// DataLayout returns the machine's data layout string.
func (m *Machine) DataLayout() string { return m.layout }

// Emit verifies mod and returns its relocatable code object.
// A module whose triple differs from the machine's is rejected before it is
// verified.
func (m *Machine) Emit(ctx context.Context, mod *Module) ([]byte, error) {
	ctx = log.Enter(ctx, "Emit")
	if got := mod.Triple(); got != m.triple {
		return nil, &TargetMismatchError{Module: mod.name, Got: got, Machine: m.triple}
	}
	if err := mod.Verify(); err != nil {
		return nil, err
	}
	obj, err := m.write(m.llvm, mod.llvm)
	if err != nil {
		return nil, &EmissionError{Module: mod.name, Cause: err}
	}
	log.D(ctx, "Emitted %d bytes for %v", len(obj), mod.name)
	return obj, nil
}

// Dispose destroys the underlying target machine.
func (m *Machine) Dispose() {
	if m.llvm.C != nil {
		m.llvm.Dispose()
		m.llvm.C = nil
	}
}
