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
	"sync/atomic"
)

// State is the lifecycle state of a Compiler.
type State int32

const (
	// Constructed is the state before the backends are ready.
	Constructed State = iota
	// Ready means the compiler can accept a compile.
	Ready
	// Compiling means a compile is in progress.
	Compiling
	// Succeeded is the outcome of a compile that produced a code object.
	Succeeded
	// Failed is the outcome of a compile that returned an error.
	Failed
)

func (s State) String() string {
	switch s {
	case Constructed:
		return "Constructed"
	case Ready:
		return "Ready"
	case Compiling:
		return "Compiling"
	case Succeeded:
		return "Succeeded"
	case Failed:
		return "Failed"
	default:
		return fmt.Sprintf("State<%d>", int32(s))
	}
}

// State returns the current state of the compiler.
func (c *Compiler) State() State { return State(atomic.LoadInt32(&c.state)) }

// LastOutcome returns Succeeded or Failed for the most recent compile, or
// Constructed if nothing has been compiled yet.
func (c *Compiler) LastOutcome() State { return State(atomic.LoadInt32(&c.outcome)) }
