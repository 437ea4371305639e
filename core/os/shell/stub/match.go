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

package stub

import (
	"context"
	"fmt"
	"regexp"

	"github.com/gpuforge/kcc/core/os/shell"
)

// RegexpTarget handles commands whose formatted command line matches Match.
type RegexpTarget struct {
	Match  *regexp.Regexp
	Target shell.Target
}

// Start implements shell.Target.
func (t *RegexpTarget) Start(cmd shell.Cmd) (shell.Process, error) {
	if !t.Match.MatchString(fmt.Sprint(cmd)) {
		return nil, UnhandledCmdError(cmd)
	}
	return t.Target.Start(cmd)
}

// Func adapts a function into a shell.Target that always succeeds to start.
// The function runs when the process is waited on; its returned error is the
// process result.
type Func func(cmd shell.Cmd) error

// Start implements shell.Target.
func (f Func) Start(cmd shell.Cmd) (shell.Process, error) {
	return &funcProcess{cmd: cmd, f: f}, nil
}

type funcProcess struct {
	cmd shell.Cmd
	f   Func
}

func (p *funcProcess) Wait(ctx context.Context) error { return p.f(p.cmd) }
func (p *funcProcess) Kill() error                    { return nil }
