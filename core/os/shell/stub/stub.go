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

// Package stub provides fake shell targets for tests.
package stub

import (
	"fmt"
	"regexp"

	"github.com/gpuforge/kcc/core/os/shell"
)

// UnhandledCmdError is the error returned by stub targets that do not match
// the command they are asked to start.
type UnhandledCmdError shell.Cmd

func (u UnhandledCmdError) Error() string {
	return fmt.Sprint("unmatched:", shell.Cmd(u))
}

// Respond returns a target that always writes response to stdout and
// succeeds.
func Respond(response string) shell.Target {
	return &Response{Stdout: response}
}

// Regex returns a target that only handles command lines matching pattern.
func Regex(pattern string, handler shell.Target) shell.Target {
	return &RegexpTarget{Match: regexp.MustCompile(pattern), Target: handler}
}
