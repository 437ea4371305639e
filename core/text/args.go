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

// Package text holds helpers for splitting and annotating text.
package text

import (
	"strings"
	"unicode"
)

// SplitArgs splits s into command line arguments separated by unquoted
// whitespace. Double and single quotes group words; a backslash outside
// single quotes escapes the next rune.
func SplitArgs(s string) []string {
	out := []string{}
	b := strings.Builder{}
	started := false
	var quote rune
	escaping := false
	for _, r := range s {
		switch {
		case escaping:
			b.WriteRune(r)
			escaping = false
		case r == '\\' && quote != '\'':
			escaping, started = true, true
		case quote != 0 && r == quote:
			quote = 0
		case quote == 0 && (r == '"' || r == '\''):
			quote, started = r, true
		case quote == 0 && unicode.IsSpace(r):
			if started {
				out = append(out, b.String())
				b.Reset()
				started = false
			}
		default:
			b.WriteRune(r)
			started = true
		}
	}
	if started {
		out = append(out, b.String())
	}
	return out
}
