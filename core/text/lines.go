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

package text

import (
	"fmt"
	"strconv"
	"strings"
)

// LineNumber returns s with each line prefixed by its 1-based line number,
// right aligned to the widest number.
func LineNumber(s string) string {
	lines := strings.Split(s, "\n")
	width := len(strconv.Itoa(len(lines)))
	for i, l := range lines {
		if l == "" {
			lines[i] = fmt.Sprintf("%*d:", width, i+1)
		} else {
			lines[i] = fmt.Sprintf("%*d: %s", width, i+1, l)
		}
	}
	return strings.Join(lines, "\n")
}
