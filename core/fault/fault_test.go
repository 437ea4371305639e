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

package fault_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gpuforge/kcc/core/fault"
)

const (
	errorMessage = "Some message"
	anError      = fault.Const(errorMessage)
	anotherError = fault.Const("another")
)

func TestConst(t *testing.T) {
	if anError.Error() != errorMessage {
		t.Errorf("Const has the wrong string form, expected %q got %q", errorMessage, anError)
	}
	wrapped := fmt.Errorf("compiling: %w", anError)
	if !errors.Is(wrapped, anError) {
		t.Errorf("errors.Is did not find a wrapped Const")
	}
	if errors.Is(wrapped, anotherError) {
		t.Errorf("errors.Is matched a different Const")
	}
}

func TestList(t *testing.T) {
	list := fault.List{}
	if list.First() != nil {
		t.Errorf("First on empty error list did not return nil")
	}
	if list.Err() != nil {
		t.Errorf("Err on empty error list did not return nil")
	}
	list.Collect(nil)
	if len(list) != 0 {
		t.Errorf("Collecting nil changed the list length")
	}
	list.Collect(anError)
	if list.Err() != anError {
		t.Errorf("Err on a single error list did not return the error, got %v", list.Err())
	}
	list.Collect(anotherError)
	if len(list) != 2 {
		t.Errorf("Adding a second error did not make the list length 2")
	}
	if list.First() != anError {
		t.Errorf("First did not return the first error, got %v", list.First())
	}
	err := list.Err()
	if err.Error() != "Some message\nanother" {
		t.Errorf("Unexpected combined message %q", err.Error())
	}
	if !errors.Is(err, anotherError) {
		t.Errorf("errors.Is did not find the second error in the list")
	}
}

func TestOne(t *testing.T) {
	one := fault.One{}
	if one.First() != nil {
		t.Errorf("First on empty error list did not return nil")
	}
	one.Collect(anError)
	if one.First() != anError {
		t.Errorf("First did not return the first error, got %v", anError)
	}
	one.Collect(anotherError)
	if one.First() != anError {
		t.Errorf("First did not return the first error, got %v", anError)
	}
}
