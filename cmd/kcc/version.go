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

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tinygo.org/x/go-llvm"
)

// version can be overridden at build time with -ldflags "-X main.version=...".
var version = "0.1.0-dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the kcc and LLVM versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		bold := color.New(color.Bold)
		fmt.Fprintf(cmd.OutOrStdout(), "kcc %v (LLVM %v)\n", bold.Sprint(version), llvm.Version)
		return nil
	},
}
