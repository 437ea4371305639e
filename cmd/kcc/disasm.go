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
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/gpuforge/kcc/core/codegen/compiler"
	"github.com/gpuforge/kcc/core/log"
)

var disasmArch string

func init() {
	disasmCmd.Flags().StringVarP(&disasmArch, "arch", "a", "", "architecture the code object was built for")
	disasmCmd.MarkFlagRequired("arch")
}

var disasmCmd = &cobra.Command{
	Use:   "disasm [flags] file.hsaco",
	Short: "Disassemble a code object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		obj, err := os.ReadFile(args[0])
		if err != nil {
			return errors.Wrapf(err, "reading %v", args[0])
		}
		c, err := compiler.New(ctx, disasmArch, configFrom(ctx).options()...)
		if err != nil {
			return err
		}
		defer c.Close(ctx)
		listing, err := c.Disassemble(log.PutFilter(ctx, log.SeverityFilter(log.Warning)), obj)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), listing)
		return nil
	},
}
