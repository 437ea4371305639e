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
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gpuforge/kcc/core/codegen/compiler"
	"github.com/gpuforge/kcc/core/fault"
	"github.com/gpuforge/kcc/core/log"
	"github.com/gpuforge/kcc/core/text"
)

// archPlaceholder is replaced by the architecture in output paths.
const archPlaceholder = "{arch}"

var (
	compileArchs  []string
	compileOutput string
	compileDisasm bool
	compileJobs   int
	frontendArgs  string
)

func init() {
	compileCmd.Flags().StringSliceVarP(&compileArchs, "arch", "a", nil, "target architecture, may be repeated (e.g. gfx1100)")
	compileCmd.Flags().StringVarP(&compileOutput, "output", "o", "", "output path, "+archPlaceholder+" is replaced by the architecture")
	compileCmd.Flags().BoolVar(&compileDisasm, "disasm", false, "print the disassembly of each code object")
	compileCmd.Flags().IntVarP(&compileJobs, "jobs", "j", 0, "architectures compiled in parallel (0 = GOMAXPROCS)")
	compileCmd.Flags().StringVar(&frontendArgs, "frontend-args", "", "extra frontend arguments, split like a shell command line")
	compileCmd.MarkFlagRequired("arch")
}

var compileCmd = &cobra.Command{
	Use:   "compile [flags] file.hip",
	Short: "Compile a kernel source file into code objects",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCompile(cmd.Context(), cmd.OutOrStdout(), args[0])
	},
}

type compileResult struct {
	arch    string
	path    string
	listing string
	err     error
}

func runCompile(ctx context.Context, stdout io.Writer, input string) error {
	cfg := configFrom(ctx)
	cfg.Frontend.Args = append(append([]string{}, cfg.Frontend.Args...), text.SplitArgs(frontendArgs)...)
	data, err := os.ReadFile(input)
	if err != nil {
		return errors.Wrapf(err, "reading %v", input)
	}
	source := string(data)

	outputs := make([]string, len(compileArchs))
	for i, arch := range compileArchs {
		if outputs[i], err = outputPath(compileOutput, input, arch, len(compileArchs)); err != nil {
			return err
		}
	}

	jobs := compileJobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]compileResult, len(compileArchs))
	g := errgroup.Group{}
	g.SetLimit(jobs)
	for i, arch := range compileArchs {
		i, arch := i, arch
		g.Go(func() error {
			results[i] = compileOne(ctx, cfg, source, arch, outputs[i])
			return nil
		})
	}
	g.Wait()

	errs := fault.List{}
	for _, r := range results {
		if r.err != nil {
			errs.Collect(r.err)
			continue
		}
		log.I(ctx, "%v: wrote %v", r.arch, r.path)
		if compileDisasm {
			fmt.Fprintf(stdout, "; %v\n%v", r.arch, r.listing)
		}
	}
	return errs.Err()
}

func compileOne(ctx context.Context, cfg config, source, arch, output string) compileResult {
	result := compileResult{arch: arch, path: output}
	ctx = log.PutTag(ctx, arch)
	c, err := compiler.New(ctx, arch, cfg.options()...)
	if err != nil {
		result.err = err
		return result
	}
	defer c.Close(ctx)

	obj, err := c.Compile(ctx, source)
	if err != nil {
		result.err = err
		return result
	}
	if err := os.WriteFile(output, obj, 0644); err != nil {
		result.err = errors.Wrapf(err, "writing %v", output)
		return result
	}
	if compileDisasm {
		if result.listing, err = c.Disassemble(log.PutFilter(ctx, log.SeverityFilter(log.Warning)), obj); err != nil {
			// The code object is already written; the listing is best effort.
			log.W(ctx, "%v", err)
		}
	}
	return result
}

// outputPath returns where the code object for arch is written.
// Without a pattern the object is written next to the input as
// <name>.<arch>.hsaco.
func outputPath(pattern, input, arch string, archs int) (string, error) {
	safe := strings.ReplaceAll(arch, ":", "_")
	if pattern == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		return base + "." + safe + ".hsaco", nil
	}
	if strings.Contains(pattern, archPlaceholder) {
		return strings.ReplaceAll(pattern, archPlaceholder, safe), nil
	}
	if archs > 1 {
		return "", fmt.Errorf("output %q must contain %v when compiling for %d architectures", pattern, archPlaceholder, archs)
	}
	return pattern, nil
}
