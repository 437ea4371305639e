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

// The kcc command compiles HIP kernels into AMD GPU code objects.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gpuforge/kcc/core/log"
)

var (
	configPath string
	colorMode  string
	logStyle   string
	logLevel   = log.Info

	// logHandler is the handler installed by setup. It is closed before the
	// process exits so queued messages are written.
	logHandler log.Handler
)

var rootCmd = &cobra.Command{
	Use:           "kcc",
	Short:         "GPU kernel compiler",
	Long:          `kcc compiles HIP kernel source into relocatable AMD GPU code objects.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := setup(cmd)
		if err != nil {
			return err
		}
		cmd.SetContext(ctx)
		return nil
	},
}

func main() {
	rootCmd.Version = version
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(disasmCmd)
	rootCmd.AddCommand(versionCmd)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "path to "+configName+" (default: searched upwards from the working directory)")
	flags.StringVar(&colorMode, "color", "auto", "colorize output (auto|on|off)")
	flags.StringVar(&logStyle, "log-style", "", "log style (raw|brief|normal|detailed)")
	flags.Var(&logLevel, "log-level", "minimum log severity (verbose|debug|info|warning|error|fatal)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if logHandler != nil {
		logHandler.Close()
	}
	if err != nil {
		color.New(color.FgRed, color.Bold).Fprint(os.Stderr, "error: ")
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// logQueueSize is the number of messages buffered ahead of the terminal.
const logQueueSize = 64

type configKeyTy string

const configKey configKeyTy = "kcc.config"

// setup loads the configuration, applies flag overrides and binds the log
// handler for the command being run.
func setup(cmd *cobra.Command) (context.Context, error) {
	cfg := defaultConfig()
	path := configPath
	if path == "" {
		found, ok, err := findConfig(".")
		if err != nil {
			return nil, err
		}
		if ok {
			path = found
		}
	}
	if path != "" {
		loaded, err := loadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel.String()
	}
	if flags.Changed("log-style") {
		cfg.Log.Style = logStyle
	}
	handler, filter, err := newLogHandler(cmd.ErrOrStderr(), cfg.Log, colorMode)
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logHandler = log.Channel(handler, logQueueSize)
	ctx = log.PutProcess(ctx, "kcc")
	ctx = log.PutHandler(ctx, logHandler)
	ctx = log.PutFilter(ctx, filter)
	if path != "" {
		log.D(ctx, "Using config %v", path)
	}
	return context.WithValue(ctx, configKey, cfg), nil
}

func configFrom(ctx context.Context) config {
	if cfg, ok := ctx.Value(configKey).(config); ok {
		return cfg
	}
	return defaultConfig()
}
