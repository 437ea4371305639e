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
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/gpuforge/kcc/core/log"
)

var severityAttributes = map[log.Severity][]color.Attribute{
	log.Verbose: {color.FgHiBlack},
	log.Debug:   {color.FgHiBlack},
	log.Warning: {color.FgYellow},
	log.Error:   {color.FgRed},
	log.Fatal:   {color.FgRed, color.Bold},
}

// colorWriter returns a log.Writer that writes each message as a line to w,
// colored by severity when enabled.
func colorWriter(w io.Writer, enabled bool) log.Writer {
	colors := map[log.Severity]*color.Color{}
	for s, attrs := range severityAttributes {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		colors[s] = c
	}
	return func(text string, severity log.Severity) {
		if c, ok := colors[severity]; ok {
			c.Fprintln(w, text)
			return
		}
		io.WriteString(w, text+"\n")
	}
}

// isTerminal returns true if w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func colorEnabled(w io.Writer, mode string) (bool, error) {
	switch mode {
	case "", "auto":
		return isTerminal(w) && os.Getenv("NO_COLOR") == "", nil
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	default:
		return false, fmt.Errorf("unsupported color mode %q (must be auto, on or off)", mode)
	}
}

func newLogHandler(w io.Writer, cfg logConfig, mode string) (log.Handler, log.Filter, error) {
	var level log.Severity
	if err := level.Set(cfg.Level); err != nil {
		return nil, nil, err
	}
	style, ok := log.FindStyle(cfg.Style)
	if !ok {
		return nil, nil, fmt.Errorf("unknown log style %q", cfg.Style)
	}
	enabled, err := colorEnabled(w, mode)
	if err != nil {
		return nil, nil, err
	}
	color.NoColor = !enabled
	return style.Handler(colorWriter(w, enabled)), log.SeverityFilter(level), nil
}
