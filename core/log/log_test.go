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

package log_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gpuforge/kcc/core/assert"
	"github.com/gpuforge/kcc/core/log"
)

var testClock = log.FixedClock(time.Date(2000, time.January, 22, 12, 34, 56, 789000000, time.Local))

type testMessage struct {
	msg      string
	args     []interface{}
	values   log.V
	severity log.Severity
	tag      string

	raw      string
	brief    string
	normal   string
	detailed string
}

func (m testMessage) send(h log.Handler) {
	ctx := context.Background()
	ctx = log.PutHandler(ctx, h)
	ctx = log.PutTag(ctx, m.tag)
	ctx = log.PutClock(ctx, testClock)
	ctx = m.values.Bind(ctx)
	log.From(ctx).Log(m.severity, false, fmt.Sprintf(m.msg, m.args...))
}

var testMessages = []testMessage{
	{
		msg:      "plain warning",
		severity: log.Warning,

		raw:      "plain warning",
		brief:    "W: plain warning",
		normal:   "12:34:56.789 W: plain warning",
		detailed: "12:34:56.789 Warning: plain warning",
	}, {
		msg:      "info with values",
		severity: log.Info,
		values:   log.V{"cat": "meow", "dog": "woof"},

		raw:      "info with values",
		brief:    "I: info with values",
		normal:   "12:34:56.789 I: info with values",
		detailed: "12:34:56.789 Info: info with values \n  cat: meow\n  dog: woof",
	}, {
		msg:      "compiled %d bytes",
		args:     []interface{}{42},
		severity: log.Debug,
		tag:      "gfx1100",

		raw:      "compiled 42 bytes",
		brief:    "D: compiled 42 bytes",
		normal:   "12:34:56.789 D: [gfx1100] compiled 42 bytes",
		detailed: "12:34:56.789 Debug: [gfx1100] compiled 42 bytes",
	},
}

func TestStyles(t *testing.T) {
	ctx := log.Testing(t)
	for _, test := range []struct {
		style  log.Style
		expect func(testMessage) string
	}{
		{log.Raw, func(m testMessage) string { return m.raw }},
		{log.Brief, func(m testMessage) string { return m.brief }},
		{log.Normal, func(m testMessage) string { return m.normal }},
		{log.Detailed, func(m testMessage) string { return m.detailed }},
	} {
		for _, m := range testMessages {
			w, buf := log.Buffer()
			m.send(test.style.Handler(w))
			assert.For(ctx, "%v %q", test.style, m.msg).ThatString(buf.String()).Equals(test.expect(m))
		}
	}
}

func TestFindStyle(t *testing.T) {
	ctx := log.Testing(t)
	s, ok := log.FindStyle("Detailed")
	assert.For(ctx, "found").That(ok).Equals(true)
	assert.For(ctx, "style").That(s.Name).Equals("detailed")
	_, ok = log.FindStyle("fancy")
	assert.For(ctx, "unknown").That(ok).Equals(false)
}

func TestSeverityFilter(t *testing.T) {
	ctx := log.Testing(t)
	w, buf := log.Buffer()
	c := log.PutHandler(context.Background(), log.Brief.Handler(w))
	c = log.PutFilter(c, log.SeverityFilter(log.Warning))
	log.D(c, "hidden")
	log.I(c, "hidden")
	log.W(c, "shown")
	log.E(c, "also shown")
	assert.For(ctx, "filtered").ThatString(buf.String()).Equals("W: shown\nE: also shown")
}

func TestSeveritySet(t *testing.T) {
	ctx := log.Testing(t)
	for _, test := range []struct {
		name   string
		expect log.Severity
	}{
		{"debug", log.Debug},
		{"INFO", log.Info},
		{"w", log.Warning},
		{"Fatal", log.Fatal},
	} {
		var s log.Severity
		err := s.Set(test.name)
		assert.For(ctx, "err %v", test.name).ThatError(err).Succeeded()
		assert.For(ctx, "severity %v", test.name).That(s).Equals(test.expect)
	}
	var s log.Severity
	assert.For(ctx, "bad").ThatError(s.Set("loud")).Failed()
}

func TestTrace(t *testing.T) {
	ctx := log.Testing(t)
	w, buf := log.Buffer()
	c := log.PutHandler(context.Background(), log.Normal.Handler(w))
	c = log.PutClock(c, log.NoClock)
	c = log.Enter(log.Enter(c, "compile"), "emit")
	log.I(c, "done")
	assert.For(ctx, "trace").ThatSlice(log.GetTrace(c)).Equals([]string{"emit", "compile"})
	assert.For(ctx, "output").ThatString(buf.String()).Equals("I: [emit.compile] done")
}

func TestErr(t *testing.T) {
	ctx := log.Testing(t)
	cause := errors.New("exit status 1")
	err := log.Err(ctx, cause, "Process returned error")
	assert.For(ctx, "message").ThatError(err).HasMessage("Process returned error\n   Cause: exit status 1")
	assert.For(ctx, "is").That(errors.Is(err, cause)).Equals(true)
	err = log.Errf(ctx, nil, "no %s", "cause")
	assert.For(ctx, "no cause").ThatError(err).HasMessage("no cause")
}

func TestWriter(t *testing.T) {
	ctx := log.Testing(t)
	w, buf := log.Buffer()
	c := log.PutHandler(context.Background(), log.Brief.Handler(w))
	lw := log.From(c).Writer(log.Error)
	fmt.Fprint(lw, "first line\nsecond ")
	fmt.Fprint(lw, "line\ntrailing")
	lw.Close()
	assert.For(ctx, "lines").ThatString(buf.String()).Equals("E: first line\nE: second line\nE: trailing")
}
