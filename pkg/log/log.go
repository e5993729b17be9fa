// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog"
	"github.com/walteh/docscrub/pkg/status"
)

// 🎨 Display configuration
const (
	entryIndent = 4  // spaces to indent entry lines
	nameWidth   = 35 // display columns for the entry name
	kindWidth   = 10 // display columns for the entry kind
)

// 📦 DocumentOperation describes the document being sanitized
type DocumentOperation struct {
	Filename string
	Format   string
	Size     int64
}

// 🎯 Logger prints one console line per entry and mirrors it to zerolog
type Logger struct {
	zlog      zerolog.Logger
	console   io.Writer
	mu        sync.Mutex
	currentOp *DocumentOperation
	entries   []status.EntryInfo
}

// 🏭 New creates a new logger
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// padRight fits s into width display columns, truncating with an ellipsis
func padRight(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}

// 📝 formatEntry formats an entry outcome for display
func (l *Logger) formatEntry(info status.EntryInfo) string {
	var symbol rune
	var symbolColor color.Attribute
	var detail string
	switch info.Status {
	case status.StatusModified:
		symbol = '⟳'
		symbolColor = color.FgBlue
		detail = fmt.Sprintf("%d/%d spans, %d edits", info.SpansChanged, info.Spans, info.Edits)
	case status.StatusCleared:
		symbol = '✗'
		symbolColor = color.FgMagenta
		detail = fmt.Sprintf("%d fields cleared", info.Fields)
	case status.StatusFailed:
		symbol = '!'
		symbolColor = color.FgRed
		detail = "failed"
		if info.Error != nil {
			detail = info.Error.Error()
		}
	default:
		symbol = '•'
		symbolColor = color.FgCyan
		detail = "no change"
	}

	kindColor := color.FgYellow
	if info.Kind == status.KindMetadata {
		kindColor = color.FgMagenta
	}

	return fmt.Sprintf("%*s%s %s %s %s",
		entryIndent, "",
		color.New(symbolColor).Sprint(string(symbol)),
		padRight(info.Name, nameWidth),
		color.New(kindColor).Sprint(padRight(string(info.Kind), kindWidth)),
		detail)
}

// 📝 LogEntry prints the outcome of one entry
func (l *Logger) LogEntry(ctx context.Context, info status.EntryInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, info)

	fmt.Fprintln(l.console, l.formatEntry(info))

	l.zlog.Info().
		Str("entry", info.Name).
		Str("kind", string(info.Kind)).
		Stringer("status", info.Status).
		Int("spans", info.Spans).
		Int("spans_changed", info.SpansChanged).
		Int("edits", info.Edits).
		Int("fields", info.Fields).
		AnErr("entry_error", info.Error).
		Msg("entry processed")
}

// 📝 LogReport prints every entry of report in order
func (l *Logger) LogReport(ctx context.Context, report *status.Report) {
	for _, info := range report.Entries() {
		l.LogEntry(ctx, info)
	}
}

// 📝 StartDocument prints the document header
func (l *Logger) StartDocument(ctx context.Context, op DocumentOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentOp = &op
	l.entries = nil

	fmt.Fprintf(l.console, "[sanitizing %s]\n",
		color.New(color.FgCyan).Sprint(op.Filename))

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(op.Format),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprintf("%d bytes", op.Size))

	l.zlog.Info().
		Str("filename", op.Filename).
		Str("format", op.Format).
		Int64("size", op.Size).
		Msg("starting document")
}

// 📝 EndDocument closes the current document
func (l *Logger) EndDocument(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentOp == nil {
		return
	}

	l.zlog.Info().
		Str("filename", l.currentOp.Filename).
		Int("entries", len(l.entries)).
		Msg("document complete")

	l.currentOp = nil
	l.entries = nil
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("docscrub")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...any) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...any) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...any) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...any) {
	l.Success(fmt.Sprintf(format, args...))
}
