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
	"github.com/rs/zerolog"
	"github.com/walteh/copytx/pkg/status"
)

// 🎨 Display configuration
const (
	stepIndent  = 4  // spaces to indent step entries
	nameWidth   = 25 // Base width for step name
	phaseWidth  = 10 // Width for phase name
	statusWidth = 22 // Width for status text
)

// 🎯 StepOperation represents one phase outcome for logging
type StepOperation struct {
	Name    string      // Step name from the plan
	Phase   string      // check / fix / rollback
	Code    status.Code // Outcome classification
	Message string      // Result message
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
		mu:      sync.Mutex{},
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

// 📝 formatStepOperation formats a step operation for display
func (l *Logger) formatStepOperation(op StepOperation) string {
	// Determine symbol and color
	var symbol rune
	var symbolColor color.Attribute
	switch {
	case !op.Code.Success():
		symbol = '✗'
		symbolColor = color.FgRed
	case op.Code == status.NoChange:
		symbol = '•'
		symbolColor = color.FgCyan
	case op.Phase == "rollback":
		symbol = '⟳'
		symbolColor = color.FgBlue
	case op.Code == status.OK:
		symbol = '✓'
		symbolColor = color.FgGreen
	default:
		symbol = '-'
		symbolColor = color.FgYellow
	}

	// Format phase with color
	var phaseColor color.Attribute
	switch op.Phase {
	case "check":
		phaseColor = color.FgCyan
	case "fix":
		phaseColor = color.FgBlue
	case "rollback":
		phaseColor = color.FgMagenta
	default:
		phaseColor = color.FgYellow
	}

	statusText := fmt.Sprintf("%d %s", int(op.Code), op.Code)

	// Build the line
	return fmt.Sprintf("%s%s %s %s %s %s",
		fmt.Sprintf("%*s", stepIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, op.Name),
		color.New(phaseColor).Sprint(fmt.Sprintf("%-*s", phaseWidth, op.Phase)),
		color.New(symbolColor).Sprint(fmt.Sprintf("%-*s", statusWidth, statusText)),
		op.Message)
}

// 📝 LogStepOperation logs a step operation
func (l *Logger) LogStepOperation(ctx context.Context, op StepOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Format and print
	fmt.Fprintln(l.console, l.formatStepOperation(op))

	// Log to zerolog
	l.zlog.Info().
		Str("step", op.Name).
		Str("phase", op.Phase).
		Int("code", int(op.Code)).
		Str("status", op.Code.String()).
		Str("message", op.Message).
		Msg("step operation")
}

// 📝 StartPlan prints the plan header
func (l *Logger) StartPlan(ctx context.Context, path string, steps int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.console, "[running %s]\n",
		color.New(color.FgCyan).Sprint(path))

	fmt.Fprintf(l.console, "%s %s %s %d steps\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(path),
		color.New(color.Faint).Sprint("•"),
		steps)

	l.zlog.Info().
		Str("plan", path).
		Int("steps", steps).
		Msg("starting plan")
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
	copytxText := color.New(color.Bold, color.FgCyan).Sprint("copytx")
	fmt.Fprintf(l.console, "\n%s %s\n\n", copytxText, color.New(color.Faint).Sprint("• "+msg))
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
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
