package spoofcheck

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Reporter receives human-readable narration of evaluation decisions.
// Narration is observational only: implementations must not influence
// control flow, and the evaluators never read anything back.
//
// The channel names follow offensive-tooling convention: Good carries
// findings that favor an attacker (a missing or weak record), Bad
// carries findings that block one (a strict policy).
type Reporter interface {
	// Good reports a vulnerability finding.
	Good(format string, args ...any)

	// Bad reports a security-positive finding.
	Bad(format string, args ...any)

	// Info reports progress and fetched record contents.
	Info(format string, args ...any)

	// Error reports lookup or resolution failures.
	Error(format string, args ...any)

	// Indifferent reports neutral context that affects neither side.
	Indifferent(format string, args ...any)
}

// ANSI SGR sequences for ConsoleReporter.
const (
	ansiReset  = "\x1b[0m"
	ansiGreen  = "\x1b[32m"
	ansiRed    = "\x1b[31m"
	ansiBlue   = "\x1b[34m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
)

// ConsoleReporter writes narration with colored channel markers:
// green [+] for Good, red [-] for Bad, blue [*] for Info, yellow [!]
// for Error, and cyan [~] for Indifferent.
type ConsoleReporter struct {
	mu      sync.Mutex
	w       io.Writer
	noColor bool
}

var _ Reporter = (*ConsoleReporter)(nil)

// NewConsoleReporter creates a reporter writing colored output to w.
func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{w: w}
}

// NewPlainReporter creates a reporter writing to w without ANSI colors,
// for pipes and logs.
func NewPlainReporter(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{w: w, noColor: true}
}

func (r *ConsoleReporter) emit(color, marker, format string, args []any) {
	msg := fmt.Sprintf(format, args...)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.noColor {
		fmt.Fprintf(r.w, "[%s] %s\n", marker, msg)
		return
	}
	fmt.Fprintf(r.w, "%s[%s] %s%s\n", color, marker, msg, ansiReset)
}

func (r *ConsoleReporter) Good(format string, args ...any) {
	r.emit(ansiGreen, "+", format, args)
}

func (r *ConsoleReporter) Bad(format string, args ...any) {
	r.emit(ansiRed, "-", format, args)
}

func (r *ConsoleReporter) Info(format string, args ...any) {
	r.emit(ansiBlue, "*", format, args)
}

func (r *ConsoleReporter) Error(format string, args ...any) {
	r.emit(ansiYellow, "!", format, args)
}

func (r *ConsoleReporter) Indifferent(format string, args ...any) {
	r.emit(ansiCyan, "~", format, args)
}

// LogReporter adapts a slog.Logger to the Reporter interface, for
// embedding the checker in services that already log structurally.
// Good findings log at Warn, Error at Error, everything else at Info,
// each tagged with its channel.
type LogReporter struct {
	Logger *slog.Logger
}

var _ Reporter = LogReporter{}

func (r LogReporter) Good(format string, args ...any) {
	r.Logger.Warn(fmt.Sprintf(format, args...), "channel", "good")
}

func (r LogReporter) Bad(format string, args ...any) {
	r.Logger.Info(fmt.Sprintf(format, args...), "channel", "bad")
}

func (r LogReporter) Info(format string, args ...any) {
	r.Logger.Info(fmt.Sprintf(format, args...), "channel", "info")
}

func (r LogReporter) Error(format string, args ...any) {
	r.Logger.Error(fmt.Sprintf(format, args...), "channel", "error")
}

func (r LogReporter) Indifferent(format string, args ...any) {
	r.Logger.Info(fmt.Sprintf(format, args...), "channel", "indifferent")
}

// NopReporter discards all narration. It is the default when a Checker
// is built without a Reporter.
type NopReporter struct{}

var _ Reporter = NopReporter{}

func (NopReporter) Good(format string, args ...any)        {}
func (NopReporter) Bad(format string, args ...any)         {}
func (NopReporter) Info(format string, args ...any)        {}
func (NopReporter) Error(format string, args ...any)       {}
func (NopReporter) Indifferent(format string, args ...any) {}
