// Package report prints the progress of the setup pipeline. Every message is emitted synchronously as a
// zerolog event, either rendered for humans by ConsoleWriter or written as JSON lines.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/mitchellh/colorstring"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

const iconField = "icon"

// Icons prefixed to the individual messages. The padding accounts for emoji that carry a variation
// selector and render narrower than their width suggests.
const (
	IconWrite   = "✍️  "
	IconSkip    = "⚠️  "
	IconSuccess = "✅️ "
	IconBuild   = "🏗  "
	IconLink    = "🔗 "
	IconFailure = "🚨 "
	IconHint    = "📖 "
	IconDone    = "🏁 "
	IconCommand = "$ "
)

var plain = colorstring.Colorize{
	Colors:  colorstring.DefaultColors,
	Disable: true,
}

// Options configures New.
type Options struct {
	Out     io.Writer
	Level   zerolog.Level
	JSON    bool
	NoColor bool
}

type Reporter struct {
	log         zerolog.Logger
	out         io.Writer
	json        bool
	interactive bool
}

// New creates a reporter writing to opts.Out (os.Stdout if nil).
func New(opts Options) *Reporter {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	var logger zerolog.Logger
	if opts.JSON {
		logger = zerolog.New(out).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(NewConsoleWriter(out, opts.NoColor))
	}

	return &Reporter{
		log:         logger.Level(opts.Level),
		out:         out,
		json:        opts.JSON,
		interactive: !opts.JSON && IsTerminal(out),
	}
}

// Nop returns a reporter that discards everything.
func Nop() *Reporter {
	return &Reporter{log: zerolog.Nop(), out: io.Discard}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}

// Highlight marks s to be printed in green.
func Highlight(s string) string {
	return "[green]" + s + "[reset]"
}

// Logger exposes the underlying logger for debug output.
func (r *Reporter) Logger() *zerolog.Logger {
	return &r.log
}

// Out is the writer the reporter prints to. Streamed subprocesses and spinners share it.
func (r *Reporter) Out() io.Writer {
	return r.out
}

// Interactive is true if the output is a terminal and not in JSON mode.
func (r *Reporter) Interactive() bool {
	return r.interactive
}

func (r *Reporter) message(format string, args []interface{}) string {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	if r.json {
		msg = plain.Color(msg)
	}
	return msg
}

// Task announces the start of a step.
func (r *Reporter) Task(icon, format string, args ...interface{}) {
	r.log.Info().Str(iconField, icon).Msg(r.message(format, args))
}

// Success confirms a finished step.
func (r *Reporter) Success(format string, args ...interface{}) {
	r.log.Info().Str(iconField, IconSuccess).Msg(r.message(format, args))
}

// Skip reports that a step was skipped because its result already exists.
func (r *Reporter) Skip(format string, args ...interface{}) {
	r.log.Warn().Str(iconField, IconSkip).Msg(r.message(format, args))
}

// Failure reports a failed step. err is attached to the event for JSON output.
func (r *Reporter) Failure(err error, format string, args ...interface{}) {
	r.log.Error().Err(err).Str(iconField, IconFailure).Msg(r.message(format, args))
}

// Hint tells the user how to fix a failure by hand.
func (r *Reporter) Hint(format string, args ...interface{}) {
	r.log.Info().Str(iconField, IconHint).Msg(r.message(format, args))
}

// Command prints a command that would have been executed in dry-run mode.
func (r *Reporter) Command(dir, cmdline string) {
	r.log.Info().Str(iconField, IconCommand).Str("dir", dir).Msg(r.message("(cd %s && %s)", []interface{}{dir, cmdline}))
}

// Println prints a message without any decoration.
func (r *Reporter) Println(format string, args ...interface{}) {
	r.log.Info().Msg(r.message(format, args))
}

// Debug prints a message that's only visible at debug level.
func (r *Reporter) Debug(format string, args ...interface{}) {
	r.log.Debug().Msg(r.message(format, args))
}
