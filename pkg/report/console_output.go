package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mitchellh/colorstring"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// ConsoleWriter turns zerolog's JSON events back into the human readable progress lines printed by
// the setup tool. Highlight markup ([green]...[reset]) is rendered through colorstring.
type ConsoleWriter struct {
	out      io.Writer
	colorize colorstring.Colorize
	buffer   strings.Builder
	lock     sync.Mutex
}

// NewConsoleWriter returns a writer that prints to out. Colors are dropped if noColor is set.
func NewConsoleWriter(out io.Writer, noColor bool) *ConsoleWriter {
	return &ConsoleWriter{
		out: out,
		colorize: colorstring.Colorize{
			Colors:  colorstring.DefaultColors,
			Disable: noColor,
		},
	}
}

func (w *ConsoleWriter) Write(p []byte) (n int, err error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	var evt map[string]interface{}
	d := json.NewDecoder(bytes.NewReader(p))
	d.UseNumber()
	err = d.Decode(&evt)
	if err != nil {
		return n, eris.Wrapf(err, "cannot decode event: %s", p)
	}

	w.buffer.Reset()

	level, _ := evt[zerolog.LevelFieldName].(string)
	icon, hasIcon := evt[iconField].(string)
	if hasIcon {
		w.buffer.WriteString(icon)
	} else {
		switch level {
		case "fatal", "error":
			w.buffer.WriteString("[red]Error:[reset] ")
		case "debug", "trace":
			w.buffer.WriteString("[blue]")
		}
	}

	msg, _ := evt[zerolog.MessageFieldName].(string)
	w.buffer.WriteString(msg)

	if errorDetails, ok := evt[zerolog.ErrorFieldName]; ok && !hasIcon {
		w.buffer.WriteString("\n[red]")
		w.buffer.WriteString(fmt.Sprint(errorDetails))
	}

	if debugEnabled() {
		w.buffer.WriteString("[reset]\n")
		for name, value := range evt {
			w.buffer.WriteString(fmt.Sprintf("  %s: %+v\n", name, value))
		}
	}

	w.buffer.WriteString("[reset]\n")
	_, err = io.WriteString(w.out, w.colorize.Color(w.buffer.String()))
	if err != nil {
		return 0, err
	}

	// zerolog expects the length of the original event
	return len(p), nil
}

var debug = os.Getenv("SETUP_DEBUG") != ""

// SetDebug toggles error traces and the dump of all event fields.
func SetDebug(on bool) {
	debug = on
}

func debugEnabled() bool {
	return debug
}

func init() {
	zerolog.ErrorMarshalFunc = func(err error) interface{} {
		return eris.ToString(err, debugEnabled())
	}
}
