// Package invoke runs the external package manager commands of the setup pipeline. Every call is
// described by an explicit Invocation and produces a Result instead of aborting the caller.
package invoke

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"mvdan.cc/sh/v3/shell"
	"mvdan.cc/sh/v3/syntax"
)

// outputTail is the number of captured output lines included in failure messages
const outputTail = 10

// Invocation describes a single command: what to run, where and how.
type Invocation struct {
	Name    string
	Dir     string
	Command string
	Args    []string
	Env     map[string]string
	// Stream passes the command's output through instead of capturing it.
	Stream bool
}

// ParseCommand splits a command line into words using shell quoting rules. Variables are expanded
// from the process environment.
func ParseCommand(cmdline string) ([]string, error) {
	words, err := shell.Fields(cmdline, os.Getenv)
	if err != nil {
		return nil, eris.Wrapf(err, "Failed to parse command %s", cmdline)
	}

	if len(words) == 0 {
		return nil, eris.Errorf("Empty command: %q", cmdline)
	}

	return words, nil
}

// New builds an Invocation from a command line.
func New(name, dir, cmdline string, env map[string]string, stream bool) (Invocation, error) {
	words, err := ParseCommand(cmdline)
	if err != nil {
		return Invocation{}, err
	}

	return Invocation{
		Name:    name,
		Dir:     dir,
		Command: words[0],
		Args:    words[1:],
		Env:     env,
		Stream:  stream,
	}, nil
}

// String renders the command line with shell quoting where necessary.
func (i Invocation) String() string {
	words := append([]string{i.Command}, i.Args...)
	for idx, word := range words {
		quoted, err := syntax.Quote(word, syntax.LangBash)
		if err == nil {
			words[idx] = quoted
		}
	}

	return strings.Join(words, " ")
}

func (i Invocation) environ() []string {
	envVars := os.Environ()

	names := make([]string, 0, len(i.Env))
	for name := range i.Env {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		envVars = append(envVars, fmt.Sprintf("%s=%s", name, i.Env[name]))
	}

	return envVars
}

// Result is the outcome of an Invocation.
type Result struct {
	Invocation Invocation
	// Output holds stdout and stderr of captured invocations.
	Output   []byte
	Duration time.Duration
	Err      error
}

// OK is true if the command ran and exited with status 0.
func (r Result) OK() bool {
	return r.Err == nil
}

// Message describes the failure, including the last lines of captured output. Empty on success.
func (r Result) Message() string {
	if r.Err == nil {
		return ""
	}

	msg := r.Err.Error()
	lines := strings.Split(strings.TrimSpace(string(bytes.ToValidUTF8(r.Output, nil))), "\n")
	if len(lines) > outputTail {
		lines = lines[len(lines)-outputTail:]
	}

	tail := strings.TrimSpace(strings.Join(lines, "\n"))
	if tail != "" {
		msg += "\n" + tail
	}

	return msg
}

// Executor runs invocations.
type Executor interface {
	Run(ctx context.Context, inv Invocation) Result
}
