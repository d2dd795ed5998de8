package invoke

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"

	"github.com/JetUni/webiny-js/pkg/report"
)

// ExecExecutor runs invocations as child processes.
type ExecExecutor struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// SpinnerOut receives a spinner while captured commands run. nil disables it.
	SpinnerOut io.Writer
}

// NewExecExecutor returns an executor that streams to the process' stdio and shows a spinner if the
// reporter prints to a terminal.
func NewExecExecutor(r *report.Reporter) *ExecExecutor {
	e := &ExecExecutor{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}

	if r.Interactive() {
		e.SpinnerOut = r.Out()
	}

	return e
}

func startSpinner(out io.Writer, desc string) func() {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSpinnerType(14),
	)

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				bar.Add(1)
			}
		}
	}()

	return func() {
		close(done)
		<-stopped
		bar.Clear()
	}
}

// Run executes inv and waits for it to finish. Errors are returned in the Result.
func (e *ExecExecutor) Run(ctx context.Context, inv Invocation) Result {
	result := Result{Invocation: inv}
	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	cmd := exec.CommandContext(ctx, inv.Command, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Env = inv.environ()

	var output bytes.Buffer
	if inv.Stream {
		cmd.Stdin = e.Stdin
		cmd.Stdout = e.Stdout
		cmd.Stderr = e.Stderr
	} else {
		cmd.Stdout = &output
		cmd.Stderr = &output
	}

	stop := func() {}
	if !inv.Stream && e.SpinnerOut != nil {
		stop = startSpinner(e.SpinnerOut, inv.String())
	}

	log := report.FromContext(ctx)
	log.Debug("Running %s in %s", inv.String(), inv.Dir)

	start := time.Now()
	err := cmd.Run()
	stop()

	result.Duration = time.Since(start)
	log.Debug("%s finished after %s", inv.String(), result.Duration.Round(time.Millisecond))
	result.Output = output.Bytes()
	if err != nil {
		result.Err = eris.Wrapf(err, "Command %s failed", inv.String())
	}

	return result
}
