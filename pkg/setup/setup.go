// Package setup runs the repository bootstrap pipeline: environment files first, then the build
// steps, then the link steps. Only environment file errors abort a run; failed commands are
// reported with a hint on how to fix them by hand and the pipeline moves on.
package setup

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/JetUni/webiny-js/pkg/envfile"
	"github.com/JetUni/webiny-js/pkg/invoke"
	"github.com/JetUni/webiny-js/pkg/recipe"
	"github.com/JetUni/webiny-js/pkg/report"
)

const (
	defaultBuildHint = "Try building manually by running {cmd} in the {dir} folder"
	defaultLinkHint  = "Try linking the package manually by running {cmd} in the {dir} folder."
)

// Pipeline holds everything a setup run needs. Stages can also be run individually.
type Pipeline struct {
	Root         string
	Recipe       *recipe.Recipe
	Materializer *envfile.Materializer
	Executor     invoke.Executor
	Reporter     *report.Reporter
	DryRun       bool
	SkipBuild    bool
	SkipLink     bool
}

// Summary lists what happened during a run.
type Summary struct {
	Created []string
	Skipped []string
	Built   []string
	Linked  []string
	Failed  []string
}

// Run executes all stages in order and prints the closing message.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{}

	err := p.Env(ctx, summary)
	if err != nil {
		return summary, err
	}

	if !p.SkipBuild {
		p.Build(ctx, summary)
		if err = ctx.Err(); err != nil {
			return summary, err
		}
	}

	if !p.SkipLink {
		p.Link(ctx, summary)
		if err = ctx.Err(); err != nil {
			return summary, err
		}
	}

	p.Outro()
	return summary, nil
}

// Env creates missing environment files. The first error aborts the stage.
func (p *Pipeline) Env(ctx context.Context, summary *Summary) error {
	r := p.Reporter
	r.Task(report.IconWrite, "Writing environment config files...")

	for _, env := range p.Recipe.EnvFiles {
		outcome, err := p.Materializer.Materialize(ctx, env)
		if err != nil {
			return err
		}

		switch outcome {
		case envfile.Skipped:
			r.Skip("%s already exists, skipping.", report.Highlight(env.Target))
			summary.Skipped = append(summary.Skipped, env.Target)
		case envfile.Created:
			r.Success("%s was created successfully!", report.Highlight(env.Target))
			summary.Created = append(summary.Created, env.Target)
		case envfile.Planned:
			r.Println("%s would be created from %s", report.Highlight(env.Target), env.Template)
		}
	}

	return nil
}

// Build runs every build step. Failures are reported and don't stop the remaining steps.
func (p *Pipeline) Build(ctx context.Context, summary *Summary) {
	r := p.Reporter

	for _, step := range p.Recipe.Build {
		r.Task(report.IconBuild, "Building %s...", report.Highlight(step.Name))

		result, ran := p.run(ctx, step)
		if !ran {
			continue
		}

		if result.OK() {
			r.Success("%s was built successfully!", report.Highlight(step.Name))
			summary.Built = append(summary.Built, step.Name)
			continue
		}

		r.Failure(result.Err, "Failed to build %s package: %s", report.Highlight(step.Name), result.Message())
		r.Hint(p.hint(step, defaultBuildHint))
		summary.Failed = append(summary.Failed, step.Name)
	}
}

// Link runs every link step and removes the lock file the link leaves behind. Failures are reported
// and don't stop the remaining steps.
func (p *Pipeline) Link(ctx context.Context, summary *Summary) {
	r := p.Reporter

	for _, step := range p.Recipe.Link {
		r.Task(report.IconLink, "Linking %s...", report.Highlight(step.Name))

		result, ran := p.run(ctx, step)
		if !ran {
			continue
		}

		err := result.Err
		if err == nil {
			err = p.removeLockFile(step)
		}

		if err == nil {
			r.Success("%s was linked successfully!", report.Highlight(step.Name))
			summary.Linked = append(summary.Linked, step.Name)
			continue
		}

		msg := err.Error()
		if !result.OK() {
			msg = result.Message()
		}

		r.Failure(err, "Failed to link %s package: %s", report.Highlight(step.Name), msg)
		r.Hint(p.hint(step, defaultLinkHint))
		summary.Failed = append(summary.Failed, step.Name)
	}
}

// Outro prints the closing message.
func (p *Pipeline) Outro() {
	r := p.Reporter
	r.Println("")
	r.Task(report.IconDone, "Your repo is almost ready!")

	if p.Recipe.Outro == "" {
		return
	}

	vars := map[string]string{}
	if len(p.Recipe.EnvFiles) > 0 {
		vars["env"] = report.Highlight(p.Recipe.EnvFiles[0].Target)
	}
	r.Println(recipe.Expand(p.Recipe.Outro, vars) + "\n")
}

// run executes step unless this is a dry run. ran is false if nothing was executed.
func (p *Pipeline) run(ctx context.Context, step recipe.Step) (result invoke.Result, ran bool) {
	inv, err := invoke.New(step.Name, filepath.Join(p.Root, step.Dir), step.Cmd, step.Env, step.Stream)
	if err != nil {
		return invoke.Result{Invocation: inv, Err: err}, true
	}

	if p.DryRun {
		p.Reporter.Command(step.Dir, inv.String())
		return invoke.Result{Invocation: inv}, false
	}

	return p.Executor.Run(ctx, inv), true
}

// removeLockFile deletes the step's lock file. A missing lock file is fine.
func (p *Pipeline) removeLockFile(step recipe.Step) error {
	if step.LockFile == "" {
		return nil
	}

	lockPath := filepath.Join(p.Root, step.Dir, step.LockFile)
	err := os.Remove(lockPath)
	if err == nil {
		p.Reporter.Debug("Removed %s", filepath.Join(step.Dir, step.LockFile))
		return nil
	}

	if eris.Is(err, os.ErrNotExist) {
		p.Reporter.Debug("%s doesn't exist, nothing to remove", filepath.Join(step.Dir, step.LockFile))
		return nil
	}

	return eris.Wrapf(err, "Failed to remove %s", filepath.Join(step.Dir, step.LockFile))
}

func (p *Pipeline) hint(step recipe.Step, fallback string) string {
	text := step.Hint
	if text == "" {
		text = fallback
	}

	return recipe.Expand(text, map[string]string{
		"name": report.Highlight(step.Name),
		"cmd":  report.Highlight(step.Cmd),
		"dir":  report.Highlight(step.Dir),
	})
}
