package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JetUni/webiny-js/pkg"
	"github.com/JetUni/webiny-js/pkg/config"
	"github.com/JetUni/webiny-js/pkg/envfile"
	"github.com/JetUni/webiny-js/pkg/invoke"
	"github.com/JetUni/webiny-js/pkg/recipe"
	"github.com/JetUni/webiny-js/pkg/report"
	"github.com/JetUni/webiny-js/pkg/setup"
)

// loadConfig combines .setup.toml, SETUP_* environment variables and the command line flags. Flags
// win if they were passed explicitly.
func loadConfig(cmd *cobra.Command) (string, *config.Config, error) {
	flags := cmd.Flags()

	root, err := flags.GetString("root")
	if err != nil {
		return "", nil, err
	}

	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", nil, err
		}

		root, err = pkg.GetProjectRoot(wd)
		if err != nil {
			return "", nil, err
		}
	} else {
		root, err = filepath.Abs(root)
		if err != nil {
			return "", nil, err
		}
	}

	cfg, err := config.Load(root)
	if err != nil {
		return "", nil, err
	}

	if flags.Changed("recipe") {
		value, _ := flags.GetString("recipe")
		cfg.Recipe, err = filepath.Abs(value)
		if err != nil {
			return "", nil, err
		}
	}

	if flags.Changed("dry") {
		cfg.DryRun, _ = flags.GetBool("dry")
	}

	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}

	if flags.Changed("json") {
		cfg.Log.JSON, _ = flags.GetBool("json")
	}

	if flags.Changed("no-color") {
		cfg.Log.NoColor, _ = flags.GetBool("no-color")
	}

	if flags.Lookup("skip-build") != nil && flags.Changed("skip-build") {
		cfg.SkipBuild, _ = flags.GetBool("skip-build")
	}

	if flags.Lookup("skip-link") != nil && flags.Changed("skip-link") {
		cfg.SkipLink, _ = flags.GetBool("skip-link")
	}

	err = cfg.Validate()
	if err != nil {
		return "", nil, err
	}

	return root, cfg, nil
}

func newReporter(cfg *config.Config) *report.Reporter {
	report.SetDebug(cfg.Debug || os.Getenv("SETUP_DEBUG") != "")
	noColor := cfg.Log.NoColor || os.Getenv("NO_COLOR") != "" || !report.IsTerminal(os.Stdout)

	return report.New(report.Options{
		Out:     os.Stdout,
		Level:   cfg.LogLevel(),
		JSON:    cfg.Log.JSON,
		NoColor: noColor,
	})
}

// newPipeline builds the setup pipeline for cmd and returns a context carrying its reporter.
func newPipeline(cmd *cobra.Command) (context.Context, *setup.Pipeline, error) {
	root, cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	rep := newReporter(cfg)

	var rec *recipe.Recipe
	if cfg.Recipe != "" {
		rec, err = recipe.Load(cfg.Recipe)
	} else {
		rec, err = recipe.Default()
	}
	if err != nil {
		return nil, nil, err
	}

	rep.Debug("Project root: %s", root)

	ctx := report.WithReporter(cmd.Context(), rep)
	return ctx, &setup.Pipeline{
		Root:         root,
		Recipe:       rec,
		Materializer: envfile.NewMaterializer(root, cfg.DryRun),
		Executor:     invoke.NewExecExecutor(rep),
		Reporter:     rep,
		DryRun:       cfg.DryRun,
		SkipBuild:    cfg.SkipBuild,
		SkipLink:     cfg.SkipLink,
	}, nil
}
