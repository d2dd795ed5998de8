package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// errReported is returned by commands that already printed their error through the reporter.
var errReported = errors.New("reported")

var rootCmd = &cobra.Command{
	Use:   "tool",
	Short: "Repository tools for webiny-js",
	Long: `This command bundles the tools used to prepare a webiny-js checkout for development.
This includes creating the environment config files, building and linking packages, ...`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("root", "", "project root (defaults to the nearest parent directory containing .git)")
	flags.String("recipe", "", "recipe YAML file describing env files, build and link steps (defaults to the built-in recipe)")
	flags.BoolP("dry", "n", false, "dry run; only print what would be done, don't write or execute anything")
	flags.String("log-level", "", "log level (debug, info, warn or error)")
	flags.Bool("json", false, "print JSON lines instead of pretty console messages")
	flags.Bool("no-color", false, "disable colors")
}

// Execute runs the root command and exits with status 1 on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
