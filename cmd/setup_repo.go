package cmd

import (
	"github.com/spf13/cobra"

	"github.com/JetUni/webiny-js/pkg/setup"
)

var setupRepoCmd = &cobra.Command{
	Use:   "setup-repo",
	Short: "Prepares the repository for development",
	Long: `Creates the environment config files from their example.env.json templates (existing files
are left alone), builds the packages the examples depend on and links the CLI.

Failed builds or links are reported together with the command to run by hand and don't stop
the remaining steps.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, pipeline, err := newPipeline(cmd)
		if err != nil {
			return err
		}

		_, err = pipeline.Run(ctx)
		if err != nil {
			pipeline.Reporter.Failure(err, "Setup failed: %s", err.Error())
			return errReported
		}

		return nil
	},
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Creates missing environment config files",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, pipeline, err := newPipeline(cmd)
		if err != nil {
			return err
		}

		err = pipeline.Env(ctx, &setup.Summary{})
		if err != nil {
			pipeline.Reporter.Failure(err, "Failed to write environment config files: %s", err.Error())
			return errReported
		}

		return nil
	},
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Runs the build steps",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, pipeline, err := newPipeline(cmd)
		if err != nil {
			return err
		}

		summary := &setup.Summary{}
		pipeline.Build(ctx, summary)
		if len(summary.Failed) > 0 {
			return errReported
		}

		return ctx.Err()
	},
}

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Runs the link steps",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, pipeline, err := newPipeline(cmd)
		if err != nil {
			return err
		}

		summary := &setup.Summary{}
		pipeline.Link(ctx, summary)
		if len(summary.Failed) > 0 {
			return errReported
		}

		return ctx.Err()
	},
}

func init() {
	setupRepoCmd.Flags().Bool("skip-build", false, "don't run the build steps")
	setupRepoCmd.Flags().Bool("skip-link", false, "don't run the link steps")

	rootCmd.AddCommand(setupRepoCmd)
	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(linkCmd)
}
