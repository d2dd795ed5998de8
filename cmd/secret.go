package cmd

import (
	"crypto/rand"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JetUni/webiny-js/pkg/envfile"
	"github.com/JetUni/webiny-js/pkg/recipe"
)

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Prints a new random secret",
	Long:  `Prints a secret in the same format as the JWT_SECRET generated for examples/api/.env.json.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		length, err := cmd.Flags().GetInt("length")
		if err != nil {
			return err
		}

		secret, err := envfile.GenerateSecret(rand.Reader, length)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), secret)
		return nil
	},
}

func init() {
	secretCmd.Flags().IntP("length", "l", recipe.DefaultSecretLength, "secret length")
	rootCmd.AddCommand(secretCmd)
}
