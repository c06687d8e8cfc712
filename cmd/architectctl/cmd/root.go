package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "architectctl",
	Short: "Offline tooling for config-driven package management",
	Long: `architectctl loads a package (manifest.json plus its per-kind config
files) from a directory, validates it the same way the running server
would, and can generate or apply the DDL it resolves to.

Examples:

  architectctl validate --path ./packages/billing
  architectctl ddl --path ./packages/billing
  architectctl apply --path ./packages/billing --database-url postgres://...
`,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("✖", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(ddlCmd)
	rootCmd.AddCommand(applyCmd)
}
