package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"architect/internal/loader"
	"architect/internal/resolve"
)

var validatePath string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a package directory against the resolver",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(); err != nil {
			color.Red("✖ validation failed: %v", err)
			os.Exit(1)
		}
	},
}

func init() {
	validateCmd.Flags().StringVarP(&validatePath, "path", "p", ".", "package directory (containing manifest.json)")
}

func runValidate() error {
	pkg, err := (loader.FromDirectory{Dir: validatePath}).Load(context.Background())
	if err != nil {
		return fmt.Errorf("load package: %w", err)
	}

	m, err := resolve.Resolve(pkg.Manifest.ID, pkg)
	if err != nil {
		return fmt.Errorf("resolve package: %w", err)
	}

	color.Green("✔ package %q is valid", pkg.Manifest.ID)
	fmt.Printf("  schema:   %s\n", pkg.Manifest.Schema)
	fmt.Printf("  schemas:  %d\n", len(pkg.Schemas))
	fmt.Printf("  enums:    %d\n", len(pkg.Enums))
	fmt.Printf("  tables:   %d\n", len(pkg.Tables))
	fmt.Printf("  entities: %d\n", len(m.Entities))
	return nil
}
