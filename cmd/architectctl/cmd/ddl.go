package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"architect/internal/ddl"
	"architect/internal/loader"
	"architect/internal/resolve"
)

var (
	ddlPath           string
	ddlSchemaOverride string
)

var ddlCmd = &cobra.Command{
	Use:   "ddl",
	Short: "Print the DDL a package resolves to, without applying it",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runDDL(); err != nil {
			color.Red("✖ %v", err)
			os.Exit(1)
		}
	},
}

func init() {
	ddlCmd.Flags().StringVarP(&ddlPath, "path", "p", ".", "package directory (containing manifest.json)")
	ddlCmd.Flags().StringVar(&ddlSchemaOverride, "schema-override", "", "emit DDL against this schema instead of manifest.json's")
}

func runDDL() error {
	pkg, err := (loader.FromDirectory{Dir: ddlPath}).Load(context.Background())
	if err != nil {
		return fmt.Errorf("load package: %w", err)
	}

	m, err := resolve.Resolve(pkg.Manifest.ID, pkg)
	if err != nil {
		return fmt.Errorf("resolve package: %w", err)
	}

	for _, stmt := range ddl.Generate(m, ddlSchemaOverride) {
		fmt.Println(stmt)
		fmt.Println()
	}
	return nil
}
