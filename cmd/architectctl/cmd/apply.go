package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"architect/internal/ddl"
	"architect/internal/loader"
	"architect/internal/pgexec"
	"architect/internal/resolve"
)

var (
	applyPath           string
	applyDatabaseURL    string
	applySchemaOverride string
	applyDryRun         bool
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Load, validate, and apply a package's DDL against a database",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runApply(); err != nil {
			color.Red("✖ %v", err)
			os.Exit(1)
		}
	},
}

func init() {
	applyCmd.Flags().StringVarP(&applyPath, "path", "p", ".", "package directory (containing manifest.json)")
	applyCmd.Flags().StringVar(&applyDatabaseURL, "database-url", os.Getenv("DATABASE_URL"), "target database (defaults to $DATABASE_URL)")
	applyCmd.Flags().StringVar(&applySchemaOverride, "schema-override", "", "apply DDL against this schema instead of manifest.json's")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "print the DDL that would run without executing it")
}

func runApply() error {
	if applyDatabaseURL == "" {
		return fmt.Errorf("no database URL: pass --database-url or set DATABASE_URL")
	}

	ctx := context.Background()
	pkg, err := (loader.FromDirectory{Dir: applyPath}).Load(ctx)
	if err != nil {
		return fmt.Errorf("load package: %w", err)
	}

	m, err := resolve.Resolve(pkg.Manifest.ID, pkg)
	if err != nil {
		return fmt.Errorf("resolve package: %w", err)
	}
	color.Green("✔ package %q resolved (%d entities)", pkg.Manifest.ID, len(m.Entities))

	statements := ddl.Generate(m, applySchemaOverride)
	if applyDryRun {
		color.Yellow("dry run: %d statements would execute", len(statements))
		for _, stmt := range statements {
			fmt.Println(stmt)
		}
		return nil
	}

	pool, err := pgexec.New(ctx, applyDatabaseURL, 0)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	for i, stmt := range statements {
		if _, err := pool.AsExecutor().Exec(ctx, stmt); err != nil {
			return fmt.Errorf("statement %d/%d failed: %w\n%s", i+1, len(statements), err, stmt)
		}
	}
	color.Green("✔ applied %d statements", len(statements))
	return nil
}
