package cmd

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/lintro-dev/lintro/internal/version"
)

// NewApp creates the CLI application
func NewApp() *cli.Command {
	return &cli.Command{
		Name:    "lintro",
		Usage:   "Run code quality tools through one interface",
		Version: version.Version(),
		Description: `lintro runs multiple linters and formatters through a single CLI
with unified output, and can optionally generate and apply AI fix
suggestions for the issues the tools report.

Examples:
  lintro check .
  lintro check --output-format json src/
  lintro check --ai-fix src/
  lintro format --ai-fix src/`,
		Commands: []*cli.Command{
			checkCommand(),
			formatCommand(),
			versionCommand(),
		},
	}
}

// Execute runs the CLI application
func Execute() error {
	return NewApp().Run(context.Background(), os.Args)
}
