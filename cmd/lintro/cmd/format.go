package cmd

import (
	"context"

	"github.com/urfave/cli/v3"
)

func formatCommand() *cli.Command {
	return &cli.Command{
		Name:      "format",
		Aliases:   []string{"fmt"},
		Usage:     "Fix issues in files using the tools' native fixers",
		ArgsUsage: "[PATH...]",
		Flags:     runFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runTools(ctx, cmd, runModeFix)
		},
	}
}
