package cmd

import (
	"context"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/lintro-dev/lintro/internal/version"
)

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version and build information",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print as JSON",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			info := version.GetInfo()

			if cmd.Bool("json") {
				return json.MarshalWrite(os.Stdout, info, jsontext.WithIndent("  "))
			}

			fmt.Printf("lintro %s\n", info.Version)
			if info.GitCommit != "" {
				fmt.Printf("  commit:   %s\n", info.GitCommit)
			}
			fmt.Printf("  go:       %s\n", info.GoVersion)
			fmt.Printf("  platform: %s/%s\n", info.Platform.OS, info.Platform.Arch)
			return nil
		},
	}
}
