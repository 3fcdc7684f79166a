package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dkoosis/flowcov/internal/version"
)

func newStopCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stop [dir...]",
		Short: "Stop the Flow server for each project directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, logger, err := a.setup(cmd)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				args = []string{"."}
			}

			client := a.client(cfg, logger)
			for _, dir := range args {
				abs, err := filepath.Abs(dir)
				if err != nil {
					return &exitError{code: exitUsage, err: err}
				}
				client.Servers().Add(abs)
			}
			roots := client.Servers().Roots()
			client.StopAll(cmd.Context(), cfg.ExecutablePath)
			for _, root := range roots {
				fmt.Fprintf(a.stdout, "stop requested: %s\n", root)
			}
			return nil
		},
	}
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintln(a.stdout, version.String())
		},
	}
}
