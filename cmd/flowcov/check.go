package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dkoosis/flowcov/pkg/doccache"
	"github.com/dkoosis/flowcov/pkg/lint"
	"github.com/dkoosis/flowcov/pkg/mapper"
)

func newCheckCmd(a *app) *cobra.Command {
	var (
		jobs        int
		top         int
		keepServers bool
	)
	cmd := &cobra.Command{
		Use:   "check <file> [file...]",
		Short: "Report coverage for files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, logger, err := a.setup(cmd)
			if err != nil {
				return err
			}
			renderer, err := a.renderer(cfg)
			if err != nil {
				return &exitError{code: exitUsage, err: err}
			}

			client := a.client(cfg, logger)
			linter := lint.NewLinter(client, doccache.New(len(args)), logger)

			ctx := cmd.Context()
			outcomes := make([]mapper.Outcome, len(args))
			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(max(jobs, 1))
			for i, path := range args {
				g.Go(func() error {
					doc := lint.NewDocument(path)
					res, err := linter.Run(gctx, cfg, doc)
					res.Document = doc
					outcomes[i] = mapper.Outcome{Result: res, Err: err}
					return nil
				})
			}
			_ = g.Wait()

			if !keepServers {
				client.StopAll(context.WithoutCancel(ctx), cfg.ExecutablePath)
			}

			fmt.Fprint(a.stdout, renderer.Render(mapper.FromCoverage(outcomes, mapper.Options{Top: top})))

			if t := mapper.Tally(outcomes); t.Failed > 0 {
				return &exitError{code: exitFailure}
			}
			if err := ctx.Err(); err != nil {
				return &exitError{code: exitFailure, err: err}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "files linted concurrently")
	cmd.Flags().IntVar(&top, "top", mapper.DefaultTop, "files shown in the lowest-coverage list")
	cmd.Flags().BoolVar(&keepServers, "keep-servers", false, "leave Flow servers started by this run running")
	return cmd
}
