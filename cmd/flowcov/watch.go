package main

import (
	"github.com/spf13/cobra"

	"github.com/dkoosis/flowcov/internal/config"
	"github.com/dkoosis/flowcov/pkg/doccache"
	"github.com/dkoosis/flowcov/pkg/lint"
	"github.com/dkoosis/flowcov/pkg/presenter"
	"github.com/dkoosis/flowcov/pkg/render"
	"github.com/dkoosis/flowcov/pkg/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	var poll = watch.DefaultPoll
	cmd := &cobra.Command{
		Use:   "watch <file> [file...]",
		Short: "Interactively track coverage while files change",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, cfg, logger, err := a.setup(cmd)
			if err != nil {
				return err
			}

			theme := render.ThemeByName(cfg.Theme)
			tile := presenter.NewTile(theme.Bold, theme.Muted)
			store := config.NewStore(cfg)
			client := a.client(cfg, logger)
			linter := lint.NewLinter(client, doccache.New(len(args)), logger)
			ws := presenter.NewWorkspace(presenter.New(tile), linter, store, client, logger)

			docs := make([]lint.Document, 0, len(args))
			for _, p := range args {
				docs = append(docs, lint.NewDocument(p))
			}

			return watch.Run(cmd.Context(), watch.Options{
				Workspace:   ws,
				Tile:        tile,
				Store:       store,
				Documents:   docs,
				Theme:       theme,
				ConfigPath:  r.Path(),
				Reload:      r.Resolve,
				Poll:        poll,
				StopTimeout: cfg.StopTimeout,
				Logger:      logger,
			})
		},
	}
	cmd.Flags().DurationVar(&poll, "poll", watch.DefaultPoll, "how often to check files for changes")
	return cmd
}
