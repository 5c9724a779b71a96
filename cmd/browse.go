package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/histwalk/internal/render"
	"github.com/masmgr/histwalk/internal/state"
	"github.com/masmgr/histwalk/internal/tui"
	"github.com/masmgr/histwalk/internal/urlstate"
	"github.com/masmgr/histwalk/internal/watcher"
)

// BrowseCmd returns the browse command.
func BrowseCmd() *cli.Command {
	flags := append(selectionFlags(),
		&cli.BoolFlag{
			Name:  "no-watch",
			Usage: "Do not reload when branch refs change",
		},
		&cli.BoolFlag{
			Name:  "fresh",
			Usage: "Ignore the saved position",
		},
	)

	return &cli.Command{
		Name:    "browse",
		Aliases: []string{"b"},
		Usage:   "Walk history interactively",
		Flags:   flags,
		Action:  browseAction,
	}
}

func browseAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger, closer, err := newLogger(cfg.Log, true)
	if err != nil {
		return err
	}
	defer closer.Close()

	repoPath := c.String("repo")
	provider, err := openProvider(c.Context, cfg, repoPath)
	if err != nil {
		return fmt.Errorf("failed to open repository: %w", err)
	}
	ctx := newCommandContext(cfg, logger, nil, repoPath, provider)

	store, err := state.Open(cfg.State.Backend, cfg.State.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	st, err := store.Load(c.Context)
	if err != nil {
		logger.Warn("saved state unreadable, starting fresh", "error", err)
		st = state.New()
	}

	sel, err := selectionFromFlags(c)
	if err != nil {
		return err
	}
	if !selectionGiven(c) && !c.Bool("fresh") && st.Selection != "" {
		if saved, err := urlstate.Parse(st.Selection); err == nil {
			sel = saved
		}
	}

	gitDir := ""
	if !c.Bool("no-watch") {
		if gitDir, err = watcher.GitDir(repoPath); err != nil {
			logger.Debug("ref watching disabled", "error", err)
			gitDir = ""
		}
	}

	return tui.Run(tui.Options{
		Service:   ctx.Service,
		Renderer:  render.NewRenderer(provider),
		Selection: sel,
		State:     st,
		UI:        cfg.UI,
		Logger:    logger,
	}, store, gitDir)
}

func selectionGiven(c *cli.Context) bool {
	for _, name := range []string{"at", "branch", "commit", "file", "output-index"} {
		if c.IsSet(name) {
			return true
		}
	}
	return false
}
