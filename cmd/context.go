package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/histwalk/config"
	"github.com/masmgr/histwalk/internal/git"
	"github.com/masmgr/histwalk/internal/logging"
	"github.com/masmgr/histwalk/internal/navigation"
	"github.com/masmgr/histwalk/internal/output"
	"github.com/masmgr/histwalk/internal/urlstate"
)

// CommandContext holds common state for command execution.
// It encapsulates the shared setup logic across all commands.
type CommandContext struct {
	Config   *config.Config
	Logger   *slog.Logger
	RepoPath string
	Provider git.Provider
	Service  *navigation.Service

	logCloser io.Closer
}

// NewCommandContext creates a context from CLI flags.
// It loads configuration, sets up logging and opens the repository.
func NewCommandContext(c *cli.Context) (*CommandContext, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	logger, closer, err := newLogger(cfg.Log, false)
	if err != nil {
		return nil, err
	}

	repoPath := c.String("repo")
	provider, err := openProvider(c.Context, cfg, repoPath)
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}
	logger.Debug("repository opened", "path", repoPath, "backend", cfg.Navigation.Backend)

	return newCommandContext(cfg, logger, closer, repoPath, provider), nil
}

func newCommandContext(cfg *config.Config, logger *slog.Logger, closer io.Closer, repoPath string, provider git.Provider) *CommandContext {
	svc := navigation.NewService(provider, navigation.Options{
		PerPage:      cfg.Navigation.PerPage,
		TTL:          cfg.Cache.TTL(),
		ManifestPath: cfg.Navigation.ManifestPath,
		Logger:       logger,
	})
	return &CommandContext{
		Config:    cfg,
		Logger:    logger,
		RepoPath:  repoPath,
		Provider:  provider,
		Service:   svc,
		logCloser: closer,
	}
}

// Close releases the log file, if any.
func (ctx *CommandContext) Close() error {
	if ctx.logCloser == nil {
		return nil
	}
	return ctx.logCloser.Close()
}

// openProvider opens the repository with the configured backend.
func openProvider(ctx context.Context, cfg *config.Config, repoPath string) (git.Provider, error) {
	opts := git.ProviderOptions{
		RepoPath: repoPath,
		Include:  cfg.Filters.Include,
		Exclude:  cfg.Filters.Exclude,
	}
	if cfg.Navigation.Backend == config.BackendGit {
		return git.NewCLIRepository(ctx, opts)
	}
	return git.OpenRepository(opts)
}

// newLogger builds the command logger. The browser owns the terminal, so
// with tui set logs go to the configured file or nowhere.
func newLogger(lc config.LogConfig, tui bool) (*slog.Logger, io.Closer, error) {
	level, err := logging.ParseLevel(lc.Level)
	if err != nil {
		return nil, nil, err
	}
	format, err := logging.ParseFormat(lc.Format)
	if err != nil {
		return nil, nil, err
	}

	lcfg := logging.DefaultConfig()
	lcfg.Level = level
	lcfg.Format = format
	switch {
	case lc.File != "":
		lcfg.Output = "file"
		lcfg.FilePath = lc.File
	case tui:
		lcfg.Output = "discard"
	}
	return logging.New(lcfg)
}

// executeWithContext runs fn with a CommandContext and releases it afterwards.
func executeWithContext(c *cli.Context, fn func(ctx *CommandContext, c *cli.Context) error) error {
	ctx, err := NewCommandContext(c)
	if err != nil {
		return err
	}
	defer ctx.Close()
	return fn(ctx, c)
}

// OutputOptions creates OutputOptions from CLI flags.
func OutputOptions(c *cli.Context) output.OutputOptions {
	return output.OutputOptions{
		Format:     getOutputFormat(c.String("format")),
		Top:        c.Int("top"),
		OutputPath: c.String("output"),
	}
}

// selectionFromFlags builds the addressed position: --at first, then the
// individual flags on top of it. --branch keeps a commit named by --at, since
// both flags together address that commit on that branch.
func selectionFromFlags(c *cli.Context) (urlstate.Selection, error) {
	sel, err := urlstate.Parse(c.String("at"))
	if err != nil {
		return urlstate.Selection{}, fmt.Errorf("invalid --at: %w", err)
	}
	if b := c.String("branch"); b != "" {
		if sel.Commit != "" {
			sel.Branch = b
		} else {
			sel = sel.WithBranch(b)
		}
	}
	if commit := c.String("commit"); commit != "" {
		sel.Commit = commit
		sel.Mode = urlstate.ModeHistory
	}
	if f := c.String("file"); f != "" {
		sel.File = f
	}
	if i := c.Int("output-index"); i >= 0 {
		sel.Output = urlstate.IntPtr(i)
	}
	return sel, nil
}
