package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/histwalk/config"
	"github.com/masmgr/histwalk/internal/output"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "histwalk",
		Usage:   "Step through a Git repository's history commit by commit, file by file",
		Version: "1.0.0",
		Commands: []*cli.Command{
			LogCmd(),
			ItemsCmd(),
			NavCmd(),
			ShowCmd(),
			BranchesCmd(),
			TreeCmd(),
			BrowseCmd(),
			TabsCmd(),
			InitConfigCmd(),
		},
		Flags: globalFlags(),
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
		},
		&cli.StringFlag{
			Name:    "repo",
			Aliases: []string{"r"},
			Usage:   "Path to Git repository",
			Value:   ".",
		},
		&cli.StringFlag{
			Name:  "backend",
			Usage: "Repository backend (go-git, git)",
		},
		&cli.IntFlag{
			Name:  "per-page",
			Usage: "Commits fetched per history page",
		},
		&cli.StringSliceFlag{
			Name:  "include",
			Usage: "Glob patterns to include (can be specified multiple times)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "Glob patterns to exclude (can be specified multiple times)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level (debug, info, warn, error)",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Log format (text, json)",
		},
	}
}

// Output flags shared by report commands
func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format (console, json, csv, markdown, ci)",
			Value:   "console",
		},
		&cli.IntFlag{
			Name:    "top",
			Aliases: []string{"n"},
			Usage:   "Number of rows to show (0 for all)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file path (default: stdout)",
		},
	}
}

// Selection flags shared by commands that address a position
func selectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "at",
			Usage: "Position as a query string, e.g. \"mode=history&commit=abc123&file=main.go\"",
		},
		&cli.StringFlag{
			Name:    "branch",
			Aliases: []string{"b"},
			Usage:   "Branch to walk (default: repository default branch); a commit given by --at is kept",
		},
		&cli.StringFlag{
			Name:  "commit",
			Usage: "Commit SHA or unique prefix",
		},
		&cli.StringFlag{
			Name:  "file",
			Usage: "Item path within the commit",
		},
		&cli.IntFlag{
			Name:  "output-index",
			Usage: "Index into the declared outputs",
			Value: -1,
		},
	}
}

// getOutputFormat parses the output format flag.
func getOutputFormat(s string) output.OutputFormat {
	switch s {
	case "json":
		return output.FormatJSON
	case "csv":
		return output.FormatCSV
	case "markdown", "md":
		return output.FormatMarkdown
	case "ci", "ndjson":
		return output.FormatCI
	default:
		return output.FormatConsole
	}
}

// loadConfig loads configuration from file or defaults and applies flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if backend := c.String("backend"); backend != "" {
		cfg.Navigation.Backend = backend
	}
	if perPage := c.Int("per-page"); perPage > 0 {
		cfg.Navigation.PerPage = perPage
	}
	if includes := c.StringSlice("include"); len(includes) > 0 {
		cfg.Filters.Include = includes
	}
	if excludes := c.StringSlice("exclude"); len(excludes) > 0 {
		cfg.Filters.Exclude = excludes
	}
	if level := c.String("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if format := c.String("log-format"); format != "" {
		cfg.Log.Format = format
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Run executes the CLI application.
func Run() {
	if err := App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
