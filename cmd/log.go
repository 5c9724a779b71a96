package cmd

import (
	"time"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/histwalk/internal/history"
	"github.com/masmgr/histwalk/internal/output"
)

// LogCmd returns the log command.
func LogCmd() *cli.Command {
	return &cli.Command{
		Name:    "log",
		Aliases: []string{"l"},
		Usage:   "List a branch's commits oldest-first",
		Flags:   append(outputFlags(), selectionFlags()...),
		Action:  logAction,
	}
}

func logAction(c *cli.Context) error {
	return executeWithContext(c, func(ctx *CommandContext, c *cli.Context) error {
		sel, err := selectionFromFlags(c)
		if err != nil {
			return err
		}
		branch, err := ctx.Service.Branch(c.Context, sel.Branch)
		if err != nil {
			return err
		}
		commits, err := ctx.Service.Commits(c.Context, branch)
		if err != nil {
			return err
		}

		report := &output.LogReport{
			RepoPath:    ctx.RepoPath,
			Branch:      branch,
			GeneratedAt: time.Now(),
			Commits:     commits,
		}
		if sel.Commit != "" {
			if i := history.Find(commits, sel.Commit); i >= 0 {
				report.Current = commits[i].SHA
			}
		}

		opts := OutputOptions(c)
		return output.NewLogReportWriter(opts.Format).Write(report, opts)
	})
}
