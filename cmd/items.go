package cmd

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/histwalk/internal/output"
)

// ItemsCmd returns the items command.
func ItemsCmd() *cli.Command {
	return &cli.Command{
		Name:      "items",
		Aliases:   []string{"i"},
		Usage:     "Show the navigable items of a commit",
		ArgsUsage: "[commit]",
		Flags:     append(outputFlags(), selectionFlags()...),
		Action:    itemsAction,
	}
}

func itemsAction(c *cli.Context) error {
	return executeWithContext(c, func(ctx *CommandContext, c *cli.Context) error {
		sel, err := selectionFromFlags(c)
		if err != nil {
			return err
		}
		if c.NArg() > 0 {
			sel.Commit = c.Args().First()
		}
		if sel.Commit == "" {
			return fmt.Errorf("no commit given (use an argument or --commit)")
		}
		sel.File = ""
		sel.Output = nil

		view, err := ctx.Service.Locate(c.Context, sel)
		if err != nil {
			return err
		}
		cur := view.Cursor
		ctr := cur.Counters()

		report := &output.ItemsReport{
			RepoPath:     ctx.RepoPath,
			Branch:       view.Selection.Branch,
			GeneratedAt:  time.Now(),
			Commit:       view.Details.Commit,
			Index:        ctr.Commit,
			TotalCommits: ctr.TotalCommits,
			Stats:        view.Details.Stats,
			Items:        cur.Items(),
			HasOrder:     view.Manifest.HasOrder(),
		}

		opts := OutputOptions(c)
		return output.NewItemsReportWriter(opts.Format).Write(report, opts)
	})
}
