package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/histwalk/internal/navigation"
	"github.com/masmgr/histwalk/internal/output"
	"github.com/masmgr/histwalk/internal/urlstate"
)

// NavCmd returns the nav command.
func NavCmd() *cli.Command {
	flags := append(outputFlags(), selectionFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:    "move",
			Aliases: []string{"m"},
			Usage:   "Move to compute (back, forward, fast-back, fast-forward)",
		},
	)

	return &cli.Command{
		Name:    "nav",
		Aliases: []string{"n"},
		Usage:   "Show cursor status for a position and where a move leads",
		Flags:   flags,
		Action:  navAction,
	}
}

func navAction(c *cli.Context) error {
	return executeWithContext(c, func(ctx *CommandContext, c *cli.Context) error {
		sel, err := selectionFromFlags(c)
		if err != nil {
			return err
		}

		var (
			dir     navigation.Direction
			hasMove bool
		)
		if m := c.String("move"); m != "" {
			d, ok := navigation.ParseDirection(m)
			if !ok {
				return fmt.Errorf("unknown move %q (expected back, forward, fast-back or fast-forward)", m)
			}
			dir, hasMove = d, true
		}

		var report *output.NavReport
		if sel.Mode == urlstate.ModeOutput {
			ov, err := ctx.Service.Outputs(c.Context, sel)
			if err != nil {
				return err
			}
			report = output.NewOutputNavReport(ctx.RepoPath, ov)
		} else {
			view, err := ctx.Service.Locate(c.Context, sel)
			if err != nil {
				return err
			}
			report = output.NewNavReport(ctx.RepoPath, view)
		}

		if hasMove {
			target, err := ctx.Service.Move(c.Context, report.Selection, dir)
			if err != nil {
				return err
			}
			report.WithMove(dir, target)
		}

		opts := OutputOptions(c)
		return output.NewNavReportWriter(opts.Format).Write(report, opts)
	})
}
