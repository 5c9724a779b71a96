package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/histwalk/internal/manifest"
	"github.com/masmgr/histwalk/internal/render"
)

// TreeCmd returns the tree command.
func TreeCmd() *cli.Command {
	return &cli.Command{
		Name:      "tree",
		Aliases:   []string{"t"},
		Usage:     "List the files of the tree at a ref (explorer view)",
		ArgsUsage: "[ref]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Include the reserved metadata directory",
			},
		},
		Action: treeAction,
	}
}

func treeAction(c *cli.Context) error {
	return executeWithContext(c, func(ctx *CommandContext, c *cli.Context) error {
		ref := c.Args().First()
		if ref == "" {
			branch, err := ctx.Service.Branch(c.Context, "")
			if err != nil {
				return err
			}
			ref = branch
		}

		entries, err := ctx.Provider.ListTree(c.Context, ref)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "Mode\tSize\tType\tPath")
		for _, e := range entries {
			if !c.Bool("all") && manifest.IsReserved(e.Path) {
				continue
			}
			info := render.Detect(e.Path)
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", e.Mode, e.Size, info.DisplayName, e.Path)
		}
		return tw.Flush()
	})
}
