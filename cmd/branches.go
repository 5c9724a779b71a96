package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

// BranchesCmd returns the branches command.
func BranchesCmd() *cli.Command {
	return &cli.Command{
		Name:   "branches",
		Usage:  "List branches; the default branch is marked with *",
		Action: branchesAction,
	}
}

func branchesAction(c *cli.Context) error {
	return executeWithContext(c, func(ctx *CommandContext, c *cli.Context) error {
		branches, err := ctx.Provider.ListBranches(c.Context)
		if err != nil {
			return err
		}
		def, err := ctx.Provider.DefaultBranch(c.Context)
		if err != nil {
			ctx.Logger.Debug("default branch unknown", "error", err)
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, b := range branches {
			marker := " "
			name := b.Name
			if b.Name == def {
				marker = "*"
				name = color.GreenString(b.Name)
			}
			sha := b.SHA
			if len(sha) > 7 {
				sha = sha[:7]
			}
			fmt.Fprintf(tw, "%s %s\t%s\n", marker, name, sha)
		}
		return tw.Flush()
	})
}
