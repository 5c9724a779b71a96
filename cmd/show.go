package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/histwalk/internal/navigation"
	"github.com/masmgr/histwalk/internal/render"
	"github.com/masmgr/histwalk/internal/urlstate"
)

// ShowCmd returns the show command.
func ShowCmd() *cli.Command {
	flags := append(selectionFlags(),
		&cli.IntFlag{
			Name:  "context",
			Usage: "Lines of diff context",
			Value: 3,
		},
	)

	return &cli.Command{
		Name:    "show",
		Aliases: []string{"s"},
		Usage:   "Render the content at a position: commit info, file diff, run output, or a declared output (mode=output)",
		Flags:   flags,
		Action:  showAction,
	}
}

func showAction(c *cli.Context) error {
	return executeWithContext(c, func(ctx *CommandContext, c *cli.Context) error {
		sel, err := selectionFromFlags(c)
		if err != nil {
			return err
		}
		r := render.NewRenderer(ctx.Provider)
		r.Context = c.Int("context")

		if sel.Mode == urlstate.ModeOutput {
			ov, err := ctx.Service.Outputs(c.Context, sel)
			if err != nil {
				return err
			}
			content, err := r.Output(c.Context, ov.Head.SHA, ov.Outputs, ov.Index)
			if err != nil {
				return err
			}
			return writeContent(c.App.Writer, content)
		}

		view, err := ctx.Service.Locate(c.Context, sel)
		if err != nil {
			return err
		}

		var content render.Content
		cur := view.Cursor
		switch cur.Position() {
		case navigation.NoCommitSelected:
			return fmt.Errorf("no commit selected (use --commit or --at)")
		case navigation.OnCommitInfo:
			content = render.CommitInfo(view.Details, cur.Items())
		default:
			it, _ := cur.Item()
			if content, err = r.Item(c.Context, view.Details, it); err != nil {
				return err
			}
		}

		return writeContent(c.App.Writer, content)
	})
}

func writeContent(w io.Writer, content render.Content) error {
	header := color.New(color.Bold).SprintFunc()
	if _, err := fmt.Fprintln(w, header(content.Title)); err != nil {
		return err
	}
	if content.Kind != render.KindCommitInfo && content.Type.DisplayName != "" {
		fmt.Fprintf(w, "%s (%s)\n", content.Kind, content.Type.DisplayName)
	}
	fmt.Fprintln(w)

	switch content.Kind {
	case render.KindNotice:
		_, err := fmt.Fprintln(w, content.Text)
		return err
	case render.KindDiff:
	default:
		_, err := io.WriteString(w, content.Text)
		return err
	}
	if content.Text == "" {
		_, err := fmt.Fprintln(w, "No textual changes.")
		return err
	}

	added := color.New(color.FgGreen).SprintFunc()
	removed := color.New(color.FgRed).SprintFunc()
	hunk := color.New(color.FgCyan).SprintFunc()
	for _, line := range strings.SplitAfter(content.Text, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			line = header(line)
		case strings.HasPrefix(line, "@@"):
			line = hunk(line)
		case strings.HasPrefix(line, "+"):
			line = added(line)
		case strings.HasPrefix(line, "-"):
			line = removed(line)
		}
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}
