package output

import (
	"fmt"
	"strings"

	"github.com/masmgr/histwalk/internal/navigation"
)

// MarkdownLogWriter writes commit logs as Markdown.
type MarkdownLogWriter struct{}

// Write outputs the commit log as Markdown.
func (w *MarkdownLogWriter) Write(report *LogReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	fmt.Fprintln(out, "# Commit History")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "**Repository:** %s\n\n", report.RepoPath)
	fmt.Fprintf(out, "**Branch:** %s\n\n", report.Branch)
	fmt.Fprintf(out, "**Total Commits:** %d\n\n", len(report.Commits))

	fmt.Fprintln(out, "| # | SHA | Date | Author | Message |")
	fmt.Fprintln(out, "|---|-----|------|--------|---------|")
	for i, c := range limitTop(report.Commits, options.Top) {
		sha := "`" + c.ShortSHA() + "`"
		if c.SHA == report.Current {
			sha = "**" + sha + "**"
		}
		fmt.Fprintf(out, "| %d | %s | %s | %s | %s |\n",
			i+1, sha, c.When.Format(reportDateLayout),
			escapeMarkdown(c.Author.Name), escapeMarkdown(truncateMessage(c.Message, 60)))
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "---\n*Generated at %s*\n", report.GeneratedAt.Format(reportDateTimeLayout))
	return nil
}

// MarkdownItemsWriter writes item lists as Markdown.
type MarkdownItemsWriter struct{}

// Write outputs the item list as Markdown.
func (w *MarkdownItemsWriter) Write(report *ItemsReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	c := report.Commit
	fmt.Fprintf(out, "# Commit `%s`\n\n", c.ShortSHA())
	fmt.Fprintf(out, "> %s\n\n", escapeMarkdown(c.Subject()))
	fmt.Fprintf(out, "**Position:** %s\n\n", commitCounter(report.Index, report.TotalCommits))
	fmt.Fprintf(out, "**Author:** %s\n\n", escapeMarkdown(c.Author.Name))
	fmt.Fprintf(out, "**Changes:** +%d -%d\n\n", report.Stats.Additions, report.Stats.Deletions)

	if len(report.Items) == 0 {
		fmt.Fprintln(out, "*No navigable items.*")
		return nil
	}

	fmt.Fprintln(out, "| # | Kind | Status | Path | + | - |")
	fmt.Fprintln(out, "|---|------|--------|------|---|---|")
	for i, it := range limitTop(report.Items, options.Top) {
		add, del := itemChurn(it)
		fmt.Fprintf(out, "| %d | %s %s | %s | `%s` | %d | %d |\n",
			i+1, kindEmoji(string(it.Kind)), it.Kind, itemStatus(it), it.Path, add, del)
	}
	return nil
}

// MarkdownNavWriter writes navigation status as Markdown.
type MarkdownNavWriter struct{}

// Write outputs the navigation status as Markdown.
func (w *MarkdownNavWriter) Write(report *NavReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	ctr := report.Counters
	fmt.Fprintln(out, "# Navigation")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "**Selection:** `?%s`\n\n", report.Selection.Encode())
	fmt.Fprintf(out, "**Position:** %s\n\n", report.Position)
	if report.Position == navigation.OnOutput {
		fmt.Fprintf(out, "**Output:** %s\n\n", escapeMarkdown(outputStatus(report)))
	} else {
		fmt.Fprintf(out, "**Commit:** %s\n\n", commitCounter(ctr.Commit, ctr.TotalCommits))
		if report.Item != nil {
			fmt.Fprintf(out, "**Item:** %d/%d `%s`\n\n", ctr.Item, ctr.TotalItems, report.Item.Path)
		}
	}

	fmt.Fprintln(out, "| Move | Available |")
	fmt.Fprintln(out, "|------|-----------|")
	fmt.Fprintf(out, "| back | %s |\n", checkMark(report.CanGoBack))
	fmt.Fprintf(out, "| forward | %s |\n", checkMark(report.CanGoForward))
	fmt.Fprintf(out, "| fast-back | %s |\n", checkMark(report.CanGoFastBack))
	fmt.Fprintf(out, "| fast-forward | %s |\n", checkMark(report.CanGoFastForward))

	if report.Target != nil {
		fmt.Fprintf(out, "\n**%s:** `?%s`\n", report.Direction, report.Target.Encode())
	}
	return nil
}

func kindEmoji(kind string) string {
	switch kind {
	case "image":
		return "🖼️"
	case "terminal":
		return "🖥️"
	default:
		return "📄"
	}
}

func checkMark(ok bool) string {
	if ok {
		return "✅"
	}
	return "❌"
}

func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"|", "\\|",
		"*", "\\*",
		"_", "\\_",
		"`", "\\`",
	)
	return replacer.Replace(s)
}
