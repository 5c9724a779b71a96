package output

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/masmgr/histwalk/internal/navigation"
)

// ConsoleLogWriter writes commit logs to the console.
type ConsoleLogWriter struct{}

// Write outputs the commit log to the console.
func (w *ConsoleLogWriter) Write(report *LogReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	commits := limitTop(report.Commits, options.Top)

	color.New(color.FgGreen).Fprintln(out, "Commit History")
	fmt.Fprintf(out, "Repository: %s\n", report.RepoPath)
	fmt.Fprintf(out, "Branch: %s\n", report.Branch)
	fmt.Fprintf(out, "Total commits: %d\n\n", len(report.Commits))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSHA\tDate\tAuthor\tMessage")
	marker := color.New(color.FgCyan).SprintFunc()
	for i, c := range commits {
		sha := c.ShortSHA()
		if c.SHA == report.Current {
			sha = marker("*" + sha)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			i+1,
			sha,
			c.When.Format(reportDateLayout),
			c.Author.Name,
			truncateMessage(c.Message, 60),
		)
	}
	return tw.Flush()
}

// ConsoleItemsWriter writes a commit's item list to the console.
type ConsoleItemsWriter struct{}

// Write outputs the item list to the console.
func (w *ConsoleItemsWriter) Write(report *ItemsReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	c := report.Commit
	color.New(color.FgGreen).Fprintf(out, "Commit %s\n", c.ShortSHA())
	fmt.Fprintf(out, "Position: %s\n", commitCounter(report.Index, report.TotalCommits))
	fmt.Fprintf(out, "Author: %s <%s>\n", c.Author.Name, c.Author.Email)
	fmt.Fprintf(out, "Date: %s\n", c.When.Format(reportDateTimeLayout))
	fmt.Fprintf(out, "Message: %s\n", truncateMessage(c.Message, 72))
	fmt.Fprintf(out, "Changes: +%d -%d\n", report.Stats.Additions, report.Stats.Deletions)
	if report.HasOrder {
		fmt.Fprintln(out, "Order: manifest")
	} else {
		fmt.Fprintln(out, "Order: provider")
	}
	fmt.Fprintln(out)

	if len(report.Items) == 0 {
		color.New(color.FgYellow).Fprintln(out, "No navigable items.")
		return nil
	}

	added := color.New(color.FgGreen).SprintFunc()
	removed := color.New(color.FgRed).SprintFunc()
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tKind\tStatus\tPath\t+\t-")
	for i, it := range limitTop(report.Items, options.Top) {
		add, del := itemChurn(it)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			i+1,
			it.Kind,
			itemStatus(it),
			it.Path,
			added(add),
			removed(del),
		)
	}
	return tw.Flush()
}

// ConsoleNavWriter writes navigation status to the console.
type ConsoleNavWriter struct{}

// Write outputs the navigation status to the console.
func (w *ConsoleNavWriter) Write(report *NavReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	ctr := report.Counters
	color.New(color.FgGreen).Fprintln(out, "Navigation")
	fmt.Fprintf(out, "Selection: ?%s\n", report.Selection.Encode())
	fmt.Fprintf(out, "Position: %s\n", report.Position)
	switch {
	case report.Position == navigation.OnOutput:
		fmt.Fprintf(out, "Head: %s\n", shortOrEmpty(report.Commit))
		fmt.Fprintf(out, "Output: %s\n", outputStatus(report))
	case report.Item != nil:
		fmt.Fprintf(out, "Commit: %s %s\n", commitCounter(ctr.Commit, ctr.TotalCommits), shortOrEmpty(report.Commit))
		fmt.Fprintf(out, "Item: %d/%d %s\n", ctr.Item, ctr.TotalItems, report.Item.Path)
	case report.Commit != nil:
		fmt.Fprintf(out, "Commit: %s %s\n", commitCounter(ctr.Commit, ctr.TotalCommits), shortOrEmpty(report.Commit))
		fmt.Fprintf(out, "Item: commit info (%d items)\n", ctr.TotalItems)
	default:
		fmt.Fprintf(out, "Commit: %s\n", commitCounter(ctr.Commit, ctr.TotalCommits))
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\nMove\tAvailable")
	fmt.Fprintf(tw, "back\t%s\n", availability(report.CanGoBack))
	fmt.Fprintf(tw, "forward\t%s\n", availability(report.CanGoForward))
	fmt.Fprintf(tw, "fast-back\t%s\n", availability(report.CanGoFastBack))
	fmt.Fprintf(tw, "fast-forward\t%s\n", availability(report.CanGoFastForward))
	if err := tw.Flush(); err != nil {
		return err
	}

	if report.Target != nil {
		fmt.Fprintln(out)
		color.New(color.FgCyan).Fprintf(out, "%s -> ?%s\n", report.Direction, report.Target.Encode())
	}
	return nil
}

func availability(ok bool) string {
	if ok {
		return color.GreenString("yes")
	}
	return color.New(color.Faint).Sprint("no")
}
