package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/masmgr/histwalk/internal/git"
	"github.com/masmgr/histwalk/internal/items"
)

const (
	reportDateLayout     = "2006-01-02"
	reportDateTimeLayout = "2006-01-02T15:04:05"
)

func limitTop[T any](items []T, top int) []T {
	if top <= 0 || top >= len(items) {
		return items
	}
	return items[:top]
}

func openOutputWriter(outputPath string) (io.Writer, *os.File, error) {
	if outputPath == "" {
		return os.Stdout, nil, nil
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return nil, nil, err
	}
	return file, file, nil
}

func truncateMessage(msg string, maxLen int) string {
	if idx := strings.IndexByte(msg, '\n'); idx != -1 {
		msg = msg[:idx]
	}
	if len(msg) > maxLen {
		return msg[:maxLen-3] + "..."
	}
	return msg
}

// itemStatus is the change status of a file item, or its kind for outputs.
func itemStatus(it items.Item) string {
	if it.File != nil {
		return string(it.File.Status)
	}
	return string(it.Kind)
}

func itemChurn(it items.Item) (int, int) {
	if it.File == nil {
		return 0, 0
	}
	return it.File.Additions, it.File.Deletions
}

func commitCounter(index, total int) string {
	if index <= 0 {
		return fmt.Sprintf("-/%d", total)
	}
	return fmt.Sprintf("%d/%d", index, total)
}

func shortOrEmpty(c *git.Commit) string {
	if c == nil {
		return ""
	}
	return c.ShortSHA()
}

// outputStatus describes the selected declared output, using the same
// wording as the browser's status bar for the empty and missing states.
func outputStatus(report *NavReport) string {
	ctr := report.Counters
	switch {
	case ctr.TotalItems == 0:
		return "No outputs available"
	case report.Item == nil:
		return fmt.Sprintf("Output not found (%d outputs)", ctr.TotalItems)
	default:
		return fmt.Sprintf("%d/%d %s", ctr.Item, ctr.TotalItems, report.Item.Path)
	}
}
