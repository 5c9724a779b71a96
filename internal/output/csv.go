package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

// CSVLogWriter writes commit logs as CSV.
type CSVLogWriter struct{}

// Write outputs the commit log as CSV.
func (w *CSVLogWriter) Write(report *LogReport, options OutputOptions) error {
	writer, file, err := createCSVWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	if err := writer.Write([]string{"Index", "SHA", "When", "Author", "Email", "Message"}); err != nil {
		return err
	}
	for i, c := range limitTop(report.Commits, options.Top) {
		row := []string{
			strconv.Itoa(i + 1),
			c.SHA,
			c.When.Format(time.RFC3339),
			c.Author.Name,
			c.Author.Email,
			c.Subject(),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// CSVItemsWriter writes item lists as CSV.
type CSVItemsWriter struct{}

// Write outputs the item list as CSV.
func (w *CSVItemsWriter) Write(report *ItemsReport, options OutputOptions) error {
	writer, file, err := createCSVWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	headers := []string{"Commit", "Index", "Kind", "Path", "Status", "PreviousPath", "Additions", "Deletions"}
	if err := writer.Write(headers); err != nil {
		return err
	}
	for i, it := range limitTop(report.Items, options.Top) {
		add, del := itemChurn(it)
		prev := ""
		if it.File != nil {
			prev = it.File.PreviousPath
		}
		row := []string{
			report.Commit.SHA,
			strconv.Itoa(i + 1),
			string(it.Kind),
			it.Path,
			itemStatus(it),
			prev,
			fmt.Sprintf("%d", add),
			fmt.Sprintf("%d", del),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// CSVNavWriter writes navigation status as a single CSV row.
type CSVNavWriter struct{}

// Write outputs the navigation status as CSV.
func (w *CSVNavWriter) Write(report *NavReport, options OutputOptions) error {
	writer, file, err := createCSVWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	r := newJSONNavReport(report)
	target := ""
	if r.Target != nil {
		target = *r.Target
	}
	headers := []string{"Selection", "Position", "Commit", "CommitIndex", "TotalCommits", "Item", "ItemIndex",
		"TotalItems", "CanBack", "CanForward", "CanFastBack", "CanFastForward", "Direction", "Target"}
	row := []string{
		r.Selection,
		r.Position,
		r.Commit,
		strconv.Itoa(r.CommitIndex),
		strconv.Itoa(r.TotalCommits),
		r.Item,
		strconv.Itoa(r.ItemIndex),
		strconv.Itoa(r.TotalItems),
		strconv.FormatBool(r.Can.Back),
		strconv.FormatBool(r.Can.Forward),
		strconv.FormatBool(r.Can.FastBack),
		strconv.FormatBool(r.Can.FastForward),
		r.Direction,
		target,
	}
	if err := writer.WriteAll([][]string{headers, row}); err != nil {
		return err
	}
	return nil
}

func createCSVWriter(outputPath string) (*csv.Writer, *os.File, error) {
	if outputPath != "" {
		file, err := os.Create(outputPath)
		if err != nil {
			return nil, nil, err
		}
		return csv.NewWriter(file), file, nil
	}
	return csv.NewWriter(os.Stdout), nil, nil
}
