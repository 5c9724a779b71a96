package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// CISummary is the first line of CI output.
type CISummary struct {
	Type         string `json:"type"`
	Branch       string `json:"branch,omitempty"`
	Commit       string `json:"commit,omitempty"`
	TotalCommits int    `json:"totalCommits"`
	TotalItems   int    `json:"totalItems,omitempty"`
	OutputCount  int    `json:"outputCount,omitempty"`
}

// CICommitEntry represents a single commit in CI output.
type CICommitEntry struct {
	Type    string `json:"type"`
	Index   int    `json:"index"`
	SHA     string `json:"sha"`
	When    string `json:"when"`
	Author  string `json:"author"`
	Subject string `json:"subject"`
}

// CIItemEntry represents a single navigable item in CI output.
type CIItemEntry struct {
	Type      string `json:"type"`
	Index     int    `json:"index"`
	Kind      string `json:"kind"`
	Path      string `json:"path"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// CILogWriter writes commit logs as NDJSON (one JSON object per line) for CI pipelines.
type CILogWriter struct{}

// Write outputs the commit log as NDJSON.
func (w *CILogWriter) Write(report *LogReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	summary := CISummary{
		Type:         "summary",
		Branch:       report.Branch,
		TotalCommits: len(report.Commits),
	}
	if err := writeNDJSONLine(out, summary); err != nil {
		return err
	}

	for i, c := range limitTop(report.Commits, options.Top) {
		entry := CICommitEntry{
			Type:    "commit",
			Index:   i + 1,
			SHA:     c.SHA,
			When:    c.When.Format(time.RFC3339),
			Author:  c.Author.Name,
			Subject: c.Subject(),
		}
		if err := writeNDJSONLine(out, entry); err != nil {
			return err
		}
	}
	return nil
}

// CIItemsWriter writes item lists as NDJSON.
type CIItemsWriter struct{}

// Write outputs the item list as NDJSON.
func (w *CIItemsWriter) Write(report *ItemsReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	var outputs int
	for _, it := range report.Items {
		if it.IsOutput() {
			outputs++
		}
	}
	summary := CISummary{
		Type:         "summary",
		Branch:       report.Branch,
		Commit:       report.Commit.SHA,
		TotalCommits: report.TotalCommits,
		TotalItems:   len(report.Items),
		OutputCount:  outputs,
	}
	if err := writeNDJSONLine(out, summary); err != nil {
		return err
	}

	for i, it := range limitTop(report.Items, options.Top) {
		add, del := itemChurn(it)
		entry := CIItemEntry{
			Type:      "item",
			Index:     i + 1,
			Kind:      string(it.Kind),
			Path:      it.Path,
			Status:    itemStatus(it),
			Additions: add,
			Deletions: del,
		}
		if err := writeNDJSONLine(out, entry); err != nil {
			return err
		}
	}
	return nil
}

// CINavWriter writes navigation status as a single NDJSON line.
type CINavWriter struct{}

// Write outputs the navigation status as NDJSON.
func (w *CINavWriter) Write(report *NavReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	line := struct {
		Type string `json:"type"`
		JSONNavReport
	}{Type: "nav", JSONNavReport: newJSONNavReport(report)}
	return writeNDJSONLine(out, line)
}

func writeNDJSONLine(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal NDJSON: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
