package output

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// JSONLogWriter writes commit logs as JSON.
type JSONLogWriter struct{}

// JSONLogReport is the JSON output structure for a commit log.
type JSONLogReport struct {
	RepoPath     string       `json:"repo"`
	Branch       string       `json:"branch"`
	GeneratedAt  string       `json:"generatedAt"`
	TotalCommits int          `json:"totalCommits"`
	Current      string       `json:"current,omitempty"`
	Commits      []JSONCommit `json:"commits"`
}

// JSONCommit is the JSON output structure for a single commit.
type JSONCommit struct {
	Index   int      `json:"index"`
	SHA     string   `json:"sha"`
	When    string   `json:"when"`
	Author  string   `json:"author"`
	Email   string   `json:"email,omitempty"`
	Message string   `json:"message"`
	Parents []string `json:"parents,omitempty"`
}

// Write outputs the commit log as JSON.
func (w *JSONLogWriter) Write(report *LogReport, options OutputOptions) error {
	commits := limitTop(report.Commits, options.Top)

	jsonCommits := make([]JSONCommit, len(commits))
	for i, c := range commits {
		jsonCommits[i] = JSONCommit{
			Index:   i + 1,
			SHA:     c.SHA,
			When:    c.When.Format(time.RFC3339),
			Author:  c.Author.Name,
			Email:   c.Author.Email,
			Message: c.Message,
			Parents: c.Parents,
		}
	}

	return writeJSON(JSONLogReport{
		RepoPath:     report.RepoPath,
		Branch:       report.Branch,
		GeneratedAt:  report.GeneratedAt.Format(time.RFC3339),
		TotalCommits: len(report.Commits),
		Current:      report.Current,
		Commits:      jsonCommits,
	}, options.OutputPath)
}

// JSONItemsWriter writes item lists as JSON.
type JSONItemsWriter struct{}

// JSONItemsReport is the JSON output structure for a commit's items.
type JSONItemsReport struct {
	RepoPath     string     `json:"repo"`
	Branch       string     `json:"branch"`
	GeneratedAt  string     `json:"generatedAt"`
	Commit       JSONCommit `json:"commit"`
	TotalCommits int        `json:"totalCommits"`
	Additions    int        `json:"additions"`
	Deletions    int        `json:"deletions"`
	Ordered      bool       `json:"ordered"`
	Items        []JSONItem `json:"items"`
}

// JSONItem is the JSON output structure for a navigable item.
type JSONItem struct {
	Index        int    `json:"index"`
	Kind         string `json:"kind"`
	Path         string `json:"path"`
	Status       string `json:"status,omitempty"`
	PreviousPath string `json:"previousPath,omitempty"`
	Additions    int    `json:"additions"`
	Deletions    int    `json:"deletions"`
}

// Write outputs the item list as JSON.
func (w *JSONItemsWriter) Write(report *ItemsReport, options OutputOptions) error {
	list := limitTop(report.Items, options.Top)

	jsonItems := make([]JSONItem, len(list))
	for i, it := range list {
		add, del := itemChurn(it)
		jsonItems[i] = JSONItem{
			Index:     i + 1,
			Kind:      string(it.Kind),
			Path:      it.Path,
			Additions: add,
			Deletions: del,
		}
		if it.File != nil {
			jsonItems[i].Status = string(it.File.Status)
			jsonItems[i].PreviousPath = it.File.PreviousPath
		}
	}

	c := report.Commit
	return writeJSON(JSONItemsReport{
		RepoPath:    report.RepoPath,
		Branch:      report.Branch,
		GeneratedAt: report.GeneratedAt.Format(time.RFC3339),
		Commit: JSONCommit{
			Index:   report.Index,
			SHA:     c.SHA,
			When:    c.When.Format(time.RFC3339),
			Author:  c.Author.Name,
			Email:   c.Author.Email,
			Message: c.Message,
			Parents: c.Parents,
		},
		TotalCommits: report.TotalCommits,
		Additions:    report.Stats.Additions,
		Deletions:    report.Stats.Deletions,
		Ordered:      report.HasOrder,
		Items:        jsonItems,
	}, options.OutputPath)
}

// JSONNavWriter writes navigation status as JSON.
type JSONNavWriter struct{}

// JSONNavReport is the JSON output structure for navigation status.
type JSONNavReport struct {
	RepoPath     string           `json:"repo"`
	GeneratedAt  string           `json:"generatedAt"`
	Selection    string           `json:"selection"`
	Position     string           `json:"position"`
	Commit       string           `json:"commit,omitempty"`
	CommitIndex  int              `json:"commitIndex"`
	TotalCommits int              `json:"totalCommits"`
	Item         string           `json:"item,omitempty"`
	ItemIndex    int              `json:"itemIndex"`
	TotalItems   int              `json:"totalItems"`
	Can          JSONAvailability `json:"can"`
	Direction    string           `json:"direction,omitempty"`
	Target       *string          `json:"target,omitempty"`
}

// JSONAvailability holds the four move availability flags.
type JSONAvailability struct {
	Back        bool `json:"back"`
	Forward     bool `json:"forward"`
	FastBack    bool `json:"fastBack"`
	FastForward bool `json:"fastForward"`
}

// Write outputs the navigation status as JSON.
func (w *JSONNavWriter) Write(report *NavReport, options OutputOptions) error {
	return writeJSON(newJSONNavReport(report), options.OutputPath)
}

func newJSONNavReport(report *NavReport) JSONNavReport {
	r := JSONNavReport{
		RepoPath:     report.RepoPath,
		GeneratedAt:  report.GeneratedAt.Format(time.RFC3339),
		Selection:    report.Selection.Encode(),
		Position:     report.Position.String(),
		CommitIndex:  report.Counters.Commit,
		TotalCommits: report.Counters.TotalCommits,
		ItemIndex:    report.Counters.Item,
		TotalItems:   report.Counters.TotalItems,
		Can: JSONAvailability{
			Back:        report.CanGoBack,
			Forward:     report.CanGoForward,
			FastBack:    report.CanGoFastBack,
			FastForward: report.CanGoFastForward,
		},
		Direction: report.Direction,
	}
	if report.Commit != nil {
		r.Commit = report.Commit.SHA
	}
	if report.Item != nil {
		r.Item = report.Item.Path
	}
	if report.Target != nil {
		encoded := report.Target.Encode()
		r.Target = &encoded
	}
	return r
}

func writeJSON(data interface{}, outputPath string) error {
	encoder := json.NewEncoder(os.Stdout)
	if outputPath != "" {
		file, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer file.Close()
		encoder = json.NewEncoder(file)
	}

	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
