package output

import (
	"time"

	"github.com/masmgr/histwalk/internal/git"
	"github.com/masmgr/histwalk/internal/items"
	"github.com/masmgr/histwalk/internal/navigation"
	"github.com/masmgr/histwalk/internal/urlstate"
)

// Compile-time interface conformance checks.
var (
	_ LogReportWriter = (*ConsoleLogWriter)(nil)
	_ LogReportWriter = (*JSONLogWriter)(nil)
	_ LogReportWriter = (*CSVLogWriter)(nil)
	_ LogReportWriter = (*MarkdownLogWriter)(nil)
	_ LogReportWriter = (*CILogWriter)(nil)

	_ ItemsReportWriter = (*ConsoleItemsWriter)(nil)
	_ ItemsReportWriter = (*JSONItemsWriter)(nil)
	_ ItemsReportWriter = (*CSVItemsWriter)(nil)
	_ ItemsReportWriter = (*MarkdownItemsWriter)(nil)
	_ ItemsReportWriter = (*CIItemsWriter)(nil)

	_ NavReportWriter = (*ConsoleNavWriter)(nil)
	_ NavReportWriter = (*JSONNavWriter)(nil)
	_ NavReportWriter = (*CSVNavWriter)(nil)
	_ NavReportWriter = (*MarkdownNavWriter)(nil)
	_ NavReportWriter = (*CINavWriter)(nil)
)

// OutputFormat represents the output format type.
type OutputFormat string

const (
	FormatConsole  OutputFormat = "console"
	FormatJSON     OutputFormat = "json"
	FormatCSV      OutputFormat = "csv"
	FormatMarkdown OutputFormat = "markdown"
	FormatCI       OutputFormat = "ci"
)

// OutputOptions controls output behavior.
type OutputOptions struct {
	Format     OutputFormat
	Top        int
	OutputPath string
}

// LogReport is a branch's commit list, oldest-first.
type LogReport struct {
	RepoPath    string
	Branch      string
	GeneratedAt time.Time
	Commits     []git.Commit
	Current     string // SHA of the selected commit, if any
}

// ItemsReport is the navigable item sequence of one commit.
type ItemsReport struct {
	RepoPath     string
	Branch       string
	GeneratedAt  time.Time
	Commit       git.Commit
	Index        int // 1-based position in the branch, 0 when outside it
	TotalCommits int
	Stats        git.CommitStats
	Items        []items.Item
	HasOrder     bool
}

// NavReport describes a cursor position and, after a move, its destination.
type NavReport struct {
	RepoPath    string
	GeneratedAt time.Time
	Selection   urlstate.Selection
	Position    navigation.Position
	Counters    navigation.Counters
	Commit      *git.Commit
	Item        *items.Item

	CanGoBack        bool
	CanGoForward     bool
	CanGoFastBack    bool
	CanGoFastForward bool

	Direction string
	Target    *urlstate.Selection
}

// NewNavReport summarizes a located view.
func NewNavReport(repoPath string, v navigation.View) *NavReport {
	c := v.Cursor
	r := &NavReport{
		RepoPath:         repoPath,
		GeneratedAt:      time.Now(),
		Selection:        v.Selection,
		Position:         c.Position(),
		Counters:         c.Counters(),
		CanGoBack:        c.CanGoBack(),
		CanGoForward:     c.CanGoForward(),
		CanGoFastBack:    c.CanGoFastBack(),
		CanGoFastForward: c.CanGoFastForward(),
	}
	if commit, ok := c.Commit(); ok {
		r.Commit = &commit
	}
	if it, ok := c.Item(); ok {
		r.Item = &it
	}
	return r
}

// NewOutputNavReport summarizes an output-mode view. Counters.Item is the
// 1-based output and Commit is the branch head the outputs come from.
func NewOutputNavReport(repoPath string, v navigation.OutputView) *NavReport {
	r := &NavReport{
		RepoPath:         repoPath,
		GeneratedAt:      time.Now(),
		Selection:        v.Selection,
		Position:         navigation.OnOutput,
		Counters:         v.Counters(),
		CanGoBack:        v.CanGoPrev(),
		CanGoForward:     v.CanGoNext(),
		CanGoFastBack:    v.CanGoPrev(),
		CanGoFastForward: v.CanGoNext(),
	}
	if v.Head.SHA != "" {
		head := v.Head
		r.Commit = &head
	}
	if e, ok := v.Entry(); ok {
		r.Item = &items.Item{Kind: e.Kind, Path: e.Path}
	}
	return r
}

// WithMove records the destination of a move.
func (r *NavReport) WithMove(dir navigation.Direction, target urlstate.Selection) *NavReport {
	r.Direction = dir.String()
	r.Target = &target
	return r
}

// LogReportWriter writes commit log reports.
type LogReportWriter interface {
	Write(report *LogReport, options OutputOptions) error
}

// ItemsReportWriter writes item list reports.
type ItemsReportWriter interface {
	Write(report *ItemsReport, options OutputOptions) error
}

// NavReportWriter writes navigation status reports.
type NavReportWriter interface {
	Write(report *NavReport, options OutputOptions) error
}

// NewLogReportWriter creates a commit log writer for the specified format.
func NewLogReportWriter(format OutputFormat) LogReportWriter {
	switch format {
	case FormatJSON:
		return &JSONLogWriter{}
	case FormatCSV:
		return &CSVLogWriter{}
	case FormatMarkdown:
		return &MarkdownLogWriter{}
	case FormatCI:
		return &CILogWriter{}
	default:
		return &ConsoleLogWriter{}
	}
}

// NewItemsReportWriter creates an item list writer for the specified format.
func NewItemsReportWriter(format OutputFormat) ItemsReportWriter {
	switch format {
	case FormatJSON:
		return &JSONItemsWriter{}
	case FormatCSV:
		return &CSVItemsWriter{}
	case FormatMarkdown:
		return &MarkdownItemsWriter{}
	case FormatCI:
		return &CIItemsWriter{}
	default:
		return &ConsoleItemsWriter{}
	}
}

// NewNavReportWriter creates a navigation status writer for the specified format.
func NewNavReportWriter(format OutputFormat) NavReportWriter {
	switch format {
	case FormatJSON:
		return &JSONNavWriter{}
	case FormatCSV:
		return &CSVNavWriter{}
	case FormatMarkdown:
		return &MarkdownNavWriter{}
	case FormatCI:
		return &CINavWriter{}
	default:
		return &ConsoleNavWriter{}
	}
}
