package output

import (
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/masmgr/histwalk/internal/git"
	"github.com/masmgr/histwalk/internal/items"
	"github.com/masmgr/histwalk/internal/manifest"
	"github.com/masmgr/histwalk/internal/navigation"
	"github.com/masmgr/histwalk/internal/urlstate"
)

var testTime = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

func testCommits() []git.Commit {
	return []git.Commit{
		{SHA: "aaaa000000000001", When: testTime, Author: git.AuthorInfo{Name: "Ann", Email: "ann@example.com"}, Message: "init | setup\n\nbody"},
		{SHA: "bbbb000000000002", When: testTime.Add(time.Hour), Author: git.AuthorInfo{Name: "Bob"}, Message: "add parser"},
		{SHA: "cccc000000000003", When: testTime.Add(2 * time.Hour), Author: git.AuthorInfo{Name: "Cy"}, Message: "run demo"},
	}
}

func testItems() []items.Item {
	f := git.ChangedFile{Path: "src/a.go", Status: git.StatusModified, Additions: 3, Deletions: 1}
	return []items.Item{
		{Kind: manifest.KindTerminal, Path: "out.log"},
		{Kind: manifest.KindFile, Path: f.Path, File: &f},
	}
}

func TestJSONLogWriter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	report := &LogReport{RepoPath: "/repo", Branch: "main", GeneratedAt: testTime, Commits: testCommits(), Current: "bbbb000000000002"}

	if err := (&JSONLogWriter{}).Write(report, OutputOptions{Top: 2, OutputPath: path}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, err := readTestFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var got JSONLogReport
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.TotalCommits != 3 || len(got.Commits) != 2 {
		t.Errorf("TotalCommits = %d, len(Commits) = %d; expected 3 and 2", got.TotalCommits, len(got.Commits))
	}
	if got.Commits[0].Index != 1 || got.Commits[0].SHA != "aaaa000000000001" {
		t.Errorf("first commit = %+v", got.Commits[0])
	}
	if got.Current != "bbbb000000000002" {
		t.Errorf("Current = %q", got.Current)
	}
}

func TestCSVItemsWriter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.csv")
	report := &ItemsReport{Commit: testCommits()[2], Index: 3, TotalCommits: 3, Items: testItems(), HasOrder: true}

	if err := (&CSVItemsWriter{}).Write(report, OutputOptions{OutputPath: path}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, err := readTestFile(path)
	if err != nil {
		t.Fatal(err)
	}

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[1][2] != "terminal" || rows[1][3] != "out.log" || rows[1][4] != "terminal" {
		t.Errorf("output row = %v", rows[1])
	}
	if rows[2][3] != "src/a.go" || rows[2][4] != "modified" || rows[2][6] != "3" || rows[2][7] != "1" {
		t.Errorf("file row = %v", rows[2])
	}
}

func TestCIItemsWriter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.ndjson")
	report := &ItemsReport{Branch: "main", Commit: testCommits()[2], Index: 3, TotalCommits: 3, Items: testItems()}

	if err := (&CIItemsWriter{}).Write(report, OutputOptions{OutputPath: path}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, err := readTestFile(path)
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %s", len(lines), data)
	}

	var summary CISummary
	if err := json.Unmarshal([]byte(lines[0]), &summary); err != nil {
		t.Fatal(err)
	}
	if summary.Type != "summary" || summary.TotalItems != 2 || summary.OutputCount != 1 {
		t.Errorf("summary = %+v", summary)
	}

	var entry CIItemEntry
	if err := json.Unmarshal([]byte(lines[2]), &entry); err != nil {
		t.Fatal(err)
	}
	if entry.Type != "item" || entry.Index != 2 || entry.Path != "src/a.go" || entry.Additions != 3 {
		t.Errorf("entry = %+v", entry)
	}
}

func TestCILogWriter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.ndjson")
	report := &LogReport{Branch: "main", Commits: testCommits()}

	if err := (&CILogWriter{}).Write(report, OutputOptions{OutputPath: path}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, err := readTestFile(path)
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	var entry CICommitEntry
	if err := json.Unmarshal([]byte(lines[1]), &entry); err != nil {
		t.Fatal(err)
	}
	if entry.Subject != "init | setup" {
		t.Errorf("Subject = %q", entry.Subject)
	}
}

func TestMarkdownLogWriter_EscapesMessages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.md")
	report := &LogReport{RepoPath: "/repo", Branch: "main", GeneratedAt: testTime, Commits: testCommits(), Current: "aaaa000000000001"}

	if err := (&MarkdownLogWriter{}).Write(report, OutputOptions{OutputPath: path}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, err := readTestFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "init \\| setup") {
		t.Errorf("pipe in message not escaped:\n%s", out)
	}
	if !strings.Contains(out, "**`aaaa000`**") {
		t.Errorf("current commit not highlighted:\n%s", out)
	}
}

func navReport(t *testing.T) *NavReport {
	t.Helper()
	commits := testCommits()
	seq := testItems()
	sel := urlstate.Selection{Mode: urlstate.ModeHistory, Branch: "main", Commit: commits[2].SHA, File: "src/a.go"}
	view := navigation.View{Selection: sel, Cursor: navigation.Locate(commits, commits[2].SHA, seq, "src/a.go")}
	return NewNavReport("/repo", view)
}

func TestNewNavReport(t *testing.T) {
	r := navReport(t)

	if r.Position != navigation.OnItem {
		t.Errorf("Position = %v", r.Position)
	}
	if r.Counters != (navigation.Counters{Commit: 3, TotalCommits: 3, Item: 2, TotalItems: 2}) {
		t.Errorf("Counters = %+v", r.Counters)
	}
	if !r.CanGoBack || r.CanGoForward || !r.CanGoFastBack || r.CanGoFastForward {
		t.Errorf("availability = back:%v forward:%v fastBack:%v fastForward:%v",
			r.CanGoBack, r.CanGoForward, r.CanGoFastBack, r.CanGoFastForward)
	}
	if r.Commit == nil || r.Item == nil || r.Item.Path != "src/a.go" {
		t.Errorf("Commit = %v, Item = %v", r.Commit, r.Item)
	}
}

func TestJSONNavWriter_WithMove(t *testing.T) {
	r := navReport(t)
	target := r.Selection.Item(r.Selection.Commit, "out.log")
	r.WithMove(navigation.Back, target)

	path := filepath.Join(t.TempDir(), "nav.json")
	if err := (&JSONNavWriter{}).Write(r, OutputOptions{OutputPath: path}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, err := readTestFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var got JSONNavReport
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Position != "item" || got.ItemIndex != 2 || !got.Can.Back || got.Can.Forward {
		t.Errorf("report = %+v", got)
	}
	if got.Direction != "back" || got.Target == nil || !strings.Contains(*got.Target, "file=out.log") {
		t.Errorf("Direction = %q, Target = %v", got.Direction, got.Target)
	}
}

func TestConsoleNavWriter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nav.txt")
	if err := (&ConsoleNavWriter{}).Write(navReport(t), OutputOptions{OutputPath: path}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, err := readTestFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{"Position: item", "Commit: 3/3 cccc000", "Item: 2/2 src/a.go", "fast-forward"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCSVNavWriter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nav.csv")
	if err := (&CSVNavWriter{}).Write(navReport(t), OutputOptions{OutputPath: path}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, err := readTestFile(path)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1][1] != "item" || rows[1][8] != "true" || rows[1][9] != "false" {
		t.Errorf("rows = %v", rows)
	}
}

func TestConsoleItemsWriter_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.txt")
	report := &ItemsReport{Commit: testCommits()[1], Index: 2, TotalCommits: 3}
	if err := (&ConsoleItemsWriter{}).Write(report, OutputOptions{OutputPath: path}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, err := readTestFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "No navigable items.") || !strings.Contains(string(data), "Position: 2/3") {
		t.Errorf("output:\n%s", data)
	}
}

func TestConsoleNavWriter_OutputMode(t *testing.T) {
	head := testCommits()[2]
	outputs := []manifest.Entry{
		{Kind: manifest.KindTerminal, Path: "out.log"},
		{Kind: manifest.KindImage, Path: "plot.png"},
	}

	tests := []struct {
		name    string
		view    navigation.OutputView
		want    []string
		back    bool
		forward bool
	}{
		{
			name:    "first of two",
			view:    navigation.OutputView{Head: head, Outputs: outputs, Index: 0},
			want:    []string{"Position: output", "Head: cccc000", "Output: 1/2 out.log"},
			forward: true,
		},
		{
			name: "last of two",
			view: navigation.OutputView{Head: head, Outputs: outputs, Index: 1},
			want: []string{"Output: 2/2 plot.png"},
			back: true,
		},
		{
			name: "past the end",
			view: navigation.OutputView{Head: head, Outputs: outputs, Index: 4},
			want: []string{"Output not found (2 outputs)"},
			back: true,
		},
		{
			name: "none declared",
			view: navigation.OutputView{Head: head},
			want: []string{"No outputs available"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewOutputNavReport("/repo", tt.view)
			if r.CanGoBack != tt.back || r.CanGoFastBack != tt.back || r.CanGoForward != tt.forward || r.CanGoFastForward != tt.forward {
				t.Errorf("availability = back:%v forward:%v, expected back:%v forward:%v", r.CanGoBack, r.CanGoForward, tt.back, tt.forward)
			}

			path := filepath.Join(t.TempDir(), "nav.txt")
			if err := (&ConsoleNavWriter{}).Write(r, OutputOptions{OutputPath: path}); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			data, err := readTestFile(path)
			if err != nil {
				t.Fatal(err)
			}
			out := string(data)
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			if strings.Contains(out, "Item:") {
				t.Errorf("output mode should not print an item line:\n%s", out)
			}
		})
	}
}
