// Package urlstate encodes and decodes the browser selection carried in a
// query string: mode, branch, commit, file and output.
package urlstate

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Mode is the top-level view of the browser.
type Mode string

const (
	ModeExplorer Mode = "explorer"
	ModeHistory  Mode = "history"
	ModeOutput   Mode = "output"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeExplorer, ModeHistory, ModeOutput:
		return true
	}
	return false
}

// Selection is the decoded query state.
type Selection struct {
	Mode   Mode
	Branch string
	Commit string
	File   string
	Output *int // index into the manifest outputs list
}

// Parse decodes a query string ("mode=history&commit=abc" or "?mode=...").
// Unknown keys are ignored; an unknown mode or a non-integer output is an error.
func Parse(query string) (Selection, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(query, "?"))
	if err != nil {
		return Selection{}, fmt.Errorf("parse selection: %w", err)
	}

	sel := Selection{
		Mode:   Mode(values.Get("mode")),
		Branch: values.Get("branch"),
		Commit: values.Get("commit"),
		File:   values.Get("file"),
	}
	if sel.Mode == "" {
		sel.Mode = ModeExplorer
	}
	if !sel.Mode.Valid() {
		return Selection{}, fmt.Errorf("unknown mode %q", sel.Mode)
	}

	if raw := values.Get("output"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Selection{}, fmt.Errorf("invalid output index %q: %w", raw, err)
		}
		sel.Output = &n
	}
	return sel, nil
}

// Encode renders the selection as a query string with empty fields omitted.
func (s Selection) Encode() string {
	values := url.Values{}
	if s.Mode != "" {
		values.Set("mode", string(s.Mode))
	}
	if s.Branch != "" {
		values.Set("branch", s.Branch)
	}
	if s.Commit != "" {
		values.Set("commit", s.Commit)
	}
	if s.File != "" {
		values.Set("file", s.File)
	}
	if s.Output != nil {
		values.Set("output", strconv.Itoa(*s.Output))
	}
	return values.Encode()
}

// HasCommit reports whether a commit is selected.
func (s Selection) HasCommit() bool {
	return s.Commit != ""
}

// OnCommitInfo reports whether a commit is selected without a file or output.
func (s Selection) OnCommitInfo() bool {
	return s.Commit != "" && s.File == "" && s.Output == nil
}

// CommitInfo returns the history selection for commit with no item selected.
func (s Selection) CommitInfo(commit string) Selection {
	return Selection{Mode: ModeHistory, Branch: s.Branch, Commit: commit}
}

// Item returns the history selection for path within commit.
func (s Selection) Item(commit, path string) Selection {
	return Selection{Mode: ModeHistory, Branch: s.Branch, Commit: commit, File: path}
}

// OutputAt returns the output-mode selection of the i-th declared output.
func (s Selection) OutputAt(i int) Selection {
	return Selection{Mode: ModeOutput, Branch: s.Branch, Output: &i}
}

// WithBranch switches branch, clearing the commit selection.
func (s Selection) WithBranch(branch string) Selection {
	return Selection{Mode: s.Mode, Branch: branch}
}

// Equal reports whether two selections are identical.
func (s Selection) Equal(o Selection) bool {
	if s.Mode != o.Mode || s.Branch != o.Branch || s.Commit != o.Commit || s.File != o.File {
		return false
	}
	if (s.Output == nil) != (o.Output == nil) {
		return false
	}
	return s.Output == nil || *s.Output == *o.Output
}

// IntPtr is a helper for building selections with an output index.
func IntPtr(n int) *int {
	return &n
}
