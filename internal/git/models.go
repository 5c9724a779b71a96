package git

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a ref, commit or path does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNotAFile is returned when ReadFile targets a directory or submodule.
	ErrNotAFile = errors.New("not a file")
)

// Commit represents a commit as seen by the navigation layer.
type Commit struct {
	SHA     string
	When    time.Time
	Author  AuthorInfo
	Message string
	Parents []string
}

// Subject returns the first line of the commit message.
func (c Commit) Subject() string {
	if idx := strings.IndexByte(c.Message, '\n'); idx != -1 {
		return c.Message[:idx]
	}
	return c.Message
}

// ShortSHA returns the abbreviated commit hash.
func (c Commit) ShortSHA() string {
	if len(c.SHA) > 7 {
		return c.SHA[:7]
	}
	return c.SHA
}

// AuthorInfo represents commit author information.
type AuthorInfo struct {
	Name  string
	Email string
}

// ChangeStatus is the change status of a file within a commit.
type ChangeStatus string

const (
	StatusAdded    ChangeStatus = "added"
	StatusRemoved  ChangeStatus = "removed"
	StatusModified ChangeStatus = "modified"
	StatusRenamed  ChangeStatus = "renamed"
)

// ChangedFile represents a file change within a commit.
type ChangedFile struct {
	Path         string
	PreviousPath string // For renames
	Status       ChangeStatus
	Additions    int
	Deletions    int
}

// Changes returns total lines changed (additions + deletions).
func (f ChangedFile) Changes() int {
	return f.Additions + f.Deletions
}

// CommitStats holds line totals for a commit.
type CommitStats struct {
	Additions int
	Deletions int
}

// Total returns additions + deletions.
func (s CommitStats) Total() int {
	return s.Additions + s.Deletions
}

// CommitPage is one page of a newest-first commit listing.
type CommitPage struct {
	Commits []Commit
	HasMore bool
}

// CommitDetails bundles a commit with its changed files.
type CommitDetails struct {
	Commit Commit
	Files  []ChangedFile
	Stats  CommitStats
}

// Branch is a local branch head.
type Branch struct {
	Name string
	SHA  string
}

// TreeEntry is a file in a recursive tree listing.
type TreeEntry struct {
	Path string
	Mode string
	Size int64
	SHA  string
}

// ProviderOptions configures repository-backed providers.
type ProviderOptions struct {
	RepoPath string
	Include  []string // Glob patterns to include
	Exclude  []string // Glob patterns to exclude
}

func sumStats(files []ChangedFile) CommitStats {
	var s CommitStats
	for _, f := range files {
		s.Additions += f.Additions
		s.Deletions += f.Deletions
	}
	return s
}
