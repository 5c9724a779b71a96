// Package navigation walks a branch's history as one flattened sequence:
// for each commit, its commit-info view followed by its items.
package navigation

import (
	"github.com/masmgr/histwalk/internal/git"
	"github.com/masmgr/histwalk/internal/history"
	"github.com/masmgr/histwalk/internal/items"
)

// Position classifies where a cursor stands.
type Position int

const (
	NoCommitSelected Position = iota
	OnCommitInfo
	OnItem
	// OnOutput is output mode: an entry of the branch head's declared outputs.
	OnOutput
)

func (p Position) String() string {
	switch p {
	case OnCommitInfo:
		return "commit-info"
	case OnItem:
		return "item"
	case OnOutput:
		return "output"
	default:
		return "none"
	}
}

// Direction is a navigation move.
type Direction int

const (
	Back Direction = iota
	Forward
	FastBack
	FastForward
)

func (d Direction) String() string {
	switch d {
	case Back:
		return "back"
	case Forward:
		return "forward"
	case FastBack:
		return "fast-back"
	case FastForward:
		return "fast-forward"
	}
	return "unknown"
}

// ParseDirection maps a move name to its Direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "back", "prev", "previous":
		return Back, true
	case "forward", "next":
		return Forward, true
	case "fast-back", "fastback", "prev-commit":
		return FastBack, true
	case "fast-forward", "fastforward", "next-commit":
		return FastForward, true
	}
	return 0, false
}

// Cursor is a position in the oldest-first commit list plus the item sequence
// of the selected commit. It is a value; moves return targets and never
// mutate the cursor.
type Cursor struct {
	commits     []git.Commit
	sha         string
	commitIndex int // -1 when the selected commit is not in the list
	items       []items.Item
	itemIndex   int // -1 on commit-info
	position    Position
}

// Locate places a cursor on sha and, within its item sequence seq, on
// itemPath. An empty sha selects no commit. A sha outside commits still
// selects that commit, but only moves within its items are possible. An empty
// or unknown itemPath puts the cursor on commit-info.
func Locate(commits []git.Commit, sha string, seq []items.Item, itemPath string) Cursor {
	c := Cursor{commits: commits, sha: sha, commitIndex: -1, itemIndex: -1}
	if sha == "" {
		c.position = NoCommitSelected
		return c
	}

	c.commitIndex = history.Find(commits, sha)
	if c.commitIndex >= 0 {
		c.sha = commits[c.commitIndex].SHA
	}
	c.items = seq
	c.position = OnCommitInfo
	if itemPath != "" {
		if i := items.IndexOf(seq, itemPath); i >= 0 {
			c.itemIndex = i
			c.position = OnItem
		}
	}
	return c
}

// SHA returns the selected commit SHA, expanded when it was found in the list.
func (c Cursor) SHA() string { return c.sha }

// Position returns the cursor classification.
func (c Cursor) Position() Position { return c.position }

// Commit returns the selected commit when it is in the list.
func (c Cursor) Commit() (git.Commit, bool) {
	if c.commitIndex < 0 {
		return git.Commit{}, false
	}
	return c.commits[c.commitIndex], true
}

// Item returns the selected item when the cursor is on one.
func (c Cursor) Item() (items.Item, bool) {
	if c.position != OnItem {
		return items.Item{}, false
	}
	return c.items[c.itemIndex], true
}

// Items returns the selected commit's item sequence.
func (c Cursor) Items() []items.Item { return c.items }

func (c Cursor) hasPrevCommit() bool {
	return c.position != NoCommitSelected && c.commitIndex > 0
}

func (c Cursor) hasNextCommit() bool {
	return c.position != NoCommitSelected && c.commitIndex >= 0 && c.commitIndex < len(c.commits)-1
}

// CanGoForward reports whether Forward moves anywhere.
func (c Cursor) CanGoForward() bool {
	switch c.position {
	case OnCommitInfo:
		return len(c.items) > 0 || c.hasNextCommit()
	case OnItem:
		return c.nextItem() < len(c.items) || c.hasNextCommit()
	}
	return false
}

// nextItem returns the index of the first item after the cursor that a
// selection can address. A repeated path always locates to its first
// occurrence, so later repeats are skipped.
func (c Cursor) nextItem() int {
	for next := c.itemIndex + 1; next < len(c.items); next++ {
		if items.IndexOf(c.items, c.items[next].Path) == next {
			return next
		}
	}
	return len(c.items)
}

// CanGoBack reports whether Back moves anywhere. From commit-info it only
// needs a previous commit to exist, whatever that commit's items are.
func (c Cursor) CanGoBack() bool {
	switch c.position {
	case OnCommitInfo:
		return c.hasPrevCommit()
	case OnItem:
		return true
	}
	return false
}

// CanGoFastForward reports whether a next commit exists.
func (c Cursor) CanGoFastForward() bool { return c.hasNextCommit() }

// CanGoFastBack reports whether a previous commit exists.
func (c Cursor) CanGoFastBack() bool { return c.hasPrevCommit() }

// Can reports availability for dir.
func (c Cursor) Can(dir Direction) bool {
	switch dir {
	case Back:
		return c.CanGoBack()
	case Forward:
		return c.CanGoForward()
	case FastBack:
		return c.CanGoFastBack()
	case FastForward:
		return c.CanGoFastForward()
	}
	return false
}

// NeedsPrevious reports whether resolving dir requires the previous commit's
// item sequence.
func (c Cursor) NeedsPrevious(dir Direction) bool {
	return dir == Back && c.position == OnCommitInfo && c.hasPrevCommit()
}

// PreviousCommit returns the commit before the selected one.
func (c Cursor) PreviousCommit() (git.Commit, bool) {
	if !c.hasPrevCommit() {
		return git.Commit{}, false
	}
	return c.commits[c.commitIndex-1], true
}

// TargetKind says what a move lands on.
type TargetKind int

const (
	Stay TargetKind = iota
	ToCommitInfo
	ToItem
)

// Target is the destination of a move.
type Target struct {
	Kind   TargetKind
	Commit git.Commit
	Item   items.Item
}

// Step computes the destination of dir. For Back from commit-info prev must be
// the previous commit's item sequence (see NeedsPrevious); it is ignored for
// every other move. An unavailable move returns a Stay target.
func (c Cursor) Step(dir Direction, prev []items.Item) Target {
	if !c.Can(dir) {
		return Target{Kind: Stay}
	}

	switch dir {
	case FastForward:
		return Target{Kind: ToCommitInfo, Commit: c.commits[c.commitIndex+1]}
	case FastBack:
		return Target{Kind: ToCommitInfo, Commit: c.commits[c.commitIndex-1]}
	case Forward:
		if next := c.nextItem(); next < len(c.items) {
			return Target{Kind: ToItem, Commit: c.current(), Item: c.items[next]}
		}
		return Target{Kind: ToCommitInfo, Commit: c.commits[c.commitIndex+1]}
	case Back:
		if c.position == OnItem {
			if c.itemIndex == 0 {
				return Target{Kind: ToCommitInfo, Commit: c.current()}
			}
			return Target{Kind: ToItem, Commit: c.current(), Item: c.items[c.itemIndex-1]}
		}
		prevCommit := c.commits[c.commitIndex-1]
		if len(prev) == 0 {
			return Target{Kind: ToCommitInfo, Commit: prevCommit}
		}
		return Target{Kind: ToItem, Commit: prevCommit, Item: prev[len(prev)-1]}
	}
	return Target{Kind: Stay}
}

// current returns the selected commit; outside the list only its SHA is known.
func (c Cursor) current() git.Commit {
	if c.commitIndex < 0 {
		return git.Commit{SHA: c.sha}
	}
	return c.commits[c.commitIndex]
}

// Counters are 1-based display positions; 0 means "not applicable".
type Counters struct {
	Commit       int
	TotalCommits int
	Item         int // 0 on commit-info
	TotalItems   int
}

// Counters returns the display counters for the cursor.
func (c Cursor) Counters() Counters {
	ctr := Counters{TotalCommits: len(c.commits)}
	if c.position == NoCommitSelected {
		return ctr
	}
	ctr.Commit = c.commitIndex + 1
	ctr.TotalItems = len(c.items)
	if c.position == OnItem {
		ctr.Item = c.itemIndex + 1
	}
	return ctr
}
