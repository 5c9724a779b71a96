package navigation

import (
	"context"

	"github.com/masmgr/histwalk/internal/git"
	"github.com/masmgr/histwalk/internal/manifest"
	"github.com/masmgr/histwalk/internal/urlstate"
)

// OutputView is an output-mode selection resolved against the outputs
// declared by the manifest at the branch head.
type OutputView struct {
	Selection urlstate.Selection
	Head      git.Commit // zero when the branch has no commits
	Outputs   []manifest.Entry
	// Index is the requested output; it may be out of range.
	Index int
}

// Total returns the number of declared outputs.
func (v OutputView) Total() int { return len(v.Outputs) }

// Entry returns the selected output.
func (v OutputView) Entry() (manifest.Entry, bool) {
	if v.Index < 0 || v.Index >= len(v.Outputs) {
		return manifest.Entry{}, false
	}
	return v.Outputs[v.Index], true
}

// CanGoPrev reports whether an earlier output exists.
func (v OutputView) CanGoPrev() bool {
	return v.Index > 0 && len(v.Outputs) > 0
}

// CanGoNext reports whether a later output exists.
func (v OutputView) CanGoNext() bool {
	return v.Index < len(v.Outputs)-1
}

// Can reports whether dir leads anywhere. Fast moves step one output like
// their plain counterparts.
func (v OutputView) Can(dir Direction) bool {
	switch dir {
	case Back, FastBack:
		return v.CanGoPrev()
	case Forward, FastForward:
		return v.CanGoNext()
	}
	return false
}

// Step returns the selection one output in dir away, or the current
// selection when the move is unavailable. Stepping back from past the end
// lands on the last output.
func (v OutputView) Step(dir Direction) urlstate.Selection {
	if !v.Can(dir) {
		return v.Selection
	}
	switch dir {
	case Back, FastBack:
		return v.Selection.OutputAt(min(v.Index-1, len(v.Outputs)-1))
	default:
		return v.Selection.OutputAt(max(v.Index+1, 0))
	}
}

// Counters returns display counters: Item is the 1-based output, 0 when not found.
func (v OutputView) Counters() Counters {
	ctr := Counters{TotalItems: len(v.Outputs)}
	if _, ok := v.Entry(); ok {
		ctr.Item = v.Index + 1
	}
	return ctr
}

// Outputs resolves an output-mode selection. A missing output index means
// the first output.
func (s *Service) Outputs(ctx context.Context, sel urlstate.Selection) (OutputView, error) {
	branch, err := s.Branch(ctx, sel.Branch)
	if err != nil {
		return OutputView{}, err
	}
	sel.Branch = branch

	idx := 0
	if sel.Output != nil {
		idx = *sel.Output
	}
	v := OutputView{Selection: sel.OutputAt(idx), Index: idx}

	commits, err := s.Commits(ctx, branch)
	if err != nil {
		return OutputView{}, err
	}
	if len(commits) == 0 {
		return v, nil
	}
	v.Head = commits[len(commits)-1]

	m, err := s.Manifest(ctx, v.Head.SHA)
	if err != nil {
		return OutputView{}, err
	}
	if m != nil {
		v.Outputs = m.Outputs
	}
	return v, nil
}
