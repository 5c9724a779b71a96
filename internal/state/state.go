// Package state persists the browser session: open tabs, the active tab and
// the last selection. Storage is behind the Store port.
package state

import (
	"context"
	"path"
	"time"

	"github.com/google/uuid"
)

// Store loads and saves the session state.
type Store interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, s State) error
	Close() error
}

// Tab is an open file at a ref.
type Tab struct {
	ID    string `json:"id"`
	Path  string `json:"path"`
	Title string `json:"title"`
	Ref   string `json:"ref,omitempty"`
}

// State is one browser session.
type State struct {
	SessionID string    `json:"sessionId"`
	Tabs      []Tab     `json:"tabs"`
	Active    string    `json:"active,omitempty"`
	Selection string    `json:"selection,omitempty"` // encoded query string
	UpdatedAt time.Time `json:"updatedAt"`
}

// New returns an empty state with a fresh session ID.
func New() State {
	return State{SessionID: uuid.NewString(), Tabs: []Tab{}}
}

// TabID is the identity of path opened at ref.
func TabID(p, ref string) string {
	return p + "-" + ref
}

// Open activates the tab for path at ref, appending it when not yet open.
func (s *State) Open(p, ref string) Tab {
	id := TabID(p, ref)
	for _, t := range s.Tabs {
		if t.ID == id {
			s.Active = id
			return t
		}
	}

	title := path.Base(p)
	if title == "." || title == "/" {
		title = p
	}
	t := Tab{ID: id, Path: p, Title: title, Ref: ref}
	s.Tabs = append(s.Tabs, t)
	s.Active = id
	return t
}

// Close removes a tab. Closing the active tab activates the one before it,
// or the new first tab, or nothing when none remain.
func (s *State) Close(id string) bool {
	idx := -1
	for i, t := range s.Tabs {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	s.Tabs = append(s.Tabs[:idx], s.Tabs[idx+1:]...)
	if s.Active != id {
		return true
	}
	if len(s.Tabs) == 0 {
		s.Active = ""
		return true
	}
	s.Active = s.Tabs[max(0, idx-1)].ID
	return true
}

// Activate makes id the active tab if it is open.
func (s *State) Activate(id string) bool {
	for _, t := range s.Tabs {
		if t.ID == id {
			s.Active = id
			return true
		}
	}
	return false
}

// ActiveTab returns the active tab.
func (s *State) ActiveTab() (Tab, bool) {
	for _, t := range s.Tabs {
		if t.ID == s.Active {
			return t, true
		}
	}
	return Tab{}, false
}

// Clear closes every tab and forgets the selection, keeping the session ID.
func (s *State) Clear() {
	s.Tabs = []Tab{}
	s.Active = ""
	s.Selection = ""
}
