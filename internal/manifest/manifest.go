// Package manifest reads the optional ordering sidecar stored at
// __cleanough/meta.json in a repository tree.
package manifest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/masmgr/histwalk/internal/git"
)

const (
	// ReservedPrefix marks the internal-metadata directory of the presentation tooling.
	ReservedPrefix = "__cleanough"
	// DefaultPath is where the manifest lives in a tree.
	DefaultPath = ReservedPrefix + "/meta.json"
)

// Kind tags a manifest entry.
type Kind string

const (
	KindFile     Kind = "file"
	KindImage    Kind = "image"
	KindTerminal Kind = "terminal"
)

// IsOutput reports whether entries of this kind are run outputs rather than file diffs.
func (k Kind) IsOutput() bool {
	return k == KindImage || k == KindTerminal
}

// Entry is one item of a manifest's order or outputs list.
type Entry struct {
	Kind Kind   `json:"type"`
	Path string `json:"path"`
}

// Manifest is the author-declared presentation order for a commit.
//
// A nil Order means no order was declared; an empty non-nil Order declares an
// empty sequence.
type Manifest struct {
	Order   []Entry `json:"order"`
	Outputs []Entry `json:"outputs,omitempty"`
}

// HasOrder reports whether the manifest declares an order.
func (m *Manifest) HasOrder() bool {
	return m != nil && m.Order != nil
}

// Output returns the i-th output entry.
func (m *Manifest) Output(i int) (Entry, bool) {
	if m == nil || i < 0 || i >= len(m.Outputs) {
		return Entry{}, false
	}
	return m.Outputs[i], true
}

// IsReserved reports whether path lives under the reserved metadata directory,
// i.e. its first segment starts with ReservedPrefix.
func IsReserved(path string) bool {
	first, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	return strings.HasPrefix(first, ReservedPrefix)
}

// Parse decodes and validates a manifest document.
func Parse(data []byte) (*Manifest, error) {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if err := validate(doc); err != nil {
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}

// Loader fetches manifests through a provider.
type Loader struct {
	Provider git.Provider
	Path     string
	Logger   *slog.Logger
}

// Load returns the manifest at ref. A missing or malformed manifest yields
// nil without error; other provider failures are returned.
func (l *Loader) Load(ctx context.Context, ref string) (*Manifest, error) {
	path := l.Path
	if path == "" {
		path = DefaultPath
	}
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	data, err := l.Provider.ReadFile(ctx, ref, path)
	if err != nil {
		if errors.Is(err, git.ErrNotFound) || errors.Is(err, git.ErrNotAFile) {
			logger.Debug("manifest absent", "ref", ref, "path", path)
			return nil, nil
		}
		return nil, fmt.Errorf("read manifest at %s: %w", ref, err)
	}

	m, err := Parse(data)
	if err != nil {
		logger.Debug("manifest malformed, ignoring", "ref", ref, "path", path, "error", err)
		return nil, nil
	}
	return m, nil
}
