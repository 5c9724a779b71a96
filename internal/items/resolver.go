// Package items turns a commit's changed files and its optional ordering
// manifest into the sequence of navigable items for that commit.
package items

import (
	"github.com/masmgr/histwalk/internal/git"
	"github.com/masmgr/histwalk/internal/manifest"
)

// Item is a single navigable unit within a commit.
// File is set only for file-kind items.
type Item struct {
	Kind manifest.Kind
	Path string
	File *git.ChangedFile
}

// IsOutput reports whether the item is an image or terminal output.
func (i Item) IsOutput() bool {
	return i.Kind.IsOutput()
}

// Resolve builds the navigable item sequence for one commit.
//
// Files under the reserved metadata directory are dropped. Without a declared
// order the remaining files are returned in provider order. With an order, each
// entry is kept when it is an output or names one of the remaining files;
// entries are not de-duplicated, so a path listed twice appears twice. Items
// are addressed by path, so only the first occurrence of a repeated path can
// be selected (see IndexOf); the cursor steps over the later ones.
func Resolve(files []git.ChangedFile, m *manifest.Manifest) []Item {
	visible := make([]git.ChangedFile, 0, len(files))
	byPath := make(map[string]int, len(files))
	for _, f := range files {
		if manifest.IsReserved(f.Path) {
			continue
		}
		byPath[f.Path] = len(visible)
		visible = append(visible, f)
	}

	if !m.HasOrder() {
		result := make([]Item, len(visible))
		for i := range visible {
			result[i] = Item{Kind: manifest.KindFile, Path: visible[i].Path, File: &visible[i]}
		}
		return result
	}

	result := make([]Item, 0, len(m.Order))
	for _, entry := range m.Order {
		if entry.Kind.IsOutput() {
			result = append(result, Item{Kind: entry.Kind, Path: entry.Path})
			continue
		}
		idx, ok := byPath[entry.Path]
		if !ok {
			continue
		}
		result = append(result, Item{Kind: manifest.KindFile, Path: entry.Path, File: &visible[idx]})
	}
	return result
}

// IndexOf returns the position of the first item with the given path, or -1.
func IndexOf(seq []Item, path string) int {
	for i, it := range seq {
		if it.Path == path {
			return i
		}
	}
	return -1
}

// CountFiles returns how many items carry a resolved changed file.
func CountFiles(seq []Item) int {
	n := 0
	for _, it := range seq {
		if it.File != nil {
			n++
		}
	}
	return n
}
