// Package history assembles a branch's full commit list in oldest-first order
// from a provider's newest-first pages.
package history

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/masmgr/histwalk/internal/git"
)

// DefaultPerPage is the page size used when none is configured.
const DefaultPerPage = 100

// maxPages bounds the walk in case a provider never reports a short page.
const maxPages = 100000

// LoadCommits fetches every page of branch and returns the commits oldest-first.
// Each page is reversed and pages are concatenated last-to-first; a SHA seen
// twice (history shifting between page fetches) is kept once.
func LoadCommits(ctx context.Context, provider git.Provider, branch string, perPage int) ([]git.Commit, error) {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	var pages [][]git.Commit
	for page := 1; page <= maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := provider.ListCommits(ctx, branch, page, perPage)
		if err != nil {
			return nil, fmt.Errorf("list commits page %d: %w", page, err)
		}
		if len(res.Commits) > 0 {
			pages = append(pages, res.Commits)
		}
		if !res.HasMore || len(res.Commits) == 0 {
			break
		}
	}

	return Assemble(pages), nil
}

// Assemble converts newest-first pages (page 1 first) into one oldest-first list.
func Assemble(pages [][]git.Commit) []git.Commit {
	total := 0
	for _, p := range pages {
		total += len(p)
	}

	result := make([]git.Commit, 0, total)
	seen := make(map[string]struct{}, total)
	for i := len(pages) - 1; i >= 0; i-- {
		page := slices.Clone(pages[i])
		slices.Reverse(page)
		for _, c := range page {
			if _, dup := seen[c.SHA]; dup {
				continue
			}
			seen[c.SHA] = struct{}{}
			result = append(result, c)
		}
	}
	return result
}

// IndexOf returns the position of sha in commits, or -1.
func IndexOf(commits []git.Commit, sha string) int {
	if sha == "" {
		return -1
	}
	for i, c := range commits {
		if c.SHA == sha {
			return i
		}
	}
	return -1
}

// minAbbrev is the shortest abbreviated SHA Find accepts.
const minAbbrev = 4

// Find is IndexOf that also accepts an unambiguous abbreviated SHA.
func Find(commits []git.Commit, ref string) int {
	if i := IndexOf(commits, ref); i >= 0 || len(ref) < minAbbrev {
		return i
	}
	found := -1
	for i, c := range commits {
		if strings.HasPrefix(c.SHA, ref) {
			if found >= 0 {
				return -1
			}
			found = i
		}
	}
	return found
}
