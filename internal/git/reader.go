package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	fdiff "github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// Repository serves repository data from a local Git repository using go-git.
type Repository struct {
	repo *gogit.Repository
	opts ProviderOptions
}

// OpenRepository opens the repository at opts.RepoPath (or any parent of it).
func OpenRepository(opts ProviderOptions) (*Repository, error) {
	if err := validatePatterns(opts); err != nil {
		return nil, err
	}
	repo, err := gogit.PlainOpenWithOptions(opts.RepoPath, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, err
	}
	return &Repository{repo: repo, opts: opts}, nil
}

// ListCommits returns one newest-first page of the history reachable from branch.
func (r *Repository) ListCommits(ctx context.Context, branch string, page, perPage int) (CommitPage, error) {
	page, perPage = normalizePaging(page, perPage)

	from, err := r.resolveCommit(branch)
	if err != nil {
		return CommitPage{}, err
	}

	cIter, err := r.repo.Log(&gogit.LogOptions{From: from.Hash, Order: gogit.LogOrderCommitterTime})
	if err != nil {
		return CommitPage{}, err
	}
	defer cIter.Close()

	skip := (page - 1) * perPage
	result := CommitPage{Commits: make([]Commit, 0, perPage)}

	err = cIter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if skip > 0 {
			skip--
			return nil
		}
		if len(result.Commits) == perPage {
			result.HasMore = true
			return storer.ErrStop
		}
		result.Commits = append(result.Commits, toCommit(c))
		return nil
	})
	if err != nil {
		return CommitPage{}, err
	}

	return result, nil
}

// CommitDetails returns the commit at ref and the files it changed relative to
// its first parent. Root commits are compared against the empty tree.
func (r *Repository) CommitDetails(ctx context.Context, ref string) (CommitDetails, error) {
	c, err := r.resolveCommit(ref)
	if err != nil {
		return CommitDetails{}, err
	}

	files, err := r.getCommitChanges(ctx, c)
	if err != nil {
		return CommitDetails{}, fmt.Errorf("diff %s: %w", c.Hash, err)
	}

	return CommitDetails{
		Commit: toCommit(c),
		Files:  files,
		Stats:  sumStats(files),
	}, nil
}

// getCommitChanges extracts file changes from a commit.
func (r *Repository) getCommitChanges(ctx context.Context, c *object.Commit) ([]ChangedFile, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}

	var parentTree *object.Tree
	if c.NumParents() > 0 {
		parent, err := c.Parent(0)
		if err != nil {
			return nil, err
		}
		if parentTree, err = parent.Tree(); err != nil {
			return nil, err
		}
	}

	changes, err := object.DiffTreeWithOptions(ctx, parentTree, tree, object.DefaultDiffTreeOptions)
	if err != nil {
		return nil, err
	}

	patch, err := changes.PatchContext(ctx)
	if err != nil {
		return nil, err
	}

	var files []ChangedFile

	for _, filePatch := range patch.FilePatches() {
		from, to := filePatch.Files()

		var path, oldPath string
		var status ChangeStatus

		switch {
		case from == nil && to != nil:
			path = to.Path()
			status = StatusAdded
		case from != nil && to == nil:
			path = from.Path()
			status = StatusRemoved
		case from != nil && to != nil && from.Path() != to.Path():
			path = to.Path()
			oldPath = from.Path()
			status = StatusRenamed
		default:
			if to != nil {
				path = to.Path()
			} else if from != nil {
				path = from.Path()
			}
			status = StatusModified
		}

		if path == "" || !matchesFilters(r.opts, path) {
			continue
		}

		var added, deleted int
		for _, chunk := range filePatch.Chunks() {
			switch chunk.Type() {
			case fdiff.Add:
				added += countLines(chunk.Content())
			case fdiff.Delete:
				deleted += countLines(chunk.Content())
			}
		}

		files = append(files, ChangedFile{
			Path:         path,
			PreviousPath: oldPath,
			Status:       status,
			Additions:    added,
			Deletions:    deleted,
		})
	}

	return files, nil
}

// ReadFile returns the raw content of path in the tree at ref.
func (r *Repository) ReadFile(ctx context.Context, ref, path string) ([]byte, error) {
	c, err := r.resolveCommit(ref)
	if err != nil {
		return nil, err
	}
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}

	entry, err := tree.FindEntry(path)
	if err != nil {
		return nil, fmt.Errorf("%s at %s: %w", path, c.Hash, ErrNotFound)
	}
	if !entry.Mode.IsFile() {
		return nil, fmt.Errorf("%s at %s: %w", path, c.Hash, ErrNotAFile)
	}

	blob, err := r.repo.BlobObject(entry.Hash)
	if err != nil {
		return nil, err
	}
	rd, err := blob.Reader()
	if err != nil {
		return nil, err
	}
	defer rd.Close()

	return io.ReadAll(rd)
}

// ListBranches returns local branches sorted by name.
func (r *Repository) ListBranches(ctx context.Context) ([]Branch, error) {
	iter, err := r.repo.Branches()
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var branches []Branch
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		branches = append(branches, Branch{Name: ref.Name().Short(), SHA: ref.Hash().String()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(branches, func(i, j int) bool { return branches[i].Name < branches[j].Name })
	return branches, nil
}

// DefaultBranch returns the branch HEAD points at, or "HEAD" when detached.
func (r *Repository) DefaultBranch(ctx context.Context) (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	if head.Name().IsBranch() {
		return head.Name().Short(), nil
	}
	return "HEAD", nil
}

// ListTree returns every file in the tree at ref.
func (r *Repository) ListTree(ctx context.Context, ref string) ([]TreeEntry, error) {
	c, err := r.resolveCommit(ref)
	if err != nil {
		return nil, err
	}
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}

	var entries []TreeEntry
	err = tree.Files().ForEach(func(f *object.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !matchesFilters(r.opts, f.Name) {
			return nil
		}
		entries = append(entries, TreeEntry{
			Path: f.Name,
			Mode: f.Mode.String(),
			Size: f.Size,
			SHA:  f.Hash.String(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *Repository) resolveCommit(ref string) (*object.Commit, error) {
	var hash plumbing.Hash

	rev := strings.TrimSpace(ref)
	if rev == "" || strings.EqualFold(rev, "HEAD") {
		head, err := r.repo.Head()
		if err != nil {
			return nil, fmt.Errorf("resolve HEAD: %w", err)
		}
		hash = head.Hash()
	} else {
		h, err := r.repo.ResolveRevision(plumbing.Revision(rev))
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", rev, ErrNotFound)
		}
		hash = *h
	}

	c, err := r.repo.CommitObject(hash)
	if err != nil {
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return nil, fmt.Errorf("commit %s: %w", hash, ErrNotFound)
		}
		return nil, err
	}
	return c, nil
}

func toCommit(c *object.Commit) Commit {
	parents := make([]string, 0, len(c.ParentHashes))
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}
	return Commit{
		SHA:     c.Hash.String(),
		When:    c.Committer.When,
		Author:  AuthorInfo{Name: c.Author.Name, Email: c.Author.Email},
		Message: strings.TrimRight(c.Message, "\n"),
		Parents: parents,
	}
}

func normalizePaging(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 30
	}
	return page, perPage
}

// countLines counts lines in a diff chunk, including an unterminated last line.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

func validatePatterns(opts ProviderOptions) error {
	for _, p := range append(append([]string{}, opts.Include...), opts.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	return nil
}

// matchesFilters checks if a path matches the include/exclude filters.
func matchesFilters(opts ProviderOptions, path string) bool {
	path = strings.ReplaceAll(path, "\\", "/")

	for _, pattern := range opts.Exclude {
		if matched, _ := doublestar.Match(pattern, path); matched {
			return false
		}
	}

	if len(opts.Include) == 0 {
		return true
	}

	for _, pattern := range opts.Include {
		if matched, _ := doublestar.Match(pattern, path); matched {
			return true
		}
	}

	return false
}
