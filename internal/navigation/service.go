package navigation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/masmgr/histwalk/internal/cache"
	"github.com/masmgr/histwalk/internal/git"
	"github.com/masmgr/histwalk/internal/history"
	"github.com/masmgr/histwalk/internal/items"
	"github.com/masmgr/histwalk/internal/manifest"
	"github.com/masmgr/histwalk/internal/urlstate"
)

// ErrStale is returned by Move when a newer request was issued while it ran.
var ErrStale = errors.New("navigation superseded by a newer request")

// DefaultTTL is how long provider responses are reused.
const DefaultTTL = 5 * time.Minute

// Options configures a Service.
type Options struct {
	PerPage      int
	TTL          time.Duration
	ManifestPath string
	Logger       *slog.Logger
}

// Service resolves selections against a provider and computes moves.
// Provider responses are cached per branch or commit.
type Service struct {
	provider git.Provider
	loader   *manifest.Loader
	perPage  int
	logger   *slog.Logger

	commits   *cache.Cache[[]git.Commit]
	details   *cache.Cache[git.CommitDetails]
	manifests *cache.Cache[*manifest.Manifest]

	generation atomic.Uint64
}

// NewService creates a Service over provider.
func NewService(provider git.Provider, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ttl := opts.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Service{
		provider:  provider,
		loader:    &manifest.Loader{Provider: provider, Path: opts.ManifestPath, Logger: logger},
		perPage:   opts.PerPage,
		logger:    logger,
		commits:   cache.New[[]git.Commit](ttl),
		details:   cache.New[git.CommitDetails](ttl),
		manifests: cache.New[*manifest.Manifest](ttl),
	}
}

// Provider returns the underlying provider.
func (s *Service) Provider() git.Provider { return s.provider }

// Branch returns branch, or the repository default when branch is empty.
func (s *Service) Branch(ctx context.Context, branch string) (string, error) {
	if branch != "" {
		return branch, nil
	}
	b, err := s.provider.DefaultBranch(ctx)
	if err != nil {
		return "", fmt.Errorf("default branch: %w", err)
	}
	return b, nil
}

// Commits returns the oldest-first commit list of branch.
func (s *Service) Commits(ctx context.Context, branch string) ([]git.Commit, error) {
	return s.commits.Fetch(ctx, branch, func(ctx context.Context) ([]git.Commit, error) {
		s.logger.Debug("loading commit list", "branch", branch)
		return history.LoadCommits(ctx, s.provider, branch, s.perPage)
	})
}

// Details returns the changed files and stats of sha.
func (s *Service) Details(ctx context.Context, sha string) (git.CommitDetails, error) {
	return s.details.Fetch(ctx, sha, func(ctx context.Context) (git.CommitDetails, error) {
		return s.provider.CommitDetails(ctx, sha)
	})
}

// Manifest returns the ordering manifest of sha, or nil when it has none.
func (s *Service) Manifest(ctx context.Context, sha string) (*manifest.Manifest, error) {
	return s.manifests.Fetch(ctx, sha, func(ctx context.Context) (*manifest.Manifest, error) {
		return s.loader.Load(ctx, sha)
	})
}

// Items returns the item sequence of sha. Details and manifest are fetched
// concurrently.
func (s *Service) Items(ctx context.Context, sha string) ([]items.Item, error) {
	d, m, err := s.fetchCommit(ctx, sha)
	if err != nil {
		return nil, err
	}
	return items.Resolve(d.Files, m), nil
}

func (s *Service) fetchCommit(ctx context.Context, sha string) (git.CommitDetails, *manifest.Manifest, error) {
	var (
		d git.CommitDetails
		m *manifest.Manifest
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		d, err = s.Details(gctx, sha)
		return err
	})
	g.Go(func() error {
		var err error
		m, err = s.Manifest(gctx, sha)
		return err
	})
	if err := g.Wait(); err != nil {
		return git.CommitDetails{}, nil, err
	}
	return d, m, nil
}

// View is a resolved selection.
type View struct {
	// Selection is normalized: branch resolved, commit expanded to a full SHA
	// and an output index mapped to its path when it names an item.
	Selection urlstate.Selection
	Cursor    Cursor
	Details   git.CommitDetails
	Manifest  *manifest.Manifest
}

// Locate resolves sel into a View.
func (s *Service) Locate(ctx context.Context, sel urlstate.Selection) (View, error) {
	branch, err := s.Branch(ctx, sel.Branch)
	if err != nil {
		return View{}, err
	}
	sel.Branch = branch

	commits, err := s.Commits(ctx, branch)
	if err != nil {
		return View{}, err
	}
	if sel.Commit == "" {
		return View{Selection: sel, Cursor: Locate(commits, "", nil, "")}, nil
	}

	sha := sel.Commit
	if i := history.Find(commits, sha); i >= 0 {
		sha = commits[i].SHA
	}

	d, m, err := s.fetchCommit(ctx, sha)
	if err != nil {
		return View{}, err
	}
	if d.Commit.SHA != "" {
		sha = d.Commit.SHA
	}
	sel.Commit = sha
	seq := items.Resolve(d.Files, m)

	itemPath := sel.File
	if itemPath == "" && sel.Output != nil {
		if entry, ok := m.Output(*sel.Output); ok {
			itemPath = entry.Path
		}
	}

	return View{
		Selection: sel,
		Cursor:    Locate(commits, sha, seq, itemPath),
		Details:   d,
		Manifest:  m,
	}, nil
}

// Move resolves sel and returns the selection one move in dir away. In
// output mode it steps through the branch head's declared outputs. An
// unavailable move returns the normalized selection unchanged. When another
// Move starts before this one finishes, this one returns ErrStale.
func (s *Service) Move(ctx context.Context, sel urlstate.Selection, dir Direction) (urlstate.Selection, error) {
	ticket := s.generation.Add(1)

	if sel.Mode == urlstate.ModeOutput {
		ov, err := s.Outputs(ctx, sel)
		if err != nil {
			return sel, err
		}
		if s.generation.Load() != ticket {
			return sel, ErrStale
		}
		return ov.Step(dir), nil
	}

	view, prev, err := s.locateWithPrevious(ctx, sel, dir)
	if err != nil {
		return sel, err
	}

	cur := view.Cursor
	if cur.NeedsPrevious(dir) && prev == nil {
		pc, _ := cur.PreviousCommit()
		if prev, err = s.Items(ctx, pc.SHA); err != nil {
			return sel, err
		}
	}
	target := cur.Step(dir, prev)

	if s.generation.Load() != ticket {
		return sel, ErrStale
	}

	next := target.Apply(view.Selection)
	s.logger.Debug("navigate", "direction", dir.String(), "from", sel.Encode(), "to", next.Encode())
	return next, nil
}

// locateWithPrevious is Locate that, for a Back move from commit-info, also
// fetches the previous commit's items alongside the current commit.
func (s *Service) locateWithPrevious(ctx context.Context, sel urlstate.Selection, dir Direction) (View, []items.Item, error) {
	if dir != Back || !sel.OnCommitInfo() {
		view, err := s.Locate(ctx, sel)
		return view, nil, err
	}

	branch, err := s.Branch(ctx, sel.Branch)
	if err != nil {
		return View{}, nil, err
	}
	sel.Branch = branch
	commits, err := s.Commits(ctx, branch)
	if err != nil {
		return View{}, nil, err
	}

	var (
		view View
		prev []items.Item
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		view, err = s.Locate(gctx, sel)
		return err
	})
	if i := history.Find(commits, sel.Commit); i > 0 {
		prevSHA := commits[i-1].SHA
		g.Go(func() error {
			seq, err := s.Items(gctx, prevSHA)
			if err != nil {
				return err
			}
			prev = seq
			if prev == nil {
				prev = []items.Item{}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return View{}, nil, err
	}
	return view, prev, nil
}

// Invalidate drops every cached response and supersedes in-flight moves.
func (s *Service) Invalidate() {
	s.commits.Purge()
	s.details.Purge()
	s.manifests.Purge()
	s.generation.Add(1)
	s.logger.Debug("navigation caches invalidated")
}

// InvalidateBranch drops the cached commit list of branch.
func (s *Service) InvalidateBranch(branch string) {
	s.commits.Invalidate(branch)
}

// Apply returns the selection a target lands on. Output is always cleared.
func (t Target) Apply(sel urlstate.Selection) urlstate.Selection {
	switch t.Kind {
	case ToCommitInfo:
		return sel.CommitInfo(t.Commit.SHA)
	case ToItem:
		return sel.Item(t.Commit.SHA, t.Item.Path)
	}
	return sel
}
