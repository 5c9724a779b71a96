package git

import "context"

// Provider is the repository data source consumed by the navigation layer.
// Listings are newest-first; pages are 1-based.
type Provider interface {
	ListCommits(ctx context.Context, branch string, page, perPage int) (CommitPage, error)
	CommitDetails(ctx context.Context, ref string) (CommitDetails, error)
	ReadFile(ctx context.Context, ref, path string) ([]byte, error)
	ListBranches(ctx context.Context) ([]Branch, error)
	DefaultBranch(ctx context.Context) (string, error)
	ListTree(ctx context.Context, ref string) ([]TreeEntry, error)
}

// Compile-time interface conformance checks.
var (
	_ Provider = (*Repository)(nil)
	_ Provider = (*CLIRepository)(nil)
	_ Provider = (*MemoryProvider)(nil)
)
