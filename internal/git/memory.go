package git

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryProvider is an in-memory Provider.
// It allows tests and embedders to supply commit data without a real Git repository.
type MemoryProvider struct {
	mu       sync.RWMutex
	branches map[string][]string // branch -> newest-first SHAs
	details  map[string]CommitDetails
	files    map[string]map[string][]byte // sha -> path -> content
	head     string
	calls    map[string]int

	// Error, when set, is returned from every call.
	Error error
}

// NewMemoryProvider creates an empty MemoryProvider whose default branch is head.
func NewMemoryProvider(head string) *MemoryProvider {
	return &MemoryProvider{
		branches: make(map[string][]string),
		details:  make(map[string]CommitDetails),
		files:    make(map[string]map[string][]byte),
		head:     head,
		calls:    make(map[string]int),
	}
}

// AddCommit appends a commit to the tip of branch. Commits must be added oldest-first.
func (m *MemoryProvider) AddCommit(branch string, details CommitDetails) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if details.Stats == (CommitStats{}) {
		details.Stats = sumStats(details.Files)
	}
	sha := details.Commit.SHA
	if _, exists := m.details[sha]; !exists {
		m.details[sha] = details
	}
	m.branches[branch] = append([]string{sha}, m.branches[branch]...)
}

// SetFile stores content for path in the tree at sha.
func (m *MemoryProvider) SetFile(sha, path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.files[sha] == nil {
		m.files[sha] = make(map[string][]byte)
	}
	m.files[sha][path] = content
}

// Calls returns how many times the named method has been invoked.
func (m *MemoryProvider) Calls(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[method]
}

func (m *MemoryProvider) record(method string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[method]++
	return m.Error
}

// ListCommits returns one newest-first page of branch.
func (m *MemoryProvider) ListCommits(ctx context.Context, branch string, page, perPage int) (CommitPage, error) {
	if err := m.record("ListCommits"); err != nil {
		return CommitPage{}, err
	}
	page, perPage = normalizePaging(page, perPage)

	m.mu.RLock()
	defer m.mu.RUnlock()

	shas, ok := m.branches[m.branchName(branch)]
	if !ok {
		return CommitPage{}, fmt.Errorf("branch %q: %w", branch, ErrNotFound)
	}

	start := (page - 1) * perPage
	if start >= len(shas) {
		return CommitPage{Commits: []Commit{}}, nil
	}
	end := min(start+perPage, len(shas))

	commits := make([]Commit, 0, end-start)
	for _, sha := range shas[start:end] {
		commits = append(commits, m.details[sha].Commit)
	}
	return CommitPage{Commits: commits, HasMore: end < len(shas)}, nil
}

// CommitDetails returns the stored details for ref.
func (m *MemoryProvider) CommitDetails(ctx context.Context, ref string) (CommitDetails, error) {
	if err := m.record("CommitDetails"); err != nil {
		return CommitDetails{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.details[ref]
	if !ok {
		return CommitDetails{}, fmt.Errorf("commit %s: %w", ref, ErrNotFound)
	}
	files := make([]ChangedFile, len(d.Files))
	copy(files, d.Files)
	d.Files = files
	return d, nil
}

// ReadFile returns content stored with SetFile.
func (m *MemoryProvider) ReadFile(ctx context.Context, ref, path string) ([]byte, error) {
	if err := m.record("ReadFile"); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	content, ok := m.files[ref][path]
	if !ok {
		return nil, fmt.Errorf("%s at %s: %w", path, ref, ErrNotFound)
	}
	return append([]byte(nil), content...), nil
}

// ListBranches returns all branches sorted by name.
func (m *MemoryProvider) ListBranches(ctx context.Context) ([]Branch, error) {
	if err := m.record("ListBranches"); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	branches := make([]Branch, 0, len(m.branches))
	for name, shas := range m.branches {
		b := Branch{Name: name}
		if len(shas) > 0 {
			b.SHA = shas[0]
		}
		branches = append(branches, b)
	}
	sort.Slice(branches, func(i, j int) bool { return branches[i].Name < branches[j].Name })
	return branches, nil
}

// DefaultBranch returns the head branch given to NewMemoryProvider.
func (m *MemoryProvider) DefaultBranch(ctx context.Context) (string, error) {
	if err := m.record("DefaultBranch"); err != nil {
		return "", err
	}
	return m.head, nil
}

// ListTree returns the files stored for ref with SetFile, sorted by path.
func (m *MemoryProvider) ListTree(ctx context.Context, ref string) ([]TreeEntry, error) {
	if err := m.record("ListTree"); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]TreeEntry, 0, len(m.files[ref]))
	for path, content := range m.files[ref] {
		entries = append(entries, TreeEntry{Path: path, Mode: gitFileModeRegular.String(), Size: int64(len(content))})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

func (m *MemoryProvider) branchName(branch string) string {
	if branch == "" || branch == "HEAD" {
		return m.head
	}
	return branch
}
