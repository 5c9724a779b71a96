package git

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

type testRepo struct {
	t    *testing.T
	dir  string
	repo *gogit.Repository
	wt   *gogit.Worktree
	base time.Time
	n    int
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	dir := t.TempDir()

	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	return &testRepo{t: t, dir: dir, repo: repo, wt: wt, base: time.Now().Add(-24 * time.Hour)}
}

func (r *testRepo) write(rel, content string) {
	r.t.Helper()
	full := filepath.Join(r.dir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		r.t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		r.t.Fatalf("WriteFile: %v", err)
	}
	if _, err := r.wt.Add(rel); err != nil {
		r.t.Fatalf("Add: %v", err)
	}
}

func (r *testRepo) remove(rel string) {
	r.t.Helper()
	if _, err := r.wt.Remove(rel); err != nil {
		r.t.Fatalf("Remove: %v", err)
	}
}

func (r *testRepo) commit(msg string) string {
	r.t.Helper()
	r.n++
	when := r.base.Add(time.Duration(r.n) * time.Minute)
	sig := &object.Signature{Name: "Test", Email: "test@example.com", When: when}
	hash, err := r.wt.Commit(msg, &gogit.CommitOptions{Author: sig, Committer: sig})
	if err != nil {
		r.t.Fatalf("Commit: %v", err)
	}
	return hash.String()
}

// buildHistory creates three commits on the default branch and one on "feature".
func buildHistory(t *testing.T) (*testRepo, []string) {
	r := newTestRepo(t)

	r.write("a.txt", "one\ntwo\n")
	r.write("b.txt", "bee\n")
	c1 := r.commit("initial")

	r.write("a.txt", "one\nTWO\nthree\n")
	r.write("__cleanough/meta.json", `{"order":[{"type":"file","path":"a.txt"}]}`)
	c2 := r.commit("edit a\n\nlonger body")

	r.remove("b.txt")
	c3 := r.commit("drop b")

	return r, []string{c1, c2, c3}
}

func TestRepository_ListCommits_PagesNewestFirst(t *testing.T) {
	r, shas := buildHistory(t)
	provider, err := OpenRepository(ProviderOptions{RepoPath: r.dir})
	if err != nil {
		t.Fatalf("OpenRepository: %v", err)
	}
	ctx := context.Background()

	page1, err := provider.ListCommits(ctx, "", 1, 2)
	if err != nil {
		t.Fatalf("ListCommits: %v", err)
	}
	if len(page1.Commits) != 2 || !page1.HasMore {
		t.Fatalf("page1 = %d commits, hasMore=%v", len(page1.Commits), page1.HasMore)
	}
	if page1.Commits[0].SHA != shas[2] || page1.Commits[1].SHA != shas[1] {
		t.Fatalf("page1 order = %s, %s", page1.Commits[0].ShortSHA(), page1.Commits[1].ShortSHA())
	}

	page2, err := provider.ListCommits(ctx, "", 2, 2)
	if err != nil {
		t.Fatalf("ListCommits: %v", err)
	}
	if len(page2.Commits) != 1 || page2.HasMore {
		t.Fatalf("page2 = %d commits, hasMore=%v", len(page2.Commits), page2.HasMore)
	}
	if page2.Commits[0].SHA != shas[0] {
		t.Fatalf("page2[0] = %s, expected root", page2.Commits[0].ShortSHA())
	}
	if page2.Commits[0].Subject() != "initial" {
		t.Fatalf("subject = %q", page2.Commits[0].Subject())
	}
}

func TestRepository_CommitDetails(t *testing.T) {
	r, shas := buildHistory(t)
	provider, err := OpenRepository(ProviderOptions{RepoPath: r.dir})
	if err != nil {
		t.Fatalf("OpenRepository: %v", err)
	}
	ctx := context.Background()

	t.Run("root commit lists every file as added", func(t *testing.T) {
		d, err := provider.CommitDetails(ctx, shas[0])
		if err != nil {
			t.Fatalf("CommitDetails: %v", err)
		}
		if len(d.Files) != 2 {
			t.Fatalf("files = %+v", d.Files)
		}
		for _, f := range d.Files {
			if f.Status != StatusAdded {
				t.Errorf("%s status = %s, expected added", f.Path, f.Status)
			}
		}
		if d.Stats.Additions != 3 || d.Stats.Deletions != 0 {
			t.Errorf("stats = %+v, expected 3/0", d.Stats)
		}
	})

	t.Run("modification counts lines", func(t *testing.T) {
		d, err := provider.CommitDetails(ctx, shas[1])
		if err != nil {
			t.Fatalf("CommitDetails: %v", err)
		}
		var a *ChangedFile
		for i := range d.Files {
			if d.Files[i].Path == "a.txt" {
				a = &d.Files[i]
			}
		}
		if a == nil {
			t.Fatalf("a.txt missing from %+v", d.Files)
		}
		if a.Status != StatusModified || a.Additions != 2 || a.Deletions != 1 {
			t.Errorf("a.txt = %+v, expected modified +2 -1", *a)
		}
		if d.Commit.Subject() != "edit a" {
			t.Errorf("subject = %q", d.Commit.Subject())
		}
	})

	t.Run("removal", func(t *testing.T) {
		d, err := provider.CommitDetails(ctx, shas[2])
		if err != nil {
			t.Fatalf("CommitDetails: %v", err)
		}
		if len(d.Files) != 1 || d.Files[0].Path != "b.txt" || d.Files[0].Status != StatusRemoved {
			t.Errorf("files = %+v", d.Files)
		}
	})

	t.Run("unknown ref", func(t *testing.T) {
		_, err := provider.CommitDetails(ctx, "does-not-exist")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, expected ErrNotFound", err)
		}
	})
}

func TestRepository_Filters(t *testing.T) {
	r, shas := buildHistory(t)
	provider, err := OpenRepository(ProviderOptions{RepoPath: r.dir, Exclude: []string{"b.*"}})
	if err != nil {
		t.Fatalf("OpenRepository: %v", err)
	}

	d, err := provider.CommitDetails(context.Background(), shas[0])
	if err != nil {
		t.Fatalf("CommitDetails: %v", err)
	}
	if len(d.Files) != 1 || d.Files[0].Path != "a.txt" {
		t.Errorf("files = %+v, expected only a.txt", d.Files)
	}

	if _, err := OpenRepository(ProviderOptions{RepoPath: r.dir, Include: []string{"["}}); err == nil {
		t.Error("expected error for invalid include glob")
	}
}

func TestRepository_ReadFile(t *testing.T) {
	r, shas := buildHistory(t)
	provider, err := OpenRepository(ProviderOptions{RepoPath: r.dir})
	if err != nil {
		t.Fatalf("OpenRepository: %v", err)
	}
	ctx := context.Background()

	content, err := provider.ReadFile(ctx, shas[0], "a.txt")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(content) != "one\ntwo\n" {
		t.Errorf("content = %q", content)
	}

	if _, err := provider.ReadFile(ctx, shas[0], "__cleanough/meta.json"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, expected ErrNotFound", err)
	}
	if _, err := provider.ReadFile(ctx, shas[1], "__cleanough"); !errors.Is(err, ErrNotAFile) {
		t.Errorf("err = %v, expected ErrNotAFile", err)
	}
}

func TestRepository_BranchesAndTree(t *testing.T) {
	r, shas := buildHistory(t)

	head, err := r.repo.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if err := r.wt.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName("feature"),
		Create: true,
	}); err != nil {
		t.Fatalf("Checkout(feature): %v", err)
	}
	r.write("feature.txt", "f\n")
	featureSHA := r.commit("feature commit")
	if err := r.wt.Checkout(&gogit.CheckoutOptions{Branch: head.Name()}); err != nil {
		t.Fatalf("Checkout(base): %v", err)
	}

	provider, err := OpenRepository(ProviderOptions{RepoPath: r.dir})
	if err != nil {
		t.Fatalf("OpenRepository: %v", err)
	}
	ctx := context.Background()

	branches, err := provider.ListBranches(ctx)
	if err != nil {
		t.Fatalf("ListBranches: %v", err)
	}
	if len(branches) != 2 {
		t.Fatalf("branches = %+v", branches)
	}

	def, err := provider.DefaultBranch(ctx)
	if err != nil {
		t.Fatalf("DefaultBranch: %v", err)
	}
	if def != head.Name().Short() {
		t.Errorf("DefaultBranch = %q, expected %q", def, head.Name().Short())
	}

	page, err := provider.ListCommits(ctx, "feature", 1, 10)
	if err != nil {
		t.Fatalf("ListCommits(feature): %v", err)
	}
	if len(page.Commits) != 4 || page.Commits[0].SHA != featureSHA {
		t.Fatalf("feature history = %d commits", len(page.Commits))
	}

	tree, err := provider.ListTree(ctx, shas[1])
	if err != nil {
		t.Fatalf("ListTree: %v", err)
	}
	paths := map[string]bool{}
	for _, e := range tree {
		paths[e.Path] = true
	}
	for _, want := range []string{"a.txt", "b.txt", "__cleanough/meta.json"} {
		if !paths[want] {
			t.Errorf("tree missing %s: %+v", want, tree)
		}
	}
}

func TestCLIRepository_MatchesGoGit(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	r, shas := buildHistory(t)
	ctx := context.Background()

	goProvider, err := OpenRepository(ProviderOptions{RepoPath: r.dir})
	if err != nil {
		t.Fatalf("OpenRepository: %v", err)
	}
	cliProvider, err := NewCLIRepository(ctx, ProviderOptions{RepoPath: r.dir})
	if err != nil {
		t.Fatalf("NewCLIRepository: %v", err)
	}

	goPage, err := goProvider.ListCommits(ctx, "", 1, 10)
	if err != nil {
		t.Fatalf("go ListCommits: %v", err)
	}
	cliPage, err := cliProvider.ListCommits(ctx, "", 1, 10)
	if err != nil {
		t.Fatalf("cli ListCommits: %v", err)
	}
	if len(goPage.Commits) != len(cliPage.Commits) {
		t.Fatalf("commit counts differ: go=%d cli=%d", len(goPage.Commits), len(cliPage.Commits))
	}
	for i := range goPage.Commits {
		if goPage.Commits[i].SHA != cliPage.Commits[i].SHA {
			t.Errorf("commit %d: go=%s cli=%s", i, goPage.Commits[i].SHA, cliPage.Commits[i].SHA)
		}
		if goPage.Commits[i].Message != cliPage.Commits[i].Message {
			t.Errorf("message %d: go=%q cli=%q", i, goPage.Commits[i].Message, cliPage.Commits[i].Message)
		}
	}

	for _, sha := range shas {
		goDetails, err := goProvider.CommitDetails(ctx, sha)
		if err != nil {
			t.Fatalf("go CommitDetails: %v", err)
		}
		cliDetails, err := cliProvider.CommitDetails(ctx, sha)
		if err != nil {
			t.Fatalf("cli CommitDetails: %v", err)
		}
		if len(goDetails.Files) != len(cliDetails.Files) {
			t.Fatalf("%s: file counts differ: go=%+v cli=%+v", sha[:7], goDetails.Files, cliDetails.Files)
		}
		for i := range goDetails.Files {
			if goDetails.Files[i] != cliDetails.Files[i] {
				t.Errorf("%s file %d: go=%+v cli=%+v", sha[:7], i, goDetails.Files[i], cliDetails.Files[i])
			}
		}
	}

	content, err := cliProvider.ReadFile(ctx, shas[1], "a.txt")
	if err != nil {
		t.Fatalf("cli ReadFile: %v", err)
	}
	if string(content) != "one\nTWO\nthree\n" {
		t.Errorf("content = %q", content)
	}
	if _, err := cliProvider.ReadFile(ctx, shas[0], "missing.txt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, expected ErrNotFound", err)
	}
	if _, err := cliProvider.ReadFile(ctx, shas[1], "__cleanough"); !errors.Is(err, ErrNotAFile) {
		t.Errorf("err = %v, expected ErrNotAFile", err)
	}
}
