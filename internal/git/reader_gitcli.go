package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// CLIRepository serves repository data by shelling out to the git executable.
type CLIRepository struct {
	opts ProviderOptions
}

// NewCLIRepository verifies that RepoPath is inside a work tree and returns a
// provider backed by the git binary.
func NewCLIRepository(ctx context.Context, opts ProviderOptions) (*CLIRepository, error) {
	if err := validatePatterns(opts); err != nil {
		return nil, err
	}
	r := &CLIRepository{opts: opts}
	if _, err := r.run(ctx, "rev-parse", "--git-dir"); err != nil {
		return nil, err
	}
	return r, nil
}

type gitRawEntry struct {
	srcMode gitFileMode
	dstMode gitFileMode
	status  string // e.g. "M", "A", "D", "R100"
	path    string // destination path (or path for non-renames)
	oldPath string // source path for renames
}

type gitNumstat struct {
	added   int
	deleted int
}

// Each commit header is NUL-separated and terminated by 0x1f so that multi-line
// messages survive; records in log output are prefixed by 0x1e.
const cliCommitFormat = "%H%x00%P%x00%cI%x00%an%x00%ae%x00%B%x1f"

// ListCommits returns one newest-first page of the history reachable from branch.
func (r *CLIRepository) ListCommits(ctx context.Context, branch string, page, perPage int) (CommitPage, error) {
	page, perPage = normalizePaging(page, perPage)

	args := []string{
		"log",
		"--no-color",
		"--date-order",
		"--pretty=format:%x1e" + cliCommitFormat,
		"--skip=" + strconv.Itoa((page-1)*perPage),
		"--max-count=" + strconv.Itoa(perPage+1),
		revOrHead(branch),
		"--",
	}

	out, err := r.run(ctx, args...)
	if err != nil {
		return CommitPage{}, err
	}

	result := CommitPage{Commits: make([]Commit, 0, perPage)}
	for _, rec := range bytes.Split(out, []byte{0x1e}) {
		if len(bytes.TrimSpace(rec)) == 0 {
			continue
		}
		c, _, err := parseCommitHeader(rec)
		if err != nil {
			return CommitPage{}, err
		}
		if len(result.Commits) == perPage {
			result.HasMore = true
			break
		}
		result.Commits = append(result.Commits, c)
	}
	return result, nil
}

// CommitDetails returns the commit at ref and the files it changed relative to
// its first parent.
func (r *CLIRepository) CommitDetails(ctx context.Context, ref string) (CommitDetails, error) {
	args := []string{
		"show",
		"--no-color",
		"--pretty=format:" + cliCommitFormat,
		"--diff-merges=first-parent",
		"-M",
		"--raw", "-z",
		"--numstat",
		revOrHead(ref),
		"--",
	}

	out, err := r.run(ctx, args...)
	if err != nil {
		return CommitDetails{}, err
	}

	c, body, err := parseCommitHeader(out)
	if err != nil {
		return CommitDetails{}, err
	}

	rawEntries, pos, err := parseGitRawEntries(body)
	if err != nil {
		return CommitDetails{}, err
	}
	stats, err := parseGitNumstat(body[pos:], rawEntries)
	if err != nil {
		return CommitDetails{}, err
	}

	files := make([]ChangedFile, 0, len(rawEntries))
	for i, e := range rawEntries {
		if !e.srcMode.IsFile() && !e.dstMode.IsFile() {
			continue
		}
		if e.path == "" || !matchesFilters(r.opts, e.path) {
			continue
		}
		status, oldPath := statusFromGitStatus(e.status, e.oldPath)
		files = append(files, ChangedFile{
			Path:         e.path,
			PreviousPath: oldPath,
			Status:       status,
			Additions:    stats[i].added,
			Deletions:    stats[i].deleted,
		})
	}

	return CommitDetails{Commit: c, Files: files, Stats: sumStats(files)}, nil
}

// ReadFile returns the raw content of path in the tree at ref.
func (r *CLIRepository) ReadFile(ctx context.Context, ref, path string) ([]byte, error) {
	out, err := r.run(ctx, "ls-tree", "-z", revOrHead(ref), "--", path)
	if err != nil {
		return nil, fmt.Errorf("%s at %s: %w", path, ref, ErrNotFound)
	}
	mode, object, err := treeEntryFor(out, path)
	if err != nil {
		return nil, fmt.Errorf("%s at %s: %w", path, ref, err)
	}
	if mode.IsDir() || mode.IsSubmodule() {
		return nil, fmt.Errorf("%s at %s: %w", path, ref, ErrNotAFile)
	}

	return r.run(ctx, "cat-file", "blob", object)
}

// treeEntryFor picks the record naming path itself out of
// `git ls-tree -z <rev> -- <path>` output.
func treeEntryFor(out []byte, path string) (gitFileMode, string, error) {
	for _, rec := range bytes.Split(out, []byte{0}) {
		// <mode> SP <type> SP <object> TAB <path>
		meta, p, ok := strings.Cut(string(rec), "\t")
		if !ok || p != path {
			continue
		}
		fields := strings.Fields(meta)
		if len(fields) < 3 {
			return gitFileModeEmpty, "", fmt.Errorf("unexpected git ls-tree entry: %q", string(rec))
		}
		mode, err := parseGitFileMode(fields[0])
		if err != nil {
			return gitFileModeEmpty, "", err
		}
		return mode, fields[2], nil
	}
	return gitFileModeEmpty, "", ErrNotFound
}

// ListBranches returns local branches sorted by name.
func (r *CLIRepository) ListBranches(ctx context.Context) ([]Branch, error) {
	out, err := r.run(ctx, "for-each-ref", "--sort=refname", "--format=%(refname:short)%00%(objectname)", "refs/heads")
	if err != nil {
		return nil, err
	}

	var branches []Branch
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		name, sha, ok := strings.Cut(line, "\x00")
		if !ok {
			continue
		}
		branches = append(branches, Branch{Name: name, SHA: sha})
	}
	return branches, nil
}

// DefaultBranch returns the branch HEAD points at, or "HEAD" when detached.
func (r *CLIRepository) DefaultBranch(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "symbolic-ref", "--short", "-q", "HEAD")
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "HEAD", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// ListTree returns every file in the tree at ref.
func (r *CLIRepository) ListTree(ctx context.Context, ref string) ([]TreeEntry, error) {
	out, err := r.run(ctx, "ls-tree", "-r", "-l", "-z", revOrHead(ref))
	if err != nil {
		return nil, err
	}

	var entries []TreeEntry
	for _, rec := range bytes.Split(out, []byte{0}) {
		if len(rec) == 0 {
			continue
		}
		// <mode> SP <type> SP <object> SP+ <size> TAB <path>
		meta, path, ok := strings.Cut(string(rec), "\t")
		if !ok {
			return nil, fmt.Errorf("unexpected git ls-tree entry: %q", string(rec))
		}
		fields := strings.Fields(meta)
		if len(fields) < 4 {
			return nil, fmt.Errorf("unexpected git ls-tree meta: %q", meta)
		}
		mode, err := parseGitFileMode(fields[0])
		if err != nil {
			return nil, err
		}
		if !mode.IsFile() || !matchesFilters(r.opts, path) {
			continue
		}
		size, _ := strconv.ParseInt(fields[3], 10, 64)
		entries = append(entries, TreeEntry{Path: path, Mode: mode.String(), Size: size, SHA: fields[2]})
	}
	return entries, nil
}

func (r *CLIRepository) run(ctx context.Context, args ...string) ([]byte, error) {
	full := append([]string{"-C", r.opts.RepoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", full...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git %s failed: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

func revOrHead(ref string) string {
	if rev := strings.TrimSpace(ref); rev != "" {
		return rev
	}
	return "HEAD"
}

func parseCommitHeader(rec []byte) (Commit, []byte, error) {
	end := bytes.IndexByte(rec, 0x1f)
	if end == -1 {
		return Commit{}, nil, fmt.Errorf("unexpected git commit header format")
	}
	header, body := rec[:end], rec[end+1:]

	fields := bytes.SplitN(header, []byte{0x00}, 6)
	if len(fields) < 6 {
		return Commit{}, nil, fmt.Errorf("unexpected git commit header format")
	}

	when, err := time.Parse(time.RFC3339, string(fields[2]))
	if err != nil {
		return Commit{}, nil, fmt.Errorf("parse committer date: %w", err)
	}

	return Commit{
		SHA:     string(fields[0]),
		When:    when,
		Author:  AuthorInfo{Name: string(fields[3]), Email: string(fields[4])},
		Message: strings.TrimRight(string(fields[5]), "\n"),
		Parents: strings.Fields(string(fields[1])),
	}, body, nil
}

func parseGitRawEntries(body []byte) ([]gitRawEntry, int, error) {
	i := skipSeparators(body, 0)

	entries := make([]gitRawEntry, 0, 32)

	for i < len(body) && body[i] == ':' {
		meta, ok := readUntilNUL(body, &i)
		if !ok {
			return nil, 0, fmt.Errorf("unexpected git --raw format (missing NUL)")
		}

		fields := strings.Fields(string(meta))
		if len(fields) < 5 {
			return nil, 0, fmt.Errorf("unexpected git --raw meta: %q", string(meta))
		}

		srcMode, err := parseGitFileMode(strings.TrimPrefix(fields[0], ":"))
		if err != nil {
			return nil, 0, err
		}
		dstMode, err := parseGitFileMode(fields[1])
		if err != nil {
			return nil, 0, err
		}

		status := fields[len(fields)-1]

		path1, ok := readStringUntilNUL(body, &i)
		if !ok {
			return nil, 0, fmt.Errorf("unexpected git --raw format (missing path)")
		}

		path := path1
		oldPath := ""
		if isCopyOrRename(status) {
			path2, ok := readStringUntilNUL(body, &i)
			if !ok {
				return nil, 0, fmt.Errorf("unexpected git --raw format (missing rename path)")
			}
			oldPath = path1
			path = path2
		}

		entries = append(entries, gitRawEntry{
			srcMode: srcMode,
			dstMode: dstMode,
			status:  status,
			path:    path,
			oldPath: oldPath,
		})
		i = skipSeparators(body, i)
	}

	return entries, i, nil
}

// parseGitNumstat reads one -z numstat record per raw entry. Renames print an
// empty path followed by the old and new paths.
func parseGitNumstat(body []byte, rawEntries []gitRawEntry) ([]gitNumstat, error) {
	stats := make([]gitNumstat, 0, len(rawEntries))
	i := skipSeparators(body, 0)
	for range rawEntries {
		added, ok, err := readNumstatInt(body, &i, '\t')
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("unexpected git --numstat format (added)")
		}

		deleted, ok, err := readNumstatInt(body, &i, '\t')
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("unexpected git --numstat format (deleted)")
		}

		path, ok := readStringUntilNUL(body, &i)
		if !ok {
			return nil, fmt.Errorf("unexpected git --numstat format (path)")
		}
		if path == "" {
			if _, ok := readStringUntilNUL(body, &i); !ok {
				return nil, fmt.Errorf("unexpected git --numstat format (rename source)")
			}
			if _, ok := readStringUntilNUL(body, &i); !ok {
				return nil, fmt.Errorf("unexpected git --numstat format (rename target)")
			}
		}

		stats = append(stats, gitNumstat{added: added, deleted: deleted})
		i = skipSeparators(body, i)
	}

	return stats, nil
}

func statusFromGitStatus(status, oldPath string) (ChangeStatus, string) {
	if status == "" {
		return StatusModified, ""
	}
	switch status[0] {
	case 'A', 'C':
		return StatusAdded, ""
	case 'D':
		return StatusRemoved, ""
	case 'R':
		return StatusRenamed, oldPath
	default:
		return StatusModified, ""
	}
}

func isCopyOrRename(status string) bool {
	return len(status) > 0 && (status[0] == 'R' || status[0] == 'C')
}

func skipSeparators(b []byte, i int) int {
	for i < len(b) && (b[i] == '\n' || b[i] == '\r' || b[i] == 0) {
		i++
	}
	return i
}

func readUntilNUL(b []byte, i *int) ([]byte, bool) {
	if *i >= len(b) {
		return nil, false
	}
	j := bytes.IndexByte(b[*i:], 0)
	if j == -1 {
		return nil, false
	}
	start := *i
	end := *i + j
	*i = end + 1
	return b[start:end], true
}

func readStringUntilNUL(b []byte, i *int) (string, bool) {
	raw, ok := readUntilNUL(b, i)
	if !ok {
		return "", false
	}
	return string(raw), true
}

func readNumstatInt(b []byte, i *int, delim byte) (int, bool, error) {
	if *i >= len(b) {
		return 0, false, nil
	}
	j := bytes.IndexByte(b[*i:], delim)
	if j == -1 {
		return 0, false, nil
	}
	field := b[*i : *i+j]
	*i = *i + j + 1

	if len(field) == 1 && field[0] == '-' {
		return 0, true, nil
	}
	n, err := strconv.Atoi(string(field))
	if err != nil {
		return 0, true, fmt.Errorf("parse numstat int %q: %w", string(field), err)
	}
	return n, true, nil
}
