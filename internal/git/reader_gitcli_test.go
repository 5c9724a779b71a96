package git

import (
	"errors"
	"testing"
)

func TestParseGitRawAndNumstat_RenameAndModify(t *testing.T) {
	// Body bytes are what comes after the pretty header line.
	// For -z formats, entries are NUL-separated and concatenated.
	body := []byte{}

	// Modify a.txt
	body = append(body, []byte(":100644 100644 1111111 2222222 M")...)
	body = append(body, 0)
	body = append(body, []byte("a.txt")...)
	body = append(body, 0)

	// Rename old.go -> new.go
	body = append(body, []byte(":100644 100644 3333333 4444444 R100")...)
	body = append(body, 0)
	body = append(body, []byte("old.go")...)
	body = append(body, 0)
	body = append(body, []byte("new.go")...)
	body = append(body, 0)

	// Numstat for a.txt
	body = append(body, []byte("1\t2\ta.txt")...)
	body = append(body, 0)

	// Numstat for rename: with -z, git writes an empty path then old\0new\0
	body = append(body, []byte("3\t4\t")...)
	body = append(body, 0) // empty path signals rename
	body = append(body, []byte("old.go")...)
	body = append(body, 0)
	body = append(body, []byte("new.go")...)
	body = append(body, 0)

	raw, pos, err := parseGitRawEntries(body)
	if err != nil {
		t.Fatalf("parseGitRawEntries: %v", err)
	}
	if len(raw) != 2 {
		t.Fatalf("raw entries = %d, expected 2", len(raw))
	}
	if raw[0].status != "M" || raw[0].path != "a.txt" || raw[0].oldPath != "" {
		t.Fatalf("raw[0] = %#v", raw[0])
	}
	if raw[1].status != "R100" || raw[1].path != "new.go" || raw[1].oldPath != "old.go" {
		t.Fatalf("raw[1] = %#v", raw[1])
	}

	stats, err := parseGitNumstat(body[pos:], raw)
	if err != nil {
		t.Fatalf("parseGitNumstat: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("stats = %d, expected 2", len(stats))
	}
	if stats[0].added != 1 || stats[0].deleted != 2 {
		t.Fatalf("stats[0] = %#v, expected 1/2", stats[0])
	}
	if stats[1].added != 3 || stats[1].deleted != 4 {
		t.Fatalf("stats[1] = %#v, expected 3/4", stats[1])
	}
}

func TestParseGitNumstat_LeadingNewline(t *testing.T) {
	// Real git output has a newline separating --raw from --numstat sections.
	body := []byte{}

	// --raw entry: modify foo.js
	body = append(body, []byte(":100644 100644 aaa bbb M")...)
	body = append(body, 0)
	body = append(body, []byte("External/foo.js")...)
	body = append(body, 0)

	// Newline separator (as real git produces)
	body = append(body, '\n')

	// --numstat entry
	body = append(body, []byte("5\t3\tExternal/foo.js")...)
	body = append(body, 0)

	raw, pos, err := parseGitRawEntries(body)
	if err != nil {
		t.Fatalf("parseGitRawEntries: %v", err)
	}
	if len(raw) != 1 {
		t.Fatalf("raw entries = %d, expected 1", len(raw))
	}

	stats, err := parseGitNumstat(body[pos:], raw)
	if err != nil {
		t.Fatalf("parseGitNumstat: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("stats = %d, expected 1", len(stats))
	}
	if stats[0].added != 5 || stats[0].deleted != 3 {
		t.Fatalf("stats[0] = %#v, expected 5/3", stats[0])
	}
}

func TestStatusFromGitStatus(t *testing.T) {
	tests := []struct {
		status     string
		oldPath    string
		wantStatus ChangeStatus
		wantOld    string
	}{
		{status: "A", wantStatus: StatusAdded},
		{status: "C75", oldPath: "tmpl.go", wantStatus: StatusAdded},
		{status: "M", wantStatus: StatusModified},
		{status: "T", wantStatus: StatusModified},
		{status: "D", wantStatus: StatusRemoved},
		{status: "R100", oldPath: "old.go", wantStatus: StatusRenamed, wantOld: "old.go"},
		{status: "", wantStatus: StatusModified},
	}

	for _, tt := range tests {
		gotStatus, gotOld := statusFromGitStatus(tt.status, tt.oldPath)
		if gotStatus != tt.wantStatus || gotOld != tt.wantOld {
			t.Fatalf("statusFromGitStatus(%q,%q) = (%v,%q), want (%v,%q)", tt.status, tt.oldPath, gotStatus, gotOld, tt.wantStatus, tt.wantOld)
		}
	}
}

func TestParseCommitHeader_MultiLineMessage(t *testing.T) {
	rec := []byte("abc123\x00p1 p2\x002024-03-01T10:00:00Z\x00Ada\x00ada@example.com\x00subject line\n\nbody text\n\x1f\n:100644")

	c, body, err := parseCommitHeader(rec)
	if err != nil {
		t.Fatalf("parseCommitHeader: %v", err)
	}
	if c.SHA != "abc123" {
		t.Errorf("SHA = %q", c.SHA)
	}
	if len(c.Parents) != 2 || c.Parents[1] != "p2" {
		t.Errorf("Parents = %v", c.Parents)
	}
	if c.Subject() != "subject line" {
		t.Errorf("Subject() = %q", c.Subject())
	}
	if c.Message != "subject line\n\nbody text" {
		t.Errorf("Message = %q", c.Message)
	}
	if c.Author.Email != "ada@example.com" {
		t.Errorf("Author = %+v", c.Author)
	}
	if string(body) != "\n:100644" {
		t.Errorf("body = %q", body)
	}
}

func TestParseCommitHeader_Malformed(t *testing.T) {
	if _, _, err := parseCommitHeader([]byte("no terminator")); err == nil {
		t.Fatal("expected error for missing header terminator")
	}
	if _, _, err := parseCommitHeader([]byte("a\x00b\x1f")); err == nil {
		t.Fatal("expected error for short header")
	}
}

func TestParseGitFileMode(t *testing.T) {
	m, err := parseGitFileMode("100755")
	if err != nil {
		t.Fatalf("parseGitFileMode: %v", err)
	}
	if !m.IsFile() || m.String() != "0100755" {
		t.Fatalf("mode = %v (%s)", m, m.String())
	}
	if m, _ := parseGitFileMode("160000"); m.IsFile() {
		t.Fatal("submodule reported as file")
	}
	if _, err := parseGitFileMode("9z"); err == nil {
		t.Fatal("expected error for non-octal mode")
	}
}

func TestTreeEntryFor(t *testing.T) {
	out := []byte("040000 tree 1111111111111111111111111111111111111111\tdocs\x00" +
		"160000 commit 2222222222222222222222222222222222222222\tvendor/lib\x00" +
		"100644 blob 3333333333333333333333333333333333333333\tdocs.md\x00")

	tests := []struct {
		path    string
		dir     bool
		sub     bool
		object  string
		missing bool
	}{
		{path: "docs", dir: true, object: "1111111111111111111111111111111111111111"},
		{path: "vendor/lib", sub: true, object: "2222222222222222222222222222222222222222"},
		{path: "docs.md", object: "3333333333333333333333333333333333333333"},
		{path: "doc", missing: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			mode, object, err := treeEntryFor(out, tt.path)
			if tt.missing {
				if !errors.Is(err, ErrNotFound) {
					t.Fatalf("err = %v, expected ErrNotFound", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("treeEntryFor: %v", err)
			}
			if mode.IsDir() != tt.dir || mode.IsSubmodule() != tt.sub || object != tt.object {
				t.Errorf("mode = %s object = %s, expected dir=%v submodule=%v %s", mode, object, tt.dir, tt.sub, tt.object)
			}
			if (tt.dir || tt.sub) && mode.IsFile() {
				t.Errorf("mode %s reported as file", mode)
			}
		})
	}
}
