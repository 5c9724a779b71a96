package render

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/masmgr/histwalk/internal/git"
	"github.com/masmgr/histwalk/internal/items"
	"github.com/masmgr/histwalk/internal/manifest"
	"golang.org/x/image/bmp"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		path     string
		category Category
		language string
	}{
		{"src/main.go", CategoryText, "Go"},
		{"web/app.ts", CategoryText, "TypeScript"},
		{"Dockerfile", CategoryText, "Dockerfile"},
		{"docker/Dockerfile.dev", CategoryText, "Dockerfile"},
		{"Makefile", CategoryText, "Makefile"},
		{"README.md", CategoryText, "README"},
		{"docs/guide.md", CategoryText, "Markdown"},
		{".gitignore", CategoryText, "Ignore List"},
		{"assets/logo.PNG", CategoryImage, ""},
		{"sounds/beep.wav", CategoryAudio, ""},
		{"clip.mp4", CategoryVideo, ""},
		{"data.bin", CategoryUnsupported, ""},
		{"noext", CategoryUnsupported, ""},
		{"trailing.", CategoryUnsupported, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := Detect(tt.path)
			if got.Category != tt.category || got.Language != tt.language {
				t.Errorf("Detect(%q) = %+v, expected %s/%q", tt.path, got, tt.category, tt.language)
			}
		})
	}
}

func TestDiffLines(t *testing.T) {
	lines := DiffLines(
		[]string{"a", "b", "c"},
		[]string{"a", "B", "c", "d"},
	)

	want := []struct {
		typ     LineType
		content string
	}{
		{Equal, "a"},
		{Removed, "b"},
		{Added, "B"},
		{Equal, "c"},
		{Added, "d"},
	}
	if len(lines) != len(want) {
		t.Fatalf("len = %d, expected %d: %+v", len(lines), len(want), lines)
	}
	for i, w := range want {
		if lines[i].Type != w.typ || lines[i].Content != w.content {
			t.Errorf("lines[%d] = %+v, expected %v %q", i, lines[i], w.typ, w.content)
		}
	}

	added, removed := Stats(lines)
	if added != 2 || removed != 1 {
		t.Errorf("Stats = +%d -%d, expected +2 -1", added, removed)
	}
	if lines[4].NewNo != 4 || lines[1].OldNo != 2 {
		t.Errorf("line numbers wrong: %+v", lines)
	}
}

func TestDiffLines_WordSegments(t *testing.T) {
	lines := DiffLines([]string{"hello old world"}, []string{"hello new world"})
	if len(lines) != 2 {
		t.Fatalf("expected a removed/added pair, got %+v", lines)
	}

	var changed []string
	for _, seg := range lines[1].Segments {
		if seg.Changed {
			changed = append(changed, seg.Text)
		}
	}
	if strings.Join(changed, "") != "new" {
		t.Errorf("changed segments = %q, expected \"new\"", changed)
	}
}

func TestUnified(t *testing.T) {
	text, err := Unified("a\nb\n", "a\nc\n", "a/f.txt", "b/f.txt", 3)
	if err != nil {
		t.Fatalf("Unified: %v", err)
	}
	for _, want := range []string{"--- a/f.txt", "+++ b/f.txt", "-b", "+c"} {
		if !strings.Contains(text, want) {
			t.Errorf("unified diff missing %q:\n%s", want, text)
		}
	}
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeImageInfo(t *testing.T) {
	info, err := DecodeImageInfo(encodePNG(t, 4, 3))
	if err != nil {
		t.Fatalf("DecodeImageInfo: %v", err)
	}
	if info.Format != "png" || info.Width != 4 || info.Height != 3 {
		t.Errorf("info = %+v", info)
	}

	var buf bytes.Buffer
	if err := bmp.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 5))); err != nil {
		t.Fatalf("bmp.Encode: %v", err)
	}
	info, err = DecodeImageInfo(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeImageInfo(bmp): %v", err)
	}
	if info.Format != "bmp" || info.Width != 2 || info.Height != 5 {
		t.Errorf("bmp info = %+v", info)
	}

	if _, err := DecodeImageInfo([]byte("not an image")); err == nil {
		t.Error("expected error for garbage data")
	}
}

func newRenderFixture(t *testing.T) (*Renderer, git.CommitDetails) {
	t.Helper()
	p := git.NewMemoryProvider("main")
	p.AddCommit("main", git.CommitDetails{Commit: git.Commit{SHA: "p1"}})
	d := git.CommitDetails{
		Commit: git.Commit{SHA: "c2", Parents: []string{"p1"}, Message: "change things\n\nbody"},
		Files: []git.ChangedFile{
			{Path: "main.go", Status: git.StatusModified, Additions: 1, Deletions: 1},
			{Path: "new.txt", Status: git.StatusAdded, Additions: 1},
			{Path: "blob.dat", Status: git.StatusModified},
		},
	}
	p.AddCommit("main", d)

	p.SetFile("p1", "main.go", []byte("package main\n\nfunc a() {}\n"))
	p.SetFile("c2", "main.go", []byte("package main\n\nfunc b() {}\n"))
	p.SetFile("c2", "new.txt", []byte("hi\n"))
	p.SetFile("p1", "blob.dat", []byte{0, 1, 2})
	p.SetFile("c2", "blob.dat", []byte{0, 1, 2, 3})
	p.SetFile("c2", "out.log", []byte("$ make\nok\n"))
	p.SetFile("c2", "shot.png", encodePNG(t, 8, 6))

	return NewRenderer(p), d
}

func TestRenderer_FileDiff(t *testing.T) {
	r, d := newRenderFixture(t)
	ctx := context.Background()

	c, err := r.Item(ctx, d, items.Item{Kind: manifest.KindFile, Path: "main.go", File: &d.Files[0]})
	if err != nil {
		t.Fatalf("Item: %v", err)
	}
	if c.Kind != KindDiff || !strings.Contains(c.Text, "-func a() {}") || !strings.Contains(c.Text, "+func b() {}") {
		t.Errorf("unexpected diff content: %+v", c)
	}
	if c.Type.Language != "Go" {
		t.Errorf("Type = %+v", c.Type)
	}

	c, err = r.Item(ctx, d, items.Item{Kind: manifest.KindFile, Path: "new.txt", File: &d.Files[1]})
	if err != nil {
		t.Fatalf("Item(new.txt): %v", err)
	}
	if !strings.Contains(c.Text, "--- /dev/null") || !strings.Contains(c.Text, "+hi") {
		t.Errorf("added file diff = %q", c.Text)
	}

	c, err = r.Item(ctx, d, items.Item{Kind: manifest.KindFile, Path: "blob.dat", File: &d.Files[2]})
	if err != nil {
		t.Fatalf("Item(blob.dat): %v", err)
	}
	if c.Kind != KindBinary {
		t.Errorf("Kind = %v, expected binary", c.Kind)
	}
}

func TestRenderer_Outputs(t *testing.T) {
	r, d := newRenderFixture(t)
	ctx := context.Background()

	c, err := r.Item(ctx, d, items.Item{Kind: manifest.KindTerminal, Path: "out.log"})
	if err != nil {
		t.Fatalf("Item(terminal): %v", err)
	}
	if c.Kind != KindTerminal || c.Text != "$ make\nok\n" {
		t.Errorf("terminal content = %+v", c)
	}

	c, err = r.Item(ctx, d, items.Item{Kind: manifest.KindImage, Path: "shot.png"})
	if err != nil {
		t.Fatalf("Item(image): %v", err)
	}
	if c.Image == nil || c.Image.Width != 8 || c.Image.Height != 6 {
		t.Errorf("image content = %+v", c)
	}

	if _, err := r.Item(ctx, d, items.Item{Kind: manifest.KindTerminal, Path: "missing.log"}); err == nil {
		t.Error("expected error for a missing output")
	}
}

func TestCommitInfo(t *testing.T) {
	_, d := newRenderFixture(t)
	seq := []items.Item{
		{Kind: manifest.KindTerminal, Path: "out.log"},
		{Kind: manifest.KindFile, Path: "main.go", File: &d.Files[0]},
	}

	c := CommitInfo(d, seq)
	if c.Kind != KindCommitInfo || c.Title != "c2 change things" {
		t.Errorf("header = %+v", c)
	}
	for _, want := range []string{"commit c2", "    body", "1 file(s) changed", "T out.log", "M main.go  +1 -1"} {
		if !strings.Contains(c.Text, want) {
			t.Errorf("commit info missing %q:\n%s", want, c.Text)
		}
	}
}

func TestRenderer_DeclaredOutputs(t *testing.T) {
	r, _ := newRenderFixture(t)
	ctx := context.Background()
	outputs := []manifest.Entry{
		{Kind: manifest.KindTerminal, Path: "out.log"},
		{Kind: manifest.KindImage, Path: "shot.png"},
		{Kind: manifest.KindFile, Path: "blob.dat"},
	}

	tests := []struct {
		name     string
		outputs  []manifest.Entry
		index    int
		wantKind Kind
		wantText string
	}{
		{"Terminal", outputs, 0, KindTerminal, "$ make\nok\n"},
		{"Image", outputs, 1, KindImage, "8x6"},
		{"BinaryFile", outputs, 2, KindBinary, "binary file, 4 bytes"},
		{"NoOutputs", nil, 0, KindNotice, NoOutputsText},
		{"PastEnd", outputs, 3, KindNotice, OutputNotFoundText},
		{"Negative", outputs, -1, KindNotice, OutputNotFoundText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := r.Output(ctx, "c2", tt.outputs, tt.index)
			if err != nil {
				t.Fatalf("Output: %v", err)
			}
			if c.Kind != tt.wantKind || !strings.Contains(c.Text, tt.wantText) {
				t.Errorf("Output(%d) = %v %q, want %v containing %q", tt.index, c.Kind, c.Text, tt.wantKind, tt.wantText)
			}
		})
	}

	if _, err := r.Output(ctx, "c2", []manifest.Entry{{Kind: manifest.KindTerminal, Path: "missing.log"}}, 0); err == nil {
		t.Error("expected error for a missing output blob")
	}
}
