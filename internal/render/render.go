// Package render turns a navigation position into displayable content:
// commit summaries, file diffs, terminal logs and image headers.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/masmgr/histwalk/internal/git"
	"github.com/masmgr/histwalk/internal/items"
	"github.com/masmgr/histwalk/internal/manifest"
)

// Kind is what a Content holds.
type Kind int

const (
	KindCommitInfo Kind = iota
	KindDiff
	KindTerminal
	KindImage
	KindBinary
	KindNotice
)

func (k Kind) String() string {
	switch k {
	case KindCommitInfo:
		return "commit-info"
	case KindDiff:
		return "diff"
	case KindTerminal:
		return "terminal"
	case KindImage:
		return "image"
	case KindBinary:
		return "binary"
	case KindNotice:
		return "notice"
	}
	return "unknown"
}

// Content is a rendered position.
type Content struct {
	Kind  Kind
	Title string
	Type  TypeInfo
	Text  string     // commit summary, terminal log or unified diff
	Lines []DiffLine // file diffs only
	Image *ImageInfo
}

// Renderer reads blobs through a provider.
type Renderer struct {
	Provider git.Provider
	// Context is the number of unified diff context lines.
	Context int
}

// NewRenderer returns a Renderer with three lines of diff context.
func NewRenderer(p git.Provider) *Renderer {
	return &Renderer{Provider: p, Context: 3}
}

// CommitInfo renders the commit header followed by its items.
func CommitInfo(d git.CommitDetails, seq []items.Item) Content {
	c := d.Commit
	var b strings.Builder
	fmt.Fprintf(&b, "commit %s\n", c.SHA)
	if c.Author.Name != "" || c.Author.Email != "" {
		fmt.Fprintf(&b, "Author: %s <%s>\n", c.Author.Name, c.Author.Email)
	}
	if !c.When.IsZero() {
		fmt.Fprintf(&b, "Date:   %s\n", c.When.Format(time.RFC1123Z))
	}
	b.WriteString("\n")
	for _, line := range strings.Split(strings.TrimRight(c.Message, "\n"), "\n") {
		fmt.Fprintf(&b, "    %s\n", line)
	}

	files := items.CountFiles(seq)
	fmt.Fprintf(&b, "\n%d file(s) changed, +%d -%d\n", files, d.Stats.Additions, d.Stats.Deletions)
	for _, it := range seq {
		if it.File != nil {
			fmt.Fprintf(&b, "  %s %s  +%d -%d\n", statusMark(it.File.Status), it.Path, it.File.Additions, it.File.Deletions)
			continue
		}
		fmt.Fprintf(&b, "  %s %s\n", outputMark(it.Kind), it.Path)
	}

	return Content{Kind: KindCommitInfo, Title: c.ShortSHA() + " " + c.Subject(), Text: b.String()}
}

func statusMark(s git.ChangeStatus) string {
	switch s {
	case git.StatusAdded:
		return "A"
	case git.StatusRemoved:
		return "D"
	case git.StatusRenamed:
		return "R"
	}
	return "M"
}

func outputMark(k manifest.Kind) string {
	if k == manifest.KindImage {
		return "I"
	}
	return "T"
}

// Item renders one item of commit d.
func (r *Renderer) Item(ctx context.Context, d git.CommitDetails, it items.Item) (Content, error) {
	switch it.Kind {
	case manifest.KindTerminal:
		data, err := r.read(ctx, d.Commit.SHA, it.Path)
		if err != nil {
			return Content{}, err
		}
		return Content{Kind: KindTerminal, Title: it.Path, Type: Detect(it.Path), Text: string(data)}, nil
	case manifest.KindImage:
		data, err := r.read(ctx, d.Commit.SHA, it.Path)
		if err != nil {
			return Content{}, err
		}
		return imageContent(it.Path, data), nil
	}
	if it.File == nil {
		return Content{}, fmt.Errorf("item %s has no changed file", it.Path)
	}
	return r.fileDiff(ctx, d, *it.File)
}

// Output placeholders.
const (
	NoOutputsText      = "No outputs available"
	OutputNotFoundText = "Output not found"
)

// Output renders the i-th of outputs, read from the tree at ref. An empty
// list or an index out of range renders a notice instead.
func (r *Renderer) Output(ctx context.Context, ref string, outputs []manifest.Entry, i int) (Content, error) {
	if len(outputs) == 0 {
		return Content{Kind: KindNotice, Title: "outputs", Text: NoOutputsText}, nil
	}
	if i < 0 || i >= len(outputs) {
		return Content{Kind: KindNotice, Title: "outputs", Text: OutputNotFoundText}, nil
	}
	e := outputs[i]
	data, err := r.read(ctx, ref, e.Path)
	if err != nil {
		return Content{}, err
	}
	switch {
	case e.Kind == manifest.KindImage:
		return imageContent(e.Path, data), nil
	case isBinary(data):
		return Content{Kind: KindBinary, Title: e.Path, Type: Detect(e.Path), Text: fmt.Sprintf("binary file, %d bytes", len(data))}, nil
	}
	return Content{Kind: KindTerminal, Title: e.Path, Type: Detect(e.Path), Text: string(data)}, nil
}

func imageContent(path string, data []byte) Content {
	c := Content{Kind: KindImage, Title: path, Type: Detect(path)}
	info, err := DecodeImageInfo(data)
	if err != nil {
		c.Text = fmt.Sprintf("unrecognized image format, %d bytes", len(data))
		return c
	}
	c.Image = &info
	c.Text = info.String()
	return c
}

func (r *Renderer) fileDiff(ctx context.Context, d git.CommitDetails, f git.ChangedFile) (Content, error) {
	var oldData, newData []byte
	var err error

	if f.Status != git.StatusAdded && len(d.Commit.Parents) > 0 {
		oldPath := f.Path
		if f.PreviousPath != "" {
			oldPath = f.PreviousPath
		}
		if oldData, err = r.readOptional(ctx, d.Commit.Parents[0], oldPath); err != nil {
			return Content{}, err
		}
	}
	if f.Status != git.StatusRemoved {
		if newData, err = r.readOptional(ctx, d.Commit.SHA, f.Path); err != nil {
			return Content{}, err
		}
	}

	info := Detect(f.Path)
	title := f.Path
	if f.PreviousPath != "" && f.PreviousPath != f.Path {
		title = f.PreviousPath + " → " + f.Path
	}

	if info.Category == CategoryImage {
		data := newData
		if data == nil {
			data = oldData
		}
		c := imageContent(f.Path, data)
		c.Title = title
		return c, nil
	}
	if isBinary(oldData) || isBinary(newData) {
		return Content{
			Kind:  KindBinary,
			Title: title,
			Type:  info,
			Text:  fmt.Sprintf("binary file, %d -> %d bytes", len(oldData), len(newData)),
		}, nil
	}

	oldName, newName := "a/"+f.Path, "b/"+f.Path
	if f.PreviousPath != "" {
		oldName = "a/" + f.PreviousPath
	}
	if f.Status == git.StatusAdded {
		oldName = "/dev/null"
	}
	if f.Status == git.StatusRemoved {
		newName = "/dev/null"
	}
	text, err := Unified(string(oldData), string(newData), oldName, newName, r.Context)
	if err != nil {
		return Content{}, fmt.Errorf("diff %s: %w", f.Path, err)
	}

	return Content{
		Kind:  KindDiff,
		Title: title,
		Type:  info,
		Text:  text,
		Lines: DiffLines(SplitLines(string(oldData)), SplitLines(string(newData))),
	}, nil
}

func (r *Renderer) read(ctx context.Context, ref, path string) ([]byte, error) {
	data, err := r.Provider.ReadFile(ctx, ref, path)
	if err != nil {
		return nil, fmt.Errorf("read %s at %s: %w", path, ref, err)
	}
	return data, nil
}

// readOptional treats a missing blob as empty.
func (r *Renderer) readOptional(ctx context.Context, ref, path string) ([]byte, error) {
	data, err := r.Provider.ReadFile(ctx, ref, path)
	if errors.Is(err, git.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s at %s: %w", path, ref, err)
	}
	return data, nil
}

const binarySniffLen = 8000

func isBinary(data []byte) bool {
	if len(data) > binarySniffLen {
		data = data[:binarySniffLen]
	}
	return bytes.IndexByte(data, 0) >= 0
}
