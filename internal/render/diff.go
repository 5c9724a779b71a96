package render

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineType is the kind of a diff line.
type LineType int

const (
	Equal LineType = iota
	Added
	Removed
)

// Segment is part of a changed line; Changed marks the words that differ
// from the paired line on the other side.
type Segment struct {
	Text    string
	Changed bool
}

// DiffLine is a single line of a rendered diff.
type DiffLine struct {
	Type     LineType
	Content  string
	OldNo    int // 0 if not applicable
	NewNo    int // 0 if not applicable
	Segments []Segment
}

// SplitLines splits content into lines without trailing newlines.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}

// DiffLines compares two line slices. Replaced runs are emitted as alternating
// removed/added pairs carrying word-level segments.
func DiffLines(oldLines, newLines []string) []DiffLine {
	matcher := difflib.NewMatcher(oldLines, newLines)

	var out []DiffLine
	oldNo, newNo := 1, 1
	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'e':
			for i := op.I1; i < op.I2; i++ {
				out = append(out, DiffLine{Type: Equal, Content: oldLines[i], OldNo: oldNo, NewNo: newNo})
				oldNo++
				newNo++
			}
		case 'd':
			for i := op.I1; i < op.I2; i++ {
				out = append(out, DiffLine{Type: Removed, Content: oldLines[i], OldNo: oldNo})
				oldNo++
			}
		case 'i':
			for j := op.J1; j < op.J2; j++ {
				out = append(out, DiffLine{Type: Added, Content: newLines[j], NewNo: newNo})
				newNo++
			}
		case 'r':
			n := max(op.I2-op.I1, op.J2-op.J1)
			for k := 0; k < n; k++ {
				hasOld, hasNew := k < op.I2-op.I1, k < op.J2-op.J1
				var oldSeg, newSeg []Segment
				if hasOld && hasNew {
					oldSeg, newSeg = wordSegments(oldLines[op.I1+k], newLines[op.J1+k])
				}
				if hasOld {
					out = append(out, DiffLine{Type: Removed, Content: oldLines[op.I1+k], OldNo: oldNo, Segments: oldSeg})
					oldNo++
				}
				if hasNew {
					out = append(out, DiffLine{Type: Added, Content: newLines[op.J1+k], NewNo: newNo, Segments: newSeg})
					newNo++
				}
			}
		}
	}
	return out
}

func wordSegments(oldLine, newLine string) (oldSeg, newSeg []Segment) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(oldLine, newLine, false))

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			oldSeg = append(oldSeg, Segment{Text: d.Text})
			newSeg = append(newSeg, Segment{Text: d.Text})
		case diffmatchpatch.DiffDelete:
			oldSeg = append(oldSeg, Segment{Text: d.Text, Changed: true})
		case diffmatchpatch.DiffInsert:
			newSeg = append(newSeg, Segment{Text: d.Text, Changed: true})
		}
	}
	return oldSeg, newSeg
}

// Unified renders a unified diff with the given number of context lines.
func Unified(oldContent, newContent, oldName, newName string, context int) (string, error) {
	if oldContent == newContent {
		return "", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        unifiedLines(oldContent),
		B:        unifiedLines(newContent),
		FromFile: oldName,
		ToFile:   newName,
		Context:  context,
	})
}

// unifiedLines splits content keeping line terminators; a missing final
// newline is added so every line prints on its own.
func unifiedLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	} else {
		lines[len(lines)-1] += "\n"
	}
	return lines
}

// Stats counts added and removed lines.
func Stats(lines []DiffLine) (added, removed int) {
	for _, l := range lines {
		switch l.Type {
		case Added:
			added++
		case Removed:
			removed++
		}
	}
	return added, removed
}
