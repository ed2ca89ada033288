package anchorpatch

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ANSI color codes for terminal diff output.
const (
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
	colorReset = "\033[0m"
)

type diffLineKind rune

const (
	diffContext diffLineKind = ' '
	diffAdded   diffLineKind = '+'
	diffRemoved diffLineKind = '-'
)

type diffLine struct {
	kind    diffLineKind
	content string
	oldLine int // 0-based, -1 for added lines
	newLine int // 0-based, -1 for removed lines
}

type hunk struct {
	oldStart, oldCount int // 1-based start
	newStart, newCount int
	lines              []diffLine
}

// UnifiedDiff renders the changes between two snapshots as a unified diff
// with the given number of context lines, optionally ANSI-colored. Returns
// the empty string when the documents are identical.
func UnifiedDiff(oldDoc, newDoc *SourceDocument, contextLines int, color bool) string {
	ops := diffsToLines(diffLines(oldDoc, newDoc))
	hunks := groupHunks(ops, contextLines)
	if len(hunks) == 0 {
		return ""
	}

	var sb strings.Builder
	plain := func(s string) {
		sb.WriteString(s)
		sb.WriteByte('\n')
	}
	paint := func(code, s string) {
		if !color {
			plain(s)
			return
		}
		sb.WriteString(code)
		sb.WriteString(s)
		sb.WriteString(colorReset)
		sb.WriteByte('\n')
	}
	plain("--- a/" + oldDoc.Path())
	plain("+++ b/" + newDoc.Path())
	for _, h := range hunks {
		paint(colorCyan, fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.oldStart, h.oldCount, h.newStart, h.newCount))
		for _, l := range h.lines {
			line := string(l.kind) + l.content
			switch l.kind {
			case diffAdded:
				paint(colorGreen, line)
			case diffRemoved:
				paint(colorRed, line)
			default:
				plain(line)
			}
		}
	}
	return sb.String()
}

// diffLines diffs two snapshots at line granularity. Every distinct line is
// mapped to a single unique rune, so the rune-level diff can only split on
// line boundaries; the runes are then rehydrated back into newline-terminated
// lines. (DiffLinesToChars encodes lines as multi-character index strings
// that DiffMain splits mid-token, corrupting the rehydrated lines.)
func diffLines(oldDoc, newDoc *SourceDocument) []diffmatchpatch.Diff {
	index := make(map[string]rune)
	lines := make(map[rune]string)
	next := rune(1)
	encode := func(doc *SourceDocument) []rune {
		rs := make([]rune, doc.LineCount())
		for i := 0; i < doc.LineCount(); i++ {
			line := doc.Line(i)
			r, ok := index[line]
			if !ok {
				r = next
				next++
				if next == 0xD800 { // surrogates are not valid runes
					next = 0xE000
				}
				index[line] = r
				lines[r] = line
			}
			rs[i] = r
		}
		return rs
	}
	a, b := encode(oldDoc), encode(newDoc)

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMainRunes(a, b, false)
	out := make([]diffmatchpatch.Diff, 0, len(diffs))
	for _, d := range diffs {
		var sb strings.Builder
		for _, r := range d.Text {
			sb.WriteString(lines[r])
			sb.WriteByte('\n')
		}
		out = append(out, diffmatchpatch.Diff{Type: d.Type, Text: sb.String()})
	}
	return out
}

// diffsToLines flattens line-granularity diffs into per-line operations with
// old/new line numbers.
func diffsToLines(diffs []diffmatchpatch.Diff) []diffLine {
	var out []diffLine
	oldLine, newLine := 0, 0
	for _, d := range diffs {
		text := strings.TrimSuffix(d.Text, "\n")
		if text == "" && d.Text != "\n" {
			continue
		}
		for _, content := range strings.Split(text, "\n") {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				out = append(out, diffLine{kind: diffContext, content: content, oldLine: oldLine, newLine: newLine})
				oldLine++
				newLine++
			case diffmatchpatch.DiffDelete:
				out = append(out, diffLine{kind: diffRemoved, content: content, oldLine: oldLine, newLine: -1})
				oldLine++
			case diffmatchpatch.DiffInsert:
				out = append(out, diffLine{kind: diffAdded, content: content, oldLine: -1, newLine: newLine})
				newLine++
			}
		}
	}
	return out
}

// groupHunks clusters changed lines into hunks separated by more than
// 2*contextLines of unchanged text.
func groupHunks(ops []diffLine, contextLines int) []hunk {
	var hunks []hunk
	var cur *hunk
	lastChange := -1

	flush := func() {
		if cur == nil {
			return
		}
		// trim trailing context beyond the window
		keep := 0
		for i, l := range cur.lines {
			if l.kind != diffContext {
				keep = i + 1
			}
		}
		if keep+contextLines < len(cur.lines) {
			cur.lines = cur.lines[:keep+contextLines]
		}
		for _, l := range cur.lines {
			if l.kind != diffAdded {
				cur.oldCount++
			}
			if l.kind != diffRemoved {
				cur.newCount++
			}
			if cur.oldStart == 0 && l.oldLine >= 0 {
				cur.oldStart = l.oldLine + 1
			}
			if cur.newStart == 0 && l.newLine >= 0 {
				cur.newStart = l.newLine + 1
			}
		}
		hunks = append(hunks, *cur)
		cur = nil
	}

	for i, op := range ops {
		if op.kind != diffContext {
			if cur == nil {
				cur = &hunk{}
				start := i - contextLines
				if start < 0 {
					start = 0
				}
				cur.lines = append(cur.lines, ops[start:i]...)
			}
			lastChange = i
		}
		if cur != nil {
			cur.lines = append(cur.lines, op)
			if op.kind == diffContext && i-lastChange >= 2*contextLines {
				flush()
			}
		}
	}
	flush()
	return hunks
}
