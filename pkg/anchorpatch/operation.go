package anchorpatch

import (
	"fmt"
	"regexp"
	"strings"
)

// OpKind tags the variant of an EditOperation.
type OpKind uint8

const (
	OpInsertAfter OpKind = iota
	OpDeleteRange
	OpReplaceRange
)

func (k OpKind) String() string {
	switch k {
	case OpInsertAfter:
		return "insert-after"
	case OpDeleteRange:
		return "delete-range"
	case OpReplaceRange:
		return "replace-range"
	default:
		return "unknown"
	}
}

// EndRule decides where a delete/replace range terminates, scanning forward
// from the start anchor. Exactly one of two modes applies:
//
//   - pattern mode: the range ends at the first line after the start anchor
//     matching Pattern (and, when Exclude is set, not containing Exclude).
//     Inclusive keeps that line inside the range.
//   - depth-return mode: the range ends at the first line where brace
//     nesting returns to the start anchor's depth, inclusive.
//
// An end rule always resolves strictly after its start anchor or fails.
type EndRule struct {
	Pattern     string `yaml:"pattern,omitempty"`
	Regex       bool   `yaml:"regex,omitempty"`
	Trim        bool   `yaml:"trim,omitempty"`
	Exclude     string `yaml:"exclude,omitempty"`
	Inclusive   bool   `yaml:"inclusive,omitempty"`
	DepthReturn bool   `yaml:"depth_return,omitempty"`
}

// resolve returns the exclusive end index of the range starting at start.
func (r EndRule) resolve(doc *SourceDocument, start int) (int, error) {
	if r.DepthReturn {
		return r.resolveDepth(doc, start)
	}

	var re *regexp.Regexp
	if r.Regex {
		var err error
		re, err = regexp.Compile(r.Pattern)
		if err != nil {
			return 0, fmt.Errorf("compile end pattern %q: %v: %w", r.Pattern, err, ErrInvalidIntent)
		}
	}
	for i := start + 1; i < doc.LineCount(); i++ {
		s := doc.Line(i)
		if r.Trim {
			s = strings.TrimSpace(s)
		}
		ok := false
		if re != nil {
			ok = re.MatchString(s)
		} else {
			ok = strings.Contains(s, r.Pattern)
		}
		if ok && r.Exclude != "" && strings.Contains(doc.Line(i), r.Exclude) {
			ok = false
		}
		if !ok {
			continue
		}
		if r.Inclusive {
			return i + 1, nil
		}
		return i, nil
	}
	return 0, &AnchorError{Pattern: r.Pattern, Err: ErrAnchorNotFound}
}

// resolveDepth scans brace nesting line by line. Depth counting is textual;
// braces inside string literals are counted too, which is acceptable for the
// block shapes this engine targets.
func (r EndRule) resolveDepth(doc *SourceDocument, start int) (int, error) {
	depth := 0
	for i := start; i < doc.LineCount(); i++ {
		depth += braceDelta(doc.Line(i))
		if i > start && depth <= 0 {
			return i + 1, nil
		}
	}
	return 0, &AnchorError{Pattern: "depth return", Err: ErrAnchorNotFound}
}

func braceDelta(line string) int {
	return strings.Count(line, "{") - strings.Count(line, "}")
}

// EditOperation is one tagged edit, produced from an intent by the planner.
// Payload lines are opaque literal text; the engine never inspects them.
type EditOperation struct {
	Intent  string
	Kind    OpKind
	Anchor  Anchor
	End     *EndRule // nil for OpInsertAfter
	Payload []string
}
