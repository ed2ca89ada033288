package anchorpatch

import (
	"fmt"
	"regexp"
	"strings"
)

// Window restricts an anchor search to a range of lines, both bounds
// 1-based and inclusive. A zero bound means "start of file" / "end of file".
type Window struct {
	Start int `yaml:"start,omitempty"`
	End   int `yaml:"end,omitempty"`
}

// ContextGuard is an extra condition on an anchor match: the guard pattern
// must appear within Lines lines immediately before the candidate line.
// It disambiguates generic anchors such as a bare block-closing brace by
// tying them to the construct they terminate.
type ContextGuard struct {
	Pattern string `yaml:"pattern"`
	Lines   int    `yaml:"lines"`
}

// Anchor locates a line by content. Resolution is always content-based;
// LineHint, when set, is only compared against the resolved position and a
// mismatch is surfaced as a drift warning, never used to pick a line.
type Anchor struct {
	Pattern    string        `yaml:"pattern"`
	Regex      bool          `yaml:"regex,omitempty"`
	Trim       bool          `yaml:"trim,omitempty"`
	Occurrence int           `yaml:"occurrence,omitempty"` // 0 = match must be unique, n>0 = nth match
	Window     *Window       `yaml:"window,omitempty"`
	Context    *ContextGuard `yaml:"context,omitempty"`
	LineHint   int           `yaml:"line_hint,omitempty"` // 1-based
}

// Resolution is the outcome of a successful anchor lookup.
type Resolution struct {
	Line         int  // 0-based line index
	HintMismatch bool // LineHint was set and disagrees with Line
}

// Resolve finds the anchor's line in doc. It returns an *AnchorError
// wrapping ErrAnchorNotFound when no line (or no nth line) matches within
// the window, and ErrAnchorAmbiguous when Occurrence is zero and more than
// one line matches.
func (a Anchor) Resolve(doc *SourceDocument) (Resolution, error) {
	var re *regexp.Regexp
	if a.Regex {
		var err error
		re, err = regexp.Compile(a.Pattern)
		if err != nil {
			return Resolution{}, fmt.Errorf("compile anchor pattern %q: %v: %w", a.Pattern, err, ErrInvalidIntent)
		}
	}

	lo, hi := 0, doc.LineCount()
	if a.Window != nil {
		if a.Window.Start > 0 {
			lo = a.Window.Start - 1
		}
		if a.Window.End > 0 && a.Window.End < hi {
			hi = a.Window.End
		}
	}

	var matches []int
	for i := lo; i < hi; i++ {
		s := doc.Line(i)
		if a.Trim {
			s = strings.TrimSpace(s)
		}
		ok := false
		if re != nil {
			ok = re.MatchString(s)
		} else {
			ok = strings.Contains(s, a.Pattern)
		}
		if ok && a.Context != nil {
			ok = a.Context.holds(doc, i)
		}
		if !ok {
			continue
		}
		matches = append(matches, i)
		if a.Occurrence > 0 && len(matches) == a.Occurrence {
			break
		}
	}

	switch {
	case len(matches) == 0, a.Occurrence > 0 && len(matches) < a.Occurrence:
		return Resolution{}, &AnchorError{Pattern: a.Pattern, Err: ErrAnchorNotFound}
	case a.Occurrence == 0 && len(matches) > 1:
		lines := make([]int, len(matches))
		for i, m := range matches {
			lines[i] = m + 1
		}
		return Resolution{}, &AnchorError{Pattern: a.Pattern, Matches: lines, Err: ErrAnchorAmbiguous}
	}

	idx := matches[len(matches)-1]
	res := Resolution{Line: idx}
	if a.LineHint > 0 && a.LineHint != idx+1 {
		res.HintMismatch = true
	}
	return res, nil
}

// holds checks the guard against the lines preceding candidate line i.
func (g ContextGuard) holds(doc *SourceDocument, i int) bool {
	lo := i - g.Lines
	if lo < 0 {
		lo = 0
	}
	for j := lo; j < i; j++ {
		if strings.Contains(doc.Line(j), g.Pattern) {
			return true
		}
	}
	return false
}
