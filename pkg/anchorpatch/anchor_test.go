package anchorpatch

import (
	"errors"
	"testing"
)

func TestAnchorResolve(t *testing.T) {
	doc := ParseDocument("x.ts", ""+
		"import { app } from 'electron'\n"+
		"import { generateFileId } from './utils.js'\n"+
		"\n"+
		"const handler = () => {\n"+
		"  doWork()\n"+
		"})\n"+
		"const other = () => {\n"+
		"  doWork()\n"+
		"})\n")

	tests := []struct {
		name     string
		anchor   Anchor
		wantLine int // 0-based; -1 when an error is expected
		wantErr  error
	}{
		{
			name:     "literal substring",
			anchor:   Anchor{Pattern: "generateFileId"},
			wantLine: 1,
		},
		{
			name:     "regex",
			anchor:   Anchor{Pattern: `^import \{ app`, Regex: true},
			wantLine: 0,
		},
		{
			name:    "not found",
			anchor:  Anchor{Pattern: "no such thing"},
			wantErr: ErrAnchorNotFound,
		},
		{
			name:    "ambiguous without occurrence",
			anchor:  Anchor{Pattern: "doWork()"},
			wantErr: ErrAnchorAmbiguous,
		},
		{
			name:     "first occurrence",
			anchor:   Anchor{Pattern: "doWork()", Occurrence: 1},
			wantLine: 4,
		},
		{
			name:     "second occurrence",
			anchor:   Anchor{Pattern: "doWork()", Occurrence: 2},
			wantLine: 7,
		},
		{
			name:    "occurrence past last match",
			anchor:  Anchor{Pattern: "doWork()", Occurrence: 3},
			wantErr: ErrAnchorNotFound,
		},
		{
			name:     "window restricts matches",
			anchor:   Anchor{Pattern: "doWork()", Window: &Window{Start: 6, End: 9}},
			wantLine: 7,
		},
		{
			name:    "window excludes all matches",
			anchor:  Anchor{Pattern: "generateFileId", Window: &Window{Start: 3}},
			wantErr: ErrAnchorNotFound,
		},
		{
			name: "context guard disambiguates",
			anchor: Anchor{
				Pattern: "doWork()",
				Context: &ContextGuard{Pattern: "const other", Lines: 3},
			},
			wantLine: 7,
		},
		{
			name: "context guard rejects all",
			anchor: Anchor{
				Pattern: "doWork()",
				Context: &ContextGuard{Pattern: "never present", Lines: 3},
			},
			wantErr: ErrAnchorNotFound,
		},
		{
			name:     "trim matches anchored regex",
			anchor:   Anchor{Pattern: `^doWork`, Regex: true, Trim: true, Occurrence: 1},
			wantLine: 4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.anchor.Resolve(doc)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() unexpected error: %v", err)
			}
			if res.Line != tt.wantLine {
				t.Errorf("Resolve() line = %d, want %d", res.Line, tt.wantLine)
			}
		})
	}
}

func TestAnchorLineHint(t *testing.T) {
	doc := ParseDocument("x.ts", "a\nb\nc\n")

	res, err := Anchor{Pattern: "b", LineHint: 2}.Resolve(doc)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if res.HintMismatch {
		t.Error("matching hint should not report a mismatch")
	}

	// A stale hint warns but never overrides content-based resolution.
	res, err = Anchor{Pattern: "b", LineHint: 3}.Resolve(doc)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if res.Line != 1 {
		t.Errorf("Resolve() line = %d, want 1 (content wins over hint)", res.Line)
	}
	if !res.HintMismatch {
		t.Error("stale hint should report a mismatch")
	}
}

func TestAnchorAmbiguousReportsLines(t *testing.T) {
	doc := ParseDocument("x.ts", "dup\nother\ndup\n")
	_, err := Anchor{Pattern: "dup"}.Resolve(doc)
	var ae *AnchorError
	if !errors.As(err, &ae) {
		t.Fatalf("Resolve() error = %v, want *AnchorError", err)
	}
	want := []int{1, 3}
	if len(ae.Matches) != len(want) || ae.Matches[0] != want[0] || ae.Matches[1] != want[1] {
		t.Errorf("Matches = %v, want %v", ae.Matches, want)
	}
}

func TestAnchorBadRegex(t *testing.T) {
	doc := ParseDocument("x.ts", "a\n")
	_, err := (Anchor{Pattern: "([", Regex: true}).Resolve(doc)
	if err == nil {
		t.Fatal("expected error for invalid regex")
	}
	// A compile failure is a defect in the intent, not an I/O problem, so
	// it must map to the planning exit code.
	if !errors.Is(err, ErrInvalidIntent) {
		t.Errorf("Resolve() error = %v, want ErrInvalidIntent", err)
	}
	if !IsPlanningError(err) {
		t.Errorf("IsPlanningError(%v) = false, want true", err)
	}
}

func TestEndRuleBadRegexIsPlanningError(t *testing.T) {
	doc := ParseDocument("x.ts", "a\nb\nc\n")
	_, err := (EndRule{Pattern: "([", Regex: true}).resolve(doc, 0)
	if !errors.Is(err, ErrInvalidIntent) {
		t.Errorf("resolve() error = %v, want ErrInvalidIntent", err)
	}
}
