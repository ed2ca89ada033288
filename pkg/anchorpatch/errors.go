package anchorpatch

import (
	"errors"
	"fmt"
)

// Errors returned by planning. Any of these aborts the run before a write
// is attempted; the target file is guaranteed unmodified.
var (
	ErrAnchorNotFound  = errors.New("anchor not found")
	ErrAnchorAmbiguous = errors.New("anchor ambiguous")
	ErrRangeOverlap    = errors.New("edit ranges overlap")
	ErrInvalidIntent   = errors.New("invalid intent")
)

// AnchorError reports a pattern that failed to resolve, and for which intent.
type AnchorError struct {
	Intent  string
	Pattern string
	Matches []int // 1-based line numbers, set when the anchor is ambiguous
	Err     error // ErrAnchorNotFound or ErrAnchorAmbiguous
}

func (e *AnchorError) Error() string {
	if errors.Is(e.Err, ErrAnchorAmbiguous) {
		return fmt.Sprintf("intent %q: pattern %q matches lines %v: %v", e.Intent, e.Pattern, e.Matches, e.Err)
	}
	return fmt.Sprintf("intent %q: pattern %q: %v", e.Intent, e.Pattern, e.Err)
}

func (e *AnchorError) Unwrap() error { return e.Err }

// OverlapError reports two operations whose resolved line ranges intersect.
type OverlapError struct {
	First, Second          string // intent names, in document order
	FirstStart, FirstEnd   int    // 1-based, end inclusive
	SecondStart, SecondEnd int
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("intent %q (lines %d-%d) overlaps intent %q (lines %d-%d): %v",
		e.First, e.FirstStart, e.FirstEnd, e.Second, e.SecondStart, e.SecondEnd, ErrRangeOverlap)
}

func (e *OverlapError) Unwrap() error { return ErrRangeOverlap }

// IsPlanningError reports whether err belongs to the planning-stage taxonomy,
// as opposed to an I/O failure. The CLI maps planning errors to exit code 1
// and everything else to exit code 2.
func IsPlanningError(err error) bool {
	return errors.Is(err, ErrAnchorNotFound) ||
		errors.Is(err, ErrAnchorAmbiguous) ||
		errors.Is(err, ErrRangeOverlap) ||
		errors.Is(err, ErrInvalidIntent)
}
