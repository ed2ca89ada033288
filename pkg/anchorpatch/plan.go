package anchorpatch

import (
	"errors"
	"fmt"
	"sort"
)

// PlannedOp is an EditOperation with its range resolved against the
// snapshot. Start and End are 0-based with End exclusive; an insert is the
// empty range [p, p) at its insertion point. A skipped op carries no range.
type PlannedOp struct {
	Op      EditOperation
	Start   int
	End     int
	Skipped bool
	Reason  string
}

// EditPlan is the validated, ordered edit list for one snapshot. All ranges
// were resolved up front against the same immutable document, so applying
// one operation never moves another's coordinates.
type EditPlan struct {
	doc      *SourceDocument
	Ops      []PlannedOp
	Warnings []string
}

// BuildPlan resolves each intent's anchors against doc and validates the
// resulting ranges. Intents whose applied-state signature already holds are
// downgraded to recorded no-ops before resolution (their anchors may no
// longer exist). Any resolution failure or range overlap aborts planning.
func BuildPlan(doc *SourceDocument, intents []Intent) (*EditPlan, error) {
	plan := &EditPlan{doc: doc}
	for _, it := range intents {
		if err := it.validate(); err != nil {
			return nil, err
		}
		op := it.operation()
		if it.signature().applied(doc) {
			plan.Ops = append(plan.Ops, PlannedOp{Op: op, Skipped: true, Reason: "already applied"})
			continue
		}

		res, err := op.Anchor.Resolve(doc)
		if err != nil {
			return nil, tagIntent(err, it.Name)
		}
		if res.HintMismatch {
			plan.Warnings = append(plan.Warnings,
				fmt.Sprintf("intent %q: anchor resolved to line %d, hint expected line %d (drift)",
					it.Name, res.Line+1, op.Anchor.LineHint))
		}

		po := PlannedOp{Op: op}
		switch op.Kind {
		case OpInsertAfter:
			po.Start, po.End = res.Line+1, res.Line+1
		default:
			end, err := op.End.resolve(doc, res.Line)
			if err != nil {
				return nil, tagIntent(err, it.Name)
			}
			po.Start, po.End = res.Line, end
		}
		plan.Ops = append(plan.Ops, po)
	}

	sort.SliceStable(plan.Ops, func(i, j int) bool {
		a, b := plan.Ops[i], plan.Ops[j]
		if a.Skipped != b.Skipped {
			return b.Skipped // active ops first, in document order
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.End < b.End // inserts sort before ranges starting at the same line
	})

	var prev *PlannedOp
	for i := range plan.Ops {
		po := &plan.Ops[i]
		if po.Skipped {
			continue
		}
		if prev != nil && prev.End > po.Start {
			return nil, &OverlapError{
				First:       prev.Op.Intent,
				FirstStart:  prev.Start + 1,
				FirstEnd:    prev.End,
				Second:      po.Op.Intent,
				SecondStart: po.Start + 1,
				SecondEnd:   po.End,
			}
		}
		prev = po
	}
	return plan, nil
}

// AlreadyApplied reports whether every operation in the plan is a no-op.
func (p *EditPlan) AlreadyApplied() bool {
	for _, po := range p.Ops {
		if !po.Skipped {
			return false
		}
	}
	return true
}

func tagIntent(err error, name string) error {
	var ae *AnchorError
	if errors.As(err, &ae) {
		ae.Intent = name
		return err
	}
	return fmt.Errorf("intent %q: %w", name, err)
}
