package anchorpatch

// OpDiagnostic records what one operation did (or why it did nothing).
type OpDiagnostic struct {
	Intent       string
	Kind         OpKind
	Skipped      bool
	Reason       string
	StartLine    int // 1-based line in the original document; 0 when skipped
	LinesRemoved int
	LinesAdded   int
}

// Diagnostics is the per-run report attached to a PatchResult.
type Diagnostics struct {
	Ops           []OpDiagnostic
	Warnings      []string
	OriginalLines int
	NewLines      int
}

// PatchResult is the applied plan: the new document plus diagnostics.
// Changed is false when every operation was skipped as already applied.
type PatchResult struct {
	Doc         *SourceDocument
	Diagnostics Diagnostics
	Changed     bool
}

// Apply materializes the plan in one left-to-right pass. Lines outside any
// operation's range are copied with their original terminators; payload
// lines get the document's dominant terminator. The snapshot is never
// touched, so Apply can be called repeatedly on the same plan.
func (p *EditPlan) Apply() *PatchResult {
	doc := p.doc
	term := doc.dominantTerminator()
	lines := make([]string, 0, doc.LineCount())
	terms := make([]string, 0, doc.LineCount())

	cursor := 0
	copyTo := func(upto int) {
		for ; cursor < upto; cursor++ {
			lines = append(lines, doc.lines[cursor])
			terms = append(terms, doc.terms[cursor])
		}
	}
	emit := func(payload []string) {
		for _, s := range payload {
			lines = append(lines, s)
			terms = append(terms, term)
		}
	}

	result := &PatchResult{}
	diags := &result.Diagnostics
	diags.Warnings = append(diags.Warnings, p.Warnings...)
	diags.OriginalLines = doc.LineCount()

	for _, po := range p.Ops {
		d := OpDiagnostic{Intent: po.Op.Intent, Kind: po.Op.Kind}
		if po.Skipped {
			d.Skipped = true
			d.Reason = po.Reason
			diags.Ops = append(diags.Ops, d)
			continue
		}
		result.Changed = true
		copyTo(po.Start)
		d.StartLine = po.Start + 1
		switch po.Op.Kind {
		case OpInsertAfter:
			emit(po.Op.Payload)
			d.LinesAdded = len(po.Op.Payload)
		case OpDeleteRange:
			cursor = po.End
			d.LinesRemoved = po.End - po.Start
		case OpReplaceRange:
			cursor = po.End
			emit(po.Op.Payload)
			d.LinesRemoved = po.End - po.Start
			d.LinesAdded = len(po.Op.Payload)
		}
		diags.Ops = append(diags.Ops, d)
	}
	copyTo(doc.LineCount())

	// Only the final line may go without a terminator. An originally
	// unterminated final line that stayed last keeps that property; if it
	// gained a successor it adopts the dominant terminator. A line that
	// becomes final through a deletion keeps its own terminator.
	for i := 0; i < len(terms)-1; i++ {
		if terms[i] == "" {
			terms[i] = term
		}
	}

	result.Doc = newDocument(doc, lines, terms)
	diags.NewLines = result.Doc.LineCount()
	return result
}
