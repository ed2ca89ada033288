package anchorpatch

// Signature describes the document state after an intent has been applied:
// every Present pattern appears on some line, no Absent pattern does.
// The inverse (Present all missing, Absent all found) is the pristine,
// unapplied state; anything in between is inconsistent.
type Signature struct {
	Present []string `yaml:"present,omitempty"`
	Absent  []string `yaml:"absent,omitempty"`
}

func (s Signature) applied(doc *SourceDocument) bool {
	for _, p := range s.Present {
		if !doc.contains(p) {
			return false
		}
	}
	for _, p := range s.Absent {
		if doc.contains(p) {
			return false
		}
	}
	return true
}

func (s Signature) unapplied(doc *SourceDocument) bool {
	for _, p := range s.Present {
		if doc.contains(p) {
			return false
		}
	}
	for _, p := range s.Absent {
		if !doc.contains(p) {
			return false
		}
	}
	return true
}

// DocState classifies a document against an intent set.
type DocState int

const (
	StateUnapplied DocState = iota
	StateApplied
	StatePartial
)

func (s DocState) String() string {
	switch s {
	case StateUnapplied:
		return "fully unapplied"
	case StateApplied:
		return "fully applied"
	default:
		return "inconsistent/partial"
	}
}

// IntentStatus is the guard's verdict for one intent.
type IntentStatus struct {
	Name  string
	State DocState
}

// VerifyDocument recomputes every intent's signature against doc and
// reports the overall state plus the per-intent breakdown. It backs the
// CLI's verify mode and never modifies anything.
func VerifyDocument(doc *SourceDocument, intents []Intent) (DocState, []IntentStatus) {
	statuses := make([]IntentStatus, 0, len(intents))
	applied, unapplied := 0, 0
	for _, it := range intents {
		sig := it.signature()
		st := StatePartial
		switch {
		case sig.applied(doc):
			st = StateApplied
			applied++
		case sig.unapplied(doc):
			st = StateUnapplied
			unapplied++
		}
		statuses = append(statuses, IntentStatus{Name: it.Name, State: st})
	}
	switch {
	case applied == len(intents):
		return StateApplied, statuses
	case unapplied == len(intents):
		return StateUnapplied, statuses
	default:
		return StatePartial, statuses
	}
}
