// Package anchorpatch extracts a subsystem out of a large source file by
// locating structural regions with content anchors instead of absolute line
// numbers, building a validated non-overlapping edit plan against one
// immutable snapshot, and applying it atomically and idempotently.
package anchorpatch

import (
	"fmt"
	"io/fs"
	"os"
)

// Preview builds and applies the plan in memory. Nothing is written.
func Preview(doc *SourceDocument, intents []Intent) (*PatchResult, error) {
	plan, err := BuildPlan(doc, intents)
	if err != nil {
		return nil, err
	}
	return plan.Apply(), nil
}

// ApplyFile runs the full pipeline against the file at path: snapshot,
// guard, plan, apply, atomic write-back. When every intent is already
// applied it reports a no-op without touching the file. The original file
// permissions are preserved.
func ApplyFile(path string, intents []Intent) (*PatchResult, error) {
	doc, err := LoadDocument(path)
	if err != nil {
		return nil, err
	}
	plan, err := BuildPlan(doc, intents)
	if err != nil {
		return nil, err
	}
	result := plan.Apply()
	if !result.Changed {
		return result, nil
	}

	perm := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := WriteAtomic(path, []byte(result.Doc.Text()), perm); err != nil {
		return nil, fmt.Errorf("write back %s: %w", path, err)
	}
	return result, nil
}
