package anchorpatch

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind names accepted in intent manifests.
const (
	KindInsertAfter  = "insert-after"
	KindDeleteRange  = "delete-range"
	KindReplaceRange = "replace-range"
)

// Intent is one named transformation: an anchor, an operation kind, an
// optional end rule and payload, and the signature that tells the
// idempotence guard whether the intent is already applied.
type Intent struct {
	Name    string    `yaml:"name"`
	Kind    string    `yaml:"kind"`
	Anchor  Anchor    `yaml:"anchor"`
	End     *EndRule  `yaml:"end,omitempty"`
	Payload []string  `yaml:"payload,omitempty"`
	Applied Signature `yaml:"applied_when,omitempty"`
}

func (it Intent) validate() error {
	if it.Name == "" {
		return fmt.Errorf("%w: intent has no name", ErrInvalidIntent)
	}
	if it.Anchor.Pattern == "" {
		return fmt.Errorf("%w: intent %q has no anchor pattern", ErrInvalidIntent, it.Name)
	}
	switch it.Kind {
	case KindInsertAfter:
		if len(it.Payload) == 0 {
			return fmt.Errorf("%w: intent %q inserts nothing", ErrInvalidIntent, it.Name)
		}
		if it.End != nil {
			return fmt.Errorf("%w: intent %q is insert-after but has an end rule", ErrInvalidIntent, it.Name)
		}
	case KindDeleteRange:
		if it.End == nil {
			return fmt.Errorf("%w: intent %q deletes a range but has no end rule", ErrInvalidIntent, it.Name)
		}
	case KindReplaceRange:
		if it.End == nil {
			return fmt.Errorf("%w: intent %q replaces a range but has no end rule", ErrInvalidIntent, it.Name)
		}
		if len(it.Payload) == 0 {
			return fmt.Errorf("%w: intent %q replaces with nothing; use %s", ErrInvalidIntent, it.Name, KindDeleteRange)
		}
	default:
		return fmt.Errorf("%w: intent %q has unknown kind %q", ErrInvalidIntent, it.Name, it.Kind)
	}
	if it.End != nil && !it.End.DepthReturn && it.End.Pattern == "" {
		return fmt.Errorf("%w: intent %q end rule has neither a pattern nor depth_return", ErrInvalidIntent, it.Name)
	}
	return nil
}

// operation compiles the intent into its EditOperation.
func (it Intent) operation() EditOperation {
	kind := OpInsertAfter
	switch it.Kind {
	case KindDeleteRange:
		kind = OpDeleteRange
	case KindReplaceRange:
		kind = OpReplaceRange
	}
	return EditOperation{
		Intent:  it.Name,
		Kind:    kind,
		Anchor:  it.Anchor,
		End:     it.End,
		Payload: it.Payload,
	}
}

// signature returns the explicit applied-state signature, or derives one:
// an insert is applied when its first payload line is present, a delete when
// its anchor pattern is gone.
func (it Intent) signature() Signature {
	if len(it.Applied.Present) > 0 || len(it.Applied.Absent) > 0 {
		return it.Applied
	}
	switch it.Kind {
	case KindDeleteRange:
		return Signature{Absent: []string{it.Anchor.Pattern}}
	default:
		for _, p := range it.Payload {
			if s := strings.TrimSpace(p); s != "" {
				return Signature{Present: []string{s}}
			}
		}
	}
	return Signature{}
}

type intentManifest struct {
	Intents []Intent `yaml:"intents"`
}

// LoadIntents reads a YAML intent manifest.
func LoadIntents(path string) ([]Intent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read intents %s: %w", path, err)
	}
	var m intentManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse intents %s: %w", path, err)
	}
	if len(m.Intents) == 0 {
		return nil, fmt.Errorf("%w: %s defines no intents", ErrInvalidIntent, path)
	}
	for _, it := range m.Intents {
		if err := it.validate(); err != nil {
			return nil, err
		}
	}
	return m.Intents, nil
}

// DefaultIntents is the built-in manifest: extract the git IPC handlers from
// an Electron main.ts into a git-service module, leaving the original file
// delegating to registerGitHandlers/cleanupGitWatchers.
func DefaultIntents() []Intent {
	return []Intent{
		{
			Name:    "add-import-after-marker",
			Kind:    KindInsertAfter,
			Anchor:  Anchor{Pattern: "import { generateFileId"},
			Payload: []string{"import { registerGitHandlers, cleanupGitWatchers } from './services/git-service.js'"},
			Applied: Signature{Present: []string{"from './services/git-service.js'"}},
		},
		{
			Name:   "delete-interface-block",
			Kind:   KindDeleteRange,
			Anchor: Anchor{Pattern: "interface GitWatcherSet"},
			End:    &EndRule{Pattern: "const GIT_DEBOUNCE_MS", Inclusive: true},
			Applied: Signature{Absent: []string{"interface GitWatcherSet"}},
		},
		{
			Name: "insert-registration-call-after-context",
			Kind: KindInsertAfter,
			Anchor: Anchor{
				Pattern:    `^  \}\)$`,
				Regex:      true,
				Occurrence: 1,
				Context:    &ContextGuard{Pattern: "sshManager.on('status-change'", Lines: 10},
			},
			Payload: []string{
				"",
				"  // Register all git-related IPC handlers",
				"  registerGitHandlers(mainWindow, sshManager, execInContextAsync)",
			},
			Applied: Signature{Present: []string{"registerGitHandlers(mainWindow, sshManager, execInContextAsync)"}},
		},
		{
			Name:   "delete-handler-blocks",
			Kind:   KindDeleteRange,
			Anchor: Anchor{Pattern: "ipcMain.handle('git:get-info'"},
			// The block of git handlers ends where the next section starts:
			// either the first registration of a different family, or the
			// file-system section comment, whichever comes first.
			End: &EndRule{
				Pattern: `ipcMain\.handle\('|// File system IPC handlers`,
				Regex:   true,
				Exclude: "'git:",
			},
			Applied: Signature{Absent: []string{"ipcMain.handle('git:"}},
		},
		{
			Name:   "replace-cleanup-block",
			Kind:   KindReplaceRange,
			Anchor: Anchor{Pattern: "// Clean up all git watchers"},
			End:    &EndRule{Pattern: "gitWatchers.clear()", Inclusive: true},
			Payload: []string{
				"    // Clean up all git watchers",
				"    cleanupGitWatchers()",
			},
			Applied: Signature{
				Present: []string{"cleanupGitWatchers()"},
				Absent:  []string{"gitWatchers.clear()"},
			},
		},
	}
}
