package anchorpatch

import (
	"strings"
	"testing"
)

func TestUnifiedDiffNoChanges(t *testing.T) {
	doc := ParseDocument("x.ts", "a\nb\nc\n")
	if out := UnifiedDiff(doc, doc, 3, false); out != "" {
		t.Errorf("UnifiedDiff() = %q, want empty for identical documents", out)
	}
}

func TestUnifiedDiffSingleHunk(t *testing.T) {
	oldDoc := ParseDocument("x.ts", "one\ntwo\nthree\nfour\nfive\n")
	newDoc := ParseDocument("x.ts", "one\ntwo\nTWO-AND-A-HALF\nthree\nfour\nfive\n")

	out := UnifiedDiff(oldDoc, newDoc, 3, false)
	for _, want := range []string{
		"--- a/x.ts",
		"+++ b/x.ts",
		"@@ -1,5 +1,6 @@",
		"+TWO-AND-A-HALF",
		" two",
		" three",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("diff missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "-one") {
		t.Errorf("unchanged line reported as removed:\n%s", out)
	}
}

func TestUnifiedDiffSeparateHunks(t *testing.T) {
	var before, after strings.Builder
	for i := 0; i < 30; i++ {
		line := "line\n"
		before.WriteString(line)
		after.WriteString(line)
		if i == 2 {
			after.WriteString("first change\n")
		}
		if i == 25 {
			after.WriteString("second change\n")
		}
	}
	out := UnifiedDiff(ParseDocument("x", before.String()), ParseDocument("x", after.String()), 2, false)
	if got := strings.Count(out, "@@ -"); got != 2 {
		t.Errorf("hunk count = %d, want 2:\n%s", got, out)
	}
}

func TestUnifiedDiffRemoval(t *testing.T) {
	oldDoc := ParseDocument("x.ts", "keep\ndrop me\nkeep too\n")
	newDoc := ParseDocument("x.ts", "keep\nkeep too\n")

	out := UnifiedDiff(oldDoc, newDoc, 1, false)
	if !strings.Contains(out, "-drop me") {
		t.Errorf("diff missing removal:\n%s", out)
	}
	if strings.Contains(out, "+drop me") {
		t.Errorf("removed line reported as added:\n%s", out)
	}
}

func TestUnifiedDiffColor(t *testing.T) {
	oldDoc := ParseDocument("x.ts", "a\n")
	newDoc := ParseDocument("x.ts", "b\n")

	plain := UnifiedDiff(oldDoc, newDoc, 3, false)
	if strings.Contains(plain, "\033[") {
		t.Error("plain output contains ANSI escapes")
	}
	colored := UnifiedDiff(oldDoc, newDoc, 3, true)
	if !strings.Contains(colored, colorRed) || !strings.Contains(colored, colorGreen) {
		t.Error("colored output missing ANSI escapes")
	}
}

// TestUnifiedDiffReconstruction rebuilds both sides of the diff from its own
// output and checks they match the input documents line for line. Catches
// hydration bugs where the underlying diff splits inside a line and stitches
// unrelated content into the hunks.
func TestUnifiedDiffReconstruction(t *testing.T) {
	oldDoc := ParseDocument("electron/main.ts", mainTS)
	result, err := Preview(oldDoc, DefaultIntents())
	if err != nil {
		t.Fatalf("Preview() error: %v", err)
	}
	newDoc := result.Doc

	// A context wider than the file keeps every line in a single hunk.
	out := UnifiedDiff(oldDoc, newDoc, oldDoc.LineCount(), false)

	var oldLines, newLines []string
	for _, line := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "--- "), strings.HasPrefix(line, "+++ "), strings.HasPrefix(line, "@@"):
		case strings.HasPrefix(line, "-"):
			oldLines = append(oldLines, line[1:])
		case strings.HasPrefix(line, "+"):
			newLines = append(newLines, line[1:])
		default:
			oldLines = append(oldLines, line[1:])
			newLines = append(newLines, line[1:])
		}
	}

	wantOld := strings.Split(strings.TrimSuffix(mainTS, "\n"), "\n")
	wantNew := strings.Split(strings.TrimSuffix(newDoc.Text(), "\n"), "\n")
	if got, want := strings.Join(oldLines, "\n"), strings.Join(wantOld, "\n"); got != want {
		t.Errorf("old side does not reconstruct input:\ngot:\n%s\nwant:\n%s", got, want)
	}
	if got, want := strings.Join(newLines, "\n"), strings.Join(wantNew, "\n"); got != want {
		t.Errorf("new side does not reconstruct output:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestUnifiedDiffEndToEnd(t *testing.T) {
	doc := ParseDocument("electron/main.ts", mainTS)
	result, err := Preview(doc, DefaultIntents())
	if err != nil {
		t.Fatalf("Preview() error: %v", err)
	}
	out := UnifiedDiff(doc, result.Doc, 3, false)
	for _, want := range []string{
		"-interface GitWatcherSet {",
		"-  ipcMain.handle('git:get-info', async (_event, repoPath: string) => {",
		"-    gitWatchers.clear()",
		"+import { registerGitHandlers, cleanupGitWatchers } from './services/git-service.js'",
		"+  registerGitHandlers(mainWindow, sshManager, execInContextAsync)",
		"+    cleanupGitWatchers()",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("diff missing %q", want)
		}
	}
}
