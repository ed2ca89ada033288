package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jsnanigans/anchorpatch/pkg/anchorpatch"
)

// defaultTarget is the entry-point file the extraction was written for.
const defaultTarget = "electron/main.ts"

var (
	// Global flags
	verbose      bool
	intentsPath  string
	contextLines int
	noColor      bool

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "anchorpatch",
	Short: "Anchor-based patch engine for extracting a subsystem from a source file",
	Long: `anchorpatch rewrites a large source file to delegate an embedded
subsystem to a separate module. Regions are located by content anchors, never
by absolute line numbers, so the same intent set keeps working as the file
drifts across revisions.

The built-in intent set extracts the git IPC handlers from an Electron
main.ts into './services/git-service.js'; pass --intents to supply a YAML
manifest for a different transformation.

Exit codes: 0 success or no-op, 1 planning failure (anchor not found,
ambiguous anchor, range overlap), 2 I/O failure.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// dryRunCmd computes the patch and prints a unified diff without writing
var dryRunCmd = &cobra.Command{
	Use:   "dry-run [file]",
	Short: "Compute the patch and print a unified diff plus diagnostics; no write",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDryRun,
}

// applyCmd computes the patch and atomically writes it back
var applyCmd = &cobra.Command{
	Use:   "apply [file]",
	Short: "Compute the patch and atomically write it back",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runApply,
}

// verifyCmd reports whether the file is applied, unapplied, or inconsistent
var verifyCmd = &cobra.Command{
	Use:   "verify [file]",
	Short: "Check the idempotence signatures and report the file's state",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runVerify,
}

func targetPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return defaultTarget
}

func loadIntentSet() ([]anchorpatch.Intent, error) {
	if intentsPath == "" {
		logger.Debug("Using built-in intent set")
		return anchorpatch.DefaultIntents(), nil
	}
	logger.Debug("Loading intent manifest", zap.String("path", intentsPath))
	return anchorpatch.LoadIntents(intentsPath)
}

func runDryRun(cmd *cobra.Command, args []string) error {
	target := targetPath(args)
	doc, err := anchorpatch.LoadDocument(target)
	if err != nil {
		return err
	}
	intents, err := loadIntentSet()
	if err != nil {
		return err
	}

	result, err := anchorpatch.Preview(doc, intents)
	if err != nil {
		return err
	}
	if !result.Changed {
		fmt.Println("All intents already applied; nothing to do.")
		printDiagnostics(result)
		return nil
	}

	fmt.Print(anchorpatch.UnifiedDiff(doc, result.Doc, contextLines, !noColor))
	printDiagnostics(result)
	return nil
}

func runApply(cmd *cobra.Command, args []string) error {
	target := targetPath(args)
	intents, err := loadIntentSet()
	if err != nil {
		return err
	}

	result, err := anchorpatch.ApplyFile(target, intents)
	if err != nil {
		return err
	}
	if !result.Changed {
		fmt.Println("All intents already applied; file left untouched.")
		return nil
	}

	d := result.Diagnostics
	logger.Info("Patch applied",
		zap.String("file", target),
		zap.Int("original_lines", d.OriginalLines),
		zap.Int("new_lines", d.NewLines))
	fmt.Printf("Modified %s: %d lines -> %d lines (%+d)\n",
		target, d.OriginalLines, d.NewLines, d.NewLines-d.OriginalLines)
	printDiagnostics(result)
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	target := targetPath(args)
	doc, err := anchorpatch.LoadDocument(target)
	if err != nil {
		return err
	}
	intents, err := loadIntentSet()
	if err != nil {
		return err
	}

	state, statuses := anchorpatch.VerifyDocument(doc, intents)
	fmt.Printf("%s: %s\n", target, state)
	for _, st := range statuses {
		fmt.Printf("  %-45s %s\n", st.Name, st.State)
	}
	return nil
}

func printDiagnostics(result *anchorpatch.PatchResult) {
	for _, w := range result.Diagnostics.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	for _, op := range result.Diagnostics.Ops {
		if op.Skipped {
			fmt.Printf("  %-45s skipped (%s)\n", op.Intent, op.Reason)
			continue
		}
		fmt.Printf("  %-45s %s at line %d: -%d +%d\n",
			op.Intent, op.Kind, op.StartLine, op.LinesRemoved, op.LinesAdded)
	}
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&intentsPath, "intents", "", "Path to a YAML intent manifest (default: built-in set)")
	rootCmd.PersistentFlags().IntVar(&contextLines, "context", 3, "Context lines in diff output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable ANSI colors in diff output")

	rootCmd.AddCommand(dryRunCmd, applyCmd, verifyCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if anchorpatch.IsPlanningError(err) {
			os.Exit(1)
		}
		os.Exit(2)
	}
}
