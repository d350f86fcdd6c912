package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/robustnas/robq/internal/config"
	"github.com/robustnas/robq/internal/dataset"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run pre-flight environment checks",
	Long: `Check that robq's configuration and data root are usable.
Run this command when something seems wrong, or before filing a bug report.`,
	RunE: runDoctor,
}

var doctorFixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Automatically fix detected issues",
	Long: `Fix detected issues in the robq environment.

Currently fixes:
  - Stale downloads: deletes leftover .part files from interrupted fetches

Run 'robq doctor' first to see what will be fixed.`,
	RunE: runDoctorFix,
}

func init() {
	doctorCmd.AddCommand(doctorFixCmd)
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(_ *cobra.Command, _ []string) error {
	allOK := true
	fail := func(format string, args ...any) {
		printErr("", fmt.Sprintf(format, args...))
		allOK = false
	}

	printSection("robq doctor")

	// ── Check 1: config ───────────────────────────────────────────────────
	fmt.Println("\n[ config ]")
	cfgPath, err := config.ConfigPath()
	if err != nil {
		fail("cannot locate config: %v", err)
	} else if _, statErr := os.Stat(cfgPath); os.IsNotExist(statErr) {
		fail("config missing: %s (run 'robq init')", cfgPath)
	} else {
		printOK("", fmt.Sprintf("config present: %s", cfgPath))
	}

	cfg, err := config.Load()
	if err != nil {
		fail("config does not load: %v", err)
		fmt.Println()
		return fmt.Errorf("doctor found problems")
	}
	printOK("", fmt.Sprintf("config parses; data root: %s", cfg.DataRoot))

	// ── Check 2: data root ────────────────────────────────────────────────
	fmt.Println("\n[ data root ]")
	info, err := os.Stat(cfg.DataRoot)
	switch {
	case os.IsNotExist(err):
		fail("data root does not exist: %s (run 'robq init' then 'robq fetch')", cfg.DataRoot)
	case err != nil:
		fail("cannot stat data root: %v", err)
	case !info.IsDir():
		fail("data root is not a directory: %s", cfg.DataRoot)
	default:
		printOK("", "data root exists")
	}

	// ── Check 3: manifest ─────────────────────────────────────────────────
	fmt.Println("\n[ manifest ]")
	if idx, err := dataset.LoadIndex(cfg.DataRoot); err != nil {
		fail("meta.json does not load: %v", err)
	} else {
		printOK("", fmt.Sprintf("meta.json loads: %d architectures, %d canonical", idx.Len(), len(idx.CanonicalIDs())))
	}

	// ── Check 4: stale downloads ──────────────────────────────────────────
	fmt.Println("\n[ stale downloads ]")
	stale := findStaleParts(cfg.DataRoot)
	if len(stale) == 0 {
		printOK("", "no stale .part files")
	} else {
		for _, f := range stale {
			printWarn("", fmt.Sprintf("stale download: %s", f))
		}
		printInfo("", "run 'robq doctor fix' to remove them")
	}

	fmt.Println()
	if !allOK {
		return fmt.Errorf("doctor found problems")
	}
	fmt.Println("✓  environment looks healthy.")
	return nil
}

func runDoctorFix(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cannot load config: %w\nRun 'robq init' first.", err)
	}

	printSection("robq doctor fix")

	fmt.Println("\n[ Stale downloads ]")
	stale := findStaleParts(cfg.DataRoot)
	if len(stale) == 0 {
		printOK("", "no .part files found — nothing to fix")
		return nil
	}

	var failed int
	for _, rel := range stale {
		full := filepath.Join(cfg.DataRoot, rel)
		if err := cleanupPartial(full); err != nil {
			printErr("", fmt.Sprintf("cannot delete %s: %v", rel, err))
			failed++
		} else {
			printOK("", fmt.Sprintf("deleted %s", rel))
		}
	}

	fmt.Println()
	if failed > 0 {
		return fmt.Errorf("%d file(s) could not be deleted", failed)
	}
	fmt.Printf("  ✓  %d stale download(s) removed.\n", len(stale))
	return nil
}

// findStaleParts returns .part files under root, relative to root.
func findStaleParts(root string) []string {
	var out []string
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if filepath.Ext(path) == ".part" {
			if rel, relErr := filepath.Rel(root, path); relErr == nil {
				out = append(out, rel)
			}
		}
		return nil
	})
	return out
}
