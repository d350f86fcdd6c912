package cmd

import (
	"fmt"
	"os"

	"github.com/robustnas/robq/internal/config"
	"github.com/robustnas/robq/internal/dataset"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "robq",
	Short:        "robq — query the NAS robustness benchmark dataset",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `robq indexes and queries the robustness benchmark results of
NAS-Bench-201 architectures (clean, adversarial and corruption evaluations)
stored as JSON files under a local data root.`,
}

// flagRoot overrides the configured data root for commands that read the
// dataset.
var flagRoot string

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveDataRoot returns the effective dataset root: --root when given,
// otherwise the configured data_root.
func resolveDataRoot() (string, error) {
	if flagRoot != "" {
		return config.ExpandPath(flagRoot)
	}
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("cannot load config: %w\nRun 'robq init' first, or pass --root.", err)
	}
	return cfg.DataRoot, nil
}

// openDataset loads the manifest at the effective data root.
func openDataset() (*dataset.Dataset, error) {
	root, err := resolveDataRoot()
	if err != nil {
		return nil, err
	}
	d, err := dataset.Open(root)
	if err != nil {
		return nil, fmt.Errorf("cannot open dataset at %s: %w\nRun 'robq fetch' to download it.", root, err)
	}
	return d, nil
}
