package cmd

import (
	"fmt"
	"os"

	"github.com/robustnas/robq/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create ~/.robq with a default configuration",
	Long: `Initialize robq's configuration directory.

Creates ~/.robq/, writes a default robq.yaml pointing at ~/.robq/data, and
drops a .env template for mirror overrides. Run 'robq fetch' afterwards to
download the dataset.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	robqDir, err := config.RobqDir()
	if err != nil {
		return err
	}
	cfgPath, err := config.ConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(robqDir, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", robqDir, err)
	}
	printOK("", fmt.Sprintf("robq directory ready: %s", robqDir))

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		cfg, err := config.DefaultConfig()
		if err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return err
		}
		printOK("", fmt.Sprintf("Config written: %s", cfgPath))
	} else {
		printSkip("", fmt.Sprintf("Config already exists: %s", cfgPath))
	}

	if err := config.EnsureDotEnvTemplate(); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.DataRoot, 0o755); err != nil {
		return fmt.Errorf("cannot create data root %s: %w", cfg.DataRoot, err)
	}
	printOK("", fmt.Sprintf("Data root ready: %s", cfg.DataRoot))

	fmt.Println("\n✓  robq init complete. Run 'robq fetch' to download the dataset.")
	return nil
}
