package cmd

import (
	"fmt"
	"os"

	"github.com/robustnas/robq/internal/dataset"
	"github.com/spf13/cobra"
)

var flagStatusVerbose bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which result files are present in the data root",
	Long: `Walk every (dataset, key, measure) combination and report whether the
corresponding result file exists. Corruption keys under ImageNet16-120 are
listed as not applicable: those evaluations were never run.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&flagStatusVerbose, "verbose", false, "List every missing file instead of per-dataset counts")
	statusCmd.Flags().StringVar(&flagRoot, "root", "", "Dataset root (default: configured data_root)")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	d, err := openDataset()
	if err != nil {
		return err
	}

	printSection("Result File Coverage")

	keys := dataset.AllKeys()
	measures := dataset.AllMeasures()

	allPresent := true
	for _, data := range dataset.AllData() {
		var present, missing, notApplicable int
		var missingFiles []string

		for _, k := range keys {
			for _, m := range measures {
				if data == dataset.DataImageNet16 && dataset.IsCorruptionKey(k) {
					notApplicable++
					continue
				}
				file := d.ResultPath(data, k, m)
				if _, err := os.Stat(file); err == nil {
					present++
				} else {
					missing++
					missingFiles = append(missingFiles, fmt.Sprintf("%s_%s.json", k, m))
				}
			}
		}

		printBullet(data)
		switch {
		case missing == 0:
			printOK("", fmt.Sprintf("%d result file(s) present", present))
		default:
			allPresent = false
			printMiss("", fmt.Sprintf("%d present, %d missing", present, missing))
			if flagStatusVerbose {
				for _, f := range missingFiles {
					printMiss("", f)
				}
			}
		}
		if notApplicable > 0 {
			printSkip("", fmt.Sprintf("%d combination(s) not applicable (corruption keys)", notApplicable))
		}
	}

	fmt.Println()
	if allPresent {
		fmt.Println("✓  dataset complete.")
	} else {
		fmt.Println("-  dataset incomplete; run 'robq fetch' or query with --missing-ok.")
	}
	return nil
}
