package cmd

import (
	"fmt"

	"github.com/robustnas/robq/internal/dataset"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show manifest statistics for the dataset",
	Long: `Summarize the architecture manifest: how many architectures the search
space contains, how many are canonical (non-isomorphic) representatives, and
the size of each evaluation dimension.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&flagRoot, "root", "", "Dataset root (default: configured data_root)")
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, _ []string) error {
	d, err := openDataset()
	if err != nil {
		return err
	}
	idx := d.Index()

	p := message.NewPrinter(language.English)

	total := idx.Len()
	canonical := len(idx.CanonicalIDs())

	printSection("Manifest")
	p.Printf("  Architectures:  %d\n", total)
	p.Printf("  Canonical:      %d\n", canonical)
	p.Printf("  Isomorphic:     %d\n", total-canonical)

	printSection("Evaluation Dimensions")
	p.Printf("  Datasets:         %d\n", len(dataset.AllData()))
	p.Printf("  Keys:             %d  (%d clean, %d adversarial, %d corruption)\n",
		len(dataset.AllKeys()), len(dataset.KeysClean()), len(dataset.KeysAdv()), len(dataset.KeysCC()))
	p.Printf("  Measures:         %d\n", len(dataset.AllMeasures()))

	// ImageNet16-120 was never evaluated on corruption keys.
	combos := 0
	for _, data := range dataset.AllData() {
		for _, k := range dataset.AllKeys() {
			if data == dataset.DataImageNet16 && dataset.IsCorruptionKey(k) {
				continue
			}
			combos += len(dataset.AllMeasures())
		}
	}
	p.Printf("  Result files:     %d\n", combos)

	fmt.Println()
	return nil
}
