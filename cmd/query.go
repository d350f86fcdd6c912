package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/robustnas/robq/internal/dataset"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	flagQueryData      []string
	flagQueryKeys      []string
	flagQueryMeasures  []string
	flagQueryMissingOK bool
	flagQueryProgress  bool
	flagQueryCompact   bool
	flagQueryOut       string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query evaluation results into nested JSON",
	Long: `Query evaluation results for a selection of datasets, perturbation keys
and measures, and print (or write) the nested result:

  {<data>: {<key>: {<measure>: {<architecture id>: <value>}}}}

Selectors are repeatable; omitting one selects all known values. Corruption
keys are never looked up for ImageNet16-120 — those evaluations do not exist.

Examples:
  robq query --data cifar10 --key clean --measure accuracy
  robq query --key fgsm@Linf --key pgd@Linf --missing-ok --out adv.json`,
	Args: cobra.NoArgs,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringSliceVar(&flagQueryData, "data", nil, "Dataset(s) to query (default: all)")
	queryCmd.Flags().StringSliceVar(&flagQueryKeys, "key", nil, "Perturbation key(s) to query (default: all)")
	queryCmd.Flags().StringSliceVar(&flagQueryMeasures, "measure", nil, "Measure(s) to query: accuracy, confidence, cm (default: all)")
	queryCmd.Flags().BoolVar(&flagQueryMissingOK, "missing-ok", false, "Silently skip result files that do not exist")
	queryCmd.Flags().BoolVar(&flagQueryProgress, "progress", false, "Show a progress bar on stderr")
	queryCmd.Flags().BoolVar(&flagQueryCompact, "compact", false, "Emit compact JSON instead of indented")
	queryCmd.Flags().StringVar(&flagQueryOut, "out", "", "Write the result to a file instead of stdout")
	queryCmd.Flags().StringVar(&flagRoot, "root", "", "Dataset root (default: configured data_root)")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(_ *cobra.Command, _ []string) error {
	d, err := openDataset()
	if err != nil {
		return err
	}

	opts := dataset.QueryOptions{
		Data:      flagQueryData,
		Keys:      flagQueryKeys,
		Measures:  flagQueryMeasures,
		MissingOK: flagQueryMissingOK,
	}
	if flagQueryProgress {
		opts.Progress = newQueryBar(opts)
	}

	result, err := d.Query(opts)
	if err != nil {
		return err
	}

	var out []byte
	if flagQueryCompact {
		out, err = json.Marshal(result)
	} else {
		out, err = json.MarshalIndent(result, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("cannot encode result: %w", err)
	}
	out = append(out, '\n')

	if flagQueryOut == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(flagQueryOut, out, 0o644); err != nil {
		return fmt.Errorf("cannot write result %s: %w", flagQueryOut, err)
	}
	printOK("", fmt.Sprintf("Result written: %s", flagQueryOut))
	return nil
}

// newQueryBar builds a progress bar sized to the selection, resolving the
// same defaults Query applies.
func newQueryBar(opts dataset.QueryOptions) *progressbar.ProgressBar {
	data := opts.Data
	if data == nil {
		data = dataset.AllData()
	}
	keys := opts.Keys
	if keys == nil {
		keys = dataset.AllKeys()
	}
	measures := opts.Measures
	if measures == nil {
		measures = dataset.AllMeasures()
	}
	return progressbar.NewOptions(len(data)*len(keys)*len(measures),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("querying"),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionShowCount(),
	)
}
