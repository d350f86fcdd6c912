package cmd

import (
	"fmt"
	"strings"

	"github.com/robustnas/robq/internal/dataset"
	"github.com/spf13/cobra"
)

var (
	flagArchFind  string
	flagArchLimit int
)

var archCmd = &cobra.Command{
	Use:   "arch [id|string]",
	Short: "Translate and inspect architecture identifiers",
	Long: `Look up one architecture by id or by its NAS-Bench-201 string, showing
the id, the string encoding and the canonical (non-isomorphic) representative
whose evaluation results apply to it.

The argument is treated as an id when it is numeric, and as an architecture
string otherwise. With --find, all architectures whose string contains every
given token are listed instead.

Examples:
  robq arch 1462
  robq arch "|nor_conv_3x3~0|+|none~0|skip_connect~1|+|avg_pool_3x3~0|none~1|skip_connect~2|"
  robq arch --find "nor_conv_3x3 skip_connect" --limit 10`,
	Args: cobra.MaximumNArgs(1),
	RunE: runArch,
}

func init() {
	archCmd.Flags().StringVar(&flagArchFind, "find", "", "List architectures whose string contains all given tokens")
	archCmd.Flags().IntVar(&flagArchLimit, "limit", 20, "Maximum number of --find results (0 = no limit)")
	archCmd.Flags().StringVar(&flagRoot, "root", "", "Dataset root (default: configured data_root)")
	rootCmd.AddCommand(archCmd)
}

func runArch(cmd *cobra.Command, args []string) error {
	d, err := openDataset()
	if err != nil {
		return err
	}
	idx := d.Index()

	if flagArchFind != "" {
		return runArchFind(idx, flagArchFind)
	}
	if len(args) == 0 {
		return cmd.Help()
	}

	arg := args[0]
	var id string
	if looksLikeID(arg) {
		id = arg
	} else {
		id, err = idx.StringToID(arg)
		if err != nil {
			return err
		}
	}

	s, err := idx.IDToString(id)
	if err != nil {
		return err
	}
	canonical, err := idx.ResolveCanonical(id)
	if err != nil {
		return err
	}

	fmt.Printf("ID:        %s\n", id)
	fmt.Printf("String:    %s\n", s)
	fmt.Printf("Canonical: %s\n", canonical)
	if canonical == id {
		printOK("", "canonical representative — evaluated directly")
	} else {
		printInfo("", fmt.Sprintf("isomorphic cell — results are recorded under id %s", canonical))
	}
	return nil
}

func runArchFind(idx *dataset.Index, query string) error {
	matches := idx.FindStrings(query, flagArchLimit)
	if len(matches) == 0 {
		printMiss("", fmt.Sprintf("no architecture matches %q", query))
		return nil
	}
	for _, m := range matches {
		marker := " "
		if m.Canonical {
			marker = "*"
		}
		fmt.Printf("  %s %-7s %s\n", marker, m.ID, m.NB201String)
	}
	fmt.Printf("\n%d match(es); * marks canonical ids.\n", len(matches))
	return nil
}

// looksLikeID reports whether s is a plain non-negative integer, the form
// architecture ids take.
func looksLikeID(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789", r) {
			return false
		}
	}
	return true
}
