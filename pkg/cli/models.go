// pkg/cli/models.go
package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/transito-gt/tablero/pkg/modelstats"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Validate the trained-model metrics artifact and print a comparison",
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, args []string) error {
	summary, err := modelstats.Load(cfg.ModelsPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Trained: %s\n\n", summary.TrainedAt)

	keys := make([]string, 0, len(summary.Models))
	for key := range summary.Models {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "model\tbest algorithm\tkind\tmain metric\tsamples")
	for _, key := range keys {
		info := summary.Models[key]
		algo, bundle, ok := info.Best()
		if !ok {
			fmt.Fprintf(w, "%s\t-\t-\t-\t%d\n", key, info.NSamples)
			continue
		}

		var metric string
		switch bundle.Kind() {
		case modelstats.KindClassification:
			metric = fmt.Sprintf("F1 %.4f", *bundle.F1Score)
		case modelstats.KindRegression:
			metric = fmt.Sprintf("RMSE %.2f", *bundle.RMSE)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", key, algo, bundle.Kind(), metric, info.NSamples)
	}
	return w.Flush()
}
