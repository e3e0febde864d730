// pkg/cli/stats.go
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/transito-gt/tablero/pkg/aggregate"
	"github.com/transito-gt/tablero/pkg/model"
	"github.com/transito-gt/tablero/pkg/normalizer"
	"github.com/transito-gt/tablero/pkg/source"
)

var (
	statsTable   string
	statsGroupBy []string
	statsTopN    int
	statsNumeric bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregate one table along a dimension and print the totals",
	Long: `Normalizes a single raw table and sums its measure along one or two
group-by fields. A field resolves to the unrolled category ("category"), a
derived ordinal, or an identifier column.`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsTable, "table", "", "raw table name, e.g. cuadro1 (required)")
	statsCmd.Flags().StringSliceVar(&statsGroupBy, "group-by", nil, "one or two group-by fields (required)")
	statsCmd.Flags().IntVar(&statsTopN, "top", 0, "keep only the N largest groups")
	statsCmd.Flags().BoolVar(&statsNumeric, "numeric", false, "sort group keys numerically")
	_ = statsCmd.MarkFlagRequired("table")
	_ = statsCmd.MarkFlagRequired("group-by")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := source.LoadCatalog(cfg.RulesPath)
	if err != nil {
		return err
	}

	var rules *model.RuleSet
	for i := range catalog {
		if catalog[i].Table == statsTable {
			rules = &catalog[i]
			break
		}
	}
	if rules == nil {
		return fmt.Errorf("no rule set for table %q", statsTable)
	}

	src, err := source.NewCSVSource(cfg.DataDir, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	table, err := src.FetchTable(ctx, rules.Table)
	if err != nil {
		return err
	}

	norm, err := normalizer.New(logger)
	if err != nil {
		return err
	}
	result, err := norm.Normalize(table, rules)
	if err != nil {
		return err
	}

	pivot, err := aggregate.Aggregate(result.Records, aggregate.Spec{
		GroupBy:     statsGroupBy,
		SortNumeric: statsNumeric,
	})
	if err != nil {
		return err
	}
	if statsTopN > 0 {
		if len(pivot.Cols) > 0 {
			return fmt.Errorf("--top applies only to single-field group-bys")
		}
		pivot = pivot.TopN(statsTopN)
	}

	printPivot(cmd, pivot, strings.Join(statsGroupBy, " × "), rules.MeasureName)

	if n := len(result.Discards); n > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d cells discarded during normalization\n", n)
	}
	return nil
}

func printPivot(cmd *cobra.Command, pivot *aggregate.Pivot, dimension, measure string) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	defer w.Flush()

	if len(pivot.Cols) == 0 {
		fmt.Fprintf(w, "%s\t%s\n", dimension, measure)
		for _, key := range pivot.Keys {
			fmt.Fprintf(w, "%s\t%d\n", key, pivot.Value(key))
		}
		fmt.Fprintf(w, "total\t%d\n", pivot.Total())
		return
	}

	fmt.Fprintf(w, "%s\t%s\n", dimension, strings.Join(pivot.Cols, "\t"))
	for _, key := range pivot.Keys {
		cells := make([]string, len(pivot.Cols))
		for j, col := range pivot.Cols {
			cells[j] = fmt.Sprintf("%d", pivot.Cell(key, col))
		}
		fmt.Fprintf(w, "%s\t%s\n", key, strings.Join(cells, "\t"))
	}
}
