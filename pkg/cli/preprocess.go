// pkg/cli/preprocess.go
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/transito-gt/tablero/pkg/config"
	"github.com/transito-gt/tablero/pkg/ingest"
	"github.com/transito-gt/tablero/pkg/normalizer"
	"github.com/transito-gt/tablero/pkg/sink"
	"github.com/transito-gt/tablero/pkg/source"
)

var (
	preprocessSource string
	preprocessSinks  []string
	preprocessJSON   bool
)

var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Normalize the raw cuadro tables into canonical long-format records",
	Long: `Reads each raw wide-format table from the configured source, unrolls it
into canonical records under its rule set, and writes the result to the
configured sinks. Each table is processed independently; one failure never
aborts the rest of the run.`,
	RunE: runPreprocess,
}

func init() {
	preprocessCmd.Flags().StringVar(&preprocessSource, "source", "csv", "table source: csv or snowflake")
	preprocessCmd.Flags().StringSliceVar(&preprocessSinks, "sink", []string{"csv"}, "record sinks: csv, postgres")
	preprocessCmd.Flags().BoolVar(&preprocessJSON, "json", false, "print the run summary as JSON")
	rootCmd.AddCommand(preprocessCmd)
}

func runPreprocess(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := buildSource(ctx)
	if err != nil {
		return err
	}
	defer src.Close()

	sinks, err := buildSinks(ctx)
	if err != nil {
		return err
	}
	defer func() {
		for _, s := range sinks {
			if cerr := s.Close(); cerr != nil {
				logger.Warn("Failed to close sink", zap.Error(cerr))
			}
		}
	}()

	catalog, err := source.LoadCatalog(cfg.RulesPath)
	if err != nil {
		return err
	}

	norm, err := normalizer.New(logger)
	if err != nil {
		return err
	}
	cache := normalizer.NewCache(norm, logger)

	pipeline, err := ingest.NewPipeline(src, cache, sinks, catalog, cfg.WorkerPoolSize, logger)
	if err != nil {
		return err
	}

	summary, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}

	if preprocessJSON {
		out, err := summary.ToJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
	} else {
		fmt.Fprint(cmd.OutOrStdout(), summary.Report())
	}

	if summary.FailedTables > 0 {
		return fmt.Errorf("%d of %d tables failed", summary.FailedTables, summary.TotalTables)
	}
	return nil
}

func buildSource(ctx context.Context) (source.TableSource, error) {
	switch strings.ToLower(preprocessSource) {
	case "csv":
		return source.NewCSVSource(cfg.DataDir, logger)
	case "snowflake":
		sfCfg, err := config.LoadSnowflakeConfig()
		if err != nil {
			return nil, err
		}
		return source.NewSnowflakeSource(ctx, sfCfg, logger)
	default:
		return nil, fmt.Errorf("unknown source %q (expected csv or snowflake)", preprocessSource)
	}
}

func buildSinks(ctx context.Context) ([]sink.RecordSink, error) {
	sinks := make([]sink.RecordSink, 0, len(preprocessSinks))
	for _, name := range preprocessSinks {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "csv":
			s, err := sink.NewCSVSink(cfg.CleanDir, logger)
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, s)
		case "postgres":
			pgCfg, err := config.LoadPostgresConfig()
			if err != nil {
				return nil, err
			}
			s, err := sink.NewPostgresSink(ctx, pgCfg, logger)
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, s)
		default:
			return nil, fmt.Errorf("unknown sink %q (expected csv or postgres)", name)
		}
	}
	return sinks, nil
}
