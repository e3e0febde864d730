// pkg/ingest/metrics_test.go
package ingest_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/transito-gt/tablero/pkg/ingest"
)

func TestSummaryToJSONFormatsDurations(t *testing.T) {
	sum := &ingest.Summary{
		RunID:            "run-1",
		TotalTables:      1,
		SuccessfulTables: 1,
		TotalRowsRead:    3,
		TotalRecords:     6,
		Duration:         1500 * time.Millisecond,
		Tables: []ingest.TableReport{{
			Table:          "cuadro1",
			Output:         "cuadro1_clean",
			Success:        true,
			RowsRead:       3,
			RowsKept:       2,
			RecordsEmitted: 6,
			Duration:       250 * time.Millisecond,
		}},
	}

	out, err := sum.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	var decoded struct {
		RunID    string `json:"runId"`
		Duration string `json:"duration"`
		Tables   []struct {
			Table    string `json:"table"`
			Duration string `json:"duration"`
		} `json:"tables"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("digest is not valid JSON: %v", err)
	}

	if decoded.Duration != "1.50s" {
		t.Errorf("expected run duration '1.50s', got %q", decoded.Duration)
	}
	if len(decoded.Tables) != 1 {
		t.Fatalf("expected 1 table entry, got %d", len(decoded.Tables))
	}
	if decoded.Tables[0].Duration != "0.25s" {
		t.Errorf("expected table duration '0.25s', got %q", decoded.Tables[0].Duration)
	}
	if strings.Contains(string(out), "1500000000") {
		t.Error("raw nanoseconds leaked into the JSON digest")
	}
}

func TestSummaryReportListsTableOutcomes(t *testing.T) {
	sum := &ingest.Summary{
		RunID:        "run-2",
		TotalTables:  2,
		FailedTables: 1,
		Tables: []ingest.TableReport{
			{Table: "cuadro1", Success: true, RowsRead: 3, RecordsEmitted: 6},
			{Table: "cuadro3", Success: false, Error: "source table not found"},
		},
	}

	report := sum.Report()
	if !strings.Contains(report, "cuadro1: 3 rows read, 6 records") {
		t.Errorf("report missing successful table line:\n%s", report)
	}
	if !strings.Contains(report, "FAILED: source table not found") {
		t.Errorf("report missing failure line:\n%s", report)
	}
}
