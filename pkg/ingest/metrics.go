// pkg/ingest/metrics.go
package ingest

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TableReport records the outcome of processing a single source table.
type TableReport struct {
	Table          string        `json:"table"`
	Output         string        `json:"output"`
	WorkerID       int           `json:"workerId"`
	Success        bool          `json:"success"`
	Error          string        `json:"error,omitempty"`
	RowsRead       int           `json:"rowsRead"`
	RowsKept       int           `json:"rowsKept"`
	RecordsEmitted int           `json:"recordsEmitted"`
	CellsDiscarded int           `json:"cellsDiscarded"`
	Duration       time.Duration `json:"duration"`
}

// Metrics tracks aggregate counters across a pipeline run.
type Metrics struct {
	mu     sync.Mutex
	logger *zap.Logger

	StartTime        time.Time
	EndTime          time.Time
	Reports          []TableReport
	SuccessfulTables int
	FailedTables     int
	TotalRowsRead    int
	TotalRecords     int
	TotalDiscards    int
}

// NewMetrics creates a metrics tracker for a pipeline run.
func NewMetrics(logger *zap.Logger) *Metrics {
	return &Metrics{
		StartTime: time.Now(),
		Reports:   make([]TableReport, 0),
		logger:    logger,
	}
}

// RecordTable records the result of one table.
func (m *Metrics) RecordTable(report TableReport) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Reports = append(m.Reports, report)
	m.TotalRowsRead += report.RowsRead
	m.TotalRecords += report.RecordsEmitted
	m.TotalDiscards += report.CellsDiscarded

	if report.Success {
		m.SuccessfulTables++
	} else {
		m.FailedTables++
	}

	if m.logger != nil {
		m.logger.Info("Table processed",
			zap.String("table", report.Table),
			zap.Bool("success", report.Success),
			zap.Int("rowsRead", report.RowsRead),
			zap.Int("recordsEmitted", report.RecordsEmitted),
			zap.Int("cellsDiscarded", report.CellsDiscarded),
			zap.Duration("duration", report.Duration),
			zap.Int("worker", report.WorkerID))
	}
}

// Complete marks the run as finished and logs a summary line.
func (m *Metrics) Complete() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.EndTime = time.Now()

	if m.logger != nil {
		m.logger.Info("Pipeline run completed",
			zap.Duration("totalDuration", m.duration()),
			zap.Int("successfulTables", m.SuccessfulTables),
			zap.Int("failedTables", m.FailedTables),
			zap.Int("totalRecords", m.TotalRecords),
			zap.Int("totalDiscards", m.TotalDiscards))
	}
}

// Duration returns the total duration of the run.
func (m *Metrics) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration()
}

func (m *Metrics) duration() time.Duration {
	if m.EndTime.IsZero() {
		return time.Since(m.StartTime)
	}
	return m.EndTime.Sub(m.StartTime)
}

// Summary is a serializable digest of a completed run.
type Summary struct {
	RunID            string        `json:"runId"`
	TotalTables      int           `json:"totalTables"`
	SuccessfulTables int           `json:"successfulTables"`
	FailedTables     int           `json:"failedTables"`
	TotalRowsRead    int           `json:"totalRowsRead"`
	TotalRecords     int           `json:"totalRecords"`
	TotalDiscards    int           `json:"totalDiscards"`
	Duration         time.Duration `json:"duration"`
	StartTime        time.Time     `json:"startTime"`
	EndTime          time.Time     `json:"endTime"`
	Tables           []TableReport `json:"tables"`
}

// GenerateSummary builds a Summary from the accumulated counters.
func (m *Metrics) GenerateSummary(runID string) *Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	endTime := m.EndTime
	if endTime.IsZero() {
		endTime = time.Now()
	}

	reports := make([]TableReport, len(m.Reports))
	copy(reports, m.Reports)

	return &Summary{
		RunID:            runID,
		TotalTables:      m.SuccessfulTables + m.FailedTables,
		SuccessfulTables: m.SuccessfulTables,
		FailedTables:     m.FailedTables,
		TotalRowsRead:    m.TotalRowsRead,
		TotalRecords:     m.TotalRecords,
		TotalDiscards:    m.TotalDiscards,
		Duration:         m.duration(),
		StartTime:        m.StartTime,
		EndTime:          endTime,
		Tables:           reports,
	}
}

// ToJSON serializes the summary for reporting. Durations render as
// human-readable strings rather than raw nanoseconds.
func (s *Summary) ToJSON() ([]byte, error) {
	type tableDigest struct {
		Table          string `json:"table"`
		Output         string `json:"output"`
		WorkerID       int    `json:"workerId"`
		Success        bool   `json:"success"`
		Error          string `json:"error,omitempty"`
		RowsRead       int    `json:"rowsRead"`
		RowsKept       int    `json:"rowsKept"`
		RecordsEmitted int    `json:"recordsEmitted"`
		CellsDiscarded int    `json:"cellsDiscarded"`
		Duration       string `json:"duration"`
	}

	tables := make([]tableDigest, len(s.Tables))
	for i, r := range s.Tables {
		tables[i] = tableDigest{
			Table:          r.Table,
			Output:         r.Output,
			WorkerID:       r.WorkerID,
			Success:        r.Success,
			Error:          r.Error,
			RowsRead:       r.RowsRead,
			RowsKept:       r.RowsKept,
			RecordsEmitted: r.RecordsEmitted,
			CellsDiscarded: r.CellsDiscarded,
			Duration:       formatDuration(r.Duration),
		}
	}

	return json.MarshalIndent(struct {
		RunID            string        `json:"runId"`
		TotalTables      int           `json:"totalTables"`
		SuccessfulTables int           `json:"successfulTables"`
		FailedTables     int           `json:"failedTables"`
		TotalRowsRead    int           `json:"totalRowsRead"`
		TotalRecords     int           `json:"totalRecords"`
		TotalDiscards    int           `json:"totalDiscards"`
		Duration         string        `json:"duration"`
		StartTime        time.Time     `json:"startTime"`
		EndTime          time.Time     `json:"endTime"`
		Tables           []tableDigest `json:"tables"`
	}{
		RunID:            s.RunID,
		TotalTables:      s.TotalTables,
		SuccessfulTables: s.SuccessfulTables,
		FailedTables:     s.FailedTables,
		TotalRowsRead:    s.TotalRowsRead,
		TotalRecords:     s.TotalRecords,
		TotalDiscards:    s.TotalDiscards,
		Duration:         formatDuration(s.Duration),
		StartTime:        s.StartTime,
		EndTime:          s.EndTime,
		Tables:           tables,
	}, "", "  ")
}

// Report renders a human-readable run report.
func (s *Summary) Report() string {
	out := fmt.Sprintf(`
Preprocessing Run Report
========================
Run ID:              %s
Duration:            %s
Tables Processed:    %d
Successful:          %d
Failed:              %d
Rows Read:           %d
Records Emitted:     %d
Cells Discarded:     %d
`,
		s.RunID,
		formatDuration(s.Duration),
		s.TotalTables,
		s.SuccessfulTables,
		s.FailedTables,
		s.TotalRowsRead,
		s.TotalRecords,
		s.TotalDiscards,
	)

	out += "\nTable Details\n-------------\n"
	for _, r := range s.Tables {
		status := "ok"
		if !r.Success {
			status = "FAILED: " + r.Error
		}
		out += fmt.Sprintf("- %s: %d rows read, %d records, %d discards, %s (%s)\n",
			r.Table, r.RowsRead, r.RecordsEmitted, r.CellsDiscarded,
			formatDuration(r.Duration), status)
	}

	return out
}

// formatDuration formats a duration to a human-readable string.
func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60

	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
