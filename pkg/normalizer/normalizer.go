// pkg/normalizer/normalizer.go
package normalizer

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/transito-gt/tablero/pkg/model"
)

// Normalizer converts wide-format raw tables into canonical long-format
// records, driven entirely by declarative rule sets. One instance handles
// every table shape; there are no per-table code paths.
type Normalizer struct {
	logger *zap.Logger
}

// New creates a Normalizer instance.
func New(logger *zap.Logger) (*Normalizer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &Normalizer{logger: logger}, nil
}

// Result is the output of normalizing one raw table: the emitted records
// plus an audit trail of every cell dropped during coercion. Results are
// treated as immutable once produced and may be shared across sessions.
type Result struct {
	Table    string
	Version  string
	RowsRead int
	RowsKept int
	Records  []model.CanonicalRecord
	Discards []Discard
}

// DiscardCount returns the number of cells dropped during coercion.
func (r *Result) DiscardCount() int {
	return len(r.Discards)
}

// Sum totals the measure across all emitted records. Together with the
// discard count it supports the conservation check: emitted sum equals the
// source cells' sum minus the discarded cells.
func (r *Result) Sum() int64 {
	var total int64
	for _, rec := range r.Records {
		total += rec.Measure
	}
	return total
}

// Normalize applies a rule set to one raw table.
//
// Returns a SchemaError when any identifier column, value column, or
// drop-predicate column is absent from the table. Drop columns are allowed
// to be absent. Per-cell coercion failures drop only that record and are
// reported through Result.Discards.
//
// Output ordering follows (row, value column) iteration order but callers
// must not rely on it; required orderings are imposed by aggregation.
func (n *Normalizer) Normalize(table *model.RawTable, rules *model.RuleSet) (*Result, error) {
	if table == nil {
		return nil, errors.New("raw table cannot be nil")
	}
	if rules == nil {
		return nil, errors.New("rule set cannot be nil")
	}
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rule set: %w", err)
	}

	required := make([]string, 0, len(rules.IdentifierColumns)+len(rules.ValueColumns)+len(rules.DropRows))
	required = append(required, rules.IdentifierColumns...)
	required = append(required, rules.ValueColumns...)
	for _, p := range rules.DropRows {
		required = append(required, p.Column)
	}
	if missing := table.MissingColumns(required...); len(missing) > 0 {
		return nil, &SchemaError{Table: table.Name, Missing: missing}
	}

	derived, err := compileDerived(rules.Derived)
	if err != nil {
		return nil, fmt.Errorf("invalid derived field: %w", err)
	}

	result := &Result{
		Table:    table.Name,
		Version:  rules.Version,
		RowsRead: len(table.Rows),
		Records:  make([]model.CanonicalRecord, 0, len(table.Rows)*len(rules.ValueColumns)),
	}

	for rowIdx, row := range table.Rows {
		if dropRow(row, rules.DropRows) {
			continue
		}
		result.RowsKept++

		for _, valueCol := range rules.ValueColumns {
			measure, cerr := coerceMeasure(row[valueCol])
			if cerr != nil {
				result.Discards = append(result.Discards, Discard{
					Row:    rowIdx,
					Column: valueCol,
					Err:    cerr,
				})
				continue
			}

			rec := model.CanonicalRecord{
				Identifiers: make(map[string]string, len(rules.IdentifierColumns)),
				Category:    valueCol,
				Measure:     measure,
			}
			for _, id := range rules.IdentifierColumns {
				rec.Identifiers[id] = row[id]
			}
			for _, d := range derived {
				d.apply(&rec, rules.CategoryName)
			}
			result.Records = append(result.Records, rec)
		}
	}

	n.logger.Info("Normalized table",
		zap.String("table", table.Name),
		zap.Int("rows_read", len(table.Rows)),
		zap.Int("records_emitted", len(result.Records)),
		zap.Int("cells_discarded", result.DiscardCount()))

	return result, nil
}

// dropRow reports whether any predicate excludes the row. Predicates are
// conjunctive exclusions, so matching one is enough.
func dropRow(row model.Row, predicates []model.DropPredicate) bool {
	for _, p := range predicates {
		if row[p.Column] == p.Equals {
			return true
		}
	}
	return false
}
