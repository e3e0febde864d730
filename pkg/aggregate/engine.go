// pkg/aggregate/engine.go
package aggregate

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/transito-gt/tablero/pkg/model"
)

// FieldCategory resolves to a record's unrolled category regardless of what
// the producing rule set named that column.
const FieldCategory = "category"

// Spec describes one aggregation request. Grouping always sums the measure
// over records sharing identical group-by values; totals are the only
// aggregator this domain requests.
type Spec struct {
	// GroupBy lists one or two canonical field names. A field resolves to
	// the category (FieldCategory), a derived ordinal, or an identifier
	// column, in that precedence.
	GroupBy []string

	// Order, when set, reindexes the row axis into exactly this sequence.
	// Group combinations missing from the input appear zero-filled rather
	// than being omitted.
	Order []string

	// ColumnOrder does the same for the column axis of a two-field group-by.
	ColumnOrder []string

	// SortNumeric sorts first-seen row keys by integer value when no
	// explicit Order is given, for derived keys like hour-of-day.
	SortNumeric bool
}

// Aggregate groups records along the spec's dimensions and sums their
// measures into an ordered pivot. With no explicit order, axes follow
// first-seen order, which is deterministic across repeated calls for
// identical input.
func Aggregate(records []model.CanonicalRecord, spec Spec) (*Pivot, error) {
	switch len(spec.GroupBy) {
	case 1, 2:
	case 0:
		return nil, errors.New("aggregate: at least one group-by field is required")
	default:
		return nil, fmt.Errorf("aggregate: at most two group-by fields are supported, got %d", len(spec.GroupBy))
	}

	twoDim := len(spec.GroupBy) == 2

	sums := make(map[string]map[string]int64)
	var rowOrder, colOrder []string
	seenCol := make(map[string]bool)

	for _, rec := range records {
		rowKey, ok := fieldValue(rec, spec.GroupBy[0])
		if !ok {
			continue
		}
		colKey := ""
		if twoDim {
			colKey, ok = fieldValue(rec, spec.GroupBy[1])
			if !ok {
				continue
			}
		}

		row, exists := sums[rowKey]
		if !exists {
			row = make(map[string]int64)
			sums[rowKey] = row
			rowOrder = append(rowOrder, rowKey)
		}
		if twoDim && !seenCol[colKey] {
			seenCol[colKey] = true
			colOrder = append(colOrder, colKey)
		}
		row[colKey] += rec.Measure
	}

	keys := spec.Order
	if keys == nil {
		keys = rowOrder
		if spec.SortNumeric {
			sortNumeric(keys)
		}
	}

	var cols []string
	if twoDim {
		cols = spec.ColumnOrder
		if cols == nil {
			cols = colOrder
		}
	}

	pivot := newPivot(keys, cols)
	for i, key := range keys {
		row, ok := sums[key]
		if !ok {
			continue
		}
		if !twoDim {
			pivot.values[i][0] = row[""]
			continue
		}
		for j, col := range cols {
			pivot.values[i][j] = row[col]
		}
	}
	return pivot, nil
}

// fieldValue resolves a group-by field against one record. Records missing
// the field (an unset derived ordinal, an identifier another table family
// carries) are skipped by the caller.
func fieldValue(rec model.CanonicalRecord, field string) (string, bool) {
	if field == FieldCategory {
		return rec.Category, true
	}
	if v, ok := rec.Derived[field]; ok {
		return strconv.Itoa(v), true
	}
	if v, ok := rec.Identifiers[field]; ok {
		return v, true
	}
	return "", false
}

// sortNumeric orders keys by integer value; non-numeric keys sort after
// numeric ones, alphabetically.
func sortNumeric(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		a, aerr := strconv.Atoi(keys[i])
		b, berr := strconv.Atoi(keys[j])
		switch {
		case aerr == nil && berr == nil:
			return a < b
		case aerr == nil:
			return true
		case berr == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
}
