// pkg/aggregate/pivot.go
package aggregate

import "sort"

// Pivot is an ordered pivot of summed measures. Keys is the row axis; Cols
// is the column axis and is nil for single-dimension aggregations.
type Pivot struct {
	Keys []string
	Cols []string

	values [][]int64
	rowIdx map[string]int
	colIdx map[string]int
}

func newPivot(keys, cols []string) *Pivot {
	p := &Pivot{
		Keys:   keys,
		Cols:   cols,
		rowIdx: make(map[string]int, len(keys)),
		colIdx: make(map[string]int, len(cols)),
	}
	width := len(cols)
	if width == 0 {
		width = 1
	}
	p.values = make([][]int64, len(keys))
	for i, k := range keys {
		p.rowIdx[k] = i
		p.values[i] = make([]int64, width)
	}
	for j, c := range cols {
		p.colIdx[c] = j
	}
	return p
}

// Value returns the summed measure for a row of a single-dimension pivot.
// Unknown keys yield zero, matching the zero-fill contract.
func (p *Pivot) Value(key string) int64 {
	i, ok := p.rowIdx[key]
	if !ok {
		return 0
	}
	return p.values[i][0]
}

// Cell returns the summed measure at (key, col) of a two-dimension pivot.
func (p *Pivot) Cell(key, col string) int64 {
	i, ok := p.rowIdx[key]
	if !ok {
		return 0
	}
	j, ok := p.colIdx[col]
	if !ok {
		return 0
	}
	return p.values[i][j]
}

// Row returns the row slice for a key in column order. The slice is shared
// with the pivot; callers must not mutate it.
func (p *Pivot) Row(key string) []int64 {
	i, ok := p.rowIdx[key]
	if !ok {
		return nil
	}
	return p.values[i]
}

// Total sums every cell.
func (p *Pivot) Total() int64 {
	var total int64
	for _, row := range p.values {
		for _, v := range row {
			total += v
		}
	}
	return total
}

// TopN returns a single-dimension pivot reordered by descending value and
// truncated to n entries. Ties keep their existing relative order, so
// repeated calls over identical input produce identical output.
func (p *Pivot) TopN(n int) *Pivot {
	keys := make([]string, len(p.Keys))
	copy(keys, p.Keys)
	sort.SliceStable(keys, func(i, j int) bool {
		return p.Value(keys[i]) > p.Value(keys[j])
	})
	if n > 0 && len(keys) > n {
		keys = keys[:n]
	}

	out := newPivot(keys, nil)
	for _, k := range keys {
		out.values[out.rowIdx[k]][0] = p.Value(k)
	}
	return out
}
