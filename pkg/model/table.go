// pkg/model/table.go
package model

// Row is a single raw table row keyed by column name. Cell values stay as the
// source text until the normalizer coerces them.
type Row map[string]string

// RawTable is a wide-format source table exactly as acquired from a source
// collaborator (CSV directory, warehouse, ...). Column order is preserved
// from the source header.
type RawTable struct {
	Name    string
	Columns []string
	Rows    []Row
}

// HasColumn reports whether the table header contains the named column.
func (t *RawTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// MissingColumns returns the subset of names absent from the table header,
// in the order given.
func (t *RawTable) MissingColumns(names ...string) []string {
	var missing []string
	for _, n := range names {
		if !t.HasColumn(n) {
			missing = append(missing, n)
		}
	}
	return missing
}
