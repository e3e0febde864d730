// pkg/model/record.go
package model

// CanonicalRecord is one long-format row produced by unrolling a wide table:
// the retained identifier values, the name of the value column it came from,
// and that cell's coerced measure. Records whose cell failed coercion are
// never materialized; the normalizer reports them as discards instead.
//
// Derived holds optional computed ordinals (hour-of-day extracted from an
// hour label, month number looked up from a month name). A missing key means
// the derived rule did not apply to this record.
type CanonicalRecord struct {
	Identifiers map[string]string
	Category    string
	Measure     int64
	Derived     map[string]int
}

// Identifier returns the named identifier value, or "" when the record's
// table family does not carry it.
func (r CanonicalRecord) Identifier(name string) string {
	return r.Identifiers[name]
}

// DerivedValue returns a derived ordinal and whether it was set.
func (r CanonicalRecord) DerivedValue(name string) (int, bool) {
	v, ok := r.Derived[name]
	return v, ok
}
