// pkg/model/rules.go
package model

import (
	"errors"
	"fmt"
	"regexp"
)

// RuleSet declaratively describes how one wide source table is normalized
// into canonical records. One rule set exists per source table shape; new
// shapes are added as data, not as code paths.
//
// Rule sets are immutable static configuration: build or load them once and
// treat them as read-only afterwards.
type RuleSet struct {
	// Table is the source table name (e.g. "cuadro1").
	Table string `yaml:"table"`
	// Version participates in the normalizer's memoization key. Bump it when
	// editing a rule set so cached results are not reused.
	Version string `yaml:"version"`
	// Output names the cleaned dataset this table produces.
	Output string `yaml:"output"`

	// IdentifierColumns are retained as-is on every emitted record.
	IdentifierColumns []string `yaml:"identifier_columns"`
	// ValueColumns are unrolled: one record per remaining row per column.
	ValueColumns []string `yaml:"value_columns"`
	// CategoryName and MeasureName name the two columns produced by the
	// unroll ("año"/"accidentes", "dia_semana"/"accidentes", ...).
	CategoryName string `yaml:"category_name"`
	MeasureName  string `yaml:"measure_name"`

	// DropRows removes aggregate/sentinel rows before unrolling.
	DropRows []DropPredicate `yaml:"drop_rows,omitempty"`
	// DropColumns are ignored when present; their absence is not an error
	// since they vary across source variants.
	DropColumns []string `yaml:"drop_columns,omitempty"`

	// Derived adds computed ordinal columns to every emitted record.
	Derived []DerivedField `yaml:"derived,omitempty"`
}

// DropPredicate excludes rows whose column equals the sentinel value.
// Predicates are conjunctive row exclusions; application order is irrelevant.
type DropPredicate struct {
	Column string `yaml:"column"`
	Equals string `yaml:"equals"`
}

// DerivedField computes a sortable ordinal from a textual field, either by
// regex extraction (leading hour from "00:00 a 00:59") or by lookup table
// (month name to month number). Exactly one of Pattern and Mapping is set.
// A value that fails to match or look up leaves the field unset.
type DerivedField struct {
	Name string `yaml:"name"`
	// From names the field the rule reads: an identifier column, or the rule
	// set's CategoryName to read the unrolled category.
	From    string         `yaml:"from"`
	Pattern string         `yaml:"pattern,omitempty"`
	Mapping map[string]int `yaml:"mapping,omitempty"`
}

// Validate checks the rule set for internal consistency.
func (r *RuleSet) Validate() error {
	if r.Table == "" {
		return errors.New("rule set requires a table name")
	}
	if len(r.ValueColumns) == 0 {
		return fmt.Errorf("rule set %s: at least one value column is required", r.Table)
	}
	if r.CategoryName == "" || r.MeasureName == "" {
		return fmt.Errorf("rule set %s: category and measure names are required", r.Table)
	}
	for _, p := range r.DropRows {
		if p.Column == "" {
			return fmt.Errorf("rule set %s: drop predicate requires a column", r.Table)
		}
	}
	for i := range r.Derived {
		if err := r.Derived[i].Validate(); err != nil {
			return fmt.Errorf("rule set %s: %w", r.Table, err)
		}
	}
	return nil
}

// Validate checks that the derived field has a name, a source field, and
// exactly one extraction mechanism with a compilable pattern.
func (d *DerivedField) Validate() error {
	if d.Name == "" {
		return errors.New("derived field requires a name")
	}
	if d.From == "" {
		return fmt.Errorf("derived field %s: requires a source field", d.Name)
	}
	hasPattern := d.Pattern != ""
	hasMapping := len(d.Mapping) > 0
	if hasPattern == hasMapping {
		return fmt.Errorf("derived field %s: exactly one of pattern or mapping must be set", d.Name)
	}
	if hasPattern {
		if _, err := regexp.Compile(d.Pattern); err != nil {
			return fmt.Errorf("derived field %s: invalid pattern: %w", d.Name, err)
		}
	}
	return nil
}
