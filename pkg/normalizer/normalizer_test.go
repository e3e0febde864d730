// pkg/normalizer/normalizer_test.go
package normalizer_test

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/transito-gt/tablero/pkg/model"
	"github.com/transito-gt/tablero/pkg/normalizer"
)

func newNormalizer(t *testing.T) *normalizer.Normalizer {
	t.Helper()
	n, err := normalizer.New(zap.NewNop())
	if err != nil {
		t.Fatalf("new normalizer: %v", err)
	}
	return n
}

// yearTable builds a small cuadro1-shaped table: departments by years, with
// a Total row that must never survive normalization.
func yearTable() *model.RawTable {
	return &model.RawTable{
		Name:    "cuadro1",
		Columns: []string{"departamento", "2020", "2021"},
		Rows: []model.Row{
			{"departamento": "Guatemala", "2020": "6,500", "2021": "7013"},
			{"departamento": "Escuintla", "2020": "1200", "2021": "abc"},
			{"departamento": "Total", "2020": "7700", "2021": "7013"},
		},
	}
}

func yearRules() *model.RuleSet {
	return &model.RuleSet{
		Table:             "cuadro1",
		Version:           "1",
		Output:            "data_accidentes_anio_depto",
		IdentifierColumns: []string{"departamento"},
		ValueColumns:      []string{"2020", "2021"},
		CategoryName:      "año",
		MeasureName:       "accidentes",
		DropRows:          []model.DropPredicate{{Column: "departamento", Equals: "Total"}},
	}
}

func TestNormalizeUnrollsWideTable(t *testing.T) {
	n := newNormalizer(t)

	result, err := n.Normalize(yearTable(), yearRules())
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	// 2 kept rows x 2 value columns, minus the one uncoercible cell.
	if got := len(result.Records); got != 3 {
		t.Fatalf("expected 3 records, got %d", got)
	}
	if got := result.DiscardCount(); got != 1 {
		t.Fatalf("expected 1 discard, got %d", got)
	}
	if result.RowsRead != 3 || result.RowsKept != 2 {
		t.Fatalf("expected 3 rows read and 2 kept, got %d/%d", result.RowsRead, result.RowsKept)
	}

	for _, rec := range result.Records {
		if rec.Identifier("departamento") == "Total" {
			t.Fatal("Total row leaked into the output")
		}
	}

	first := result.Records[0]
	if first.Category != "2020" || first.Measure != 6500 {
		t.Fatalf("unexpected first record: %+v", first)
	}
}

func TestNormalizeConservation(t *testing.T) {
	n := newNormalizer(t)

	result, err := n.Normalize(yearTable(), yearRules())
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	// Source cells of kept rows sum to 6500+7013+1200 plus the discarded
	// "abc". The emitted sum must be exactly the coercible part.
	if got := result.Sum(); got != 14713 {
		t.Fatalf("expected emitted sum 14713, got %d", got)
	}

	// Every kept cell is accounted for: a record or a counted discard.
	expected := result.RowsKept * 2
	if got := len(result.Records) + len(result.Discards); got != expected {
		t.Fatalf("accounting mismatch: %d kept cells, %d records+discards", expected, got)
	}
}

func TestNormalizeDiscardAudit(t *testing.T) {
	n := newNormalizer(t)

	result, err := n.Normalize(yearTable(), yearRules())
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	if len(result.Discards) != 1 {
		t.Fatalf("expected exactly 1 discard, got %d", len(result.Discards))
	}
	d := result.Discards[0]
	if d.Row != 1 || d.Column != "2021" {
		t.Fatalf("discard points at wrong cell: %+v", d)
	}
	if d.Err == nil || d.Err.Value != "abc" {
		t.Fatalf("discard lost the offending value: %+v", d.Err)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := newNormalizer(t)

	first, err := n.Normalize(yearTable(), yearRules())
	if err != nil {
		t.Fatalf("first normalize: %v", err)
	}
	second, err := n.Normalize(yearTable(), yearRules())
	if err != nil {
		t.Fatalf("second normalize: %v", err)
	}

	if len(first.Records) != len(second.Records) || first.Sum() != second.Sum() {
		t.Fatal("normalization is not deterministic across identical inputs")
	}
	for i := range first.Records {
		a, b := first.Records[i], second.Records[i]
		if a.Category != b.Category || a.Measure != b.Measure {
			t.Fatalf("record %d differs between runs: %+v vs %+v", i, a, b)
		}
	}
}

func TestNormalizeSchemaError(t *testing.T) {
	n := newNormalizer(t)

	table := &model.RawTable{
		Name:    "cuadro1",
		Columns: []string{"departamento", "2020"},
		Rows:    []model.Row{{"departamento": "Guatemala", "2020": "10"}},
	}

	_, err := n.Normalize(table, yearRules())
	if err == nil {
		t.Fatal("expected a schema error for the missing 2021 column")
	}

	var schemaErr *normalizer.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %T: %v", err, err)
	}
	if len(schemaErr.Missing) != 1 || schemaErr.Missing[0] != "2021" {
		t.Fatalf("unexpected missing columns: %v", schemaErr.Missing)
	}
}

func TestNormalizeDerivedHour(t *testing.T) {
	n := newNormalizer(t)

	table := &model.RawTable{
		Name:    "cuadro7",
		Columns: []string{"hora_de_ocurrencia", "lunes"},
		Rows: []model.Row{
			{"hora_de_ocurrencia": "05:00 a 05:59", "lunes": "42"},
			{"hora_de_ocurrencia": "Ignorada", "lunes": "3"},
		},
	}
	rules := &model.RuleSet{
		Table:             "cuadro7",
		Version:           "1",
		Output:            "data_accidentes_dia_hora",
		IdentifierColumns: []string{"hora_de_ocurrencia"},
		ValueColumns:      []string{"lunes"},
		CategoryName:      "dia_semana",
		MeasureName:       "accidentes",
		DropRows:          []model.DropPredicate{{Column: "hora_de_ocurrencia", Equals: "Ignorada"}},
		Derived: []model.DerivedField{
			{Name: "hora_num", From: "hora_de_ocurrencia", Pattern: `(\d+):`},
		},
	}

	result, err := n.Normalize(table, rules)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(result.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(result.Records))
	}

	hour, ok := result.Records[0].DerivedValue("hora_num")
	if !ok || hour != 5 {
		t.Fatalf("expected derived hour 5, got %d (set=%v)", hour, ok)
	}
}

func TestNormalizeDerivedMonthMapping(t *testing.T) {
	n := newNormalizer(t)

	table := &model.RawTable{
		Name:    "cuadro9",
		Columns: []string{"mes_de_ocurrencia", "colision"},
		Rows: []model.Row{
			{"mes_de_ocurrencia": "Marzo", "colision": "17"},
			{"mes_de_ocurrencia": "Brumario", "colision": "2"},
		},
	}
	rules := &model.RuleSet{
		Table:             "cuadro9",
		Version:           "1",
		Output:            "data_accidentes_tipo_mes",
		IdentifierColumns: []string{"mes_de_ocurrencia"},
		ValueColumns:      []string{"colision"},
		CategoryName:      "tipo_accidente",
		MeasureName:       "cantidad",
		Derived: []model.DerivedField{
			{Name: "mes_num", From: "mes_de_ocurrencia", Mapping: map[string]int{"Marzo": 3}},
		},
	}

	result, err := n.Normalize(table, rules)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(result.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(result.Records))
	}

	if v, ok := result.Records[0].DerivedValue("mes_num"); !ok || v != 3 {
		t.Fatalf("expected mes_num 3 for Marzo, got %d (set=%v)", v, ok)
	}
	// An unmapped month leaves the derived field unset, not zero.
	if _, ok := result.Records[1].DerivedValue("mes_num"); ok {
		t.Fatal("unmapped month should not produce a derived value")
	}
}

func TestNormalizeNegativeCountsDiscarded(t *testing.T) {
	n := newNormalizer(t)

	table := &model.RawTable{
		Name:    "cuadro1",
		Columns: []string{"departamento", "2020", "2021"},
		Rows: []model.Row{
			{"departamento": "Petén", "2020": "-4", "2021": "12"},
		},
	}

	result, err := n.Normalize(table, yearRules())
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(result.Records) != 1 || result.DiscardCount() != 1 {
		t.Fatalf("expected negative cell discarded: records=%d discards=%d",
			len(result.Records), result.DiscardCount())
	}
}
