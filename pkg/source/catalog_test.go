// pkg/source/catalog_test.go
package source_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/transito-gt/tablero/pkg/source"
)

func TestCatalogRuleSetsAreValid(t *testing.T) {
	catalog := source.Catalog()
	if len(catalog) == 0 {
		t.Fatal("built-in catalog is empty")
	}

	seen := make(map[string]bool)
	for _, rules := range catalog {
		if err := rules.Validate(); err != nil {
			t.Errorf("rule set %s: %v", rules.Table, err)
		}
		if seen[rules.Table] {
			t.Errorf("duplicate rule set for table %s", rules.Table)
		}
		seen[rules.Table] = true
		if rules.Output == "" {
			t.Errorf("rule set %s has no output dataset", rules.Table)
		}
	}
}

func TestCatalogCoversKnownTables(t *testing.T) {
	want := []string{"cuadro1", "cuadro3", "cuadro7", "cuadro9", "cuadro15", "cuadro31", "cuadro35", "cuadro47"}

	byTable := make(map[string]bool)
	for _, rules := range source.Catalog() {
		byTable[rules.Table] = true
	}
	for _, table := range want {
		if !byTable[table] {
			t.Errorf("catalog is missing %s", table)
		}
	}
}

func TestLoadCatalogWithoutOverrides(t *testing.T) {
	catalog, err := source.LoadCatalog("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(catalog) != len(source.Catalog()) {
		t.Fatalf("empty path should return the built-ins, got %d rule sets", len(catalog))
	}
}

func TestLoadCatalogMergesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	override := `
- table: cuadro1
  version: "2"
  output: data_accidentes_anio_depto
  identifier_columns: [departamento]
  value_columns: ["2020", "2021", "2022", "2023", "2024", "2025"]
  category_name: "año"
  measure_name: accidentes
- table: cuadro99
  version: "1"
  output: data_nueva
  identifier_columns: [municipio]
  value_columns: ["total"]
  category_name: medida
  measure_name: total
`
	if err := os.WriteFile(path, []byte(override), 0o644); err != nil {
		t.Fatalf("write overrides: %v", err)
	}

	catalog, err := source.LoadCatalog(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(catalog) != len(source.Catalog())+1 {
		t.Fatalf("expected built-ins plus one new table, got %d", len(catalog))
	}

	var found bool
	for _, rules := range catalog {
		if rules.Table == "cuadro1" {
			found = true
			if rules.Version != "2" || len(rules.ValueColumns) != 6 {
				t.Fatalf("override did not replace cuadro1: %+v", rules)
			}
		}
	}
	if !found {
		t.Fatal("cuadro1 vanished during merge")
	}
}

func TestLoadCatalogMissingFile(t *testing.T) {
	_, err := source.LoadCatalog(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for an explicitly configured but absent file")
	}
}
