// pkg/source/catalog.go
package source

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/transito-gt/tablero/pkg/model"
)

// Canonical output dataset names, shared by sinks and the dashboard.
const (
	DatasetAccidentsByYear    = "data_accidentes_anio_depto"
	DatasetAccidentsByWeekday = "data_accidentes_dia_depto"
	DatasetAccidentsByHour    = "data_accidentes_dia_hora"
	DatasetAccidentTypes      = "data_accidentes_tipo_mes"
	DatasetInjuriesByYear     = "data_lesionados_anio_depto"
	DatasetDeathsByYear       = "data_fallecidos_anio_depto"
	DatasetVehiclesByType     = "data_vehiculos_tipo"
	DatasetInjuriesByAgeGroup = "data_lesionados_grupo_etario"
)

var yearColumns = []string{"2020", "2021", "2022", "2023", "2024"}

var weekdayColumns = []string{"lunes", "martes", "miercoles", "jueves", "viernes", "sabado", "domingo"}

var monthNumbers = map[string]int{
	"Enero": 1, "Febrero": 2, "Marzo": 3, "Abril": 4,
	"Mayo": 5, "Junio": 6, "Julio": 7, "Agosto": 8,
	"Septiembre": 9, "Octubre": 10, "Noviembre": 11, "Diciembre": 12,
}

// Catalog returns the built-in rule sets for the INE cuadro tables. Each
// idiosyncratic wide layout is described as data; the single generic
// normalizer handles all of them.
func Catalog() []model.RuleSet {
	return []model.RuleSet{
		{
			Table:             "cuadro1",
			Version:           "1",
			Output:            DatasetAccidentsByYear,
			IdentifierColumns: []string{"departamento"},
			ValueColumns:      yearColumns,
			CategoryName:      "año",
			MeasureName:       "accidentes",
			DropRows:          []model.DropPredicate{{Column: "departamento", Equals: "Total"}},
			DropColumns:       []string{"fuente_cuadro"},
		},
		{
			Table:             "cuadro3",
			Version:           "1",
			Output:            DatasetAccidentsByWeekday,
			IdentifierColumns: []string{"departamento"},
			ValueColumns:      weekdayColumns,
			CategoryName:      "dia_semana",
			MeasureName:       "accidentes",
			DropRows:          []model.DropPredicate{{Column: "departamento", Equals: "Total"}},
			DropColumns:       []string{"fuente_cuadro", "total"},
		},
		{
			Table:             "cuadro7",
			Version:           "1",
			Output:            DatasetAccidentsByHour,
			IdentifierColumns: []string{"hora_de_ocurrencia"},
			ValueColumns:      weekdayColumns,
			CategoryName:      "dia_semana",
			MeasureName:       "accidentes",
			DropRows: []model.DropPredicate{
				{Column: "hora_de_ocurrencia", Equals: "Total"},
				{Column: "hora_de_ocurrencia", Equals: "Ignorada"},
			},
			DropColumns: []string{"fuente_cuadro", "total"},
			Derived: []model.DerivedField{
				{Name: "hora_num", From: "hora_de_ocurrencia", Pattern: `(\d+):`},
			},
		},
		{
			Table:             "cuadro9",
			Version:           "1",
			Output:            DatasetAccidentTypes,
			IdentifierColumns: []string{"mes_de_ocurrencia"},
			ValueColumns: []string{
				"colision", "atropello", "derrape", "choque", "vuelco",
				"embarranco", "encuneto", "caida", "ignorado",
			},
			CategoryName: "tipo_accidente",
			MeasureName:  "cantidad",
			DropRows:     []model.DropPredicate{{Column: "mes_de_ocurrencia", Equals: "Total"}},
			DropColumns:  []string{"fuente_cuadro", "total"},
			Derived: []model.DerivedField{
				{Name: "mes_num", From: "mes_de_ocurrencia", Mapping: monthNumbers},
			},
		},
		{
			Table:             "cuadro15",
			Version:           "1",
			Output:            DatasetVehiclesByType,
			IdentifierColumns: []string{"tipo_vehiculo"},
			ValueColumns: []string{
				"colision", "atropello", "derrape", "choque", "vuelco",
				"embarranco", "encuneto", "caida", "ignorado",
			},
			CategoryName: "tipo_accidente",
			MeasureName:  "cantidad",
			DropRows:     []model.DropPredicate{{Column: "tipo_vehiculo", Equals: "Total"}},
			DropColumns:  []string{"fuente_cuadro", "total"},
		},
		{
			Table:             "cuadro31",
			Version:           "1",
			Output:            DatasetInjuriesByYear,
			IdentifierColumns: []string{"departamento"},
			ValueColumns:      yearColumns,
			CategoryName:      "año",
			MeasureName:       "lesionados",
			DropRows:          []model.DropPredicate{{Column: "departamento", Equals: "Total"}},
			DropColumns:       []string{"fuente_cuadro"},
		},
		{
			Table:             "cuadro35",
			Version:           "1",
			Output:            DatasetInjuriesByAgeGroup,
			IdentifierColumns: []string{"grupo_etario"},
			ValueColumns:      []string{"total"},
			CategoryName:      "medida",
			MeasureName:       "total",
			DropRows: []model.DropPredicate{
				{Column: "grupo_etario", Equals: "Total"},
				{Column: "grupo_etario", Equals: "Ignorado"},
			},
			DropColumns: []string{"fuente_cuadro"},
		},
		{
			Table:             "cuadro47",
			Version:           "1",
			Output:            DatasetDeathsByYear,
			IdentifierColumns: []string{"departamento"},
			ValueColumns:      yearColumns,
			CategoryName:      "año",
			MeasureName:       "fallecidos",
			DropRows:          []model.DropPredicate{{Column: "departamento", Equals: "Total"}},
			DropColumns:       []string{"fuente_cuadro", "Unnamed: 6", "col_10"},
		},
	}
}

// LoadCatalog reads rule sets from a YAML file and merges them over the
// built-ins by table name, so a deployment can patch one table's shape or
// add a new cuadro without a code change.
func LoadCatalog(path string) ([]model.RuleSet, error) {
	builtin := Catalog()
	if path == "" {
		return builtin, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &MissingSourceError{Name: "rule catalog", Path: path, Err: err}
		}
		return nil, fmt.Errorf("failed to read rule catalog: %w", err)
	}

	var overrides []model.RuleSet
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse rule catalog %s: %w", path, err)
	}

	merged := make([]model.RuleSet, len(builtin))
	copy(merged, builtin)
	for _, o := range overrides {
		if err := o.Validate(); err != nil {
			return nil, err
		}
		replaced := false
		for i := range merged {
			if merged[i].Table == o.Table {
				merged[i] = o
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, o)
		}
	}
	return merged, nil
}
