// pkg/dashboard/views.go
package dashboard

import (
	"fmt"

	"github.com/transito-gt/tablero/pkg/aggregate"
	"github.com/transito-gt/tablero/pkg/model"
	"github.com/transito-gt/tablero/pkg/source"
)

// ViewState is the render-ready payload for one view. Unavailable views
// carry the reason instead of data, so the caller can show a degraded
// panel without guessing what went wrong.
type ViewState struct {
	Title     string
	Available bool
	Reason    string
	Pivot     *aggregate.Pivot
	Highlight string
}

func unavailable(title, reason string) *ViewState {
	return &ViewState{Title: title, Reason: reason}
}

// DepartmentTotals sums accidents per department for one year. The
// department slot, when set, is passed through as the highlight.
func (s *Session) DepartmentTotals(year string) (*ViewState, error) {
	title := fmt.Sprintf("Distribución por Departamento - %s", year)

	records, reason := s.records(source.DatasetAccidentsByYear)
	if reason != "" {
		return unavailable(title, reason), nil
	}

	pivot, err := aggregate.Aggregate(filterCategory(records, year), aggregate.Spec{
		GroupBy: []string{"departamento"},
	})
	if err != nil {
		return nil, err
	}

	highlight, _ := s.store.Get(SlotDepartment)
	return &ViewState{Title: title, Available: true, Pivot: pivot, Highlight: highlight}, nil
}

// TimeSeries pivots accidents into year rows and one column per requested
// department, zero-filling departments absent from the data so every
// requested series renders.
func (s *Session) TimeSeries(departments ...string) (*ViewState, error) {
	const title = "Evolución Temporal de Accidentes"

	records, reason := s.records(source.DatasetAccidentsByYear)
	if reason != "" {
		return unavailable(title, reason), nil
	}

	pivot, err := aggregate.Aggregate(records, aggregate.Spec{
		GroupBy:     []string{aggregate.FieldCategory, "departamento"},
		Order:       aggregate.Years,
		ColumnOrder: departments,
	})
	if err != nil {
		return nil, err
	}

	highlight, _ := s.store.Get(SlotDepartment)
	return &ViewState{Title: title, Available: true, Pivot: pivot, Highlight: highlight}, nil
}

// TopAccidentTypes returns the n accident types with the highest totals,
// largest first.
func (s *Session) TopAccidentTypes(n int) (*ViewState, error) {
	title := fmt.Sprintf("Top %d Tipos de Accidentes", n)

	records, reason := s.records(source.DatasetAccidentTypes)
	if reason != "" {
		return unavailable(title, reason), nil
	}

	pivot, err := aggregate.Aggregate(records, aggregate.Spec{
		GroupBy: []string{aggregate.FieldCategory},
	})
	if err != nil {
		return nil, err
	}

	highlight, _ := s.store.Get(SlotAccidentType)
	return &ViewState{Title: title, Available: true, Pivot: pivot.TopN(n), Highlight: highlight}, nil
}

// WeekdayHourHeatmap pivots accidents into the full 24-hour by 7-weekday
// grid. Hours or weekdays with no accidents appear as zero cells, never as
// missing rows.
func (s *Session) WeekdayHourHeatmap() (*ViewState, error) {
	const title = "Accidentes por Hora y Día de la Semana"

	records, reason := s.records(source.DatasetAccidentsByHour)
	if reason != "" {
		return unavailable(title, reason), nil
	}

	pivot, err := aggregate.Aggregate(records, aggregate.Spec{
		GroupBy:     []string{"hora_num", aggregate.FieldCategory},
		Order:       aggregate.Hours(),
		ColumnOrder: aggregate.Weekdays,
	})
	if err != nil {
		return nil, err
	}

	return &ViewState{Title: title, Available: true, Pivot: pivot}, nil
}

// VehicleTypes sums involvement per vehicle type. When the accident-type
// slot holds a selection the sums cover only that accident type, which is
// how a click on the types view cross-filters this one.
func (s *Session) VehicleTypes() (*ViewState, error) {
	const title = "Vehículos Involucrados por Tipo"

	records, reason := s.records(source.DatasetVehiclesByType)
	if reason != "" {
		return unavailable(title, reason), nil
	}

	if accidentType, ok := s.store.Get(SlotAccidentType); ok {
		records = filterCategory(records, accidentType)
	}

	pivot, err := aggregate.Aggregate(records, aggregate.Spec{
		GroupBy: []string{"tipo_vehiculo"},
	})
	if err != nil {
		return nil, err
	}

	highlight, _ := s.store.Get(SlotVehicleType)
	return &ViewState{Title: title, Available: true, Pivot: pivot, Highlight: highlight}, nil
}

// QuickStats is the headline banner: total accidents, injuries, and deaths
// for one year.
type QuickStats struct {
	Year      string
	Accidents int64
	Injuries  int64
	Deaths    int64
	Available bool
	Reason    string
}

// QuickStats totals the three headline measures for a year. If any of the
// underlying datasets is unavailable the whole banner degrades; a partial
// banner would read as a real total.
func (s *Session) QuickStats(year string) *QuickStats {
	stats := &QuickStats{Year: year}

	sources := []struct {
		name string
		dst  *int64
	}{
		{source.DatasetAccidentsByYear, &stats.Accidents},
		{source.DatasetInjuriesByYear, &stats.Injuries},
		{source.DatasetDeathsByYear, &stats.Deaths},
	}

	for _, src := range sources {
		records, reason := s.records(src.name)
		if reason != "" {
			stats.Reason = fmt.Sprintf("%s: %s", src.name, reason)
			return stats
		}
		for _, rec := range filterCategory(records, year) {
			*src.dst += rec.Measure
		}
	}

	stats.Available = true
	return stats
}

// filterCategory keeps records whose category equals the given value.
func filterCategory(records []model.CanonicalRecord, category string) []model.CanonicalRecord {
	out := make([]model.CanonicalRecord, 0, len(records))
	for _, rec := range records {
		if rec.Category == category {
			out = append(out, rec)
		}
	}
	return out
}
