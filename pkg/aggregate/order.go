// pkg/aggregate/order.go
package aggregate

import "strconv"

// Canonical axis orders. Views depend on stable axes (a full week grid, a
// 24-hour day) even when the data is sparse, so these are fixed sequences
// rather than anything derived from input.
var (
	// Weekdays is the fixed Monday-through-Sunday sequence as the sources
	// spell it.
	Weekdays = []string{"lunes", "martes", "miercoles", "jueves", "viernes", "sabado", "domingo"}

	// Years covers the period the INE tables report.
	Years = []string{"2020", "2021", "2022", "2023", "2024"}
)

// Hours returns the 24 hour-of-day keys "0".."23" as used by the hora_num
// derived field.
func Hours() []string {
	hours := make([]string, 24)
	for i := range hours {
		hours[i] = strconv.Itoa(i)
	}
	return hours
}

// Months returns the month-number keys "1".."12" as used by the mes_num
// derived field.
func Months() []string {
	months := make([]string, 12)
	for i := range months {
		months[i] = strconv.Itoa(i + 1)
	}
	return months
}
