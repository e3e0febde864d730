// pkg/palette/palette.go
package palette

// Named colors shared across every rendered view. Values must match the
// model-performance views so the two surfaces look like one product.
const (
	RedCritical      = "#D32F2F"
	OrangeAlert      = "#F57C00"
	YellowPreventive = "#FBC02D"
	BlueInfo         = "#1976D2"
	GreenPositive    = "#388E3C"
	GrayNeutral      = "#455A64"
	BackgroundLight  = "#F5F5F5"
	BackgroundDark   = "#1E1E1E"
	TextLight        = "#FFFFFF"
	GridDark         = "#3A3A3A"
)

// blueScale is the 5-step sequential scale for magnitude encodings.
var blueScale = []string{"#E3F2FD", "#90CAF9", "#42A5F5", "#1976D2", "#0D47A1"}

// heatScale is the yellow-orange-red scale for heatmap cells.
var heatScale = []string{"#FFFDE7", "#FFB300", "#F57C00", "#D32F2F"}

// severityColors maps accident types to alert colors by rough severity.
var severityColors = map[string]string{
	"atropello":  RedCritical,
	"colision":   OrangeAlert,
	"choque":     OrangeAlert,
	"vuelco":     YellowPreventive,
	"derrape":    YellowPreventive,
	"embarranco": RedCritical,
	"encuneto":   YellowPreventive,
	"caida":      OrangeAlert,
	"ignorado":   GrayNeutral,
}

// Sequential maps a value within [min, max] onto the blue scale. Equal
// bounds collapse to the middle step, matching how a single-valued series
// should render.
func Sequential(value, min, max int64) string {
	norm := 0.5
	if max != min {
		norm = float64(value-min) / float64(max-min)
	}

	switch {
	case norm < 0.2:
		return blueScale[0]
	case norm < 0.4:
		return blueScale[1]
	case norm < 0.6:
		return blueScale[2]
	case norm < 0.8:
		return blueScale[3]
	default:
		return blueScale[4]
	}
}

// Severity returns the alert color for an accident type. Unlisted types
// fall back to the informational blue.
func Severity(accidentType string) string {
	if c, ok := severityColors[accidentType]; ok {
		return c
	}
	return BlueInfo
}

// HeatStops returns the heatmap color stops from coolest to hottest.
func HeatStops() []string {
	stops := make([]string, len(heatScale))
	copy(stops, heatScale)
	return stops
}
