package load

import (
	"fmt"
	"strconv"
)

// DisplayRow is one table row as strings, ready to draw.
type DisplayRow struct {
	Name     string `json:"name"`
	Duration string `json:"duration"`
	Exertion string `json:"exertion"`
	Load     string `json:"load"`
}

// Figure is an expression followed by its highlighted result,
// e.g. Expr "360 / 560 =" and Value "64%".
type Figure struct {
	Expr  string `json:"expr,omitempty"`
	Value string `json:"value"`
}

// Display holds the formatted values a renderer needs. All rounding of the
// summary happens here, once, from full-precision values.
type Display struct {
	Rows              []DisplayRow `json:"rows"`
	Total             DisplayRow   `json:"total"`
	Reference         string       `json:"reference"`
	LoadAbsolute      Figure       `json:"load_absolute"`
	LoadRelative      Figure       `json:"load_relative"`
	IntensityAbsolute Figure       `json:"intensity_absolute"`
	IntensityRelative Figure       `json:"intensity_relative"`
}

// NewDisplay formats a summary for presentation.
func NewDisplay(s SessionSummary, ref MatchReference) Display {
	d := Display{Rows: make([]DisplayRow, 0, len(s.Drills))}
	for _, r := range s.Drills {
		d.Rows = append(d.Rows, DisplayRow{
			Name:     r.Name,
			Duration: optional(r.Duration, 0),
			Exertion: optional(r.Exertion, 0),
			Load:     optional(r.Load, 0),
		})
	}

	d.Total = DisplayRow{
		Name:     s.Total.Name,
		Duration: fixed(s.TotalDuration, 0),
		Exertion: fixed(s.SessionIntensity, 1),
		Load:     fixed(s.TotalLoad, 0),
	}

	refDur := plain(ref.Duration)
	refInt := plain(ref.Intensity)
	refLoad := plain(ref.Load())
	d.Reference = fmt.Sprintf("%s x %s = %s AU", refDur, refInt, refLoad)

	total := fixed(s.TotalLoad, 0)
	intensity := fixed(s.SessionIntensity, 1)
	d.LoadAbsolute = Figure{Value: total + " AU"}
	d.LoadRelative = Figure{
		Expr:  fmt.Sprintf("%s / %s =", total, refLoad),
		Value: fixed(s.RelativeLoadPct, 0) + "%",
	}
	d.IntensityAbsolute = Figure{
		Expr:  fmt.Sprintf("%s / %s =", total, fixed(s.TotalDuration, 0)),
		Value: intensity + " RPE",
	}
	d.IntensityRelative = Figure{
		Expr:  fmt.Sprintf("%s / %s =", intensity, refInt),
		Value: fixed(s.RelativeIntensityPct, 0) + "%",
	}
	return d
}

func fixed(v float64, decimals int) string {
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	if s == "-0" || (len(s) > 1 && s[0] == '-' && isZero(s[1:])) {
		return s[1:]
	}
	return s
}

func isZero(s string) bool {
	for _, c := range s {
		if c != '0' && c != '.' {
			return false
		}
	}
	return true
}

func optional(v *float64, decimals int) string {
	if v == nil {
		return ""
	}
	return fixed(*v, decimals)
}

// plain prints reference constants without trailing zeros (80, 7, 560).
func plain(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
