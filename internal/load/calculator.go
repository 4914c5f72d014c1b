// Package load computes session-RPE training load for a single session and
// compares it with a match reference.
package load

import (
	"strconv"
	"strings"
)

// ComputeSummary derives per-drill loads and session totals from the given rows.
//
// Rows with a missing or blank name are dropped. A missing duration adds nothing
// to TotalDuration; a missing duration or exertion leaves the drill's Load nil,
// which adds nothing to TotalLoad. Divisions by zero yield 0.
func ComputeSummary(entries []DrillEntry, ref MatchReference) SessionSummary {
	s := SessionSummary{Drills: make([]DrillResult, 0, len(entries))}

	for _, e := range entries {
		if !hasName(e) {
			continue
		}
		d := DrillResult{
			Name:     strings.TrimSpace(*e.Name),
			Duration: copyFloat(e.Duration),
			Exertion: copyFloat(e.Exertion),
		}
		if e.Duration != nil {
			s.TotalDuration += *e.Duration
		}
		if e.Duration != nil && e.Exertion != nil {
			l := *e.Duration * *e.Exertion
			d.Load = &l
			s.TotalLoad += l
		}
		s.Drills = append(s.Drills, d)
	}

	s.SessionIntensity = ratio(s.TotalLoad, s.TotalDuration)
	s.RelativeLoadPct = ratio(s.TotalLoad, ref.Load()) * 100
	s.RelativeIntensityPct = ratio(s.SessionIntensity, ref.Intensity) * 100

	s.Total = SessionTotal{
		Name:     TotalRowName,
		Duration: s.TotalDuration,
		Exertion: roundTo(s.SessionIntensity, 2),
		Load:     s.TotalLoad,
	}
	return s
}

// Dropped reports how many rows ComputeSummary ignores for lacking a name.
func Dropped(entries []DrillEntry) int {
	n := 0
	for _, e := range entries {
		if !hasName(e) {
			n++
		}
	}
	return n
}

func hasName(e DrillEntry) bool {
	return e.Name != nil && strings.TrimSpace(*e.Name) != ""
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// roundTo rounds to the given number of decimals on the exact binary value,
// ties to even. Matches what the "%.Nf" display strings show.
func roundTo(v float64, decimals int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', decimals, 64), 64)
	if err != nil {
		return v
	}
	return r
}
