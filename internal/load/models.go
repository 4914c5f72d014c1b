package load

// DrillEntry is one row of the session table as supplied by the input boundary.
// Every field is optional; rows without a name are ignored.
type DrillEntry struct {
	Name     *string  `json:"name"`
	Duration *float64 `json:"duration"` // minutes
	Exertion *float64 `json:"exertion"` // RPE 1-10
}

// DrillResult is a kept drill with its derived sRPE load.
// Load is nil when duration or exertion is missing.
type DrillResult struct {
	Name     string   `json:"name"`
	Duration *float64 `json:"duration"`
	Exertion *float64 `json:"exertion"`
	Load     *float64 `json:"load"`
}

// SessionTotal is the display row summarising the whole session.
type SessionTotal struct {
	Name     string  `json:"name"`
	Duration float64 `json:"duration"`
	Exertion float64 `json:"exertion"` // session intensity, rounded to 2 decimals
	Load     float64 `json:"load"`
}

// SessionSummary holds per-drill results and session-level load metrics.
type SessionSummary struct {
	Drills               []DrillResult `json:"drills"`
	Total                SessionTotal  `json:"total"`
	TotalDuration        float64       `json:"total_duration"`
	TotalLoad            float64       `json:"total_load"`
	SessionIntensity     float64       `json:"session_intensity"`
	RelativeLoadPct      float64       `json:"relative_load_pct"`
	RelativeIntensityPct float64       `json:"relative_intensity_pct"`
}

// MatchReference is the benchmark a session is compared against.
type MatchReference struct {
	Duration  float64 `json:"duration"`
	Intensity float64 `json:"intensity"`
}

// DefaultMatchReference is a full match: 80 minutes at RPE 7.
var DefaultMatchReference = MatchReference{Duration: 80, Intensity: 7}

// Load returns the reference sRPE load (duration × intensity).
func (r MatchReference) Load() float64 {
	return r.Duration * r.Intensity
}

// TotalRowName is the name shown on the session total row.
const TotalRowName = "Session"

// Entry builds a DrillEntry from plain values. Handy for callers that always
// have all three fields.
func Entry(name string, duration, exertion float64) DrillEntry {
	return DrillEntry{Name: &name, Duration: &duration, Exertion: &exertion}
}
