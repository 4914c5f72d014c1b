package load

import (
	"errors"
	"fmt"
	"math"
)

// Exertion bounds of the RPE scale.
const (
	MinExertion = 1
	MaxExertion = 10
)

// RowError describes an invalid value in one input row. Row is zero-based.
type RowError struct {
	Row    int
	Field  string
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s %s", e.Row+1, e.Field, e.Reason)
}

// Validate checks the named rows against the input table constraints:
// duration must be >= 0 and exertion within [1,10]. Rows without a name are
// not checked since ComputeSummary drops them anyway.
func Validate(entries []DrillEntry) error {
	var errs []error
	for i, e := range entries {
		if !hasName(e) {
			continue
		}
		if e.Duration != nil {
			switch d := *e.Duration; {
			case math.IsNaN(d) || math.IsInf(d, 0):
				errs = append(errs, &RowError{Row: i, Field: "duration", Reason: "must be a finite number"})
			case d < 0:
				errs = append(errs, &RowError{Row: i, Field: "duration", Reason: "must not be negative"})
			}
		}
		if e.Exertion != nil {
			switch x := *e.Exertion; {
			case math.IsNaN(x) || math.IsInf(x, 0):
				errs = append(errs, &RowError{Row: i, Field: "exertion", Reason: "must be a finite number"})
			case x < MinExertion || x > MaxExertion:
				errs = append(errs, &RowError{Row: i, Field: "exertion", Reason: fmt.Sprintf("must be between %d and %d", MinExertion, MaxExertion)})
			}
		}
	}
	return errors.Join(errs...)
}
