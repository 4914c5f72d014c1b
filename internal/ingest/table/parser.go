// Package table reads session sheets exported from a spreadsheet.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/meltforce/trainingload/internal/load"
)

// Recognised header names per column, lower case. The Dutch names match the
// coaching sheets the tool was first used with.
var headerNames = map[string][]string{
	"name":     {"name", "drill", "oefening"},
	"duration": {"duration", "duur", "duur (min)", "duration (min)"},
	"exertion": {"exertion", "rpe"},
}

// Parse reads a CSV session sheet. The first non-empty line is the header;
// every following line is a drill. Empty cells become nil values.
// Both ',' and ';' separated files are accepted.
func Parse(r io.Reader) ([]load.DrillEntry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading sheet: %w", err)
	}
	text := strings.TrimPrefix(string(data), "\ufeff")

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = detectSeparator(text)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var cols map[string]int
	var entries []load.DrillEntry

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing CSV: %w", err)
		}
		if blank(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)

		if cols == nil {
			cols, err = mapHeader(rec)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			continue
		}

		e, err := parseRow(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		entries = append(entries, e)
	}

	if cols == nil {
		return nil, fmt.Errorf("missing header row")
	}
	return entries, nil
}

func mapHeader(rec []string) (map[string]int, error) {
	cols := make(map[string]int, len(headerNames))
	for i, h := range rec {
		h = strings.ToLower(strings.TrimSpace(h))
		for field, names := range headerNames {
			for _, n := range names {
				if h == n {
					if _, dup := cols[field]; !dup {
						cols[field] = i
					}
				}
			}
		}
	}
	for _, field := range []string{"name", "duration", "exertion"} {
		if _, ok := cols[field]; !ok {
			return nil, fmt.Errorf("header has no %s column", field)
		}
	}
	return cols, nil
}

func parseRow(rec []string, cols map[string]int) (load.DrillEntry, error) {
	var e load.DrillEntry
	if name := cell(rec, cols["name"]); name != "" {
		e.Name = &name
	}
	var err error
	if e.Duration, err = parseNumber(cell(rec, cols["duration"])); err != nil {
		return e, fmt.Errorf("duration: %w", err)
	}
	if e.Exertion, err = parseNumber(cell(rec, cols["exertion"])); err != nil {
		return e, fmt.Errorf("exertion: %w", err)
	}
	return e, nil
}

func cell(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// parseNumber accepts "7.5" and the European "7,5". Empty means absent.
func parseNumber(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	return &v, nil
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// detectSeparator picks ';' when the first non-empty line has more semicolons than
// commas, which is what spreadsheets with a decimal comma export.
func detectSeparator(text string) rune {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.Count(line, ";") > strings.Count(line, ",") {
			return ';'
		}
		break
	}
	return ','
}
