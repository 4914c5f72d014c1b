package table

import (
	"strings"
	"testing"
)

const sampleCSV = `name,duration,exertion
Warm-up,15,3
Rondo 5v2,12,6
Small-sided game,24,8
,10,5
Cool-down,8,
`

// TestParseSession verifies the happy path: header mapping, values and
// blank cells turned into nil.
func TestParseSession(t *testing.T) {
	entries, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("entries = %d, want 5", len(entries))
	}

	e := entries[1]
	if e.Name == nil || *e.Name != "Rondo 5v2" {
		t.Errorf("name = %v, want Rondo 5v2", e.Name)
	}
	if e.Duration == nil || *e.Duration != 12 {
		t.Errorf("duration = %v, want 12", e.Duration)
	}
	if e.Exertion == nil || *e.Exertion != 6 {
		t.Errorf("exertion = %v, want 6", e.Exertion)
	}

	// Row without a name keeps its numbers; the calculator drops it later.
	if entries[3].Name != nil {
		t.Errorf("entries[3].Name = %q, want nil", *entries[3].Name)
	}
	if entries[4].Exertion != nil {
		t.Errorf("entries[4].Exertion = %v, want nil", *entries[4].Exertion)
	}
}

// TestParseDutchSemicolon verifies a Dutch sheet with ';' separators and
// decimal commas, as exported by a spreadsheet in a nl locale.
func TestParseDutchSemicolon(t *testing.T) {
	in := "\ufeffOefening;Duur (min);RPE\nPositiespel;17,5;7\nSprints;6;9,5\n"
	entries, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if *entries[0].Name != "Positiespel" {
		t.Errorf("name = %q, want Positiespel", *entries[0].Name)
	}
	if *entries[0].Duration != 17.5 {
		t.Errorf("duration = %v, want 17.5", *entries[0].Duration)
	}
	if *entries[1].Exertion != 9.5 {
		t.Errorf("exertion = %v, want 9.5", *entries[1].Exertion)
	}
}

// TestParseColumnOrderAndExtras verifies columns are matched by header name,
// case-insensitively, and unknown columns are ignored.
func TestParseColumnOrderAndExtras(t *testing.T) {
	in := "RPE,Notes,Drill,Duration\n6,easy pace,Passing,20\n"
	entries, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if *e.Name != "Passing" || *e.Duration != 20 || *e.Exertion != 6 {
		t.Errorf("entry = %q/%v/%v, want Passing/20/6", *e.Name, *e.Duration, *e.Exertion)
	}
}

// TestParseBlankLines verifies that empty and separator-only lines are skipped.
func TestParseBlankLines(t *testing.T) {
	in := "\n\nname,duration,exertion\n\nA,10,5\n,,\nB,20,6\n"
	entries, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("entries = %d, want 2", len(entries))
	}
}

// TestParseShortRow verifies that a row with fewer fields than the header
// treats the missing cells as absent.
func TestParseShortRow(t *testing.T) {
	entries, err := Parse(strings.NewReader("name,duration,exertion\nA,10\n"))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if entries[0].Exertion != nil {
		t.Errorf("exertion = %v, want nil", *entries[0].Exertion)
	}
}

// TestParseErrors verifies that malformed input is reported, not guessed.
func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "missing header row"},
		{"missing column", "name,duration\nA,10\n", "no exertion column"},
		{"bad number", "name,duration,exertion\nA,ten,5\n", `line 2: duration: invalid number "ten"`},
		{"bad exertion", "name,duration,exertion\nA,10,hard\n", `exertion: invalid number "hard"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.in))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

// TestHeaderOnly verifies that a sheet with only a header yields no entries.
func TestHeaderOnly(t *testing.T) {
	entries, err := Parse(strings.NewReader("name,duration,exertion\n"))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %d, want 0", len(entries))
	}
}
