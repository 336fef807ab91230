package importer

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"

	"github.com/stwalsh4118/hunt/internal/models"
)

// Source column names.
const (
	colDate          = "date"
	colFinalReport   = "final_report"
	colInjury        = "injury"
	colCounty        = "county"
	colFatal         = "fatal"
	colSISP          = "si_sp"
	colCircumstances = "circumstances"
	colShooterAge    = "shooter_age"
	colShooterGender = "shooter_gender"
	colVictimAge     = "victim_age"
	colVictimGender  = "victim_gender"
	colFirearmType   = "firearm_type"
)

// RequiredColumns must all be present in the header row.
var RequiredColumns = []string{
	colDate,
	colFinalReport,
	colInjury,
	colCounty,
	colFatal,
	colSISP,
	colCircumstances,
	colShooterAge,
	colShooterGender,
	colVictimAge,
	colVictimGender,
	colFirearmType,
}

// victimSameAsShooter in victim_age means the shooter shot themself.
const victimSameAsShooter = "same"

// header maps normalized column names to their index.
type header map[string]int

func normalizeColumn(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, utf8BOM)))
}

// parseHeader indexes the header row and fails on the first missing column.
// When a name repeats, the first occurrence wins.
func parseHeader(row []string) (header, string, error) {
	h := make(header, len(row))
	for i, name := range row {
		key := normalizeColumn(name)
		if _, dup := h[key]; !dup {
			h[key] = i
		}
	}
	for _, col := range RequiredColumns {
		if _, ok := h[col]; !ok {
			return nil, col, ErrMissingColumn
		}
	}
	return h, "", nil
}

// get returns the trimmed cell, or "" when the row is shorter than the header.
func (h header) get(row []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (h header) text(row []string, col string) *string {
	return models.StringPtr(h.get(row, col))
}

func (h header) yes(row []string, col string) bool {
	return strings.EqualFold(h.get(row, col), "yes")
}

// buildAccident turns one data row into an Accident. The returned column
// names the offending cell when err is not nil.
func (h header) buildAccident(row []string) (models.Accident, string, error) {
	date, err := parseDate(h.get(row, colDate))
	if err != nil {
		return models.Accident{}, colDate, err
	}

	a := models.Accident{
		Date:          date,
		FinalReport:   h.yes(row, colFinalReport),
		Injury:        h.text(row, colInjury),
		County:        h.text(row, colCounty),
		Fatal:         h.yes(row, colFatal),
		PartyRelation: h.text(row, colSISP),
		Circumstances: h.text(row, colCircumstances),
		ShooterAge:    h.text(row, colShooterAge),
		ShooterGender: h.text(row, colShooterGender),
		VictimAge:     h.text(row, colVictimAge),
		VictimGender:  h.text(row, colVictimGender),
		Weapon:        h.text(row, colFirearmType),
	}

	if strings.EqualFold(h.get(row, colVictimAge), victimSameAsShooter) {
		a.VictimAge = a.ShooterAge
		a.VictimGender = a.ShooterGender
	}

	return a, "", nil
}

// parseDate reads month/day/year text (dateparse resolves ambiguous
// numeric dates month first) and returns UTC midnight of that day.
// Bare numbers are refused: dateparse would read them as Unix seconds or
// as a lone year.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	if !hasDateSeparator(s) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// hasDateSeparator reports whether s has a /, - or . between its parts or
// spells a month name.
func hasDateSeparator(s string) bool {
	return strings.ContainsAny(s, "/-.") || strings.IndexFunc(s, unicode.IsLetter) >= 0
}
