package models

import (
	"time"
)

// DateLayout is the normalized form of an accident date.
const DateLayout = "2006-01-02"

// Party relation codes recorded in the si_sp column.
const (
	PartyRelationSelfInflicted = "SI"
	PartyRelationSameParty     = "SP"
)

// Accident is one historical hunting incident.
// Nullable text columns use pointers to distinguish an empty cell from a value.
// It has no wire form of its own; HTTP responses use handlers.AccidentData.
// The year column is not a field: it is always derived from Date.
type Accident struct {
	Date          time.Time
	Injury        *string
	County        *string
	PartyRelation *string
	Circumstances *string
	ShooterAge    *string
	ShooterGender *string
	VictimAge     *string
	VictimGender  *string
	Weapon        *string
	ID            int64
	FinalReport   bool
	Fatal         bool
}

// TableName is the table every SQL store keeps accidents in.
func (Accident) TableName() string {
	return "accidents"
}

// Year is the calendar year of the incident.
func (a *Accident) Year() int {
	return a.Date.Year()
}

// DateString formats Date as YYYY-MM-DD.
func (a *Accident) DateString() string {
	return a.Date.Format(DateLayout)
}

// PartyRelationCode returns the si_sp code, or "" when the cell was empty.
func (a *Accident) PartyRelationCode() string {
	if a.PartyRelation == nil {
		return ""
	}
	return *a.PartyRelation
}

// IsSelfInflicted reports whether the shooter and victim were the same person.
func (a *Accident) IsSelfInflicted() bool {
	return a.PartyRelationCode() == PartyRelationSelfInflicted
}

// IsSameParty reports whether the shooter and victim hunted together.
func (a *Accident) IsSameParty() bool {
	return a.PartyRelationCode() == PartyRelationSameParty
}

// ParseDate parses a stored YYYY-MM-DD value into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// StringPtr returns nil for an empty string and a pointer to s otherwise.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
