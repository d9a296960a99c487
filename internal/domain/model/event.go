// Package model contains domain records read from the competition database.
package model

import "strings"

// Event holds free-form event metadata (name, date, place, ...) keyed by the
// part of the config key after the "event." prefix.
type Event map[string]string

// Get returns the value for key or "" when it is missing.
func (e Event) Get(key string) string {
	if e == nil {
		return ""
	}
	return e[key]
}

// Class is a competition category with the course it runs at one stage.
type Class struct {
	ID   int64
	Name string

	// Course length in metres and climb; nil when no course is defined for the stage.
	Length *int64
	Climb  *int64
}

// Competitor identifies a participant.
type Competitor struct {
	ID           int64
	Registration string
	LastName     string
	FirstName    string
}

// FullName is "Last First"; missing parts are treated as empty strings so a
// competitor with only a last name ends with a trailing space.
func (c Competitor) FullName() string {
	var b strings.Builder
	b.Grow(len(c.LastName) + len(c.FirstName) + 1)
	b.WriteString(c.LastName)
	b.WriteByte(' ')
	b.WriteString(c.FirstName)
	return b.String()
}

// Run is one competitor's timing record for one stage. Times are
// milliseconds; nil means the database column was NULL.
type Run struct {
	Stage         int
	SIID          *int64
	Leg           *int64
	RelayID       *int64
	CheckTimeMS   *int64
	StartTimeMS   *int64
	FinishTimeMS  *int64
	PenaltyTimeMS *int64
	TimeMS        *int64
	IsRunning     bool
	NotCompeting  bool
	Disqualified  bool
	Mispunch      bool
	BadCheck      bool
}

// Entry joins a competitor with their run at a single stage.
type Entry struct {
	Competitor
	Run
}
