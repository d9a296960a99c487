// Package types contains the records handed to page templates.
package types

import (
	"time"

	"github.com/okian/qehtml/internal/domain/model"
)

// ClassSummary is a class as listed on index pages and page headers.
type ClassSummary struct {
	ID    int64
	Name  string
	ASCII string
	// Length and Climb are in metres; nil when the class has no course for the stage.
	Length *int64
	Climb  *int64
}

// HasCourse reports whether course data is known.
func (c ClassSummary) HasCourse() bool {
	return c.Length != nil || c.Climb != nil
}

// ResultRow is one line of a per-class results page.
type ResultRow struct {
	Rank         int
	Placed       bool
	Registration string
	LastName     string
	FirstName    string
	FullName     string
	SIID         string
	Leg          string
	RelayID      string
	CheckTime    string
	StartTime    string
	FinishTime   string
	PenaltyTime  string
	Time         string
	Status       string
	NotCompeting bool
	Disqualified bool
	Mispunch     bool
	BadCheck     bool
}

// StartRow is one line of a per-class startlist.
type StartRow struct {
	Registration string
	LastName     string
	FirstName    string
	FullName     string
	SIID         string
	StartTime    string
	NotCompeting bool
}

// StageCell is one stage column of a totals row.
type StageCell struct {
	Stage  int
	Time   string
	Status string
	Rank   int
	Placed bool
}

// TotalRow is one line of a multi-stage totals page.
type TotalRow struct {
	Rank         int
	Placed       bool
	Registration string
	LastName     string
	FirstName    string
	FullName     string
	Stages       []StageCell
	Total        string
	Elapsed      string
	Penalties    int
	NotCompeting bool
}

// TotalTable is the totals of one class, as exported to spreadsheets.
type TotalTable struct {
	Class      ClassSummary
	StageCount int
	Rows       []TotalRow
}

// Meta is the context shared by every page.
type Meta struct {
	Event      model.Event
	Stage      int
	StageCount int
	Generated  time.Time
}

// Title is the event name, or "Results" when the event has none.
func (m Meta) Title() string {
	if name := m.Event.Get("name"); name != "" {
		return name
	}
	return "Results"
}

// IndexPage lists classes; used by every index template.
type IndexPage struct {
	Meta
	Classes []ClassSummary
}

// ResultsPage is the data for one class results page.
type ResultsPage struct {
	Meta
	Classes []ClassSummary
	Class   ClassSummary
	Rows    []ResultRow
}

// StartsPage is the data for one class startlist.
type StartsPage struct {
	Meta
	Classes    []ClassSummary
	Class      ClassSummary
	StageStart time.Time
	Rows       []StartRow
}

// TotalsPage is the data for one class totals page.
type TotalsPage struct {
	Meta
	Classes []ClassSummary
	Class   ClassSummary
	Stages  []int
	Rows    []TotalRow
}
