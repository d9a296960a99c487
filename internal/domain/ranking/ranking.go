// Package ranking classifies runs and orders competitors within a class.
package ranking

import (
	"cmp"
	"slices"

	"github.com/okian/qehtml/internal/domain/model"
)

// Status is the outcome of one run.
type Status int

// Status values. OK is the zero value so a zero Status sorts first.
const (
	StatusOK Status = iota
	StatusDNS
	StatusDISQ
	StatusDNF
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusDNS:
		return "DNS"
	case StatusDISQ:
		return "DISQ"
	case StatusDNF:
		return "DNF"
	default:
		return "UNKNOWN"
	}
}

// Classify derives the status of a run. The first matching rule wins:
// not running, disqualified, no time, finished. The returned time is the
// run's elapsed time for StatusOK and nil otherwise.
func Classify(r model.Run) (Status, *int64) {
	switch {
	case !r.IsRunning:
		return StatusDNS, nil
	case r.Disqualified:
		return StatusDISQ, nil
	case r.TimeMS == nil:
		return StatusDNF, nil
	default:
		t := *r.TimeMS
		return StatusOK, &t
	}
}

// Ranked is an entry with its stage status and position.
type Ranked struct {
	model.Entry
	Status Status
	// Time is the counted elapsed time; nil unless Status is OK.
	Time *int64
	// Rank is the 1-based position in the sorted class list.
	Rank int
}

// Placed reports whether Rank is a real placing. Non-finishers and
// not-competing runners keep a position in the list but no placing.
func (r Ranked) Placed() bool {
	return r.Status == StatusOK && !r.NotCompeting
}

// RankStage classifies and orders the entries of one class at one stage:
// competing before not-competing, finishers before the rest, then by time.
// Full name and competitor id break remaining ties.
func RankStage(entries []model.Entry) []Ranked {
	out := make([]Ranked, len(entries))
	for i, e := range entries {
		st, t := Classify(e.Run)
		out[i] = Ranked{Entry: e, Status: st, Time: t}
	}

	slices.SortStableFunc(out, func(a, b Ranked) int {
		if c := compareBool(a.NotCompeting, b.NotCompeting); c != 0 {
			return c
		}
		if c := compareBool(a.Status != StatusOK, b.Status != StatusOK); c != 0 {
			return c
		}
		if c := compareTime(a.Time, b.Time); c != 0 {
			return c
		}
		if c := cmp.Compare(a.FullName(), b.FullName()); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// compareBool orders false before true.
func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// compareTime orders present times ascending and absent times last.
func compareTime(a, b *int64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return cmp.Compare(*a, *b)
	}
}
