package app

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"github.com/okian/qehtml/internal/domain/format"
	"github.com/okian/qehtml/internal/domain/model"
	"github.com/okian/qehtml/internal/domain/ranking"
	"github.com/okian/qehtml/internal/domain/types"
)

// summarize turns classes into summaries and rejects two classes sharing a filename.
func summarize(classes []model.Class) ([]types.ClassSummary, error) {
	out := make([]types.ClassSummary, len(classes))
	seen := make(map[string]string, len(classes))
	for i, c := range classes {
		ascii := format.ASCIIName(c.Name)
		if prev, ok := seen[ascii]; ok {
			return nil, fmt.Errorf("%w: %q and %q both map to %q", ErrDuplicateFilename, prev, c.Name, ascii)
		}
		seen[ascii] = c.Name
		out[i] = types.ClassSummary{
			ID:     c.ID,
			Name:   c.Name,
			ASCII:  ascii,
			Length: c.Length,
			Climb:  c.Climb,
		}
	}
	return out, nil
}

// finished reports whether a run has reached the finish.
func finished(e model.Entry) bool {
	return e.IsRunning && e.FinishTimeMS != nil && *e.FinishTimeMS > 0
}

func resultRows(entries []model.Entry, hours bool) []types.ResultRow {
	shown := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		if finished(e) {
			shown = append(shown, e)
		}
	}

	ranked := ranking.RankStage(shown)
	rows := make([]types.ResultRow, len(ranked))
	for i, r := range ranked {
		rows[i] = types.ResultRow{
			Rank:         r.Rank,
			Placed:       r.Placed(),
			Registration: r.Registration,
			LastName:     r.LastName,
			FirstName:    r.FirstName,
			FullName:     r.FullName(),
			SIID:         optInt(r.SIID),
			Leg:          optInt(r.Leg),
			RelayID:      optInt(r.RelayID),
			CheckTime:    format.Time(r.CheckTimeMS, hours),
			StartTime:    format.Time(r.StartTimeMS, hours),
			FinishTime:   format.Time(r.FinishTimeMS, hours),
			PenaltyTime:  format.Time(r.PenaltyTimeMS, hours),
			Time:         format.Time(r.Time, hours),
			Status:       r.Status.String(),
			NotCompeting: r.NotCompeting,
			Disqualified: r.Disqualified,
			Mispunch:     r.Mispunch,
			BadCheck:     r.BadCheck,
		}
	}
	return rows
}

// startRows orders a startlist by start time, unassigned starts last, then by name.
func startRows(entries []model.Entry, hours bool) []types.StartRow {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b model.Entry) int {
		switch {
		case a.StartTimeMS == nil && b.StartTimeMS != nil:
			return 1
		case a.StartTimeMS != nil && b.StartTimeMS == nil:
			return -1
		case a.StartTimeMS != nil && b.StartTimeMS != nil:
			if c := cmp.Compare(*a.StartTimeMS, *b.StartTimeMS); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.FullName(), b.FullName())
	})

	rows := make([]types.StartRow, len(sorted))
	for i, e := range sorted {
		rows[i] = types.StartRow{
			Registration: e.Registration,
			LastName:     e.LastName,
			FirstName:    e.FirstName,
			FullName:     e.FullName(),
			SIID:         optInt(e.SIID),
			StartTime:    format.Time(e.StartTimeMS, hours),
			NotCompeting: e.NotCompeting,
		}
	}
	return rows
}

func totalRows(standings []ranking.Standing, hours bool) []types.TotalRow {
	rows := make([]types.TotalRow, len(standings))
	for i, s := range standings {
		cells := make([]types.StageCell, len(s.Stages))
		for j, slot := range s.Stages {
			cells[j] = types.StageCell{
				Stage:  slot.Stage,
				Time:   format.Time(slot.Time, hours),
				Status: slot.Status.String(),
				Rank:   slot.Rank,
				Placed: slot.Placed,
			}
		}
		rows[i] = types.TotalRow{
			Rank:         s.Rank,
			Placed:       s.Placed(),
			Registration: s.Competitor.Registration,
			LastName:     s.Competitor.LastName,
			FirstName:    s.Competitor.FirstName,
			FullName:     s.Competitor.FullName(),
			Stages:       cells,
			Total:        format.Time(s.Total, hours),
			Elapsed:      format.Millis(s.Elapsed, hours),
			Penalties:    s.Penalties,
			NotCompeting: s.NotCompeting,
		}
	}
	return rows
}

func optInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
