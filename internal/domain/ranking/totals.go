package ranking

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/okian/qehtml/internal/domain/model"
)

// StageSlot is a competitor's result at one counted stage.
type StageSlot struct {
	Stage  int
	Status Status
	Time   *int64
	Rank   int
	Placed bool
}

// Standing is a competitor's aggregate over all counted stages.
type Standing struct {
	Competitor model.Competitor
	Stages     []StageSlot
	// Total is the summed time; nil unless every counted stage is OK.
	Total *int64
	// Elapsed sums the OK stages only, whatever the other stages did.
	Elapsed int64
	// Penalties counts stages that are not OK.
	Penalties    int
	NotCompeting bool
	Rank         int
}

// Placed reports whether the overall rank is a real placing.
func (s Standing) Placed() bool {
	return s.Total != nil && !s.NotCompeting
}

// Totals accumulates per-stage results of one class into standings.
type Totals struct {
	stageCount int
	byID       map[int64]*acc
	order      []int64
}

type acc struct {
	competitor   model.Competitor
	slots        []*StageSlot
	notCompeting bool
}

// NewTotals prepares an accumulator over stages 1..stageCount.
func NewTotals(stageCount int) (*Totals, error) {
	if stageCount < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrNoStages, stageCount)
	}
	return &Totals{
		stageCount: stageCount,
		byID:       make(map[int64]*acc),
	}, nil
}

// StageCount returns the number of counted stages.
func (t *Totals) StageCount() int { return t.stageCount }

// Add ranks the class entries of one stage and records each competitor's slot.
// Adding the same stage twice replaces the earlier slots.
func (t *Totals) Add(stage int, entries []model.Entry) error {
	if stage < 1 || stage > t.stageCount {
		return fmt.Errorf("%w: stage %d of %d", ErrStageOutOfRange, stage, t.stageCount)
	}
	for _, r := range RankStage(entries) {
		a, ok := t.byID[r.ID]
		if !ok {
			a = &acc{competitor: r.Competitor, slots: make([]*StageSlot, t.stageCount)}
			t.byID[r.ID] = a
			t.order = append(t.order, r.ID)
		}
		a.notCompeting = a.notCompeting || r.NotCompeting
		a.slots[stage-1] = &StageSlot{
			Stage:  stage,
			Status: r.Status,
			Time:   r.Time,
			Rank:   r.Rank,
			Placed: r.Placed(),
		}
	}
	return nil
}

// Standings returns the ordered standings. A competitor with no run for a
// counted stage is treated as not having started it.
//
// Order: competing first, then clean (all OK) before any non-OK stage, then
// total time, then full name, then competitor id.
func (t *Totals) Standings() []Standing {
	out := make([]Standing, 0, len(t.order))
	for _, id := range t.order {
		a := t.byID[id]
		s := Standing{
			Competitor:   a.competitor,
			Stages:       make([]StageSlot, t.stageCount),
			NotCompeting: a.notCompeting,
		}
		for i, slot := range a.slots {
			if slot == nil {
				slot = &StageSlot{Stage: i + 1, Status: StatusDNS}
			}
			s.Stages[i] = *slot
			if slot.Status == StatusOK && slot.Time != nil {
				s.Elapsed += *slot.Time
			} else {
				s.Penalties++
			}
		}
		if s.Penalties == 0 {
			total := s.Elapsed
			s.Total = &total
		}
		out = append(out, s)
	}

	slices.SortStableFunc(out, func(a, b Standing) int {
		if c := compareBool(a.NotCompeting, b.NotCompeting); c != 0 {
			return c
		}
		if c := compareBool(a.Penalties > 0, b.Penalties > 0); c != 0 {
			return c
		}
		if c := compareTime(a.Total, b.Total); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Competitor.FullName(), b.Competitor.FullName()); c != 0 {
			return c
		}
		return cmp.Compare(a.Competitor.ID, b.Competitor.ID)
	})

	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
