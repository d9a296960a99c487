package ranking_test

import (
	"errors"
	"testing"

	"github.com/okian/qehtml/internal/domain/model"
	"github.com/okian/qehtml/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

func ptr(v int64) *int64 { return &v }

func finished(id int64, name string, ms int64) model.Entry {
	return model.Entry{
		Competitor: model.Competitor{ID: id, LastName: name},
		Run:        model.Run{IsRunning: true, TimeMS: ptr(ms)},
	}
}

func names(rs []ranking.Ranked) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.LastName
	}
	return out
}

func TestClassify(t *testing.T) {
	Convey("Given run flags", t, func() {
		Convey("When the competitor is not running", func() {
			Convey("Then the status is DNS whatever else is set", func() {
				for _, disq := range []bool{false, true} {
					for _, tm := range []*int64{nil, ptr(1000)} {
						st, got := ranking.Classify(model.Run{IsRunning: false, Disqualified: disq, TimeMS: tm})
						So(st, ShouldEqual, ranking.StatusDNS)
						So(got, ShouldBeNil)
					}
				}
			})
		})

		Convey("When running and disqualified", func() {
			Convey("Then the status is DISQ even with a time", func() {
				st, got := ranking.Classify(model.Run{IsRunning: true, Disqualified: true, TimeMS: ptr(5000)})
				So(st, ShouldEqual, ranking.StatusDISQ)
				So(got, ShouldBeNil)
			})
		})

		Convey("When running without a time", func() {
			Convey("Then the status is DNF", func() {
				st, got := ranking.Classify(model.Run{IsRunning: true})
				So(st, ShouldEqual, ranking.StatusDNF)
				So(got, ShouldBeNil)
			})
		})

		Convey("When running with a time", func() {
			Convey("Then the status is OK with that time", func() {
				st, got := ranking.Classify(model.Run{IsRunning: true, TimeMS: ptr(90_000)})
				So(st, ShouldEqual, ranking.StatusOK)
				So(*got, ShouldEqual, 90_000)
			})
		})

		Convey("When printing statuses", func() {
			So(ranking.StatusOK.String(), ShouldEqual, "OK")
			So(ranking.StatusDNS.String(), ShouldEqual, "DNS")
			So(ranking.StatusDISQ.String(), ShouldEqual, "DISQ")
			So(ranking.StatusDNF.String(), ShouldEqual, "DNF")
			So(ranking.Status(42).String(), ShouldEqual, "UNKNOWN")
		})
	})
}

func TestRankStage(t *testing.T) {
	Convey("Given a class with mixed outcomes", t, func() {
		nc := finished(4, "Forerunner", 50_000)
		nc.NotCompeting = true
		entries := []model.Entry{
			finished(1, "Hundred", 100_000),
			{Competitor: model.Competitor{ID: 2, LastName: "Quitter"}, Run: model.Run{IsRunning: true}},
			finished(3, "Ninety", 90_000),
			nc,
		}

		Convey("When ranking the stage", func() {
			ranked := ranking.RankStage(entries)

			Convey("Then finishers come first by time and not-competing is last", func() {
				So(names(ranked), ShouldResemble, []string{"Ninety", "Hundred", "Quitter", "Forerunner"})
			})

			Convey("And only competing finishers are placed", func() {
				So(ranked[0].Rank, ShouldEqual, 1)
				So(ranked[0].Placed(), ShouldBeTrue)
				So(ranked[1].Rank, ShouldEqual, 2)
				So(ranked[1].Placed(), ShouldBeTrue)
				So(ranked[2].Status, ShouldEqual, ranking.StatusDNF)
				So(ranked[2].Placed(), ShouldBeFalse)
				So(ranked[3].Status, ShouldEqual, ranking.StatusOK)
				So(ranked[3].Placed(), ShouldBeFalse)
			})

			Convey("And the input is left untouched", func() {
				So(entries[0].LastName, ShouldEqual, "Hundred")
			})
		})

		Convey("When two finishers share a time", func() {
			ranked := ranking.RankStage([]model.Entry{
				finished(9, "Zeman", 60_000),
				finished(8, "Adam", 60_000),
				finished(7, "Adam", 60_000),
			})

			Convey("Then name and id decide deterministically", func() {
				So(ranked[0].ID, ShouldEqual, 7)
				So(ranked[1].ID, ShouldEqual, 8)
				So(ranked[2].ID, ShouldEqual, 9)
			})
		})

		Convey("When the class is empty", func() {
			So(ranking.RankStage(nil), ShouldBeEmpty)
		})
	})
}

func TestTotals(t *testing.T) {
	Convey("Given a two stage totals accumulator", t, func() {
		totals, err := ranking.NewTotals(2)
		So(err, ShouldBeNil)
		So(totals.StageCount(), ShouldEqual, 2)

		dnf := model.Entry{Competitor: model.Competitor{ID: 3, LastName: "Slow"}, Run: model.Run{IsRunning: true}}

		So(totals.Add(1, []model.Entry{
			finished(1, "Fast", 60_000),
			finished(2, "Steady", 70_000),
			finished(3, "Slow", 50_000),
		}), ShouldBeNil)
		So(totals.Add(2, []model.Entry{
			finished(1, "Fast", 61_000),
			finished(2, "Steady", 40_000),
			dnf,
		}), ShouldBeNil)

		Convey("When computing standings", func() {
			st := totals.Standings()

			Convey("Then clean competitors are summed and ordered by total", func() {
				So(len(st), ShouldEqual, 3)
				So(st[0].Competitor.LastName, ShouldEqual, "Steady")
				So(*st[0].Total, ShouldEqual, 110_000)
				So(st[1].Competitor.LastName, ShouldEqual, "Fast")
				So(*st[1].Total, ShouldEqual, 121_000)
				So(st[0].Placed(), ShouldBeTrue)
			})

			Convey("And a DNF in any stage leaves the total absent and ranks last", func() {
				So(st[2].Competitor.LastName, ShouldEqual, "Slow")
				So(st[2].Total, ShouldBeNil)
				So(st[2].Penalties, ShouldEqual, 1)
				So(st[2].Elapsed, ShouldEqual, 50_000)
				So(st[2].Placed(), ShouldBeFalse)
			})

			Convey("And per stage slots carry the stage rank", func() {
				So(st[2].Stages[0].Rank, ShouldEqual, 1)
				So(st[2].Stages[0].Placed, ShouldBeTrue)
				So(st[2].Stages[1].Status, ShouldEqual, ranking.StatusDNF)
				So(st[0].Stages[1].Rank, ShouldEqual, 1)
			})
		})
	})

	Convey("Given competitors with gaps and not-competing stages", t, func() {
		totals, err := ranking.NewTotals(3)
		So(err, ShouldBeNil)

		nc := finished(5, "Guest", 10_000)
		nc.NotCompeting = true
		So(totals.Add(1, []model.Entry{finished(4, "Gap", 30_000), finished(5, "Guest", 10_000)}), ShouldBeNil)
		So(totals.Add(2, []model.Entry{finished(4, "Gap", 30_000), nc}), ShouldBeNil)
		So(totals.Add(3, []model.Entry{finished(5, "Guest", 10_000), finished(6, "Late", 500)}), ShouldBeNil)

		Convey("When a run row is missing for a counted stage", func() {
			st := totals.Standings()
			byName := map[string]ranking.Standing{}
			for _, s := range st {
				byName[s.Competitor.LastName] = s
			}

			Convey("Then that stage counts as DNS", func() {
				gap := byName["Gap"]
				So(gap.Stages[2].Status, ShouldEqual, ranking.StatusDNS)
				So(gap.Stages[2].Stage, ShouldEqual, 3)
				So(gap.Total, ShouldBeNil)
				So(byName["Late"].Penalties, ShouldEqual, 2)
			})

			Convey("And one not-competing stage marks the whole standing", func() {
				guest := byName["Guest"]
				So(guest.NotCompeting, ShouldBeTrue)
				So(*guest.Total, ShouldEqual, 30_000)
				So(guest.Placed(), ShouldBeFalse)
				So(st[len(st)-1].Competitor.LastName, ShouldEqual, "Guest")
			})

			Convey("And incomplete competitors order by name", func() {
				So(st[0].Competitor.LastName, ShouldEqual, "Gap")
				So(st[1].Competitor.LastName, ShouldEqual, "Late")
			})
		})
	})

	Convey("Given invalid stage parameters", t, func() {
		Convey("When the stage count is zero", func() {
			_, err := ranking.NewTotals(0)
			So(errors.Is(err, ranking.ErrNoStages), ShouldBeTrue)
		})

		Convey("When a stage outside the range is added", func() {
			totals, _ := ranking.NewTotals(2)
			So(errors.Is(totals.Add(3, nil), ranking.ErrStageOutOfRange), ShouldBeTrue)
			So(errors.Is(totals.Add(0, nil), ranking.ErrStageOutOfRange), ShouldBeTrue)
		})
	})
}
