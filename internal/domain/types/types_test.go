package types_test

import (
	"testing"
	"time"

	"github.com/okian/qehtml/internal/domain/model"
	types "github.com/okian/qehtml/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClassSummary(t *testing.T) {
	Convey("Given a class summary", t, func() {
		Convey("When no course is known", func() {
			c := types.ClassSummary{ID: 1, Name: "H21", ASCII: "h21"}

			Convey("Then it reports no course", func() {
				So(c.HasCourse(), ShouldBeFalse)
			})
		})

		Convey("When only the length is known", func() {
			length := int64(5200)
			c := types.ClassSummary{Name: "D21", Length: &length}

			Convey("Then it reports a course", func() {
				So(c.HasCourse(), ShouldBeTrue)
			})
		})

		Convey("When both length and climb are known", func() {
			length, climb := int64(5200), int64(140)
			c := types.ClassSummary{Length: &length, Climb: &climb}

			Convey("Then it reports a course", func() {
				So(c.HasCourse(), ShouldBeTrue)
				So(*c.Climb, ShouldEqual, 140)
			})
		})
	})
}

func TestMeta(t *testing.T) {
	Convey("Given page metadata", t, func() {
		Convey("When the event has a name", func() {
			m := types.Meta{Event: model.Event{"name": "Jihlava Cup", "date": "2024-05-04"}}

			Convey("Then the title is the event name", func() {
				So(m.Title(), ShouldEqual, "Jihlava Cup")
			})
		})

		Convey("When the event has no metadata", func() {
			m := types.Meta{}

			Convey("Then the title falls back", func() {
				So(m.Title(), ShouldEqual, "Results")
			})
		})

		Convey("When embedded in a page", func() {
			now := time.Date(2024, 5, 4, 10, 0, 0, 0, time.UTC)
			p := types.ResultsPage{
				Meta:  types.Meta{Stage: 2, Generated: now},
				Class: types.ClassSummary{Name: "H21"},
				Rows:  []types.ResultRow{{Rank: 1, Placed: true, Time: "45:10", Status: "OK"}},
			}

			Convey("Then meta fields are promoted for templates", func() {
				So(p.Stage, ShouldEqual, 2)
				So(p.Generated, ShouldEqual, now)
				So(p.Title(), ShouldEqual, "Results")
			})
		})
	})
}
