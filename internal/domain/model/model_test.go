package model_test

import (
	"context"
	"testing"

	"github.com/okian/heats/internal/domain/assign"
	"github.com/okian/heats/internal/domain/model"
	"github.com/okian/heats/internal/domain/settings"
	"github.com/okian/heats/internal/fixture"
	"github.com/smartystreets/goconvey/convey"
)

func TestFromMaster(t *testing.T) {
	convey.Convey("Given a finished run over two events", t, func() {
		comp, err := fixture.Generate(
			fixture.WithCompetitors(40),
			fixture.WithEvents("333", "222"),
			fixture.WithRegistrationRate(1),
		)
		convey.So(err, convey.ShouldBeNil)
		s, err := settings.Parse("stage 12;")
		convey.So(err, convey.ShouldBeNil)
		m, err := assign.New(comp, s)
		convey.So(err, convey.ShouldBeNil)
		convey.So(m.Run(context.Background()), convey.ShouldBeNil)

		convey.Convey("When collecting the result", func() {
			r := model.FromMaster("run-1", m)

			convey.Convey("Then every activity has a row", func() {
				convey.So(r.RunID, convey.ShouldEqual, "run-1")
				convey.So(r.Competition, convey.ShouldEqual, comp.ID)
				convey.So(len(r.Activities), convey.ShouldEqual, len(m.Activities()))
				for _, a := range r.Activities {
					convey.So(len(a.Assigned), convey.ShouldEqual, a.Capacity)
				}
			})

			convey.Convey("Then rows are ordered by event, group and role", func() {
				first := r.Activities[0]
				convey.So(first.IDs, convey.ShouldResemble, []string{"333"})
				convey.So(first.Label(), convey.ShouldEqual, "333")
				convey.So(first.Group, convey.ShouldEqual, 1)
				convey.So(first.Role, convey.ShouldEqual, "competing")
				convey.So(first.Code, convey.ShouldEqual, "333-r1-g1")
				convey.So(r.Activities[1].Role, convey.ShouldEqual, "scrambling")
				convey.So(r.Activities[2].Role, convey.ShouldEqual, "judging")

				last := r.Activities[len(r.Activities)-1]
				convey.So(last.IDs, convey.ShouldResemble, []string{"222"})
				convey.So(last.Group, convey.ShouldEqual, 4)
				convey.So(last.Role, convey.ShouldEqual, "judging")
			})

			convey.Convey("Then competitors are listed with their totals", func() {
				convey.So(len(r.Competitors), convey.ShouldEqual, 40)
				c, ok := r.Competitor(5)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(c.RegistrantID, convey.ShouldEqual, 6)
				convey.So(len(r.For(5)), convey.ShouldEqual, c.Assignments)

				_, ok = r.Competitor(400)
				convey.So(ok, convey.ShouldBeFalse)
			})

			convey.Convey("Then delegates are flagged", func() {
				c, _ := r.Competitor(0)
				convey.So(c.Delegate, convey.ShouldBeTrue)
				c, _ = r.Competitor(10)
				convey.So(c.Delegate, convey.ShouldBeFalse)
			})
		})
	})
}
