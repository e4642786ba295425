package fixture_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/heats/internal/fixture"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerate(t *testing.T) {
	Convey("Given the default fixture", t, func() {
		c, err := fixture.Generate()

		Convey("When it is generated", func() {
			Convey("Then every competitor is accepted and enters the first event", func() {
				So(err, ShouldBeNil)
				So(len(c.Persons), ShouldEqual, 60)
				for _, p := range c.Persons {
					So(p.Accepted(), ShouldBeTrue)
					So(p.RegisteredFor("333"), ShouldBeTrue)
				}
				So(c.Persons[0].Roles, ShouldResemble, []string{"delegate"})
				So(c.Persons[2].Roles, ShouldResemble, []string{"organizer"})
			})

			Convey("Then first rounds run back to back with a lunch after", func() {
				acts := c.Rooms()[0].Activities
				So(len(acts), ShouldEqual, 4)
				So(acts[0].ActivityCode, ShouldEqual, "333-r1")
				So(acts[1].StartTime, ShouldEqual, acts[0].EndTime)
				So(acts[3].ActivityCode, ShouldEqual, "other-lunch")
				So(acts[0].StartTime.Hour(), ShouldEqual, 9)
			})
		})

		Convey("When it is generated twice with the same seed", func() {
			again, _ := fixture.Generate()

			Convey("Then the output is identical", func() {
				So(again.Persons, ShouldResemble, c.Persons)
			})
		})
	})

	Convey("Given shared limits and parallel rooms", t, func() {
		c, err := fixture.Generate(
			fixture.WithEvents("333", "444bf", "555bf", "222"),
			fixture.WithSharedLimit("444bf", "555bf"),
			fixture.WithRooms(2),
			fixture.WithRounds(2),
			fixture.WithSlotLength(30*time.Minute),
		)

		Convey("When it is generated", func() {
			Convey("Then linked events share a window and a cumulative limit", func() {
				So(err, ShouldBeNil)
				room2 := c.Rooms()[1].Activities
				So(room2[0].ActivityCode, ShouldEqual, "444bf-r1")
				So(room2[1].ActivityCode, ShouldEqual, "555bf-r1")
				So(room2[0].StartTime, ShouldEqual, room2[1].StartTime)
				ev, _ := c.Event("555bf")
				So(ev.Rounds[0].TimeLimit.CumulativeRoundIDs, ShouldResemble, []string{"444bf-r1", "555bf-r1"})
				So(len(ev.Rounds), ShouldEqual, 2)
			})

			Convey("Then parallel rooms overlap", func() {
				So(c.Rooms()[0].Activities[0].StartTime, ShouldEqual, c.Rooms()[1].Activities[0].StartTime)
			})
		})
	})

	Convey("Given an unknown event", t, func() {
		_, err := fixture.Generate(fixture.WithEvents("magic"))

		Convey("Then generation fails", func() {
			So(errors.Is(err, fixture.ErrUnknownEvent), ShouldBeTrue)
		})
	})
}
