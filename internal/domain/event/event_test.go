package event_test

import (
	"errors"
	"testing"

	"github.com/okian/heats/internal/domain/event"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCatalog(t *testing.T) {
	Convey("Given the event catalog", t, func() {
		Convey("When listing every event", func() {
			all := event.All()

			Convey("Then it has seventeen entries in catalog order", func() {
				So(len(all), ShouldEqual, event.Count)
				So(all[0].Code(), ShouldEqual, "333")
				So(all[8].Code(), ShouldEqual, "333bf")
				So(all[16].Code(), ShouldEqual, "clock")
			})
		})

		Convey("When resolving codes", func() {
			e, ok := event.FromCode("444bf")
			_, unknown := event.FromCode("magic")

			Convey("Then known codes resolve and unknown ones are filtered", func() {
				So(ok, ShouldBeTrue)
				So(e, ShouldEqual, event.E444BF)
				So(unknown, ShouldBeFalse)
			})
		})

		Convey("When reading formats", func() {
			Convey("Then blindfolded events are ranked by single", func() {
				So(event.E333BF.Format(), ShouldEqual, event.FormatSingle)
				So(event.E444BF.Format(), ShouldEqual, event.FormatSingle)
				So(event.E555BF.Format(), ShouldEqual, event.FormatSingle)
				So(event.E333MBF.Format(), ShouldEqual, event.FormatSingle)
				So(event.E333.Format(), ShouldEqual, event.FormatAverage)
				So(event.E333FM.Format(), ShouldEqual, event.FormatAverage)
			})
		})

		Convey("When mapping to the governing event", func() {
			Convey("Then blindfolded variants map to their sighted base", func() {
				So(event.E333BF.Base(), ShouldEqual, event.E333)
				So(event.E333MBF.Base(), ShouldEqual, event.E333)
				So(event.E444BF.Base(), ShouldEqual, event.E444)
				So(event.E555BF.Base(), ShouldEqual, event.E555)
				So(event.Skewb.Base(), ShouldEqual, event.Skewb)
			})
		})
	})
}

func TestIdentifier(t *testing.T) {
	Convey("Given activity identifiers", t, func() {
		Convey("When parsing the accepted forms", func() {
			plain, err1 := event.ParseIdentifier("333fm")
			dashed, err2 := event.ParseIdentifier("333mbf-a2")
			ranged, err3 := event.ParseIdentifier("333fm..1")

			Convey("Then each resolves to event and attempt", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(err3, ShouldBeNil)
				So(plain, ShouldResemble, event.Identifier{Event: event.E333FM})
				So(dashed, ShouldResemble, event.Identifier{Event: event.E333MBF, Attempt: 2})
				So(ranged, ShouldResemble, event.Identifier{Event: event.E333FM, Attempt: 1})
				So(dashed.String(), ShouldEqual, "333mbf-a2")
			})
		})

		Convey("When parsing malformed identifiers", func() {
			_, err1 := event.ParseIdentifier("magic")
			_, err2 := event.ParseIdentifier("333-x1")
			_, err3 := event.ParseIdentifier("333-a0")

			Convey("Then typed errors are returned", func() {
				So(errors.Is(err1, event.ErrUnknownEvent), ShouldBeTrue)
				So(errors.Is(err2, event.ErrInvalidCode), ShouldBeTrue)
				So(errors.Is(err3, event.ErrInvalidCode), ShouldBeTrue)
			})
		})

		Convey("When comparing sets", func() {
			a := event.Set{{Event: event.E444BF}, {Event: event.E555BF}}
			b := event.Set{{Event: event.E444BF}, {Event: event.E555BF}}
			c := event.Set{{Event: event.E444BF}}

			Convey("Then equality and ordering follow the members", func() {
				So(a.Equal(b), ShouldBeTrue)
				So(a.Equal(c), ShouldBeFalse)
				So(c.Compare(a), ShouldBeLessThan, 0)
				So(a.String(), ShouldEqual, "444bf/555bf")
				So(a.Contains(event.Identifier{Event: event.E555BF}), ShouldBeTrue)
			})
		})
	})
}

func TestParseCode(t *testing.T) {
	Convey("Given schedule activity codes", t, func() {
		Convey("When the code has round, group and attempt", func() {
			c, err := event.ParseCode("333mbf-r1-g2-a3")

			Convey("Then all segments are parsed", func() {
				So(err, ShouldBeNil)
				So(c.Event, ShouldEqual, event.E333MBF)
				So(c.Round, ShouldEqual, 1)
				So(c.Group, ShouldEqual, 2)
				So(c.Attempt, ShouldEqual, 3)
				So(c.String(), ShouldEqual, "333mbf-r1-g2-a3")
				So(c.Identifier(), ShouldResemble, event.Identifier{Event: event.E333MBF, Attempt: 3})
			})
		})

		Convey("When the code is an other activity", func() {
			_, err := event.ParseCode("other-lunch")

			Convey("Then it is reported as skippable", func() {
				So(errors.Is(err, event.ErrOther), ShouldBeTrue)
			})
		})

		Convey("When the round is missing", func() {
			_, err := event.ParseCode("333")

			Convey("Then the code is invalid", func() {
				So(errors.Is(err, event.ErrInvalidCode), ShouldBeTrue)
			})
		})
	})
}
