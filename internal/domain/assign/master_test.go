package assign_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/heats/internal/domain/activity"
	"github.com/okian/heats/internal/domain/assign"
	"github.com/okian/heats/internal/domain/competitor"
	"github.com/okian/heats/internal/domain/event"
	"github.com/okian/heats/internal/domain/settings"
	"github.com/okian/heats/internal/domain/wcif"
	"github.com/okian/heats/internal/fixture"
	. "github.com/smartystreets/goconvey/convey"
)

func generate(opts ...fixture.Option) *wcif.Competition {
	c, err := fixture.Generate(opts...)
	So(err, ShouldBeNil)
	return c
}

func master(c *wcif.Competition, text string, opts ...assign.Option) *assign.Master {
	s, err := settings.Parse(text)
	So(err, ShouldBeNil)
	m, err := assign.New(c, s, opts...)
	So(err, ShouldBeNil)
	return m
}

func shouldHoldInvariants(m *assign.Master) {
	acts := m.Activities()
	for _, a := range acts {
		So(a.Capacity, ShouldEqual, 0)
		So(int(a.Assigned.Count()), ShouldEqual, a.InitialCapacity)
	}
	for i := range acts {
		for j := i + 1; j < len(acts); j++ {
			if m.Matrix().Collides(i, j) {
				So(acts[i].Assigned.IntersectionCardinality(acts[j].Assigned), ShouldEqual, 0)
			}
		}
	}
	for _, c := range m.Registry().All() {
		count := 0
		for _, a := range acts {
			if a.Assigned.Test(uint(c.ID)) {
				count++
				So(c.Assigned(a.Index), ShouldBeTrue)
			}
		}
		So(c.AssignmentCount(), ShouldEqual, count)
	}
}

func TestRunSequentialEvents(t *testing.T) {
	Convey("Given forty competitors in two back to back events", t, func() {
		c := generate(fixture.WithCompetitors(40), fixture.WithEvents("333", "222"), fixture.WithRegistrationRate(1))
		m := master(c, "stage 12;")

		Convey("When the assignment runs", func() {
			err := m.Run(context.Background())

			Convey("Then every activity is filled without conflicts", func() {
				So(err, ShouldBeNil)
				shouldHoldInvariants(m)
			})

			Convey("Then everyone competes exactly once per event", func() {
				for _, comp := range m.Registry().All() {
					for _, slot := range m.Slots() {
						n := 0
						for _, idx := range slot.Competing {
							if m.Activities()[idx].Assigned.Test(uint(comp.ID)) {
								n++
							}
						}
						So(n, ShouldEqual, 1)
					}
				}
				stats := m.Stats()
				So(stats.Clusters, ShouldEqual, 2)
				So(stats.Unplaced, ShouldEqual, 0)
				So(stats.Placed[assign.PhaseCombination][activity.Competing], ShouldEqual, 80)
			})

			Convey("Then delegates are spread over groups and never staff", func() {
				first := m.Slots()[0]
				var spread []int
				for _, idx := range first.Competing {
					spread = append(spread, m.Activities()[idx].DelegatesAssigned)
				}
				So(spread, ShouldResemble, []int{1, 1, 0, 0})
				for _, a := range m.Activities() {
					if a.Role != activity.Competing {
						So(a.Assigned.Test(0), ShouldBeFalse)
						So(a.Assigned.Test(1), ShouldBeFalse)
					}
				}
			})

			Convey("Then debt only moved by competing cost and staffing", func() {
				s := m.Settings()
				for _, comp := range m.Registry().All() {
					expected := 0.0
					if !comp.Roles.DebtExempt() {
						expected = s.CompetingCost(event.Identifier{Event: event.E333}) +
							s.CompetingCost(event.Identifier{Event: event.E222})
					}
					for _, idx := range comp.Assignments() {
						a := m.Activities()[idx]
						if a.Role != activity.Competing {
							expected -= s.StaffMultiplier(a.IDs[0].Event)
						}
					}
					So(comp.Debt(), ShouldAlmostEqual, expected, 1e-9)
				}
			})

			Convey("Then a second run is refused", func() {
				So(errors.Is(m.Run(context.Background()), assign.ErrAlreadyRan), ShouldBeTrue)
			})
		})
	})
}

func TestJudgeQualification(t *testing.T) {
	Convey("Given a thirteen year old without results in a multi-blind competition", t, func() {
		c := generate(fixture.WithCompetitors(40), fixture.WithEvents("333", "333mbf"), fixture.WithRegistrationRate(1))
		kid := &c.Persons[20]
		kid.Birthdate = wcif.NewDate(2011, time.January, 1)
		kid.PersonalBests = nil
		m := master(c, "stage 12;")
		const kidID = 20

		Convey("When candidates are resolved", func() {
			Convey("Then the kid may judge 3x3 but not multi-blind", func() {
				for _, a := range m.Activities() {
					if a.Role != activity.Judging {
						continue
					}
					if a.IDs[0].Event == event.E333MBF {
						So(a.Candidates.Test(kidID), ShouldBeFalse)
					}
				}
			})
		})

		Convey("When the assignment runs", func() {
			err := m.Run(context.Background())

			Convey("Then the kid never judges multi-blind", func() {
				So(err, ShouldBeNil)
				shouldHoldInvariants(m)
				for _, a := range m.Activities() {
					if a.Role == activity.Judging && a.IDs[0].Event == event.E333MBF {
						So(a.Assigned.Test(kidID), ShouldBeFalse)
					}
				}
			})
		})
	})
}

func TestInfeasible(t *testing.T) {
	Convey("Given one event where everybody competes at once", t, func() {
		c := generate(fixture.WithCompetitors(10), fixture.WithEvents("333"))
		m := master(c, "stage 20;")

		Convey("When the assignment runs", func() {
			err := m.Run(context.Background())

			Convey("Then no judge can be found", func() {
				So(errors.Is(err, assign.ErrInfeasible), ShouldBeTrue)
			})
		})
	})

	Convey("Given no competition", t, func() {
		_, err := assign.New(nil, nil)

		Convey("Then construction fails", func() {
			So(errors.Is(err, assign.ErrNoCompetition), ShouldBeTrue)
		})
	})
}

func TestDeterminism(t *testing.T) {
	Convey("Given the same input twice", t, func() {
		run := func() *assign.Master {
			m := master(generate(fixture.WithCompetitors(50), fixture.WithEvents("333", "222", "pyram")), "stage 14;")
			So(m.Run(context.Background()), ShouldBeNil)
			return m
		}
		first, second := run(), run()

		Convey("Then both runs assign identically", func() {
			So(len(second.Activities()), ShouldEqual, len(first.Activities()))
			for i, a := range first.Activities() {
				So(second.Activities()[i].Assigned.Equal(a.Assigned), ShouldBeTrue)
			}
		})
	})
}

func TestParallelFinals(t *testing.T) {
	Convey("Given two finals running in parallel rooms", t, func() {
		c := generate(
			fixture.WithCompetitors(40),
			fixture.WithEvents("333", "222"),
			fixture.WithRooms(2),
			fixture.WithRegistrationRate(1),
		)
		for i := range c.Persons {
			best333, best222 := 1200, 400
			if i >= 10 && i <= 12 {
				best333, best222 = 500, 100
			}
			c.Persons[i].PersonalBests = []wcif.PersonalBest{
				{EventID: "333", Best: best333, Type: "average"},
				{EventID: "222", Best: best222, Type: "average"},
			}
		}
		m := master(c, "stage 12; stage 12; no_judge 333; no_judge 222;")

		Convey("When the assignment runs", func() {
			err := m.Run(context.Background())

			Convey("Then each competitor's two groups never overlap", func() {
				So(err, ShouldBeNil)
				shouldHoldInvariants(m)
				So(m.Stats().Clusters, ShouldEqual, 1)
				for _, comp := range m.Registry().All() {
					var mine []*activity.Activity
					for _, idx := range comp.Assignments() {
						if a := m.Activities()[idx]; a.Role == activity.Competing {
							mine = append(mine, a)
						}
					}
					So(len(mine), ShouldEqual, 2)
					So(mine[0].Overlaps(mine[1]), ShouldBeFalse)
				}
			})

			Convey("Then the fast finalists share their groups", func() {
				for _, a := range m.Activities() {
					if a.Role == activity.Competing && a.Assigned.Test(10) {
						So(a.Assigned.Test(11), ShouldBeTrue)
						So(a.Assigned.Test(12), ShouldBeTrue)
					}
				}
			})
		})
	})
}

func TestIsFast(t *testing.T) {
	Convey("Given a field of sub-10 second solvers", t, func() {
		c := generate(fixture.WithCompetitors(12), fixture.WithEvents("333", "777"))
		for i := range c.Persons {
			c.Persons[i].PersonalBests = []wcif.PersonalBest{
				{EventID: "333", Best: 2000, Type: "average"},
				{EventID: "777", Best: 30000, Type: "average"},
			}
		}
		c.Persons[3].PersonalBests[0].Best = 950
		c.Persons[4].PersonalBests[0].Best = 1100
		c.Persons[5].PersonalBests[0].Best = 1450
		c.Persons[3].PersonalBests[1].Best = 20000
		c.Persons[5].Birthdate = wcif.NewDate(1990, time.January, 1)
		m := master(c, "stage 6;")
		get := func(id int) *competitor.Competitor {
			comp, ok := m.Registry().Get(id)
			So(ok, ShouldBeTrue)
			return comp
		}

		Convey("When checking the fast heuristic", func() {
			Convey("Then only results within a quarter of the best are fast", func() {
				So(m.IsFast(get(3), event.E333), ShouldBeTrue)
				So(m.IsFast(get(4), event.E333), ShouldBeTrue)
				So(m.IsFast(get(5), event.E333), ShouldBeFalse)
			})

			Convey("Then a 14.50 average still qualifies to scramble", func() {
				So(get(5).QualifiedScrambler(event.E333), ShouldBeTrue)
			})

			Convey("Then excluded events are never fast", func() {
				So(m.IsFast(get(3), event.E777), ShouldBeFalse)
			})
		})

		Convey("When the factor is widened", func() {
			wide := master(c, "stage 6;", assign.WithFastFactor(1.6), assign.WithFastExcluded())

			Convey("Then slower results and excluded events count", func() {
				comp, _ := wide.Registry().Get(5)
				So(wide.IsFast(comp, event.E333), ShouldBeTrue)
				fastest, _ := wide.Registry().Get(3)
				So(wide.IsFast(fastest, event.E777), ShouldBeTrue)
			})
		})
	})
}

// staffing builds eight adults in back to back 333, 222 and pyram slots.
// Persons in inside register for 222 only; the rest register for 333 and
// pyram, which makes them available during 222 without competing in it.
func staffing(inside int, best222 func(id int) int) *wcif.Competition {
	c := generate(
		fixture.WithCompetitors(8),
		fixture.WithDelegates(0),
		fixture.WithOrganizers(0),
		fixture.WithYoungShare(0),
		fixture.WithEvents("333", "222", "pyram"),
	)
	for i := range c.Persons {
		p := &c.Persons[i]
		p.Birthdate = wcif.NewDate(1990, time.January, 1)
		p.Registration.EventIDs = []string{"333", "pyram"}
		if i < inside {
			p.Registration.EventIDs = []string{"222"}
		}
		p.PersonalBests = []wcif.PersonalBest{
			{EventID: "333", Best: 1000, Type: "average"},
			{EventID: "222", Best: best222(i), Type: "average"},
			{EventID: "pyram", Best: 500, Type: "average"},
		}
	}
	return c
}

func staffMaster(c *wcif.Competition, text string, opts ...settings.Option) *assign.Master {
	s, err := settings.Parse(text, opts...)
	So(err, ShouldBeNil)
	m, err := assign.New(c, s)
	So(err, ShouldBeNil)
	return m
}

func find(m *assign.Master, e event.Event, group int, role activity.Role) *activity.Activity {
	for _, a := range m.Activities() {
		if a.IDs[0].Event == e && a.Group == group && a.Role == role {
			return a
		}
	}
	return nil
}

func TestBackfill(t *testing.T) {
	const others = "no_judge 333; no_scram 333; no_judge pyram; no_scram pyram;"

	Convey("Given one 222 group needing a scrambler and a judge from outside it", t, func() {
		c := staffing(4, func(id int) int {
			if id == 4 || id == 5 {
				return 300
			}
			return 900
		})
		m := staffMaster(c, "stage 4; "+others,
			settings.WithScrambleCosts(map[event.Event]float64{event.E222: 0.25}),
			settings.WithJudgeCosts(map[event.Event]float64{event.E222: 0.25}),
		)
		debts := map[int]float64{4: 5, 5: 1, 6: 3, 7: 3}
		for id, d := range debts {
			comp, _ := m.Registry().Get(id)
			comp.AddDebt(d)
		}
		scram := find(m, event.E222, 0, activity.Scrambling)
		judge := find(m, event.E222, 0, activity.Judging)

		Convey("When candidates are resolved", func() {
			Convey("Then only fast adults may scramble and the group's own entrants are preferred", func() {
				So(scram.Capacity, ShouldEqual, 1)
				So(judge.Capacity, ShouldEqual, 1)
				So(members(scram), ShouldResemble, []int{4, 5})
				So(members(judge), ShouldResemble, []int{0, 1, 2, 3, 4, 5, 6, 7})
				So(int(judge.Preferred.Count()), ShouldEqual, 4)
			})
		})

		Convey("When the assignment runs", func() {
			So(m.Run(context.Background()), ShouldBeNil)
			shouldHoldInvariants(m)

			Convey("Then the scarcer scrambling seat takes the most indebted first", func() {
				So(scram.AssignedIDs(), ShouldResemble, []int{4})
			})

			Convey("Then the judge is the next most indebted, ties to the lowest id", func() {
				So(judge.AssignedIDs(), ShouldResemble, []int{6})
			})

			Convey("Then staffing pays off the staff multiplier", func() {
				mult := m.Settings().StaffMultiplier(event.E222)
				for id, want := range map[int]float64{4: 5 - mult, 5: 1, 6: 3 - mult, 7: 3} {
					comp, _ := m.Registry().Get(id)
					So(comp.Debt(), ShouldAlmostEqual, want, 1e-9)
				}
			})
		})
	})

	Convey("Given two 222 groups judging each other", t, func() {
		c := staffing(6, func(int) int { return 900 })
		m := staffMaster(c, "stage 3; no_scram 222; "+others,
			settings.WithJudgeCosts(map[event.Event]float64{event.E222: 0.3}),
		)
		debts := map[int]float64{0: 1, 1: 2, 2: 2, 3: 0.5, 4: 1.5, 5: 1.5, 6: 10, 7: 9}
		for id, d := range debts {
			comp, _ := m.Registry().Get(id)
			comp.AddDebt(d)
		}

		Convey("When the assignment runs", func() {
			So(m.Run(context.Background()), ShouldBeNil)
			shouldHoldInvariants(m)

			Convey("Then each judge comes from the other group despite higher outside debt", func() {
				for g := 0; g < 2; g++ {
					judge := find(m, event.E222, g, activity.Judging)
					other := find(m, event.E222, 1-g, activity.Competing)
					So(judge.InitialCapacity, ShouldEqual, 1)

					want := -1
					for _, id := range other.AssignedIDs() {
						if want < 0 || debts[id] > debts[want] {
							want = id
						}
					}
					So(judge.AssignedIDs(), ShouldResemble, []int{want})
				}
			})
		})
	})
}

func members(a *activity.Activity) []int {
	var out []int
	for i, ok := a.Candidates.NextSet(0); ok; i, ok = a.Candidates.NextSet(i + 1) {
		out = append(out, int(i))
	}
	return out
}
