package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

// value returns the counter or gauge value of the first series of name whose
// labels include want.
func value(registry *prometheus.Registry, name string, want map[string]string) float64 {
	families, err := registry.Gather()
	So(err, ShouldBeNil)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	series:
		for _, metric := range f.GetMetric() {
			got := map[string]string{}
			for _, lp := range metric.GetLabel() {
				got[lp.GetName()] = lp.GetValue()
			}
			for k, v := range want {
				if got[k] != v {
					continue series
				}
			}
			if c := metric.GetCounter(); c != nil {
				return c.GetValue()
			}
			if g := metric.GetGauge(); g != nil {
				return g.GetValue()
			}
			if h := metric.GetHistogram(); h != nil {
				return float64(h.GetSampleCount())
			}
		}
	}
	return -1
}

func TestMetricsOptions(t *testing.T) {
	Convey("Given a manager with custom options", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(
			WithPrometheusRegistry(registry),
			WithNamespace("test"),
			WithSubsystem("engine"),
			WithDurationBuckets([]float64{0.1, 1}),
			WithCompetition("SyntheticOpen"),
		)

		Convey("When a run is recorded", func() {
			m.RecordRun(OutcomeSuccess, 20*time.Millisecond)

			Convey("Then names and constant labels follow the options", func() {
				So(value(registry, "test_engine_runs_total", map[string]string{
					"outcome":     OutcomeSuccess,
					"competition": "SyntheticOpen",
				}), ShouldEqual, 1)
				So(value(registry, "test_engine_run_duration_seconds", nil), ShouldEqual, 1)
				So(value(registry, "test_engine_last_run_duration_milliseconds", nil), ShouldEqual, 20)
			})
		})

		Convey("When empty values are passed", func() {
			other := prometheus.NewRegistry()
			d := NewManager(
				WithPrometheusRegistry(other),
				WithNamespace(""),
				WithSubsystem(""),
				WithDurationBuckets([]float64{1, 0.5}),
				WithConstLabel("", "x"),
			)
			d.SetCompetitors(3)

			Convey("Then the defaults are kept", func() {
				So(value(other, "heats_assign_competitors", nil), ShouldEqual, 3)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a manager on its own registry", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(WithPrometheusRegistry(registry))

		Convey("When a run's counters are recorded", func() {
			m.SetActivities("competing", 8)
			m.SetActivities("judging", 8)
			m.SetActivities("competing", 4)
			m.SetCompetitors(40)
			m.RecordClusters(2)
			m.RecordCombinations(30)
			m.RecordCombinations(12)
			m.RecordPlacements("combination", "competing", 80)
			m.RecordPlacements("backfill", "judging", 24)
			m.RecordPlacements("backfill", "scrambling", 0)
			m.RecordBackfill(24)
			m.RecordSkipped(1)
			m.RecordRun(OutcomeInfeasible, time.Second)

			Convey("Then gauges hold the last value", func() {
				So(value(registry, "heats_assign_activities", map[string]string{"role": "competing"}), ShouldEqual, 4)
				So(value(registry, "heats_assign_activities", map[string]string{"role": "judging"}), ShouldEqual, 8)
				So(value(registry, "heats_assign_competitors", nil), ShouldEqual, 40)
			})

			Convey("Then counters accumulate", func() {
				So(value(registry, "heats_assign_clusters_total", nil), ShouldEqual, 2)
				So(value(registry, "heats_assign_combinations_total", nil), ShouldEqual, 42)
				So(value(registry, "heats_assign_placements_total",
					map[string]string{"phase": "combination", "role": "competing"}), ShouldEqual, 80)
				So(value(registry, "heats_assign_backfill_iterations_total", nil), ShouldEqual, 24)
				So(value(registry, "heats_assign_skipped_slots_total", nil), ShouldEqual, 1)
				So(value(registry, "heats_assign_runs_total", map[string]string{"outcome": OutcomeInfeasible}), ShouldEqual, 1)
			})

			Convey("Then zero placements create no series", func() {
				So(value(registry, "heats_assign_placements_total",
					map[string]string{"phase": "backfill", "role": "scrambling"}), ShouldEqual, -1)
			})
		})
	})
}

func TestWriteTextfile(t *testing.T) {
	Convey("Given recorded metrics", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(WithPrometheusRegistry(registry))
		m.RecordRun(OutcomeSuccess, time.Millisecond)
		dir := t.TempDir()

		Convey("When writing a textfile", func() {
			path := filepath.Join(dir, "heats.prom")
			err := m.WriteTextfile(path)

			Convey("Then the file holds the text exposition", func() {
				So(err, ShouldBeNil)
				data, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				So(string(data), ShouldContainSubstring, `heats_assign_runs_total{outcome="success"} 1`)
			})
		})

		Convey("When the directory does not exist", func() {
			err := m.WriteTextfile(filepath.Join(dir, "missing", "heats.prom"))

			Convey("Then the error is wrapped", func() {
				So(errors.Is(err, ErrWriteTextfile), ShouldBeTrue)
			})
		})

		Convey("When no path is given", func() {
			err := m.WriteTextfile("")

			Convey("Then nothing is written", func() {
				So(err, ShouldEqual, ErrNoTextfile)
			})
		})
	})

	Convey("Given the global manager", t, func() {
		RecordRun(OutcomeError, time.Millisecond)
		SetActivities("scrambling", 2)
		SetCompetitors(1)
		RecordClusters(1)
		RecordCombinations(1)
		RecordPlacements("backfill", "judging", 1)
		RecordBackfill(1)
		RecordSkipped(1)

		Convey("Then the custom registry exposes its series", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			names := []string{}
			for _, f := range families {
				names = append(names, f.GetName())
			}
			So(strings.Join(names, ","), ShouldContainSubstring, "heats_assign_runs_total")
		})
	})
}
