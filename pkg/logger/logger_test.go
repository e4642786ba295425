package logger_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/okian/heats/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInit(t *testing.T) {
	Convey("Given the process logger", t, func() {
		var buf bytes.Buffer
		So(logger.Init(logger.WithWriter(&buf)), ShouldBeNil)
		defer func() { So(logger.Sync(), ShouldBeNil) }()

		Convey("When logging at info", func() {
			logger.Get().Info(context.Background(), "run started", logger.String("run_id", "abc"), logger.Int("competitors", 3))

			Convey("Then the record carries fields and source", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "run started")
				So(out, ShouldContainSubstring, "run_id=abc")
				So(out, ShouldContainSubstring, "competitors=3")
				So(out, ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When debug is disabled", func() {
			logger.Get().Debug(context.Background(), "hidden")

			Convey("Then nothing is written", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
		})

		Convey("When the level is lowered", func() {
			So(logger.SetLevelString("DEBUG"), ShouldBeNil)
			logger.Named("assign").Debug(context.Background(), "cluster", logger.Int("size", 2))

			Convey("Then debug records appear under the group", func() {
				So(buf.String(), ShouldContainSubstring, "assign.size=2")
			})
		})

		Convey("When the level is unknown", func() {
			err := logger.SetLevelString("chatty")

			Convey("Then an error is returned", func() {
				So(errors.Is(err, logger.ErrUnknownLevel), ShouldBeTrue)
			})
		})
	})
}

func TestNew(t *testing.T) {
	Convey("Given a standalone JSON logger", t, func() {
		var buf bytes.Buffer
		l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true), logger.WithLevel(slog.LevelDebug))

		Convey("When logging with bound fields", func() {
			l.With(logger.String("run_id", "r1")).Warn(context.Background(), "slow",
				logger.Duration("took", time.Second), logger.Bool("ok", false), logger.Float64("debt", 1.5))

			Convey("Then one JSON object is written", func() {
				var rec map[string]any
				So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)
				So(rec["msg"], ShouldEqual, "slow")
				So(rec["level"], ShouldEqual, "WARN")
				So(rec["run_id"], ShouldEqual, "r1")
				So(rec["ok"], ShouldEqual, false)
				So(rec["debt"], ShouldEqual, 1.5)
			})
		})
	})

	Convey("Given the no-op logger", t, func() {
		l := logger.Nop()

		Convey("When it is used", func() {
			Convey("Then it does not panic", func() {
				So(func() {
					l.Named("x").With(logger.Int("a", 1)).Info(context.Background(), "dropped")
					l.Error(context.Background(), "dropped", logger.Error(errors.New("boom")))
				}, ShouldNotPanic)
			})
		})
	})
}
