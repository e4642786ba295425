// Package service runs one assignment over a competition: it parses the
// settings, drives the engine and reports what happened through logs and
// metrics.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/okian/heats/internal/domain/activity"
	"github.com/okian/heats/internal/domain/assign"
	"github.com/okian/heats/internal/domain/competitor"
	"github.com/okian/heats/internal/domain/event"
	"github.com/okian/heats/internal/domain/model"
	"github.com/okian/heats/internal/domain/settings"
	"github.com/okian/heats/internal/domain/wcif"
	"github.com/okian/heats/pkg/logger"
	"github.com/okian/heats/pkg/metrics"
)

// Service assigns competitions. A Service holds configuration only and can
// run any number of competitions; each Run builds its own engine.
type Service struct {
	settingsText string
	settingsOpts []settings.Option
	assignOpts   []assign.Option
	registryOpts []competitor.Option

	newRunID func() string
	metrics  *metrics.Manager
	logger   logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records runs on m instead of the global manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithSettingsText sets the settings language text parsed on every run.
func WithSettingsText(text string) Option {
	return func(s *Service) { s.settingsText = text }
}

// WithDefaultStageCapacity sets the capacity of rooms without a stage statement.
func WithDefaultStageCapacity(n int) Option {
	return func(s *Service) {
		s.settingsOpts = append(s.settingsOpts, settings.WithDefaultStageCapacity(n))
	}
}

// WithScrambleCosts overrides scramble coefficients.
func WithScrambleCosts(costs map[event.Event]float64) Option {
	return func(s *Service) {
		if len(costs) > 0 {
			s.settingsOpts = append(s.settingsOpts, settings.WithScrambleCosts(costs))
		}
	}
}

// WithJudgeCosts overrides judge coefficients.
func WithJudgeCosts(costs map[event.Event]float64) Option {
	return func(s *Service) {
		if len(costs) > 0 {
			s.settingsOpts = append(s.settingsOpts, settings.WithJudgeCosts(costs))
		}
	}
}

// WithStaffMultipliers overrides staff multipliers.
func WithStaffMultipliers(m map[event.Event]float64) Option {
	return func(s *Service) {
		if len(m) > 0 {
			s.settingsOpts = append(s.settingsOpts, settings.WithStaffMultipliers(m))
		}
	}
}

// WithFastFactor sets the fast heuristic factor.
func WithFastFactor(f float64) Option {
	return func(s *Service) { s.assignOpts = append(s.assignOpts, assign.WithFastFactor(f)) }
}

// WithFastExcluded replaces the events the fast heuristic ignores.
func WithFastExcluded(events ...event.Event) Option {
	return func(s *Service) {
		s.assignOpts = append(s.assignOpts, assign.WithFastExcluded(events...))
	}
}

// WithThresholds overrides scrambler thresholds in centiseconds.
func WithThresholds(t map[event.Event]int) Option {
	return func(s *Service) {
		if len(t) > 0 {
			s.registryOpts = append(s.registryOpts, competitor.WithThresholds(t))
		}
	}
}

// WithScramblerMinAge sets the minimum scrambler age.
func WithScramblerMinAge(age int) Option {
	return func(s *Service) {
		s.registryOpts = append(s.registryOpts, competitor.WithScramblerMinAge(age))
	}
}

// WithRunIDs replaces the run id generator.
func WithRunIDs(next func() string) Option {
	return func(s *Service) {
		if next != nil {
			s.newRunID = next
		}
	}
}

// New constructs a Service.
func New(opts ...Option) *Service {
	s := &Service{
		newRunID: func() string { return uuid.NewString() },
		metrics:  metrics.Default(),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run assigns every seat of comp. comp is read, never modified. On an
// infeasible instance the error wraps assign.ErrInfeasible and no result is
// returned.
func (s *Service) Run(ctx context.Context, comp *wcif.Competition) (*model.Result, error) {
	runID := s.newRunID()
	log := s.logger.With(logger.String("run_id", runID))
	started := time.Now()

	result, err := s.run(ctx, log, runID, comp)
	elapsed := time.Since(started)
	switch {
	case err == nil:
		s.metrics.RecordRun(metrics.OutcomeSuccess, elapsed)
		log.Info(ctx, "assignment finished",
			logger.Int("activities", len(result.Activities)),
			logger.Int("competitors", len(result.Competitors)),
			logger.Duration("duration", elapsed))
	case errors.Is(err, assign.ErrInfeasible):
		s.metrics.RecordRun(metrics.OutcomeInfeasible, elapsed)
		log.Error(ctx, "assignment infeasible", logger.Error(err), logger.Duration("duration", elapsed))
	default:
		s.metrics.RecordRun(metrics.OutcomeError, elapsed)
		log.Error(ctx, "assignment failed", logger.Error(err), logger.Duration("duration", elapsed))
	}
	return result, err
}

func (s *Service) run(ctx context.Context, log logger.Logger, runID string, comp *wcif.Competition) (*model.Result, error) {
	if comp == nil {
		return nil, assign.ErrNoCompetition
	}
	log.Info(ctx, "assignment started",
		logger.String("competition", comp.ID),
		logger.Int("persons", len(comp.Persons)))

	st, err := settings.Parse(s.settingsText, s.settingsOpts...)
	if err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}

	opts := append([]assign.Option{
		assign.WithLogger(log.Named("assign")),
		assign.WithRegistryOptions(s.registryOpts...),
	}, s.assignOpts...)
	m, err := assign.New(comp, st, opts...)
	if err != nil {
		return nil, fmt.Errorf("derive activities: %w", err)
	}
	s.recordDerivation(ctx, log, m)

	err = m.Run(ctx)
	s.recordStats(m.Stats())
	if err != nil {
		return nil, err
	}
	return model.FromMaster(runID, m), nil
}

func (s *Service) recordDerivation(ctx context.Context, log logger.Logger, m *assign.Master) {
	var byRole [3]int
	for _, a := range m.Activities() {
		byRole[a.Role]++
	}
	for _, role := range []activity.Role{activity.Competing, activity.Scrambling, activity.Judging} {
		s.metrics.SetActivities(role.String(), byRole[role])
	}
	s.metrics.SetCompetitors(m.Registry().Len())
	s.metrics.RecordSkipped(len(m.Skipped()))

	for _, sk := range m.Skipped() {
		log.Warn(ctx, "schedule entry skipped",
			logger.Int("schedule_id", sk.ScheduleID),
			logger.String("code", sk.Code),
			logger.String("reason", sk.Reason))
	}
	log.Info(ctx, "activities derived",
		logger.Int("slots", len(m.Slots())),
		logger.Int("competing", byRole[activity.Competing]),
		logger.Int("scrambling", byRole[activity.Scrambling]),
		logger.Int("judging", byRole[activity.Judging]),
		logger.Int("competitors", m.Registry().Len()))
}

func (s *Service) recordStats(st assign.Stats) {
	s.metrics.RecordClusters(st.Clusters)
	s.metrics.RecordCombinations(st.Combinations)
	s.metrics.RecordBackfill(st.Backfill)
	for _, phase := range []assign.Phase{assign.PhaseCombination, assign.PhaseBackfill} {
		for _, role := range []activity.Role{activity.Competing, activity.Scrambling, activity.Judging} {
			s.metrics.RecordPlacements(phase.String(), role.String(), st.Placed[phase][role])
		}
	}
}
