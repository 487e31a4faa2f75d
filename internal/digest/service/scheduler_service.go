package service

import (
	"context"
	"fmt"

	"golang-stock-digest/internal/digest/config"
	"golang-stock-digest/pkg/logger"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// SchedulerService runs the digests on their configured cron schedules.
type SchedulerService interface {
	Start(ctx context.Context) error
}

// NewSchedulerService creates a new scheduler service.
func NewSchedulerService(cfg *config.Config, log *logger.Logger, digest DigestService) SchedulerService {
	return &schedulerService{
		cfg:        cfg,
		logger:     log,
		digest:     digest,
		cronParser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
	}
}

type schedulerService struct {
	cfg        *config.Config
	logger     *logger.Logger
	digest     DigestService
	cronParser cron.Parser
}

type scheduledRun struct {
	name string
	spec string
	run  func(ctx context.Context) error
}

// Start registers the jobs and blocks until ctx is done. Empty schedules are skipped.
func (s *schedulerService) Start(ctx context.Context) error {
	c, err := s.build(ctx)
	if err != nil {
		return err
	}
	if len(c.Entries()) == 0 {
		s.logger.Info("No digest schedules configured")
		<-ctx.Done()
		return nil
	}

	c.Start()
	s.logger.Info("Scheduler started", logger.IntField("jobs", len(c.Entries())))
	<-ctx.Done()

	s.logger.Info("Scheduler service stopping")
	<-c.Stop().Done()
	return nil
}

func (s *schedulerService) build(ctx context.Context) (*cron.Cron, error) {
	c := cron.New(
		cron.WithParser(s.cronParser),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	runs := []scheduledRun{
		{name: "intraday", spec: s.cfg.Schedule.IntradayCron, run: s.digest.RunIntraday},
		{name: "signal", spec: s.cfg.Schedule.SignalCron, run: s.digest.RunSignal},
		{name: "eod", spec: s.cfg.Schedule.EODCron, run: s.digest.RunEOD},
	}
	for _, r := range runs {
		if r.spec == "" {
			continue
		}
		r := r
		if _, err := c.AddFunc(r.spec, func() { s.execute(ctx, r) }); err != nil {
			return nil, fmt.Errorf("failed to parse cron expression for %s: %w", r.name, err)
		}
		s.logger.Info("Scheduled digest", logger.StringField("job", r.name), logger.StringField("cron", r.spec))
	}
	return c, nil
}

func (s *schedulerService) execute(ctx context.Context, r scheduledRun) {
	ctx = logger.WithRunID(ctx, uuid.NewString())
	s.logger.InfoContext(ctx, "Running scheduled digest", logger.StringField("job", r.name))
	if err := r.run(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Scheduled digest failed", logger.ErrorField(err), logger.StringField("job", r.name))
	}
}
