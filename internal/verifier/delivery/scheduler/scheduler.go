package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finfluencer-tracker/internal/verifier/config"
	"finfluencer-tracker/internal/verifier/service"
	"finfluencer-tracker/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler runs verification batches on a cron schedule.
type Scheduler struct {
	verificationService service.VerificationService
	limit               int
	delay               time.Duration
	schedule            cron.Schedule
	spec                string
	logger              *logger.Logger
}

// NewScheduler parses the configured cron expression.
func NewScheduler(verificationService service.VerificationService, schedCfg config.Scheduler, verifierCfg config.Verifier, log *logger.Logger) (*Scheduler, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedule, err := parser.Parse(schedCfg.Cron)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cron expression %q: %w", schedCfg.Cron, err)
	}

	return &Scheduler{
		verificationService: verificationService,
		limit:               verifierCfg.BatchLimit,
		delay:               verifierCfg.EffectiveBatchDelay(),
		schedule:            schedule,
		spec:                schedCfg.Cron,
		logger:              log,
	}, nil
}

// Start blocks until ctx is cancelled, running a batch at every tick. A
// tick that fires while the previous batch is still going is skipped.
func (s *Scheduler) Start(ctx context.Context) {
	cl := cronLogger{s.logger}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))
	c.Schedule(s.schedule, cron.FuncJob(func() { s.RunOnce(ctx) }))

	s.logger.Info("Verification scheduler starting", logger.StringField("cron", s.spec), logger.Field("next_run", s.schedule.Next(time.Now())))
	c.Start()

	<-ctx.Done()
	s.logger.Info("Verification scheduler stopping")
	<-c.Stop().Done()
}

// RunOnce runs a single batch and logs its summary.
func (s *Scheduler) RunOnce(ctx context.Context) {
	summary, err := s.verificationService.VerifyUnverified(ctx, s.limit, s.delay)
	switch {
	case errors.Is(err, service.ErrBatchAlreadyRunning):
		s.logger.Info("Skipping scheduled batch, another run holds the lock")
	case err != nil && ctx.Err() == nil:
		s.logger.Error("Scheduled verification batch failed", logger.ErrorField(err), logger.StringField("run_id", summary.RunID))
	default:
		s.logger.Info("Scheduled verification batch completed",
			logger.StringField("run_id", summary.RunID),
			logger.IntField("processed", summary.Processed),
			logger.IntField("verified", summary.Verified),
		)
	}
}

// cronLogger routes cron's internal logging to zap.
type cronLogger struct {
	logger *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
