// Package jobs runs scheduled background work.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/padraicbc/runcrew/metrics"
	"github.com/padraicbc/runcrew/models"
)

// Evaluator marks goals achieved as of a day.
type Evaluator interface {
	EvaluateAchievements(ctx context.Context, on models.Date) (int, error)
}

// Achievement evaluates goals for the day that has just ended.
type Achievement struct {
	eval    Evaluator
	log     *zap.Logger
	now     func() time.Time
	timeout time.Duration
}

func NewAchievement(eval Evaluator, log *zap.Logger) *Achievement {
	return &Achievement{
		eval:    eval,
		log:     log,
		now:     time.Now,
		timeout: 5 * time.Minute,
	}
}

// Run evaluates goals active yesterday in UTC.
func (j *Achievement) Run(ctx context.Context) (int, error) {
	on := models.DateOf(j.now().UTC()).AddDays(-1)
	return j.RunOn(ctx, on)
}

// RunOn evaluates goals active on the given day and records the outcome.
func (j *Achievement) RunOn(ctx context.Context, on models.Date) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	start := time.Now()
	n, err := j.eval.EvaluateAchievements(ctx, on)
	metrics.RecordAchievementRun(time.Since(start), n, err)
	if err != nil {
		j.log.Error("goal evaluation failed", zap.String("on", on.String()), zap.Int("achieved", n), zap.Error(err))
		return n, err
	}
	j.log.Info("goal evaluation finished",
		zap.String("on", on.String()),
		zap.Int("achieved", n),
		zap.Duration("took", time.Since(start)),
	)
	return n, nil
}

// Schedule registers the job on a new cron scheduler using a standard five-field spec.
// The caller starts and stops the returned scheduler.
func Schedule(spec string, job *Achievement, log *zap.Logger) (*cron.Cron, error) {
	cl := cronLogger{log.Sugar()}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	_, err := c.AddFunc(spec, func() {
		_, _ = job.Run(context.Background())
	})
	if err != nil {
		return nil, fmt.Errorf("invalid achievement schedule %q: %w", spec, err)
	}
	return c, nil
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
