package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/padraicbc/runcrew/models"
)

type fakeEvaluator struct {
	days []models.Date
	n    int
	err  error
}

func (f *fakeEvaluator) EvaluateAchievements(_ context.Context, on models.Date) (int, error) {
	f.days = append(f.days, on)
	return f.n, f.err
}

func TestRunEvaluatesYesterday(t *testing.T) {
	eval := &fakeEvaluator{n: 2}
	job := NewAchievement(eval, zap.NewNop())
	job.now = func() time.Time { return time.Date(2024, 3, 1, 0, 10, 0, 0, time.UTC) }

	n, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, eval.days, 1)
	assert.Equal(t, "2024-02-29", eval.days[0].String())
}

func TestRunReportsFailure(t *testing.T) {
	eval := &fakeEvaluator{n: 1, err: errors.New("db down")}
	job := NewAchievement(eval, zap.NewNop())

	n, err := job.RunOn(context.Background(), models.NewDate(2024, 1, 1))
	assert.EqualError(t, err, "db down")
	assert.Equal(t, 1, n)
}

func TestSchedule(t *testing.T) {
	job := NewAchievement(&fakeEvaluator{}, zap.NewNop())

	c, err := Schedule("10 0 * * *", job, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, c.Entries(), 1)

	_, err = Schedule("every now and then", job, zap.NewNop())
	assert.Error(t, err)
}
