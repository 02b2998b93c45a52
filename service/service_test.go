package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/padraicbc/runcrew/clock"
	"github.com/padraicbc/runcrew/models"
)

type fixture struct {
	mem     *memStore
	goals   *GoalService
	records *RecordService
	member  *models.Member
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := newMemStore()
	log := zap.NewNop()
	f := &fixture{
		mem:     mem,
		goals:   NewGoalService(memGoals{mem}, memRecords{mem}, log),
		records: NewRecordService(memRecords{mem}, memGoals{mem}, memMembers{mem}, log),
		member:  &models.Member{Email: "runner@example.com", Nickname: "runner"},
	}
	require.NoError(t, memMembers{mem}.Insert(context.Background(), f.member))
	return f
}

func (f *fixture) goal(t *testing.T, start, end string) *GoalResponse {
	t.Helper()
	g, err := f.goals.Create(context.Background(), f.member.ID, GoalRequest{
		StartDate:      date(start),
		EndDate:        date(end),
		TargetDistance: 10,
		TargetPace:     6,
		TargetTime:     3000,
	})
	require.NoError(t, err)
	return g
}

func date(s string) models.Date {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCreateGoal(t *testing.T) {
	f := newFixture(t)
	g := f.goal(t, "2024-01-01", "2024-12-31")

	assert.NotZero(t, g.ID)
	assert.Equal(t, f.member.ID, g.UserID)
	assert.False(t, g.Achieved)
	assert.Equal(t, "2024-01-01", g.StartDate.String())
	assert.False(t, g.CreatedAt.IsZero())
}

func TestCreateGoalValidation(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		req  GoalRequest
		want string
	}{
		{"missing dates", GoalRequest{}, "startDate is required"},
		{"reversed range", GoalRequest{StartDate: date("2024-02-01"), EndDate: date("2024-01-01")}, "startDate must not be after endDate"},
		{"negative distance", GoalRequest{StartDate: date("2024-01-01"), EndDate: date("2024-01-31"), TargetDistance: -1}, "targetDistance must be >= 0"},
		{"negative time", GoalRequest{StartDate: date("2024-01-01"), EndDate: date("2024-01-31"), TargetTime: -5}, "targetTime must be >= 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.goals.Create(context.Background(), f.member.ID, tt.req)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Problems, tt.want)
		})
	}
}

func TestUpdateGoalKeepsIdentity(t *testing.T) {
	f := newFixture(t)
	g := f.goal(t, "2024-01-01", "2024-06-30")

	stored, err := memGoals{f.mem}.ByID(context.Background(), g.ID)
	require.NoError(t, err)
	stored.Achieved = true
	require.NoError(t, memGoals{f.mem}.Update(context.Background(), stored))

	got, err := f.goals.Update(context.Background(), g.ID, GoalRequest{
		StartDate:      date("2024-01-01"),
		EndDate:        date("2024-12-31"),
		TargetDistance: 1000,
		TargetPace:     5,
		TargetTime:     36000,
	})
	require.NoError(t, err)
	assert.Equal(t, g.ID, got.ID)
	assert.Equal(t, f.member.ID, got.UserID)
	assert.Equal(t, g.CreatedAt, got.CreatedAt)
	assert.Equal(t, 1000.0, got.TargetDistance)
	assert.Equal(t, "2024-12-31", got.EndDate.String())
	assert.False(t, got.Achieved)

	_, err = f.goals.Update(context.Background(), g.ID+99, GoalRequest{StartDate: date("2024-01-01"), EndDate: date("2024-01-02")})
	assert.ErrorIs(t, err, ErrGoalNotFound)
}

func TestGetAndDeleteGoal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	g := f.goal(t, "2024-01-01", "2024-12-31")
	_, err := f.records.Create(ctx, f.member.ID, RecordRequest{GoalID: g.ID, Distance: 5, RunningDate: date("2024-03-01")})
	require.NoError(t, err)

	got, err := f.goals.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.ID, got.ID)

	require.NoError(t, f.goals.Delete(ctx, g.ID))
	require.NoError(t, f.goals.Delete(ctx, g.ID))

	_, err = f.goals.Get(ctx, g.ID)
	assert.ErrorIs(t, err, ErrGoalNotFound)
	recs, err := f.records.FindByUser(ctx, f.member.ID)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestListGoals(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.goal(t, "2024-01-01", "2024-01-31")
	f.goal(t, "2024-02-01", "2024-02-28")
	_, err := f.goals.Create(ctx, f.member.ID+1, GoalRequest{StartDate: date("2024-01-01"), EndDate: date("2024-01-02")})
	require.NoError(t, err)

	all, err := f.goals.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := f.goals.ListForUser(ctx, f.member.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	none, err := f.goals.ListForUser(ctx, 404)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCreateRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	g := f.goal(t, "2024-01-01", "2024-12-31")

	rec, err := f.records.Create(ctx, f.member.ID, RecordRequest{
		GoalID:      g.ID,
		Distance:    10,
		RunningTime: "01:30:00",
		Pace:        "05:00",
		RunningDate: date("2024-05-05"),
	})
	require.NoError(t, err)
	assert.NotZero(t, rec.ID)
	assert.Equal(t, 5400, rec.RunningTime)
	assert.Equal(t, "01:30:00", rec.RunningTimeText)
	assert.Equal(t, 300, rec.Pace)
	assert.Equal(t, "05:00", rec.PaceText)
	assert.Equal(t, g.ID, rec.GoalID)
	assert.Zero(t, rec.RunCount)

	got, ok, err := f.records.FindByID(ctx, rec.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, "2024-05-05", got.RunningDate.String())
}

func TestCreateRecordDefaultsDurations(t *testing.T) {
	f := newFixture(t)
	g := f.goal(t, "2024-01-01", "2024-12-31")

	rec, err := f.records.Create(context.Background(), f.member.ID, RecordRequest{GoalID: g.ID, Distance: 3, RunningDate: date("2024-05-05")})
	require.NoError(t, err)
	assert.Zero(t, rec.RunningTime)
	assert.Zero(t, rec.Pace)
}

func TestCreateRecordLookupOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	g := f.goal(t, "2024-01-01", "2024-12-31")
	req := RecordRequest{GoalID: g.ID + 99, RunningTime: "00:10:00", Pace: "05:00", RunningDate: date("2024-05-05")}

	_, err := f.records.Create(ctx, f.member.ID+99, req)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.records.Create(ctx, f.member.ID, req)
	assert.ErrorIs(t, err, ErrGoalNotFound)

	// An unknown member wins over every request problem.
	for _, bad := range []RecordRequest{
		{},
		{GoalID: 0, RunningDate: date("2024-05-05")},
		{GoalID: g.ID, Distance: -1},
		{GoalID: g.ID + 99, RunningTime: "garbage"},
	} {
		_, err = f.records.Create(ctx, f.member.ID+99, bad)
		assert.ErrorIs(t, err, ErrUserNotFound)
	}
}

func TestCreateRecordRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	g := f.goal(t, "2024-01-01", "2024-12-31")

	_, err := f.records.Create(ctx, f.member.ID, RecordRequest{GoalID: g.ID, RunningTime: "90 minutes", RunningDate: date("2024-05-05")})
	var ferr *clock.FormatError
	assert.ErrorAs(t, err, &ferr)

	_, err = f.records.Create(ctx, f.member.ID, RecordRequest{GoalID: g.ID, Distance: -2})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Problems, "distance must be >= 0")
	assert.Contains(t, verr.Problems, "runningDate is required")

	_, err = f.records.Create(ctx, f.member.ID, RecordRequest{RunningDate: date("2024-05-05")})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Problems, "goalId is required")
}

func TestUpdateRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	g1 := f.goal(t, "2024-01-01", "2024-06-30")
	g2 := f.goal(t, "2024-07-01", "2024-12-31")

	rec, err := f.records.Create(ctx, f.member.ID, RecordRequest{GoalID: g1.ID, Distance: 5, RunningTime: "00:30:00", Pace: "06:00", RunningDate: date("2024-03-01")})
	require.NoError(t, err)

	got, err := f.records.Update(ctx, rec.ID, RecordRequest{GoalID: g2.ID, Distance: 8, RunningTime: "00:40:00", Pace: "05:00", RunningDate: date("2024-08-01")})
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, f.member.ID, got.UserID)
	assert.Equal(t, g2.ID, got.GoalID)
	assert.Equal(t, 8.0, got.Distance)
	assert.Equal(t, 2400, got.RunningTime)
	assert.Equal(t, rec.CreatedAt, got.CreatedAt)

	_, err = f.records.Update(ctx, rec.ID+99, RecordRequest{GoalID: g2.ID, RunningDate: date("2024-08-01")})
	assert.ErrorIs(t, err, ErrRecordNotFound)

	_, err = f.records.Update(ctx, rec.ID, RecordRequest{GoalID: g2.ID + 99, RunningDate: date("2024-08-01")})
	assert.ErrorIs(t, err, ErrGoalNotFound)
}

func TestDeleteRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	g := f.goal(t, "2024-01-01", "2024-12-31")
	rec, err := f.records.Create(ctx, f.member.ID, RecordRequest{GoalID: g.ID, RunningDate: date("2024-03-01")})
	require.NoError(t, err)

	require.NoError(t, f.records.Delete(ctx, rec.ID))
	require.NoError(t, f.records.Delete(ctx, rec.ID))

	_, ok, err := f.records.FindByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCalculateTotals(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	g := f.goal(t, "2024-01-01", "2024-12-31")

	_, err := f.records.CalculateTotals(ctx, f.member.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	for _, r := range []RecordRequest{
		{GoalID: g.ID, Distance: 5, RunningTime: "00:30:00", Pace: "05:00", RunningDate: date("2024-03-01")},
		{GoalID: g.ID, Distance: 10, RunningTime: "01:00:00", Pace: "05:20", RunningDate: date("2024-03-02")},
	} {
		_, err := f.records.Create(ctx, f.member.ID, r)
		require.NoError(t, err)
	}

	tot, err := f.records.CalculateTotals(ctx, f.member.ID)
	require.NoError(t, err)
	assert.Equal(t, 15.0, tot.Distance)
	assert.Equal(t, 5400, tot.RunningTime)
	assert.Equal(t, 310, tot.Pace)
	assert.Equal(t, "05:10", tot.PaceText)
	assert.Equal(t, 2, tot.RunCount)
	assert.Zero(t, tot.ID)
}

func TestPeriodQueries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	g := f.goal(t, "2024-01-01", "2024-12-31")
	other := &models.Member{Email: "other@example.com"}
	require.NoError(t, memMembers{f.mem}.Insert(ctx, other))

	for _, c := range []struct {
		user int64
		day  string
		km   float64
	}{
		{f.member.ID, "2024-01-01", 4},
		{f.member.ID, "2024-12-31", 6},
		{other.ID, "2024-06-15", 4},
		{f.member.ID, "2025-01-01", 100},
	} {
		_, err := f.records.Create(ctx, c.user, RecordRequest{GoalID: g.ID, Distance: c.km, RunningTime: "00:10:00", RunningDate: date(c.day)})
		require.NoError(t, err)
	}

	start, end := date("2024-01-01"), date("2024-12-31")

	km, err := f.records.TotalDistanceForPeriod(ctx, start, end)
	require.NoError(t, err)
	assert.Equal(t, 14.0, km)

	sec, err := f.records.TotalTimeForPeriod(ctx, start, end)
	require.NoError(t, err)
	assert.Equal(t, 1800, sec)

	recs, err := f.records.RecordsForPeriod(ctx, start, end)
	require.NoError(t, err)
	assert.Len(t, recs, 3)

	sum, err := f.records.PeriodSummary(ctx, f.member.ID, start, end)
	require.NoError(t, err)
	assert.Equal(t, 10.0, sum.Distance)
	assert.Equal(t, 2, sum.RunCount)

	empty, err := f.records.PeriodSummary(ctx, f.member.ID, date("2023-01-01"), date("2023-12-31"))
	require.NoError(t, err)
	assert.Zero(t, empty.Distance)
	assert.Zero(t, empty.RunCount)

	_, err = f.records.TotalDistanceForPeriod(ctx, end, start)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestEvaluateAchievements(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.goals.now = func() time.Time { return time.Date(2024, 3, 31, 0, 10, 0, 0, time.UTC) }

	met := f.goal(t, "2024-03-01", "2024-03-31")
	wider := f.goal(t, "2024-03-01", "2024-04-30")
	expired := f.goal(t, "2024-01-01", "2024-01-31")

	for _, r := range []RecordRequest{
		{GoalID: met.ID, Distance: 6, RunningTime: "00:30:00", Pace: "05:00", RunningDate: date("2024-03-10")},
		{GoalID: met.ID, Distance: 6, RunningTime: "00:30:00", Pace: "05:00", RunningDate: date("2024-03-20")},
	} {
		_, err := f.records.Create(ctx, f.member.ID, r)
		require.NoError(t, err)
	}

	n, err := f.goals.EvaluateAchievements(ctx, date("2024-03-31"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := f.goals.Get(ctx, met.ID)
	require.NoError(t, err)
	assert.True(t, got.Achieved)

	// The member's records are counted by date, whichever goal they were logged against.
	got, err = f.goals.Get(ctx, wider.ID)
	require.NoError(t, err)
	assert.True(t, got.Achieved)

	got, err = f.goals.Get(ctx, expired.ID)
	require.NoError(t, err)
	assert.False(t, got.Achieved)

	n, err = f.goals.EvaluateAchievements(ctx, date("2024-03-31"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEvaluateAchievementsPace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	g := f.goal(t, "2024-03-01", "2024-03-31")
	_, err := f.records.Create(ctx, f.member.ID, RecordRequest{GoalID: g.ID, Distance: 12, RunningTime: "01:20:00", Pace: "06:40", RunningDate: date("2024-03-10")})
	require.NoError(t, err)

	n, err := f.goals.EvaluateAchievements(ctx, date("2024-03-15"))
	require.NoError(t, err)
	assert.Zero(t, n)
}
