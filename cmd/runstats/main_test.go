package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/padraicbc/runcrew/db/dbtest"
	"github.com/padraicbc/runcrew/models"
	"github.com/padraicbc/runcrew/service"
	"github.com/padraicbc/runcrew/store"
)

func TestPeriodList(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	goalStore, recordStore := store.NewGoals(db), store.NewRecords(db)
	s := &services{
		goals:   service.NewGoalService(goalStore, recordStore, zap.NewNop()),
		records: service.NewRecordService(recordStore, goalStore, store.NewMembers(db), zap.NewNop()),
		log:     zap.NewNop(),
	}

	now := time.Now().UTC()
	rec := &models.RunRecord{UserID: 1, GoalID: 1, Distance: 5, RunningTime: 1500, Pace: 300,
		RunningDate: models.NewDate(2024, 1, 15), CreatedAt: now, UpdatedAt: now}
	require.NoError(t, recordStore.Insert(ctx, rec))

	flag := periodCmd().Flags().Lookup("list")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)

	assert.NoError(t, listPeriod(ctx, s, models.NewDate(2024, 1, 1), models.NewDate(2024, 1, 31)))

	var verr *service.ValidationError
	assert.ErrorAs(t, listPeriod(ctx, s, models.NewDate(2024, 2, 1), models.NewDate(2024, 1, 1)), &verr)
}
