// Package store persists members, run goals and run records through bun.
//
// Each store is a thin set of queries. Existence rules (a record needs a live
// member and goal) belong to the service package, not here.
package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/padraicbc/runcrew/models"
)

// ErrNotFound is returned when a lookup by key matches no row.
var ErrNotFound = errors.New("not found")

// PeriodFilter selects records whose running date falls in [Start, End], both inclusive.
type PeriodFilter struct {
	UserID int64 // 0 matches every member
	Start  models.Date
	End    models.Date
}

// MemberStore is the member directory.
type MemberStore interface {
	Insert(ctx context.Context, m *models.Member) error
	ByID(ctx context.Context, id int64) (*models.Member, error)
	ByEmail(ctx context.Context, email string) (*models.Member, error)
}

// GoalStore holds run goals.
type GoalStore interface {
	Insert(ctx context.Context, g *models.RunGoal) error
	Update(ctx context.Context, g *models.RunGoal) error
	ByID(ctx context.Context, id int64) (*models.RunGoal, error)
	All(ctx context.Context) ([]models.RunGoal, error)
	ByUser(ctx context.Context, userID int64) ([]models.RunGoal, error)
	// Active returns goals not yet achieved whose range contains on.
	Active(ctx context.Context, on models.Date) ([]models.RunGoal, error)
	// Delete removes the goal and its records. Deleting a missing goal is not an error.
	Delete(ctx context.Context, id int64) error
}

// RecordStore holds run records.
type RecordStore interface {
	Insert(ctx context.Context, r *models.RunRecord) error
	Update(ctx context.Context, r *models.RunRecord) error
	ByID(ctx context.Context, id int64) (*models.RunRecord, error)
	ByUser(ctx context.Context, userID int64) ([]models.RunRecord, error)
	Delete(ctx context.Context, id int64) error
	Between(ctx context.Context, f PeriodFilter) ([]models.RunRecord, error)
	SumDistance(ctx context.Context, f PeriodFilter) (float64, error)
	SumRunningTime(ctx context.Context, f PeriodFilter) (int, error)
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
