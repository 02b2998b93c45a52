package store

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/padraicbc/runcrew/models"
)

// Goals is the bun-backed GoalStore.
type Goals struct {
	db *bun.DB
}

var _ GoalStore = (*Goals)(nil)

func NewGoals(db *bun.DB) *Goals {
	return &Goals{db: db}
}

func (s *Goals) Insert(ctx context.Context, g *models.RunGoal) error {
	_, err := s.db.NewInsert().Model(g).Exec(ctx)
	return err
}

// Update writes every column of g to the row with g.ID.
func (s *Goals) Update(ctx context.Context, g *models.RunGoal) error {
	res, err := s.db.NewUpdate().Model(g).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (s *Goals) ByID(ctx context.Context, id int64) (*models.RunGoal, error) {
	g := &models.RunGoal{}
	if err := s.db.NewSelect().Model(g).Where("g.id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err)
	}
	return g, nil
}

func (s *Goals) All(ctx context.Context) ([]models.RunGoal, error) {
	goals := []models.RunGoal{}
	if err := s.db.NewSelect().Model(&goals).OrderExpr("g.id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return goals, nil
}

func (s *Goals) ByUser(ctx context.Context, userID int64) ([]models.RunGoal, error) {
	goals := []models.RunGoal{}
	err := s.db.NewSelect().Model(&goals).
		Where("g.user_id = ?", userID).
		OrderExpr("g.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return goals, nil
}

func (s *Goals) Active(ctx context.Context, on models.Date) ([]models.RunGoal, error) {
	goals := []models.RunGoal{}
	err := s.db.NewSelect().Model(&goals).
		Where("g.achieved = ?", false).
		Where("g.start_date <= ?", on).
		Where("g.end_date >= ?", on).
		OrderExpr("g.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return goals, nil
}

func (s *Goals) Delete(ctx context.Context, id int64) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*models.RunRecord)(nil)).Where("goal_id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete records of goal %d: %w", id, err)
		}
		if _, err := tx.NewDelete().Model((*models.RunGoal)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete goal %d: %w", id, err)
		}
		return nil
	})
}
