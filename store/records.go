package store

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/padraicbc/runcrew/models"
)

// Records is the bun-backed RecordStore.
type Records struct {
	db bun.IDB
}

var _ RecordStore = (*Records)(nil)

func NewRecords(db bun.IDB) *Records {
	return &Records{db: db}
}

func (s *Records) Insert(ctx context.Context, r *models.RunRecord) error {
	_, err := s.db.NewInsert().Model(r).Exec(ctx)
	return err
}

func (s *Records) Update(ctx context.Context, r *models.RunRecord) error {
	res, err := s.db.NewUpdate().Model(r).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (s *Records) ByID(ctx context.Context, id int64) (*models.RunRecord, error) {
	r := &models.RunRecord{}
	if err := s.db.NewSelect().Model(r).Where("rr.id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err)
	}
	return r, nil
}

func (s *Records) ByUser(ctx context.Context, userID int64) ([]models.RunRecord, error) {
	recs := []models.RunRecord{}
	err := s.db.NewSelect().Model(&recs).
		Where("rr.user_id = ?", userID).
		OrderExpr("rr.running_date ASC, rr.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *Records) Delete(ctx context.Context, id int64) error {
	_, err := s.db.NewDelete().Model((*models.RunRecord)(nil)).Where("id = ?", id).Exec(ctx)
	return err
}

func (s *Records) Between(ctx context.Context, f PeriodFilter) ([]models.RunRecord, error) {
	recs := []models.RunRecord{}
	err := s.db.NewSelect().Model(&recs).
		Apply(period(f)).
		OrderExpr("rr.running_date ASC, rr.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *Records) SumDistance(ctx context.Context, f PeriodFilter) (float64, error) {
	var total float64
	err := s.db.NewSelect().Model((*models.RunRecord)(nil)).
		ColumnExpr("COALESCE(SUM(rr.distance), 0.0)").
		Apply(period(f)).
		Scan(ctx, &total)
	return total, err
}

func (s *Records) SumRunningTime(ctx context.Context, f PeriodFilter) (int, error) {
	var total int
	err := s.db.NewSelect().Model((*models.RunRecord)(nil)).
		ColumnExpr("COALESCE(SUM(rr.running_time), 0)").
		Apply(period(f)).
		Scan(ctx, &total)
	return total, err
}

// period narrows a select to a closed date interval, optionally for one member.
func period(f PeriodFilter) func(*bun.SelectQuery) *bun.SelectQuery {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Where("rr.running_date BETWEEN ? AND ?", f.Start, f.End)
		if f.UserID != 0 {
			q = q.Where("rr.user_id = ?", f.UserID)
		}
		return q
	}
}
