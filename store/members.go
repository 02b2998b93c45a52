package store

import (
	"context"
	"strings"

	"github.com/uptrace/bun"

	"github.com/padraicbc/runcrew/models"
)

// Members is the bun-backed MemberStore.
type Members struct {
	db bun.IDB
}

var _ MemberStore = (*Members)(nil)

func NewMembers(db bun.IDB) *Members {
	return &Members{db: db}
}

func (s *Members) Insert(ctx context.Context, m *models.Member) error {
	m.Email = strings.ToLower(strings.TrimSpace(m.Email))
	_, err := s.db.NewInsert().Model(m).Exec(ctx)
	return err
}

func (s *Members) ByID(ctx context.Context, id int64) (*models.Member, error) {
	m := &models.Member{}
	err := s.db.NewSelect().Model(m).Where("m.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return m, nil
}

func (s *Members) ByEmail(ctx context.Context, email string) (*models.Member, error) {
	m := &models.Member{}
	err := s.db.NewSelect().Model(m).
		Where("m.email = ?", strings.ToLower(strings.TrimSpace(email))).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return m, nil
}
