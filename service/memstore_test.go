package service

import (
	"context"
	"sort"
	"sync"

	"github.com/padraicbc/runcrew/models"
	"github.com/padraicbc/runcrew/store"
)

// memStore is an in-memory implementation of every store interface the services use.
type memStore struct {
	mu      sync.Mutex
	nextID  int64
	members map[int64]models.Member
	goals   map[int64]models.RunGoal
	records map[int64]models.RunRecord
}

func newMemStore() *memStore {
	return &memStore{
		members: map[int64]models.Member{},
		goals:   map[int64]models.RunGoal{},
		records: map[int64]models.RunRecord{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

type memMembers struct{ *memStore }
type memGoals struct{ *memStore }
type memRecords struct{ *memStore }

var (
	_ store.MemberStore = memMembers{}
	_ store.GoalStore   = memGoals{}
	_ store.RecordStore = memRecords{}
)

func (s memMembers) Insert(_ context.Context, mem *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	mem.ID = s.id()
	s.members[mem.ID] = *mem
	return nil
}

func (s memMembers) ByID(_ context.Context, id int64) (*models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mem, ok := s.members[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &mem, nil
}

func (s memMembers) ByEmail(_ context.Context, email string) (*models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, mem := range s.members {
		if mem.Email == email {
			return &mem, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s memGoals) Insert(_ context.Context, g *models.RunGoal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = s.id()
	s.goals[g.ID] = *g
	return nil
}

func (s memGoals) Update(_ context.Context, g *models.RunGoal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.goals[g.ID]; !ok {
		return store.ErrNotFound
	}
	s.goals[g.ID] = *g
	return nil
}

func (s memGoals) ByID(_ context.Context, id int64) (*models.RunGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &g, nil
}

func (s memGoals) All(ctx context.Context) ([]models.RunGoal, error) {
	return s.filter(func(models.RunGoal) bool { return true }), nil
}

func (s memGoals) ByUser(_ context.Context, userID int64) ([]models.RunGoal, error) {
	return s.filter(func(g models.RunGoal) bool { return g.UserID == userID }), nil
}

func (s memGoals) Active(_ context.Context, on models.Date) ([]models.RunGoal, error) {
	return s.filter(func(g models.RunGoal) bool {
		return !g.Achieved && !g.StartDate.After(on.Time) && !g.EndDate.Before(on.Time)
	}), nil
}

func (s memGoals) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.goals, id)
	for rid, r := range s.records {
		if r.GoalID == id {
			delete(s.records, rid)
		}
	}
	return nil
}

func (s memGoals) filter(keep func(models.RunGoal) bool) []models.RunGoal {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.RunGoal{}
	for _, g := range s.goals {
		if keep(g) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s memRecords) Insert(_ context.Context, r *models.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.id()
	s.records[r.ID] = *r
	return nil
}

func (s memRecords) Update(_ context.Context, r *models.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[r.ID]; !ok {
		return store.ErrNotFound
	}
	s.records[r.ID] = *r
	return nil
}

func (s memRecords) ByID(_ context.Context, id int64) (*models.RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

func (s memRecords) ByUser(_ context.Context, userID int64) ([]models.RunRecord, error) {
	return s.filter(func(r models.RunRecord) bool { return r.UserID == userID }), nil
}

func (s memRecords) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

func (s memRecords) Between(_ context.Context, f store.PeriodFilter) ([]models.RunRecord, error) {
	return s.filter(func(r models.RunRecord) bool {
		if f.UserID != 0 && r.UserID != f.UserID {
			return false
		}
		return !r.RunningDate.Before(f.Start.Time) && !r.RunningDate.After(f.End.Time)
	}), nil
}

func (s memRecords) SumDistance(ctx context.Context, f store.PeriodFilter) (float64, error) {
	recs, _ := s.Between(ctx, f)
	sum := 0.0
	for _, r := range recs {
		sum += r.Distance
	}
	return sum, nil
}

func (s memRecords) SumRunningTime(ctx context.Context, f store.PeriodFilter) (int, error) {
	recs, _ := s.Between(ctx, f)
	sum := 0
	for _, r := range recs {
		sum += r.RunningTime
	}
	return sum, nil
}

func (s memRecords) filter(keep func(models.RunRecord) bool) []models.RunRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.RunRecord{}
	for _, r := range s.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
