package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/padraicbc/runcrew/models"
	"github.com/padraicbc/runcrew/store"
)

// GoalRequest carries the replaceable content of a run goal.
type GoalRequest struct {
	StartDate      models.Date `json:"startDate" validate:"-"`
	EndDate        models.Date `json:"endDate" validate:"-"`
	TargetDistance float64     `json:"targetDistance" validate:"gte=0"`
	TargetPace     float64     `json:"targetPace" validate:"gte=0"`
	TargetTime     int         `json:"targetTime" validate:"gte=0"`
}

// GoalResponse is the API shape of a stored goal.
type GoalResponse struct {
	ID             int64       `json:"id"`
	UserID         int64       `json:"userId"`
	StartDate      models.Date `json:"startDate"`
	EndDate        models.Date `json:"endDate"`
	TargetDistance float64     `json:"targetDistance"`
	TargetPace     float64     `json:"targetPace"`
	TargetTime     int         `json:"targetTime"`
	Achieved       bool        `json:"achieved"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

func goalResponse(g *models.RunGoal) *GoalResponse {
	return &GoalResponse{
		ID:             g.ID,
		UserID:         g.UserID,
		StartDate:      g.StartDate,
		EndDate:        g.EndDate,
		TargetDistance: g.TargetDistance,
		TargetPace:     g.TargetPace,
		TargetTime:     g.TargetTime,
		Achieved:       g.Achieved,
		CreatedAt:      g.CreatedAt,
		UpdatedAt:      g.UpdatedAt,
	}
}

func (r *GoalRequest) validate() error {
	verr := check(r)
	checkRange(verr, "startDate", r.StartDate, "endDate", r.EndDate)
	return verr.orNil()
}

// GoalService manages run goals and decides when they are achieved.
type GoalService struct {
	goals   store.GoalStore
	records store.RecordStore
	log     *zap.Logger
	now     func() time.Time
}

func NewGoalService(goals store.GoalStore, records store.RecordStore, log *zap.Logger) *GoalService {
	return &GoalService{
		goals:   goals,
		records: records,
		log:     log,
		now:     time.Now,
	}
}

// Create stores a new, not yet achieved goal owned by userID.
func (s *GoalService) Create(ctx context.Context, userID int64, req GoalRequest) (*GoalResponse, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	g := &models.RunGoal{
		UserID:         userID,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		TargetDistance: req.TargetDistance,
		TargetPace:     req.TargetPace,
		TargetTime:     req.TargetTime,
		Achieved:       false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.goals.Insert(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	s.log.Debug("goal created", zap.Int64("goal_id", g.ID), zap.Int64("user_id", userID))
	return goalResponse(g), nil
}

// Update replaces the goal's content on its existing identity. Owner and creation time
// are kept and achievement is cleared because the targets may have moved.
func (s *GoalService) Update(ctx context.Context, id int64, req GoalRequest) (*GoalResponse, error) {
	g, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	g.StartDate = req.StartDate
	g.EndDate = req.EndDate
	g.TargetDistance = req.TargetDistance
	g.TargetPace = req.TargetPace
	g.TargetTime = req.TargetTime
	g.Achieved = false
	g.UpdatedAt = s.now().UTC()

	if err := s.goals.Update(ctx, g); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to update goal %d: %w", id, err)
	}
	return goalResponse(g), nil
}

// Delete removes the goal and its records. A missing goal is not an error.
func (s *GoalService) Delete(ctx context.Context, id int64) error {
	if err := s.goals.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete goal %d: %w", id, err)
	}
	return nil
}

func (s *GoalService) Get(ctx context.Context, id int64) (*GoalResponse, error) {
	g, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return goalResponse(g), nil
}

func (s *GoalService) List(ctx context.Context) ([]GoalResponse, error) {
	goals, err := s.goals.All(ctx)
	if err != nil {
		return nil, err
	}
	return goalResponses(goals), nil
}

func (s *GoalService) ListForUser(ctx context.Context, userID int64) ([]GoalResponse, error) {
	goals, err := s.goals.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return goalResponses(goals), nil
}

// EvaluateAchievements marks achieved every open goal whose range contains on and whose
// owner's records inside that range meet its targets. It returns how many goals changed.
func (s *GoalService) EvaluateAchievements(ctx context.Context, on models.Date) (int, error) {
	active, err := s.goals.Active(ctx, on)
	if err != nil {
		return 0, fmt.Errorf("load active goals: %w", err)
	}

	achieved := 0
	for i := range active {
		g := &active[i]
		recs, err := s.records.Between(ctx, store.PeriodFilter{
			UserID: g.UserID,
			Start:  g.StartDate,
			End:    g.EndDate,
		})
		if err != nil {
			return achieved, fmt.Errorf("load records for goal %d: %w", g.ID, err)
		}

		totals := Aggregate(recs)
		if !totals.Meets(g) {
			continue
		}

		g.Achieved = true
		g.UpdatedAt = s.now().UTC()
		if err := s.goals.Update(ctx, g); err != nil {
			return achieved, fmt.Errorf("mark goal %d achieved: %w", g.ID, err)
		}
		achieved++
		s.log.Info("goal achieved",
			zap.Int64("goal_id", g.ID),
			zap.Int64("user_id", g.UserID),
			zap.Float64("distance_km", totals.Distance),
			zap.Int("running_time_s", totals.RunningTime),
		)
	}
	return achieved, nil
}

func (s *GoalService) load(ctx context.Context, id int64) (*models.RunGoal, error) {
	g, err := s.goals.ByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

func goalResponses(goals []models.RunGoal) []GoalResponse {
	out := make([]GoalResponse, len(goals))
	for i := range goals {
		out[i] = *goalResponse(&goals[i])
	}
	return out
}
