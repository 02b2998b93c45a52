package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/padraicbc/runcrew/clock"
	"github.com/padraicbc/runcrew/metrics"
	"github.com/padraicbc/runcrew/models"
	"github.com/padraicbc/runcrew/store"
)

// Defaults applied when a record request omits its duration text.
const (
	defaultRunningTime = "00:00:00"
	defaultPace        = "00:00"
)

// RecordRequest is a logged run as the client sends it.
type RecordRequest struct {
	GoalID      int64       `json:"goalId" validate:"required,gt=0"`
	Distance    float64     `json:"distance" validate:"gte=0"`
	RunningTime string      `json:"runningTime"` // HH:MM:SS
	Pace        string      `json:"pace"`        // MM:SS per km
	RunningDate models.Date `json:"runningDate" validate:"-"`
}

// RecordResponse is the API shape of a run record, and of an aggregate over many.
// Aggregates have no ID or goal and carry RunCount.
type RecordResponse struct {
	ID              int64       `json:"id,omitempty"`
	UserID          int64       `json:"userId"`
	GoalID          int64       `json:"goalId,omitempty"`
	Distance        float64     `json:"distance"`
	RunningTime     int         `json:"runningTime"`
	RunningTimeText string      `json:"runningTimeText"`
	Pace            int         `json:"pace"`
	PaceText        string      `json:"paceText"`
	RunCount        int         `json:"runCount,omitempty"`
	RunningDate     models.Date `json:"runningDate"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// PeriodSummary totals one member's records in a closed date range.
type PeriodSummary struct {
	UserID          int64       `json:"userId"`
	Start           models.Date `json:"start"`
	End             models.Date `json:"end"`
	Distance        float64     `json:"distance"`
	RunningTime     int         `json:"runningTime"`
	RunningTimeText string      `json:"runningTimeText"`
	Pace            int         `json:"pace"`
	PaceText        string      `json:"paceText"`
	RunCount        int         `json:"runCount"`
}

func recordResponse(r *models.RunRecord) *RecordResponse {
	return &RecordResponse{
		ID:              r.ID,
		UserID:          r.UserID,
		GoalID:          r.GoalID,
		Distance:        r.Distance,
		RunningTime:     r.RunningTime,
		RunningTimeText: clock.FormatRunningTime(r.RunningTime),
		Pace:            r.Pace,
		PaceText:        clock.FormatPace(r.Pace),
		RunningDate:     r.RunningDate,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func (r *RecordRequest) validate() error {
	verr := check(r)
	if r.RunningDate.IsZero() {
		verr.add("runningDate is required")
	}
	return verr.orNil()
}

// durations decodes the time and pace text into seconds, defaulting empty fields to zero.
func (r *RecordRequest) durations() (runningTime, pace int, err error) {
	rt, p := r.RunningTime, r.Pace
	if rt == "" {
		rt = defaultRunningTime
	}
	if p == "" {
		p = defaultPace
	}

	if runningTime, err = clock.ParseRunningTime(rt); err != nil {
		return 0, 0, err
	}
	if pace, err = clock.ParsePace(p); err != nil {
		return 0, 0, err
	}

	verr := &ValidationError{}
	if runningTime < 0 {
		verr.add("runningTime must not be negative")
	}
	if pace < 0 {
		verr.add("pace must not be negative")
	}
	return runningTime, pace, verr.orNil()
}

// RecordService logs runs against goals and aggregates them.
type RecordService struct {
	records store.RecordStore
	goals   store.GoalStore
	members store.MemberStore
	log     *zap.Logger
	now     func() time.Time
}

func NewRecordService(records store.RecordStore, goals store.GoalStore, members store.MemberStore, log *zap.Logger) *RecordService {
	return &RecordService{
		records: records,
		goals:   goals,
		members: members,
		log:     log,
		now:     time.Now,
	}
}

// Create logs a run for userID. The member is resolved before the request is checked
// and before the goal, so an unknown member always fails with ErrUserNotFound.
func (s *RecordService) Create(ctx context.Context, userID int64, req RecordRequest) (*RecordResponse, error) {
	member, err := s.members.ByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := req.validate(); err != nil {
		return nil, err
	}

	goal, err := s.goal(ctx, req.GoalID)
	if err != nil {
		return nil, err
	}

	runningTime, pace, err := req.durations()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rec := &models.RunRecord{
		UserID:      member.ID,
		GoalID:      goal.ID,
		Distance:    req.Distance,
		RunningTime: runningTime,
		Pace:        pace,
		RunningDate: req.RunningDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.records.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to create run record: %w", err)
	}

	metrics.RecordCreated()
	s.log.Debug("run record created", zap.Int64("record_id", rec.ID), zap.Int64("user_id", member.ID))
	return recordResponse(rec), nil
}

// Update replaces distance, time, pace and date of a record and may move it to another
// goal. The owner never changes.
func (s *RecordService) Update(ctx context.Context, recordID int64, req RecordRequest) (*RecordResponse, error) {
	existing, err := s.record(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	goal, err := s.goal(ctx, req.GoalID)
	if err != nil {
		return nil, err
	}

	runningTime, pace, err := req.durations()
	if err != nil {
		return nil, err
	}

	updated := &models.RunRecord{
		ID:          existing.ID,
		UserID:      existing.UserID,
		GoalID:      goal.ID,
		Distance:    req.Distance,
		RunningTime: runningTime,
		Pace:        pace,
		RunningDate: req.RunningDate,
		CreatedAt:   existing.CreatedAt,
		UpdatedAt:   s.now().UTC(),
	}
	if err := s.records.Update(ctx, updated); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to update run record %d: %w", recordID, err)
	}
	return recordResponse(updated), nil
}

func (s *RecordService) FindByUser(ctx context.Context, userID int64) ([]RecordResponse, error) {
	recs, err := s.records.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]RecordResponse, len(recs))
	for i := range recs {
		out[i] = *recordResponse(&recs[i])
	}
	return out, nil
}

// FindByID reports ok=false when no record has the id.
func (s *RecordService) FindByID(ctx context.Context, id int64) (*RecordResponse, bool, error) {
	rec, err := s.records.ByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return recordResponse(rec), true, nil
}

// Delete removes the record if present.
func (s *RecordService) Delete(ctx context.Context, id int64) error {
	return s.records.Delete(ctx, id)
}

// CalculateTotals summarises every record of userID. A member with no records gets
// ErrRecordNotFound rather than a zero summary.
func (s *RecordService) CalculateTotals(ctx context.Context, userID int64) (*RecordResponse, error) {
	recs, err := s.records.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrRecordNotFound
	}

	t := Aggregate(recs)
	now := s.now().UTC()
	return &RecordResponse{
		UserID:          userID,
		Distance:        t.Distance,
		RunningTime:     t.RunningTime,
		RunningTimeText: clock.FormatRunningTime(t.RunningTime),
		Pace:            t.Pace,
		PaceText:        clock.FormatPace(t.Pace),
		RunCount:        t.Count,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// TotalDistanceForPeriod sums the distance of every member's records dated in [start, end].
func (s *RecordService) TotalDistanceForPeriod(ctx context.Context, start, end models.Date) (float64, error) {
	if err := checkPeriod(start, end); err != nil {
		return 0, err
	}
	return s.records.SumDistance(ctx, store.PeriodFilter{Start: start, End: end})
}

// TotalTimeForPeriod sums the running time of every member's records dated in [start, end].
func (s *RecordService) TotalTimeForPeriod(ctx context.Context, start, end models.Date) (int, error) {
	if err := checkPeriod(start, end); err != nil {
		return 0, err
	}
	return s.records.SumRunningTime(ctx, store.PeriodFilter{Start: start, End: end})
}

// RecordsForPeriod returns the raw records dated in [start, end].
func (s *RecordService) RecordsForPeriod(ctx context.Context, start, end models.Date) ([]models.RunRecord, error) {
	if err := checkPeriod(start, end); err != nil {
		return nil, err
	}
	return s.records.Between(ctx, store.PeriodFilter{Start: start, End: end})
}

// PeriodSummary totals userID's own records in [start, end]. An empty range gives zeros.
func (s *RecordService) PeriodSummary(ctx context.Context, userID int64, start, end models.Date) (*PeriodSummary, error) {
	if err := checkPeriod(start, end); err != nil {
		return nil, err
	}
	recs, err := s.records.Between(ctx, store.PeriodFilter{UserID: userID, Start: start, End: end})
	if err != nil {
		return nil, err
	}

	t := Aggregate(recs)
	return &PeriodSummary{
		UserID:          userID,
		Start:           start,
		End:             end,
		Distance:        t.Distance,
		RunningTime:     t.RunningTime,
		RunningTimeText: clock.FormatRunningTime(t.RunningTime),
		Pace:            t.Pace,
		PaceText:        clock.FormatPace(t.Pace),
		RunCount:        t.Count,
	}, nil
}

func (s *RecordService) record(ctx context.Context, id int64) (*models.RunRecord, error) {
	rec, err := s.records.ByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *RecordService) goal(ctx context.Context, id int64) (*models.RunGoal, error) {
	g, err := s.goals.ByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

func checkPeriod(start, end models.Date) error {
	verr := &ValidationError{}
	checkRange(verr, "start", start, "end", end)
	return verr.orNil()
}
