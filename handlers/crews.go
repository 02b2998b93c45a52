package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	mw "github.com/padraicbc/runcrew/middleware"
	"github.com/padraicbc/runcrew/models"
	"github.com/padraicbc/runcrew/service"
)

type createCrewRequest struct {
	Name        string `json:"name" validate:"required,max=50"`
	Description string `json:"description" validate:"max=500"`
}

type crewDetail struct {
	models.Crew
	Members []models.CrewMember `json:"members"`
}

type joinRequest struct {
	Message string `json:"message" validate:"max=500"`
}

type regularRunRequest struct {
	DayOfWeek   string  `json:"dayOfWeek" validate:"required,oneof=MON TUE WED THU FRI SAT SUN"`
	StartTime   string  `json:"startTime" validate:"required"` // HH:MM
	Area        string  `json:"area" validate:"required,max=100"`
	Distance    float64 `json:"distance" validate:"gte=0"`
	Description string  `json:"description" validate:"max=500"`
}

func (r *regularRunRequest) normalize() error {
	r.DayOfWeek = strings.ToUpper(strings.TrimSpace(r.DayOfWeek))
	r.StartTime = strings.TrimSpace(r.StartTime)
	r.Area = strings.TrimSpace(r.Area)
	if err := service.Validate(r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if _, err := time.Parse("15:04", r.StartTime); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "startTime must be HH:MM")
	}
	return nil
}

// CreateCrew creates a crew led by the caller.
func (h *Handler) CreateCrew(c echo.Context) error {
	var req createCrewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if err := service.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	now := time.Now().UTC()
	crew := &models.Crew{
		Name:        req.Name,
		Description: req.Description,
		LeaderID:    mw.MemberID(c),
		CreatedAt:   now,
	}
	err := h.db.RunInTx(c.Request().Context(), nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(crew).Exec(ctx); err != nil {
			return err
		}
		leader := &models.CrewMember{
			CrewID:   crew.ID,
			MemberID: crew.LeaderID,
			Role:     models.RoleLeader,
			JoinedAt: now,
		}
		_, err := tx.NewInsert().Model(leader).Exec(ctx)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return echo.NewHTTPError(http.StatusConflict, "crew name already taken")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, crew)
}

// CrewDetail returns a crew with its members.
func (h *Handler) CrewDetail(c echo.Context) error {
	crewID, err := pathID(c, "crewId")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	detail := crewDetail{Members: []models.CrewMember{}}
	if err := h.db.NewSelect().Model(&detail.Crew).Where("c.id = ?", crewID).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "crew not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	err = h.db.NewSelect().Model(&detail.Members).
		Where("cm.crew_id = ?", crewID).
		OrderExpr("cm.id ASC").
		Scan(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, detail)
}

// ApplyToCrew files a pending join request for the caller.
func (h *Handler) ApplyToCrew(c echo.Context) error {
	crewID, err := pathID(c, "crewId")
	if err != nil {
		return err
	}
	var req joinRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := service.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	memberID := mw.MemberID(c)

	exists, err := h.db.NewSelect().Model((*models.Crew)(nil)).Where("c.id = ?", crewID).Exists(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !exists {
		return echo.NewHTTPError(http.StatusNotFound, "crew not found")
	}

	member, err := h.db.NewSelect().Model((*models.CrewMember)(nil)).
		Where("cm.crew_id = ?", crewID).
		Where("cm.member_id = ?", memberID).
		Exists(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if member {
		return echo.NewHTTPError(http.StatusConflict, "already a member of this crew")
	}

	pending, err := h.db.NewSelect().Model((*models.JoinRequest)(nil)).
		Where("jr.crew_id = ?", crewID).
		Where("jr.member_id = ?", memberID).
		Where("jr.status = ?", models.JoinPending).
		Exists(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if pending {
		return echo.NewHTTPError(http.StatusConflict, "join request already pending")
	}

	now := time.Now().UTC()
	jr := &models.JoinRequest{
		MemberID:  memberID,
		CrewID:    crewID,
		Status:    models.JoinPending,
		Message:   strings.TrimSpace(req.Message),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := h.db.NewInsert().Model(jr).Exec(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, jr)
}

// JoinRequests lists a crew's pending join requests.
func (h *Handler) JoinRequests(c echo.Context) error {
	crewID, err := pathID(c, "crewId")
	if err != nil {
		return err
	}

	reqs := []models.JoinRequest{}
	err = h.db.NewSelect().Model(&reqs).
		Where("jr.crew_id = ?", crewID).
		Where("jr.status = ?", models.JoinPending).
		OrderExpr("jr.created_at ASC, jr.id ASC").
		Scan(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, reqs)
}

// ApproveJoin accepts a pending request and adds the applicant as a crew member.
func (h *Handler) ApproveJoin(c echo.Context) error {
	return h.decideJoin(c, models.JoinApproved)
}

// RejectJoin declines a pending request.
func (h *Handler) RejectJoin(c echo.Context) error {
	return h.decideJoin(c, models.JoinRejected)
}

func (h *Handler) decideJoin(c echo.Context, status string) error {
	crewID, err := pathID(c, "crewId")
	if err != nil {
		return err
	}
	joinID, err := pathID(c, "joinId")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	jr := &models.JoinRequest{}
	err = h.db.NewSelect().Model(jr).
		Where("jr.id = ?", joinID).
		Where("jr.crew_id = ?", crewID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "join request not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if jr.Status != models.JoinPending {
		return echo.NewHTTPError(http.StatusConflict, "join request already "+jr.Status)
	}

	now := time.Now().UTC()
	err = h.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := decidePending(ctx, tx, jr, status, now); err != nil {
			return err
		}
		if status != models.JoinApproved {
			return nil
		}
		cm := &models.CrewMember{
			CrewID:   jr.CrewID,
			MemberID: jr.MemberID,
			Role:     models.RoleMember,
			JoinedAt: now,
		}
		_, err := tx.NewInsert().Model(cm).On("CONFLICT DO NOTHING").Exec(ctx)
		return err
	})
	if errors.Is(err, errJoinDecided) {
		return echo.NewHTTPError(http.StatusConflict, "join request already decided")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, jr)
}

var errJoinDecided = errors.New("join request already decided")

// decidePending moves jr from pending to status. It fails with errJoinDecided when
// another decision got there first.
func decidePending(ctx context.Context, db bun.IDB, jr *models.JoinRequest, status string, now time.Time) error {
	res, err := db.NewUpdate().
		Model((*models.JoinRequest)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", now).
		Where("id = ?", jr.ID).
		Where("status = ?", models.JoinPending).
		Exec(ctx)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errJoinDecided
	}
	jr.Status = status
	jr.UpdatedAt = now
	return nil
}

// RegularRuns lists a crew's recurring runs.
func (h *Handler) RegularRuns(c echo.Context) error {
	crewID, err := pathID(c, "crewId")
	if err != nil {
		return err
	}

	runs := []models.RegularRun{}
	err = h.db.NewSelect().Model(&runs).
		Where("rg.crew_id = ?", crewID).
		OrderExpr("rg.id ASC").
		Scan(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, runs)
}

// CreateRegularRun adds a recurring run to the crew.
func (h *Handler) CreateRegularRun(c echo.Context) error {
	crewID, err := pathID(c, "crewId")
	if err != nil {
		return err
	}
	var req regularRunRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := req.normalize(); err != nil {
		return err
	}

	now := time.Now().UTC()
	run := &models.RegularRun{
		CrewID:      crewID,
		DayOfWeek:   req.DayOfWeek,
		StartTime:   req.StartTime,
		Area:        req.Area,
		Distance:    req.Distance,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := h.db.NewInsert().Model(run).Exec(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, run)
}

// UpdateRegularRun replaces a recurring run of the crew.
func (h *Handler) UpdateRegularRun(c echo.Context) error {
	crewID, err := pathID(c, "crewId")
	if err != nil {
		return err
	}
	runID, err := pathID(c, "regularId")
	if err != nil {
		return err
	}
	var req regularRunRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := req.normalize(); err != nil {
		return err
	}

	ctx := c.Request().Context()
	run := &models.RegularRun{}
	err = h.db.NewSelect().Model(run).
		Where("rg.id = ?", runID).
		Where("rg.crew_id = ?", crewID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "regular run not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	run.DayOfWeek = req.DayOfWeek
	run.StartTime = req.StartTime
	run.Area = req.Area
	run.Distance = req.Distance
	run.Description = strings.TrimSpace(req.Description)
	run.UpdatedAt = time.Now().UTC()
	if _, err := h.db.NewUpdate().Model(run).WherePK().Exec(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, run)
}
