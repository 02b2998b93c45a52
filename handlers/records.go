package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/runcrew/clock"
	mw "github.com/padraicbc/runcrew/middleware"
	"github.com/padraicbc/runcrew/models"
	"github.com/padraicbc/runcrew/service"
)

type periodTotals struct {
	Start         models.Date            `json:"start"`
	End           models.Date            `json:"end"`
	TotalDistance float64                `json:"totalDistance"`
	TotalTime     int                    `json:"totalRunningTime"`
	TotalTimeText string                 `json:"totalRunningTimeText"`
	Mine          *service.PeriodSummary `json:"mine"`
}

// Records returns the caller's run records.
func (h *Handler) Records(c echo.Context) error {
	recs, err := h.records.FindByUser(c.Request().Context(), mw.MemberID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, recs)
}

// Record returns a single run record by id.
func (h *Handler) Record(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	rec, ok, err := h.records.FindByID(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, service.ErrRecordNotFound.Error())
	}
	return c.JSON(http.StatusOK, rec)
}

// CreateRecord logs a run for the caller against one of the goals.
func (h *Handler) CreateRecord(c echo.Context) error {
	var req service.RecordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.records.Create(c.Request().Context(), mw.MemberID(c), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, rec)
}

// UpdateRecord replaces one of the caller's run records.
func (h *Handler) UpdateRecord(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req service.RecordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	existing, ok, err := h.records.FindByID(ctx, id)
	if err != nil {
		return httpError(err)
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, service.ErrRecordNotFound.Error())
	}
	if existing.UserID != mw.MemberID(c) {
		return echo.NewHTTPError(http.StatusForbidden, "not your run record")
	}

	rec, err := h.records.Update(ctx, id, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

// DeleteRecord removes one of the caller's run records.
func (h *Handler) DeleteRecord(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	existing, ok, err := h.records.FindByID(ctx, id)
	if err != nil {
		return httpError(err)
	}
	if ok && existing.UserID != mw.MemberID(c) {
		return echo.NewHTTPError(http.StatusForbidden, "not your run record")
	}

	if err := h.records.Delete(ctx, id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RecordTotals summarises every run the caller has logged.
func (h *Handler) RecordTotals(c echo.Context) error {
	tot, err := h.records.CalculateTotals(c.Request().Context(), mw.MemberID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, tot)
}

// RecordPeriod totals all members' runs dated within start..end and the caller's share.
func (h *Handler) RecordPeriod(c echo.Context) error {
	start, err := models.ParseDate(c.QueryParam("start"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "start must be a YYYY-MM-DD date")
	}
	end, err := models.ParseDate(c.QueryParam("end"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "end must be a YYYY-MM-DD date")
	}

	ctx := c.Request().Context()
	km, err := h.records.TotalDistanceForPeriod(ctx, start, end)
	if err != nil {
		return httpError(err)
	}
	sec, err := h.records.TotalTimeForPeriod(ctx, start, end)
	if err != nil {
		return httpError(err)
	}
	mine, err := h.records.PeriodSummary(ctx, mw.MemberID(c), start, end)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, periodTotals{
		Start:         start,
		End:           end,
		TotalDistance: km,
		TotalTime:     sec,
		TotalTimeText: clock.FormatRunningTime(sec),
		Mine:          mine,
	})
}
