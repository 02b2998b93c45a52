package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	mw "github.com/padraicbc/runcrew/middleware"
	"github.com/padraicbc/runcrew/service"
)

// Goals returns every member's goals.
func (h *Handler) Goals(c echo.Context) error {
	goals, err := h.goals.List(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, goals)
}

// MyGoals returns the caller's goals.
func (h *Handler) MyGoals(c echo.Context) error {
	goals, err := h.goals.ListForUser(c.Request().Context(), mw.MemberID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, goals)
}

// Goal returns a single goal by id.
func (h *Handler) Goal(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	g, err := h.goals.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, g)
}

// CreateGoal creates a goal owned by the caller.
func (h *Handler) CreateGoal(c echo.Context) error {
	var req service.GoalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	g, err := h.goals.Create(c.Request().Context(), mw.MemberID(c), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, g)
}

// UpdateGoal replaces the targets and range of one of the caller's goals.
func (h *Handler) UpdateGoal(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req service.GoalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	existing, err := h.goals.Get(ctx, id)
	if err != nil {
		return httpError(err)
	}
	if existing.UserID != mw.MemberID(c) {
		return echo.NewHTTPError(http.StatusForbidden, "not your goal")
	}

	g, err := h.goals.Update(ctx, id, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, g)
}

// DeleteGoal removes one of the caller's goals and its records.
func (h *Handler) DeleteGoal(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	existing, err := h.goals.Get(ctx, id)
	switch {
	case errors.Is(err, service.ErrGoalNotFound):
		return c.NoContent(http.StatusNoContent)
	case err != nil:
		return httpError(err)
	case existing.UserID != mw.MemberID(c):
		return echo.NewHTTPError(http.StatusForbidden, "not your goal")
	}

	if err := h.goals.Delete(ctx, id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
