package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	mw "github.com/padraicbc/runcrew/middleware"
	"github.com/padraicbc/runcrew/models"
)

// Routes registers the public and JWT-protected API on e.
func (h *Handler) Routes(e *echo.Echo) {
	// Public
	e.POST("/signup", h.Signup)
	e.POST("/signin", h.Signin)
	e.GET("/healthz", h.Health)

	auth := mw.JWT(h.JWTKey)

	run := e.Group("/run", auth)
	run.GET("/goals", h.Goals)
	run.GET("/goals/my", h.MyGoals)
	run.POST("/goals", h.CreateGoal)
	run.GET("/goals/:id", h.Goal)
	run.PUT("/goals/:id", h.UpdateGoal)
	run.DELETE("/goals/:id", h.DeleteGoal)

	run.GET("/records", h.Records)
	run.POST("/records", h.CreateRecord)
	run.GET("/records/total", h.RecordTotals)
	run.GET("/records/period", h.RecordPeriod)
	run.GET("/records/:id", h.Record)
	run.PUT("/records/:id", h.UpdateRecord)
	run.DELETE("/records/:id", h.DeleteRecord)

	staff := mw.CrewRole(h.db, models.RoleLeader, models.RoleStaff)

	crew := e.Group("/crew", auth)
	crew.POST("", h.CreateCrew)
	crew.GET("/:crewId", h.CrewDetail)
	crew.POST("/:crewId/join", h.ApplyToCrew)
	crew.GET("/:crewId/join", h.JoinRequests, staff)
	crew.POST("/:crewId/join/:joinId/approve", h.ApproveJoin, staff)
	crew.POST("/:crewId/join/:joinId/reject", h.RejectJoin, staff)
	crew.GET("/:crewId/regular", h.RegularRuns)
	crew.POST("/:crewId/regular", h.CreateRegularRun, staff)
	crew.PUT("/:crewId/regular/:regularId", h.UpdateRegularRun, staff)
}

// Health reports whether the database answers.
func (h *Handler) Health(c echo.Context) error {
	if err := h.db.PingContext(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
