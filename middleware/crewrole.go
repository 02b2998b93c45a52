package middleware

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	"github.com/padraicbc/runcrew/models"
)

const crewRoleKey = "crew_role"

// CrewRole only lets through members of the :crewId crew holding one of roles.
// It must run after JWT.
func CrewRole(db *bun.DB, roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			memberID := MemberID(c)
			if memberID == 0 {
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
			}
			crewID, err := strconv.ParseInt(c.Param("crewId"), 10, 64)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid crew id")
			}

			cm := &models.CrewMember{}
			err = db.NewSelect().Model(cm).
				Where("cm.crew_id = ?", crewID).
				Where("cm.member_id = ?", memberID).
				Scan(c.Request().Context())
			if errors.Is(err, sql.ErrNoRows) {
				return echo.NewHTTPError(http.StatusForbidden, "not a member of this crew")
			}
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
			}

			if len(roles) > 0 && !hasRole(cm.Role, roles) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient crew role")
			}
			c.Set(crewRoleKey, cm.Role)
			return next(c)
		}
	}
}

// CrewRoleOf returns the caller's role in the crew checked by CrewRole.
func CrewRoleOf(c echo.Context) string {
	role, _ := c.Get(crewRoleKey).(string)
	return role
}

func hasRole(role string, allowed []string) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
