package models

import (
	"time"

	"github.com/uptrace/bun"
)

// RunGoal is a member's running target over an inclusive date range.
type RunGoal struct {
	bun.BaseModel `bun:"table:run_goals,alias:g"`

	ID             int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID         int64     `bun:"user_id,notnull" json:"userId"`
	StartDate      Date      `bun:"start_date,notnull,type:date" json:"startDate"`
	EndDate        Date      `bun:"end_date,notnull,type:date" json:"endDate"`
	TargetDistance float64   `bun:"target_distance,notnull" json:"targetDistance"` // km
	TargetPace     float64   `bun:"target_pace,notnull" json:"targetPace"`         // min/km
	TargetTime     int       `bun:"target_time,notnull" json:"targetTime"`         // seconds
	Achieved       bool      `bun:"achieved,notnull,default:false" json:"achieved"`
	CreatedAt      time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt      time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}
