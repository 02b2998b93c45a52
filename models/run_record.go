package models

import (
	"time"

	"github.com/uptrace/bun"
)

// RunRecord is one logged running session. RunningTime and Pace are seconds.
type RunRecord struct {
	bun.BaseModel `bun:"table:run_records,alias:rr"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID      int64     `bun:"user_id,notnull" json:"userId"`
	GoalID      int64     `bun:"goal_id,notnull" json:"goalId"`
	Distance    float64   `bun:"distance,notnull,default:0" json:"distance"`
	RunningTime int       `bun:"running_time,notnull" json:"runningTime"`
	Pace        int       `bun:"pace,notnull" json:"pace"`
	RunningDate Date      `bun:"running_date,notnull,type:date" json:"runningDate"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt   time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}
