package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Crew roles, highest first.
const (
	RoleLeader = "leader"
	RoleStaff  = "staff"
	RoleMember = "member"
)

// Join request statuses.
const (
	JoinPending  = "pending"
	JoinApproved = "approved"
	JoinRejected = "rejected"
)

// Crew is a running club group led by one member.
type Crew struct {
	bun.BaseModel `bun:"table:crews,alias:c"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	Name        string    `bun:"name,notnull,unique" json:"name"`
	Description string    `bun:"description,notnull,default:''" json:"description"`
	LeaderID    int64     `bun:"leader_id,notnull" json:"leaderId"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

// CrewMember links a member to a crew with a role.
type CrewMember struct {
	bun.BaseModel `bun:"table:crew_members,alias:cm"`

	ID       int64     `bun:"id,pk,autoincrement" json:"id"`
	CrewID   int64     `bun:"crew_id,notnull,unique:crew_members_no_dupes" json:"crewId"`
	MemberID int64     `bun:"member_id,notnull,unique:crew_members_no_dupes" json:"memberId"`
	Role     string    `bun:"role,notnull" json:"role"`
	JoinedAt time.Time `bun:"joined_at,nullzero,notnull,default:current_timestamp" json:"joinedAt"`
}

// JoinRequest is a member's application to join a crew.
type JoinRequest struct {
	bun.BaseModel `bun:"table:join_requests,alias:jr"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	MemberID  int64     `bun:"member_id,notnull" json:"memberId"`
	CrewID    int64     `bun:"crew_id,notnull" json:"crewId"`
	Status    string    `bun:"status,notnull" json:"status"`
	Message   string    `bun:"message,notnull,default:''" json:"message"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

// RegularRun is a crew's recurring weekly run.
type RegularRun struct {
	bun.BaseModel `bun:"table:regular_runs,alias:rg"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	CrewID      int64     `bun:"crew_id,notnull" json:"crewId"`
	DayOfWeek   string    `bun:"day_of_week,notnull" json:"dayOfWeek"`
	StartTime   string    `bun:"start_time,notnull" json:"startTime"`
	Area        string    `bun:"area,notnull" json:"area"`
	Distance    float64   `bun:"distance,notnull,default:0" json:"distance"`
	Description string    `bun:"description,notnull,default:''" json:"description"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}
