package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Member is a club member who signs in with email and a bcrypt-hashed password.
type Member struct {
	bun.BaseModel `bun:"table:members,alias:m"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Email     string    `bun:"email,notnull,unique" json:"email"`
	Password  string    `bun:"password,notnull" json:"-"`
	Nickname  string    `bun:"nickname,notnull" json:"nickname"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}
