package handlers

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/padraicbc/runcrew/service"
	"github.com/padraicbc/runcrew/store"
)

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	db      *bun.DB
	goals   *service.GoalService
	records *service.RecordService
	members store.MemberStore
	JWTKey  []byte
	jwtTTL  time.Duration
}

// New creates a Handler with the given database connection, services and JWT settings.
func New(db *bun.DB, goals *service.GoalService, records *service.RecordService, members store.MemberStore, jwtKey []byte, jwtTTL time.Duration) *Handler {
	return &Handler{
		db:      db,
		goals:   goals,
		records: records,
		members: members,
		JWTKey:  jwtKey,
		jwtTTL:  jwtTTL,
	}
}
