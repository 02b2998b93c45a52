package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	_ "modernc.org/sqlite"

	"github.com/padraicbc/runcrew/config"
	"github.com/padraicbc/runcrew/models"
)

// Setup opens the configured database and exits the process if it is unreachable.
func Setup(cfg *config.Config) *bun.DB {
	dsn := cfg.PostgresDSN()
	if cfg.DBDriver == config.DriverSQLite {
		dsn = cfg.SQLiteDSN()
	}

	db, err := Open(context.Background(), cfg.DBDriver, dsn, cfg.Debug)
	if err != nil {
		log.Fatal("failed to connect to database: ", err)
	}
	return db
}

// Open connects to postgres or sqlite and pings it.
func Open(ctx context.Context, driver, dsn string, debug bool) (*bun.DB, error) {
	var db *bun.DB
	switch driver {
	case config.DriverPostgres:
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
		db = bun.NewDB(sqldb, pgdialect.New())
	case config.DriverSQLite:
		sqldb, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// sqlite serialises writers; one connection also keeps ":memory:" databases shared.
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	default:
		return nil, fmt.Errorf("unknown driver %q", driver)
	}

	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

// CreateTables creates all tables and lookup indexes. Safe to run on every start.
func CreateTables(ctx context.Context, db *bun.DB) error {
	tables := []interface{}{
		(*models.Member)(nil),
		(*models.RunGoal)(nil),
		(*models.RunRecord)(nil),
		(*models.Crew)(nil),
		(*models.CrewMember)(nil),
		(*models.JoinRequest)(nil),
		(*models.RegularRun)(nil),
	}

	for _, model := range tables {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("creating table for %T: %w", model, err)
		}
	}

	indexes := []struct {
		model  interface{}
		name   string
		column string
	}{
		{(*models.RunGoal)(nil), "run_goals_user_id_idx", "user_id"},
		{(*models.RunRecord)(nil), "run_records_user_id_idx", "user_id"},
		{(*models.RunRecord)(nil), "run_records_goal_id_idx", "goal_id"},
		{(*models.RunRecord)(nil), "run_records_running_date_idx", "running_date"},
		{(*models.JoinRequest)(nil), "join_requests_crew_id_idx", "crew_id"},
		{(*models.RegularRun)(nil), "regular_runs_crew_id_idx", "crew_id"},
	}
	for _, ix := range indexes {
		_, err := db.NewCreateIndex().Model(ix.model).
			Index(ix.name).
			Column(ix.column).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("creating index %s: %w", ix.name, err)
		}
	}

	return nil
}
