// cmd/migrate/main.go
// Imports members, run goals and run records from the legacy MySQL running-service
// schema into the configured database. Re-runs skip rows that already exist.
//
// Usage:
//
//	MYSQL_DSN="user:pass@tcp(host:3306)/running?parseTime=true" \
//	DB_PASS="pgpass" \
//	go run ./cmd/migrate
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/uptrace/bun"

	"github.com/padraicbc/runcrew/config"
	bundb "github.com/padraicbc/runcrew/db"
	"github.com/padraicbc/runcrew/models"
)

const batchSize = 500

func main() {
	ctx := context.Background()

	cfg := config.Load()

	// --- MySQL ---
	if cfg.MySQLDSN == "" {
		log.Fatal("MYSQL_DSN required, e.g.: user:pass@tcp(host:3306)/running?parseTime=true")
	}
	myDB, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("open mysql: %v", err)
	}
	defer myDB.Close()
	myDB.SetMaxOpenConns(4)
	if err := myDB.PingContext(ctx); err != nil {
		log.Fatalf("ping mysql: %v", err)
	}
	log.Println("connected to MySQL")

	dst := bundb.Setup(cfg)
	defer dst.Close()
	log.Printf("connected to %s", cfg.DBDriver)

	if err := bundb.CreateTables(ctx, dst); err != nil {
		log.Fatalf("create tables: %v", err)
	}

	now := time.Now().UTC()
	steps := []struct {
		name string
		fn   func() (int, error)
	}{
		{"members", func() (int, error) { return migrateMembers(ctx, myDB, dst, now) }},
		{"run_goals", func() (int, error) { return migrateGoals(ctx, myDB, dst, now) }},
		{"run_records", func() (int, error) { return migrateRecords(ctx, myDB, dst, now) }},
	}

	for _, s := range steps {
		n, err := s.fn()
		if err != nil {
			log.Fatalf("migrate %s: %v", s.name, err)
		}
		log.Printf("%-15s  %d rows migrated", s.name, n)
	}

	if cfg.DBDriver == config.DriverPostgres {
		resetSequences(ctx, dst)
	}
	log.Println("migration complete")
}

// --- helpers ---

func timeOr(t sql.NullTime, fallback time.Time) time.Time {
	if !t.Valid {
		return fallback
	}
	return t.Time.UTC()
}

// bulkInsert inserts a batch, skipping rows that already exist (idempotent re-runs).
func bulkInsert[T any](ctx context.Context, dst *bun.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := dst.NewInsert().Model(&rows).On("CONFLICT DO NOTHING").Exec(ctx)
	return err
}

// copyRows streams query results through scan and writes them in batches.
func copyRows[T any](ctx context.Context, myDB *sql.DB, dst *bun.DB, query string, scan func(*sql.Rows) (T, error)) (int, error) {
	rows, err := myDB.QueryContext(ctx, query)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var batch []T
	total := 0
	for rows.Next() {
		r, err := scan(rows)
		if err != nil {
			return total, err
		}
		batch = append(batch, r)
		if len(batch) >= batchSize {
			if err := bulkInsert(ctx, dst, batch); err != nil {
				return total, err
			}
			total += len(batch)
			batch = batch[:0]
		}
	}
	if err := rows.Err(); err != nil {
		return total, err
	}
	if err := bulkInsert(ctx, dst, batch); err != nil {
		return total, err
	}
	return total + len(batch), nil
}

// --- per-table migrations ---

func migrateMembers(ctx context.Context, myDB *sql.DB, dst *bun.DB, now time.Time) (int, error) {
	return copyRows(ctx, myDB, dst,
		"SELECT id, email, password, nickname, created_at FROM member",
		func(rows *sql.Rows) (models.Member, error) {
			var (
				m         models.Member
				nickname  sql.NullString
				createdAt sql.NullTime
			)
			err := rows.Scan(&m.ID, &m.Email, &m.Password, &nickname, &createdAt)
			m.Nickname = nickname.String
			m.CreatedAt = timeOr(createdAt, now)
			return m, err
		})
}

func migrateGoals(ctx context.Context, myDB *sql.DB, dst *bun.DB, now time.Time) (int, error) {
	return copyRows(ctx, myDB, dst,
		`SELECT id, user_id, start_date, end_date, target_distance, target_pace,
		        target_time, achieved, created_at, updated_at
		 FROM run_goal`,
		func(rows *sql.Rows) (models.RunGoal, error) {
			var (
				g                    models.RunGoal
				start, end           time.Time
				createdAt, updatedAt sql.NullTime
			)
			err := rows.Scan(&g.ID, &g.UserID, &start, &end, &g.TargetDistance, &g.TargetPace,
				&g.TargetTime, &g.Achieved, &createdAt, &updatedAt)
			g.StartDate = models.DateOf(start)
			g.EndDate = models.DateOf(end)
			g.CreatedAt = timeOr(createdAt, now)
			g.UpdatedAt = timeOr(updatedAt, g.CreatedAt)
			return g, err
		})
}

func migrateRecords(ctx context.Context, myDB *sql.DB, dst *bun.DB, now time.Time) (int, error) {
	return copyRows(ctx, myDB, dst,
		`SELECT id, user_id, goal_id, distance, running_time, pace,
		        running_date, created_at, updated_at
		 FROM run_record`,
		func(rows *sql.Rows) (models.RunRecord, error) {
			var (
				r                    models.RunRecord
				goalID               sql.NullInt64
				runningDate          time.Time
				createdAt, updatedAt sql.NullTime
			)
			err := rows.Scan(&r.ID, &r.UserID, &goalID, &r.Distance, &r.RunningTime, &r.Pace,
				&runningDate, &createdAt, &updatedAt)
			r.GoalID = goalID.Int64
			r.RunningDate = models.DateOf(runningDate)
			r.CreatedAt = timeOr(createdAt, now)
			r.UpdatedAt = timeOr(updatedAt, r.CreatedAt)
			return r, err
		})
}

// resetSequences advances each PG sequence to MAX(id) so new inserts don't conflict.
func resetSequences(ctx context.Context, dst *bun.DB) {
	for _, table := range []string{"members", "run_goals", "run_records"} {
		q := fmt.Sprintf(
			"SELECT setval('%s_id_seq', COALESCE((SELECT MAX(id) FROM %s), 1))",
			table, table,
		)
		if _, err := dst.ExecContext(ctx, q); err != nil {
			log.Printf("reset seq %s_id_seq: %v", table, err)
		}
	}
	log.Println("sequences reset")
}
