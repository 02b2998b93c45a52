// cmd/adduser/main.go
// Creates a member, or resets the password of an existing one.
//
// Usage:
//
//	go run ./cmd/adduser -email runner@example.com -password testing123 -nickname runner
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/padraicbc/runcrew/config"
	bundb "github.com/padraicbc/runcrew/db"
	"github.com/padraicbc/runcrew/handlers"
	"github.com/padraicbc/runcrew/models"
)

func main() {
	email := flag.String("email", "", "member email (required)")
	password := flag.String("password", "", "plain-text password (required)")
	nickname := flag.String("nickname", "", "display name")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("both -email and -password are required")
	}

	hash, err := handlers.HashPassword(*email, *password)
	if err != nil {
		log.Fatal("hash password: ", err)
	}

	cfg := config.Load()
	db := bundb.Setup(cfg)
	defer db.Close()

	ctx := context.Background()
	if err := bundb.CreateTables(ctx, db); err != nil {
		log.Fatal("create tables: ", err)
	}

	member := &models.Member{
		Email:     strings.ToLower(strings.TrimSpace(*email)),
		Password:  hash,
		Nickname:  strings.TrimSpace(*nickname),
		CreatedAt: time.Now().UTC(),
	}

	_, err = db.NewInsert().Model(member).
		On("CONFLICT (email) DO UPDATE SET password = EXCLUDED.password").
		Exec(ctx)
	if err != nil {
		log.Fatal("insert member: ", err)
	}

	fmt.Printf("member %q saved\n", member.Email)
}
