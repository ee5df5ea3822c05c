package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/bentswoodworking/bents-api/internal/db"
	"github.com/bentswoodworking/bents-api/internal/sessions"
	"github.com/bentswoodworking/bents-api/internal/utils"
)

func main() {
	userID := flag.String("user", "", "user id whose sessions to print")
	flag.Parse()

	if *userID == "" {
		log.Fatal("usage: inspect_sessions -user <id>")
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("config: no .env file loaded: %v", err)
	}

	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()

	var store db.SessionStore
	switch cfg.SessionBackend {
	case utils.SessionBackendMongo:
		mongoStore, err := db.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			log.Fatalf("connect mongo: %v", err)
		}
		defer mongoStore.Close(context.Background())
		store = mongoStore
	default:
		postgres, err := db.NewPostgres(ctx, cfg.Postgres)
		if err != nil {
			log.Fatalf("connect postgres: %v", err)
		}
		defer postgres.Close()
		store = db.NewPostgresSessions(postgres)
	}

	record, err := store.LoadSessions(ctx, *userID)
	if errors.Is(err, db.ErrNotFound) {
		fmt.Printf("no sessions stored for %s\n", *userID)
		return
	}
	if err != nil {
		log.Fatalf("load sessions: %v", err)
	}

	list, err := record.Sessions()
	if err != nil {
		log.Fatalf("decode sessions: %v", err)
	}

	fmt.Printf("user %s, last saved %s\n", record.UserID, record.UpdatedAt.Format(time.RFC3339))
	for _, summary := range sessions.Summaries(list) {
		updated := "never"
		if summary.UpdatedAt != nil {
			updated = summary.UpdatedAt.Format(time.RFC3339)
		}
		fmt.Printf("- %s  %-40.40q  %d exchanges  updated %s  videos %v\n",
			summary.ID, summary.Title, summary.ConversationCount, updated, summary.VideoIDs)
	}
}
