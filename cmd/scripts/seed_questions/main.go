package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/bentswoodworking/bents-api/internal/db"
	"github.com/bentswoodworking/bents-api/internal/utils"
)

var starterQuestions = []string{
	"What is the best wood for a beginner workbench?",
	"How do I flatten a wide tabletop without a jointer?",
	"Which finish should I use on a cutting board?",
	"What is the difference between a track saw and a circular saw?",
	"How do I set up a dado stack on a table saw?",
	"How do I cut accurate dovetails by hand?",
	"What glue works best for outdoor furniture?",
	"How do I keep a router from burning the edge?",
	"What dust collection do I need for a small shop?",
	"How do I build floating shelves that hold weight?",
	"Which clamps should I buy first?",
	"How do I sharpen chisels and plane irons?",
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("config: no .env file loaded: %v", err)
	}

	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()

	postgres, err := db.NewPostgres(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer postgres.Close()

	if err := postgres.EnsureSchema(ctx); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	inserted, err := postgres.SeedQuestions(ctx, starterQuestions)
	if err != nil {
		log.Fatalf("seed questions: %v", err)
	}

	log.Printf("seeded %d of %d starter questions", inserted, len(starterQuestions))
}
