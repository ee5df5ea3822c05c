package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/bentswoodworking/bents-api/internal/models"
)

func (p *Postgres) RandomQuestions(ctx context.Context, limit int) ([]models.Question, error) {
	rows, err := p.Pool.Query(ctx, "SELECT id, question_text FROM questions ORDER BY RANDOM() LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: random questions: %w", err)
	}

	questions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Question, error) {
		var q models.Question
		err := row.Scan(&q.ID, &q.QuestionText)
		return q, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: scan questions: %w", err)
	}

	return questions, nil
}

// SeedQuestions inserts the given prompts, skipping ones already present,
// and reports how many rows were added.
func (p *Postgres) SeedQuestions(ctx context.Context, texts []string) (int64, error) {
	batch := &pgx.Batch{}
	for _, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		batch.Queue("INSERT INTO questions (question_text) VALUES ($1) ON CONFLICT (question_text) DO NOTHING", text)
	}
	if batch.Len() == 0 {
		return 0, nil
	}

	results := p.Pool.SendBatch(ctx, batch)
	defer results.Close()

	var inserted int64
	for i := 0; i < batch.Len(); i++ {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("postgres: seed question: %w", err)
		}
		inserted += tag.RowsAffected()
	}

	return inserted, nil
}
