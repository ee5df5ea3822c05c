package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/bentswoodworking/bents-api/internal/models"
)

func (p *Postgres) CreateContact(ctx context.Context, contact models.Contact) (*models.Contact, error) {
	const query = `INSERT INTO contacts (name, email, subject, message)
VALUES ($1, $2, $3, $4)
RETURNING id, name, email, subject, message, created_at`

	var stored models.Contact
	err := p.Pool.QueryRow(ctx, query,
		strings.TrimSpace(contact.Name),
		strings.TrimSpace(contact.Email),
		strings.TrimSpace(contact.Subject),
		contact.Message,
	).Scan(&stored.ID, &stored.Name, &stored.Email, &stored.Subject, &stored.Message, &stored.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("postgres: insert contact: %w", err)
	}

	return &stored, nil
}
