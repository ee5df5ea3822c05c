package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bentswoodworking/bents-api/internal/models"
)

const productColumns = "id::text, title, tags, link, COALESCE(image_url, ''), image_data, created_at"

// ProductInput carries the writable product fields.
type ProductInput struct {
	Title    string
	Tags     string
	Link     string
	ImageURL string
}

// ListProducts returns every product; orderByTags sorts on the raw tag list.
func (p *Postgres) ListProducts(ctx context.Context, orderByTags bool) ([]models.Product, error) {
	query := "SELECT " + productColumns + " FROM products"
	if orderByTags {
		query += " ORDER BY tags"
	}

	rows, err := p.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: list products: %w", err)
	}

	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan products: %w", err)
	}

	return products, nil
}

func (p *Postgres) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	const query = "INSERT INTO products (id, title, tags, link, image_url) VALUES ($1, $2, $3, $4, NULLIF($5, '')) RETURNING " + productColumns

	rows, err := p.Pool.Query(ctx, query, uuid.NewString(), in.Title, in.Tags, in.Link, in.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: insert product: %w", err)
	}

	product, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("postgres: insert product: %w", err)
	}

	return &product, nil
}

// UpdateProduct rewrites title, tags and link. A missing id is not an error.
func (p *Postgres) UpdateProduct(ctx context.Context, id string, in ProductInput) error {
	const query = "UPDATE products SET title = $2, tags = $3, link = $4 WHERE id = $1"
	if _, err := p.Pool.Exec(ctx, query, id, in.Title, in.Tags, in.Link); err != nil {
		return fmt.Errorf("postgres: update product: %w", err)
	}
	return nil
}

func (p *Postgres) DeleteProduct(ctx context.Context, id string) error {
	if _, err := p.Pool.Exec(ctx, "DELETE FROM products WHERE id = $1", id); err != nil {
		return fmt.Errorf("postgres: delete product: %w", err)
	}
	return nil
}

func (p *Postgres) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	rows, err := p.Pool.Query(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("postgres: get product: %w", err)
	}

	product, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres: get product: %w", err)
	}

	return &product, nil
}

func scanProduct(row pgx.CollectableRow) (models.Product, error) {
	var product models.Product
	err := row.Scan(
		&product.ID,
		&product.Title,
		&product.Tags,
		&product.Link,
		&product.ImageURL,
		&product.ImageData,
		&product.CreatedAt,
	)
	return product, err
}
