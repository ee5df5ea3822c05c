package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bentswoodworking/bents-api/internal/models"
	"github.com/bentswoodworking/bents-api/internal/utils"
)

type Mongo struct {
	Client   *mongo.Client
	Database *mongo.Database
	Sessions *mongo.Collection
}

// sessionDocument mirrors session_hist. SessionData holds the JSON-encoded
// session list so documents round-trip byte for byte with Postgres.
type sessionDocument struct {
	UserID      string    `bson:"_id"`
	SessionData string    `bson:"session_data"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func NewMongo(ctx context.Context, cfg utils.MongoConfig) (*Mongo, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo: uri is required")
	}

	clientOpts := options.Client().ApplyURI(cfg.URI)
	if cfg.ConnectTimeout > 0 {
		clientOpts.SetServerSelectionTimeout(cfg.ConnectTimeout)
	}

	ctx, cancel := context.WithTimeout(ctx, timeoutOrDefault(cfg.ConnectTimeout))
	defer cancel()

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}

	db := client.Database(cfg.Database)
	return &Mongo{
		Client:   client,
		Database: db,
		Sessions: db.Collection("session_hist"),
	}, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	if m == nil || m.Client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return m.Client.Disconnect(ctx)
}

func (m *Mongo) EnsureCollections(ctx context.Context) error {
	if m == nil || m.Database == nil {
		return fmt.Errorf("mongo: database not initialised")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := m.Sessions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "updated_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("mongo: ensure session index: %w", err)
	}

	return nil
}

func (m *Mongo) LoadSessions(ctx context.Context, userID string) (*models.SessionRecord, error) {
	var doc sessionDocument
	if err := m.Sessions.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mongo: load sessions: %w", err)
	}

	return doc.record(), nil
}

func (m *Mongo) SaveSessions(ctx context.Context, userID string, sessions []models.Session) (*models.SessionRecord, error) {
	payload, err := encodeSessions(sessions)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	update := bson.M{
		"$set":         bson.M{"session_data": string(payload), "updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc sessionDocument
	if err := m.Sessions.FindOneAndUpdate(ctx, bson.M{"_id": userID}, update, opts).Decode(&doc); err != nil {
		return nil, fmt.Errorf("mongo: save sessions: %w", err)
	}

	return doc.record(), nil
}

func (d sessionDocument) record() *models.SessionRecord {
	return &models.SessionRecord{
		UserID:      d.UserID,
		SessionData: []byte(d.SessionData),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}
