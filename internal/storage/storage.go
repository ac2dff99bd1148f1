// Package storage persists users, documents, and chat history. Two
// backends implement one contract: Postgres through pgxpool for
// deployment, embedded SQLite for local development and tests. The
// backend is chosen once at startup and hidden behind Store.
package storage

import (
	"context"

	"paperchat/internal/config"
	"paperchat/internal/models"
)

// Store is the persistence contract the rest of the service works
// against. Lookups that match nothing return util.ErrNotFound; creating
// a user that violates a uniqueness constraint returns
// util.ErrUsernameTaken.
type Store interface {
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (models.User, error)
	GetUserByID(ctx context.Context, id int64) (models.User, error)

	AddDocument(ctx context.Context, d models.Document) (models.Document, error)
	ListDocuments(ctx context.Context, userID int64) ([]models.Document, error)
	GetDocument(ctx context.Context, id int64) (models.Document, error)
	DeleteDocument(ctx context.Context, id int64) error

	AddMessage(ctx context.Context, m models.ChatMessage) error
	ListMessages(ctx context.Context, userID int64, limit int) ([]models.ChatMessage, error)
	ClearMessages(ctx context.Context, userID int64) error

	UserStats(ctx context.Context, userID int64) (models.UserStats, error)

	Close()
}

const defaultHistoryLimit = 50

// Open selects the backend from configuration: a DATABASE_URL means
// Postgres, otherwise the embedded SQLite file at cfg.SQLitePath.
func Open(ctx context.Context, cfg config.Config) (Store, error) {
	if cfg.DatabaseURL != "" {
		return NewPostgresStore(ctx, cfg.DatabaseURL)
	}
	return NewSQLiteStore(cfg.SQLitePath)
}
