package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"paperchat/internal/models"
	"paperchat/internal/util"
)

// PostgresStore backs the Store contract with a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	s := &PostgresStore{pool: pool}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS users (
  id SERIAL PRIMARY KEY,
  google_id TEXT UNIQUE NOT NULL,
  email TEXT UNIQUE NOT NULL,
  name TEXT NOT NULL,
  username TEXT UNIQUE NOT NULL,
  organization TEXT NOT NULL,
  research_interests TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS documents (
  id SERIAL PRIMARY KEY,
  user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  filename TEXT NOT NULL,
  doc_text TEXT,
  pages INTEGER NOT NULL,
  chunks INTEGER NOT NULL,
  summary TEXT,
  uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS messages (
  id SERIAL PRIMARY KEY,
  user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  role TEXT NOT NULL,
  content TEXT NOT NULL,
  citations TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_documents_user ON documents(user_id, uploaded_at DESC);
CREATE INDEX IF NOT EXISTS idx_messages_user ON messages(user_id, created_at);
`
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	err := s.pool.QueryRow(ctx, `
INSERT INTO users (google_id, email, name, username, organization, research_interests)
VALUES ($1, $2, $3, $4, $5, NULLIF($6,''))
RETURNING id, created_at`,
		u.GoogleID, u.Email, u.Name, u.Username, u.Organization, u.ResearchInterests,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.User{}, util.ErrUsernameTaken
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) GetUserByGoogleID(ctx context.Context, googleID string) (models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx, `
SELECT id, google_id, email, name, username, organization, COALESCE(research_interests,''), created_at
FROM users WHERE google_id=$1`, googleID,
	).Scan(&u.ID, &u.GoogleID, &u.Email, &u.Name, &u.Username, &u.Organization, &u.ResearchInterests, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, util.ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user by google id: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx, `
SELECT id, google_id, email, name, username, organization, COALESCE(research_interests,''), created_at
FROM users WHERE id=$1`, id,
	).Scan(&u.ID, &u.GoogleID, &u.Email, &u.Name, &u.Username, &u.Organization, &u.ResearchInterests, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, util.ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) AddDocument(ctx context.Context, d models.Document) (models.Document, error) {
	err := s.pool.QueryRow(ctx, `
INSERT INTO documents (user_id, filename, doc_text, pages, chunks, summary)
VALUES ($1, $2, $3, $4, $5, NULLIF($6,''))
RETURNING id, uploaded_at`,
		d.UserID, d.Filename, d.Text, d.Pages, d.Chunks, d.Summary,
	).Scan(&d.ID, &d.UploadedAt)
	if err != nil {
		return models.Document{}, fmt.Errorf("add document: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) ListDocuments(ctx context.Context, userID int64) ([]models.Document, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, user_id, filename, COALESCE(doc_text,''), pages, chunks, COALESCE(summary,''), uploaded_at
FROM documents
WHERE user_id=$1
ORDER BY uploaded_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	out := make([]models.Document, 0)
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.UserID, &d.Filename, &d.Text, &d.Pages, &d.Chunks, &d.Summary, &d.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) GetDocument(ctx context.Context, id int64) (models.Document, error) {
	var d models.Document
	err := s.pool.QueryRow(ctx, `
SELECT id, user_id, filename, COALESCE(doc_text,''), pages, chunks, COALESCE(summary,''), uploaded_at
FROM documents WHERE id=$1`, id,
	).Scan(&d.ID, &d.UserID, &d.Filename, &d.Text, &d.Pages, &d.Chunks, &d.Summary, &d.UploadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Document{}, util.ErrNotFound
	}
	if err != nil {
		return models.Document{}, fmt.Errorf("get document: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) DeleteDocument(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return util.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) AddMessage(ctx context.Context, m models.ChatMessage) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO messages (user_id, role, content, citations)
VALUES ($1, $2, $3, NULLIF($4,''))`,
		m.UserID, m.Role, m.Content, m.Citations)
	if err != nil {
		return fmt.Errorf("add message: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListMessages(ctx context.Context, userID int64, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	rows, err := s.pool.Query(ctx, `
SELECT id, user_id, role, content, COALESCE(citations,''), created_at
FROM messages
WHERE user_id=$1
ORDER BY created_at ASC, id ASC
LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	out := make([]models.ChatMessage, 0)
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &m.Citations, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ClearMessages(ctx context.Context, userID int64) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM messages WHERE user_id=$1`, userID); err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}
	return nil
}

func (s *PostgresStore) UserStats(ctx context.Context, userID int64) (models.UserStats, error) {
	var st models.UserStats
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM documents WHERE user_id=$1`, userID).Scan(&st.DocumentsUploaded); err != nil {
		return models.UserStats{}, fmt.Errorf("count documents: %w", err)
	}
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM messages WHERE user_id=$1`, userID).Scan(&st.MessagesSent); err != nil {
		return models.UserStats{}, fmt.Errorf("count messages: %w", err)
	}
	return st, nil
}
