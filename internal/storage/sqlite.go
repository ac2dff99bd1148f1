package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"paperchat/internal/models"
	"paperchat/internal/util"
)

// SQLiteStore backs the Store contract with an embedded SQLite database.
// Timestamps are stored as RFC3339 text so both dialects present
// time.Time values to callers.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One pooled connection: serializes writers and keeps :memory:
	// databases on a single underlying handle.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  google_id TEXT UNIQUE NOT NULL,
  email TEXT UNIQUE NOT NULL,
  name TEXT NOT NULL,
  username TEXT UNIQUE NOT NULL,
  organization TEXT NOT NULL,
  research_interests TEXT,
  created_at TEXT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS documents (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  filename TEXT NOT NULL,
  doc_text TEXT,
  pages INTEGER NOT NULL,
  chunks INTEGER NOT NULL,
  summary TEXT,
  uploaded_at TEXT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS messages (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  role TEXT NOT NULL,
  content TEXT NOT NULL,
  citations TEXT,
  created_at TEXT NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_user ON documents(user_id, uploaded_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_user ON messages(user_id, created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() {
	_ = s.db.Close()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (s *SQLiteStore) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	res, err := s.db.ExecContext(ctx, `
INSERT INTO users (google_id, email, name, username, organization, research_interests, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.GoogleID, u.Email, u.Name, u.Username, u.Organization, u.ResearchInterests,
		time.Now().UTC().Format(time.RFC3339))
	if isUniqueViolation(err) {
		return models.User{}, util.ErrUsernameTaken
	}
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("create user id: %w", err)
	}
	return s.GetUserByID(ctx, id)
}

func (s *SQLiteStore) GetUserByGoogleID(ctx context.Context, googleID string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, google_id, email, name, username, organization, COALESCE(research_interests,''), created_at
FROM users WHERE google_id=?`, googleID)
	return scanUser(row)
}

func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, google_id, email, name, username, organization, COALESCE(research_interests,''), created_at
FROM users WHERE id=?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (models.User, error) {
	var (
		u       models.User
		created string
	)
	err := row.Scan(&u.ID, &u.GoogleID, &u.Email, &u.Name, &u.Username, &u.Organization, &u.ResearchInterests, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, util.ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt, err = time.Parse(time.RFC3339, created)
	if err != nil {
		return models.User{}, fmt.Errorf("parse user created_at: %w", err)
	}
	return u, nil
}

func (s *SQLiteStore) AddDocument(ctx context.Context, d models.Document) (models.Document, error) {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := s.db.ExecContext(ctx, `
INSERT INTO documents (user_id, filename, doc_text, pages, chunks, summary, uploaded_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.UserID, d.Filename, d.Text, d.Pages, d.Chunks, d.Summary, now.Format(time.RFC3339))
	if err != nil {
		return models.Document{}, fmt.Errorf("add document: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Document{}, fmt.Errorf("add document id: %w", err)
	}
	d.ID = id
	d.UploadedAt = now
	return d, nil
}

func (s *SQLiteStore) ListDocuments(ctx context.Context, userID int64) ([]models.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, user_id, filename, COALESCE(doc_text,''), pages, chunks, COALESCE(summary,''), uploaded_at
FROM documents
WHERE user_id=?
ORDER BY uploaded_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	out := make([]models.Document, 0)
	for rows.Next() {
		var (
			d        models.Document
			uploaded string
		)
		if err := rows.Scan(&d.ID, &d.UserID, &d.Filename, &d.Text, &d.Pages, &d.Chunks, &d.Summary, &uploaded); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		if d.UploadedAt, err = time.Parse(time.RFC3339, uploaded); err != nil {
			return nil, fmt.Errorf("parse document uploaded_at: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) GetDocument(ctx context.Context, id int64) (models.Document, error) {
	var (
		d        models.Document
		uploaded string
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, user_id, filename, COALESCE(doc_text,''), pages, chunks, COALESCE(summary,''), uploaded_at
FROM documents WHERE id=?`, id,
	).Scan(&d.ID, &d.UserID, &d.Filename, &d.Text, &d.Pages, &d.Chunks, &d.Summary, &uploaded)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Document{}, util.ErrNotFound
	}
	if err != nil {
		return models.Document{}, fmt.Errorf("get document: %w", err)
	}
	if d.UploadedAt, err = time.Parse(time.RFC3339, uploaded); err != nil {
		return models.Document{}, fmt.Errorf("parse document uploaded_at: %w", err)
	}
	return d, nil
}

func (s *SQLiteStore) DeleteDocument(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document rows: %w", err)
	}
	if n == 0 {
		return util.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) AddMessage(ctx context.Context, m models.ChatMessage) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO messages (user_id, role, content, citations, created_at)
VALUES (?, ?, ?, ?, ?)`,
		m.UserID, m.Role, m.Content, m.Citations, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("add message: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListMessages(ctx context.Context, userID int64, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, user_id, role, content, COALESCE(citations,''), created_at
FROM messages
WHERE user_id=?
ORDER BY created_at ASC, id ASC
LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	out := make([]models.ChatMessage, 0)
	for rows.Next() {
		var (
			m       models.ChatMessage
			created string
		)
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &m.Citations, &created); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if m.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
			return nil, fmt.Errorf("parse message created_at: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) ClearMessages(ctx context.Context, userID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE user_id=?`, userID); err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UserStats(ctx context.Context, userID int64) (models.UserStats, error) {
	var st models.UserStats
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE user_id=?`, userID).Scan(&st.DocumentsUploaded); err != nil {
		return models.UserStats{}, fmt.Errorf("count documents: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE user_id=?`, userID).Scan(&st.MessagesSent); err != nil {
		return models.UserStats{}, fmt.Errorf("count messages: %w", err)
	}
	return st, nil
}
