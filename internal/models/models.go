package models

import "time"

type User struct {
	ID                int64     `json:"id"`
	GoogleID          string    `json:"google_id"`
	Email             string    `json:"email"`
	Name              string    `json:"name"`
	Username          string    `json:"username"`
	Organization      string    `json:"organization"`
	ResearchInterests string    `json:"research_interests,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

type Document struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Filename   string    `json:"filename"`
	Text       string    `json:"-"`
	Pages      int       `json:"pages"`
	Chunks     int       `json:"chunks"`
	Summary    string    `json:"summary,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Chunk is a page-sized retrieval unit derived from a Document's text at
// query time. Chunks are never persisted; they are recomputed per query.
type Chunk struct {
	Text   string `json:"text"`
	Page   string `json:"page"`
	Source string `json:"source"`
}

// ScoredChunk pairs a Chunk with its lexical relevance score during
// ranking. Discarded after top-k selection.
type ScoredChunk struct {
	Chunk Chunk `json:"chunk"`
	Score int   `json:"score"`
}

type ChatMessage struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Citations string    `json:"citations,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type UserStats struct {
	DocumentsUploaded int `json:"documents_uploaded"`
	MessagesSent      int `json:"messages_sent"`
}
