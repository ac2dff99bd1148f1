package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"paperchat/internal/models"
	"paperchat/internal/util"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func seedUser(t *testing.T, s *SQLiteStore, googleID, username string) models.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), models.User{
		GoogleID:     googleID,
		Email:        username + "@example.com",
		Name:         "Test User",
		Username:     username,
		Organization: "Test Lab",
	})
	require.NoError(t, err)
	return u
}

func TestCreateAndFetchUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "google-123", "researcher")
	require.NotZero(t, u.ID)
	require.False(t, u.CreatedAt.IsZero())

	byGoogle, err := s.GetUserByGoogleID(ctx, "google-123")
	require.NoError(t, err)
	require.Equal(t, u.ID, byGoogle.ID)
	require.Equal(t, "researcher", byGoogle.Username)

	byID, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "researcher@example.com", byID.Email)

	_, err = s.GetUserByGoogleID(ctx, "no-such-user")
	require.ErrorIs(t, err, util.ErrNotFound)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "google-1", "taken")

	_, err := s.CreateUser(context.Background(), models.User{
		GoogleID:     "google-2",
		Email:        "other@example.com",
		Name:         "Other",
		Username:     "taken",
		Organization: "Lab",
	})
	require.ErrorIs(t, err, util.ErrUsernameTaken)
}

func TestDocumentLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "google-123", "researcher")

	first, err := s.AddDocument(ctx, models.Document{
		UserID:   u.ID,
		Filename: "first",
		Text:     "--- Page 1 ---\nfirst document text",
		Pages:    1,
		Chunks:   1,
		Summary:  "first summary",
	})
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	second, err := s.AddDocument(ctx, models.Document{
		UserID:   u.ID,
		Filename: "second",
		Text:     "--- Page 1 ---\nsecond document text",
		Pages:    1,
		Chunks:   1,
	})
	require.NoError(t, err)

	docs, err := s.ListDocuments(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	// Newest first.
	require.Equal(t, second.ID, docs[0].ID)
	require.Equal(t, first.ID, docs[1].ID)
	require.Equal(t, "--- Page 1 ---\nsecond document text", docs[0].Text)

	got, err := s.GetDocument(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.UserID)
	require.Equal(t, "first summary", got.Summary)

	require.NoError(t, s.DeleteDocument(ctx, first.ID))
	_, err = s.GetDocument(ctx, first.ID)
	require.ErrorIs(t, err, util.ErrNotFound)
	require.ErrorIs(t, s.DeleteDocument(ctx, first.ID), util.ErrNotFound)
}

func TestMessagesAscendingWithLimitAndClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "google-123", "researcher")

	require.NoError(t, s.AddMessage(ctx, models.ChatMessage{UserID: u.ID, Role: "user", Content: "question one"}))
	require.NoError(t, s.AddMessage(ctx, models.ChatMessage{UserID: u.ID, Role: "assistant", Content: "answer one", Citations: "References from Paper:"}))
	require.NoError(t, s.AddMessage(ctx, models.ChatMessage{UserID: u.ID, Role: "user", Content: "question two"}))

	msgs, err := s.ListMessages(ctx, u.ID, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	require.Equal(t, "question one", msgs[0].Content)
	require.Equal(t, "assistant", msgs[1].Role)
	require.Equal(t, "References from Paper:", msgs[1].Citations)
	require.Equal(t, "question two", msgs[2].Content)

	limited, err := s.ListMessages(ctx, u.ID, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	require.Equal(t, "question one", limited[0].Content)

	require.NoError(t, s.ClearMessages(ctx, u.ID))
	msgs, err = s.ListMessages(ctx, u.ID, 0)
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestUserStatsCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "google-123", "researcher")
	other := seedUser(t, s, "google-456", "bystander")

	_, err := s.AddDocument(ctx, models.Document{UserID: u.ID, Filename: "doc", Text: "text", Pages: 1, Chunks: 1})
	require.NoError(t, err)
	require.NoError(t, s.AddMessage(ctx, models.ChatMessage{UserID: u.ID, Role: "user", Content: "q"}))
	require.NoError(t, s.AddMessage(ctx, models.ChatMessage{UserID: u.ID, Role: "assistant", Content: "a"}))

	st, err := s.UserStats(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 1, st.DocumentsUploaded)
	require.Equal(t, 2, st.MessagesSent)

	st, err = s.UserStats(ctx, other.ID)
	require.NoError(t, err)
	require.Zero(t, st.DocumentsUploaded)
	require.Zero(t, st.MessagesSent)
}
