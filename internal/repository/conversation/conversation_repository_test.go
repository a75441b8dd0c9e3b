package conversation

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/iyunix/go-meddy/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestRepo(t *testing.T) ConversationRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.ConversationMessage{}))
	return NewConversationRepository(db, nil)
}

func TestAppendAndFindInOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Append(ctx, &domain.ConversationMessage{ConversationID: "c1", Message: "Đau đầu là gì?", IsRequest: true})
	require.NoError(t, err)
	_, err = repo.Append(ctx, &domain.ConversationMessage{ConversationID: "c1", Message: "Tóm tắt", IsRequest: false, IsCompleted: true})
	require.NoError(t, err)
	_, err = repo.Append(ctx, &domain.ConversationMessage{ConversationID: "other", Message: "x", IsRequest: true})
	require.NoError(t, err)

	rows, err := repo.FindByConversationID(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].IsRequest)
	assert.Equal(t, "Tóm tắt", rows[1].Message)
	assert.Equal(t, domain.DefaultBotID, rows[0].BotID)
	assert.Equal(t, domain.DefaultUserID, rows[0].UserID)

	count, err := repo.CountByConversationID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestFindUnknownConversation(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.FindByConversationID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestAppendValidation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	cases := []struct {
		name string
		msg  *domain.ConversationMessage
	}{
		{"nil", nil},
		{"empty conversation", &domain.ConversationMessage{Message: "hi"}},
		{"long conversation", &domain.ConversationMessage{ConversationID: strings.Repeat("a", 101), Message: "hi"}},
		{"empty message", &domain.ConversationMessage{ConversationID: "c1", Message: "   "}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := repo.Append(ctx, tc.msg)
			assert.Error(t, err)
		})
	}
}
