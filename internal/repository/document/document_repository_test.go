package document

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

func newTestRepo(t *testing.T) DocumentRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "docs.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Document{}))
	return NewDocumentRepository(db, nil)
}

func TestCreateAndFind(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	doc, err := repo.Create(ctx, "Cúm mùa", "Cúm mùa là bệnh nhiễm trùng hô hấp cấp tính.")
	require.NoError(t, err)
	require.NotZero(t, doc.ID)

	found, err := repo.FindByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cúm mùa", found.Title)

	_, err = repo.FindByID(ctx, doc.ID+100)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestCreateValidation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "", "content")
	assert.Error(t, err)
	_, err = repo.Create(ctx, "title", "  ")
	assert.Error(t, err)
	_, err = repo.Create(ctx, strings.Repeat("t", 256), "content")
	assert.Error(t, err)
}

func TestListPagination(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, "doc", "body")
		require.NoError(t, err)
	}

	docs, total, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, docs, 2)
	assert.Greater(t, docs[0].ID, docs[1].ID)

	_, _, err = repo.List(ctx, 0, 0)
	assert.Error(t, err)
	_, _, err = repo.List(ctx, 10, -1)
	assert.Error(t, err)
}
