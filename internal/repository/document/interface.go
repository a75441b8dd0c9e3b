// File: internal/repository/document/interface.go
package document

import (
	"context"

	"github.com/iyunix/go-meddy/internal/domain"
)

// DocumentRepository handles knowledge-base document rows.
type DocumentRepository interface {
	Create(ctx context.Context, title, content string) (*domain.Document, error)
	FindByID(ctx context.Context, id uint) (*domain.Document, error)
	List(ctx context.Context, limit, offset int) ([]domain.Document, int64, error)
}
