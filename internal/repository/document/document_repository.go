// File: internal/repository/document/document_repository.go
package document

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/iyunix/go-meddy/internal/domain"
	"github.com/iyunix/go-meddy/internal/logging"
	"gorm.io/gorm"
)

var ErrDocumentNotFound = errors.New("document not found")

const maxTitleLength = 255

type gormDocumentRepository struct {
	db     *gorm.DB
	logger logging.Logger
}

func NewDocumentRepository(db *gorm.DB, logger logging.Logger) DocumentRepository {
	return &gormDocumentRepository{db: db, logger: logging.OrNoOp(logger)}
}

func (r *gormDocumentRepository) Create(ctx context.Context, title, content string) (*domain.Document, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, errors.New("validation failed: title and content are required")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return nil, fmt.Errorf("validation failed: title exceeds %d characters", maxTitleLength)
	}

	doc := &domain.Document{Title: title, Content: content}
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		r.logger.Error("[DocumentRepository] Database error during document creation", "error", err)
		return nil, fmt.Errorf("database error creating document: %w", err)
	}

	r.logger.Info("[DocumentRepository] Document created", "id", doc.ID)
	return doc, nil
}

func (r *gormDocumentRepository) FindByID(ctx context.Context, id uint) (*domain.Document, error) {
	if id == 0 {
		return nil, errors.New("invalid document ID")
	}

	var doc domain.Document
	err := r.db.WithContext(ctx).First(&doc, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		r.logger.Error("[DocumentRepository] Database error in FindByID", "id", id, "error", err)
		return nil, fmt.Errorf("database error fetching document: %w", err)
	}
	return &doc, nil
}

// List pages through documents, newest first.
func (r *gormDocumentRepository) List(ctx context.Context, limit, offset int) ([]domain.Document, int64, error) {
	if limit <= 0 || limit > 1000 {
		return nil, 0, errors.New("invalid limit: must be between 1 and 1000")
	}
	if offset < 0 {
		return nil, 0, errors.New("invalid offset: must be >= 0")
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Document{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("database error counting documents: %w", err)
	}

	var docs []domain.Document
	err := r.db.WithContext(ctx).
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&docs).Error
	if err != nil {
		r.logger.Error("[DocumentRepository] Database error listing documents", "error", err)
		return nil, 0, fmt.Errorf("database error listing documents: %w", err)
	}
	return docs, total, nil
}
