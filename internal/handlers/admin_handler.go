// File: internal/handlers/admin_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/iyunix/go-meddy/internal/logging"
	"github.com/iyunix/go-meddy/internal/repository/document"
	"github.com/iyunix/go-meddy/internal/tasks"
)

const documentAcceptedMessage = "Document received and indexing started."

// CollectionCreator creates vector collections. *vectorstore.QdrantStore
// satisfies it.
type CollectionCreator interface {
	CreateCollection(ctx context.Context, name string, dimension int) (string, error)
}

// DocumentIndexer chunks and indexes one stored document.
type DocumentIndexer interface {
	IndexDocument(ctx context.Context, docID uint, title, content string) (int, error)
}

// IndexEnqueuer defers indexing to the worker.
type IndexEnqueuer interface {
	EnqueueDocumentIndex(ctx context.Context, p tasks.DocumentIndexPayload) (string, error)
}

// CollectionDefaults fill in collection parameters the caller left out.
type CollectionDefaults struct {
	Name      string
	Dimension int
}

type AdminHandler struct {
	collections CollectionCreator
	documents   document.DocumentRepository
	indexer     DocumentIndexer
	enqueuer    IndexEnqueuer
	defaults    CollectionDefaults
	logger      logging.Logger
}

func NewAdminHandler(
	collections CollectionCreator,
	documents document.DocumentRepository,
	indexer DocumentIndexer,
	enqueuer IndexEnqueuer,
	defaults CollectionDefaults,
	logger logging.Logger,
) *AdminHandler {
	return &AdminHandler{
		collections: collections,
		documents:   documents,
		indexer:     indexer,
		enqueuer:    enqueuer,
		defaults:    defaults,
		logger:      logging.OrNoOp(logger),
	}
}

// CreateCollection handles POST /collections/create.
func (h *AdminHandler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	name := query.Get("collection_name")
	if name == "" {
		name = h.defaults.Name
	}

	dimension := h.defaults.Dimension
	if raw := query.Get("vector_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 {
			writeError(w, "vector_size must be a positive integer", http.StatusUnprocessableEntity)
			return
		}
		dimension = size
	}

	status, err := h.collections.CreateCollection(r.Context(), name, dimension)
	if err != nil {
		h.logger.Error("create collection failed", "collection", name, "error", err)
		writeError(w, internalErrorMessage, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

type documentRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CreateDocument handles POST /documents/create. Title and content come from
// the query string, or from a JSON body when the query has neither.
func (h *AdminHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := documentRequest{Title: query.Get("title"), Content: query.Get("content")}
	if req.Title == "" && req.Content == "" && r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, "Invalid request body", http.StatusUnprocessableEntity)
			return
		}
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		writeError(w, "Missing required fields", http.StatusBadRequest)
		return
	}

	doc, err := h.documents.Create(r.Context(), req.Title, req.Content)
	if err != nil {
		h.logger.Error("store document failed", "title", req.Title, "error", err)
		writeError(w, internalErrorMessage, http.StatusInternalServerError)
		return
	}

	body := map[string]interface{}{
		"status":      documentAcceptedMessage,
		"document_id": strconv.FormatUint(uint64(doc.ID), 10),
	}

	if async, _ := strconv.ParseBool(query.Get("async")); async && h.enqueuer != nil {
		taskID, err := h.enqueuer.EnqueueDocumentIndex(r.Context(), tasks.DocumentIndexPayload{
			DocumentID: doc.ID,
			Title:      doc.Title,
			Content:    doc.Content,
		})
		if err != nil {
			h.logger.Error("enqueue index task failed", "document_id", doc.ID, "error", err)
			writeError(w, internalErrorMessage, http.StatusInternalServerError)
			return
		}
		body["task_id"] = taskID
		writeJSON(w, http.StatusAccepted, body)
		return
	}

	chunks, err := h.indexer.IndexDocument(r.Context(), doc.ID, doc.Title, doc.Content)
	if err != nil {
		h.logger.Error("index document failed", "document_id", doc.ID, "error", err)
		writeError(w, internalErrorMessage, http.StatusInternalServerError)
		return
	}
	body["chunks"] = chunks
	writeJSON(w, http.StatusOK, body)
}

// ListDocuments handles GET /documents with limit/offset paging.
func (h *AdminHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, err := strconv.Atoi(query.Get("limit"))
	if err != nil || limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset, err := strconv.Atoi(query.Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	docs, total, err := h.documents.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("list documents failed", "error", err)
		writeError(w, internalErrorMessage, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"documents": docs,
		"total":     total,
		"limit":     limit,
		"offset":    offset,
	})
}

// GetDocument handles GET /documents/{id}.
func (h *AdminHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil || id == 0 {
		writeError(w, "Invalid document ID", http.StatusBadRequest)
		return
	}

	doc, err := h.documents.FindByID(r.Context(), uint(id))
	if errors.Is(err, document.ErrDocumentNotFound) {
		writeError(w, "Document not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("load document failed", "document_id", id, "error", err)
		writeError(w, internalErrorMessage, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
