package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/iyunix/go-meddy/internal/cache"
	"github.com/iyunix/go-meddy/internal/domain"
	"github.com/iyunix/go-meddy/internal/repository"
	"github.com/iyunix/go-meddy/internal/repository/document"
	"github.com/iyunix/go-meddy/internal/tasks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChat struct {
	calls [][3]string
	reply string
}

func (s *stubChat) HandleMessage(_ context.Context, botID, userID, query string) domain.ChatMessage {
	s.calls = append(s.calls, [3]string{botID, userID, query})
	return domain.AssistantMessage(s.reply)
}

type stubTasks struct {
	chatPayloads  []tasks.ChatMessagePayload
	indexPayloads []tasks.DocumentIndexPayload
	status        *tasks.Status
	timedOut      bool
	err           error
}

func (s *stubTasks) EnqueueChatMessage(_ context.Context, p tasks.ChatMessagePayload) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.chatPayloads = append(s.chatPayloads, p)
	return "task-1", nil
}

func (s *stubTasks) EnqueueDocumentIndex(_ context.Context, p tasks.DocumentIndexPayload) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.indexPayloads = append(s.indexPayloads, p)
	return "index-1", nil
}

func (s *stubTasks) Wait(_ context.Context, taskID string) (*tasks.Status, bool, error) {
	if s.err != nil {
		return nil, false, s.err
	}
	st := *s.status
	st.TaskID = taskID
	return &st, s.timedOut, nil
}

type stubCollections struct {
	name      string
	dimension int
}

func (s *stubCollections) CreateCollection(_ context.Context, name string, dimension int) (string, error) {
	s.name, s.dimension = name, dimension
	return "created", nil
}

type stubIndexer struct {
	docID uint
	err   error
}

func (s *stubIndexer) IndexDocument(_ context.Context, docID uint, _, _ string) (int, error) {
	s.docID = docID
	return 4, s.err
}

func newSessions(t *testing.T) (*miniredis.Miniredis, cache.SessionStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := cache.NewRedisClient(mr.Addr(), "", 0)
	t.Cleanup(func() { client.Close() })
	return mr, cache.NewRedisSessionStore(client, time.Minute, nil)
}

func newDocuments(t *testing.T) document.DocumentRepository {
	t.Helper()
	db, err := repository.Open(filepath.Join(t.TempDir(), "handlers.db"))
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	return document.NewDocumentRepository(db, nil)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func postJSON(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/chat/complete", strings.NewReader(body)))
	return rec
}

func TestCompleteSync(t *testing.T) {
	chat := &stubChat{reply: "**Tóm tắt**"}
	_, sessions := newSessions(t)
	h := NewChatHandler(chat, &stubTasks{}, sessions, nil)

	rec := postJSON(h.Complete, `{"user_message":"đau đầu","is_sync_request":true,"render_html":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "completed", body["status"])
	assert.Equal(t, map[string]interface{}{"role": "assistant", "content": "**Tóm tắt**"}, body["response"])
	assert.Contains(t, body["response_html"], "<strong>Tóm tắt</strong>")
	require.Len(t, chat.calls, 1)
	assert.Equal(t, [3]string{DefaultBotID, DefaultUserID, "đau đầu"}, chat.calls[0])
}

func TestCompleteAsync(t *testing.T) {
	taskClient := &stubTasks{}
	_, sessions := newSessions(t)
	h := NewChatHandler(&stubChat{}, taskClient, sessions, nil)

	rec := postJSON(h.Complete, `{"bot_id":"b","user_id":"u","user_message":"hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"processing","task_id":"task-1"}`, rec.Body.String())
	assert.Equal(t, []tasks.ChatMessagePayload{{BotID: "b", UserID: "u", UserMessage: "hi"}}, taskClient.chatPayloads)
}

func TestCompleteValidation(t *testing.T) {
	_, sessions := newSessions(t)
	h := NewChatHandler(&stubChat{}, &stubTasks{}, sessions, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, postJSON(h.Complete, `{"bot_id":"b"}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, postJSON(h.Complete, `not json`).Code)

	rec := postJSON(h.Complete, `{"user_message":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Missing required fields"}`, rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, postJSON(h.Complete, `{"bot_id":"","user_message":"hi"}`).Code)
}

func TestCompleteEnqueueFailure(t *testing.T) {
	_, sessions := newSessions(t)
	h := NewChatHandler(&stubChat{}, &stubTasks{err: errors.New("redis down")}, sessions, nil)

	rec := postJSON(h.Complete, `{"user_message":"hi"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error."}`, rec.Body.String())
}

func getResult(h *ChatHandler, id string) *httptest.ResponseRecorder {
	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/chat/complete/"+id, nil), map[string]string{"task_id": id})
	rec := httptest.NewRecorder()
	h.GetResult(rec, req)
	return rec
}

func TestGetResult(t *testing.T) {
	_, sessions := newSessions(t)
	taskClient := &stubTasks{status: &tasks.Status{
		Status: tasks.StatusSuccess,
		Result: json.RawMessage(`{"role":"assistant","content":"ok"}`),
	}}
	h := NewChatHandler(&stubChat{}, taskClient, sessions, nil)

	rec := getResult(h, "abc")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"task_id":"abc","status":"SUCCESS","task_result":{"role":"assistant","content":"ok"}}`, rec.Body.String())
}

func TestGetResultTimeout(t *testing.T) {
	_, sessions := newSessions(t)
	taskClient := &stubTasks{
		status:   &tasks.Status{Status: tasks.StatusPending, Result: json.RawMessage("null")},
		timedOut: true,
	}
	h := NewChatHandler(&stubChat{}, taskClient, sessions, nil)

	body := decode(t, getResult(h, "slow"))
	assert.Equal(t, "PENDING", body["status"])
	assert.Nil(t, body["task_result"])
	assert.Equal(t, pendingTimeoutMessage, body["error_message"])
}

func TestResetConversation(t *testing.T) {
	mr, sessions := newSessions(t)
	h := NewChatHandler(&stubChat{}, &stubTasks{}, sessions, nil)

	_, err := sessions.GetConversationID(context.Background(), "bot", "alice")
	require.NoError(t, err)
	require.True(t, mr.Exists(cache.SessionKey("bot", "alice")))

	rec := httptest.NewRecorder()
	h.ResetConversation(rec, httptest.NewRequest(http.MethodDelete, "/chat/conversation?bot_id=bot&user_id=alice", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"reset","existed":true}`, rec.Body.String())
	assert.False(t, mr.Exists(cache.SessionKey("bot", "alice")))
}

func TestCreateCollection(t *testing.T) {
	collections := &stubCollections{}
	h := NewAdminHandler(collections, nil, nil, nil, CollectionDefaults{Name: "documents", Dimension: 1536}, nil)

	rec := httptest.NewRecorder()
	h.CreateCollection(rec, httptest.NewRequest(http.MethodPost, "/collections/create", nil))
	assert.JSONEq(t, `{"status":"created"}`, rec.Body.String())
	assert.Equal(t, "documents", collections.name)
	assert.Equal(t, 1536, collections.dimension)

	rec = httptest.NewRecorder()
	h.CreateCollection(rec, httptest.NewRequest(http.MethodPost, "/collections/create?collection_name=faq&vector_size=768", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "faq", collections.name)
	assert.Equal(t, 768, collections.dimension)

	rec = httptest.NewRecorder()
	h.CreateCollection(rec, httptest.NewRequest(http.MethodPost, "/collections/create?vector_size=abc", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateDocumentInline(t *testing.T) {
	docs := newDocuments(t)
	indexer := &stubIndexer{}
	h := NewAdminHandler(&stubCollections{}, docs, indexer, &stubTasks{}, CollectionDefaults{}, nil)

	rec := httptest.NewRecorder()
	h.CreateDocument(rec, httptest.NewRequest(http.MethodPost, "/documents/create?title=Cum&content=Sot+cao", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, documentAcceptedMessage, body["status"])
	assert.Equal(t, "1", body["document_id"])
	assert.EqualValues(t, 4, body["chunks"])
	assert.Equal(t, uint(1), indexer.docID)

	stored, err := docs.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Sot cao", stored.Content)
}

func TestCreateDocumentAsyncFromBody(t *testing.T) {
	taskClient := &stubTasks{}
	h := NewAdminHandler(&stubCollections{}, newDocuments(t), &stubIndexer{}, taskClient, CollectionDefaults{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/documents/create?async=true", strings.NewReader(`{"title":"Lao","content":"Ho kéo dài"}`))
	rec := httptest.NewRecorder()
	h.CreateDocument(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "index-1", decode(t, rec)["task_id"])
	require.Len(t, taskClient.indexPayloads, 1)
	assert.Equal(t, "Ho kéo dài", taskClient.indexPayloads[0].Content)
}

func TestCreateDocumentErrors(t *testing.T) {
	h := NewAdminHandler(&stubCollections{}, newDocuments(t), &stubIndexer{err: errors.New("qdrant down")}, nil, CollectionDefaults{}, nil)

	rec := httptest.NewRecorder()
	h.CreateDocument(rec, httptest.NewRequest(http.MethodPost, "/documents/create?title=only", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.CreateDocument(rec, httptest.NewRequest(http.MethodPost, "/documents/create?title=a&content=b", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestListAndGetDocument(t *testing.T) {
	docs := newDocuments(t)
	for _, title := range []string{"a", "b", "c"} {
		_, err := docs.Create(context.Background(), title, "content "+title)
		require.NoError(t, err)
	}
	h := NewAdminHandler(&stubCollections{}, docs, &stubIndexer{}, nil, CollectionDefaults{}, nil)

	rec := httptest.NewRecorder()
	h.ListDocuments(rec, httptest.NewRequest(http.MethodGet, "/documents?limit=2", nil))
	body := decode(t, rec)
	assert.EqualValues(t, 3, body["total"])
	assert.Len(t, body["documents"], 2)

	get := func(id string) *httptest.ResponseRecorder {
		req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/documents/"+id, nil), map[string]string{"id": id})
		rec := httptest.NewRecorder()
		h.GetDocument(rec, req)
		return rec
	}
	rec = get("2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "b", decode(t, rec)["title"])
	assert.Equal(t, http.StatusNotFound, get("42").Code)
	assert.Equal(t, http.StatusBadRequest, get("x").Code)
}

func TestSystemEndpoints(t *testing.T) {
	h := NewSystemHandler(map[string]HealthCheck{
		"database": func(context.Context) error { return nil },
		"qdrant":   func(context.Context) error { return errors.New("connection refused") },
	}, nil)
	h.now = func() time.Time { return time.Unix(1700000000, 0) }

	rec := httptest.NewRecorder()
	h.Root(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.JSONEq(t, `{"message":"Welcome to the Vietnamese Medical RAG-QA System API!"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.JSONEq(t, `{"status":"ready","timestamp":1700000000}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unhealthy","checks":{"database":"ok","qdrant":"connection refused"},"timestamp":1700000000}`, rec.Body.String())
}

func TestMarkdownRendererEscapesRawHTML(t *testing.T) {
	out, err := NewMarkdownRenderer().Render("| a |\n|---|\n| 1 |\n\n<script>x</script>")
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")
	assert.NotContains(t, out, "<script>")
}
