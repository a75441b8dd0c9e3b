// File: internal/handlers/chat_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/iyunix/go-meddy/internal/cache"
	"github.com/iyunix/go-meddy/internal/logging"
	"github.com/iyunix/go-meddy/internal/services/chat"
	"github.com/iyunix/go-meddy/internal/tasks"
)

const (
	DefaultBotID  = "medical_rag_bot"
	DefaultUserID = "user_1"

	pendingTimeoutMessage = "408 Request Timeout: The task is still pending after 60 seconds."
)

// ChatTasks is the slice of the task client the chat endpoints use.
type ChatTasks interface {
	EnqueueChatMessage(ctx context.Context, p tasks.ChatMessagePayload) (string, error)
	Wait(ctx context.Context, taskID string) (*tasks.Status, bool, error)
}

type ChatHandler struct {
	chat     chat.MessageHandler
	tasks    ChatTasks
	sessions cache.SessionStore
	markdown *MarkdownRenderer
	logger   logging.Logger
}

func NewChatHandler(handler chat.MessageHandler, taskClient ChatTasks, sessions cache.SessionStore, logger logging.Logger) *ChatHandler {
	return &ChatHandler{
		chat:     handler,
		tasks:    taskClient,
		sessions: sessions,
		markdown: NewMarkdownRenderer(),
		logger:   logging.OrNoOp(logger),
	}
}

// completeRequest uses pointers so absent fields can be told apart from
// empty ones.
type completeRequest struct {
	BotID         *string                `json:"bot_id"`
	UserID        *string                `json:"user_id"`
	UserMessage   *string                `json:"user_message"`
	IsSyncRequest bool                   `json:"is_sync_request"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	RenderHTML    bool                   `json:"render_html"`
}

func (req *completeRequest) ids() (string, string) {
	botID, userID := DefaultBotID, DefaultUserID
	if req.BotID != nil {
		botID = *req.BotID
	}
	if req.UserID != nil {
		userID = *req.UserID
	}
	return botID, userID
}

// Complete answers a chat message inline or hands it to the worker.
func (h *ChatHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusUnprocessableEntity)
		return
	}
	if req.UserMessage == nil {
		writeError(w, "user_message is required", http.StatusUnprocessableEntity)
		return
	}

	botID, userID := req.ids()
	message := *req.UserMessage
	if strings.TrimSpace(botID) == "" || strings.TrimSpace(userID) == "" || strings.TrimSpace(message) == "" {
		writeError(w, "Missing required fields", http.StatusBadRequest)
		return
	}

	if req.IsSyncRequest {
		reply := h.chat.HandleMessage(r.Context(), botID, userID, message)
		body := map[string]interface{}{
			"status":   "completed",
			"response": reply,
		}
		if req.RenderHTML {
			rendered, err := h.markdown.Render(reply.Content)
			if err != nil {
				h.logger.Warn("markdown render failed", "error", err)
			} else {
				body["response_html"] = rendered
			}
		}
		writeJSON(w, http.StatusOK, body)
		return
	}

	taskID, err := h.tasks.EnqueueChatMessage(r.Context(), tasks.ChatMessagePayload{
		BotID:       botID,
		UserID:      userID,
		UserMessage: message,
	})
	if err != nil {
		h.logger.Error("enqueue chat task failed", "bot_id", botID, "user_id", userID, "error", err)
		writeError(w, internalErrorMessage, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "processing",
		"task_id": taskID,
	})
}

// GetResult polls a chat task until it finishes or the poll window closes.
func (h *ChatHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["task_id"]
	if strings.TrimSpace(taskID) == "" {
		writeError(w, "Missing task id", http.StatusBadRequest)
		return
	}

	status, timedOut, err := h.tasks.Wait(r.Context(), taskID)
	if err != nil {
		h.logger.Error("poll task failed", "task_id", taskID, "error", err)
		writeError(w, internalErrorMessage, http.StatusInternalServerError)
		return
	}

	body := map[string]interface{}{
		"task_id":     status.TaskID,
		"status":      status.Status,
		"task_result": status.Result,
	}
	if status.Error != "" {
		body["error"] = status.Error
	}
	if timedOut {
		body["error_message"] = pendingTimeoutMessage
	}
	writeJSON(w, http.StatusOK, body)
}

// ResetConversation drops the session key so the next message starts a new
// conversation.
func (h *ChatHandler) ResetConversation(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	botID, userID := query.Get("bot_id"), query.Get("user_id")
	if botID == "" {
		botID = DefaultBotID
	}
	if userID == "" {
		userID = DefaultUserID
	}

	existed, err := h.sessions.DeleteConversationID(r.Context(), botID, userID)
	if err != nil {
		h.logger.Error("reset conversation failed", "bot_id", botID, "user_id", userID, "error", err)
		writeError(w, internalErrorMessage, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "reset",
		"existed": existed,
	})
}
