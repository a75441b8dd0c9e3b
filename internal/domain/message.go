// File: internal/domain/message.go
package domain

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleFunction  = "function"
	RoleTool      = "tool"
)

// ChatMessage is a single entry of an LLM message chain.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`

	// Set on assistant turns that ask for tools, and on the tool results
	// answering them.
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

func SystemMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleSystem, Content: content}
}

func UserMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleUser, Content: content}
}

func AssistantMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleAssistant, Content: content}
}

func ToolResultMessage(callID, name, content string) ChatMessage {
	return ChatMessage{Role: RoleTool, Content: content, ToolCallID: callID, Name: name}
}

// ToolCall is a function invocation requested by the model.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}
