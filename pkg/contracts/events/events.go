// Package events contains event contract definitions for WebSocket
// communication with the chat agent.
package events

import "time"

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Chat messages
	MessageTypeChatAsk    MessageType = "chat:ask"
	MessageTypeChatAnswer MessageType = "chat:answer"
	MessageTypeChatReset  MessageType = "chat:reset"

	// Connection messages
	MessageTypeConnect MessageType = "connect"
	MessageTypeError   MessageType = "error"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// ChatAsk is sent by the client to pose a question.
type ChatAsk struct {
	BaseMessage
	Question string `json:"question"`
}

// ChatAnswer carries the agent's reply back to the client.
type ChatAnswer struct {
	BaseMessage
	Answer string `json:"answer"`
}

// ErrorMessage reports a failure on the socket without closing it.
type ErrorMessage struct {
	BaseMessage
	Error string `json:"error"`
}
