package types

import "github.com/agentfashion/storefront/pkg/enums"

// ChatMessage is one turn of the conversation sent as history.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /v1/chat/stream.
type ChatRequest struct {
	Message string        `json:"message" validate:"required"`
	History []ChatMessage `json:"history,omitempty"`
}

// ChatChunk is one decoded frame of the reply stream.
type ChatChunk struct {
	Type     enums.ChunkType `json:"type"`
	Content  string          `json:"content,omitempty"`
	Products []Product       `json:"products,omitempty"`
}
