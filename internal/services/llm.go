package services

import (
	"context"

	"github.com/jwebster45206/npc-engine/pkg/chat"
)

// LLMService defines the interface for interacting with the LLM backend
type LLMService interface {
	// Name identifies the backend in logs and health output
	Name() string

	// InitModel prepares the backend on startup (pulls models, checks access)
	InitModel(ctx context.Context) error

	// GetChatResponse generates a completion for a role-tagged message sequence
	GetChatResponse(ctx context.Context, messages []chat.ChatMessage, opts chat.CompletionOptions) (*chat.Completion, error)
}
