package prompts

import (
	"fmt"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/chat"
)

// DefaultHistoryTurns is how many past exchanges are replayed to the LLM.
const DefaultHistoryTurns = 5

// Builder constructs chat messages for an NPC turn using a fluent interface.
type Builder struct {
	systemPrompt string
	history      []actor.ConversationEntry // newest first, as stored
	historyLimit int
	userMessage  string
}

// New creates a new prompt builder with default settings.
func New() *Builder {
	return &Builder{
		historyLimit: DefaultHistoryTurns,
	}
}

// WithSystemPrompt sets the persona prompt.
func (b *Builder) WithSystemPrompt(prompt string) *Builder {
	b.systemPrompt = prompt
	return b
}

// WithHistory sets past exchanges, newest first.
func (b *Builder) WithHistory(history []actor.ConversationEntry) *Builder {
	b.history = history
	return b
}

// WithHistoryLimit sets how many exchanges are replayed.
func (b *Builder) WithHistoryLimit(limit int) *Builder {
	b.historyLimit = limit
	return b
}

// WithUserMessage sets the player's current message.
func (b *Builder) WithUserMessage(message string) *Builder {
	b.userMessage = message
	return b
}

// Build returns system prompt, replayed history in chronological order, then
// the current message.
func (b *Builder) Build() ([]chat.ChatMessage, error) {
	if b.systemPrompt == "" {
		return nil, fmt.Errorf("system prompt is required")
	}
	return BuildMessageSequence(b.systemPrompt, b.history, b.historyLimit, b.userMessage), nil
}

// BuildMessageSequence turns a newest-first history into the message list
// consumed by the LLM.
func BuildMessageSequence(systemPrompt string, history []actor.ConversationEntry, maxTurns int, current string) []chat.ChatMessage {
	if maxTurns < 0 {
		maxTurns = 0
	}
	window := history
	if len(window) > maxTurns {
		window = window[:maxTurns]
	}

	messages := make([]chat.ChatMessage, 0, 2*len(window)+2)
	messages = append(messages, chat.ChatMessage{Role: chat.ChatRoleSystem, Content: systemPrompt})

	for i := len(window) - 1; i >= 0; i-- {
		messages = append(messages,
			chat.ChatMessage{Role: chat.ChatRoleUser, Content: window[i].PlayerMessage},
			chat.ChatMessage{Role: chat.ChatRoleAgent, Content: window[i].NPCResponse},
		)
	}

	return append(messages, chat.ChatMessage{Role: chat.ChatRoleUser, Content: current})
}
