package chat

import (
	"fmt"
	"strings"
)

const (
	ChatRoleUser   = "user"      // Player
	ChatRoleAgent  = "assistant" // NPC
	ChatRoleSystem = "system"    // Persona and instructions
)

// ChatMessage represents a single role-tagged message sent to the LLM.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// CompletionOptions tunes a single completion call. Zero values mean
// "use the backend default".
type CompletionOptions struct {
	MaxTokens   int
	Temperature float64
	Quest       bool // structured quest payload requested
}

// Completion is the text produced by the LLM backend.
type Completion struct {
	Message string `json:"message"`
}

// ChatRequest is a player's message to an NPC.
type ChatRequest struct {
	PlayerID string `json:"player_id"`
	NPCID    string `json:"npc_id"`
	Message  string `json:"message"`
}

// ChatResponse is returned to the game client after a turn.
type ChatResponse struct {
	NPCResponse  string `json:"npc_response"`
	NPCEmotion   string `json:"npc_emotion,omitempty"`
	QuestOffered bool   `json:"quest_offered"`
}

// QuestRequest asks an NPC to offer a quest.
type QuestRequest struct {
	PlayerID string `json:"player_id"`
	NPCID    string `json:"npc_id"`
	Context  string `json:"context,omitempty"`
}

func (cr *ChatRequest) Validate() error {
	if strings.TrimSpace(cr.PlayerID) == "" {
		return fmt.Errorf("player_id cannot be empty")
	}
	if strings.TrimSpace(cr.NPCID) == "" {
		return fmt.Errorf("npc_id cannot be empty")
	}
	if cr.Message == "" {
		return fmt.Errorf("message cannot be empty")
	}
	return nil
}

func (qr *QuestRequest) Validate() error {
	if strings.TrimSpace(qr.PlayerID) == "" {
		return fmt.Errorf("player_id cannot be empty")
	}
	if strings.TrimSpace(qr.NPCID) == "" {
		return fmt.Errorf("npc_id cannot be empty")
	}
	return nil
}
