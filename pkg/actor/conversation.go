package actor

import "time"

// ContextKeyReputation is the ConversationEntry context key holding the
// reputation snapshot taken after the turn.
const ContextKeyReputation = "reputation"

// ConversationEntry is one recorded exchange between a player and an NPC.
type ConversationEntry struct {
	Timestamp     time.Time         `json:"timestamp"`
	PlayerMessage string            `json:"player_message"`
	NPCResponse   string            `json:"npc_response"`
	Context       map[string]string `json:"context"`
}
