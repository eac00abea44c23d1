package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jwebster45206/npc-engine/pkg/actor"
)

const (
	// MaxHistoryEntries caps the conversation log kept per (player, npc) pair.
	MaxHistoryEntries = 50
	// HistoryTTL is refreshed on every turn; idle pairs forget each other.
	HistoryTTL = 7 * 24 * time.Hour
)

var (
	// ErrNPCExists is returned when creating an NPC whose id is taken.
	ErrNPCExists = errors.New("npc already exists")
	// ErrNPCNotFound is returned by operations that require an existing NPC.
	ErrNPCNotFound = errors.New("npc not found")
)

// Turn is everything a single chat exchange writes. It is committed as
// one unit: either all of it lands or none of it does.
type Turn struct {
	PlayerID   string
	NPCID      string
	Reputation int // new absolute score for the pair
	Entry      actor.ConversationEntry
}

// Storage defines the persistence operations for NPCs, conversation
// history, reputation, and per-NPC statistics.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// NPC records
	CreateNPC(ctx context.Context, npc *actor.NPC) error
	// GetNPC returns nil, nil when the NPC does not exist.
	GetNPC(ctx context.Context, npcID string) (*actor.NPC, error)
	DeleteNPC(ctx context.Context, npcID string) error
	GetConversationCount(ctx context.Context, npcID string) (int64, error)

	// Per-(player, npc) state
	// GetConversationHistory returns at most limit entries, newest first.
	GetConversationHistory(ctx context.Context, playerID, npcID string, limit int) ([]actor.ConversationEntry, error)
	// GetReputation returns 0 for a pair that has never talked.
	GetReputation(ctx context.Context, playerID, npcID string) (int, error)
	RecordTurn(ctx context.Context, turn Turn) error
}
