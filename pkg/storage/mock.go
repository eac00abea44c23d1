package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/jwebster45206/npc-engine/pkg/actor"
)

// MockStorage is an in-memory implementation of Storage for testing
type MockStorage struct {
	mu         sync.RWMutex
	npcs       map[string]*actor.NPC
	counts     map[string]int64
	history    map[string][]actor.ConversationEntry // newest first
	reputation map[string]int
	pingError  error
	writeError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		npcs:       make(map[string]*actor.NPC),
		counts:     make(map[string]int64),
		history:    make(map[string][]actor.ConversationEntry),
		reputation: make(map[string]int),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetWriteError makes every mutating call fail with err. Pass nil to clear.
func (m *MockStorage) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeError = err
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) CreateNPC(ctx context.Context, npc *actor.NPC) error {
	if npc == nil {
		return errors.New("npc cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeError != nil {
		return m.writeError
	}
	if _, ok := m.npcs[npc.ID]; ok {
		return ErrNPCExists
	}
	stored := *npc
	stored.ConversationCount = 0
	m.npcs[npc.ID] = &stored
	return nil
}

func (m *MockStorage) GetNPC(ctx context.Context, npcID string) (*actor.NPC, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	npc, ok := m.npcs[npcID]
	if !ok {
		return nil, nil
	}
	out := *npc
	out.ConversationCount = m.counts[npcID]
	return &out, nil
}

func (m *MockStorage) DeleteNPC(ctx context.Context, npcID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeError != nil {
		return m.writeError
	}
	if _, ok := m.npcs[npcID]; !ok {
		return ErrNPCNotFound
	}
	delete(m.npcs, npcID)
	delete(m.counts, npcID)
	return nil
}

func (m *MockStorage) GetConversationCount(ctx context.Context, npcID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counts[npcID], nil
}

func (m *MockStorage) GetConversationHistory(ctx context.Context, playerID, npcID string, limit int) ([]actor.ConversationEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := m.history[pairKey(playerID, npcID)]
	if limit <= 0 {
		return []actor.ConversationEntry{}, nil
	}
	if limit > len(entries) {
		limit = len(entries)
	}
	out := make([]actor.ConversationEntry, limit)
	copy(out, entries[:limit])
	return out, nil
}

func (m *MockStorage) GetReputation(ctx context.Context, playerID, npcID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reputation[pairKey(playerID, npcID)], nil
}

func (m *MockStorage) RecordTurn(ctx context.Context, turn Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeError != nil {
		return m.writeError
	}
	key := pairKey(turn.PlayerID, turn.NPCID)
	m.reputation[key] = turn.Reputation
	entries := append([]actor.ConversationEntry{turn.Entry}, m.history[key]...)
	if len(entries) > MaxHistoryEntries {
		entries = entries[:MaxHistoryEntries]
	}
	m.history[key] = entries
	m.counts[turn.NPCID]++
	return nil
}

func pairKey(playerID, npcID string) string {
	return playerID + ":" + npcID
}
