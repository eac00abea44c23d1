package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/storage"
)

// RedisStorage implements the Storage interface on a single Redis database.
// Every key is prefixed with the configured namespace, if any.
type RedisStorage struct {
	client    *redis.Client
	logger    *slog.Logger
	namespace string

	connectRetries int
	retryDelay     time.Duration
}

// Ensure RedisStorage implements Storage interface
var _ storage.Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance
func NewRedisStorage(addr string, db int, namespace string, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisStorage{
		client:         rdb,
		logger:         logger,
		namespace:      namespace,
		connectRetries: 30,
		retryDelay:     2 * time.Second,
	}
}

func (r *RedisStorage) key(parts ...string) string {
	k := strings.Join(parts, ":")
	if r.namespace != "" {
		return r.namespace + ":" + k
	}
	return k
}

func (r *RedisStorage) npcKey(npcID string) string {
	return r.key("npc", npcID)
}

func (r *RedisStorage) conversationKey(playerID, npcID string) string {
	return r.key("conversation", playerID, npcID)
}

func (r *RedisStorage) reputationKey(playerID, npcID string) string {
	return r.key("reputation", playerID, npcID)
}

func (r *RedisStorage) countKey(npcID string) string {
	return r.key("npc_stats", npcID, "conversations")
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	for i := 0; i < r.connectRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(r.retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", r.connectRetries)
}

// NPC operations

// CreateNPC stores a new NPC. SETNX makes the existence check and the
// write a single step, so concurrent creates of one id cannot both win.
func (r *RedisStorage) CreateNPC(ctx context.Context, npc *actor.NPC) error {
	stored := *npc
	stored.ConversationCount = 0
	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal npc: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.npcKey(npc.ID), data, 0).Result()
	if err != nil {
		r.logger.Error("Failed to save npc", "npc_id", npc.ID, "error", err)
		return fmt.Errorf("failed to save npc: %w", err)
	}
	if !ok {
		return storage.ErrNPCExists
	}
	return nil
}

func (r *RedisStorage) GetNPC(ctx context.Context, npcID string) (*actor.NPC, error) {
	data, err := r.client.Get(ctx, r.npcKey(npcID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		r.logger.Error("Failed to load npc", "npc_id", npcID, "error", err)
		return nil, fmt.Errorf("failed to load npc: %w", err)
	}

	var npc actor.NPC
	if err := json.Unmarshal(data, &npc); err != nil {
		r.logger.Error("Failed to unmarshal npc", "npc_id", npcID, "error", err)
		return nil, fmt.Errorf("failed to unmarshal npc: %w", err)
	}

	count, err := r.GetConversationCount(ctx, npcID)
	if err != nil {
		return nil, err
	}
	npc.ConversationCount = count
	return &npc, nil
}

// DeleteNPC removes the NPC record and its conversation counter. Per-player
// history and reputation are left in place.
func (r *RedisStorage) DeleteNPC(ctx context.Context, npcID string) error {
	deleted, err := r.client.Del(ctx, r.npcKey(npcID)).Result()
	if err != nil {
		r.logger.Error("Failed to delete npc", "npc_id", npcID, "error", err)
		return fmt.Errorf("failed to delete npc: %w", err)
	}
	if deleted == 0 {
		return storage.ErrNPCNotFound
	}
	if err := r.client.Del(ctx, r.countKey(npcID)).Err(); err != nil {
		r.logger.Warn("Failed to delete npc stats", "npc_id", npcID, "error", err)
	}
	return nil
}

func (r *RedisStorage) GetConversationCount(ctx context.Context, npcID string) (int64, error) {
	count, err := r.client.Get(ctx, r.countKey(npcID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to load conversation count: %w", err)
	}
	return count, nil
}

// Conversation and reputation operations

func (r *RedisStorage) GetConversationHistory(ctx context.Context, playerID, npcID string, limit int) ([]actor.ConversationEntry, error) {
	entries := []actor.ConversationEntry{}
	if limit <= 0 {
		return entries, nil
	}

	raw, err := r.client.LRange(ctx, r.conversationKey(playerID, npcID), 0, int64(limit-1)).Result()
	if err != nil {
		r.logger.Error("Failed to load conversation history", "player_id", playerID, "npc_id", npcID, "error", err)
		return nil, fmt.Errorf("failed to load conversation history: %w", err)
	}

	for _, item := range raw {
		var entry actor.ConversationEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			r.logger.Warn("Skipping unreadable conversation entry", "player_id", playerID, "npc_id", npcID, "error", err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *RedisStorage) GetReputation(ctx context.Context, playerID, npcID string) (int, error) {
	val, err := r.client.Get(ctx, r.reputationKey(playerID, npcID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to load reputation: %w", err)
	}
	score, err := strconv.Atoi(val)
	if err != nil {
		r.logger.Warn("Unreadable reputation value, treating as neutral", "player_id", playerID, "npc_id", npcID, "value", val)
		return 0, nil
	}
	return score, nil
}

// RecordTurn writes the reputation, the history entry, and the counter
// increment in one MULTI/EXEC transaction.
func (r *RedisStorage) RecordTurn(ctx context.Context, turn storage.Turn) error {
	data, err := json.Marshal(turn.Entry)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation entry: %w", err)
	}

	convKey := r.conversationKey(turn.PlayerID, turn.NPCID)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.reputationKey(turn.PlayerID, turn.NPCID), turn.Reputation, 0)
		pipe.LPush(ctx, convKey, data)
		pipe.LTrim(ctx, convKey, 0, storage.MaxHistoryEntries-1)
		pipe.Expire(ctx, convKey, storage.HistoryTTL)
		pipe.Incr(ctx, r.countKey(turn.NPCID))
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to record conversation turn",
			"player_id", turn.PlayerID,
			"npc_id", turn.NPCID,
			"error", err)
		return fmt.Errorf("failed to record turn: %w", err)
	}
	return nil
}
