// Package conversation runs chat turns and quest generation against the
// store and the LLM backend.
package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jwebster45206/npc-engine/internal/services"
	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/chat"
	"github.com/jwebster45206/npc-engine/pkg/prompts"
	"github.com/jwebster45206/npc-engine/pkg/reputation"
	"github.com/jwebster45206/npc-engine/pkg/storage"
	"github.com/jwebster45206/npc-engine/pkg/textfilter"
)

const (
	// HistoryReadLimit is how many stored entries a turn loads.
	HistoryReadLimit = 10

	// FallbackResponse replaces the NPC's reply when the LLM fails.
	FallbackResponse = "I seem to be at a loss for words right now..."

	DefaultLLMTimeout = 30 * time.Second
)

var chatOptions = chat.CompletionOptions{MaxTokens: 200, Temperature: 0.8}

// ChatProcessor handles a single chat turn from lookup to persistence
type ChatProcessor struct {
	storage    storage.Storage
	llmService services.LLMService
	logger     *slog.Logger
	llmTimeout time.Duration
	locks      *pairLocks
	filter     *textfilter.ProfanityFilter
	now        func() time.Time
}

// NewChatProcessor creates a new chat processor. A non-positive llmTimeout
// selects DefaultLLMTimeout.
func NewChatProcessor(store storage.Storage, llmService services.LLMService, llmTimeout time.Duration, logger *slog.Logger) *ChatProcessor {
	if llmTimeout <= 0 {
		llmTimeout = DefaultLLMTimeout
	}
	return &ChatProcessor{
		storage:    store,
		llmService: llmService,
		logger:     logger,
		llmTimeout: llmTimeout,
		locks:      newPairLocks(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithProfanityFilter makes the processor filter every LLM reply before it is
// stored or returned. The fallback reply is never filtered.
func (p *ChatProcessor) WithProfanityFilter(filter *textfilter.ProfanityFilter) *ChatProcessor {
	p.filter = filter
	return p
}

// ProcessChat runs one turn. It returns storage.ErrNPCNotFound (wrapped)
// before touching anything if the NPC does not exist. LLM failures never
// surface; the fallback reply is recorded instead.
func (p *ChatProcessor) ProcessChat(ctx context.Context, req chat.ChatRequest) (*chat.ChatResponse, error) {
	npc, err := p.storage.GetNPC(ctx, req.NPCID)
	if err != nil {
		return nil, fmt.Errorf("failed to load npc: %w", err)
	}
	if npc == nil {
		return nil, fmt.Errorf("%w: %s", storage.ErrNPCNotFound, req.NPCID)
	}

	// Past the lookup the turn runs to completion even if the caller leaves.
	ctx = context.WithoutCancel(ctx)

	unlock := p.locks.lock(req.PlayerID, req.NPCID)
	defer unlock()

	history, err := p.storage.GetConversationHistory(ctx, req.PlayerID, req.NPCID, HistoryReadLimit)
	if err != nil {
		return nil, err
	}
	current, err := p.storage.GetReputation(ctx, req.PlayerID, req.NPCID)
	if err != nil {
		return nil, err
	}

	systemPrompt, err := prompts.BuildSystemPrompt(npc.Personality, npc.Name, npc.Background, npc.Location, current)
	if err != nil {
		return nil, fmt.Errorf("failed to build system prompt: %w", err)
	}

	messages, err := prompts.New().
		WithSystemPrompt(systemPrompt).
		WithHistory(history).
		WithHistoryLimit(prompts.DefaultHistoryTurns).
		WithUserMessage(req.Message).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build chat messages: %w", err)
	}

	reply := p.complete(ctx, npc, messages)

	delta := reputation.ComputeDelta(npc.Personality, req.Message)
	updated := current + delta

	turn := storage.Turn{
		PlayerID:   req.PlayerID,
		NPCID:      req.NPCID,
		Reputation: updated,
		Entry: actor.ConversationEntry{
			Timestamp:     p.now(),
			PlayerMessage: req.Message,
			NPCResponse:   reply,
			Context:       map[string]string{actor.ContextKeyReputation: strconv.Itoa(updated)},
		},
	}
	if err := p.storage.RecordTurn(ctx, turn); err != nil {
		return nil, err
	}

	p.logger.Debug("Chat turn recorded",
		"player_id", req.PlayerID,
		"npc_id", req.NPCID,
		"reputation_delta", delta,
		"reputation", updated)

	return &chat.ChatResponse{
		NPCResponse:  reply,
		NPCEmotion:   npc.Personality.String(),
		QuestOffered: false,
	}, nil
}

func (p *ChatProcessor) complete(ctx context.Context, npc *actor.NPC, messages []chat.ChatMessage) string {
	chatCtx, cancel := context.WithTimeout(ctx, p.llmTimeout)
	defer cancel()

	p.logger.Debug("Sending chat request to LLM", "npc_id", npc.ID, "backend", p.llmService.Name(), "message_count", len(messages))
	resp, err := p.llmService.GetChatResponse(chatCtx, messages, chatOptions)
	if err != nil {
		p.logger.Warn("LLM chat failed, using fallback reply", "npc_id", npc.ID, "error", err)
		return FallbackResponse
	}
	if resp == nil {
		p.logger.Warn("LLM returned an empty reply, using fallback", "npc_id", npc.ID)
		return FallbackResponse
	}

	reply := textfilter.CleanReply(resp.Message, npc.Name)
	if reply == "" {
		p.logger.Warn("LLM returned an empty reply, using fallback", "npc_id", npc.ID)
		return FallbackResponse
	}
	if p.filter != nil {
		reply = p.filter.FilterText(reply)
	}
	return reply
}
