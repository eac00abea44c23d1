package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/npc-engine/internal/services"
	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/chat"
	"github.com/jwebster45206/npc-engine/pkg/prompts"
	"github.com/jwebster45206/npc-engine/pkg/storage"
)

var questOptions = chat.CompletionOptions{MaxTokens: 300, Temperature: 0.7, Quest: true}

// QuestProcessor asks an NPC's LLM persona for a quest. Quests are not stored.
type QuestProcessor struct {
	storage    storage.Storage
	llmService services.LLMService
	logger     *slog.Logger
	llmTimeout time.Duration
	newID      func() string
}

func NewQuestProcessor(store storage.Storage, llmService services.LLMService, llmTimeout time.Duration, logger *slog.Logger) *QuestProcessor {
	if llmTimeout <= 0 {
		llmTimeout = DefaultLLMTimeout
	}
	return &QuestProcessor{
		storage:    store,
		llmService: llmService,
		logger:     logger,
		llmTimeout: llmTimeout,
		newID:      uuid.NewString,
	}
}

// ProcessQuestRequest looks up the NPC and generates a quest for it.
func (q *QuestProcessor) ProcessQuestRequest(ctx context.Context, req chat.QuestRequest) (*actor.Quest, error) {
	npc, err := q.storage.GetNPC(ctx, req.NPCID)
	if err != nil {
		return nil, fmt.Errorf("failed to load npc: %w", err)
	}
	if npc == nil {
		return nil, fmt.Errorf("%w: %s", storage.ErrNPCNotFound, req.NPCID)
	}
	return q.Generate(ctx, npc.Name, npc.Background, npc.Personality, req.Context), nil
}

// Generate always returns a quest with a fresh id. Backend errors and
// unparseable payloads yield the fallback quest.
func (q *QuestProcessor) Generate(ctx context.Context, npcName, background string, p actor.Personality, playerContext string) *actor.Quest {
	questID := q.newID()

	llmCtx, cancel := context.WithTimeout(ctx, q.llmTimeout)
	defer cancel()

	messages := prompts.BuildQuestMessages(npcName, background, p, playerContext)
	resp, err := q.llmService.GetChatResponse(llmCtx, messages, questOptions)
	if err == nil && resp == nil {
		err = fmt.Errorf("empty completion")
	}
	if err != nil {
		q.logger.Warn("Quest generation failed, using fallback quest", "npc_name", npcName, "error", err)
		return prompts.FallbackQuest(questID, npcName)
	}

	payload, err := prompts.ParseQuestPayload(resp.Message)
	if err != nil {
		q.logger.Warn("Quest payload unreadable, using fallback quest", "npc_name", npcName, "error", err)
		return prompts.FallbackQuest(questID, npcName)
	}

	return payload.ToQuest(questID)
}
