package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/chat"
	"github.com/jwebster45206/npc-engine/pkg/storage"
)

// ChatProcessor runs a chat turn
type ChatProcessor interface {
	ProcessChat(ctx context.Context, req chat.ChatRequest) (*chat.ChatResponse, error)
}

// QuestProcessor generates a quest for an NPC
type QuestProcessor interface {
	ProcessQuestRequest(ctx context.Context, req chat.QuestRequest) (*actor.Quest, error)
}

// ChatHandler handles chat and quest requests
type ChatHandler struct {
	chats  ChatProcessor
	quests QuestProcessor
	logger *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chats ChatProcessor, quests QuestProcessor, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		chats:  chats,
		quests: quests,
		logger: logger,
	}
}

// Chat handles POST /chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chat.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid chat request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, CategoryBadRequest, "Invalid request body. Expected JSON with 'player_id', 'npc_id' and 'message' fields.")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, CategoryBadRequest, err.Error())
		return
	}

	resp, err := h.chats.ProcessChat(r.Context(), req)
	if err != nil {
		h.writeProcessError(w, req.NPCID, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, resp)
}

// GenerateQuest handles POST /quest/generate
func (h *ChatHandler) GenerateQuest(w http.ResponseWriter, r *http.Request) {
	var req chat.QuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid quest request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, CategoryBadRequest, "Invalid request body. Expected JSON with 'player_id' and 'npc_id' fields.")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, CategoryBadRequest, err.Error())
		return
	}

	quest, err := h.quests.ProcessQuestRequest(r.Context(), req)
	if err != nil {
		h.writeProcessError(w, req.NPCID, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, quest)
}

func (h *ChatHandler) writeProcessError(w http.ResponseWriter, npcID string, err error) {
	if errors.Is(err, storage.ErrNPCNotFound) {
		writeError(w, h.logger, http.StatusNotFound, CategoryNotFound, fmt.Sprintf("NPC with id '%s' not found", npcID))
		return
	}
	h.logger.Error("Request failed", "npc_id", npcID, "error", err)
	writeError(w, h.logger, http.StatusInternalServerError, CategoryServerError, "Failed to process request. Please try again.")
}
