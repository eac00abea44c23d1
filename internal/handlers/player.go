package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jwebster45206/npc-engine/pkg/reputation"
	"github.com/jwebster45206/npc-engine/pkg/storage"
)

// DefaultHistoryLimit applies when ?limit= is absent.
const DefaultHistoryLimit = 20

// ReputationResponse reports a player's standing with an NPC.
type ReputationResponse struct {
	PlayerID   string          `json:"player_id"`
	NPCID      string          `json:"npc_id"`
	Reputation int             `json:"reputation"`
	Level      reputation.Tier `json:"level"`
}

// PlayerHandler serves per-(player, npc) reads
type PlayerHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewPlayerHandler(store storage.Storage, logger *slog.Logger) *PlayerHandler {
	return &PlayerHandler{
		storage: store,
		logger:  logger,
	}
}

// History handles GET /history/{player_id}/{npc_id}
func (h *PlayerHandler) History(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "player_id")
	npcID := chi.URLParam(r, "npc_id")

	limit := DefaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, h.logger, http.StatusBadRequest, CategoryBadRequest, fmt.Sprintf("invalid limit %q", v))
			return
		}
		limit = n
	}

	history, err := h.storage.GetConversationHistory(r.Context(), playerID, npcID, limit)
	if err != nil {
		h.logger.Error("Failed to load history", "player_id", playerID, "npc_id", npcID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, CategoryServerError, "Failed to load conversation history")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, history)
}

// Reputation handles GET /reputation/{player_id}/{npc_id}
func (h *PlayerHandler) Reputation(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "player_id")
	npcID := chi.URLParam(r, "npc_id")

	score, err := h.storage.GetReputation(r.Context(), playerID, npcID)
	if err != nil {
		h.logger.Error("Failed to load reputation", "player_id", playerID, "npc_id", npcID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, CategoryServerError, "Failed to load reputation")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, ReputationResponse{
		PlayerID:   playerID,
		NPCID:      npcID,
		Reputation: score,
		Level:      reputation.TierFor(score),
	})
}
