package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/storage"
)

// NPCHandler manages NPC definitions
type NPCHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

// NewNPCHandler creates a new NPC handler
func NewNPCHandler(store storage.Storage, logger *slog.Logger) *NPCHandler {
	return &NPCHandler{
		storage: store,
		logger:  logger,
	}
}

// Create handles POST /npc
func (h *NPCHandler) Create(w http.ResponseWriter, r *http.Request) {
	var spec actor.NPCSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		h.logger.Warn("Invalid NPC request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, CategoryBadRequest, "Invalid request body. Expected JSON NPC definition.")
		return
	}
	if err := spec.Validate(); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, CategoryBadRequest, err.Error())
		return
	}

	npc := actor.NewNPCFromSpec(spec)
	if err := h.storage.CreateNPC(r.Context(), npc); err != nil {
		if errors.Is(err, storage.ErrNPCExists) {
			writeError(w, h.logger, http.StatusBadRequest, CategoryConflict, fmt.Sprintf("NPC with id '%s' already exists", spec.ID))
			return
		}
		h.logger.Error("Failed to store NPC", "npc_id", spec.ID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, CategoryServerError, "Failed to store NPC")
		return
	}

	h.logger.Info("NPC created", "npc_id", npc.ID, "personality", npc.Personality)
	writeJSON(w, h.logger, http.StatusCreated, npc)
}

// Get handles GET /npc/{npc_id}
func (h *NPCHandler) Get(w http.ResponseWriter, r *http.Request) {
	npcID := chi.URLParam(r, "npc_id")

	npc, err := h.storage.GetNPC(r.Context(), npcID)
	if err != nil {
		h.logger.Error("Failed to load NPC", "npc_id", npcID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, CategoryServerError, "Failed to load NPC")
		return
	}
	if npc == nil {
		writeError(w, h.logger, http.StatusNotFound, CategoryNotFound, fmt.Sprintf("NPC with id '%s' not found", npcID))
		return
	}

	writeJSON(w, h.logger, http.StatusOK, npc)
}

// Delete handles DELETE /npc/{npc_id}
func (h *NPCHandler) Delete(w http.ResponseWriter, r *http.Request) {
	npcID := chi.URLParam(r, "npc_id")

	if err := h.storage.DeleteNPC(r.Context(), npcID); err != nil {
		if errors.Is(err, storage.ErrNPCNotFound) {
			writeError(w, h.logger, http.StatusNotFound, CategoryNotFound, fmt.Sprintf("NPC with id '%s' not found", npcID))
			return
		}
		h.logger.Error("Failed to delete NPC", "npc_id", npcID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, CategoryServerError, "Failed to delete NPC")
		return
	}

	h.logger.Info("NPC deleted", "npc_id", npcID)
	writeJSON(w, h.logger, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("NPC '%s' deleted successfully", npcID),
	})
}
