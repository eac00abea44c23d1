package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/jwebster45206/npc-engine/internal/middleware"
	"github.com/jwebster45206/npc-engine/internal/services"
	"github.com/jwebster45206/npc-engine/pkg/storage"
)

// Deps are the process-wide collaborators shared by every route.
type Deps struct {
	Storage      storage.Storage
	LLM          services.LLMService
	Chats        ChatProcessor
	Quests       QuestProcessor
	Logger       *slog.Logger
	CORSAllowAll bool
}

// NewRouter builds the HTTP API.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(d.Logger))
	r.Use(chimw.Recoverer)

	corsOpts := cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}
	if d.CORSAllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	health := NewHealthHandler(d.Storage, d.LLM, d.Logger)
	npcs := NewNPCHandler(d.Storage, d.Logger)
	chats := NewChatHandler(d.Chats, d.Quests, d.Logger)
	players := NewPlayerHandler(d.Storage, d.Logger)

	r.Get("/", health.Root)
	r.Get("/health", health.Health)

	r.Post("/npc", npcs.Create)
	r.Get("/npc/{npc_id}", npcs.Get)
	r.Delete("/npc/{npc_id}", npcs.Delete)

	r.Post("/chat", chats.Chat)
	r.Post("/quest/generate", chats.GenerateQuest)

	r.Get("/history/{player_id}/{npc_id}", players.History)
	r.Get("/reputation/{player_id}/{npc_id}", players.Reputation)

	return r
}
