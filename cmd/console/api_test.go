package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/chat"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *apiClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &apiClient{http: srv.Client(), baseURL: srv.URL}
}

func TestAPIClient_GetNPCNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/npc/guard1", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"NPC with id 'guard1' not found","category":"not_found"}`))
	})

	_, err := c.getNPC("guard1")
	assert.True(t, errors.Is(err, errNotFound))
}

func TestAPIClient_CreateNPCConflict(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"NPC with id 'guard1' already exists","category":"conflict"}`))
	})

	_, err := c.createNPC(actor.NPCSpec{ID: "guard1"})
	assert.ErrorContains(t, err, "already exists")
	assert.False(t, errors.Is(err, errNotFound))
}

func TestAPIClient_SendChat(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat", r.URL.Path)
		var req chat.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "p1", req.PlayerID)
		_, _ = w.Write([]byte(`{"npc_response":"Move along.","npc_emotion":"aggressive","quest_offered":false}`))
	})

	resp, err := c.sendChat(chat.ChatRequest{PlayerID: "p1", NPCID: "guard1", Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "Move along.", resp.NPCResponse)
}

func TestAPIClient_HistoryAndReputation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/history/p1/guard1":
			assert.Equal(t, "10", r.URL.Query().Get("limit"))
			_, _ = w.Write([]byte(`[{"timestamp":"2026-01-01T00:00:00Z","player_message":"hi","npc_response":"Hmph.","context":{"reputation":"-1"}}]`))
		case "/reputation/p1/guard1":
			_, _ = w.Write([]byte(`{"player_id":"p1","npc_id":"guard1","reputation":-1,"level":"Disliked"}`))
		default:
			http.NotFound(w, r)
		}
	})

	history, err := c.getHistory("p1", "guard1", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Hmph.", history[0].NPCResponse)

	rep, err := c.getReputation("p1", "guard1")
	require.NoError(t, err)
	assert.Equal(t, "Disliked", rep.Level)
}

func TestFormatHistory_OldestFirst(t *testing.T) {
	now := time.Now()
	out := formatHistory([]actor.ConversationEntry{
		{Timestamp: now, PlayerMessage: "second", NPCResponse: "b"},
		{Timestamp: now.Add(-time.Minute), PlayerMessage: "first", NPCResponse: "a"},
	})
	assert.Less(t, strings.Index(out, "first"), strings.Index(out, "second"))
	assert.Equal(t, "No conversation history yet.", formatHistory(nil))
}

func TestFormatQuest(t *testing.T) {
	out := formatQuest(&actor.Quest{
		Title:      "Night Watch",
		Difficulty: "hard",
		Reward:     "10 gold",
		Objectives: []string{"Patrol the walls"},
	})
	assert.Contains(t, out, "QUEST: Night Watch [Hard]")
	assert.Contains(t, out, "1. Patrol the walls")
}
