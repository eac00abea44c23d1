package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/npc-engine/pkg/chat"
)

func TestSplitSystem(t *testing.T) {
	tests := []struct {
		name       string
		messages   []chat.ChatMessage
		wantSystem string
		wantTurns  int
	}{
		{
			name: "single system message",
			messages: []chat.ChatMessage{
				{Role: chat.ChatRoleSystem, Content: "You are Garrick."},
				{Role: chat.ChatRoleUser, Content: "Hello"},
			},
			wantSystem: "You are Garrick.",
			wantTurns:  1,
		},
		{
			name: "system messages are joined",
			messages: []chat.ChatMessage{
				{Role: chat.ChatRoleSystem, Content: "You are Garrick."},
				{Role: chat.ChatRoleUser, Content: "Hello"},
				{Role: chat.ChatRoleSystem, Content: "Be brief."},
				{Role: chat.ChatRoleAgent, Content: "Hmph."},
			},
			wantSystem: "You are Garrick.\n\nBe brief.",
			wantTurns:  2,
		},
		{
			name:      "no system messages",
			messages:  []chat.ChatMessage{{Role: chat.ChatRoleUser, Content: "Hello"}},
			wantTurns: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			system, turns := splitSystem(tt.messages)
			assert.Equal(t, tt.wantSystem, system)
			assert.Len(t, turns, tt.wantTurns)
			for _, m := range turns {
				assert.NotEqual(t, chat.ChatRoleSystem, m.Role)
			}
		})
	}
}

func TestAnthropicService_GetChatResponse(t *testing.T) {
	var got anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"State your "},{"type":"text","text":"business."}],"stop_reason":"end_turn"}`))
	}))
	defer srv.Close()

	svc := NewAnthropicService("test-key", "claude-test", srv.URL, testLogger())
	resp, err := svc.GetChatResponse(context.Background(), []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: "You are Garrick."},
		{Role: chat.ChatRoleUser, Content: "hello"},
	}, chat.CompletionOptions{MaxTokens: 200, Temperature: 0.8})
	require.NoError(t, err)
	assert.Equal(t, "State your business.", resp.Message)

	assert.Equal(t, "claude-test", got.Model)
	assert.Equal(t, 200, got.MaxTokens)
	require.NotNil(t, got.Temperature)
	assert.InDelta(t, 0.8, *got.Temperature, 1e-9)
	assert.Equal(t, "You are Garrick.", got.System)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, chat.ChatRoleUser, got.Messages[0].Role)
}

func TestAnthropicService_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"http error", http.StatusTooManyRequests, `{"type":"error"}`, "status 429"},
		{"api error", http.StatusOK, `{"error":{"type":"overloaded_error","message":"Overloaded"}}`, "Overloaded"},
		{"empty content", http.StatusOK, `{"content":[]}`, "no text content"},
		{"bad json", http.StatusOK, `not json`, "failed to parse response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			svc := NewAnthropicService("k", "m", srv.URL, testLogger())
			_, err := svc.GetChatResponse(context.Background(), []chat.ChatMessage{{Role: chat.ChatRoleUser, Content: "hi"}}, chat.CompletionOptions{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAnthropicService_NoTurns(t *testing.T) {
	svc := NewAnthropicService("k", "m", "http://127.0.0.1:0", testLogger())
	_, err := svc.GetChatResponse(context.Background(), []chat.ChatMessage{{Role: chat.ChatRoleSystem, Content: "only system"}}, chat.CompletionOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no messages provided")
}
