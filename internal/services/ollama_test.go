package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jwebster45206/npc-engine/pkg/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaService_GetChatResponse(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"  Halt! Who goes there?  "}}`))
	}))
	defer srv.Close()

	svc := NewOllamaService(srv.URL+"/", "llama2", testLogger())
	msgs := []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: "persona"},
		{Role: chat.ChatRoleUser, Content: "hello"},
	}

	resp, err := svc.GetChatResponse(context.Background(), msgs, chat.CompletionOptions{MaxTokens: 200, Temperature: 0.8})
	require.NoError(t, err)
	assert.Equal(t, "Halt! Who goes there?", resp.Message)

	assert.Equal(t, "llama2", got.Model)
	assert.False(t, got.Stream)
	assert.Equal(t, msgs, got.Messages)
	assert.InDelta(t, 0.8, got.Options["temperature"], 0.0001)
	assert.EqualValues(t, 200, got.Options["num_predict"])
}

func TestOllamaService_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := NewOllamaService(srv.URL, "llama2", testLogger())
	_, err := svc.GetChatResponse(context.Background(), []chat.ChatMessage{{Role: chat.ChatRoleUser, Content: "hi"}}, chat.CompletionOptions{})
	assert.ErrorContains(t, err, "status: 500")
}

func TestOllamaService_EmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":{"content":"   "}}`))
	}))
	defer srv.Close()

	svc := NewOllamaService(srv.URL, "llama2", testLogger())
	_, err := svc.GetChatResponse(context.Background(), []chat.ChatMessage{{Role: chat.ChatRoleUser, Content: "hi"}}, chat.CompletionOptions{})
	assert.Error(t, err)
}

func TestOllamaService_InitModel_PullsMissingModel(t *testing.T) {
	pulled := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[{"name":"mistral:latest"}]}`))
		case "/api/pull":
			pulled = true
			_, _ = w.Write([]byte(`{"status":"success"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	svc := NewOllamaService(srv.URL, "llama2", testLogger())
	require.NoError(t, svc.InitModel(context.Background()))
	assert.True(t, pulled)
}

func TestOllamaService_InitModel_ModelPresent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/pull" {
			t.Error("model should not be pulled when already present")
		}
		_, _ = w.Write([]byte(`{"models":[{"name":"llama2:latest"}]}`))
	}))
	defer srv.Close()

	svc := NewOllamaService(srv.URL, "llama2", testLogger())
	require.NoError(t, svc.InitModel(context.Background()))
}

func TestOllamaService_InitModel_NotReady(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	svc := NewOllamaService(srv.URL, "llama2", testLogger())
	svc.readyRetries = 2
	svc.retryDelay = time.Millisecond

	err := svc.InitModel(context.Background())
	assert.ErrorContains(t, err, "did not become ready")
}
