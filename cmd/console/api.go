package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/chat"
)

// ErrorResponse matches the API error body
type ErrorResponse struct {
	Error    string `json:"error"`
	Category string `json:"category"`
}

// ReputationResponse matches GET /reputation
type ReputationResponse struct {
	PlayerID   string `json:"player_id"`
	NPCID      string `json:"npc_id"`
	Reputation int    `json:"reputation"`
	Level      string `json:"level"`
}

var errNotFound = errors.New("not found")

// apiClient talks to the NPC engine HTTP API
type apiClient struct {
	http    *http.Client
	baseURL string
}

func (c *apiClient) testConnection() bool {
	resp, err := c.http.Get(c.baseURL + "/")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// do sends body (if any) as JSON and decodes a successful response into out.
func (c *apiClient) do(method, path string, body, out any, okStatus int) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != okStatus {
		var errorResp ErrorResponse
		if err := json.Unmarshal(respBody, &errorResp); err != nil || errorResp.Error == "" {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(respBody))
		}
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", errNotFound, errorResp.Error)
		}
		return errors.New(errorResp.Error)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *apiClient) getNPC(npcID string) (*actor.NPC, error) {
	var npc actor.NPC
	if err := c.do(http.MethodGet, "/npc/"+url.PathEscape(npcID), nil, &npc, http.StatusOK); err != nil {
		return nil, err
	}
	return &npc, nil
}

func (c *apiClient) createNPC(spec actor.NPCSpec) (*actor.NPC, error) {
	var npc actor.NPC
	if err := c.do(http.MethodPost, "/npc", spec, &npc, http.StatusCreated); err != nil {
		return nil, fmt.Errorf("failed to create npc: %w", err)
	}
	return &npc, nil
}

func (c *apiClient) sendChat(req chat.ChatRequest) (*chat.ChatResponse, error) {
	var resp chat.ChatResponse
	if err := c.do(http.MethodPost, "/chat", req, &resp, http.StatusOK); err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}
	return &resp, nil
}

func (c *apiClient) getHistory(playerID, npcID string, limit int) ([]actor.ConversationEntry, error) {
	var history []actor.ConversationEntry
	path := fmt.Sprintf("/history/%s/%s?limit=%d", url.PathEscape(playerID), url.PathEscape(npcID), limit)
	if err := c.do(http.MethodGet, path, nil, &history, http.StatusOK); err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return history, nil
}

func (c *apiClient) getReputation(playerID, npcID string) (*ReputationResponse, error) {
	var rep ReputationResponse
	path := fmt.Sprintf("/reputation/%s/%s", url.PathEscape(playerID), url.PathEscape(npcID))
	if err := c.do(http.MethodGet, path, nil, &rep, http.StatusOK); err != nil {
		return nil, fmt.Errorf("failed to load reputation: %w", err)
	}
	return &rep, nil
}

func (c *apiClient) generateQuest(req chat.QuestRequest) (*actor.Quest, error) {
	var quest actor.Quest
	if err := c.do(http.MethodPost, "/quest/generate", req, &quest, http.StatusOK); err != nil {
		return nil, fmt.Errorf("quest generation failed: %w", err)
	}
	return &quest, nil
}
