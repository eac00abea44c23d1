package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/chat"
)

// QuestSystemPrompt frames the one-shot quest generation request.
const QuestSystemPrompt = "You are a quest generator for an RPG game. Always respond with valid JSON."

const questInstructions = `You are %s, an NPC with the following background: %s

Your personality is: %s

Generate a quest that fits your character. The quest should be engaging and appropriate for an RPG game.
%s
Respond in JSON format:
{
    "title": "Quest Title",
    "description": "Quest description",
    "difficulty": "easy/medium/hard",
    "reward": "Description of reward",
    "objectives": ["Objective 1", "Objective 2"]
}

Only respond with valid JSON.`

// QuestPayload is the structure the LLM is asked to return. Pointer fields
// distinguish "missing" from "empty".
type QuestPayload struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Difficulty  *string  `json:"difficulty"`
	Reward      *string  `json:"reward"`
	Objectives  []string `json:"objectives"`
}

// BuildQuestMessages builds the quest generation request for an NPC.
// playerContext may be empty.
func BuildQuestMessages(npcName, background string, p actor.Personality, playerContext string) []chat.ChatMessage {
	contextLine := ""
	if strings.TrimSpace(playerContext) != "" {
		contextLine = "Context: " + playerContext + "\n"
	}

	return []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: QuestSystemPrompt},
		{Role: chat.ChatRoleUser, Content: fmt.Sprintf(questInstructions, npcName, background, p, contextLine)},
	}
}

// StripCodeFence returns the body of the first fenced code block in text, or
// the trimmed text when there is no fence.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if _, after, ok := strings.Cut(text, "```json"); ok {
		body, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(body)
	}
	if _, after, ok := strings.Cut(text, "```"); ok {
		body, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(body)
	}
	return text
}

// ParseQuestPayload decodes an LLM quest reply, tolerating a code fence.
func ParseQuestPayload(text string) (*QuestPayload, error) {
	body := StripCodeFence(text)
	if body == "" {
		return nil, fmt.Errorf("empty quest payload")
	}

	var payload QuestPayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse quest payload: %w", err)
	}
	return &payload, nil
}

// ToQuest fills in defaults for fields the LLM left out.
func (qp *QuestPayload) ToQuest(questID string) *actor.Quest {
	q := &actor.Quest{
		QuestID:     questID,
		Title:       "Unknown Quest",
		Description: "",
		Difficulty:  "medium",
		Reward:      "Unknown",
		Objectives:  []string{},
	}
	if qp.Title != nil {
		q.Title = *qp.Title
	}
	if qp.Description != nil {
		q.Description = *qp.Description
	}
	if qp.Difficulty != nil {
		q.Difficulty = *qp.Difficulty
	}
	if qp.Reward != nil {
		q.Reward = *qp.Reward
	}
	if qp.Objectives != nil {
		q.Objectives = qp.Objectives
	}
	return q
}

// FallbackQuest is offered when the LLM cannot produce a usable quest.
func FallbackQuest(questID, npcName string) *actor.Quest {
	return &actor.Quest{
		QuestID:     questID,
		Title:       "A Simple Task",
		Description: fmt.Sprintf("%s needs your help with something.", npcName),
		Difficulty:  "medium",
		Reward:      "Gold and experience",
		Objectives:  []string{"Talk to the quest giver", "Complete the task"},
	}
}
