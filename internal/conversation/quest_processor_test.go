package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/npc-engine/internal/services"
	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/chat"
	"github.com/jwebster45206/npc-engine/pkg/storage"
)

const fencedQuest = "```json\n{\"title\": \"Rats in the Cellar\", \"description\": \"Clear the cellar.\", \"difficulty\": \"easy\", \"reward\": \"10 gold\", \"objectives\": [\"Enter the cellar\", \"Defeat the rats\"]}\n```"

func TestGenerate_ParsesFencedPayload(t *testing.T) {
	llm := services.NewMockLLMAPI()
	llm.SetResponse(fencedQuest)
	q := NewQuestProcessor(storage.NewMockStorage(), llm, time.Second, testLogger())

	quest := q.Generate(context.Background(), "Garrick", "city guard", actor.PersonalityAggressive, "")
	assert.Equal(t, "Rats in the Cellar", quest.Title)
	assert.Equal(t, "easy", quest.Difficulty)
	assert.Equal(t, []string{"Enter the cellar", "Defeat the rats"}, quest.Objectives)
	assert.NotEmpty(t, quest.QuestID)

	calls := llm.GetCalls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].Options.Quest)
	assert.Equal(t, 300, calls[0].Options.MaxTokens)
}

func TestGenerate_FallbackOnError(t *testing.T) {
	llm := services.NewMockLLMAPI()
	llm.SetGenerateResponseError(errors.New("boom"))
	q := NewQuestProcessor(storage.NewMockStorage(), llm, time.Second, testLogger())

	quest := q.Generate(context.Background(), "Garrick", "city guard", actor.PersonalityAggressive, "")
	assert.Equal(t, "A Simple Task", quest.Title)
	assert.Contains(t, quest.Description, "Garrick")
	assert.Equal(t, "medium", quest.Difficulty)
	assert.Equal(t, "Gold and experience", quest.Reward)
	assert.Len(t, quest.Objectives, 2)
}

func TestGenerate_FallbackOnMalformedPayload(t *testing.T) {
	llm := services.NewMockLLMAPI()
	llm.SetResponse("Sure! Here's a quest: slay the dragon.")
	q := NewQuestProcessor(storage.NewMockStorage(), llm, time.Second, testLogger())

	quest := q.Generate(context.Background(), "Garrick", "city guard", actor.PersonalityAggressive, "")
	assert.Equal(t, "A Simple Task", quest.Title)
}

func TestGenerate_FreshIDEveryCall(t *testing.T) {
	llm := services.NewMockLLMAPI()
	llm.SetResponse(fencedQuest)
	q := NewQuestProcessor(storage.NewMockStorage(), llm, time.Second, testLogger())

	a := q.Generate(context.Background(), "Garrick", "city guard", actor.PersonalityAggressive, "")
	b := q.Generate(context.Background(), "Garrick", "city guard", actor.PersonalityAggressive, "")
	assert.NotEqual(t, a.QuestID, b.QuestID)

	llm.SetGenerateResponseError(errors.New("down"))
	c := q.Generate(context.Background(), "Garrick", "city guard", actor.PersonalityAggressive, "")
	d := q.Generate(context.Background(), "Garrick", "city guard", actor.PersonalityAggressive, "")
	assert.NotEqual(t, c.QuestID, d.QuestID)
}

func TestProcessQuestRequest(t *testing.T) {
	store := storage.NewMockStorage()
	createGuard(t, store)
	llm := services.NewMockLLMAPI()
	llm.SetResponse(fencedQuest)
	q := NewQuestProcessor(store, llm, time.Second, testLogger())

	quest, err := q.ProcessQuestRequest(context.Background(), chat.QuestRequest{PlayerID: "p1", NPCID: "guard1", Context: "looking for work"})
	require.NoError(t, err)
	assert.Equal(t, "Rats in the Cellar", quest.Title)

	prompt := llm.GetCalls()[0].Messages
	assert.Contains(t, prompt[len(prompt)-1].Content, "looking for work")

	_, err = q.ProcessQuestRequest(context.Background(), chat.QuestRequest{PlayerID: "p1", NPCID: "ghost"})
	assert.ErrorIs(t, err, storage.ErrNPCNotFound)
}
