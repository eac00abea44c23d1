package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisstore "github.com/jwebster45206/npc-engine/internal/storage"
	"github.com/jwebster45206/npc-engine/internal/services"
	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/chat"
	"github.com/jwebster45206/npc-engine/pkg/reputation"
	"github.com/jwebster45206/npc-engine/pkg/storage"
	"github.com/jwebster45206/npc-engine/pkg/textfilter"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func setupStore(t *testing.T) (*redisstore.RedisStorage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rs := redisstore.NewRedisStorage(mr.Addr(), 0, "", testLogger())
	t.Cleanup(func() { _ = rs.Close() })
	return rs, mr
}

func createGuard(t *testing.T, store storage.Storage) {
	t.Helper()
	npc := actor.NewNPCFromSpec(actor.NPCSpec{
		ID:          "guard1",
		Name:        "Garrick",
		Personality: actor.PersonalityAggressive,
		Background:  "city guard",
	})
	require.NoError(t, store.CreateNPC(context.Background(), npc))
}

func TestProcessChat_NPCNotFound(t *testing.T) {
	store, mr := setupStore(t)
	llm := services.NewMockLLMAPI()
	p := NewChatProcessor(store, llm, time.Second, testLogger())

	_, err := p.ProcessChat(context.Background(), chat.ChatRequest{PlayerID: "p1", NPCID: "ghost", Message: "hi"})
	assert.ErrorIs(t, err, storage.ErrNPCNotFound)
	assert.Empty(t, llm.GetCalls())
	assert.Empty(t, mr.Keys())
}

func TestProcessChat_FullTurn(t *testing.T) {
	store, _ := setupStore(t)
	createGuard(t, store)

	llm := services.NewMockLLMAPI()
	llm.SetResponse("State your business.")
	p := NewChatProcessor(store, llm, time.Second, testLogger())
	ctx := context.Background()

	resp, err := p.ProcessChat(ctx, chat.ChatRequest{PlayerID: "p1", NPCID: "guard1", Message: "please help me"})
	require.NoError(t, err)
	assert.Equal(t, "State your business.", resp.NPCResponse)
	assert.Equal(t, "aggressive", resp.NPCEmotion)
	assert.False(t, resp.QuestOffered)

	// please(+2) help(+2) aggressive(-1)
	rep, err := store.GetReputation(ctx, "p1", "guard1")
	require.NoError(t, err)
	assert.Equal(t, 3, rep)

	history, err := store.GetConversationHistory(ctx, "p1", "guard1", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "please help me", history[0].PlayerMessage)
	assert.Equal(t, "State your business.", history[0].NPCResponse)
	assert.Equal(t, "3", history[0].Context[actor.ContextKeyReputation])

	npc, err := store.GetNPC(ctx, "guard1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, npc.ConversationCount)

	calls := llm.GetCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, 200, calls[0].Options.MaxTokens)
	assert.InDelta(t, 0.8, calls[0].Options.Temperature, 0.0001)
	msgs := calls[0].Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, chat.ChatRoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "Garrick")
	assert.Equal(t, chat.ChatMessage{Role: chat.ChatRoleUser, Content: "please help me"}, msgs[1])
}

func TestProcessChat_ReputationIsAdditive(t *testing.T) {
	store, _ := setupStore(t)
	createGuard(t, store)
	p := NewChatProcessor(store, services.NewMockLLMAPI(), time.Second, testLogger())
	ctx := context.Background()

	messages := []string{"thank you friend", "you fool", "hello", "I respect your honor"}
	for _, m := range messages {
		before, err := store.GetReputation(ctx, "p1", "guard1")
		require.NoError(t, err)

		_, err = p.ProcessChat(ctx, chat.ChatRequest{PlayerID: "p1", NPCID: "guard1", Message: m})
		require.NoError(t, err)

		after, err := store.GetReputation(ctx, "p1", "guard1")
		require.NoError(t, err)
		assert.Equal(t, before+reputation.ComputeDelta(actor.PersonalityAggressive, m), after, "message %q", m)
	}
}

func TestProcessChat_ReplaysNewestFiveTurns(t *testing.T) {
	store, _ := setupStore(t)
	createGuard(t, store)
	llm := services.NewMockLLMAPI()
	p := NewChatProcessor(store, llm, time.Second, testLogger())
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		_, err := p.ProcessChat(ctx, chat.ChatRequest{PlayerID: "p1", NPCID: "guard1", Message: fmt.Sprintf("turn %d", i)})
		require.NoError(t, err)
	}

	calls := llm.GetCalls()
	last := calls[len(calls)-1].Messages
	// system + 5 turns * 2 + current
	require.Len(t, last, 12)
	assert.Equal(t, "turn 2", last[1].Content)
	assert.Equal(t, "turn 6", last[9].Content)
	assert.Equal(t, "turn 7", last[11].Content)
}

func TestProcessChat_HistoryBounded(t *testing.T) {
	store, mr := setupStore(t)
	createGuard(t, store)
	p := NewChatProcessor(store, services.NewMockLLMAPI(), time.Second, testLogger())
	ctx := context.Background()

	for i := 0; i < storage.MaxHistoryEntries+5; i++ {
		_, err := p.ProcessChat(ctx, chat.ChatRequest{PlayerID: "p1", NPCID: "guard1", Message: "hello"})
		require.NoError(t, err)
	}

	items, err := mr.List("conversation:p1:guard1")
	require.NoError(t, err)
	assert.Len(t, items, storage.MaxHistoryEntries)

	count, err := store.GetConversationCount(ctx, "guard1")
	require.NoError(t, err)
	assert.EqualValues(t, storage.MaxHistoryEntries+5, count)
}

func TestProcessChat_LLMErrorFallsBack(t *testing.T) {
	store, _ := setupStore(t)
	createGuard(t, store)
	llm := services.NewMockLLMAPI()
	llm.SetGenerateResponseError(errors.New("connection refused"))
	p := NewChatProcessor(store, llm, time.Second, testLogger())
	ctx := context.Background()

	resp, err := p.ProcessChat(ctx, chat.ChatRequest{PlayerID: "p1", NPCID: "guard1", Message: "thank you"})
	require.NoError(t, err)
	assert.Equal(t, FallbackResponse, resp.NPCResponse)

	history, err := store.GetConversationHistory(ctx, "p1", "guard1", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, FallbackResponse, history[0].NPCResponse)

	rep, err := store.GetReputation(ctx, "p1", "guard1")
	require.NoError(t, err)
	assert.Equal(t, 1, rep)
}

func TestProcessChat_LLMTimeoutFallsBack(t *testing.T) {
	store, _ := setupStore(t)
	createGuard(t, store)
	llm := services.NewMockLLMAPI()
	llm.SetBlockUntilCancelled()
	p := NewChatProcessor(store, llm, 20*time.Millisecond, testLogger())

	start := time.Now()
	resp, err := p.ProcessChat(context.Background(), chat.ChatRequest{PlayerID: "p1", NPCID: "guard1", Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, FallbackResponse, resp.NPCResponse)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestProcessChat_CallerCancelAfterLookup(t *testing.T) {
	store, _ := setupStore(t)
	createGuard(t, store)

	ctx, cancel := context.WithCancel(context.Background())
	llm := services.NewMockLLMAPI()
	llm.GenerateResponseFunc = func(c context.Context, _ []chat.ChatMessage, _ chat.CompletionOptions) (*chat.Completion, error) {
		cancel()
		return &chat.Completion{Message: "Hmph."}, nil
	}
	p := NewChatProcessor(store, llm, time.Second, testLogger())

	resp, err := p.ProcessChat(ctx, chat.ChatRequest{PlayerID: "p1", NPCID: "guard1", Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "Hmph.", resp.NPCResponse)

	count, err := store.GetConversationCount(context.Background(), "guard1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestProcessChat_StoreFailure(t *testing.T) {
	store := storage.NewMockStorage()
	createGuard(t, store)
	store.SetWriteError(errors.New("disk full"))
	p := NewChatProcessor(store, services.NewMockLLMAPI(), time.Second, testLogger())

	_, err := p.ProcessChat(context.Background(), chat.ChatRequest{PlayerID: "p1", NPCID: "guard1", Message: "hi"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, storage.ErrNPCNotFound))
}

func TestProcessChat_ConcurrentSamePairNoLostUpdates(t *testing.T) {
	store, _ := setupStore(t)
	npc := actor.NewNPCFromSpec(actor.NPCSpec{
		ID:          "smith",
		Name:        "Hilda",
		Personality: actor.PersonalityMerchant,
		Background:  "blacksmith",
	})
	require.NoError(t, store.CreateNPC(context.Background(), npc))
	p := NewChatProcessor(store, services.NewMockLLMAPI(), time.Second, testLogger())

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.ProcessChat(context.Background(), chat.ChatRequest{PlayerID: "p1", NPCID: "smith", Message: "thank you"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rep, err := store.GetReputation(context.Background(), "p1", "smith")
	require.NoError(t, err)
	assert.Equal(t, 2*n, rep)
	assert.Zero(t, p.locks.size())
}

func TestProcessChat_CleansAndFiltersReply(t *testing.T) {
	store, _ := setupStore(t)
	createGuard(t, store)

	llm := services.NewMockLLMAPI()
	llm.SetResponse(`Garrick: "Get the hell out of my sight."`)
	p := NewChatProcessor(store, llm, time.Second, testLogger()).
		WithProfanityFilter(textfilter.NewProfanityFilter())
	ctx := context.Background()

	resp, err := p.ProcessChat(ctx, chat.ChatRequest{PlayerID: "p1", NPCID: "guard1", Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "Get the heck out of my sight.", resp.NPCResponse)

	history, err := store.GetConversationHistory(ctx, "p1", "guard1", 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, resp.NPCResponse, history[0].NPCResponse)
}

func TestProcessChat_BlankReplyFallsBack(t *testing.T) {
	store, _ := setupStore(t)
	createGuard(t, store)

	llm := services.NewMockLLMAPI()
	llm.SetResponse(`Garrick: ""`)
	p := NewChatProcessor(store, llm, time.Second, testLogger())

	resp, err := p.ProcessChat(context.Background(), chat.ChatRequest{PlayerID: "p1", NPCID: "guard1", Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, FallbackResponse, resp.NPCResponse)
}
