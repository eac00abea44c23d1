package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/chat"
	"github.com/jwebster45206/npc-engine/pkg/prompts"
)

// DemoService answers without any network call. Replies depend only on the
// personality in the system prompt and the player's last message.
type DemoService struct {
	logger *slog.Logger
}

var _ LLMService = (*DemoService)(nil)

// demoQuest is returned for every quest request, fenced like a chatty model would.
const demoQuest = "```json\n" + `{
    "title": "The Missing Shipment",
    "description": "A crate of supplies never arrived. Find out what happened on the road.",
    "difficulty": "easy",
    "reward": "50 gold coins",
    "objectives": ["Search the old road", "Recover the crate", "Return to the quest giver"]
}` + "\n```"

func NewDemoService(logger *slog.Logger) *DemoService {
	return &DemoService{logger: logger}
}

func (s *DemoService) Name() string {
	return "demo"
}

func (s *DemoService) InitModel(ctx context.Context) error {
	s.logger.Info("Demo mode active, no LLM backend will be contacted")
	return nil
}

func (s *DemoService) GetChatResponse(ctx context.Context, messages []chat.ChatMessage, opts chat.CompletionOptions) (*chat.Completion, error) {
	if opts.Quest {
		return &chat.Completion{Message: demoQuest}, nil
	}

	var systemPrompt, userMessage string
	for _, msg := range messages {
		switch msg.Role {
		case chat.ChatRoleSystem:
			if systemPrompt == "" {
				systemPrompt = msg.Content
			}
		case chat.ChatRoleUser:
			userMessage = msg.Content
		}
	}

	p, _ := prompts.PersonalityFromSystemPrompt(systemPrompt)
	return &chat.Completion{Message: demoReply(p, userMessage)}, nil
}

func demoReply(p actor.Personality, userMessage string) string {
	said := truncateRunes(userMessage, 30)
	switch p {
	case actor.PersonalityFriendly:
		return fmt.Sprintf("Hello there, friend! I heard you say: '%s...' I'd be happy to help you with that! This is a demo response - connect a real LLM for full conversations.", said)
	case actor.PersonalityAggressive:
		return fmt.Sprintf("What do you want? You said something about '%s...' Make it quick! (Demo mode active)", said)
	case actor.PersonalityMysterious:
		return fmt.Sprintf("Interesting... your words echo with meaning: '%s...' Perhaps the answer lies beyond what you seek... (Demo response)", said)
	case actor.PersonalityMerchant:
		return fmt.Sprintf("Ah, a customer! You mentioned '%s...' I have just what you need! The finest goods at reasonable prices. (Demo mode)", said)
	case actor.PersonalityWise:
		return fmt.Sprintf("Young one, you speak of '%s...' Let me share some wisdom with you about this matter... (Demo response)", said)
	case actor.PersonalityComedic:
		return fmt.Sprintf("Ha! You said '%s...' That reminds me of a joke! Why did the NPC cross the road? To get to the other script! (Demo mode)", said)
	default:
		return fmt.Sprintf("Greetings! You said: '%s...' (Demo mode - configure OpenAI or Ollama for real responses)", truncateRunes(userMessage, 50))
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
