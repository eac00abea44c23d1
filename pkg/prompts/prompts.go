package prompts

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/npc-engine/pkg/actor"
)

// Profile describes how an NPC of a given personality behaves and talks.
type Profile struct {
	Traits        string
	SpeakingStyle string
	Example       string
}

// profiles must have an entry for every actor.Personality.
var profiles = map[actor.Personality]Profile{
	actor.PersonalityFriendly: {
		Traits:        "warm, helpful, enthusiastic, and cheerful",
		SpeakingStyle: "Use friendly greetings, exclamation marks, and show genuine interest in the player",
		Example:       "Oh hello there, friend! How wonderful to see you!",
	},
	actor.PersonalityAggressive: {
		Traits:        "hostile, short-tempered, confrontational, and intimidating",
		SpeakingStyle: "Use harsh words, threats, and show distrust. Be direct and unfriendly",
		Example:       "What do YOU want? Make it quick before I lose my patience.",
	},
	actor.PersonalityMysterious: {
		Traits:        "cryptic, enigmatic, secretive, and philosophical",
		SpeakingStyle: "Speak in riddles, hints, and vague statements. Be thought-provoking",
		Example:       "The paths we walk are not always as they seem... What brings you to my shadows?",
	},
	actor.PersonalityMerchant: {
		Traits:        "business-minded, shrewd, opportunistic, and persuasive",
		SpeakingStyle: "Focus on deals, prices, and value. Be charming but always seeking profit",
		Example:       "Ah, a customer! I have the finest wares in all the land. What catches your eye?",
	},
	actor.PersonalityWise: {
		Traits:        "knowledgeable, patient, thoughtful, and mentor-like",
		SpeakingStyle: "Share wisdom, ask deep questions, and guide rather than tell",
		Example:       "Welcome, young one. What knowledge do you seek on your journey?",
	},
	actor.PersonalityComedic: {
		Traits:        "humorous, witty, playful, and lighthearted",
		SpeakingStyle: "Make jokes, puns, and keep things fun. Don't take yourself too seriously",
		Example:       "Hey there! I'd tell you a joke about NPCs, but you might not get the reference!",
	},
}

// Guidelines are the in-character rules appended to every NPC system prompt.
var Guidelines = []string{
	"Stay in character at all times",
	"Keep responses concise (2-4 sentences typically)",
	"Be immersive and engaging",
	"Reference your background and location when relevant",
	"React authentically based on your personality",
	"Remember previous conversations with the player",
	"You can offer quests or information naturally in conversation",
}

// PersonalityLinePrefix starts the line naming the personality in the system
// prompt. The demo backend reads it back.
const PersonalityLinePrefix = "PERSONALITY: "

var upper = cases.Upper(language.English)

// ProfileFor returns the behavior profile for p.
func ProfileFor(p actor.Personality) (Profile, error) {
	profile, ok := profiles[p]
	if !ok {
		return Profile{}, fmt.Errorf("no profile for personality %q", p)
	}
	return profile, nil
}

// RelationshipContext phrases a reputation score for the NPC.
func RelationshipContext(reputation int) string {
	switch {
	case reputation > 50:
		return "The player is a trusted friend and ally."
	case reputation > 0:
		return "The player is known to you, but not yet fully trusted."
	case reputation < -50:
		return "The player is an enemy or has wronged you significantly."
	case reputation < 0:
		return "The player has a poor reputation with you."
	default:
		return "The player is a stranger to you."
	}
}

// BuildSystemPrompt assembles the persona prompt for an NPC. Section order:
// role, personality, background, location, speaking style, relationship,
// guidelines, example response.
func BuildSystemPrompt(p actor.Personality, npcName, background, location string, reputation int) (string, error) {
	profile, err := ProfileFor(p)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are %s, an NPC in a fantasy RPG game.\n\n", npcName)
	fmt.Fprintf(&sb, "%s%s\n", PersonalityLinePrefix, upper.String(string(p)))
	fmt.Fprintf(&sb, "You are %s.\n\n", profile.Traits)
	fmt.Fprintf(&sb, "BACKGROUND: %s\n\n", background)
	fmt.Fprintf(&sb, "LOCATION: %s\n\n", location)
	fmt.Fprintf(&sb, "SPEAKING STYLE: %s\n\n", profile.SpeakingStyle)
	fmt.Fprintf(&sb, "RELATIONSHIP: %s\n\n", RelationshipContext(reputation))
	sb.WriteString("GUIDELINES:\n")
	for _, g := range Guidelines {
		sb.WriteString("- " + g + "\n")
	}
	fmt.Fprintf(&sb, "\nExample response: %s\n\n", profile.Example)
	sb.WriteString("Respond naturally to the player's messages.")

	return sb.String(), nil
}

// PersonalityFromSystemPrompt recovers the personality named in a prompt built
// by BuildSystemPrompt.
func PersonalityFromSystemPrompt(prompt string) (actor.Personality, bool) {
	for _, line := range strings.Split(prompt, "\n") {
		if tag, ok := strings.CutPrefix(line, PersonalityLinePrefix); ok {
			p, err := actor.ParsePersonality(tag)
			return p, err == nil
		}
	}
	return "", false
}
