// Package reputation scores how a player's words change an NPC's opinion of them.
package reputation

import (
	"strings"

	"github.com/jwebster45206/npc-engine/pkg/actor"
)

const (
	// MaxDelta bounds the change a single turn can make in either direction.
	MaxDelta = 10

	positiveWeight = 2
	negativeWeight = -3
)

// Keywords are matched as case-insensitive substrings, so "thanks" and
// "unhelpful" both count. Each keyword counts once per message.
var (
	positiveKeywords = []string{"please", "thank", "help", "friend", "honor", "respect"}
	negativeKeywords = []string{"fool", "idiot", "stupid", "hate", "attack", "threat"}
)

// Tier is a descriptive label for a cumulative reputation score.
type Tier string

const (
	TierTrustedAlly Tier = "Trusted Ally"
	TierFriendly    Tier = "Friendly"
	TierNeutral     Tier = "Neutral"
	TierDisliked    Tier = "Disliked"
	TierEnemy       Tier = "Enemy"
)

// ComputeDelta returns the reputation change caused by message when spoken
// to an NPC with the given personality. The result is within [-MaxDelta, MaxDelta].
func ComputeDelta(p actor.Personality, message string) int {
	lower := strings.ToLower(message)

	delta := 0
	for _, word := range positiveKeywords {
		if strings.Contains(lower, word) {
			delta += positiveWeight
		}
	}
	for _, word := range negativeKeywords {
		if strings.Contains(lower, word) {
			delta += negativeWeight
		}
	}

	delta += personalityModifier(p)

	return clamp(delta, -MaxDelta, MaxDelta)
}

// personalityModifier: friendly NPCs warm up faster, aggressive ones slower.
func personalityModifier(p actor.Personality) int {
	switch p {
	case actor.PersonalityFriendly:
		return 1
	case actor.PersonalityAggressive:
		return -1
	default:
		return 0
	}
}

// TierFor maps a cumulative score to its tier.
func TierFor(score int) Tier {
	switch {
	case score > 50:
		return TierTrustedAlly
	case score > 0:
		return TierFriendly
	case score == 0:
		return TierNeutral
	case score > -50:
		return TierDisliked
	default:
		return TierEnemy
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
