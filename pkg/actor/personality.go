package actor

import (
	"fmt"
	"strings"
)

// Personality is one of a closed set of NPC temperaments.
type Personality string

const (
	PersonalityFriendly   Personality = "friendly"
	PersonalityAggressive Personality = "aggressive"
	PersonalityMysterious Personality = "mysterious"
	PersonalityMerchant   Personality = "merchant"
	PersonalityWise       Personality = "wise"
	PersonalityComedic    Personality = "comedic"
)

// Personalities lists every supported personality in a stable order.
var Personalities = []Personality{
	PersonalityFriendly,
	PersonalityAggressive,
	PersonalityMysterious,
	PersonalityMerchant,
	PersonalityWise,
	PersonalityComedic,
}

// Valid reports whether p is one of the supported personalities.
func (p Personality) Valid() bool {
	for _, known := range Personalities {
		if p == known {
			return true
		}
	}
	return false
}

func (p Personality) String() string {
	return string(p)
}

// ParsePersonality converts a tag into a Personality. Matching ignores case
// and surrounding whitespace.
func ParsePersonality(s string) (Personality, error) {
	p := Personality(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown personality: %q", s)
	}
	return p, nil
}

// PersonalityNames returns the tags as plain strings.
func PersonalityNames() []string {
	names := make([]string, len(Personalities))
	for i, p := range Personalities {
		names[i] = string(p)
	}
	return names
}
