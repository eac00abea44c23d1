package actor

import (
	"fmt"
	"strings"
)

// DefaultLocation is used when an NPC is created without a location.
const DefaultLocation = "Unknown"

// NPC represents a non-player character that players can talk to
type NPC struct {
	ID                string      `json:"npc_id"`
	Name              string      `json:"name"`
	Personality       Personality `json:"personality"`
	Background        string      `json:"background"`
	Location          string      `json:"location"`
	ConversationCount int64       `json:"conversation_count"` // derived from the conversation counter, never set by clients
}

// NPCSpec is the client-supplied definition used to create an NPC.
type NPCSpec struct {
	ID          string      `json:"npc_id"`
	Name        string      `json:"name"`
	Personality Personality `json:"personality"`
	Background  string      `json:"background"`
	Location    string      `json:"location,omitempty"`
}

// Validate checks required fields and the personality tag.
func (s *NPCSpec) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("npc_id is required")
	}
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if !s.Personality.Valid() {
		return fmt.Errorf("invalid personality %q: must be one of %s", s.Personality, strings.Join(PersonalityNames(), ", "))
	}
	if strings.TrimSpace(s.Background) == "" {
		return fmt.Errorf("background is required")
	}
	return nil
}

// NewNPCFromSpec builds a fresh NPC with a zero conversation count.
func NewNPCFromSpec(spec NPCSpec) *NPC {
	location := spec.Location
	if strings.TrimSpace(location) == "" {
		location = DefaultLocation
	}
	return &NPC{
		ID:          spec.ID,
		Name:        spec.Name,
		Personality: spec.Personality,
		Background:  spec.Background,
		Location:    location,
	}
}
