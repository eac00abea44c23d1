package actor

// Quest is a generated task an NPC can offer to a player.
// Quests are not persisted.
type Quest struct {
	QuestID     string   `json:"quest_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Difficulty  string   `json:"difficulty"` // free label, usually easy/medium/hard
	Reward      string   `json:"reward"`
	Objectives  []string `json:"objectives"`
}
