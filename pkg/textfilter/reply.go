package textfilter

import "strings"

// CleanReply strips framing that chat models sometimes add around an in-character
// line: a leading "<speaker>:" label naming the NPC, and one pair of quotes
// wrapping the whole reply.
func CleanReply(reply, npcName string) string {
	reply = strings.TrimSpace(reply)

	if npcName != "" {
		if label, rest, ok := strings.Cut(reply, ":"); ok && strings.EqualFold(strings.TrimSpace(label), npcName) {
			reply = strings.TrimSpace(rest)
		}
	}

	if len(reply) >= 2 && reply[0] == '"' && reply[len(reply)-1] == '"' && strings.Count(reply, `"`) == 2 {
		reply = strings.TrimSpace(reply[1 : len(reply)-1])
	}

	return reply
}
