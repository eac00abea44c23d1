package textfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		npc   string
		want  string
	}{
		{"untouched", "Move along, citizen.", "Garrick", "Move along, citizen."},
		{"speaker label", "Garrick: Move along.", "Garrick", "Move along."},
		{"speaker label any case", "  GARRICK : Move along.  ", "Garrick", "Move along."},
		{"other speaker kept", "Note: the gate is closed.", "Garrick", "Note: the gate is closed."},
		{"wrapping quotes", `"Move along."`, "Garrick", "Move along."},
		{"label and quotes", `Garrick: "Move along."`, "Garrick", "Move along."},
		{"inner quotes kept", `"Halt," he says. "Who goes there?"`, "Garrick", `"Halt," he says. "Who goes there?"`},
		{"no name", "Garrick: hi", "", "Garrick: hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanReply(tt.reply, tt.npc))
		})
	}
}
