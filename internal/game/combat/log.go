package combat

import "fmt"

// LogType classifies a battle log entry.
type LogType string

const (
	LogAttack  LogType = "attack"
	LogHeal    LogType = "heal"
	LogBuff    LogType = "buff"
	LogDebuff  LogType = "debuff"
	LogSpecial LogType = "special"
	LogInfo    LogType = "info"
)

// LogEntry is one line of the battle log. Entries are appended in turn order
// and never modified.
type LogEntry struct {
	Type    LogType `json:"type"`
	Message string  `json:"message"`
	Turn    int     `json:"turn"`
}

func (b *Battle) logf(t LogType, format string, args ...any) {
	b.logs = append(b.logs, LogEntry{Type: t, Message: fmt.Sprintf(format, args...), Turn: b.turn})
}
