package combat

import "time"

// Record is one finished battle as kept in a player's history.
type Record struct {
	ID           int64
	PlayerID     int64
	Kind         string
	OpponentName string
	Result       Result
	Rounds       int
	Rewards      []Reward
	Logs         []LogEntry
	CreatedAt    time.Time
}

// NewRecord builds a history record from a finished battle.
func NewRecord(playerID int64, kind Kind, opponent string, o Outcome) Record {
	return Record{
		PlayerID:     playerID,
		Kind:         kind.String(),
		OpponentName: opponent,
		Result:       o.Result,
		Rounds:       o.Rounds,
		Rewards:      o.Rewards,
		Logs:         o.Logs,
	}
}
