package duel

import (
	"fmt"
	"sync"
)

// Manager tracks players that are currently in a battle.
// Thread-safe for concurrent access.
//
// A player is in at most one battle at a time, so rewards of two battles
// never race on the same balance row.
type Manager struct {
	mu       sync.Mutex
	byPlayer map[int64]string // playerID → opponent name
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{byPlayer: make(map[int64]string, 32)}
}

// Enter marks playerID as fighting opponent.
// Returns ErrInBattle if the player is already fighting.
func (m *Manager) Enter(playerID int64, opponent string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cur, ok := m.byPlayer[playerID]; ok {
		return fmt.Errorf("%w: player %d vs %s", ErrInBattle, playerID, cur)
	}
	m.byPlayer[playerID] = opponent
	return nil
}

// Leave clears the battle mark of playerID. Safe to call twice.
func (m *Manager) Leave(playerID int64) {
	m.mu.Lock()
	delete(m.byPlayer, playerID)
	m.mu.Unlock()
}

// InBattle returns true if the player is in an active battle.
func (m *Manager) InBattle(playerID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byPlayer[playerID]
	return ok
}

// Count returns the number of players currently fighting.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byPlayer)
}
