package data

import (
	_ "embed"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/xiuxian/internal/model"
)

//go:embed monsters.yaml
var monstersYAML []byte

// Difficulty of a monster challenge.
type Difficulty string

const (
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
	DifficultyBoss   Difficulty = "boss"
)

// Monster is one bestiary entry.
type Monster struct {
	ID          int        `yaml:"id" json:"id"`
	Name        string     `yaml:"name" json:"name"`
	Difficulty  Difficulty `yaml:"difficulty" json:"difficulty"`
	Level       int        `yaml:"level" json:"level"`
	Description string     `yaml:"description" json:"description"`
	Drops       string     `yaml:"drops" json:"dropItems"`

	model.Attributes `yaml:",inline" json:"attributes"`
}

// monsterTable -- registry бестиария по ID. Заполняется LoadMonsters.
var (
	monsterMu    sync.RWMutex
	monsterTable map[int]Monster
)

// ParseMonsters decodes a YAML bestiary and checks it for duplicate or
// non-positive IDs and empty names.
func ParseMonsters(raw []byte) ([]Monster, error) {
	var list []Monster
	if err := yaml.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("parsing bestiary: %w", err)
	}

	seen := make(map[int]bool, len(list))
	for i, m := range list {
		if m.ID <= 0 {
			return nil, fmt.Errorf("monster #%d: id must be positive, got %d", i, m.ID)
		}
		if seen[m.ID] {
			return nil, fmt.Errorf("monster #%d: duplicate id %d", i, m.ID)
		}
		if strings.TrimSpace(m.Name) == "" {
			return nil, fmt.Errorf("monster %d: empty name", m.ID)
		}
		seen[m.ID] = true
	}
	return list, nil
}

// LoadMonsters builds the registry from the embedded bestiary.
// Safe to call more than once.
func LoadMonsters() error {
	list, err := ParseMonsters(monstersYAML)
	if err != nil {
		return err
	}

	table := make(map[int]Monster, len(list))
	for _, m := range list {
		table[m.ID] = m
	}

	monsterMu.Lock()
	monsterTable = table
	monsterMu.Unlock()

	slog.Info("loaded bestiary", "count", len(table))
	return nil
}

// GetMonster returns a monster by ID.
// Returns false если бестиарий не загружен или ID неизвестен.
func GetMonster(id int) (Monster, bool) {
	monsterMu.RLock()
	defer monsterMu.RUnlock()
	m, ok := monsterTable[id]
	return m, ok
}

// Monsters returns the loaded bestiary sorted by ID, optionally filtered by
// difficulty (empty means all).
func Monsters(d Difficulty) []Monster {
	monsterMu.RLock()
	out := make([]Monster, 0, len(monsterTable))
	for _, m := range monsterTable {
		if d == "" || m.Difficulty == d {
			out = append(out, m)
		}
	}
	monsterMu.RUnlock()

	slices.SortFunc(out, func(a, b Monster) int { return a.ID - b.ID })
	return out
}
