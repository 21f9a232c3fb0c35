package testutil

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/udisondev/xiuxian/internal/db"
	"github.com/udisondev/xiuxian/internal/game/combat"
	"github.com/udisondev/xiuxian/internal/game/loot"
	"github.com/udisondev/xiuxian/internal/model"
)

// MemStore -- in-memory имплементация persistence для unit тестов.
// Не требует реального PostgreSQL. Ошибки совпадают с пакетом db.
type MemStore struct {
	mu        sync.Mutex
	nextID    int64
	players   map[int64]model.Player
	equipment map[string]model.Equipment
	pets      map[string]model.Pet
	battles   []combat.Record

	// Err, если задан, возвращается всеми методами интерфейсов.
	Err error
}

// NewMemStore создаёт пустой MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		players:   make(map[int64]model.Player),
		equipment: make(map[string]model.Equipment),
		pets:      make(map[string]model.Pet),
	}
}

// AddPlayer сохраняет игрока, назначая ID если он не задан.
func (m *MemStore) AddPlayer(p model.Player) model.Player {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.ID == 0 {
		m.nextID++
		p.ID = m.nextID
	}
	m.players[p.ID] = p
	return p
}

// AddEquipment кладёт предмет владельцу.
func (m *MemStore) AddEquipment(eq model.Equipment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.equipment[eq.ID] = eq.Clone()
}

// AddPet кладёт питомца владельцу.
func (m *MemStore) AddPet(p model.Pet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pets[p.ID] = p.Clone()
}

// Player возвращает текущее состояние игрока (для assertions).
func (m *MemStore) Player(id int64) model.Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.players[id]
}

// EquipmentOf возвращает весь инвентарь игрока, отсортированный по ID.
func (m *MemStore) EquipmentOf(ownerID int64) []model.Equipment {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.Equipment
	for _, eq := range m.equipment {
		if eq.OwnerID == ownerID {
			out = append(out, eq.Clone())
		}
	}
	slices.SortFunc(out, func(a, b model.Equipment) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// PetsOf возвращает всех питомцев игрока, отсортированных по ID.
func (m *MemStore) PetsOf(ownerID int64) []model.Pet {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.Pet
	for _, p := range m.pets {
		if p.OwnerID == ownerID {
			out = append(out, p.Clone())
		}
	}
	slices.SortFunc(out, func(a, b model.Pet) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// Battles возвращает записанные бои в порядке записи.
func (m *MemStore) Battles() []combat.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.battles)
}

// Get implements the player reader of the services.
func (m *MemStore) Get(_ context.Context, id int64) (model.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return model.Player{}, m.Err
	}
	p, ok := m.players[id]
	if !ok {
		return model.Player{}, fmt.Errorf("loading player %d: %w", id, db.ErrNotFound)
	}
	return p, nil
}

// ApplyRewards adds delta to the player's balances.
func (m *MemStore) ApplyRewards(_ context.Context, id int64, delta model.Wallet) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	return m.applyLocked(id, delta)
}

func (m *MemStore) applyLocked(id int64, delta model.Wallet) error {
	p, ok := m.players[id]
	if !ok {
		return fmt.Errorf("updating balances of player %d: %w", id, db.ErrNotFound)
	}
	if !p.CanApply(delta) {
		return fmt.Errorf("updating balances of player %d: %w", id, model.ErrInsufficientFunds)
	}
	m.players[id] = p.Credit(delta)
	return nil
}

// ListEquipped returns the worn pieces of a player.
func (m *MemStore) ListEquipped(_ context.Context, ownerID int64) ([]model.Equipment, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var out []model.Equipment
	for _, eq := range m.EquipmentOf(ownerID) {
		if eq.Equipped {
			out = append(out, eq)
		}
	}
	return out, nil
}

// Active returns the deployed pet, or nil.
func (m *MemStore) Active(_ context.Context, ownerID int64) (*model.Pet, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, p := range m.PetsOf(ownerID) {
		if p.Active {
			return &p, nil
		}
	}
	return nil, nil
}

// Record stores a battle record.
func (m *MemStore) Record(_ context.Context, rec combat.Record) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return 0, m.Err
	}
	rec.ID = int64(len(m.battles) + 1)
	m.battles = append(m.battles, rec)
	return rec.ID, nil
}

// CommitDraw mirrors db.GachaStore.CommitDraw.
func (m *MemStore) CommitDraw(_ context.Context, playerID int64, delta model.Wallet, items []loot.Item) (model.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return model.Player{}, m.Err
	}
	if err := m.applyLocked(playerID, delta); err != nil {
		return model.Player{}, err
	}
	for _, it := range items {
		switch {
		case it.Equipment != nil:
			eq := it.Equipment.Clone()
			eq.OwnerID = playerID
			m.equipment[eq.ID] = eq
		case it.Pet != nil:
			p := it.Pet.Clone()
			p.OwnerID = playerID
			m.pets[p.ID] = p
		}
	}
	return m.players[playerID], nil
}

// Discard mirrors db.GachaStore.Discard.
func (m *MemStore) Discard(_ context.Context, playerID int64, items []loot.Item, credit model.Wallet) (model.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return model.Player{}, m.Err
	}
	// Сначала проверяем всё, чтобы не удалить половину.
	for _, it := range items {
		if !m.ownsLocked(playerID, it) {
			return model.Player{}, fmt.Errorf("deleting %s: %w", it.ID(), db.ErrNotFound)
		}
	}
	if err := m.applyLocked(playerID, credit); err != nil {
		return model.Player{}, err
	}
	for _, it := range items {
		delete(m.equipment, it.ID())
		delete(m.pets, it.ID())
	}
	return m.players[playerID], nil
}

func (m *MemStore) ownsLocked(playerID int64, it loot.Item) bool {
	if it.Pet != nil {
		p, ok := m.pets[it.ID()]
		return ok && p.OwnerID == playerID
	}
	eq, ok := m.equipment[it.ID()]
	return ok && eq.OwnerID == playerID
}

// LoadEquipment mirrors db.ForgeStore.LoadEquipment.
func (m *MemStore) LoadEquipment(_ context.Context, playerID int64, id string) (model.Equipment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return model.Equipment{}, m.Err
	}
	eq, ok := m.equipment[id]
	if !ok || eq.OwnerID != playerID {
		return model.Equipment{}, fmt.Errorf("loading equipment %s: %w", id, db.ErrNotFound)
	}
	return eq.Clone(), nil
}

// LoadPet mirrors db.ForgeStore.LoadPet.
func (m *MemStore) LoadPet(_ context.Context, playerID int64, id string) (model.Pet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return model.Pet{}, m.Err
	}
	p, ok := m.pets[id]
	if !ok || p.OwnerID != playerID {
		return model.Pet{}, fmt.Errorf("loading pet %s: %w", id, db.ErrNotFound)
	}
	return p.Clone(), nil
}

// CommitEquipment mirrors db.ForgeStore.CommitEquipment.
func (m *MemStore) CommitEquipment(_ context.Context, playerID int64, expect, next model.Equipment, delta model.Wallet) (model.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return model.Player{}, m.Err
	}
	cur, ok := m.equipment[expect.ID]
	if !ok || cur.OwnerID != playerID {
		return model.Player{}, fmt.Errorf("locking equipment %s: %w", expect.ID, db.ErrNotFound)
	}
	if cur.EnhanceLevel != expect.EnhanceLevel || !maps.Equal(cur.Stats, expect.Stats) {
		return model.Player{}, fmt.Errorf("equipment %s: %w", expect.ID, db.ErrConflict)
	}
	if err := m.applyLocked(playerID, delta); err != nil {
		return model.Player{}, err
	}
	cur.EnhanceLevel = next.EnhanceLevel
	cur.Stats = next.Stats.Clone()
	cur.RequiredRealm = next.RequiredRealm
	cur.Equipped = next.Equipped
	m.equipment[cur.ID] = cur
	return m.players[playerID], nil
}

// CommitPet mirrors db.ForgeStore.CommitPet.
func (m *MemStore) CommitPet(_ context.Context, playerID int64, expect, next model.Pet, consumed []string, delta model.Wallet) (model.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return model.Player{}, m.Err
	}
	cur, ok := m.pets[expect.ID]
	if !ok || cur.OwnerID != playerID {
		return model.Player{}, fmt.Errorf("locking pet %s: %w", expect.ID, db.ErrNotFound)
	}
	if cur.Level != expect.Level || cur.Star != expect.Star {
		return model.Player{}, fmt.Errorf("pet %s: %w", expect.ID, db.ErrConflict)
	}
	if err := m.releasableLocked(playerID, consumed); err != nil {
		return model.Player{}, err
	}
	if err := m.applyLocked(playerID, delta); err != nil {
		return model.Player{}, err
	}
	for _, id := range consumed {
		delete(m.pets, id)
	}
	cur.Level = next.Level
	cur.Star = next.Star
	cur.AttackBonus, cur.DefenseBonus, cur.HealthBonus = next.AttackBonus, next.DefenseBonus, next.HealthBonus
	m.pets[cur.ID] = cur
	return m.players[playerID], nil
}

// ReleasePets mirrors db.ForgeStore.ReleasePets.
func (m *MemStore) ReleasePets(_ context.Context, playerID int64, ids []string, credit model.Wallet) (model.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return model.Player{}, m.Err
	}
	if err := m.releasableLocked(playerID, ids); err != nil {
		return model.Player{}, err
	}
	if err := m.applyLocked(playerID, credit); err != nil {
		return model.Player{}, err
	}
	for _, id := range ids {
		delete(m.pets, id)
	}
	return m.players[playerID], nil
}

// releasableLocked: все питомцы принадлежат игроку и не выпущены.
func (m *MemStore) releasableLocked(playerID int64, ids []string) error {
	for _, id := range ids {
		p, ok := m.pets[id]
		if !ok || p.OwnerID != playerID || p.Active {
			return fmt.Errorf("deleting pet %s: %w", id, db.ErrNotFound)
		}
	}
	return nil
}
