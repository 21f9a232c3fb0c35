// Package duel orchestrates battles: it loads both sides, runs the combat
// engine, pays rewards and records the battle history.
//
// Battle flow:
//  1. Manager.Enter marks the player busy (one battle per player at a time)
//  2. Player and opponent are loaded; player level is checked
//  3. Snapshots are built from base attributes + equipped items + active pet
//  4. combat.Simulate runs with a fresh rng.Source
//  5. Rewards are credited to the player only, then the battle is recorded
package duel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/udisondev/xiuxian/internal/data"
	"github.com/udisondev/xiuxian/internal/game/combat"
	"github.com/udisondev/xiuxian/internal/model"
	"github.com/udisondev/xiuxian/internal/rng"
)

var (
	// ErrLevelTooLow -- уровень игрока ниже минимального для боёв.
	ErrLevelTooLow = errors.New("player level too low to duel")
	// ErrUnknownMonster -- монстра с таким ID нет в бестиарии.
	ErrUnknownMonster = errors.New("unknown monster")
	// ErrSelfDuel -- игрок вызвал сам себя.
	ErrSelfDuel = errors.New("cannot duel yourself")
	// ErrInBattle -- игрок уже в бою.
	ErrInBattle = errors.New("player already in battle")
)

// DefaultMinLevel is the lowest level allowed to fight.
const DefaultMinLevel = 7

// Players reads players and credits rewards.
type Players interface {
	Get(ctx context.Context, id int64) (model.Player, error)
	ApplyRewards(ctx context.Context, id int64, delta model.Wallet) error
}

// Gear lists the equipped items of a player.
type Gear interface {
	ListEquipped(ctx context.Context, ownerID int64) ([]model.Equipment, error)
}

// Pets finds the active pet of a player; nil when none is deployed.
type Pets interface {
	Active(ctx context.Context, ownerID int64) (*model.Pet, error)
}

// Recorder stores finished battles.
type Recorder interface {
	Record(ctx context.Context, rec combat.Record) (int64, error)
}

// Report is what a caller gets back after a battle.
type Report struct {
	BattleID int64
	Kind     combat.Kind
	Opponent string
	Outcome  combat.Outcome
	// Credited is the wallet delta applied to the player.
	Credited model.Wallet
}

// Service runs PvE and PvP battles.
type Service struct {
	players Players
	gear    Gear
	pets    Pets
	battles Recorder

	monsters  func(id int) (data.Monster, bool)
	newSource func() rng.Source
	minLevel  int
	manager   *Manager
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

// WithMinLevel sets the minimum player level (inclusive).
func WithMinLevel(level int) Option { return func(s *Service) { s.minLevel = level } }

// WithSourceFunc sets the per-battle randomness factory.
// Default: rng.Fresh for every battle.
func WithSourceFunc(f func() rng.Source) Option { return func(s *Service) { s.newSource = f } }

// WithBestiary replaces the monster lookup. Default: data.GetMonster.
func WithBestiary(f func(id int) (data.Monster, bool)) Option {
	return func(s *Service) { s.monsters = f }
}

// NewService creates a duel service.
func NewService(players Players, gear Gear, pets Pets, battles Recorder, opts ...Option) *Service {
	s := &Service{
		players:   players,
		gear:      gear,
		pets:      pets,
		battles:   battles,
		monsters:  data.GetMonster,
		newSource: func() rng.Source { return rng.Fresh() },
		minLevel:  DefaultMinLevel,
		manager:   NewManager(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Manager exposes the in-battle tracker.
func (s *Service) Manager() *Manager { return s.manager }

// PvE fights a bestiary monster.
func (s *Service) PvE(ctx context.Context, playerID int64, monsterID int) (Report, error) {
	m, ok := s.monsters(monsterID)
	if !ok {
		return Report{}, fmt.Errorf("%w: %d", ErrUnknownMonster, monsterID)
	}

	if err := s.manager.Enter(playerID, m.Name); err != nil {
		return Report{}, err
	}
	defer s.manager.Leave(playerID)

	player, snap, err := s.load(ctx, playerID)
	if err != nil {
		return Report{}, err
	}
	if player.Level < s.minLevel {
		return Report{}, fmt.Errorf("%w: level %d, need %d", ErrLevelTooLow, player.Level, s.minLevel)
	}

	return s.fight(ctx, player, snap, MonsterSnapshot(m), combat.KindPvE)
}

// MonsterSnapshot builds the battle side of a bestiary monster. Monsters have
// no resistance or special groups, so the engine defaults apply.
func MonsterSnapshot(m data.Monster) combat.Snapshot {
	return combat.Snapshot{
		ID:      "monster-" + strconv.Itoa(m.ID),
		Name:    m.Name,
		Level:   m.Level,
		Monster: true,
		Base:    &m.Base,
		Combat:  &m.Combat,
	}
}

// PvP fights another player's current loadout. The opponent is read only:
// it is neither rewarded nor marked busy.
func (s *Service) PvP(ctx context.Context, playerID, opponentID int64) (Report, error) {
	if playerID == opponentID {
		return Report{}, ErrSelfDuel
	}

	if err := s.manager.Enter(playerID, "player "+strconv.FormatInt(opponentID, 10)); err != nil {
		return Report{}, err
	}
	defer s.manager.Leave(playerID)

	player, snap, err := s.load(ctx, playerID)
	if err != nil {
		return Report{}, err
	}
	if player.Level < s.minLevel {
		return Report{}, fmt.Errorf("%w: level %d, need %d", ErrLevelTooLow, player.Level, s.minLevel)
	}

	_, oppSnap, err := s.load(ctx, opponentID)
	if err != nil {
		return Report{}, err
	}
	return s.fight(ctx, player, snap, oppSnap, combat.KindPvP)
}

// load reads a player with its loadout and builds its battle snapshot.
func (s *Service) load(ctx context.Context, id int64) (model.Player, combat.Snapshot, error) {
	p, err := s.players.Get(ctx, id)
	if err != nil {
		return model.Player{}, combat.Snapshot{}, fmt.Errorf("loading player %d: %w", id, err)
	}
	items, err := s.gear.ListEquipped(ctx, id)
	if err != nil {
		return model.Player{}, combat.Snapshot{}, fmt.Errorf("loading equipment of %d: %w", id, err)
	}
	pet, err := s.pets.Active(ctx, id)
	if err != nil {
		return model.Player{}, combat.Snapshot{}, fmt.Errorf("loading pet of %d: %w", id, err)
	}

	attrs := model.Loadout(p.Attributes, items, pet)
	return p, combat.SnapshotOf(strconv.FormatInt(p.ID, 10), p.Name, p.Level, attrs), nil
}

func (s *Service) fight(ctx context.Context, player model.Player, me, opp combat.Snapshot, kind combat.Kind) (Report, error) {
	out := combat.Simulate(me, opp, kind, s.newSource())
	credit := combat.Wallet(out.Rewards)

	if !credit.IsZero() {
		if err := s.players.ApplyRewards(ctx, player.ID, credit); err != nil {
			return Report{}, fmt.Errorf("crediting rewards to %d: %w", player.ID, err)
		}
	}

	id, err := s.battles.Record(ctx, combat.NewRecord(player.ID, kind, opp.Name, out))
	if err != nil {
		// Награда уже начислена: бой не теряем, только историю.
		s.logger.Error("recording battle failed", "playerID", player.ID, "error", err)
	}

	s.logger.Info("battle finished",
		"kind", kind.String(),
		"playerID", player.ID,
		"realm", data.RealmTitle(player.Level),
		"opponent", opp.Name,
		"result", out.Result,
		"rounds", out.Rounds,
		"rewards", out.RewardDescriptions())

	return Report{
		BattleID: id,
		Kind:     kind,
		Opponent: opp.Name,
		Outcome:  out,
		Credited: credit,
	}, nil
}
