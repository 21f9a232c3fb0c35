package enchant

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/udisondev/xiuxian/internal/model"
	"github.com/udisondev/xiuxian/internal/rng"
)

// Players reads players.
type Players interface {
	Get(ctx context.Context, id int64) (model.Player, error)
}

// Store loads items and commits forge results atomically.
type Store interface {
	LoadEquipment(ctx context.Context, playerID int64, id string) (model.Equipment, error)
	// CommitEquipment charges delta and replaces expect with next.
	// Fails if the stored item no longer matches expect.
	CommitEquipment(ctx context.Context, playerID int64, expect, next model.Equipment, delta model.Wallet) (model.Player, error)
}

// Outcome is the result of a committed enhance attempt.
type Outcome struct {
	Result
	// Unequipped is true if the item outgrew the player's realm and was taken off.
	Unequipped bool
	Player     model.Player
}

// Proposal is a paid reforge waiting for confirmation.
type Proposal struct {
	ReforgeResult
	EquipmentID string
	Player      model.Player
}

// Service enhances and reforges equipment owned by players.
type Service struct {
	players   Players
	store     Store
	newSource func() rng.Source
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

// WithSourceFunc sets the per-attempt randomness factory. Default: rng.Fresh.
func WithSourceFunc(f func() rng.Source) Option { return func(s *Service) { s.newSource = f } }

// NewService creates an enchant service.
func NewService(players Players, store Store, opts ...Option) *Service {
	s := &Service{
		players:   players,
		store:     store,
		newSource: func() rng.Source { return rng.Fresh() },
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enhance makes one enhancement attempt on a piece of the player.
// Stones are charged whatever the outcome. A worn piece whose new realm
// requirement exceeds the player's realm is taken off.
func (s *Service) Enhance(ctx context.Context, playerID int64, equipmentID string) (Outcome, error) {
	p, err := s.players.Get(ctx, playerID)
	if err != nil {
		return Outcome{}, fmt.Errorf("loading player %d: %w", playerID, err)
	}
	eq, err := s.store.LoadEquipment(ctx, playerID, equipmentID)
	if err != nil {
		return Outcome{}, fmt.Errorf("loading equipment %s: %w", equipmentID, err)
	}
	if err := Validate(eq, p.ReinforceStones, p.Realm); err != nil {
		return Outcome{}, err
	}

	res := TryEnhance(eq, s.newSource())
	out := Outcome{Result: res}
	if res.Equipment.Equipped && res.Equipment.RequiredRealm > p.Realm {
		res.Equipment.Equipped = false
		out.Result.Equipment = res.Equipment
		out.Unequipped = true
	}

	delta := model.Wallet{ReinforceStones: -int64(res.Cost)}
	out.Player, err = s.store.CommitEquipment(ctx, playerID, eq, res.Equipment, delta)
	if err != nil {
		return Outcome{}, fmt.Errorf("committing enhance of %s: %w", equipmentID, err)
	}

	s.logger.Info("equipment enhanced",
		"playerID", playerID,
		"id", equipmentID,
		"success", res.Success,
		"level", res.Equipment.EnhanceLevel,
		"cost", res.Cost,
		"unequipped", out.Unequipped)
	return out, nil
}

// Reforge pays for a reforge and returns the proposed stats. The item keeps
// its stats until ConfirmReforge.
func (s *Service) Reforge(ctx context.Context, playerID int64, equipmentID string) (Proposal, error) {
	p, err := s.players.Get(ctx, playerID)
	if err != nil {
		return Proposal{}, fmt.Errorf("loading player %d: %w", playerID, err)
	}
	eq, err := s.store.LoadEquipment(ctx, playerID, equipmentID)
	if err != nil {
		return Proposal{}, fmt.Errorf("loading equipment %s: %w", equipmentID, err)
	}
	if err := ValidateReforge(eq, p.RefinementStones); err != nil {
		return Proposal{}, err
	}

	res, err := Reforge(eq, s.newSource())
	if err != nil {
		return Proposal{}, fmt.Errorf("reforging %s: %w", equipmentID, err)
	}

	delta := model.Wallet{RefinementStones: -int64(res.Cost)}
	updated, err := s.store.CommitEquipment(ctx, playerID, eq, eq, delta)
	if err != nil {
		return Proposal{}, fmt.Errorf("charging reforge of %s: %w", equipmentID, err)
	}

	s.logger.Info("equipment reforged", "playerID", playerID, "id", equipmentID, "cost", res.Cost)
	return Proposal{ReforgeResult: res, EquipmentID: equipmentID, Player: updated}, nil
}

// ConfirmReforge applies a proposal. The item must still carry the stats the
// proposal was rolled from.
func (s *Service) ConfirmReforge(ctx context.Context, playerID int64, pr Proposal) (model.Equipment, error) {
	if len(pr.NewStats) != len(pr.OldStats) {
		return model.Equipment{}, ErrStatCountChanged
	}
	eq, err := s.store.LoadEquipment(ctx, playerID, pr.EquipmentID)
	if err != nil {
		return model.Equipment{}, fmt.Errorf("loading equipment %s: %w", pr.EquipmentID, err)
	}

	expect := eq.Clone()
	expect.Stats = pr.OldStats.Clone()
	next := pr.Apply(eq)
	if _, err := s.store.CommitEquipment(ctx, playerID, expect, next, model.Wallet{}); err != nil {
		return model.Equipment{}, fmt.Errorf("confirming reforge of %s: %w", pr.EquipmentID, err)
	}

	s.logger.Info("reforge confirmed",
		"playerID", playerID,
		"id", pr.EquipmentID,
		"stats", slices.Sorted(maps.Keys(next.Stats)))
	return next, nil
}
