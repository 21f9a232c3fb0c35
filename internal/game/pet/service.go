package pet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/udisondev/xiuxian/internal/model"
	"github.com/udisondev/xiuxian/internal/rng"
)

var (
	// ErrPetActive -- выпущенного питомца нельзя отпустить или скормить.
	ErrPetActive = errors.New("pet is deployed")
	// ErrNothingToRelease -- список на отпускание пуст.
	ErrNothingToRelease = errors.New("no pets to release")
)

// Players reads players.
type Players interface {
	Get(ctx context.Context, id int64) (model.Player, error)
}

// Store loads pets and commits growth atomically.
type Store interface {
	LoadPet(ctx context.Context, playerID int64, id string) (model.Pet, error)
	// CommitPet charges delta, replaces expect with next and deletes consumed.
	// Fails if the stored pet no longer matches expect.
	CommitPet(ctx context.Context, playerID int64, expect, next model.Pet, consumed []string, delta model.Wallet) (model.Player, error)
	ReleasePets(ctx context.Context, playerID int64, ids []string, credit model.Wallet) (model.Player, error)
}

// Service grows and releases the pets of players.
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

// WithSourceFunc sets the per-evolution randomness factory. Default: rng.Fresh.
func WithSourceFunc(f func() rng.Source) Option { return func(s *Service) { s.newSource = f } }

// NewService creates a pet service.
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

// Upgrade raises a pet one level for cost essence.
func (s *Service) Upgrade(ctx context.Context, playerID int64, petID string, cost int64) (model.Pet, error) {
	p, err := s.players.Get(ctx, playerID)
	if err != nil {
		return model.Pet{}, fmt.Errorf("loading player %d: %w", playerID, err)
	}
	cur, err := s.store.LoadPet(ctx, playerID, petID)
	if err != nil {
		return model.Pet{}, fmt.Errorf("loading pet %s: %w", petID, err)
	}

	next, err := Upgrade(cur, p.PetEssence, cost)
	if err != nil {
		return model.Pet{}, err
	}
	if _, err := s.store.CommitPet(ctx, playerID, cur, next, nil, model.Wallet{PetEssence: -cost}); err != nil {
		return model.Pet{}, fmt.Errorf("committing upgrade of %s: %w", petID, err)
	}

	s.logger.Info("pet upgraded", "playerID", playerID, "id", petID, "level", next.Level, "cost", cost)
	return next, nil
}

// Evolve feeds foodID to targetID. The food pet is gone whatever the outcome.
func (s *Service) Evolve(ctx context.Context, playerID int64, targetID, foodID string) (EvolveResult, error) {
	target, err := s.store.LoadPet(ctx, playerID, targetID)
	if err != nil {
		return EvolveResult{}, fmt.Errorf("loading pet %s: %w", targetID, err)
	}
	food, err := s.store.LoadPet(ctx, playerID, foodID)
	if err != nil {
		return EvolveResult{}, fmt.Errorf("loading food pet %s: %w", foodID, err)
	}
	if food.Active {
		return EvolveResult{}, fmt.Errorf("feeding %s: %w", foodID, ErrPetActive)
	}

	res, err := Evolve(target, food, s.newSource())
	if err != nil {
		return EvolveResult{}, err
	}
	if _, err := s.store.CommitPet(ctx, playerID, target, res.Pet, []string{res.ConsumedID}, model.Wallet{}); err != nil {
		return EvolveResult{}, fmt.Errorf("committing evolution of %s: %w", targetID, err)
	}

	s.logger.Info("pet evolved",
		"playerID", playerID,
		"id", targetID,
		"food", foodID,
		"success", res.Success,
		"star", res.Pet.Star)
	return res, nil
}

// Release lets resting pets go and credits their essence.
// Returns the essence gained.
func (s *Service) Release(ctx context.Context, playerID int64, petIDs []string) (int64, error) {
	if len(petIDs) == 0 {
		return 0, ErrNothingToRelease
	}
	// Дубликаты начислили бы эссенцию дважды.
	petIDs = slices.Compact(slices.Sorted(slices.Values(petIDs)))

	var essence int64
	for _, id := range petIDs {
		p, err := s.store.LoadPet(ctx, playerID, id)
		if err != nil {
			return 0, fmt.Errorf("loading pet %s: %w", id, err)
		}
		if p.Active {
			return 0, fmt.Errorf("releasing %s: %w", id, ErrPetActive)
		}
		essence += ReleaseEssence(p)
	}

	if _, err := s.store.ReleasePets(ctx, playerID, petIDs, model.Wallet{PetEssence: essence}); err != nil {
		return 0, fmt.Errorf("releasing pets of player %d: %w", playerID, err)
	}

	s.logger.Info("pets released", "playerID", playerID, "count", len(petIDs), "essence", essence)
	return essence, nil
}
