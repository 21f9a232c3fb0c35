// Package gacha orchestrates draws: it prices a batch, calls the loot
// generator once per pull, applies auto-sell/auto-release rules, and commits
// the balance change together with the new items.
//
// Draw flow:
//  1. Validate kind, count (1..100) and wish target
//  2. Read the player; fail early if spirit stones don't cover loot.Cost
//  3. Generate Count items at the player's level with a fresh rng.Source
//  4. loot.AutoDispose splits kept items from salvaged ones
//  5. Store.CommitDraw deducts the cost, credits salvage, inserts kept items
//     (the store serializes concurrent draws of one player)
package gacha

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/udisondev/xiuxian/internal/game/loot"
	"github.com/udisondev/xiuxian/internal/model"
	"github.com/udisondev/xiuxian/internal/rng"
)

// ErrInvalidCount -- число круток вне диапазона 1..MaxPullsPerDraw.
var ErrInvalidCount = errors.New("invalid draw count")

// Players reads players.
type Players interface {
	Get(ctx context.Context, id int64) (model.Player, error)
}

// Store commits draws and disposals atomically.
type Store interface {
	CommitDraw(ctx context.Context, playerID int64, delta model.Wallet, items []loot.Item) (model.Player, error)
	Discard(ctx context.Context, playerID int64, items []loot.Item, credit model.Wallet) (model.Player, error)
}

// Request describes one batch draw.
type Request struct {
	Kind  loot.Kind
	Count int
	Wish  loot.WishBias
	// AutoSell lists equipment qualities sold on the spot.
	AutoSell []model.Quality
	// AutoRelease lists pet rarities released on the spot.
	AutoRelease []model.Quality
}

// Receipt is the result of a committed draw.
type Receipt struct {
	Kept     []loot.Item
	Sold     []loot.Item
	Released []loot.Item
	// Cost is the spirit stones paid.
	Cost int64
	// Salvage is the reinforcement stones credited for sold and released items.
	Salvage int64
	// Player is the player after the commit.
	Player model.Player
}

// All returns every generated item in draw order groups: kept, sold, released.
func (r Receipt) All() []loot.Item {
	out := make([]loot.Item, 0, len(r.Kept)+len(r.Sold)+len(r.Released))
	out = append(out, r.Kept...)
	out = append(out, r.Sold...)
	return append(out, r.Released...)
}

// Service runs gacha draws.
type Service struct {
	players   Players
	store     Store
	newSource func() rng.Source
	genOpts   []loot.Option
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

// WithSourceFunc sets the per-draw randomness factory.
// Default: rng.Fresh for every draw.
func WithSourceFunc(f func() rng.Source) Option { return func(s *Service) { s.newSource = f } }

// WithGeneratorOptions passes options (id, clock) to every loot.Generator.
func WithGeneratorOptions(opts ...loot.Option) Option {
	return func(s *Service) { s.genOpts = append(s.genOpts, opts...) }
}

// NewService creates a gacha service.
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

// Validate checks a request without touching any state.
func (r Request) Validate() error {
	if _, err := loot.ParseKind(string(r.Kind)); err != nil {
		return err
	}
	if r.Count < 1 || r.Count > loot.MaxPullsPerDraw {
		return fmt.Errorf("%w: %d, want 1..%d", ErrInvalidCount, r.Count, loot.MaxPullsPerDraw)
	}
	if r.Wish.Enabled && !r.Wish.Target.Valid() {
		return fmt.Errorf("wish target: %w: %d", model.ErrUnknownQuality, int(r.Wish.Target))
	}
	return nil
}

// Draw performs a batch draw for a player.
func (s *Service) Draw(ctx context.Context, playerID int64, req Request) (Receipt, error) {
	if err := req.Validate(); err != nil {
		return Receipt{}, err
	}

	p, err := s.players.Get(ctx, playerID)
	if err != nil {
		return Receipt{}, fmt.Errorf("loading player %d: %w", playerID, err)
	}

	cost := int64(loot.Cost(req.Count, req.Wish.Enabled))
	if p.SpiritStones < cost {
		return Receipt{}, fmt.Errorf("%w: need %d spirit stones, have %d",
			model.ErrInsufficientFunds, cost, p.SpiritStones)
	}

	gen := loot.NewGenerator(s.newSource(), s.genOpts...)
	items := make([]loot.Item, 0, req.Count)
	for range req.Count {
		it, err := gen.Generate(req.Kind, p.Level, req.Wish)
		if err != nil {
			return Receipt{}, fmt.Errorf("generating %s: %w", req.Kind, err)
		}
		items = append(items, it)
	}

	d := loot.AutoDispose(items, req.AutoSell, req.AutoRelease)
	delta := model.Wallet{
		SpiritStones:    -cost,
		ReinforceStones: int64(d.ReinforceStones),
	}

	updated, err := s.store.CommitDraw(ctx, playerID, delta, d.Kept)
	if err != nil {
		return Receipt{}, fmt.Errorf("committing draw for player %d: %w", playerID, err)
	}

	s.logger.Info("draw committed",
		"playerID", playerID,
		"kind", req.Kind,
		"count", req.Count,
		"wish", req.Wish.Enabled,
		"cost", cost,
		"kept", len(d.Kept),
		"salvaged", len(d.Sold)+len(d.Released),
		"best", Best(items).String())
	for _, it := range items {
		s.logger.Debug("drawn", "playerID", playerID, "id", it.ID(), "name", it.Name(), "quality", it.Quality().String())
	}

	return Receipt{
		Kept:     d.Kept,
		Sold:     d.Sold,
		Released: d.Released,
		Cost:     cost,
		Salvage:  int64(d.ReinforceStones),
		Player:   updated,
	}, nil
}

// Dispose applies auto-sell/auto-release rules to items the player already
// owns: matching items are deleted and their salvage value credited.
func (s *Service) Dispose(ctx context.Context, playerID int64, items []loot.Item, sell, release []model.Quality) (loot.Disposal, error) {
	d := loot.AutoDispose(items, sell, release)
	gone := append(append([]loot.Item(nil), d.Sold...), d.Released...)
	if len(gone) == 0 {
		return d, nil
	}

	credit := model.Wallet{ReinforceStones: int64(d.ReinforceStones)}
	if _, err := s.store.Discard(ctx, playerID, gone, credit); err != nil {
		return loot.Disposal{}, fmt.Errorf("disposing items of player %d: %w", playerID, err)
	}

	s.logger.Info("items disposed",
		"playerID", playerID,
		"sold", len(d.Sold),
		"released", len(d.Released),
		"reinforceStones", d.ReinforceStones)
	return d, nil
}

// Tally counts items per quality.
func Tally(items []loot.Item) [model.QualityCount]int {
	var out [model.QualityCount]int
	for _, it := range items {
		if q := it.Quality(); q.Valid() {
			out[q]++
		}
	}
	return out
}

// Best returns the highest quality among items (Common for none).
func Best(items []loot.Item) model.Quality {
	best := model.QualityCommon
	for _, it := range items {
		best = max(best, it.Quality())
	}
	return best
}
