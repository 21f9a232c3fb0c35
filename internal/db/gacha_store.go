package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/xiuxian/internal/game/loot"
	"github.com/udisondev/xiuxian/internal/model"
)

// GachaStore commits draws and disposals atomically.
//
// Each operation locks the player row (SELECT ... FOR UPDATE), so concurrent
// draws of one player are serialized and a balance never goes negative.
type GachaStore struct {
	pool *pgxpool.Pool
}

// NewGachaStore создаёт новый GachaStore.
func NewGachaStore(pool *pgxpool.Pool) *GachaStore {
	return &GachaStore{pool: pool}
}

// CommitDraw applies delta to the player's balances and inserts items as
// owned by the player, in one transaction. Returns the updated player.
// Fails with model.ErrInsufficientFunds if any balance would go negative.
func (s *GachaStore) CommitDraw(ctx context.Context, playerID int64, delta model.Wallet, items []loot.Item) (model.Player, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return model.Player{}, fmt.Errorf("begin draw for player %d: %w", playerID, err)
	}
	defer rollback(ctx, tx, "commit draw")

	p, err := scanPlayer(tx.QueryRow(ctx,
		`SELECT `+playerColumns+` FROM players WHERE id = $1 FOR UPDATE`, playerID))
	if err != nil {
		return model.Player{}, fmt.Errorf("locking player %d: %w", playerID, notFound(err))
	}
	if !p.CanApply(delta) {
		return model.Player{}, fmt.Errorf("player %d: %w", playerID, model.ErrInsufficientFunds)
	}

	if !delta.IsZero() {
		if err := applyWallet(ctx, tx, playerID, delta); err != nil {
			return model.Player{}, err
		}
	}

	for _, it := range items {
		switch {
		case it.Equipment != nil:
			eq := it.Equipment.Clone()
			eq.OwnerID = playerID
			err = insertEquipment(ctx, tx, eq)
		case it.Pet != nil:
			pet := it.Pet.Clone()
			pet.OwnerID = playerID
			err = insertPet(ctx, tx, pet)
		default:
			err = fmt.Errorf("empty loot item: %w", loot.ErrInvalidKind)
		}
		if err != nil {
			return model.Player{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Player{}, fmt.Errorf("commit draw for player %d: %w", playerID, err)
	}

	slog.Debug("draw committed", "playerID", playerID, "items", len(items))
	return p.Credit(delta), nil
}

// Discard deletes owned items and credits the player, in one transaction.
// Every ID must belong to the player, otherwise nothing changes and
// ErrNotFound is returned.
func (s *GachaStore) Discard(ctx context.Context, playerID int64, items []loot.Item, credit model.Wallet) (model.Player, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return model.Player{}, fmt.Errorf("begin discard for player %d: %w", playerID, err)
	}
	defer rollback(ctx, tx, "discard")

	p, err := scanPlayer(tx.QueryRow(ctx,
		`SELECT `+playerColumns+` FROM players WHERE id = $1 FOR UPDATE`, playerID))
	if err != nil {
		return model.Player{}, fmt.Errorf("locking player %d: %w", playerID, notFound(err))
	}
	if !p.CanApply(credit) {
		return model.Player{}, fmt.Errorf("player %d: %w", playerID, model.ErrInsufficientFunds)
	}

	for _, it := range items {
		table := "equipment"
		if it.Pet != nil {
			table = "pets"
		}
		tag, err := tx.Exec(ctx,
			`DELETE FROM `+table+` WHERE owner_id = $1 AND id = $2`, playerID, it.ID())
		if err != nil {
			return model.Player{}, fmt.Errorf("deleting %s %s: %w", table, it.ID(), err)
		}
		if tag.RowsAffected() == 0 {
			return model.Player{}, fmt.Errorf("deleting %s %s: %w", table, it.ID(), ErrNotFound)
		}
	}

	if !credit.IsZero() {
		if err := applyWallet(ctx, tx, playerID, credit); err != nil {
			return model.Player{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Player{}, fmt.Errorf("commit discard for player %d: %w", playerID, err)
	}
	return p.Credit(credit), nil
}
