package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/xiuxian/internal/model"
)

// ErrConflict -- строка изменилась между чтением и коммитом.
var ErrConflict = errors.New("row changed concurrently")

// ForgeStore commits enhancement, reforge and pet growth atomically.
//
// Like GachaStore, every commit locks the player row first and then the item
// row (SELECT ... FOR UPDATE). The item must still match the state the caller
// computed from, otherwise ErrConflict is returned and nothing changes.
type ForgeStore struct {
	pool *pgxpool.Pool
}

// NewForgeStore создаёт новый ForgeStore.
func NewForgeStore(pool *pgxpool.Pool) *ForgeStore {
	return &ForgeStore{pool: pool}
}

// LoadEquipment returns one piece owned by playerID.
func (s *ForgeStore) LoadEquipment(ctx context.Context, playerID int64, id string) (model.Equipment, error) {
	return NewEquipmentRepository(s.pool).Get(ctx, playerID, id)
}

// LoadPet returns one pet owned by playerID.
func (s *ForgeStore) LoadPet(ctx context.Context, playerID int64, id string) (model.Pet, error) {
	return NewPetRepository(s.pool).Get(ctx, playerID, id)
}

// lockPlayer locks the player row and checks that delta fits the balance.
func lockPlayer(ctx context.Context, tx pgx.Tx, playerID int64, delta model.Wallet) (model.Player, error) {
	p, err := scanPlayer(tx.QueryRow(ctx,
		`SELECT `+playerColumns+` FROM players WHERE id = $1 FOR UPDATE`, playerID))
	if err != nil {
		return model.Player{}, fmt.Errorf("locking player %d: %w", playerID, notFound(err))
	}
	if !p.CanApply(delta) {
		return model.Player{}, fmt.Errorf("player %d: %w", playerID, model.ErrInsufficientFunds)
	}
	return p, nil
}

// CommitEquipment applies delta to the player and saves next in place of
// expect, in one transaction. The stored piece must still have expect's
// enhance level and stats. Saves the equipped flag too.
func (s *ForgeStore) CommitEquipment(ctx context.Context, playerID int64, expect, next model.Equipment, delta model.Wallet) (model.Player, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return model.Player{}, fmt.Errorf("begin forge for player %d: %w", playerID, err)
	}
	defer rollback(ctx, tx, "commit equipment")

	p, err := lockPlayer(ctx, tx, playerID, delta)
	if err != nil {
		return model.Player{}, err
	}

	cur, err := scanEquipment(tx.QueryRow(ctx,
		`SELECT `+equipmentColumns+` FROM equipment WHERE owner_id = $1 AND id = $2 FOR UPDATE`,
		playerID, expect.ID))
	if err != nil {
		return model.Player{}, fmt.Errorf("locking equipment %s: %w", expect.ID, notFound(err))
	}
	if cur.EnhanceLevel != expect.EnhanceLevel || !maps.Equal(cur.Stats, expect.Stats) {
		return model.Player{}, fmt.Errorf("equipment %s: %w", expect.ID, ErrConflict)
	}

	if !delta.IsZero() {
		if err := applyWallet(ctx, tx, playerID, delta); err != nil {
			return model.Player{}, err
		}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE equipment SET enhance_level = $3, stats = $4, required_realm = $5, equipped = $6
		 WHERE owner_id = $1 AND id = $2`,
		playerID, expect.ID, next.EnhanceLevel, nonNilStats(next.Stats), next.RequiredRealm, next.Equipped,
	); err != nil {
		return model.Player{}, fmt.Errorf("updating equipment %s: %w", expect.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Player{}, fmt.Errorf("commit forge for player %d: %w", playerID, err)
	}

	slog.Debug("equipment committed", "playerID", playerID, "id", expect.ID, "level", next.EnhanceLevel)
	return p.Credit(delta), nil
}

// CommitPet applies delta to the player, saves next in place of expect and
// deletes the consumed pets, in one transaction. The stored pet must still
// have expect's level and star; consumed pets must exist and not be deployed.
func (s *ForgeStore) CommitPet(ctx context.Context, playerID int64, expect, next model.Pet, consumed []string, delta model.Wallet) (model.Player, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return model.Player{}, fmt.Errorf("begin pet growth for player %d: %w", playerID, err)
	}
	defer rollback(ctx, tx, "commit pet")

	p, err := lockPlayer(ctx, tx, playerID, delta)
	if err != nil {
		return model.Player{}, err
	}

	cur, err := scanPet(tx.QueryRow(ctx,
		`SELECT `+petColumns+` FROM pets WHERE owner_id = $1 AND id = $2 FOR UPDATE`,
		playerID, expect.ID))
	if err != nil {
		return model.Player{}, fmt.Errorf("locking pet %s: %w", expect.ID, notFound(err))
	}
	if cur.Level != expect.Level || cur.Star != expect.Star {
		return model.Player{}, fmt.Errorf("pet %s: %w", expect.ID, ErrConflict)
	}

	if err := deletePets(ctx, tx, playerID, consumed); err != nil {
		return model.Player{}, err
	}

	if !delta.IsZero() {
		if err := applyWallet(ctx, tx, playerID, delta); err != nil {
			return model.Player{}, err
		}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE pets SET level = $3, star = $4, attack_bonus = $5, defense_bonus = $6, health_bonus = $7
		 WHERE owner_id = $1 AND id = $2`,
		playerID, expect.ID, next.Level, next.Star, next.AttackBonus, next.DefenseBonus, next.HealthBonus,
	); err != nil {
		return model.Player{}, fmt.Errorf("updating pet %s: %w", expect.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Player{}, fmt.Errorf("commit pet growth for player %d: %w", playerID, err)
	}

	slog.Debug("pet committed", "playerID", playerID, "id", expect.ID, "consumed", len(consumed))
	return p.Credit(delta), nil
}

// ReleasePets deletes resting pets and credits the player, in one transaction.
// A missing or deployed pet fails the whole release with ErrNotFound.
func (s *ForgeStore) ReleasePets(ctx context.Context, playerID int64, ids []string, credit model.Wallet) (model.Player, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return model.Player{}, fmt.Errorf("begin release for player %d: %w", playerID, err)
	}
	defer rollback(ctx, tx, "release pets")

	p, err := lockPlayer(ctx, tx, playerID, credit)
	if err != nil {
		return model.Player{}, err
	}
	if err := deletePets(ctx, tx, playerID, ids); err != nil {
		return model.Player{}, err
	}
	if !credit.IsZero() {
		if err := applyWallet(ctx, tx, playerID, credit); err != nil {
			return model.Player{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Player{}, fmt.Errorf("commit release for player %d: %w", playerID, err)
	}
	return p.Credit(credit), nil
}

// deletePets удаляет невыпущенных питомцев; активный считается отсутствующим.
func deletePets(ctx context.Context, q querier, playerID int64, ids []string) error {
	for _, id := range ids {
		tag, err := q.Exec(ctx,
			`DELETE FROM pets WHERE owner_id = $1 AND id = $2 AND NOT active`, playerID, id)
		if err != nil {
			return fmt.Errorf("deleting pet %s: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("deleting pet %s: %w", id, ErrNotFound)
		}
	}
	return nil
}
