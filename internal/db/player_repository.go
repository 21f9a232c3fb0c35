package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/xiuxian/internal/model"
)

const playerColumns = `id, name, level, realm, cultivation, spirit_stones, reinforce_stones,
	refinement_stones, pet_essence, prestige, attributes`

// PlayerRepository управляет игроками в БД.
type PlayerRepository struct {
	pool *pgxpool.Pool
}

// NewPlayerRepository создаёт новый PlayerRepository.
func NewPlayerRepository(pool *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{pool: pool}
}

func scanPlayer(row rowScanner) (model.Player, error) {
	var p model.Player
	err := row.Scan(
		&p.ID, &p.Name, &p.Level, &p.Realm, &p.Cultivation, &p.SpiritStones, &p.ReinforceStones,
		&p.RefinementStones, &p.PetEssence, &p.Prestige, &p.Attributes,
	)
	return p, err
}

// Create inserts a new player and sets p.ID.
func (r *PlayerRepository) Create(ctx context.Context, p *model.Player) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO players (name, level, realm, cultivation, spirit_stones, reinforce_stones,
			refinement_stones, pet_essence, prestige, attributes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id`,
		p.Name, max(p.Level, 1), max(p.Realm, 1), p.Cultivation, p.SpiritStones, p.ReinforceStones,
		p.RefinementStones, p.PetEssence, p.Prestige, p.Attributes,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("creating player %q: %w", p.Name, err)
	}
	p.Level = max(p.Level, 1)
	p.Realm = max(p.Realm, 1)
	return nil
}

// Get returns a player by ID.
func (r *PlayerRepository) Get(ctx context.Context, id int64) (model.Player, error) {
	p, err := scanPlayer(r.pool.QueryRow(ctx,
		`SELECT `+playerColumns+` FROM players WHERE id = $1`, id))
	if err != nil {
		return model.Player{}, fmt.Errorf("loading player %d: %w", id, notFound(err))
	}
	return p, nil
}

// ApplyRewards adds delta to the player's balances in a single UPDATE.
// A delta that would make a balance negative fails with model.ErrInsufficientFunds.
func (r *PlayerRepository) ApplyRewards(ctx context.Context, id int64, delta model.Wallet) error {
	if delta.IsZero() {
		return nil
	}
	return applyWallet(ctx, r.pool, id, delta)
}

func applyWallet(ctx context.Context, q querier, id int64, delta model.Wallet) error {
	tag, err := q.Exec(ctx,
		`UPDATE players SET
			cultivation       = cultivation + $2,
			spirit_stones     = spirit_stones + $3,
			reinforce_stones  = reinforce_stones + $4,
			refinement_stones = refinement_stones + $5,
			pet_essence       = pet_essence + $6,
			prestige          = prestige + $7
		 WHERE id = $1
		   AND spirit_stones + $3 >= 0
		   AND reinforce_stones + $4 >= 0
		   AND refinement_stones + $5 >= 0
		   AND pet_essence + $6 >= 0`,
		id, delta.Cultivation, delta.SpiritStones, delta.ReinforceStones,
		delta.RefinementStones, delta.PetEssence, delta.Prestige,
	)
	if err != nil {
		return fmt.Errorf("updating balances of player %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		// Либо игрока нет, либо баланс ушёл бы в минус.
		var exists bool
		err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM players WHERE id = $1)`, id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("checking player %d: %w", id, err)
		}
		if !exists {
			return fmt.Errorf("updating balances of player %d: %w", id, ErrNotFound)
		}
		return fmt.Errorf("updating balances of player %d: %w", id, model.ErrInsufficientFunds)
	}
	return nil
}

// UpdateProgress saves level, realm and base attributes.
func (r *PlayerRepository) UpdateProgress(ctx context.Context, p model.Player) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE players SET level = $2, realm = $3, attributes = $4 WHERE id = $1`,
		p.ID, p.Level, p.Realm, p.Attributes,
	)
	if err != nil {
		return fmt.Errorf("updating player %d: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating player %d: %w", p.ID, ErrNotFound)
	}
	return nil
}
