package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/xiuxian/internal/model"
)

const petColumns = `id, owner_id, name, rarity, level, star, exp, description, combat_attributes,
	attack_bonus, defense_bonus, health_bonus, active, created_at`

// PetRepository управляет питомцами в БД.
type PetRepository struct {
	pool *pgxpool.Pool
}

// NewPetRepository создаёт новый PetRepository.
func NewPetRepository(pool *pgxpool.Pool) *PetRepository {
	return &PetRepository{pool: pool}
}

func scanPet(row rowScanner) (model.Pet, error) {
	var (
		p      model.Pet
		rarity int16
	)
	err := row.Scan(
		&p.ID, &p.OwnerID, &p.Name, &rarity, &p.Level, &p.Star, &p.Exp, &p.Description,
		&p.CombatAttributes, &p.AttackBonus, &p.DefenseBonus, &p.HealthBonus, &p.Active, &p.CreatedAt,
	)
	if err != nil {
		return model.Pet{}, err
	}
	p.Type = model.ItemTypePet
	p.Rarity = model.Quality(rarity)
	return p, nil
}

func insertPet(ctx context.Context, q querier, p model.Pet) error {
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := q.Exec(ctx,
		`INSERT INTO pets (id, owner_id, name, rarity, level, star, exp, description, combat_attributes,
			attack_bonus, defense_bonus, health_bonus, active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		p.ID, p.OwnerID, p.Name, int16(p.Rarity), max(p.Level, 1), p.Star, p.Exp, p.Description,
		nonNilStats(p.CombatAttributes), p.AttackBonus, p.DefenseBonus, p.HealthBonus, p.Active, createdAt,
	)
	if err != nil {
		return fmt.Errorf("inserting pet %s: %w", p.ID, err)
	}
	return nil
}

// Create inserts a new pet. p.OwnerID must be set.
func (r *PetRepository) Create(ctx context.Context, p model.Pet) error {
	return insertPet(ctx, r.pool, p)
}

// Get returns one pet owned by ownerID.
func (r *PetRepository) Get(ctx context.Context, ownerID int64, id string) (model.Pet, error) {
	p, err := scanPet(r.pool.QueryRow(ctx,
		`SELECT `+petColumns+` FROM pets WHERE owner_id = $1 AND id = $2`, ownerID, id))
	if err != nil {
		return model.Pet{}, fmt.Errorf("loading pet %s: %w", id, notFound(err))
	}
	return p, nil
}

// Active returns the deployed pet of a player.
// Returns nil, nil если питомец не выпущен.
func (r *PetRepository) Active(ctx context.Context, ownerID int64) (*model.Pet, error) {
	p, err := scanPet(r.pool.QueryRow(ctx,
		`SELECT `+petColumns+` FROM pets WHERE owner_id = $1 AND active`, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading active pet of %d: %w", ownerID, err)
	}
	return &p, nil
}

// ListByOwner returns all pets of a player, newest first.
func (r *PetRepository) ListByOwner(ctx context.Context, ownerID int64) ([]model.Pet, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+petColumns+` FROM pets WHERE owner_id = $1 ORDER BY created_at DESC, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying pets for owner %d: %w", ownerID, err)
	}
	defer rows.Close()

	var pets []model.Pet
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning pet row: %w", err)
		}
		pets = append(pets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pet rows: %w", err)
	}
	return pets, nil
}

// Update saves growth fields: level, star, exp and bonuses.
func (r *PetRepository) Update(ctx context.Context, p model.Pet) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE pets SET level = $3, star = $4, exp = $5,
			attack_bonus = $6, defense_bonus = $7, health_bonus = $8
		 WHERE owner_id = $1 AND id = $2`,
		p.OwnerID, p.ID, p.Level, p.Star, p.Exp, p.AttackBonus, p.DefenseBonus, p.HealthBonus,
	)
	if err != nil {
		return fmt.Errorf("updating pet %s: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating pet %s: %w", p.ID, ErrNotFound)
	}
	return nil
}

// Deploy makes a pet the active one, recalling any other.
func (r *PetRepository) Deploy(ctx context.Context, ownerID int64, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin deploy %s: %w", id, err)
	}
	defer rollback(ctx, tx, "deploy pet")

	if _, err := tx.Exec(ctx,
		`UPDATE pets SET active = FALSE WHERE owner_id = $1 AND active`, ownerID,
	); err != nil {
		return fmt.Errorf("recalling pets of %d: %w", ownerID, err)
	}
	tag, err := tx.Exec(ctx,
		`UPDATE pets SET active = TRUE WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return fmt.Errorf("deploying pet %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deploying pet %s: %w", id, ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit deploy %s: %w", id, err)
	}
	return nil
}

// Delete removes a pet.
func (r *PetRepository) Delete(ctx context.Context, ownerID int64, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM pets WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return fmt.Errorf("deleting pet %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deleting pet %s: %w", id, ErrNotFound)
	}
	return nil
}
