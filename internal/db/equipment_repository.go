package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/xiuxian/internal/model"
)

const equipmentColumns = `id, owner_id, name, quality, slot, level_requirement, required_realm,
	enhance_level, stats, equipped, created_at`

// EquipmentRepository управляет экипировкой в БД.
type EquipmentRepository struct {
	pool *pgxpool.Pool
}

// NewEquipmentRepository создаёт новый EquipmentRepository.
func NewEquipmentRepository(pool *pgxpool.Pool) *EquipmentRepository {
	return &EquipmentRepository{pool: pool}
}

// nonNilStats: pgx пишет nil map как SQL NULL, а колонка NOT NULL.
func nonNilStats(b model.StatBlock) model.StatBlock {
	if b == nil {
		return model.StatBlock{}
	}
	return b
}

func scanEquipment(row rowScanner) (model.Equipment, error) {
	var (
		eq      model.Equipment
		quality int16
		slot    string
	)
	err := row.Scan(
		&eq.ID, &eq.OwnerID, &eq.Name, &quality, &slot, &eq.LevelRequirement, &eq.RequiredRealm,
		&eq.EnhanceLevel, &eq.Stats, &eq.Equipped, &eq.CreatedAt,
	)
	if err != nil {
		return model.Equipment{}, err
	}
	eq.Type = model.ItemTypeEquipment
	eq.Quality = model.Quality(quality)
	if eq.Slot, err = model.ParseSlot(slot); err != nil {
		return model.Equipment{}, fmt.Errorf("equipment %s: %w", eq.ID, err)
	}
	return eq, nil
}

func insertEquipment(ctx context.Context, q querier, eq model.Equipment) error {
	createdAt := eq.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := q.Exec(ctx,
		`INSERT INTO equipment (id, owner_id, name, quality, slot, level_requirement, required_realm,
			enhance_level, stats, equipped, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		eq.ID, eq.OwnerID, eq.Name, int16(eq.Quality), string(eq.Slot), eq.LevelRequirement,
		eq.RequiredRealm, eq.EnhanceLevel, nonNilStats(eq.Stats), eq.Equipped, createdAt,
	)
	if err != nil {
		return fmt.Errorf("inserting equipment %s: %w", eq.ID, err)
	}
	return nil
}

// Create inserts a new equipment piece. eq.OwnerID must be set.
func (r *EquipmentRepository) Create(ctx context.Context, eq model.Equipment) error {
	return insertEquipment(ctx, r.pool, eq)
}

// Get returns one piece owned by ownerID.
func (r *EquipmentRepository) Get(ctx context.Context, ownerID int64, id string) (model.Equipment, error) {
	eq, err := scanEquipment(r.pool.QueryRow(ctx,
		`SELECT `+equipmentColumns+` FROM equipment WHERE owner_id = $1 AND id = $2`,
		ownerID, id,
	))
	if err != nil {
		return model.Equipment{}, fmt.Errorf("loading equipment %s: %w", id, notFound(err))
	}
	return eq, nil
}

// ListByOwner returns all equipment of a player, newest first.
func (r *EquipmentRepository) ListByOwner(ctx context.Context, ownerID int64) ([]model.Equipment, error) {
	return r.list(ctx,
		`SELECT `+equipmentColumns+` FROM equipment WHERE owner_id = $1 ORDER BY created_at DESC, id`,
		ownerID)
}

// ListEquipped returns the worn pieces of a player, at most one per slot.
func (r *EquipmentRepository) ListEquipped(ctx context.Context, ownerID int64) ([]model.Equipment, error) {
	return r.list(ctx,
		`SELECT `+equipmentColumns+` FROM equipment WHERE owner_id = $1 AND equipped ORDER BY slot`,
		ownerID)
}

func (r *EquipmentRepository) list(ctx context.Context, query string, ownerID int64) ([]model.Equipment, error) {
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying equipment for owner %d: %w", ownerID, err)
	}
	defer rows.Close()

	// 5 слотов экипировки + запас под инвентарь
	items := make([]model.Equipment, 0, 16)
	for rows.Next() {
		eq, err := scanEquipment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning equipment row: %w", err)
		}
		items = append(items, eq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating equipment rows: %w", err)
	}
	return items, nil
}

// Update saves the mutable part of a piece: enhance level, stats and requirements.
func (r *EquipmentRepository) Update(ctx context.Context, eq model.Equipment) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE equipment SET enhance_level = $3, stats = $4, required_realm = $5, level_requirement = $6
		 WHERE owner_id = $1 AND id = $2`,
		eq.OwnerID, eq.ID, eq.EnhanceLevel, nonNilStats(eq.Stats), eq.RequiredRealm, eq.LevelRequirement,
	)
	if err != nil {
		return fmt.Errorf("updating equipment %s: %w", eq.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating equipment %s: %w", eq.ID, ErrNotFound)
	}
	return nil
}

// Equip wears a piece, taking off whatever occupied its slot.
func (r *EquipmentRepository) Equip(ctx context.Context, ownerID int64, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin equip %s: %w", id, err)
	}
	defer rollback(ctx, tx, "equip")

	var slot string
	err = tx.QueryRow(ctx,
		`SELECT slot FROM equipment WHERE owner_id = $1 AND id = $2 FOR UPDATE`, ownerID, id,
	).Scan(&slot)
	if err != nil {
		return fmt.Errorf("equipping %s: %w", id, notFound(err))
	}

	if _, err := tx.Exec(ctx,
		`UPDATE equipment SET equipped = FALSE WHERE owner_id = $1 AND slot = $2 AND equipped`,
		ownerID, slot,
	); err != nil {
		return fmt.Errorf("unequipping slot %s: %w", slot, err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE equipment SET equipped = TRUE WHERE owner_id = $1 AND id = $2`, ownerID, id,
	); err != nil {
		return fmt.Errorf("equipping %s: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit equip %s: %w", id, err)
	}
	return nil
}

// Unequip takes a piece off.
func (r *EquipmentRepository) Unequip(ctx context.Context, ownerID int64, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE equipment SET equipped = FALSE WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return fmt.Errorf("unequipping %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("unequipping %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes a piece.
func (r *EquipmentRepository) Delete(ctx context.Context, ownerID int64, id string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM equipment WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return fmt.Errorf("deleting equipment %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deleting equipment %s: %w", id, ErrNotFound)
	}
	return nil
}
