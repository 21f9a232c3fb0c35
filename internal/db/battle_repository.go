package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/xiuxian/internal/game/combat"
)

// DefaultHistoryLimit caps ListByPlayer when limit <= 0.
const DefaultHistoryLimit = 20

// BattleRepository хранит историю боёв.
type BattleRepository struct {
	pool *pgxpool.Pool
}

// NewBattleRepository создаёт новый BattleRepository.
func NewBattleRepository(pool *pgxpool.Pool) *BattleRepository {
	return &BattleRepository{pool: pool}
}

// Record stores a battle and returns its ID.
func (r *BattleRepository) Record(ctx context.Context, rec combat.Record) (int64, error) {
	// nil slices ушли бы в БД как NULL
	rewards := rec.Rewards
	if rewards == nil {
		rewards = []combat.Reward{}
	}
	logs := rec.Logs
	if logs == nil {
		logs = []combat.LogEntry{}
	}

	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO battle_records (player_id, kind, opponent_name, result, rounds, rewards, logs)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		rec.PlayerID, rec.Kind, rec.OpponentName, string(rec.Result), rec.Rounds, rewards, logs,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("recording battle of player %d: %w", rec.PlayerID, err)
	}
	return id, nil
}

// ListByPlayer returns the latest battles of a player, newest first.
func (r *BattleRepository) ListByPlayer(ctx context.Context, playerID int64, limit int) ([]combat.Record, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, player_id, kind, opponent_name, result, rounds, rewards, logs, created_at
		 FROM battle_records
		 WHERE player_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		playerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying battles of player %d: %w", playerID, err)
	}
	defer rows.Close()

	records := make([]combat.Record, 0, limit)
	for rows.Next() {
		var (
			rec    combat.Record
			result string
		)
		if err := rows.Scan(
			&rec.ID, &rec.PlayerID, &rec.Kind, &rec.OpponentName, &result, &rec.Rounds,
			&rec.Rewards, &rec.Logs, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning battle row: %w", err)
		}
		rec.Result = combat.Result(result)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating battle rows: %w", err)
	}
	return records, nil
}
