package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a row does not exist or belongs to another owner.
var ErrNotFound = errors.New("not found")

// DB wraps a pgx connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL and returns a DB handle.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{pool: pool}, nil
}

// Wrap returns a DB over an existing pool. Close closes the pool.
func Wrap(pool *pgxpool.Pool) *DB {
	return &DB{pool: pool}
}

// Close closes the database connection pool.
func (d *DB) Close() {
	d.pool.Close()
}

// Pool returns the underlying pgx pool.
func (d *DB) Pool() *pgxpool.Pool {
	return d.pool
}

// Players returns a PlayerRepository on this pool.
func (d *DB) Players() *PlayerRepository { return NewPlayerRepository(d.pool) }

// Equipment returns an EquipmentRepository on this pool.
func (d *DB) Equipment() *EquipmentRepository { return NewEquipmentRepository(d.pool) }

// Pets returns a PetRepository on this pool.
func (d *DB) Pets() *PetRepository { return NewPetRepository(d.pool) }

// Battles returns a BattleRepository on this pool.
func (d *DB) Battles() *BattleRepository { return NewBattleRepository(d.pool) }

// Gacha returns a GachaStore on this pool.
func (d *DB) Gacha() *GachaStore { return NewGachaStore(d.pool) }

// Forge returns a ForgeStore on this pool.
func (d *DB) Forge() *ForgeStore { return NewForgeStore(d.pool) }

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// notFound maps pgx.ErrNoRows to ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// rollback откатывает транзакцию; после Commit это no-op.
func rollback(ctx context.Context, tx pgx.Tx, what string) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		slog.Error("rollback failed", "op", what, "error", err)
	}
}
