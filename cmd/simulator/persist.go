package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/xiuxian/internal/config"
	"github.com/udisondev/xiuxian/internal/data"
	"github.com/udisondev/xiuxian/internal/db"
	"github.com/udisondev/xiuxian/internal/game/duel"
	"github.com/udisondev/xiuxian/internal/game/gacha"
	"github.com/udisondev/xiuxian/internal/game/loot"
)

// runPersisted creates a fresh player in PostgreSQL and drives the services
// against it, so balances, items and battle history are written for real.
func runPersisted(ctx context.Context, cfg config.Config, mode string, plan Plan) (any, error) {
	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()
	slog.Info("database connected")

	if err := database.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database migrations applied")

	player, gear := plan.cultivator()
	if mode == modeGacha {
		player.SpiritStones = int64(loot.Cost(plan.Count, plan.Wish.Enabled)) * int64(plan.N)
	}
	if err := database.Players().Create(ctx, &player); err != nil {
		return nil, err
	}
	for _, eq := range gear {
		eq.OwnerID = player.ID
		if err := database.Equipment().Create(ctx, eq); err != nil {
			return nil, err
		}
	}
	slog.Info("player created", "playerID", player.ID, "level", player.Level, "gear", len(gear))

	if mode == modeBattle {
		return persistBattles(ctx, database, cfg, plan, player.ID)
	}
	return persistDraws(ctx, database, plan, player.ID)
}

// persistBattles runs sequentially: a player can only be in one battle at a time.
func persistBattles(ctx context.Context, database *db.DB, cfg config.Config, plan Plan, playerID int64) (*BattleSummary, error) {
	svc := duel.NewService(
		database.Players(), database.Equipment(), database.Pets(), database.Battles(),
		duel.WithMinLevel(cfg.Duel.MinLevel),
	)

	m, ok := data.GetMonster(plan.MonsterID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", duel.ErrUnknownMonster, plan.MonsterID)
	}
	sum := &BattleSummary{Monster: m.Name, Realm: data.RealmTitle(max(plan.Level, 1))}

	for range plan.N {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rep, err := svc.PvE(ctx, playerID, plan.MonsterID)
		if err != nil {
			return nil, err
		}
		sum.add(rep.Outcome)
	}

	sum.finish()
	return sum, nil
}

// persistDraws runs draws concurrently; the store serializes balance updates.
func persistDraws(ctx context.Context, database *db.DB, plan Plan, playerID int64) (*DrawSummary, error) {
	svc := gacha.NewService(database.Players(), database.Gacha())
	req := gacha.Request{Kind: plan.Kind, Count: plan.Count, Wish: plan.Wish}

	sum := newDrawSummary(plan)
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(plan.Workers, 1))
	for range plan.N {
		g.Go(func() error {
			rec, err := svc.Draw(ctx, playerID, req)
			if err != nil {
				return err
			}

			mu.Lock()
			sum.add(rec.All(), rec.Cost)
			sum.Salvage += rec.Salvage
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sum.finish()
	return sum, nil
}
