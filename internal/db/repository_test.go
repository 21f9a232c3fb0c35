package db_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/xiuxian/internal/db"
	"github.com/udisondev/xiuxian/internal/game/combat"
	"github.com/udisondev/xiuxian/internal/game/loot"
	"github.com/udisondev/xiuxian/internal/model"
	"github.com/udisondev/xiuxian/internal/rng"
	"github.com/udisondev/xiuxian/internal/testutil"
)

// Каждый тест получает свой контейнер, как в testutil.SetupTestDB.
func setupDB(t *testing.T) *db.DB {
	t.Helper()
	return db.Wrap(testutil.SetupTestDB(t))
}

func createPlayer(t *testing.T, d *db.DB, name string, stones int64) model.Player {
	t.Helper()
	p := testutil.NewPlayer(name, 10, stones)
	require.NoError(t, d.Players().Create(context.Background(), &p))
	require.NotZero(t, p.ID)
	return p
}

func TestPlayerRepository(t *testing.T) {
	d := setupDB(t)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)

	p := createPlayer(t, d, "韩立", 500)

	got, err := d.Players().Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	require.NoError(t, d.Players().ApplyRewards(ctx, p.ID, model.Wallet{Cultivation: 30, SpiritStones: 10}))
	got, err = d.Players().Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(30), got.Cultivation)
	assert.Equal(t, int64(510), got.SpiritStones)

	err = d.Players().ApplyRewards(ctx, p.ID, model.Wallet{SpiritStones: -1000})
	assert.ErrorIs(t, err, model.ErrInsufficientFunds)

	_, err = d.Players().Get(ctx, 999_999)
	assert.ErrorIs(t, err, db.ErrNotFound)
	assert.ErrorIs(t, d.Players().ApplyRewards(ctx, 999_999, model.Wallet{Prestige: 1}), db.ErrNotFound)

	got.Level = 11
	got.Attributes.Base.Attack = 123
	require.NoError(t, d.Players().UpdateProgress(ctx, got))
	again, err := d.Players().Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 11, again.Level)
	assert.Equal(t, 123.0, again.Attributes.Base.Attack)
}

func TestEquipmentRepository(t *testing.T) {
	d := setupDB(t)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)
	repo := d.Equipment()

	owner := createPlayer(t, d, "南宫婉", 0)
	gen := loot.NewGenerator(rng.New(7), loot.WithIDFunc(testutil.SeqIDs("eq")), loot.WithClock(func() time.Time { return testutil.FixedTime }))

	var ids []string
	for range 3 {
		eq := gen.Equipment(10, loot.WishBias{})
		eq.OwnerID = owner.ID
		eq.Slot = model.SlotFaqi
		require.NoError(t, repo.Create(ctx, eq))
		ids = append(ids, eq.ID)
	}

	all, err := repo.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	one, err := repo.Get(ctx, owner.ID, ids[0])
	require.NoError(t, err)
	assert.Equal(t, model.ItemTypeEquipment, one.Type)
	assert.NotEmpty(t, one.Stats)
	assert.True(t, one.CreatedAt.Equal(testutil.FixedTime))

	// В слоте может быть надет только один предмет.
	require.NoError(t, repo.Equip(ctx, owner.ID, ids[0]))
	require.NoError(t, repo.Equip(ctx, owner.ID, ids[1]))
	worn, err := repo.ListEquipped(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, worn, 1)
	assert.Equal(t, ids[1], worn[0].ID)

	one.EnhanceLevel = 5
	one.Stats = model.StatBlock{model.StatAttack: 999}
	require.NoError(t, repo.Update(ctx, one))
	updated, err := repo.Get(ctx, owner.ID, one.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.EnhanceLevel)
	assert.Equal(t, model.StatBlock{model.StatAttack: 999}, updated.Stats)

	require.NoError(t, repo.Unequip(ctx, owner.ID, ids[1]))
	require.NoError(t, repo.Delete(ctx, owner.ID, ids[2]))
	assert.ErrorIs(t, repo.Delete(ctx, owner.ID, ids[2]), db.ErrNotFound)

	// Чужой предмет не виден.
	stranger := createPlayer(t, d, "厉飞雨", 0)
	_, err = repo.Get(ctx, stranger.ID, ids[0])
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestPetRepository(t *testing.T) {
	d := setupDB(t)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)
	repo := d.Pets()

	owner := createPlayer(t, d, "银月", 0)
	gen := loot.NewGenerator(rng.New(3), loot.WithIDFunc(testutil.SeqIDs("pet")))

	first := gen.Pet(loot.WishBias{})
	first.OwnerID = owner.ID
	second := gen.Pet(loot.WishBias{})
	second.OwnerID = owner.ID
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	active, err := repo.Active(ctx, owner.ID)
	require.NoError(t, err)
	assert.Nil(t, active)

	require.NoError(t, repo.Deploy(ctx, owner.ID, first.ID))
	require.NoError(t, repo.Deploy(ctx, owner.ID, second.ID))
	active, err = repo.Active(ctx, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, second.ID, active.ID)
	assert.Equal(t, second.Rarity, active.Rarity)
	assert.Equal(t, second.CombatAttributes, active.CombatAttributes)

	second.Level = 3
	second.Star = 1
	second.SetBonus(loot.PetBonus(second.Rarity, 1, 3))
	require.NoError(t, repo.Update(ctx, second))
	got, err := repo.Get(ctx, owner.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Level)
	assert.InDelta(t, second.AttackBonus, got.AttackBonus, 1e-12)

	pets, err := repo.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, pets, 2)

	require.NoError(t, repo.Delete(ctx, owner.ID, first.ID))
	assert.ErrorIs(t, repo.Deploy(ctx, owner.ID, first.ID), db.ErrNotFound)
}

func TestBattleRepository(t *testing.T) {
	d := setupDB(t)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)
	repo := d.Battles()

	p := createPlayer(t, d, "墨大夫", 0)

	outcome := combat.Outcome{
		Result: combat.ResultVictory,
		Rounds: 4,
		Logs:   []combat.LogEntry{{Type: combat.LogInfo, Message: "战斗开始！", Turn: 0}},
		Rewards: []combat.Reward{
			{Kind: combat.RewardCultivation, Amount: 10},
		},
	}
	for _, o := range []combat.Outcome{outcome, {Result: combat.ResultDefeat, Rounds: 2}} {
		_, err := repo.Record(ctx, combat.NewRecord(p.ID, combat.KindPvE, "赤焰虎", o))
		require.NoError(t, err)
	}

	recs, err := repo.ListByPlayer(ctx, p.ID, 0)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	// newest first
	assert.Equal(t, combat.ResultDefeat, recs[0].Result)
	assert.Empty(t, recs[0].Rewards)
	assert.Equal(t, "pve", recs[1].Kind)
	assert.Equal(t, outcome.Logs, recs[1].Logs)
	assert.Equal(t, outcome.Rewards, recs[1].Rewards)

	limited, err := repo.ListByPlayer(ctx, p.ID, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestGachaStore_CommitDraw(t *testing.T) {
	d := setupDB(t)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)
	store := d.Gacha()

	p := createPlayer(t, d, "紫灵", 1000)
	gen := loot.NewGenerator(rng.New(11), loot.WithIDFunc(testutil.SeqIDs("draw")))

	var items []loot.Item
	for range 10 {
		it, err := gen.Generate(loot.KindEquipment, p.Level, loot.WishBias{})
		require.NoError(t, err)
		items = append(items, it)
	}

	updated, err := store.CommitDraw(ctx, p.ID, model.Wallet{SpiritStones: -1000}, items)
	require.NoError(t, err)
	assert.Zero(t, updated.SpiritStones)

	owned, err := d.Equipment().ListByOwner(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, owned, 10)

	// Баланс пуст: вся транзакция откатывается.
	more, err := gen.Generate(loot.KindPet, p.Level, loot.WishBias{})
	require.NoError(t, err)
	_, err = store.CommitDraw(ctx, p.ID, model.Wallet{SpiritStones: -100}, []loot.Item{more})
	assert.ErrorIs(t, err, model.ErrInsufficientFunds)

	pets, err := d.Pets().ListByOwner(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, pets)

	// Утилизация: удаляет предметы и начисляет камни усиления.
	after, err := store.Discard(ctx, p.ID, items[:2], model.Wallet{ReinforceStones: 7})
	require.NoError(t, err)
	assert.Equal(t, int64(7), after.ReinforceStones)

	owned, err = d.Equipment().ListByOwner(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, owned, 8)

	_, err = store.Discard(ctx, p.ID, items[:1], model.Wallet{ReinforceStones: 1})
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestGachaStore_ConcurrentDrawsNeverOverspend(t *testing.T) {
	d := setupDB(t)
	ctx := testutil.ContextWithTimeout(t, 60*time.Second)
	store := d.Gacha()

	p := createPlayer(t, d, "元瑶", 500)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			gen := loot.NewGenerator(rng.New(uint64(i)))
			it, err := gen.Generate(loot.KindPet, 1, loot.WishBias{})
			if err != nil {
				return
			}
			if _, err := store.CommitDraw(ctx, p.ID, model.Wallet{SpiritStones: -100}, []loot.Item{it}); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, ok)
	got, err := d.Players().Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, got.SpiritStones)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)

	// SetupTestDB уже применил миграции: повторный прогон ничего не меняет.
	require.NoError(t, db.RunMigrations(ctx, pool.Config().ConnString()))

	var tables int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT count(*) FROM information_schema.tables
		 WHERE table_schema = 'public' AND table_name IN ('players', 'equipment', 'pets', 'battle_records')`,
	).Scan(&tables))
	assert.Equal(t, 4, tables)
}
