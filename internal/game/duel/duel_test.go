package duel

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/xiuxian/internal/data"
	"github.com/udisondev/xiuxian/internal/db"
	"github.com/udisondev/xiuxian/internal/game/combat"
	"github.com/udisondev/xiuxian/internal/model"
	"github.com/udisondev/xiuxian/internal/rng"
	"github.com/udisondev/xiuxian/internal/testutil"
)

var tiger = data.Monster{
	ID:         1,
	Name:       "赤焰虎",
	Difficulty: data.DifficultyNormal,
	Level:      1,
	Attributes: model.Attributes{
		Base:   model.BaseAttributes{Attack: 90, Health: 900, Defense: 45, Speed: 90},
		Combat: model.CombatAttributes{CritRate: 0.1, DodgeRate: 0.05},
	},
}

func bestiary(id int) (data.Monster, bool) {
	if id == tiger.ID {
		return tiger, true
	}
	return data.Monster{}, false
}

// 0.99: ни один шанс не срабатывает, дополнительные награды не выпадают.
func newService(t *testing.T, store *testutil.MemStore) *Service {
	t.Helper()
	return NewService(store, store, store, store,
		WithBestiary(bestiary),
		WithSourceFunc(func() rng.Source { return rng.Fixed(0.99) }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func strong(name string, level int) model.Player {
	p := testutil.NewPlayer(name, level, 0)
	p.Attributes.Base = model.BaseAttributes{Attack: 1e6, Health: 1e6, Defense: 100, Speed: 1000}
	return p
}

func weak(name string, level int) model.Player {
	p := testutil.NewPlayer(name, level, 0)
	p.Attributes.Base = model.BaseAttributes{Attack: 1, Health: 1, Defense: 0, Speed: 1}
	return p
}

func TestPvE_Victory(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemStore()
	p := store.AddPlayer(strong("韩立", 10))
	svc := newService(t, store)

	rep, err := svc.PvE(context.Background(), p.ID, tiger.ID)
	require.NoError(t, err)

	assert.Equal(t, combat.ResultVictory, rep.Outcome.Result)
	assert.Equal(t, 1, rep.Outcome.Rounds)
	assert.Equal(t, "赤焰虎", rep.Opponent)
	assert.Equal(t, model.Wallet{Cultivation: 100, SpiritStones: 10}, rep.Credited)
	assert.Equal(t, []string{"修为 100", "灵石 10"}, rep.Outcome.RewardDescriptions())

	after := store.Player(p.ID)
	assert.Equal(t, int64(100), after.Cultivation)
	assert.Equal(t, int64(10), after.SpiritStones)

	battles := store.Battles()
	require.Len(t, battles, 1)
	assert.Equal(t, rep.BattleID, battles[0].ID)
	assert.Equal(t, "pve", battles[0].Kind)
	assert.Equal(t, "赤焰虎", battles[0].OpponentName)
	assert.Equal(t, rep.Outcome.Logs, battles[0].Logs)

	assert.False(t, svc.Manager().InBattle(p.ID))
}

func TestPvE_DefeatPaysNothing(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemStore()
	p := store.AddPlayer(weak("凡人", 10))
	svc := newService(t, store)

	rep, err := svc.PvE(context.Background(), p.ID, tiger.ID)
	require.NoError(t, err)

	assert.Equal(t, combat.ResultDefeat, rep.Outcome.Result)
	assert.True(t, rep.Credited.IsZero())
	assert.Empty(t, rep.Outcome.Rewards)
	assert.Equal(t, p, store.Player(p.ID))
	assert.Len(t, store.Battles(), 1, "defeats are recorded too")
}

func TestPvE_LoadoutCounts(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemStore()
	p := store.AddPlayer(weak("借宝", 10))
	store.AddEquipment(model.Equipment{
		ID: "sword", OwnerID: p.ID, Slot: model.SlotFaqi, Equipped: true,
		Stats: model.StatBlock{model.StatAttack: 1e6, model.StatSpeed: 1000, model.StatHealth: 1e6},
	})
	store.AddEquipment(model.Equipment{
		ID: "bag", OwnerID: p.ID, Slot: model.SlotFabao, Equipped: false,
		Stats: model.StatBlock{model.StatAttack: -1e9},
	})
	svc := newService(t, store)

	rep, err := svc.PvE(context.Background(), p.ID, tiger.ID)
	require.NoError(t, err)
	assert.Equal(t, combat.ResultVictory, rep.Outcome.Result)
}

func TestPvE_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		level   int
		monster int
		player  int64
		wantErr error
	}{
		{"level too low", 6, tiger.ID, 0, ErrLevelTooLow},
		{"unknown monster", 10, 42, 0, ErrUnknownMonster},
		{"unknown player", 10, tiger.ID, 999, db.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := testutil.NewMemStore()
			p := store.AddPlayer(strong("新人", tt.level))
			id := p.ID
			if tt.player != 0 {
				id = tt.player
			}

			_, err := newService(t, store).PvE(context.Background(), id, tt.monster)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, store.Battles())
			assert.Equal(t, p, store.Player(p.ID))
		})
	}
}

func TestPvE_MinLevelOption(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemStore()
	p := store.AddPlayer(strong("新人", 1))
	svc := NewService(store, store, store, store,
		WithBestiary(bestiary),
		WithMinLevel(1),
		WithSourceFunc(func() rng.Source { return rng.Fixed(0.99) }),
	)

	_, err := svc.PvE(context.Background(), p.ID, tiger.ID)
	assert.NoError(t, err)
}

func TestPvE_StoreError(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemStore()
	p := store.AddPlayer(strong("韩立", 10))
	store.Err = testutil.ErrSimulated

	_, err := newService(t, store).PvE(context.Background(), p.ID, tiger.ID)
	assert.ErrorIs(t, err, testutil.ErrSimulated)
}

func TestPvE_OneBattleAtATime(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemStore()
	p := store.AddPlayer(strong("韩立", 10))
	svc := newService(t, store)

	require.NoError(t, svc.Manager().Enter(p.ID, "someone"))
	_, err := svc.PvE(context.Background(), p.ID, tiger.ID)
	assert.ErrorIs(t, err, ErrInBattle)

	svc.Manager().Leave(p.ID)
	_, err = svc.PvE(context.Background(), p.ID, tiger.ID)
	assert.NoError(t, err)
}

func TestPvP(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemStore()
	me := store.AddPlayer(strong("韩立", 10))
	foe := store.AddPlayer(weak("墨居仁", 20))
	svc := newService(t, store)

	rep, err := svc.PvP(context.Background(), me.ID, foe.ID)
	require.NoError(t, err)

	assert.Equal(t, combat.ResultVictory, rep.Outcome.Result)
	assert.Equal(t, combat.KindPvP, rep.Kind)
	// награда считается от уровня соперника
	assert.Equal(t, model.Wallet{Prestige: 100, SpiritStones: 60}, rep.Credited)
	assert.Equal(t, foe, store.Player(foe.ID), "opponent untouched")
	assert.Equal(t, "pvp", store.Battles()[0].Kind)
}

func TestPvP_Errors(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemStore()
	me := store.AddPlayer(strong("韩立", 10))
	svc := newService(t, store)

	_, err := svc.PvP(context.Background(), me.ID, me.ID)
	assert.ErrorIs(t, err, ErrSelfDuel)

	_, err = svc.PvP(context.Background(), me.ID, 12345)
	assert.ErrorIs(t, err, db.ErrNotFound)

	low := store.AddPlayer(strong("新人", 3))
	_, err = svc.PvP(context.Background(), low.ID, me.ID)
	assert.ErrorIs(t, err, ErrLevelTooLow)
}
