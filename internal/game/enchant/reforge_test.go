package enchant

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/xiuxian/internal/model"
	"github.com/udisondev/xiuxian/internal/rng"
)

func faqi(stats model.StatBlock) model.Equipment {
	return model.Equipment{ID: "f", Slot: model.SlotFaqi, Stats: stats}
}

func TestReforge_Scripted(t *testing.T) {
	t.Parallel()

	eq := faqi(model.StatBlock{model.StatAttack: 100, model.StatHealth: 200})

	// 1 stat; index 1 (health); no swap; delta +0.25
	res, err := Reforge(eq, rng.NewSequence(0, 0.6, 0.9, 0.75))
	require.NoError(t, err)

	assert.Equal(t, ReforgeCost, res.Cost)
	assert.Equal(t, model.StatBlock{model.StatAttack: 100, model.StatHealth: 250}, res.NewStats)
	assert.Equal(t, eq.Stats, res.OldStats)
	assert.Equal(t, 200.0, eq.Stats[model.StatHealth], "input untouched")
}

func TestReforge_SwapsWithinKind(t *testing.T) {
	t.Parallel()

	eq := faqi(model.StatBlock{model.StatCritRate: 0.05, model.StatHealth: 200})

	// 1 stat; index 0 (critRate); swap; first free rate stat; delta 0
	res, err := Reforge(eq, rng.NewSequence(0, 0.1, 0.1, 0, 0.5))
	require.NoError(t, err)

	assert.Equal(t, model.StatBlock{model.StatCritDamageBoost: 0.05, model.StatHealth: 200}, res.NewStats)
}

func TestReforge_Invariants(t *testing.T) {
	t.Parallel()

	eq := model.Equipment{
		Slot: model.SlotYunlv,
		Stats: model.StatBlock{
			model.StatAttack:     80,
			model.StatHealth:     150,
			model.StatCritRate:   0.08,
			model.StatStunResist: 0.04,
		},
	}

	for seed := range uint64(300) {
		res, err := Reforge(eq, rng.New(seed))
		require.NoError(t, err)
		require.Len(t, res.NewStats, len(eq.Stats))

		changed := 0
		for name, v := range res.NewStats {
			old, ok := eq.Stats[name]
			if !ok {
				changed++
				continue
			}
			if v != old {
				changed++
			}
			assert.GreaterOrEqual(t, v, roundStat(name, old*0.5), "seed %d stat %s", seed, name)
			assert.LessOrEqual(t, v, roundStat(name, old*1.5), "seed %d stat %s", seed, name)
		}
		assert.LessOrEqual(t, changed, maxReforgedStats)
	}
}

func TestReforge_Apply(t *testing.T) {
	t.Parallel()

	eq := faqi(model.StatBlock{model.StatAttack: 100})
	res, err := Reforge(eq, rng.New(1))
	require.NoError(t, err)

	got := res.Apply(eq)
	assert.Equal(t, res.NewStats, got.Stats)
	assert.Equal(t, 100.0, eq.Stats[model.StatAttack])
}

func TestValidateReforge(t *testing.T) {
	t.Parallel()

	eq := faqi(model.StatBlock{model.StatAttack: 100})

	assert.NoError(t, ValidateReforge(eq, ReforgeCost))
	assert.True(t, errors.Is(ValidateReforge(eq, ReforgeCost-1), ErrInsufficientStones))
	assert.ErrorIs(t, ValidateReforge(faqi(nil), 100), ErrNoStats)

	_, err := Reforge(faqi(nil), rng.New(1))
	assert.ErrorIs(t, err, ErrNoStats)
}

func TestReforgePool(t *testing.T) {
	t.Parallel()

	for _, slot := range model.Slots {
		assert.Len(t, ReforgePool(slot), 3, slot)
	}
	assert.Empty(t, ReforgePool("ring"))
}
