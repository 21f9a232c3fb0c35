package pet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/xiuxian/internal/game/loot"
	"github.com/udisondev/xiuxian/internal/model"
	"github.com/udisondev/xiuxian/internal/rng"
)

func newPet(t *testing.T, id, name string, rarity model.Quality) model.Pet {
	t.Helper()
	p := model.Pet{
		ID:     id,
		Name:   name,
		Type:   model.ItemTypePet,
		Rarity: rarity,
		Level:  1,
		CombatAttributes: model.StatBlock{
			model.StatCritRate: 0.02,
		},
	}
	p.SetBonus(loot.PetBonus(rarity, 0, 1))
	return p
}

func TestUpgrade(t *testing.T) {
	t.Parallel()

	p := newPet(t, "p1", "麒麟", model.QualityLegendary)

	got, err := Upgrade(p, 100, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Level)
	assert.InDelta(t, 0.12+0.012, got.AttackBonus, 1e-9)
	assert.Equal(t, got.AttackBonus, got.DefenseBonus)
	assert.Equal(t, got.AttackBonus, got.HealthBonus)
	assert.Equal(t, 1, p.Level, "input untouched")
}

func TestUpgrade_Errors(t *testing.T) {
	t.Parallel()

	p := newPet(t, "p1", "灰狼", model.QualityCommon)

	_, err := Upgrade(p, 9, 10)
	assert.ErrorIs(t, err, ErrInsufficientEssence)

	_, err = Upgrade(p, 100, 0)
	assert.ErrorIs(t, err, ErrInvalidCost)
}

func TestEvolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		food     model.Pet
		roll     float64
		wantErr  error
		wantStar int
		success  bool
	}{
		{
			name:     "same name always succeeds",
			food:     model.Pet{ID: "f", Name: "应龙", Rarity: model.QualityMythic},
			roll:     0.99,
			wantStar: 1,
			success:  true,
		},
		{
			name:     "other name under 30%",
			food:     model.Pet{ID: "f", Name: "夔牛", Rarity: model.QualityMythic},
			roll:     0.29,
			wantStar: 1,
			success:  true,
		},
		{
			name:     "other name fails",
			food:     model.Pet{ID: "f", Name: "夔牛", Rarity: model.QualityMythic},
			roll:     0.3,
			wantStar: 0,
		},
		{
			name:    "rarity mismatch",
			food:    model.Pet{ID: "f", Name: "应龙", Rarity: model.QualityEpic},
			wantErr: ErrRarityMismatch,
		},
		{
			name:    "same pet",
			food:    model.Pet{ID: "t", Name: "应龙", Rarity: model.QualityMythic},
			wantErr: ErrSamePet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			target := newPet(t, "t", "应龙", model.QualityMythic)
			res, err := Evolve(target, tt.food, rng.Fixed(tt.roll))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.success, res.Success)
			assert.Equal(t, tt.wantStar, res.Pet.Star)
			assert.Equal(t, "f", res.ConsumedID)
			assert.InDelta(t, loot.PetBonus(model.QualityMythic, tt.wantStar, 1), res.Pet.AttackBonus, 1e-9)
			assert.Equal(t, 0, target.Star, "input untouched")
		})
	}
}

func TestEvolve_FifthStarPhaseBonus(t *testing.T) {
	t.Parallel()

	target := newPet(t, "t", "白泽", model.QualityLegendary)
	target.Star = 4
	food := newPet(t, "f", "白泽", model.QualityLegendary)

	res, err := Evolve(target, food, rng.Fixed(0))
	require.NoError(t, err)
	require.True(t, res.Success)

	// 0.12 + 5×0.01 + 1×0.12×0.5
	assert.InDelta(t, 0.23, res.Pet.AttackBonus, 1e-9)
}

func TestReleaseEssence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level, star int
		want        int64
	}{
		{1, 0, 1},
		{0, 0, 1},
		{2, 0, 1},
		{3, 0, 1},
		{4, 0, 2},
		{10, 2, 15},
		{7, 1, 7},
	}
	for _, tt := range tests {
		got := ReleaseEssence(model.Pet{Level: tt.level, Star: tt.star})
		assert.Equal(t, tt.want, got, "level %d star %d", tt.level, tt.star)
	}
}
