package enchant

import (
	"errors"
	"testing"

	"github.com/udisondev/xiuxian/internal/model"
	"github.com/udisondev/xiuxian/internal/rng"
)

// --- helpers ---

func makeSword(t *testing.T, enhance int) model.Equipment {
	t.Helper()
	return model.Equipment{
		ID:            "sword",
		Name:          "精制法宝",
		Type:          model.ItemTypeEquipment,
		Quality:       model.QualityUncommon,
		Slot:          model.SlotFaqi,
		EnhanceLevel:  enhance,
		RequiredRealm: RequiredRealm(enhance),
		Stats: model.StatBlock{
			model.StatAttack:    100,
			model.StatCritRate:  0.05,
			model.StatComboRate: 0.033,
		},
	}
}

// --- table tests ---

func TestSuccessRate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level int
		want  float64
		realm int
	}{
		{0, 0.5, 1},
		{10, 0.5, 1},
		{11, 0.35, 2},
		{20, 0.35, 2},
		{21, 0.3, 3},
		{45, 0.2, 5},
		{80, 0.05, 8},
		{90, 0.025, 9},
		{100, 0.02, 10},
		{121, 0.005, 13},
		{140, 0.0025, 14},
		{141, 0.001, 15},
		{150, 0.001, 15},
		{-3, 0.5, 1},
	}

	for _, tt := range tests {
		if got := SuccessRate(tt.level); got != tt.want {
			t.Errorf("SuccessRate(%d) = %v; want %v", tt.level, got, tt.want)
		}
		if got := RequiredRealm(tt.level); got != tt.realm {
			t.Errorf("RequiredRealm(%d) = %d; want %d", tt.level, got, tt.realm)
		}
	}
}

func TestCost(t *testing.T) {
	t.Parallel()

	for level, want := range map[int]int{0: 10, 1: 20, 9: 100, 149: 1500} {
		if got := Cost(level); got != want {
			t.Errorf("Cost(%d) = %d; want %d", level, got, want)
		}
	}
}

// --- Validate tests ---

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		enhance int
		stones  int64
		realm   int
		wantErr error
	}{
		{"ok", 0, 10, 1, nil},
		{"max level", MaxLevel, 1_000_000, 15, ErrMaxLevel},
		{"realm too low", 11, 1_000, 1, ErrRealmTooLow},
		{"realm exactly enough", 11, 1_000, 2, nil},
		{"not enough stones", 5, 59, 1, ErrInsufficientStones},
		{"stones exactly enough", 5, 60, 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Validate(makeSword(t, tt.enhance), tt.stones, tt.realm)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v; want %v", err, tt.wantErr)
			}
		})
	}
}

// --- TryEnhance tests ---

func TestTryEnhanceWithRoll_Success(t *testing.T) {
	t.Parallel()

	sword := makeSword(t, 0)
	res := TryEnhanceWithRoll(sword, 0.1)

	if !res.Success {
		t.Fatal("expected success")
	}
	if res.Cost != 10 {
		t.Errorf("Cost = %d; want 10", res.Cost)
	}
	got := res.Equipment
	if got.EnhanceLevel != 1 {
		t.Errorf("EnhanceLevel = %d; want 1", got.EnhanceLevel)
	}
	if got.Stats[model.StatAttack] != 110 {
		t.Errorf("attack = %v; want 110", got.Stats[model.StatAttack])
	}
	if got.Stats[model.StatCritRate] != 0.055 {
		t.Errorf("critRate = %v; want 0.055", got.Stats[model.StatCritRate])
	}
	// ставки не должны обнуляться округлением до целого
	if got.Stats[model.StatComboRate] != 0.036 {
		t.Errorf("comboRate = %v; want 0.036", got.Stats[model.StatComboRate])
	}

	// исходный предмет не изменён
	if sword.EnhanceLevel != 0 || sword.Stats[model.StatAttack] != 100 {
		t.Errorf("input mutated: %+v", sword)
	}
}

func TestTryEnhanceWithRoll_RealmFollowsNewLevel(t *testing.T) {
	t.Parallel()

	res := TryEnhanceWithRoll(makeSword(t, 10), 0)
	if !res.Success {
		t.Fatal("expected success")
	}
	if res.Equipment.EnhanceLevel != 11 {
		t.Errorf("EnhanceLevel = %d; want 11", res.Equipment.EnhanceLevel)
	}
	if res.Equipment.RequiredRealm != 2 {
		t.Errorf("RequiredRealm = %d; want 2", res.Equipment.RequiredRealm)
	}
}

func TestTryEnhanceWithRoll_Failure(t *testing.T) {
	t.Parallel()

	sword := makeSword(t, 3)
	res := TryEnhanceWithRoll(sword, 0.5)

	if res.Success {
		t.Fatal("roll 0.5 must fail at 50% success rate")
	}
	if res.Cost != 40 {
		t.Errorf("Cost = %d; want 40 (charged on failure)", res.Cost)
	}
	if res.Equipment.EnhanceLevel != 3 || res.Equipment.Stats[model.StatAttack] != 100 {
		t.Errorf("failed attempt changed the item: %+v", res.Equipment)
	}
}

func TestTryEnhance_UsesSource(t *testing.T) {
	t.Parallel()

	if !TryEnhance(makeSword(t, 0), rng.Fixed(0)).Success {
		t.Error("roll 0 should succeed")
	}
	if TryEnhance(makeSword(t, 0), rng.Fixed(0.99)).Success {
		t.Error("roll 0.99 should fail")
	}
}
