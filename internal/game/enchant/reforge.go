package enchant

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/udisondev/xiuxian/internal/model"
	"github.com/udisondev/xiuxian/internal/rng"
)

// ErrStatCountChanged guards the reforge invariant: the stat count never changes.
var ErrStatCountChanged = errors.New("reforge changed stat count")

// ErrNoStats is returned when reforging an item without stats.
var ErrNoStats = errors.New("item has no stats")

// ReforgeCost is the refinement-stone price of one reforge.
const ReforgeCost = 10

const (
	maxReforgedStats = 3
	swapChance       = 0.3
	maxVariation     = 0.5
)

// Stats a slot may swap into during a reforge.
var reforgePools = map[model.EquipSlot][]model.StatName{
	model.SlotFaqi:    {model.StatAttack, model.StatCritRate, model.StatCritDamageBoost},
	model.SlotGuanjin: {model.StatDefense, model.StatHealth, model.StatStunResist},
	model.SlotDaopao:  {model.StatDefense, model.StatHealth, model.StatFinalDamageReduce},
	model.SlotYunlv:   {model.StatDefense, model.StatSpeed, model.StatDodgeRate},
	model.SlotFabao:   {model.StatAttack, model.StatCritRate, model.StatComboRate},
}

// ReforgePool returns the swap candidates of a slot.
func ReforgePool(slot model.EquipSlot) []model.StatName {
	return slices.Clone(reforgePools[slot])
}

// ReforgeResult is a reforge proposal.
type ReforgeResult struct {
	Cost     int
	OldStats model.StatBlock
	NewStats model.StatBlock
}

// Apply returns eq with the proposed stats. eq itself is not modified.
func (r ReforgeResult) Apply(eq model.Equipment) model.Equipment {
	out := eq.Clone()
	out.Stats = r.NewStats.Clone()
	return out
}

// ValidateReforge checks that the player can pay for a reforge.
func ValidateReforge(eq model.Equipment, refinementStones int64) error {
	if len(eq.Stats) == 0 {
		return ErrNoStats
	}
	if refinementStones < ReforgeCost {
		return fmt.Errorf("%w: need %d refinement stones, have %d", ErrInsufficientStones, ReforgeCost, refinementStones)
	}
	return nil
}

// Reforge re-rolls one to three distinct stats of eq.
//
// Each chosen stat may, with 30% chance, turn into an unused stat of the
// same kind (flat or rate) from the slot's reforge pool. Its value becomes
// original × (1+δ), δ in [−0.5, 0.5), clamped to [0.5, 1.5] × original.
// eq is not modified.
func Reforge(eq model.Equipment, src rng.Source) (ReforgeResult, error) {
	if len(eq.Stats) == 0 {
		return ReforgeResult{}, ErrNoStats
	}

	// Сортируем имена: порядок map недетерминирован.
	names := slices.Sorted(maps.Keys(eq.Stats))
	next := eq.Stats.Clone()

	picks := src.IntN(maxReforgedStats) + 1
	chosen := make([]int, 0, picks)
	for range picks {
		idx := src.IntN(len(names))
		if !slices.Contains(chosen, idx) {
			chosen = append(chosen, idx)
		}
	}

	for _, idx := range chosen {
		orig := names[idx]
		base := eq.Stats[orig]
		stat := orig

		if rng.Chance(src, swapChance) {
			var free []model.StatName
			for _, s := range reforgePools[eq.Slot] {
				if _, used := next[s]; used || slices.Contains(names, s) {
					continue
				}
				// Плоский стат меняется только на плоский, процентный на процентный.
				if s.IsRate() == orig.IsRate() {
					free = append(free, s)
				}
			}
			if len(free) > 0 {
				stat = free[src.IntN(len(free))]
				delete(next, orig)
			}
		}

		delta := rng.Between(src, -maxVariation, maxVariation)
		v := roundStat(stat, base*(1+delta))
		lo := roundStat(stat, base*(1-maxVariation))
		hi := roundStat(stat, base*(1+maxVariation))
		next[stat] = min(max(v, lo), hi)
	}

	if len(next) != len(eq.Stats) {
		return ReforgeResult{}, ErrStatCountChanged
	}
	return ReforgeResult{
		Cost:     ReforgeCost,
		OldStats: eq.Stats.Clone(),
		NewStats: next,
	}, nil
}
