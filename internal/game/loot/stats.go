package loot

import (
	"math"

	"github.com/udisondev/xiuxian/internal/model"
	"github.com/udisondev/xiuxian/internal/rng"
)

// Budget is the exact number of distinct stats drawn from each pool.
type Budget struct {
	Base       int
	Combat     int
	Resistance int
	Special    int
}

// Count returns the budget for pool p.
func (b Budget) Count(p model.Pool) int {
	switch p {
	case model.PoolBase:
		return b.Base
	case model.PoolCombat:
		return b.Combat
	case model.PoolResistance:
		return b.Resistance
	case model.PoolSpecial:
		return b.Special
	}
	return 0
}

// Total returns the number of stats an item of this budget carries.
func (b Budget) Total() int {
	return b.Base + b.Combat + b.Resistance + b.Special
}

var budgets = [model.QualityCount]Budget{
	model.QualityCommon:    {Base: 1},
	model.QualityUncommon:  {Base: 2},
	model.QualityRare:      {Base: 3},
	model.QualityEpic:      {Base: 4, Combat: 1},
	model.QualityLegendary: {Base: 4, Combat: 6, Resistance: 6},
	model.QualityMythic:    {Base: 4, Combat: 6, Resistance: 6, Special: 7},
}

// BudgetFor returns the attribute budget of a tier. Same for equipment and pets.
func BudgetFor(q model.Quality) Budget {
	if !q.Valid() {
		return Budget{}
	}
	return budgets[q]
}

// Множитель базовых статов по качеству.
var qualityMultiplier = [model.QualityCount]float64{1.0, 1.2, 1.5, 2.0, 2.5, 3.0}

// QualityMultiplier returns the base-stat scale of a tier (1.0 for common up to 3.0 for mythic).
func QualityMultiplier(q model.Quality) float64 {
	if !q.Valid() {
		return 1
	}
	return qualityMultiplier[q]
}

type valueRange struct{ min, max float64 }

var baseRanges = map[model.StatName]valueRange{
	model.StatAttack:  {30, 100},
	model.StatHealth:  {60, 200},
	model.StatDefense: {15, 50},
	model.StatSpeed:   {5, 20},
}

// Диапазоны процентных статов не зависят от качества.
var poolRanges = map[model.Pool]valueRange{
	model.PoolCombat:     {0.01, 0.10},
	model.PoolResistance: {0.01, 0.08},
	model.PoolSpecial:    {0.005, 0.05},
}

// rollValue draws the value of one stat for an item of tier q.
// Base stats are scaled by the tier multiplier and floored;
// rates are rounded to three decimals.
func rollValue(src rng.Source, q model.Quality, stat model.StatName) float64 {
	pool, _ := stat.Pool()
	if pool == model.PoolBase {
		r := baseRanges[stat]
		return math.Floor(rng.Between(src, r.min, r.max) * QualityMultiplier(q))
	}
	r := poolRanges[pool]
	return round(rng.Between(src, r.min, r.max), 3)
}

// rollStats draws exactly the budgeted number of distinct stats from each pool.
func rollStats(src rng.Source, q model.Quality) model.StatBlock {
	b := BudgetFor(q)
	out := make(model.StatBlock, b.Total())
	for _, pool := range model.Pools {
		for _, stat := range pick(src, model.PoolStats(pool), b.Count(pool)) {
			out[stat] = rollValue(src, q, stat)
		}
	}
	return out
}

// pick selects n distinct elements with a partial Fisher-Yates shuffle.
// items is shuffled in place; n is clamped to len(items).
func pick[T any](src rng.Source, items []T, n int) []T {
	n = min(max(n, 0), len(items))
	for i := range n {
		j := i + src.IntN(len(items)-i)
		items[i], items[j] = items[j], items[i]
	}
	return items[:n]
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
