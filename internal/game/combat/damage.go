package combat

import (
	"math"

	"github.com/udisondev/xiuxian/internal/model"
	"github.com/udisondev/xiuxian/internal/rng"
)

// Multipliers applied to the damage of the triggering hit.
const (
	critBaseMultiplier = 1.5
	lifestealRatio     = 0.3
	comboRatio         = 0.5
	counterRatio       = 0.4
)

// defenseScale is the constant in the mitigation curve def/(def+defenseScale).
const defenseScale = 100

// CalcDamage computes the damage of one hit.
//
// Formula:
//
//	base = attack × (1 − def/(def+100))
//	crit: base ×= 1.5 + critDamageBoost − critDamageReduce
//	base ×= 1 + finalDamageBoost − finalDamageReduce
//	damage = clamp(⌊base⌋, 1, MaxStat)
//
// The result is always in [1, MaxStat].
func CalcDamage(attacker, defender *Participant, crit bool) int {
	atk := attacker.Effective(model.StatAttack)
	def := defender.Effective(model.StatDefense)

	dmg := atk * (1 - def/(def+defenseScale))
	if crit {
		dmg *= critBaseMultiplier +
			attacker.Effective(model.StatCritDamageBoost) -
			defender.Effective(model.StatCritDamageReduce)
	}
	dmg *= 1 + attacker.Effective(model.StatFinalDamageBoost) - defender.Effective(model.StatFinalDamageReduce)

	switch {
	case math.IsNaN(dmg) || dmg < 1:
		return 1
	case dmg > MaxStat:
		return MaxStat
	}
	return int(math.Floor(dmg))
}

// triggerChance is the attacker-side rate minus the defender-side resist, floored at 0.
func triggerChance(rate float64, resist float64) float64 {
	return math.Max(rate-resist, 0)
}

// roll consumes one value from src and reports whether the trigger fires.
func roll(src rng.Source, rate, resist float64) bool {
	return rng.Chance(src, triggerChance(rate, resist))
}
