package model

import "maps"

// StatName identifies a single numeric attribute.
type StatName string

// Base stats.
const (
	StatAttack  StatName = "attack"
	StatHealth  StatName = "health"
	StatDefense StatName = "defense"
	StatSpeed   StatName = "speed"
)

// Combat trigger rates.
const (
	StatCritRate    StatName = "critRate"
	StatComboRate   StatName = "comboRate"
	StatCounterRate StatName = "counterRate"
	StatStunRate    StatName = "stunRate"
	StatDodgeRate   StatName = "dodgeRate"
	StatVampireRate StatName = "vampireRate"
)

// Resistances, each paired with a trigger rate.
const (
	StatCritResist    StatName = "critResist"
	StatComboResist   StatName = "comboResist"
	StatCounterResist StatName = "counterResist"
	StatStunResist    StatName = "stunResist"
	StatDodgeResist   StatName = "dodgeResist"
	StatVampireResist StatName = "vampireResist"
)

// Special modifiers.
const (
	StatHealBoost         StatName = "healBoost"
	StatCritDamageBoost   StatName = "critDamageBoost"
	StatCritDamageReduce  StatName = "critDamageReduce"
	StatFinalDamageBoost  StatName = "finalDamageBoost"
	StatFinalDamageReduce StatName = "finalDamageReduce"
	StatCombatBoost       StatName = "combatBoost"
	StatResistanceBoost   StatName = "resistanceBoost"
)

// Pool groups stats by the attribute record they live in.
type Pool int

const (
	PoolBase Pool = iota
	PoolCombat
	PoolResistance
	PoolSpecial
)

// Pools lists the pools in budget order.
var Pools = [...]Pool{PoolBase, PoolCombat, PoolResistance, PoolSpecial}

func (p Pool) String() string {
	switch p {
	case PoolBase:
		return "base"
	case PoolCombat:
		return "combat"
	case PoolResistance:
		return "resistance"
	case PoolSpecial:
		return "special"
	}
	return "unknown"
}

// Порядок статов внутри пула фиксирован: от него зависит детерминизм генерации.
var poolStats = map[Pool][]StatName{
	PoolBase:       {StatAttack, StatHealth, StatDefense, StatSpeed},
	PoolCombat:     {StatCritRate, StatComboRate, StatCounterRate, StatStunRate, StatDodgeRate, StatVampireRate},
	PoolResistance: {StatCritResist, StatComboResist, StatCounterResist, StatStunResist, StatDodgeResist, StatVampireResist},
	PoolSpecial: {
		StatHealBoost, StatCritDamageBoost, StatCritDamageReduce,
		StatFinalDamageBoost, StatFinalDamageReduce, StatCombatBoost, StatResistanceBoost,
	},
}

var statPool = func() map[StatName]Pool {
	m := make(map[StatName]Pool, 23)
	for p, names := range poolStats {
		for _, n := range names {
			m[n] = p
		}
	}
	return m
}()

// PoolStats returns a copy of the stat names belonging to pool p, in canonical order.
func PoolStats(p Pool) []StatName {
	src := poolStats[p]
	out := make([]StatName, len(src))
	copy(out, src)
	return out
}

// Pool returns the pool the stat belongs to. ok is false for unknown names.
func (s StatName) Pool() (Pool, bool) {
	p, ok := statPool[s]
	return p, ok
}

// Known reports whether s is one of the 23 recognised stats.
func (s StatName) Known() bool {
	_, ok := statPool[s]
	return ok
}

// IsRate reports whether the stat is a fractional value (anything outside the base pool).
func (s StatName) IsRate() bool {
	p, ok := statPool[s]
	return ok && p != PoolBase
}

// StatBlock is the sparse stat bag carried by loot items.
type StatBlock map[StatName]float64

// Clone returns an independent copy.
func (b StatBlock) Clone() StatBlock {
	if b == nil {
		return nil
	}
	return maps.Clone(b)
}

// Sum adds other into a copy of b.
func (b StatBlock) Sum(other StatBlock) StatBlock {
	out := make(StatBlock, len(b)+len(other))
	maps.Copy(out, b)
	for k, v := range other {
		out[k] += v
	}
	return out
}
