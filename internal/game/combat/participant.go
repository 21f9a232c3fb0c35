package combat

import (
	"math"
	"slices"

	"github.com/udisondev/xiuxian/internal/model"
)

// Fallback values for stats missing from a snapshot.
const (
	DefaultHealth          = 100
	DefaultAttack          = 10
	DefaultDefense         = 5
	DefaultSpeed           = 10
	DefaultCritRate        = 0.05
	DefaultDodgeRate       = 0.05
	DefaultCritDamageBoost = 0.5
)

// MaxStat caps every stat, health and the damage of one hit.
// Values above it (including +Inf) are clamped so int conversion stays exact.
const MaxStat = math.MaxInt32

// EffectStun is the type tag of the stun debuff.
const EffectStun = "stun"

// StatusEffect is a timed modifier on a participant.
// Value multiplies every affected stat by (1+Value) as a buff or (1-Value) as a debuff.
type StatusEffect struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Duration int              `json:"duration"`
	Value    float64          `json:"value"`
	Affects  []model.StatName `json:"affects,omitempty"`
}

// Snapshot is the stat input for one side of a battle.
// A nil group means the group is missing and falls back to defaults.
type Snapshot struct {
	ID         string
	Name       string
	Level      int
	Monster    bool
	Base       *model.BaseAttributes
	Combat     *model.CombatAttributes
	Resistance *model.ResistanceAttributes
	Special    *model.SpecialAttributes
	Buffs      []StatusEffect
	Debuffs    []StatusEffect
}

// SnapshotOf builds a snapshot with every attribute group present.
func SnapshotOf(id, name string, level int, a model.Attributes) Snapshot {
	return Snapshot{
		ID:         id,
		Name:       name,
		Level:      level,
		Base:       &a.Base,
		Combat:     &a.Combat,
		Resistance: &a.Resistance,
		Special:    &a.Special,
	}
}

// Participant is the mutable per-battle state of one side.
// Created at battle start and discarded when the battle ends.
type Participant struct {
	ID        string
	Name      string
	Monster   bool
	MaxHealth int
	Health    int
	Stunned   bool
	Buffs     []StatusEffect
	Debuffs   []StatusEffect

	stats model.Attributes
}

// NewParticipant builds a participant from a snapshot, defaulting missing
// groups and clamping malformed values instead of rejecting them.
func NewParticipant(s Snapshot) *Participant {
	var a model.Attributes

	if s.Base != nil {
		a.Base = *s.Base
	}
	// Нулевое или отрицательное здоровье/атака невалидны: подставляем дефолт.
	if s.Base == nil || a.Base.Health <= 0 {
		a.Base.Health = DefaultHealth
	}
	if s.Base == nil || a.Base.Attack <= 0 {
		a.Base.Attack = DefaultAttack
	}
	if s.Base == nil {
		a.Base.Defense = DefaultDefense
		a.Base.Speed = DefaultSpeed
	}

	if s.Combat != nil {
		a.Combat = *s.Combat
	} else {
		a.Combat.CritRate = DefaultCritRate
		a.Combat.DodgeRate = DefaultDodgeRate
	}
	if s.Resistance != nil {
		a.Resistance = *s.Resistance
	}
	if s.Special != nil {
		a.Special = *s.Special
	} else {
		a.Special.CritDamageBoost = DefaultCritDamageBoost
	}

	for _, pool := range model.Pools {
		for _, name := range model.PoolStats(pool) {
			switch v := a.Get(name); {
			case v < 0 || math.IsNaN(v):
				a = a.With(name, 0)
			case v > MaxStat:
				a = a.With(name, MaxStat)
			}
		}
	}

	hp := int(math.Floor(a.Base.Health))
	if hp < 1 {
		hp = 1
	}

	p := &Participant{
		ID:        s.ID,
		Name:      s.Name,
		Monster:   s.Monster,
		MaxHealth: hp,
		Health:    hp,
		Buffs:     slices.Clone(s.Buffs),
		Debuffs:   slices.Clone(s.Debuffs),
		stats:     a,
	}
	p.Stunned = p.hasStun()
	return p
}

// Stat returns the raw stat value before status effects.
func (p *Participant) Stat(name model.StatName) float64 {
	return p.stats.Get(name)
}

// Effective returns the stat adjusted by active buffs and debuffs,
// then scaled by combatBoost (rates) or resistanceBoost (resists).
// The result is within [0, MaxStat].
func (p *Participant) Effective(name model.StatName) float64 {
	v := p.stats.Get(name)
	for _, b := range p.Buffs {
		if slices.Contains(b.Affects, name) {
			v *= 1 + b.Value
		}
	}
	for _, d := range p.Debuffs {
		if slices.Contains(d.Affects, name) {
			v *= 1 - d.Value
		}
	}
	switch pool, _ := name.Pool(); pool {
	case model.PoolCombat:
		v *= 1 + p.stats.Special.CombatBoost
	case model.PoolResistance:
		v *= 1 + p.stats.Special.ResistanceBoost
	}
	if math.IsNaN(v) {
		return 0
	}
	return min(max(v, 0), MaxStat)
}

// IsAlive reports whether health is above zero.
func (p *Participant) IsAlive() bool {
	return p.Health > 0
}

// TakeDamage subtracts n from health, flooring at 0. Returns the health lost.
func (p *Participant) TakeDamage(n int) int {
	if n <= 0 {
		return 0
	}
	before := p.Health
	p.Health = max(p.Health-n, 0)
	return before - p.Health
}

// Heal adds n to health, capped at MaxHealth. Returns the health gained.
func (p *Participant) Heal(n int) int {
	if n <= 0 {
		return 0
	}
	before := p.Health
	p.Health = min(p.Health+n, p.MaxHealth)
	return p.Health - before
}

// AddBuff attaches a buff.
func (p *Participant) AddBuff(e StatusEffect) {
	p.Buffs = append(p.Buffs, e)
}

// AddDebuff attaches a debuff. A stun debuff also sets Stunned.
func (p *Participant) AddDebuff(e StatusEffect) {
	p.Debuffs = append(p.Debuffs, e)
	if e.Type == EffectStun {
		p.Stunned = true
	}
}

// TickEffects decrements every effect once, drops the expired ones and
// clears Stunned when no stun debuff remains.
func (p *Participant) TickEffects() {
	p.Buffs = tick(p.Buffs)
	p.Debuffs = tick(p.Debuffs)
	if p.Stunned && !p.hasStun() {
		p.Stunned = false
	}
}

func (p *Participant) hasStun() bool {
	return slices.ContainsFunc(p.Debuffs, func(e StatusEffect) bool { return e.Type == EffectStun })
}

func tick(effects []StatusEffect) []StatusEffect {
	out := effects[:0]
	for _, e := range effects {
		e.Duration--
		if e.Duration > 0 {
			out = append(out, e)
		}
	}
	return out
}
