package model

// BaseAttributes are the flat stats of a participant.
type BaseAttributes struct {
	Attack  float64 `json:"attack" yaml:"attack"`
	Health  float64 `json:"health" yaml:"health"`
	Defense float64 `json:"defense" yaml:"defense"`
	Speed   float64 `json:"speed" yaml:"speed"`
}

// CombatAttributes are trigger probabilities in [0, 1].
type CombatAttributes struct {
	CritRate    float64 `json:"critRate" yaml:"crit_rate"`
	ComboRate   float64 `json:"comboRate" yaml:"combo_rate"`
	CounterRate float64 `json:"counterRate" yaml:"counter_rate"`
	StunRate    float64 `json:"stunRate" yaml:"stun_rate"`
	DodgeRate   float64 `json:"dodgeRate" yaml:"dodge_rate"`
	VampireRate float64 `json:"vampireRate" yaml:"vampire_rate"`
}

// ResistanceAttributes are subtracted from the opponent's matching trigger rate.
type ResistanceAttributes struct {
	CritResist    float64 `json:"critResist" yaml:"crit_resist"`
	ComboResist   float64 `json:"comboResist" yaml:"combo_resist"`
	CounterResist float64 `json:"counterResist" yaml:"counter_resist"`
	StunResist    float64 `json:"stunResist" yaml:"stun_resist"`
	DodgeResist   float64 `json:"dodgeResist" yaml:"dodge_resist"`
	VampireResist float64 `json:"vampireResist" yaml:"vampire_resist"`
}

// SpecialAttributes are damage and scaling modifiers.
type SpecialAttributes struct {
	HealBoost         float64 `json:"healBoost" yaml:"heal_boost"`
	CritDamageBoost   float64 `json:"critDamageBoost" yaml:"crit_damage_boost"`
	CritDamageReduce  float64 `json:"critDamageReduce" yaml:"crit_damage_reduce"`
	FinalDamageBoost  float64 `json:"finalDamageBoost" yaml:"final_damage_boost"`
	FinalDamageReduce float64 `json:"finalDamageReduce" yaml:"final_damage_reduce"`
	CombatBoost       float64 `json:"combatBoost" yaml:"combat_boost"`
	ResistanceBoost   float64 `json:"resistanceBoost" yaml:"resistance_boost"`
}

// Attributes is the full stat sheet of a player or monster.
type Attributes struct {
	Base       BaseAttributes       `json:"base" yaml:"base"`
	Combat     CombatAttributes     `json:"combat" yaml:"combat"`
	Resistance ResistanceAttributes `json:"resistance" yaml:"resistance"`
	Special    SpecialAttributes    `json:"special" yaml:"special"`
}

// field returns a pointer to the named stat, or nil for unknown names.
func (a *Attributes) field(s StatName) *float64 {
	switch s {
	case StatAttack:
		return &a.Base.Attack
	case StatHealth:
		return &a.Base.Health
	case StatDefense:
		return &a.Base.Defense
	case StatSpeed:
		return &a.Base.Speed
	case StatCritRate:
		return &a.Combat.CritRate
	case StatComboRate:
		return &a.Combat.ComboRate
	case StatCounterRate:
		return &a.Combat.CounterRate
	case StatStunRate:
		return &a.Combat.StunRate
	case StatDodgeRate:
		return &a.Combat.DodgeRate
	case StatVampireRate:
		return &a.Combat.VampireRate
	case StatCritResist:
		return &a.Resistance.CritResist
	case StatComboResist:
		return &a.Resistance.ComboResist
	case StatCounterResist:
		return &a.Resistance.CounterResist
	case StatStunResist:
		return &a.Resistance.StunResist
	case StatDodgeResist:
		return &a.Resistance.DodgeResist
	case StatVampireResist:
		return &a.Resistance.VampireResist
	case StatHealBoost:
		return &a.Special.HealBoost
	case StatCritDamageBoost:
		return &a.Special.CritDamageBoost
	case StatCritDamageReduce:
		return &a.Special.CritDamageReduce
	case StatFinalDamageBoost:
		return &a.Special.FinalDamageBoost
	case StatFinalDamageReduce:
		return &a.Special.FinalDamageReduce
	case StatCombatBoost:
		return &a.Special.CombatBoost
	case StatResistanceBoost:
		return &a.Special.ResistanceBoost
	}
	return nil
}

// Get returns the value of stat s (0 for unknown names).
func (a Attributes) Get(s StatName) float64 {
	if p := a.field(s); p != nil {
		return *p
	}
	return 0
}

// With returns a copy of a with stat s set to v. Unknown names are ignored.
func (a Attributes) With(s StatName, v float64) Attributes {
	if p := a.field(s); p != nil {
		*p = v
	}
	return a
}

// Add returns a copy of a with every stat in b added on top.
func (a Attributes) Add(b StatBlock) Attributes {
	for name, v := range b {
		if p := a.field(name); p != nil {
			*p += v
		}
	}
	return a
}

// Stats flattens the sheet into a StatBlock containing all 23 stats.
func (a Attributes) Stats() StatBlock {
	out := make(StatBlock, 23)
	for _, pool := range Pools {
		for _, name := range poolStats[pool] {
			out[name] = a.Get(name)
		}
	}
	return out
}

// AttributesFrom builds a sheet from a sparse block. Unknown names are dropped.
func AttributesFrom(b StatBlock) Attributes {
	return Attributes{}.Add(b)
}
