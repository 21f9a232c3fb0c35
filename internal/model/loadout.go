package model

import "math"

// ApplyEquipment returns a with the stats of every equipped item added.
// Unequipped items are skipped.
func ApplyEquipment(a Attributes, items []Equipment) Attributes {
	for _, it := range items {
		if !it.Equipped {
			continue
		}
		a = a.Add(it.Stats)
	}
	return a
}

// ApplyPet returns a with the pet's contribution folded in:
// flat combat attributes first, then the percentage bonuses on
// attack, defense and health. Rates and resistances coming from the pet
// are capped at 1. A nil pet returns a unchanged.
func ApplyPet(a Attributes, pet *Pet) Attributes {
	if pet == nil {
		return a
	}
	for name, v := range pet.CombatAttributes {
		p := a.field(name)
		if p == nil {
			continue
		}
		*p += v
		if pool, _ := name.Pool(); pool == PoolCombat || pool == PoolResistance {
			*p = math.Min(*p, 1)
		}
	}
	a.Base.Attack *= 1 + pet.AttackBonus
	a.Base.Defense *= 1 + pet.DefenseBonus
	a.Base.Health *= 1 + pet.HealthBonus
	return a
}

// Loadout computes the effective sheet from a clean base every time:
// base + equipped gear, then the active pet on top.
// None of the inputs are modified.
func Loadout(base Attributes, items []Equipment, pet *Pet) Attributes {
	return ApplyPet(ApplyEquipment(base, items), pet)
}
