package model

import "time"

// Pet is a companion creature obtained from the pet pool.
// At most one pet per player is Active (deployed) at a time.
type Pet struct {
	ID               string    `json:"id"`
	OwnerID          int64     `json:"ownerId,omitempty"`
	Name             string    `json:"name"`
	Type             string    `json:"type"`
	Rarity           Quality   `json:"rarity"`
	Level            int       `json:"level"`
	Star             int       `json:"star"`
	Exp              int       `json:"exp"`
	Description      string    `json:"description"`
	CombatAttributes StatBlock `json:"combatAttributes"`
	AttackBonus      float64   `json:"attackBonus"`
	DefenseBonus     float64   `json:"defenseBonus"`
	HealthBonus      float64   `json:"healthBonus"`
	Active           bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Clone returns a deep copy.
func (p Pet) Clone() Pet {
	p.CombatAttributes = p.CombatAttributes.Clone()
	return p
}

// SetBonus sets all three percentage bonuses to v.
func (p *Pet) SetBonus(v float64) {
	p.AttackBonus = v
	p.DefenseBonus = v
	p.HealthBonus = v
}
