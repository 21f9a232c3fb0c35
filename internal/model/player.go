package model

import "errors"

// ErrInsufficientFunds is returned when a balance would go negative.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Player is the persisted progression record of a cultivator.
//
// Attributes holds the clean base sheet (character growth only). Equipment
// and pet contributions are never folded into it; see Loadout.
type Player struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	Level            int        `json:"level"`
	Realm            int        `json:"realm"`
	Cultivation      int64      `json:"cultivation"`
	SpiritStones     int64      `json:"spiritStones"`
	ReinforceStones  int64      `json:"reinforceStones"`
	RefinementStones int64      `json:"refinementStones"`
	PetEssence       int64      `json:"petEssence"`
	Prestige         int64      `json:"prestige"`
	Attributes       Attributes `json:"attributes"`
}

// Wallet is a set of currency amounts. Used both as balance deltas and costs.
type Wallet struct {
	Cultivation      int64 `json:"cultivation,omitempty"`
	SpiritStones     int64 `json:"spiritStones,omitempty"`
	ReinforceStones  int64 `json:"reinforceStones,omitempty"`
	RefinementStones int64 `json:"refinementStones,omitempty"`
	PetEssence       int64 `json:"petEssence,omitempty"`
	Prestige         int64 `json:"prestige,omitempty"`
}

// Add returns the element-wise sum.
func (w Wallet) Add(o Wallet) Wallet {
	return Wallet{
		Cultivation:      w.Cultivation + o.Cultivation,
		SpiritStones:     w.SpiritStones + o.SpiritStones,
		ReinforceStones:  w.ReinforceStones + o.ReinforceStones,
		RefinementStones: w.RefinementStones + o.RefinementStones,
		PetEssence:       w.PetEssence + o.PetEssence,
		Prestige:         w.Prestige + o.Prestige,
	}
}

// Neg returns w with every amount negated. Turns a cost into a delta.
func (w Wallet) Neg() Wallet {
	return Wallet{
		Cultivation:      -w.Cultivation,
		SpiritStones:     -w.SpiritStones,
		ReinforceStones:  -w.ReinforceStones,
		RefinementStones: -w.RefinementStones,
		PetEssence:       -w.PetEssence,
		Prestige:         -w.Prestige,
	}
}

// HasNegative reports whether any amount is below zero.
func (w Wallet) HasNegative() bool {
	return w.Cultivation < 0 || w.SpiritStones < 0 || w.ReinforceStones < 0 ||
		w.RefinementStones < 0 || w.PetEssence < 0 || w.Prestige < 0
}

// IsZero reports whether every amount is zero.
func (w Wallet) IsZero() bool {
	return w == Wallet{}
}

// Credit returns a copy of p with w added to its balances.
func (p Player) Credit(w Wallet) Player {
	p.Cultivation += w.Cultivation
	p.SpiritStones += w.SpiritStones
	p.ReinforceStones += w.ReinforceStones
	p.RefinementStones += w.RefinementStones
	p.PetEssence += w.PetEssence
	p.Prestige += w.Prestige
	return p
}

// Balance returns the player's currencies as a Wallet.
func (p Player) Balance() Wallet {
	return Wallet{
		Cultivation:      p.Cultivation,
		SpiritStones:     p.SpiritStones,
		ReinforceStones:  p.ReinforceStones,
		RefinementStones: p.RefinementStones,
		PetEssence:       p.PetEssence,
		Prestige:         p.Prestige,
	}
}

// CanApply reports whether adding delta keeps every balance non-negative.
func (p Player) CanApply(delta Wallet) bool {
	return !p.Balance().Add(delta).HasNegative()
}

// NewCultivator returns a fresh level-1 player with the starting sheet.
func NewCultivator(name string) Player {
	return Player{
		Name:  name,
		Level: 1,
		Realm: 1,
		Attributes: Attributes{
			Base: BaseAttributes{Attack: 10, Health: 100, Defense: 5, Speed: 10},
		},
	}
}
