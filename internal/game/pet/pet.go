// Package pet implements pet growth: level upgrades paid with essence,
// star evolution by feeding another pet, and release for essence.
//
// The functions return new copies. Service persists them through a Store,
// together with the essence charge and the deletion of consumed pets.
package pet

import (
	"errors"
	"fmt"

	"github.com/udisondev/xiuxian/internal/game/loot"
	"github.com/udisondev/xiuxian/internal/model"
	"github.com/udisondev/xiuxian/internal/rng"
)

var (
	// ErrInsufficientEssence -- у игрока меньше эссенции, чем стоит улучшение.
	ErrInsufficientEssence = errors.New("insufficient pet essence")
	// ErrRarityMismatch -- кормить можно только питомцем той же редкости.
	ErrRarityMismatch = errors.New("food pet rarity mismatch")
	// ErrSamePet -- питомец не может съесть сам себя.
	ErrSamePet = errors.New("pet cannot consume itself")
	// ErrInvalidCost -- стоимость улучшения должна быть положительной.
	ErrInvalidCost = errors.New("upgrade cost must be positive")
)

const (
	sameNameEvolveRate  = 1.0
	otherNameEvolveRate = 0.3
	essencePerRelease   = 0.5
)

// Upgrade raises the pet level by one, paying cost essence.
// Bonuses are recomputed for the new level.
func Upgrade(p model.Pet, essence, cost int64) (model.Pet, error) {
	if cost <= 0 {
		return p, ErrInvalidCost
	}
	if essence < cost {
		return p, fmt.Errorf("%w: need %d, have %d", ErrInsufficientEssence, cost, essence)
	}

	out := p.Clone()
	out.Level = max(out.Level, 1) + 1
	out.SetBonus(loot.PetBonus(out.Rarity, out.Star, out.Level))
	return out, nil
}

// EvolveResult is the outcome of a star evolution.
type EvolveResult struct {
	Success bool
	// Pet is the target after the attempt; unchanged on failure.
	Pet model.Pet
	// ConsumedID is the food pet, consumed whatever the outcome.
	ConsumedID string
}

// EvolveRate returns the success chance of feeding food to target.
func EvolveRate(target, food model.Pet) float64 {
	if target.Name == food.Name {
		return sameNameEvolveRate
	}
	return otherNameEvolveRate
}

// Evolve feeds food to target for one star. Food must share the target's
// rarity. Exactly one value is drawn from src.
func Evolve(target, food model.Pet, src rng.Source) (EvolveResult, error) {
	if target.ID == food.ID {
		return EvolveResult{}, ErrSamePet
	}
	if target.Rarity != food.Rarity {
		return EvolveResult{}, fmt.Errorf("%w: %s vs %s", ErrRarityMismatch, target.Rarity, food.Rarity)
	}

	res := EvolveResult{
		Pet:        target.Clone(),
		ConsumedID: food.ID,
	}
	if !rng.Chance(src, EvolveRate(target, food)) {
		return res, nil
	}

	res.Success = true
	res.Pet.Star++
	res.Pet.SetBonus(loot.PetBonus(res.Pet.Rarity, res.Pet.Star, res.Pet.Level))
	return res, nil
}

// ReleaseEssence returns the essence granted for releasing p:
// ⌊level × (star+1) × 0.5⌋, at least 1.
func ReleaseEssence(p model.Pet) int64 {
	level := max(p.Level, 1)
	star := max(p.Star, 0)
	return max(1, int64(float64(level*(star+1))*essencePerRelease))
}
