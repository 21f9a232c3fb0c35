// Package enchant implements equipment enhancement and reforging.
//
// Enhance flow:
//  1. Caller loads the item and the player's realm and reinforcement stones
//  2. Validate checks level cap, realm requirement and stone balance
//  3. TryEnhance rolls and returns the outcome as a new copy of the item
//  4. Cost stones are charged on failure too; the copy replaces the item
//
// Reforge re-rolls one to three stats of an item. The result is a proposal:
// the player decides whether to keep it.
//
// Service runs both flows against a Store that commits the charge and the
// item change in one transaction.
package enchant

import (
	"errors"
	"fmt"
	"math"

	"github.com/udisondev/xiuxian/internal/model"
	"github.com/udisondev/xiuxian/internal/rng"
)

var (
	// ErrMaxLevel -- предмет уже на максимальном уровне усиления.
	ErrMaxLevel = errors.New("max enhance level reached")
	// ErrRealmTooLow -- реалм игрока ниже требуемого для текущего диапазона.
	ErrRealmTooLow = errors.New("player realm too low")
	// ErrInsufficientStones -- не хватает камней усиления или очищения.
	ErrInsufficientStones = errors.New("insufficient stones")
)

// MaxLevel is the enhancement cap.
const MaxLevel = 150

// costPerLevel is the reinforcement-stone price factor: cost = 10 × (level+1).
const costPerLevel = 10

// statIncrease is the per-success stat growth.
const statIncrease = 0.1

// band is one row of the enhancement table. Level bounds are inclusive.
type band struct {
	from, to      int
	requiredRealm int
	successRate   float64
}

// Success rate and realm requirement by current enhance level.
var bands = []band{
	{0, 10, 1, 0.5},
	{11, 20, 2, 0.35},
	{21, 30, 3, 0.3},
	{31, 40, 4, 0.25},
	{41, 50, 5, 0.2},
	{51, 60, 6, 0.15},
	{61, 70, 7, 0.1},
	{71, 80, 8, 0.05},
	{81, 90, 9, 0.025},
	{91, 100, 10, 0.02},
	{101, 110, 11, 0.015},
	{111, 120, 12, 0.01},
	{121, 130, 13, 0.005},
	{131, 140, 14, 0.0025},
	{141, 150, 15, 0.001},
}

func bandFor(level int) band {
	level = max(level, 0)
	for _, b := range bands {
		if level <= b.to {
			return b
		}
	}
	return bands[len(bands)-1]
}

// SuccessRate returns the probability that enhancing an item at level succeeds.
func SuccessRate(level int) float64 {
	return bandFor(level).successRate
}

// RequiredRealm returns the player realm needed to enhance an item at level.
// The same banding sets the realm requirement of an item after enhancement.
func RequiredRealm(level int) int {
	return bandFor(level).requiredRealm
}

// Cost returns the reinforcement stones consumed by one attempt at level.
func Cost(level int) int {
	return costPerLevel * (max(level, 0) + 1)
}

// Result describes the outcome of an enhance attempt.
type Result struct {
	// Success is true if the item gained a level.
	Success bool
	// Cost is the number of reinforcement stones consumed, charged either way.
	Cost int
	// Equipment is the item after the attempt. Unchanged on failure.
	Equipment model.Equipment
}

// Validate checks if the player can attempt to enhance eq.
func Validate(eq model.Equipment, reinforceStones int64, playerRealm int) error {
	if eq.EnhanceLevel >= MaxLevel {
		return ErrMaxLevel
	}
	if need := RequiredRealm(eq.EnhanceLevel); playerRealm < need {
		return fmt.Errorf("%w: need realm %d, have %d", ErrRealmTooLow, need, playerRealm)
	}
	if need := int64(Cost(eq.EnhanceLevel)); reinforceStones < need {
		return fmt.Errorf("%w: need %d reinforcement stones, have %d", ErrInsufficientStones, need, reinforceStones)
	}
	return nil
}

// TryEnhance performs the enhance attempt. Does NOT modify eq.
// Caller is responsible for Validate and for charging Result.Cost.
func TryEnhance(eq model.Equipment, src rng.Source) Result {
	return TryEnhanceWithRoll(eq, src.Float64())
}

// TryEnhanceWithRoll performs the attempt with an explicit roll in [0, 1).
// Used for deterministic testing.
func TryEnhanceWithRoll(eq model.Equipment, roll float64) Result {
	res := Result{
		Cost:      Cost(eq.EnhanceLevel),
		Equipment: eq.Clone(),
	}
	if roll >= SuccessRate(eq.EnhanceLevel) {
		return res
	}

	res.Success = true
	for name, v := range res.Equipment.Stats {
		res.Equipment.Stats[name] = roundStat(name, v*(1+statIncrease))
	}
	res.Equipment.EnhanceLevel++
	res.Equipment.RequiredRealm = RequiredRealm(res.Equipment.EnhanceLevel)
	return res
}

// roundStat rounds base stats to whole numbers and rates to three decimals.
func roundStat(name model.StatName, v float64) float64 {
	if name.IsRate() {
		return math.Round(v*1000) / 1000
	}
	return math.Round(v)
}
