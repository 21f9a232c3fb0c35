package combat

import (
	"fmt"

	"github.com/udisondev/xiuxian/internal/model"
	"github.com/udisondev/xiuxian/internal/rng"
)

// RewardKind is the currency a reward is paid in.
type RewardKind string

const (
	RewardCultivation      RewardKind = "cultivation"
	RewardSpiritStones     RewardKind = "spiritStones"
	RewardReinforceStones  RewardKind = "reinforceStones"
	RewardRefinementStones RewardKind = "refinementStones"
	RewardPrestige         RewardKind = "prestige"
)

var rewardTitles = map[RewardKind]string{
	RewardCultivation:      "修为",
	RewardSpiritStones:     "灵石",
	RewardReinforceStones:  "强化石",
	RewardRefinementStones: "洗炼石",
	RewardPrestige:         "声望",
}

// Reward is a single currency grant.
type Reward struct {
	Kind   RewardKind `json:"kind"`
	Amount int        `json:"amount"`
}

// String renders the reward the way it is shown to the player, e.g. "灵石 10".
func (r Reward) String() string {
	title, ok := rewardTitles[r.Kind]
	if !ok {
		title = string(r.Kind)
	}
	return fmt.Sprintf("%s %d", title, r.Amount)
}

// Reward tables.
const (
	pveCultivationPerLevel = 100
	pveStonesPerLevel      = 10
	pveReinforceChance     = 0.3
	pveReinforceMax        = 3
	pveRefinementChance    = 0.1
	pvpPrestigePerLevel    = 5
	pvpStonesPerLevel      = 3
)

// GenerateRewards returns the rewards for the player. Only a victory pays out.
// Levels below 1 are treated as 1.
//
// PvE: cultivation level×100, spirit stones level×10, 30% for 1-3
// reinforcement stones, 10% for one refinement stone.
// PvP: prestige level×5, spirit stones level×3.
func GenerateRewards(kind Kind, result Result, opponentLevel int, src rng.Source) []Reward {
	if result != ResultVictory {
		return nil
	}
	level := max(opponentLevel, 1)

	if kind == KindPvP {
		return []Reward{
			{Kind: RewardPrestige, Amount: level * pvpPrestigePerLevel},
			{Kind: RewardSpiritStones, Amount: level * pvpStonesPerLevel},
		}
	}

	rewards := []Reward{
		{Kind: RewardCultivation, Amount: level * pveCultivationPerLevel},
		{Kind: RewardSpiritStones, Amount: level * pveStonesPerLevel},
	}
	if rng.Chance(src, pveReinforceChance) {
		rewards = append(rewards, Reward{Kind: RewardReinforceStones, Amount: src.IntN(pveReinforceMax) + 1})
	}
	if rng.Chance(src, pveRefinementChance) {
		rewards = append(rewards, Reward{Kind: RewardRefinementStones, Amount: 1})
	}
	return rewards
}

// Wallet sums the rewards into currency deltas.
func Wallet(rewards []Reward) model.Wallet {
	var w model.Wallet
	for _, r := range rewards {
		amt := int64(r.Amount)
		switch r.Kind {
		case RewardCultivation:
			w.Cultivation += amt
		case RewardSpiritStones:
			w.SpiritStones += amt
		case RewardReinforceStones:
			w.ReinforceStones += amt
		case RewardRefinementStones:
			w.RefinementStones += amt
		case RewardPrestige:
			w.Prestige += amt
		}
	}
	return w
}
