package data

import "github.com/udisondev/xiuxian/internal/game/loot"

var realmNames = [loot.MaxRealm]string{
	"练气期", "筑基期", "金丹期", "元婴期", "化神期",
	"返虚期", "合体期", "大乘期", "渡劫期", "散仙期",
	"仙人期", "真仙期", "金仙期", "太乙期", "大罗期",
}

var stageNumerals = [loot.LevelsPerRealm]string{"一", "二", "三", "四", "五", "六", "七", "八", "九"}

// RealmName returns the name of a realm tier; out-of-range tiers are clamped.
func RealmName(tier int) string {
	tier = min(max(tier, loot.MinRealm), loot.MaxRealm)
	return realmNames[tier-1]
}

// RealmTitle returns the full realm title of a player level, e.g. "练气期一层".
// Levels past the last realm stay at its ninth stage.
func RealmTitle(level int) string {
	level = max(level, 1)
	tier := loot.RealmTier(level)
	stage := (level - 1) % loot.LevelsPerRealm
	if (level-1)/loot.LevelsPerRealm >= loot.MaxRealm {
		stage = loot.LevelsPerRealm - 1
	}
	return RealmName(tier) + stageNumerals[stage] + "层"
}
