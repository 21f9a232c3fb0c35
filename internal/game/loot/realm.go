package loot

// Realm banding: every LevelsPerRealm player levels form one realm tier.
const (
	LevelsPerRealm = 9
	MinRealm       = 1
	MaxRealm       = 15
)

// RealmTier maps a player level to its realm tier (1..15).
// 1-9 → 1, 10-18 → 2, ..., 118-126 → 14, 127+ → 15.
// Levels below 1 are treated as level 1.
func RealmTier(level int) int {
	if level < 1 {
		return MinRealm
	}
	return min((level-1)/LevelsPerRealm+1, MaxRealm)
}
