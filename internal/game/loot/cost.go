package loot

import (
	"slices"

	"github.com/udisondev/xiuxian/internal/model"
)

// Spirit-stone prices.
const (
	PricePerPull      = 100
	WishPriceMultiple = 2
	MaxPullsPerDraw   = 100
)

// Bundle prices for the standard pull counts.
var bundlePrices = map[int]int{1: 100, 10: 1000, 50: 5000, 100: 10000}

// Cost returns the spirit-stone price of count pulls. Wishlist pulls cost double.
// Non-positive counts cost nothing.
func Cost(count int, wish bool) int {
	if count <= 0 {
		return 0
	}
	price, ok := bundlePrices[count]
	if !ok {
		price = count * PricePerPull
	}
	if wish {
		price *= WishPriceMultiple
	}
	return price
}

// Камни усиления за автопродажу/автоотпуск по качеству.
var salvageValues = [model.QualityCount]int{1, 2, 5, 10, 20, 50}

// SalvageValue returns the reinforcement stones granted for auto-selling
// equipment or auto-releasing a pet of tier q.
func SalvageValue(q model.Quality) int {
	if !q.Valid() {
		return 0
	}
	return salvageValues[q]
}

// Disposal is the result of applying auto-sell and auto-release rules to a draw.
type Disposal struct {
	Kept            []Item
	Sold            []Item
	Released        []Item
	ReinforceStones int
}

// AutoDispose splits items into kept, sold and released ones. Equipment whose
// quality is in sell is sold; pets whose rarity is in release are released.
// Every disposed item grants its SalvageValue in reinforcement stones.
func AutoDispose(items []Item, sell, release []model.Quality) Disposal {
	var d Disposal
	for _, it := range items {
		switch {
		case it.Equipment != nil && slices.Contains(sell, it.Equipment.Quality):
			d.Sold = append(d.Sold, it)
			d.ReinforceStones += SalvageValue(it.Equipment.Quality)
		case it.Pet != nil && slices.Contains(release, it.Pet.Rarity):
			d.Released = append(d.Released, it)
			d.ReinforceStones += SalvageValue(it.Pet.Rarity)
		default:
			d.Kept = append(d.Kept, it)
		}
	}
	return d
}
