package loot

import (
	"errors"
	"fmt"
	"math"

	"github.com/udisondev/xiuxian/internal/model"
	"github.com/udisondev/xiuxian/internal/rng"
)

// ErrBadTable is returned by Table.Validate.
var ErrBadTable = errors.New("invalid probability table")

// wishBoost is the relative boost applied to the wished tier.
const wishBoost = 0.5

// tableTolerance is the accepted float error on the sum of a table.
const tableTolerance = 1e-9

// Weight is the draw probability of one tier.
type Weight struct {
	Quality model.Quality
	P       float64
}

// Table is an ordered probability table, highest rarity first.
type Table []Weight

// DrawTable is the standard pool table, used for both equipment and pets.
var DrawTable = Table{
	{model.QualityMythic, 0.001},
	{model.QualityLegendary, 0.003},
	{model.QualityEpic, 0.016},
	{model.QualityRare, 0.03},
	{model.QualityUncommon, 0.15},
	{model.QualityCommon, 0.80},
}

// WishlistTable is the pool table used when the wishlist is enabled.
// The wish bias is applied on top of it.
var WishlistTable = Table{
	{model.QualityMythic, 0.01},
	{model.QualityLegendary, 0.04},
	{model.QualityEpic, 0.10},
	{model.QualityRare, 0.15},
	{model.QualityUncommon, 0.30},
	{model.QualityCommon, 0.40},
}

// Sum returns the total weight.
func (t Table) Sum() float64 {
	var s float64
	for _, w := range t {
		s += w.P
	}
	return s
}

// Weight returns the probability of q, 0 if q is not in the table.
func (t Table) Weight(q model.Quality) float64 {
	for _, w := range t {
		if w.Quality == q {
			return w.P
		}
	}
	return 0
}

// Clone returns a copy of the table.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	copy(out, t)
	return out
}

// Validate checks that the table is non-empty, has no negative or duplicate
// entries and sums to 1.
func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: empty", ErrBadTable)
	}
	seen := make(map[model.Quality]bool, len(t))
	for _, w := range t {
		if !w.Quality.Valid() {
			return fmt.Errorf("%w: unknown tier %d", ErrBadTable, int(w.Quality))
		}
		if seen[w.Quality] {
			return fmt.Errorf("%w: duplicate tier %s", ErrBadTable, w.Quality)
		}
		seen[w.Quality] = true
		if w.P < 0 || math.IsNaN(w.P) {
			return fmt.Errorf("%w: negative weight for %s", ErrBadTable, w.Quality)
		}
	}
	if s := t.Sum(); math.Abs(s-1) > tableTolerance {
		return fmt.Errorf("%w: sums to %v", ErrBadTable, s)
	}
	return nil
}

// ApplyWishBias returns a copy of t with the target tier boosted by 50% and
// the excess taken evenly from every other tier.
//
// When a tier would go negative it is clamped to 0 and the whole table is
// renormalised so it still sums to 1. A target outside the table returns an
// unchanged copy.
func ApplyWishBias(t Table, target model.Quality) Table {
	out := t.Clone()
	idx := -1
	for i, w := range out {
		if w.Quality == target {
			idx = i
			break
		}
	}
	if idx < 0 || len(out) < 2 {
		return out
	}

	excess := out[idx].P * wishBoost
	share := excess / float64(len(out)-1)
	out[idx].P += excess

	clamped := false
	for i := range out {
		if i == idx {
			continue
		}
		out[i].P -= share
		if out[i].P < 0 {
			out[i].P = 0
			clamped = true
		}
	}

	if clamped {
		total := out.Sum()
		for i := range out {
			out[i].P /= total
		}
	}
	return out
}

// Draw picks a tier: a uniform value in [0, total) is walked down the table
// from the rarest tier. Float rounding that runs past the end returns the
// last (most common) tier.
func Draw(t Table, src rng.Source) model.Quality {
	r := src.Float64() * t.Sum()
	for _, w := range t {
		if r < w.P {
			return w.Quality
		}
		r -= w.P
	}
	return t[len(t)-1].Quality
}

// WishBias is the optional wishlist modifier of a draw.
type WishBias struct {
	Enabled bool
	Target  model.Quality
}

// TableFor returns the table a draw should use for the given bias.
func TableFor(wish WishBias) Table {
	if !wish.Enabled {
		return DrawTable
	}
	return ApplyWishBias(WishlistTable, wish.Target)
}
