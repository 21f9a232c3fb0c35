// Package loot implements the gacha loot generator: weighted tier selection,
// optional wishlist bias, and synthesis of equipment and pets with
// tier-budgeted attributes.
//
// Generation is pure apart from the injected randomness, id and clock
// sources. One call produces one item; batch pulls loop over Generate.
package loot

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/xiuxian/internal/model"
	"github.com/udisondev/xiuxian/internal/rng"
)

// ErrInvalidKind is returned for a loot kind other than equipment or pet.
var ErrInvalidKind = errors.New("invalid loot kind")

// Kind selects what a draw produces.
type Kind string

const (
	KindEquipment Kind = "equipment"
	KindPet       Kind = "pet"
)

// ParseKind validates a loot kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindEquipment, KindPet:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// Item is the result of one draw. Exactly one of Equipment and Pet is set.
type Item struct {
	Kind      Kind
	Equipment *model.Equipment
	Pet       *model.Pet
}

// ID returns the id of the wrapped item.
func (it Item) ID() string {
	if it.Pet != nil {
		return it.Pet.ID
	}
	if it.Equipment != nil {
		return it.Equipment.ID
	}
	return ""
}

// Quality returns the tier of the wrapped item.
func (it Item) Quality() model.Quality {
	if it.Pet != nil {
		return it.Pet.Rarity
	}
	if it.Equipment != nil {
		return it.Equipment.Quality
	}
	return model.QualityCommon
}

// Name returns the display name of the wrapped item.
func (it Item) Name() string {
	if it.Pet != nil {
		return it.Pet.Name
	}
	if it.Equipment != nil {
		return it.Equipment.Name
	}
	return ""
}

// Generator produces loot. Not safe for concurrent use; give each goroutine
// its own Generator with its own rng.Source.
type Generator struct {
	src   rng.Source
	newID func() string
	now   func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithIDFunc overrides the id source (uuid v4 by default).
func WithIDFunc(f func() string) Option {
	return func(g *Generator) { g.newID = f }
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// NewGenerator creates a generator drawing from src.
func NewGenerator(src rng.Source, opts ...Option) *Generator {
	g := &Generator{
		src:   src,
		newID: uuid.NewString,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate produces exactly one item of the given kind for a player of the
// given level. An unknown kind fails with ErrInvalidKind; everything else
// is defaulted.
func (g *Generator) Generate(kind Kind, level int, wish WishBias) (Item, error) {
	switch kind {
	case KindEquipment:
		eq := g.Equipment(level, wish)
		return Item{Kind: kind, Equipment: &eq}, nil
	case KindPet:
		p := g.Pet(wish)
		return Item{Kind: kind, Pet: &p}, nil
	}
	return Item{}, fmt.Errorf("%w: %q", ErrInvalidKind, string(kind))
}
