// Package rng provides the randomness sources injected into the battle and
// loot engines. Engines never touch the global generator: every roll goes
// through a Source so that a seeded or scripted source reproduces a result
// exactly.
package rng

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	mrand "math/rand/v2"
	"sync/atomic"
	"time"
)

// Source is a uniform random number source.
type Source interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// IntN returns a value in [0, n). Panics if n <= 0.
	IntN(n int) int
}

// Rand is a seeded PCG source. Not safe for concurrent use: each battle or
// draw batch owns its own Rand.
type Rand struct {
	r *mrand.Rand
}

// New returns a deterministic source for the given seed.
func New(seed uint64) *Rand {
	return &Rand{r: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// entropy is the seed reader. Replaced in tests.
var entropy io.Reader = rand.Reader

// fallbacks counts time-based seeds so two of them never coincide.
var fallbacks atomic.Uint64

// NewSeed returns a seed read from the OS entropy pool.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(entropy, b[:]); err != nil {
		return 0, fmt.Errorf("reading seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// Fresh returns a source with an unpredictable seed. If the entropy pool
// fails, the seed falls back to the clock mixed with a counter, so
// consecutive sources still differ.
func Fresh() *Rand {
	seed, err := NewSeed()
	if err != nil {
		seed = uint64(time.Now().UnixNano()) ^ fallbacks.Add(1)*0x9e3779b97f4a7c15
		slog.Warn("crypto seed failed, using clock seed", "error", err)
	}
	return New(seed)
}

// Float64 implements Source.
func (r *Rand) Float64() float64 { return r.r.Float64() }

// IntN implements Source.
func (r *Rand) IntN(n int) int { return r.r.IntN(n) }

// Chance reports whether an event with probability p fires.
// p is clamped into [0, 1]. Exactly one value is consumed from src
// regardless of p, so the sequence of draws does not depend on the stats.
func Chance(src Source, p float64) bool {
	roll := src.Float64()
	switch {
	case p <= 0:
		return false
	case p >= 1:
		return true
	}
	return roll < p
}

// Between returns a uniform value in [lo, hi).
func Between(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}
