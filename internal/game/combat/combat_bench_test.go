package combat

import (
	"testing"

	"github.com/udisondev/xiuxian/internal/model"
	"github.com/udisondev/xiuxian/internal/rng"
)

// --- helpers ---

func benchSnapshot(name string) Snapshot {
	return SnapshotOf(name, name, 30, model.Attributes{
		Base: model.BaseAttributes{Attack: 300, Health: 5000, Defense: 120, Speed: 20},
		Combat: model.CombatAttributes{
			CritRate: 0.2, ComboRate: 0.1, CounterRate: 0.1,
			StunRate: 0.05, DodgeRate: 0.1, VampireRate: 0.1,
		},
		Special: model.SpecialAttributes{CritDamageBoost: 0.5},
	})
}

// --- Simulate benchmarks ---

// BenchmarkSimulate benchmarks a full battle that runs most of the round cap.
func BenchmarkSimulate(b *testing.B) {
	me, opp := benchSnapshot("player"), benchSnapshot("rival")
	src := rng.New(1)

	b.ReportAllocs()
	for range b.N {
		_ = Simulate(me, opp, KindPvE, src)
	}
}

// BenchmarkCalcDamage benchmarks the damage formula alone.
// Expected: a few ns, no allocations.
func BenchmarkCalcDamage(b *testing.B) {
	a := NewParticipant(benchSnapshot("a"))
	d := NewParticipant(benchSnapshot("d"))

	b.ReportAllocs()
	for i := range b.N {
		_ = CalcDamage(a, d, i%2 == 0)
	}
}
