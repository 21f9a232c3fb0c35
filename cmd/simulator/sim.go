package main

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/xiuxian/internal/data"
	"github.com/udisondev/xiuxian/internal/game/combat"
	"github.com/udisondev/xiuxian/internal/game/duel"
	"github.com/udisondev/xiuxian/internal/game/gacha"
	"github.com/udisondev/xiuxian/internal/game/loot"
	"github.com/udisondev/xiuxian/internal/model"
	"github.com/udisondev/xiuxian/internal/rng"
)

const (
	modeBattle = "battle"
	modeGacha  = "gacha"
)

// simName -- имя игрока-манекена.
const simName = "试炼修士"

// Plan is one simulator run.
type Plan struct {
	N       int
	Workers int
	// Seed 0 draws a fresh seed per job; otherwise job i uses Seed+i.
	Seed uint64

	// battle mode
	MonsterID int
	Level     int
	Gear      int

	// gacha mode
	Kind  loot.Kind
	Count int
	Wish  loot.WishBias
}

func (p Plan) source(job int) rng.Source {
	if p.Seed != 0 {
		return rng.New(p.Seed + uint64(job))
	}
	return rng.Fresh()
}

// cultivator builds the simulated player: the starting sheet at plan.Level,
// dressed with the best piece per slot out of plan.Gear pulls.
func (p Plan) cultivator() (model.Player, []model.Equipment) {
	pl := model.NewCultivator(simName)
	pl.Level = max(p.Level, 1)
	pl.Realm = loot.RealmTier(pl.Level)
	// Экипировка берёт сид за пределами номеров боёв.
	return pl, dress(loot.NewGenerator(p.source(p.N)), pl.Level, p.Gear)
}

// dress pulls n equipment pieces and keeps the highest quality per slot.
func dress(gen *loot.Generator, level, n int) []model.Equipment {
	best := make(map[model.EquipSlot]model.Equipment, len(model.Slots))
	for range n {
		eq := gen.Equipment(level, loot.WishBias{})
		if cur, ok := best[eq.Slot]; !ok || eq.Quality > cur.Quality {
			eq.Equipped = true
			best[eq.Slot] = eq
		}
	}

	out := make([]model.Equipment, 0, len(best))
	for _, slot := range model.Slots {
		if eq, ok := best[slot]; ok {
			out = append(out, eq)
		}
	}
	return out
}

// BattleSummary aggregates battle outcomes.
type BattleSummary struct {
	Monster   string       `json:"monster"`
	Realm     string       `json:"realm"`
	Gear      []string     `json:"gear,omitempty"`
	Battles   int          `json:"battles"`
	Victories int          `json:"victories"`
	Defeats   int          `json:"defeats"`
	Draws     int          `json:"draws"`
	WinRate   float64      `json:"winRate"`
	AvgRounds float64      `json:"avgRounds"`
	Rewards   model.Wallet `json:"rewards"`

	rounds int
}

func (s *BattleSummary) add(o combat.Outcome) {
	s.Battles++
	s.rounds += o.Rounds
	switch o.Result {
	case combat.ResultVictory:
		s.Victories++
	case combat.ResultDefeat:
		s.Defeats++
	default:
		s.Draws++
	}
	s.Rewards = s.Rewards.Add(combat.Wallet(o.Rewards))
}

func (s *BattleSummary) finish() {
	if s.Battles == 0 {
		return
	}
	s.WinRate = float64(s.Victories) / float64(s.Battles)
	s.AvgRounds = float64(s.rounds) / float64(s.Battles)
}

// RunBattles fights plan.N PvE battles against one monster across a worker pool.
func RunBattles(ctx context.Context, plan Plan) (*BattleSummary, error) {
	m, ok := data.GetMonster(plan.MonsterID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", duel.ErrUnknownMonster, plan.MonsterID)
	}

	player, gear := plan.cultivator()
	attrs := model.Loadout(player.Attributes, gear, nil)
	me := combat.SnapshotOf("sim", player.Name, player.Level, attrs)
	opp := duel.MonsterSnapshot(m)

	sum := &BattleSummary{Monster: m.Name, Realm: data.RealmTitle(player.Level)}
	for _, eq := range gear {
		sum.Gear = append(sum.Gear, eq.Quality.Title()+" "+eq.Name)
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(plan.Workers, 1))
	for i := range plan.N {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out := combat.Simulate(me, opp, combat.KindPvE, plan.source(i))

			mu.Lock()
			sum.add(out)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sum.finish()
	return sum, nil
}

// DrawSummary aggregates gacha draws.
type DrawSummary struct {
	Kind    loot.Kind      `json:"kind"`
	Draws   int            `json:"draws"`
	Pulls   int            `json:"pulls"`
	Wish    string         `json:"wish,omitempty"`
	Cost    int64          `json:"cost"`
	Tally   map[string]int `json:"tally"`
	Best    string         `json:"best"`
	Salvage int64          `json:"salvage,omitempty"`

	counts [model.QualityCount]int
}

func newDrawSummary(plan Plan) *DrawSummary {
	s := &DrawSummary{Kind: plan.Kind}
	if plan.Wish.Enabled {
		s.Wish = plan.Wish.Target.String()
	}
	return s
}

func (s *DrawSummary) add(items []loot.Item, cost int64) {
	s.Draws++
	s.Pulls += len(items)
	s.Cost += cost
	for q, n := range gacha.Tally(items) {
		s.counts[q] += n
	}
}

func (s *DrawSummary) finish() {
	s.Tally = make(map[string]int, model.QualityCount)
	best := model.QualityCommon
	for _, q := range model.Qualities() {
		s.Tally[q.String()] = s.counts[q]
		if s.counts[q] > 0 {
			best = max(best, q)
		}
	}
	s.Best = best.String()
}

// RunDraws performs plan.N draws of plan.Count pulls with the in-memory
// generator. Nothing is charged; Cost is what the draws would have cost.
func RunDraws(ctx context.Context, plan Plan) (*DrawSummary, error) {
	req := gacha.Request{Kind: plan.Kind, Count: plan.Count, Wish: plan.Wish}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	cost := int64(loot.Cost(plan.Count, plan.Wish.Enabled))
	level := max(plan.Level, 1)

	sum := newDrawSummary(plan)
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(plan.Workers, 1))
	for i := range plan.N {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			gen := loot.NewGenerator(plan.source(i))
			items := make([]loot.Item, 0, plan.Count)
			for range plan.Count {
				it, err := gen.Generate(plan.Kind, level, plan.Wish)
				if err != nil {
					return err
				}
				items = append(items, it)
			}

			mu.Lock()
			sum.add(items, cost)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sum.finish()
	return sum, nil
}
