package combat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/xiuxian/internal/model"
	"github.com/udisondev/xiuxian/internal/rng"
)

// noRoll never lets a probabilistic trigger below 1 fire.
func noRoll() rng.Source { return rng.Fixed(0.999) }

// fighter builds a snapshot with every group present and all rates zero.
func fighter(t *testing.T, name string, base model.BaseAttributes, combat model.CombatAttributes) Snapshot {
	t.Helper()
	return Snapshot{
		ID:         name,
		Name:       name,
		Level:      1,
		Base:       &base,
		Combat:     &combat,
		Resistance: &model.ResistanceAttributes{},
		Special:    &model.SpecialAttributes{},
	}
}

func lastLog(o Outcome) string {
	if len(o.Logs) == 0 {
		return ""
	}
	return o.Logs[len(o.Logs)-1].Message
}

func countLogs(o Outcome, substr string) int {
	n := 0
	for _, l := range o.Logs {
		if strings.Contains(l.Message, substr) {
			n++
		}
	}
	return n
}

func TestSimulate_OneHitKill(t *testing.T) {
	t.Parallel()

	a := fighter(t, "A", model.BaseAttributes{Attack: 100, Health: 100, Defense: 0, Speed: 10}, model.CombatAttributes{})
	b := fighter(t, "B", model.BaseAttributes{Attack: 10, Health: 10, Defense: 50, Speed: 5}, model.CombatAttributes{})

	out := Simulate(a, b, KindPvE, noRoll())

	assert.Equal(t, ResultVictory, out.Result)
	assert.Equal(t, 1, out.Rounds)
	assert.Equal(t, 0, out.OpponentHealth)
	assert.Equal(t, 100, out.PlayerHealth)
	assert.Contains(t, out.Logs[1].Message, "造成 66 点伤害")
	assert.Equal(t, "A 获胜！", lastLog(out))
	assert.Equal(t, []string{"修为 100", "灵石 10"}, out.RewardDescriptions())
}

func TestSimulate_HugeAttackStillWins(t *testing.T) {
	t.Parallel()

	a := fighter(t, "A", model.BaseAttributes{Attack: 1e300, Health: 100, Speed: 50}, model.CombatAttributes{})
	b := fighter(t, "B", model.BaseAttributes{Attack: 10, Health: 100, Speed: 10}, model.CombatAttributes{})

	out := Simulate(a, b, KindPvE, noRoll())

	assert.Equal(t, ResultVictory, out.Result)
	assert.Equal(t, 1, out.Rounds)
	assert.Equal(t, 0, out.OpponentHealth)
}

func TestSimulate_DrawAfterMaxRounds(t *testing.T) {
	t.Parallel()

	tank := model.BaseAttributes{Attack: 1, Health: 1000, Defense: 1_000_000, Speed: 10}
	out := Simulate(
		fighter(t, "A", tank, model.CombatAttributes{}),
		fighter(t, "B", tank, model.CombatAttributes{}),
		KindPvE, noRoll(),
	)

	assert.Equal(t, ResultDraw, out.Result)
	assert.Equal(t, MaxRounds, out.Rounds)
	// минимальный урон 1 за удар, по удару за раунд
	assert.Equal(t, 1000-MaxRounds, out.PlayerHealth)
	assert.Equal(t, 1000-MaxRounds, out.OpponentHealth)
	assert.Equal(t, "战斗超时，判定为平局！", lastLog(out))
	assert.Empty(t, out.Rewards)
}

func TestSimulate_ActionOrder(t *testing.T) {
	t.Parallel()

	glass := func(speed float64) model.BaseAttributes {
		return model.BaseAttributes{Attack: 1000, Health: 10, Speed: speed}
	}

	tests := []struct {
		name        string
		playerSpeed float64
		enemySpeed  float64
		want        Result
	}{
		{"player faster", 20, 10, ResultVictory},
		{"opponent faster", 10, 20, ResultDefeat},
		{"tie favours player", 15, 15, ResultVictory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out := Simulate(
				fighter(t, "P", glass(tt.playerSpeed), model.CombatAttributes{}),
				fighter(t, "O", glass(tt.enemySpeed), model.CombatAttributes{}),
				KindPvP, noRoll(),
			)
			assert.Equal(t, tt.want, out.Result)
			assert.Equal(t, 1, out.Rounds)
		})
	}
}

func TestSimulate_StunSkipsTurns(t *testing.T) {
	t.Parallel()

	player := fighter(t, "P", model.BaseAttributes{Attack: 10, Health: 100, Speed: 20}, model.CombatAttributes{StunRate: 1})
	enemy := fighter(t, "O", model.BaseAttributes{Attack: 50, Health: 1000, Speed: 10}, model.CombatAttributes{})

	out := Simulate(player, enemy, KindPvE, noRoll())

	assert.Equal(t, ResultDraw, out.Result)
	assert.Equal(t, 100, out.PlayerHealth, "stunned opponent never acts")
	assert.Equal(t, 1000-10*MaxRounds, out.OpponentHealth)
	assert.Equal(t, MaxRounds, countLogs(out, "被眩晕了"))
	assert.Equal(t, MaxRounds, countLogs(out, "无法行动"))
}

func TestSimulate_CounterCanKillAttacker(t *testing.T) {
	t.Parallel()

	player := fighter(t, "P", model.BaseAttributes{Attack: 10, Health: 1, Speed: 20}, model.CombatAttributes{})
	enemy := fighter(t, "O", model.BaseAttributes{Attack: 1, Health: 1000, Speed: 10}, model.CombatAttributes{CounterRate: 1})

	out := Simulate(player, enemy, KindPvE, noRoll())

	assert.Equal(t, ResultDefeat, out.Result)
	assert.Equal(t, 1, out.Rounds)
	assert.Equal(t, 0, out.PlayerHealth)
	assert.Equal(t, 990, out.OpponentHealth)
	assert.Equal(t, 1, countLogs(out, "[反击!] O 反击造成 4 点伤害"))
}

func TestSimulate_ComboAndLifesteal(t *testing.T) {
	t.Parallel()

	player := fighter(t, "P",
		model.BaseAttributes{Attack: 100, Health: 100, Speed: 20},
		model.CombatAttributes{ComboRate: 1, VampireRate: 1},
	)
	enemy := fighter(t, "O", model.BaseAttributes{Attack: 20, Health: 1000, Speed: 10}, model.CombatAttributes{})

	b := NewBattle(player, enemy, KindPvE, noRoll())
	_, done := b.Round()
	require.False(t, done)

	// 100 + 50 combo
	assert.Equal(t, 850, b.Opponent().Health)
	// full health: lifesteal capped at max, then the opponent hits for 20
	assert.Equal(t, 80, b.Player().Health)

	b.Round()
	// second lifesteal heals 30 of the 20 lost, capped at max
	assert.Equal(t, 700, b.Opponent().Health)
	assert.Equal(t, 80, b.Player().Health)
}

func TestSimulate_DodgeAvoidsDamage(t *testing.T) {
	t.Parallel()

	player := fighter(t, "P", model.BaseAttributes{Attack: 100, Health: 100, Speed: 20}, model.CombatAttributes{DodgeRate: 1})
	enemy := fighter(t, "O", model.BaseAttributes{Attack: 100, Health: 1000, Speed: 10}, model.CombatAttributes{})

	out := Simulate(player, enemy, KindPvE, noRoll())

	assert.Equal(t, 100, out.PlayerHealth)
	assert.Positive(t, countLogs(out, "P 闪避了攻击！"))
}

func TestSimulate_Deterministic(t *testing.T) {
	t.Parallel()

	player := SnapshotOf("p", "P", 10, model.Attributes{
		Base:       model.BaseAttributes{Attack: 120, Health: 1500, Defense: 40, Speed: 30},
		Combat:     model.CombatAttributes{CritRate: 0.3, ComboRate: 0.2, CounterRate: 0.2, StunRate: 0.1, DodgeRate: 0.15, VampireRate: 0.2},
		Resistance: model.ResistanceAttributes{CritResist: 0.05, StunResist: 0.05},
		Special:    model.SpecialAttributes{CritDamageBoost: 0.5, FinalDamageBoost: 0.05},
	})
	enemy := SnapshotOf("m", "M", 12, model.Attributes{
		Base:   model.BaseAttributes{Attack: 110, Health: 1600, Defense: 50, Speed: 30},
		Combat: model.CombatAttributes{CritRate: 0.2, ComboRate: 0.1, CounterRate: 0.3, StunRate: 0.1, DodgeRate: 0.1},
	})

	for _, seed := range []uint64{1, 2, 3, 42} {
		a := Simulate(player, enemy, KindPvE, rng.New(seed))
		b := Simulate(player, enemy, KindPvE, rng.New(seed))
		require.Equal(t, a, b, "seed %d", seed)
	}

	a := Simulate(player, enemy, KindPvE, rng.Fixed(0.3))
	b := Simulate(player, enemy, KindPvE, rng.Fixed(0.3))
	assert.Equal(t, a, b)
}

func TestSimulate_HealthBoundsAndTermination(t *testing.T) {
	t.Parallel()

	player := SnapshotOf("p", "P", 5, model.Attributes{
		Base:   model.BaseAttributes{Attack: 80, Health: 600, Defense: 20, Speed: 12},
		Combat: model.CombatAttributes{CritRate: 0.5, ComboRate: 0.5, CounterRate: 0.5, StunRate: 0.3, DodgeRate: 0.2, VampireRate: 0.8},
	})
	enemy := SnapshotOf("m", "M", 5, model.Attributes{
		Base:   model.BaseAttributes{Attack: 90, Health: 500, Defense: 30, Speed: 12},
		Combat: model.CombatAttributes{CritRate: 0.4, ComboRate: 0.4, CounterRate: 0.6, StunRate: 0.3, DodgeRate: 0.2, VampireRate: 0.8},
	})

	for seed := range uint64(200) {
		b := NewBattle(player, enemy, KindPvE, rng.New(seed))
		rounds := 0
		for {
			_, done := b.Round()
			rounds++
			for _, p := range []*Participant{b.Player(), b.Opponent()} {
				require.GreaterOrEqual(t, p.Health, 0)
				require.LessOrEqual(t, p.Health, p.MaxHealth)
			}
			if done || rounds == MaxRounds {
				break
			}
		}
		require.LessOrEqual(t, b.Outcome().Rounds, MaxRounds)
	}
}

func TestBattle_RoundAfterFinish(t *testing.T) {
	t.Parallel()

	a := fighter(t, "A", model.BaseAttributes{Attack: 1000, Health: 10, Speed: 10}, model.CombatAttributes{})
	b := fighter(t, "B", model.BaseAttributes{Attack: 1, Health: 10, Speed: 1}, model.CombatAttributes{})

	battle := NewBattle(a, b, KindPvE, noRoll())
	r, done := battle.Round()
	require.True(t, done)
	require.Equal(t, ResultVictory, r)

	logs := len(battle.Outcome().Logs)
	r, done = battle.Round()
	assert.True(t, done)
	assert.Equal(t, ResultVictory, r)
	assert.Len(t, battle.Outcome().Logs, logs)
}
