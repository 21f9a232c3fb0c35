// Package combat implements the turn-based battle engine.
//
// A battle is a pure computation: two snapshots and a randomness source go
// in, an Outcome comes out. Nothing here performs I/O or keeps state between
// calls, so concurrent battles only need their own rng.Source each.
//
// Round flow:
//  1. Tick status effects on both sides (stun clears once its debuff expires)
//  2. Faster side acts first, ties go to the player
//  3. If the second side survives and is not stunned, it acts back
//  4. After MaxRounds without a death the battle is a draw
package combat

import (
	"github.com/udisondev/xiuxian/internal/model"
	"github.com/udisondev/xiuxian/internal/rng"
)

// MaxRounds caps the length of a battle.
const MaxRounds = 50

// Kind selects the reward table.
type Kind int

const (
	KindPvE Kind = iota
	KindPvP
)

func (k Kind) String() string {
	if k == KindPvP {
		return "pvp"
	}
	return "pve"
}

// Result is the battle result from the player's point of view.
type Result string

const (
	ResultVictory Result = "victory"
	ResultDefeat  Result = "defeat"
	ResultDraw    Result = "draw"
)

// Outcome is the immutable result of one battle.
type Outcome struct {
	Result         Result     `json:"result"`
	Rounds         int        `json:"rounds"`
	PlayerHealth   int        `json:"playerHealth"`
	OpponentHealth int        `json:"opponentHealth"`
	Logs           []LogEntry `json:"logs"`
	Rewards        []Reward   `json:"rewards"`
}

// RewardDescriptions renders the rewards as display strings.
func (o Outcome) RewardDescriptions() []string {
	out := make([]string, len(o.Rewards))
	for i, r := range o.Rewards {
		out[i] = r.String()
	}
	return out
}

// Battle holds the state of a battle in progress.
type Battle struct {
	player   *Participant
	opponent *Participant
	kind     Kind
	src      rng.Source

	turn   int
	logs   []LogEntry
	result Result
}

// NewBattle prepares a battle between player and opponent.
func NewBattle(player, opponent Snapshot, kind Kind, src rng.Source) *Battle {
	b := &Battle{
		player:   NewParticipant(player),
		opponent: NewParticipant(opponent),
		kind:     kind,
		src:      src,
	}
	b.logf(LogInfo, "战斗开始！%s vs %s", b.player.Name, b.opponent.Name)
	return b
}

// Simulate runs a full battle and generates rewards for the player.
// Rewards scale with the opponent snapshot's level.
func Simulate(player, opponent Snapshot, kind Kind, src rng.Source) Outcome {
	b := NewBattle(player, opponent, kind, src)
	b.Run()
	out := b.Outcome()
	out.Rewards = GenerateRewards(kind, out.Result, opponent.Level, src)
	return out
}

// Run plays rounds until someone dies or MaxRounds is reached.
func (b *Battle) Run() Result {
	for range MaxRounds {
		if r, done := b.Round(); done {
			return r
		}
	}
	b.result = ResultDraw
	b.logf(LogInfo, "战斗超时，判定为平局！")
	return b.result
}

// Round plays a single round. done is true once the battle has a winner.
func (b *Battle) Round() (Result, bool) {
	if b.result != "" {
		return b.result, true
	}
	b.turn++

	b.player.TickEffects()
	b.opponent.TickEffects()

	first, second := b.order()

	b.act(first, second)
	if r, done := b.decide(first, second); done {
		return r, true
	}

	if second.Stunned {
		b.logf(LogInfo, "%s 被眩晕，无法行动", second.Name)
		return "", false
	}

	b.act(second, first)
	if r, done := b.decide(second, first); done {
		return r, true
	}
	return "", false
}

// decide checks for a death after attacker acted on defender.
// A counter can kill the attacker, in which case the defender wins.
func (b *Battle) decide(attacker, defender *Participant) (Result, bool) {
	switch {
	case !defender.IsAlive():
		return b.finish(attacker), true
	case !attacker.IsAlive():
		return b.finish(defender), true
	}
	return "", false
}

// order returns the acting order for this round. Equal speed favours the player.
func (b *Battle) order() (first, second *Participant) {
	if b.player.Effective(model.StatSpeed) >= b.opponent.Effective(model.StatSpeed) {
		return b.player, b.opponent
	}
	return b.opponent, b.player
}

func (b *Battle) finish(winner *Participant) Result {
	if winner == b.player {
		b.result = ResultVictory
	} else {
		b.result = ResultDefeat
	}
	b.logf(LogInfo, "%s 获胜！", winner.Name)
	return b.result
}

// act resolves one action: dodge, crit, damage, lifesteal, combo, stun, counter.
// Every trigger check consumes exactly one random value, except the counter
// check which is skipped when the defender is dead or stunned.
func (b *Battle) act(attacker, defender *Participant) {
	if attacker.Stunned {
		b.logf(LogInfo, "%s 被眩晕，无法行动", attacker.Name)
		attacker.Stunned = false
		return
	}

	if roll(b.src, defender.Effective(model.StatDodgeRate), attacker.Effective(model.StatDodgeResist)) {
		b.logf(LogInfo, "%s 闪避了攻击！", defender.Name)
		return
	}

	crit := roll(b.src, attacker.Effective(model.StatCritRate), defender.Effective(model.StatCritResist))
	damage := CalcDamage(attacker, defender, crit)
	defender.TakeDamage(damage)
	if crit {
		b.logf(LogAttack, "[暴击!] %s 对 %s 造成 %d 点伤害", attacker.Name, defender.Name, damage)
	} else {
		b.logf(LogAttack, "%s 对 %s 造成 %d 点伤害", attacker.Name, defender.Name, damage)
	}

	if roll(b.src, attacker.Effective(model.StatVampireRate), defender.Effective(model.StatVampireResist)) && damage > 0 {
		healed := attacker.Heal(int(float64(damage) * lifestealRatio))
		b.logf(LogHeal, "%s 吸血 %d 点", attacker.Name, healed)
	}

	if roll(b.src, attacker.Effective(model.StatComboRate), defender.Effective(model.StatComboResist)) && defender.IsAlive() {
		extra := int(float64(damage) * comboRatio)
		defender.TakeDamage(extra)
		b.logf(LogAttack, "[连击!] %s 追加 %d 点伤害", attacker.Name, extra)
	}

	if roll(b.src, attacker.Effective(model.StatStunRate), defender.Effective(model.StatStunResist)) && defender.IsAlive() {
		defender.AddDebuff(StatusEffect{ID: EffectStun, Type: EffectStun, Duration: 1})
		b.logf(LogDebuff, "%s 被眩晕了！", defender.Name)
	}

	if defender.IsAlive() && !defender.Stunned {
		if roll(b.src, defender.Effective(model.StatCounterRate), attacker.Effective(model.StatCounterResist)) {
			back := int(float64(damage) * counterRatio)
			attacker.TakeDamage(back)
			b.logf(LogAttack, "[反击!] %s 反击造成 %d 点伤害", defender.Name, back)
		}
	}
}

// Outcome returns the current result. Before the battle ends Result is empty.
func (b *Battle) Outcome() Outcome {
	logs := make([]LogEntry, len(b.logs))
	copy(logs, b.logs)
	return Outcome{
		Result:         b.result,
		Rounds:         b.turn,
		PlayerHealth:   b.player.Health,
		OpponentHealth: b.opponent.Health,
		Logs:           logs,
	}
}

// Player returns the player-side participant.
func (b *Battle) Player() *Participant { return b.player }

// Opponent returns the opponent-side participant.
func (b *Battle) Opponent() *Participant { return b.opponent }
