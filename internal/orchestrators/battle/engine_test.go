package battle_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrimmagebot/scrimmage/internal/entities"
	"github.com/scrimmagebot/scrimmage/internal/errors"
	"github.com/scrimmagebot/scrimmage/internal/orchestrators/battle"
	"github.com/scrimmagebot/scrimmage/internal/pkg/idgen"
	"github.com/scrimmagebot/scrimmage/internal/pkg/random"
)

// scriptedProvider returns one slot per call, falling back to the basic
// attack once the script runs out
type scriptedProvider struct {
	slots []int
	calls int
	err   error
}

func (s *scriptedProvider) ChooseAction(_ context.Context, _ int, _, _ *battle.Participant, actions []battle.Action) (battle.Action, error) {
	if s.err != nil {
		return battle.Action{}, s.err
	}

	slot := 0
	if s.calls < len(s.slots) {
		slot = s.slots[s.calls]
	}
	s.calls++

	for _, a := range actions {
		if a.Slot == slot {
			return a, nil
		}
	}
	return battle.Action{Slot: slot}, nil
}

func newEngine(t *testing.T, provider battle.ChoiceProvider, roundCap int) *battle.Engine {
	t.Helper()

	engine, err := battle.NewEngine(&battle.Config{
		Choices:     provider,
		Roller:      &random.Scripted{Values: []int{0}},
		IDGenerator: idgen.NewSequential("duel"),
		TurnTimeout: 50 * time.Millisecond,
		RoundCap:    roundCap,
	})
	require.NoError(t, err)
	return engine
}

func TestNewEngineValidation(t *testing.T) {
	_, err := battle.NewEngine(&battle.Config{})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestRunFasterActsFirstAndWins(t *testing.T) {
	snap := buildSnapshot(t, punch())

	fast := testProgress("fast")
	fast.Speed = 30
	slow := testProgress("slow")
	slow.Speed = 20
	slow.MaxHealth = 40

	p1 := mustParticipant(t, fast, snap)
	p2 := mustParticipant(t, slow, snap)

	engine := newEngine(t, &scriptedProvider{}, 300)
	outcome, err := engine.Run(context.Background(), p1, p2)
	require.NoError(t, err)

	assert.False(t, outcome.Draw)
	assert.Equal(t, "fast", outcome.Winner.UserID)
	assert.Equal(t, "slow", outcome.Loser.UserID)
	assert.Equal(t, 1, outcome.Rounds)
	// the loser died before acting, so the winner took no damage
	assert.InDelta(t, p1.MaxHealth, p1.Health, 0.0001)
}

func TestRunSpeedTieFavorsSecond(t *testing.T) {
	snap := buildSnapshot(t, punch())

	first := testProgress("first")
	first.MaxHealth = 40
	second := testProgress("second")
	second.MaxHealth = 40

	p1 := mustParticipant(t, first, snap)
	p2 := mustParticipant(t, second, snap)

	engine := newEngine(t, &scriptedProvider{}, 300)
	outcome, err := engine.Run(context.Background(), p1, p2)
	require.NoError(t, err)

	assert.Equal(t, "second", outcome.Winner.UserID)
	assert.Equal(t, 1, outcome.Rounds)
}

func TestRunBothDieSecondActorWins(t *testing.T) {
	slam := fireball()
	slam.Name = "Reckless Slam"
	slam.Effect = entities.PowerEffectRecoil

	snap := buildSnapshot(t, punch(), slam)

	fast := testProgress("fast")
	fast.Speed = 30
	fast.PowerSlots[0] = "Reckless Slam"
	slow := testProgress("slow")
	slow.Speed = 20
	slow.MaxHealth = 50

	p1 := mustParticipant(t, fast, snap)
	p2 := mustParticipant(t, slow, snap)
	p1.Health = 5 // the recoil alone finishes the attacker

	engine := newEngine(t, &scriptedProvider{slots: []int{1}}, 300)
	outcome, err := engine.Run(context.Background(), p1, p2)
	require.NoError(t, err)

	assert.Equal(t, "slow", outcome.Winner.UserID)
	assert.Equal(t, "fast", outcome.Loser.UserID)
}

func TestRunDrawAtRoundCap(t *testing.T) {
	harmless := punch()
	harmless.DamagePercent = 0

	snap := buildSnapshot(t, harmless)

	p1 := mustParticipant(t, testProgress("u1"), snap)
	p2 := mustParticipant(t, testProgress("u2"), snap)

	engine := newEngine(t, &scriptedProvider{}, 4)
	outcome, err := engine.Run(context.Background(), p1, p2)
	require.NoError(t, err)

	assert.True(t, outcome.Draw)
	assert.Nil(t, outcome.Winner)
	assert.Nil(t, outcome.Loser)
	assert.Equal(t, 4, outcome.Rounds)
}

func TestRunProviderErrorFallsBackToRandom(t *testing.T) {
	snap := buildSnapshot(t, punch())

	strong := testProgress("strong")
	strong.Speed = 30
	weak := testProgress("weak")
	weak.MaxHealth = 40

	p1 := mustParticipant(t, strong, snap)
	p2 := mustParticipant(t, weak, snap)

	engine := newEngine(t, &scriptedProvider{err: errors.DeadlineExceeded("no reaction")}, 300)
	outcome, err := engine.Run(context.Background(), p1, p2)
	require.NoError(t, err)

	assert.Equal(t, "strong", outcome.Winner.UserID)
}

func TestRunUnofferedChoiceFallsBackToRandom(t *testing.T) {
	snap := buildSnapshot(t, punch())

	strong := testProgress("strong")
	strong.Speed = 30
	weak := testProgress("weak")
	weak.MaxHealth = 40

	p1 := mustParticipant(t, strong, snap)
	p2 := mustParticipant(t, weak, snap)

	engine := newEngine(t, &scriptedProvider{slots: []int{99}}, 300)
	outcome, err := engine.Run(context.Background(), p1, p2)
	require.NoError(t, err)

	assert.Equal(t, "strong", outcome.Winner.UserID)
}

func TestRunCancelledContext(t *testing.T) {
	snap := buildSnapshot(t, punch())

	p1 := mustParticipant(t, testProgress("u1"), snap)
	p2 := mustParticipant(t, testProgress("u2"), snap)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := newEngine(t, &scriptedProvider{}, 300)
	_, err := engine.Run(ctx, p1, p2)
	require.Error(t, err)
}

func TestRunStunnedActorSkipsARound(t *testing.T) {
	burst := fireball()
	burst.Name = "Overload"
	burst.Effect = entities.PowerEffectSelfStun

	snap := buildSnapshot(t, punch(), burst)

	fast := testProgress("fast")
	fast.Speed = 30
	fast.PowerSlots[0] = "Overload"
	slow := testProgress("slow")
	slow.Speed = 20
	slow.AttackPower = 0

	p1 := mustParticipant(t, fast, snap)
	p2 := mustParticipant(t, slow, snap)

	// round 1: overload, round 2: stunned, round 3 onward: basic
	provider := &scriptedProvider{slots: []int{1, 0, 0, 0, 0, 0, 0, 0, 0}}
	engine := newEngine(t, provider, 300)
	outcome, err := engine.Run(context.Background(), p1, p2)
	require.NoError(t, err)

	assert.Equal(t, "fast", outcome.Winner.UserID)
	// 250 health against 100-damage overload plus 50-damage punches:
	// dead on round 4 if every round lands, round 5 with one stunned
	// round skipped
	assert.Equal(t, 5, outcome.Rounds)
}
