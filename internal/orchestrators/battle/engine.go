package battle

import (
	"context"
	"log/slog"
	"time"

	"github.com/scrimmagebot/scrimmage/internal/errors"
	"github.com/scrimmagebot/scrimmage/internal/pkg/idgen"
	"github.com/scrimmagebot/scrimmage/internal/pkg/random"
)

// speedRollover keeps the speed accumulators bounded: once both sides
// pass it in the same round, both are reduced by it.
const speedRollover = 10000

// Config holds the dependencies and tuning for a battle engine
type Config struct {
	Choices     ChoiceProvider
	Roller      random.Roller
	IDGenerator idgen.Generator // optional, defaults to UUIDs
	TurnTimeout time.Duration
	RoundCap    int
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Choices == nil {
		vb.RequiredField("Choices")
	}
	if c.Roller == nil {
		vb.RequiredField("Roller")
	}
	if c.TurnTimeout <= 0 {
		vb.Field("TurnTimeout", "must be positive")
	}
	if c.RoundCap <= 0 {
		vb.Field("RoundCap", "must be positive")
	}

	return vb.Build()
}

// Engine drives a duel round by round. A single Engine is safe to reuse
// across duels; each Run call owns its two participants exclusively.
type Engine struct {
	choices     ChoiceProvider
	roller      random.Roller
	idGen       idgen.Generator
	turnTimeout time.Duration
	roundCap    int
}

// NewEngine creates a battle engine
func NewEngine(cfg *Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	idGen := cfg.IDGenerator
	if idGen == nil {
		idGen = idgen.NewUUID("duel")
	}

	return &Engine{
		choices:     cfg.Choices,
		roller:      cfg.Roller,
		idGen:       idGen,
		turnTimeout: cfg.TurnTimeout,
		roundCap:    cfg.RoundCap,
	}, nil
}

// Run executes the duel to completion. Each round both participants
// accumulate speed, the faster accumulator acts first, each living and
// ready actor picks one affordable move (or gets a random one on
// timeout), and round-end upkeep runs. The duel ends when a side is
// dead after upkeep, or in a draw at the round cap.
func (e *Engine) Run(ctx context.Context, p1, p2 *Participant) (*Outcome, error) {
	duelID := e.idGen.Generate()
	slog.InfoContext(ctx, "duel started",
		"duel_id", duelID,
		"participant1", p1.UserID,
		"participant2", p2.UserID,
	)

	var acc1, acc2 int

	for round := 1; round <= e.roundCap; round++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "duel cancelled")
		}

		acc1 += p1.Speed
		acc2 += p2.Speed

		first, second := p1, p2
		if acc1 <= acc2 {
			first, second = p2, p1
		}
		if acc1 >= speedRollover && acc2 >= speedRollover {
			acc1 -= speedRollover
			acc2 -= speedRollover
		}

		e.takeTurn(ctx, round, first, second)
		e.takeTurn(ctx, round, second, first)

		firstAlive := first.EndRound()
		secondAlive := second.EndRound()

		if !firstAlive || !secondAlive {
			// the first actor takes the win unless they are the
			// one who dropped; if both dropped, the second actor
			// takes it
			winner, loser := first, second
			if !firstAlive {
				winner, loser = second, first
			}

			slog.InfoContext(ctx, "duel finished",
				"duel_id", duelID,
				"winner", winner.UserID,
				"loser", loser.UserID,
				"rounds", round,
			)

			return &Outcome{Winner: winner, Loser: loser, Rounds: round}, nil
		}
	}

	slog.InfoContext(ctx, "duel hit the round cap, declaring a draw",
		"duel_id", duelID,
		"participant1", p1.UserID,
		"participant2", p2.UserID,
		"rounds", e.roundCap,
	)

	return &Outcome{Draw: true, Rounds: e.roundCap}, nil
}

func (e *Engine) takeTurn(ctx context.Context, round int, actor, opponent *Participant) {
	if !actor.Alive() || !actor.ReadyToAct {
		return
	}

	actions := actor.AffordableActions()
	action, ok := e.chooseAction(ctx, round, actor, opponent, actions)
	if !ok {
		action = actions[e.roller.IntN(len(actions))]
		slog.DebugContext(ctx, "no action chosen in time, picking one at random",
			"actor", actor.UserID,
			"round", round,
			"slot", action.Slot,
		)
	}

	opponent.Receive(actor.Attack(action))
}

// chooseAction asks the provider under the per-turn deadline. Any
// error, and any returned action that was not actually offered, counts
// as no choice.
func (e *Engine) chooseAction(ctx context.Context, round int, actor, opponent *Participant, actions []Action) (Action, bool) {
	turnCtx, cancel := context.WithTimeout(ctx, e.turnTimeout)
	defer cancel()

	chosen, err := e.choices.ChooseAction(turnCtx, round, actor, opponent, actions)
	if err != nil {
		return Action{}, false
	}

	for _, a := range actions {
		if a.Slot == chosen.Slot {
			return a, true
		}
	}
	return Action{}, false
}
