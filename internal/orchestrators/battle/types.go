// Package battle runs a duel between two player snapshots: turn order,
// action prompts, damage resolution, and round-end upkeep.
package battle

import (
	"context"

	"github.com/scrimmagebot/scrimmage/internal/entities"
)

// Action is one selectable move for an acting participant. Slot 0 is
// always the basic attack; slots 1..5 index the equipped power moves.
type Action struct {
	Slot  int
	Skill entities.Skill
}

// Strike is a resolved attack on its way to the defender. Amount is the
// raw damage before the defender's resistance and damage cap apply.
type Strike struct {
	Category entities.AttackType
	Amount   float64
	Effect   entities.PowerEffect
}

// ChoiceProvider supplies each acting participant's move. The engine
// calls it once per actor per round with the affordable actions and a
// context carrying the per-turn deadline; returning an error (or an
// action that was not offered) makes the engine fall back to a random
// affordable action, so a stalled player can never hang a duel.
type ChoiceProvider interface {
	ChooseAction(ctx context.Context, round int, actor, opponent *Participant, actions []Action) (Action, error)
}

// Outcome is the result of a finished duel. Winner and Loser are nil
// when the round cap forced a draw.
type Outcome struct {
	Winner *Participant
	Loser  *Participant
	Draw   bool
	Rounds int
}
