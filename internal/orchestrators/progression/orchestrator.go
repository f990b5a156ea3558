package progression

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/scrimmagebot/scrimmage/internal/entities"
	"github.com/scrimmagebot/scrimmage/internal/errors"
	"github.com/scrimmagebot/scrimmage/internal/pkg/random"
	"github.com/scrimmagebot/scrimmage/internal/repositories/progress"
)

// Experience rolls and level-up stat gains
const (
	activityExpLow  = 12
	activityExpHigh = 26

	levelUpPowerLow  = 7
	levelUpPowerHigh = 20
	levelUpSpeedLow  = 12
	levelUpSpeedHigh = 31
	levelUpHPLow     = 100
	levelUpHPHigh    = 150
	levelUpMPLow     = 25
	levelUpMPHigh    = 50
	levelUpSP        = 10

	trainGainLow  = 100
	trainGainHigh = 200
	trainSPCost   = 1

	// drawExpBonus is credited to both sides when a duel hits the
	// round cap
	drawExpBonus = 10000
)

// LevelThreshold is the experience needed to leave the given level
func LevelThreshold(level int) int {
	return 7*level*level + 43
}

// Config holds the dependencies for the progression orchestrator
type Config struct {
	ProgressRepo progress.Repository
	Catalog      SkillSource
	Roller       random.Roller
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.ProgressRepo == nil {
		vb.RequiredField("ProgressRepo")
	}
	if c.Catalog == nil {
		vb.RequiredField("Catalog")
	}
	if c.Roller == nil {
		vb.RequiredField("Roller")
	}

	return vb.Build()
}

// Orchestrator implements Service over the progress repository. A
// per-user advisory lock serializes mutations for the same user, so a
// duel payout and an activity grant can't interleave their
// read-modify-write cycles.
type Orchestrator struct {
	repo     progress.Repository
	catalog  SkillSource
	roller   random.Roller
	modifier atomic.Int64

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

var _ Service = (*Orchestrator)(nil)

// New creates a progression orchestrator
func New(cfg *Config) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	o := &Orchestrator{
		repo:    cfg.ProgressRepo,
		catalog: cfg.Catalog,
		roller:  cfg.Roller,
		locks:   make(map[string]*sync.Mutex),
	}
	o.modifier.Store(1)
	return o, nil
}

// Modifier returns the global activity experience multiplier
func (o *Orchestrator) Modifier() int {
	return int(o.modifier.Load())
}

// SetModifier replaces the global activity experience multiplier
func (o *Orchestrator) SetModifier(n int) {
	o.modifier.Store(int64(n))
}

func (o *Orchestrator) lockUser(userID string) func() {
	o.mu.Lock()
	lock, ok := o.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		o.locks[userID] = lock
	}
	o.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// GetProgress fetches a player's record
func (o *Orchestrator) GetProgress(ctx context.Context, input *GetProgressInput) (*GetProgressOutput, error) {
	if input == nil || input.UserID == "" {
		return nil, errors.InvalidArgument("user ID is required")
	}

	out, err := o.repo.Get(ctx, progress.GetInput{UserID: input.UserID})
	if err != nil {
		return nil, err
	}
	return &GetProgressOutput{Progress: out.Progress}, nil
}

// ApplyActivity grants experience and runs level-ups. The first grant
// for an unknown user seeds a fresh record whose starting experience is
// its own roll; an explicit amount is then credited on top.
func (o *Orchestrator) ApplyActivity(ctx context.Context, input *ApplyActivityInput) (*ApplyActivityOutput, error) {
	if input == nil || input.UserID == "" {
		return nil, errors.InvalidArgument("user ID is required")
	}

	unlock := o.lockUser(input.UserID)
	defer unlock()

	return o.grant(ctx, input.UserID, input.Amount, input.Cheat, 0)
}

// grant is the shared experience path. Callers must hold the user lock.
func (o *Orchestrator) grant(ctx context.Context, userID string, amount *int, cheat bool, winDelta int) (*ApplyActivityOutput, error) {
	getOut, err := o.repo.Get(ctx, progress.GetInput{UserID: userID})
	if errors.IsNotFound(err) {
		return o.seed(ctx, userID, amount, cheat, winDelta)
	}
	if err != nil {
		return nil, err
	}

	prog := getOut.Progress
	gained := 0
	if amount != nil {
		gained = *amount
	} else {
		gained = o.Modifier() * o.roller.Between(activityExpLow, activityExpHigh)
	}

	prog.Experience += gained
	prog.Wins += winDelta
	levels := o.levelUp(prog, cheat)

	if _, err := o.repo.Update(ctx, progress.UpdateInput{Progress: prog}); err != nil {
		return nil, err
	}

	if levels > 0 {
		slog.InfoContext(ctx, "player leveled up",
			"user_id", userID,
			"level", prog.Level,
			"levels_gained", levels,
		)
	}

	return &ApplyActivityOutput{
		Progress:     prog,
		Gained:       gained,
		LevelsGained: levels,
	}, nil
}

func (o *Orchestrator) seed(ctx context.Context, userID string, amount *int, cheat bool, winDelta int) (*ApplyActivityOutput, error) {
	seedExp := o.roller.Between(activityExpLow, activityExpHigh)
	prog := entities.NewPlayerProgress(userID, seedExp)
	prog.Wins += winDelta

	gained := seedExp
	if amount != nil {
		prog.Experience += *amount
		gained = *amount
	}
	levels := o.levelUp(prog, cheat)

	if _, err := o.repo.Create(ctx, progress.CreateInput{Progress: prog}); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "seeded new player record",
		"user_id", userID,
		"experience", prog.Experience,
	)

	return &ApplyActivityOutput{
		Progress:     prog,
		Created:      true,
		Gained:       gained,
		LevelsGained: levels,
	}, nil
}

// levelUp crosses as many thresholds as the current experience allows.
// Cheat grants keep their experience, which still terminates because the
// threshold grows with each level.
func (o *Orchestrator) levelUp(prog *entities.PlayerProgress, cheat bool) int {
	levels := 0
	for prog.Experience >= LevelThreshold(prog.Level) {
		threshold := LevelThreshold(prog.Level)
		prog.AttackPower += o.roller.Between(levelUpPowerLow, levelUpPowerHigh)
		prog.Speed += o.roller.Between(levelUpSpeedLow, levelUpSpeedHigh)
		prog.MaxHealth += o.roller.Between(levelUpHPLow, levelUpHPHigh)
		prog.MaxEnergy += o.roller.Between(levelUpMPLow, levelUpMPHigh)
		prog.Level++
		prog.SkillPoints += levelUpSP
		if !cheat {
			prog.Experience -= threshold
		}
		levels++
	}
	return levels
}

// scaledAward applies a side's exp-boost special to a base award
func scaledAward(base int, boostPercent float64) int {
	if boostPercent == 0 {
		return base
	}
	return int(math.Round(float64(base) * (1 + boostPercent/100)))
}

// ApplyBattleResult credits both sides of a duel: the round count as
// experience (scaled by each side's exp-boost special), plus a win for
// the winner. Draws award a fixed bonus to both and no win.
func (o *Orchestrator) ApplyBattleResult(ctx context.Context, input *ApplyBattleResultInput) (*ApplyBattleResultOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Winner.UserID == "" || input.Loser.UserID == "" {
		return nil, errors.InvalidArgument("both participants are required")
	}

	base := input.Rounds
	winDelta := 1
	if input.Draw {
		base = drawExpBonus
		winDelta = 0
	}

	winnerAmount := scaledAward(base, input.Winner.ExpBoostPercent)
	loserAmount := scaledAward(base, input.Loser.ExpBoostPercent)

	unlockWinner := o.lockUser(input.Winner.UserID)
	winnerOut, err := o.grant(ctx, input.Winner.UserID, &winnerAmount, false, winDelta)
	unlockWinner()
	if err != nil {
		return nil, errors.Wrap(err, "failed to credit winner")
	}

	unlockLoser := o.lockUser(input.Loser.UserID)
	loserOut, err := o.grant(ctx, input.Loser.UserID, &loserAmount, false, 0)
	unlockLoser()
	if err != nil {
		return nil, errors.Wrap(err, "failed to credit loser")
	}

	return &ApplyBattleResultOutput{
		WinnerGained: winnerOut.Gained,
		LoserGained:  loserOut.Gained,
	}, nil
}

// LearnSkill spends skill points on a catalog skill
func (o *Orchestrator) LearnSkill(ctx context.Context, input *LearnSkillInput) (*LearnSkillOutput, error) {
	if input == nil || input.UserID == "" || input.SkillName == "" {
		return nil, errors.InvalidArgument("user ID and skill name are required")
	}

	unlock := o.lockUser(input.UserID)
	defer unlock()

	getOut, err := o.repo.Get(ctx, progress.GetInput{UserID: input.UserID})
	if err != nil {
		return nil, err
	}
	prog := getOut.Progress

	snap, err := o.catalog.Current()
	if err != nil {
		return nil, err
	}
	skill, ok := snap.Find(input.SkillName)
	if !ok {
		return nil, errors.NotFoundf("no skill named %q", input.SkillName)
	}

	if prog.HasLearned(input.SkillName) {
		return nil, errors.AlreadyExistsf("you already learned %q", input.SkillName)
	}

	cost := skill.Meta().SPCost
	if prog.SkillPoints < cost {
		return nil, errors.FailedPreconditionf("learning %q costs %d SP, you have %d",
			input.SkillName, cost, prog.SkillPoints)
	}

	prog.SkillPoints -= cost
	prog.Learned = append(prog.Learned, input.SkillName)

	if _, err := o.repo.Update(ctx, progress.UpdateInput{Progress: prog}); err != nil {
		return nil, err
	}

	return &LearnSkillOutput{Progress: prog, Skill: skill, SPCost: cost}, nil
}

// EquipSkill slots a learned skill. Basic and special skills replace
// the single equipped one; power and passive skills go into the 1-based
// slot given in the input.
func (o *Orchestrator) EquipSkill(ctx context.Context, input *EquipSkillInput) (*EquipSkillOutput, error) {
	if input == nil || input.UserID == "" || input.SkillName == "" {
		return nil, errors.InvalidArgument("user ID and skill name are required")
	}

	unlock := o.lockUser(input.UserID)
	defer unlock()

	getOut, err := o.repo.Get(ctx, progress.GetInput{UserID: input.UserID})
	if err != nil {
		return nil, err
	}
	prog := getOut.Progress

	snap, err := o.catalog.Current()
	if err != nil {
		return nil, err
	}
	skill, ok := snap.Find(input.SkillName)
	if !ok {
		return nil, errors.NotFoundf("no skill named %q", input.SkillName)
	}

	if !prog.HasLearned(input.SkillName) {
		return nil, errors.FailedPreconditionf("you have not learned %q yet", input.SkillName)
	}

	switch skill.Category() {
	case entities.CategoryBasic:
		prog.Basic = input.SkillName
	case entities.CategorySpecial:
		prog.Special = input.SkillName
	case entities.CategoryPower:
		if err := equipSlot(prog.PowerSlots, input.Slot, input.SkillName); err != nil {
			return nil, err
		}
	case entities.CategoryPassive:
		if err := equipSlot(prog.PassiveSlots, input.Slot, input.SkillName); err != nil {
			return nil, err
		}
	}

	if _, err := o.repo.Update(ctx, progress.UpdateInput{Progress: prog}); err != nil {
		return nil, err
	}

	return &EquipSkillOutput{Progress: prog, Category: skill.Category()}, nil
}

func equipSlot(slots []string, slot int, name string) error {
	if slot < 1 || slot > len(slots) {
		return errors.InvalidArgumentf("slot must be between 1 and %d", len(slots))
	}
	for _, equipped := range slots {
		if equipped == name {
			return errors.FailedPreconditionf("%q is already equipped", name)
		}
	}
	slots[slot-1] = name
	return nil
}

// TrainStat spends one skill point for a random boost to one stat
func (o *Orchestrator) TrainStat(ctx context.Context, input *TrainStatInput) (*TrainStatOutput, error) {
	if input == nil || input.UserID == "" {
		return nil, errors.InvalidArgument("user ID is required")
	}
	if input.Stat < StatHealth || input.Stat > StatSpeed {
		return nil, errors.InvalidArgumentf("unknown stat %d", input.Stat)
	}

	unlock := o.lockUser(input.UserID)
	defer unlock()

	getOut, err := o.repo.Get(ctx, progress.GetInput{UserID: input.UserID})
	if err != nil {
		return nil, err
	}
	prog := getOut.Progress

	if prog.SkillPoints < trainSPCost {
		return nil, errors.FailedPrecondition("you have no SP to spend")
	}

	gained := o.roller.Between(trainGainLow, trainGainHigh)
	prog.SkillPoints -= trainSPCost
	switch input.Stat {
	case StatHealth:
		prog.MaxHealth += gained
	case StatEnergy:
		prog.MaxEnergy += gained
	case StatPower:
		prog.AttackPower += gained
	case StatSpeed:
		prog.Speed += gained
	}

	if _, err := o.repo.Update(ctx, progress.UpdateInput{Progress: prog}); err != nil {
		return nil, err
	}

	return &TrainStatOutput{Progress: prog, Gained: gained}, nil
}

// DeleteProgress removes a player's record entirely
func (o *Orchestrator) DeleteProgress(ctx context.Context, input *DeleteProgressInput) (*DeleteProgressOutput, error) {
	if input == nil || input.UserID == "" {
		return nil, errors.InvalidArgument("user ID is required")
	}

	unlock := o.lockUser(input.UserID)
	defer unlock()

	if _, err := o.repo.Delete(ctx, progress.DeleteInput{UserID: input.UserID}); err != nil {
		return nil, err
	}
	return &DeleteProgressOutput{}, nil
}
