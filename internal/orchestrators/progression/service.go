// Package progression owns every durable mutation of a player's
// record: activity experience, level-ups, battle rewards, learning and
// equipping skills, and stat training.
package progression

//go:generate mockgen -destination=mock/mock_service.go -package=progressionmock github.com/scrimmagebot/scrimmage/internal/orchestrators/progression Service

import (
	"context"

	"github.com/scrimmagebot/scrimmage/internal/catalog"
	"github.com/scrimmagebot/scrimmage/internal/entities"
)

// Stat identifies a trainable stat
type Stat int

// Trainable stats
const (
	StatHealth Stat = iota
	StatEnergy
	StatPower
	StatSpeed
)

// String returns the display name of the stat
func (s Stat) String() string {
	switch s {
	case StatHealth:
		return "Health"
	case StatEnergy:
		return "Energy"
	case StatPower:
		return "Power"
	case StatSpeed:
		return "Speed"
	default:
		return "Unknown"
	}
}

// SkillSource provides the current skill catalog snapshot
type SkillSource interface {
	Current() (*catalog.Snapshot, error)
}

// Service defines the progression operations
type Service interface {
	// GetProgress fetches a player's record
	GetProgress(ctx context.Context, input *GetProgressInput) (*GetProgressOutput, error)

	// ApplyActivity grants experience for incidental activity, creating
	// a seeded record on first contact, and runs any level-ups
	ApplyActivity(ctx context.Context, input *ApplyActivityInput) (*ApplyActivityOutput, error)

	// ApplyBattleResult credits both sides of a finished duel
	ApplyBattleResult(ctx context.Context, input *ApplyBattleResultInput) (*ApplyBattleResultOutput, error)

	// LearnSkill spends skill points to add a skill to the player's
	// learned list
	LearnSkill(ctx context.Context, input *LearnSkillInput) (*LearnSkillOutput, error)

	// EquipSkill slots a learned skill into the matching equipment slot
	EquipSkill(ctx context.Context, input *EquipSkillInput) (*EquipSkillOutput, error)

	// TrainStat spends one skill point on a random boost to one stat
	TrainStat(ctx context.Context, input *TrainStatInput) (*TrainStatOutput, error)

	// DeleteProgress removes a player's record entirely
	DeleteProgress(ctx context.Context, input *DeleteProgressInput) (*DeleteProgressOutput, error)

	// Modifier returns the global activity experience multiplier
	Modifier() int

	// SetModifier replaces the global activity experience multiplier
	SetModifier(n int)
}

// GetProgressInput defines the input for fetching a record
type GetProgressInput struct {
	UserID string
}

// GetProgressOutput defines the output for fetching a record
type GetProgressOutput struct {
	Progress *entities.PlayerProgress
}

// ApplyActivityInput defines the input for an activity grant
type ApplyActivityInput struct {
	UserID string

	// Amount is an explicit grant. When nil the grant is rolled as
	// modifier * [12, 26].
	Amount *int

	// Cheat marks an administrative grant: level-ups triggered by it do
	// not consume experience
	Cheat bool
}

// ApplyActivityOutput defines the output for an activity grant
type ApplyActivityOutput struct {
	Progress *entities.PlayerProgress

	// Created is true when this grant seeded a brand-new record
	Created bool

	// Gained is the experience credited by this call
	Gained int

	// LevelsGained counts thresholds crossed by this grant
	LevelsGained int
}

// BattleSide identifies one duel participant and their exp-boost
// special, if any
type BattleSide struct {
	UserID          string
	ExpBoostPercent float64
}

// ApplyBattleResultInput defines the input for crediting a duel
type ApplyBattleResultInput struct {
	// Winner and Loser are interchangeable labels on a draw
	Winner BattleSide
	Loser  BattleSide

	// Rounds the duel lasted; it is also the base experience award
	Rounds int

	// Draw duels award a large fixed bonus to both sides and no win
	Draw bool
}

// ApplyBattleResultOutput defines the output for crediting a duel
type ApplyBattleResultOutput struct {
	WinnerGained int
	LoserGained  int
}

// LearnSkillInput defines the input for learning a skill
type LearnSkillInput struct {
	UserID    string
	SkillName string
}

// LearnSkillOutput defines the output for learning a skill
type LearnSkillOutput struct {
	Progress *entities.PlayerProgress
	Skill    entities.Skill
	SPCost   int
}

// EquipSkillInput defines the input for equipping a skill. Slot is
// 1-based and only consulted for power and passive skills.
type EquipSkillInput struct {
	UserID    string
	SkillName string
	Slot      int
}

// EquipSkillOutput defines the output for equipping a skill
type EquipSkillOutput struct {
	Progress *entities.PlayerProgress
	Category entities.SkillCategory
}

// TrainStatInput defines the input for training a stat
type TrainStatInput struct {
	UserID string
	Stat   Stat
}

// TrainStatOutput defines the output for training a stat
type TrainStatOutput struct {
	Progress *entities.PlayerProgress
	Gained   int
}

// DeleteProgressInput defines the input for deleting a record
type DeleteProgressInput struct {
	UserID string
}

// DeleteProgressOutput defines the output for deleting a record
type DeleteProgressOutput struct{}
