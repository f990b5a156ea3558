package battle_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrimmagebot/scrimmage/internal/catalog"
	"github.com/scrimmagebot/scrimmage/internal/entities"
	"github.com/scrimmagebot/scrimmage/internal/errors"
	"github.com/scrimmagebot/scrimmage/internal/orchestrators/battle"
)

func buildSnapshot(t *testing.T, defs ...entities.Skill) *catalog.Snapshot {
	t.Helper()

	records := make([]*entities.SkillRecord, 0, len(defs))
	for _, def := range defs {
		records = append(records, entities.EncodeSkill(def))
	}
	return catalog.BuildSnapshot(context.Background(), records)
}

func punch() *entities.BasicSkill {
	return &entities.BasicSkill{
		SkillMeta:     entities.SkillMeta{Name: "Punch", SPCost: 5},
		Type:          entities.AttackStrike,
		DamagePercent: 50,
	}
}

func fireball() *entities.PowerSkill {
	return &entities.PowerSkill{
		SkillMeta:     entities.SkillMeta{Name: "Fireball", SPCost: 20},
		Type:          entities.AttackArcane,
		DamagePercent: 100,
		EnergyCost:    50,
	}
}

func testProgress(userID string) *entities.PlayerProgress {
	prog := entities.NewPlayerProgress(userID, 20)
	prog.AttackPower = 100
	prog.MaxHealth = 250
	prog.MaxEnergy = 100
	return prog
}

func mustParticipant(t *testing.T, prog *entities.PlayerProgress, snap *catalog.Snapshot) *battle.Participant {
	t.Helper()

	p, err := battle.NewParticipant(prog, snap, prog.UserID)
	require.NoError(t, err)
	return p
}

func TestNewParticipantMissingBasic(t *testing.T) {
	snap := buildSnapshot(t, fireball())

	_, err := battle.NewParticipant(testProgress("u1"), snap, "u1")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestNewParticipantAccumulatesPassives(t *testing.T) {
	snap := buildSnapshot(t,
		punch(),
		&entities.PassiveSkill{
			SkillMeta:       entities.SkillMeta{Name: "Iron Skin"},
			Effect:          entities.PassiveResist,
			AppliesTo:       entities.AppliesAll,
			ModifierPercent: 15,
		},
		&entities.PassiveSkill{
			SkillMeta:       entities.SkillMeta{Name: "Ward"},
			Effect:          entities.PassiveResist,
			AppliesTo:       entities.AppliesTo(entities.AttackArcane),
			ModifierPercent: 10,
		},
		&entities.PassiveSkill{
			SkillMeta:       entities.SkillMeta{Name: "Sharpened Blades"},
			Effect:          entities.PassiveBoost,
			AppliesTo:       entities.AppliesTo(entities.AttackStrike),
			ModifierPercent: 20,
		},
	)

	prog := testProgress("u1")
	prog.PassiveSlots = []string{"Iron Skin", "Ward", "Sharpened Blades", entities.EmptySlot, entities.EmptySlot}

	p := mustParticipant(t, prog, snap)

	assert.Equal(t, [4]float64{15, 15, 25, 15}, p.Resist)
	assert.Equal(t, [4]float64{20, 0, 0, 0}, p.Boost)
}

func TestNewParticipantSkipsUnknownEquips(t *testing.T) {
	snap := buildSnapshot(t, punch())

	prog := testProgress("u1")
	prog.PowerSlots = []string{"Gone", entities.EmptySlot, entities.EmptySlot, entities.EmptySlot, entities.EmptySlot}
	prog.PassiveSlots = []string{"AlsoGone", entities.EmptySlot, entities.EmptySlot, entities.EmptySlot, entities.EmptySlot}
	prog.Special = "Missing"

	p := mustParticipant(t, prog, snap)

	assert.Nil(t, p.Powers[0])
	assert.Nil(t, p.Special)
	assert.Len(t, p.AffordableActions(), 1)
}

func TestAffordableActions(t *testing.T) {
	expensive := fireball()
	expensive.Name = "Meteor"
	expensive.EnergyCost = 150

	snap := buildSnapshot(t, punch(), fireball(), expensive)

	prog := testProgress("u1")
	prog.PowerSlots = []string{"Fireball", "Meteor", entities.EmptySlot, entities.EmptySlot, entities.EmptySlot}

	p := mustParticipant(t, prog, snap)

	actions := p.AffordableActions()
	require.Len(t, actions, 2)
	assert.Equal(t, 0, actions[0].Slot)
	assert.Equal(t, 1, actions[1].Slot)
	assert.Equal(t, "Fireball", actions[1].Skill.Meta().Name)
}

func TestAttackBasicDamage(t *testing.T) {
	snap := buildSnapshot(t, punch())
	p := mustParticipant(t, testProgress("u1"), snap)

	strike := p.Attack(p.AffordableActions()[0])

	assert.Equal(t, entities.AttackStrike, strike.Category)
	assert.InDelta(t, 50, strike.Amount, 0.0001)
	assert.Equal(t, entities.PowerEffectNone, strike.Effect)
}

func TestAttackAppliesBoost(t *testing.T) {
	snap := buildSnapshot(t,
		punch(),
		&entities.PassiveSkill{
			SkillMeta:       entities.SkillMeta{Name: "Sharpened Blades"},
			Effect:          entities.PassiveBoost,
			AppliesTo:       entities.AppliesTo(entities.AttackStrike),
			ModifierPercent: 20,
		},
	)

	prog := testProgress("u1")
	prog.PassiveSlots[0] = "Sharpened Blades"
	p := mustParticipant(t, prog, snap)

	strike := p.Attack(p.AffordableActions()[0])
	assert.InDelta(t, 60, strike.Amount, 0.0001)
}

func TestAttackPowerDeductsEnergy(t *testing.T) {
	snap := buildSnapshot(t, punch(), fireball())

	prog := testProgress("u1")
	prog.PowerSlots[0] = "Fireball"
	p := mustParticipant(t, prog, snap)

	strike := p.Attack(p.AffordableActions()[1])

	assert.InDelta(t, 100, strike.Amount, 0.0001)
	assert.InDelta(t, 50, p.Energy, 0.0001)
}

func TestAttackLifesteal(t *testing.T) {
	drain := fireball()
	drain.Name = "Drain"
	drain.Effect = entities.PowerEffectLifesteal

	snap := buildSnapshot(t, punch(), drain)

	prog := testProgress("u1")
	prog.PowerSlots[0] = "Drain"
	p := mustParticipant(t, prog, snap)
	p.Health = 100

	p.Attack(p.AffordableActions()[1])

	// 2.5% of 100 raw damage, rounded
	assert.InDelta(t, 103, p.Health, 0.0001)
}

func TestAttackRecoil(t *testing.T) {
	slam := fireball()
	slam.Name = "Reckless Slam"
	slam.Effect = entities.PowerEffectRecoil

	snap := buildSnapshot(t, punch(), slam)

	prog := testProgress("u1")
	prog.PowerSlots[0] = "Reckless Slam"
	p := mustParticipant(t, prog, snap)

	p.Attack(p.AffordableActions()[1])

	// 7% of 100 raw damage, rounded
	assert.InDelta(t, 243, p.Health, 0.0001)
}

func TestAttackSelfStun(t *testing.T) {
	burst := fireball()
	burst.Name = "Overload"
	burst.Effect = entities.PowerEffectSelfStun

	snap := buildSnapshot(t, punch(), burst)

	prog := testProgress("u1")
	prog.PowerSlots[0] = "Overload"
	p := mustParticipant(t, prog, snap)

	p.Attack(p.AffordableActions()[1])
	assert.False(t, p.ReadyToAct)

	// the stun consumes this round's recovery, then clears
	p.EndRound()
	assert.False(t, p.ReadyToAct)
	p.EndRound()
	assert.True(t, p.ReadyToAct)
}

func TestPowerImmunityNegatesRiders(t *testing.T) {
	slam := fireball()
	slam.Name = "Reckless Slam"
	slam.Effect = entities.PowerEffectRecoil

	snap := buildSnapshot(t,
		punch(), slam,
		&entities.SpecialSkill{
			SkillMeta: entities.SkillMeta{Name: "Unshakable"},
			Effect:    entities.SpecialPowerImmunity,
		},
	)

	prog := testProgress("u1")
	prog.PowerSlots[0] = "Reckless Slam"
	prog.Special = "Unshakable"
	p := mustParticipant(t, prog, snap)

	p.Attack(p.AffordableActions()[1])

	assert.InDelta(t, 250, p.Health, 0.0001)
	assert.True(t, p.ReadyToAct)
}

func TestReceiveResist(t *testing.T) {
	snap := buildSnapshot(t, punch())

	prog := testProgress("u1")
	p := mustParticipant(t, prog, snap)
	p.Resist[entities.AttackStrike] = 20

	p.Receive(battle.Strike{Category: entities.AttackStrike, Amount: 50})

	assert.InDelta(t, 210, p.Health, 0.0001)
}

func TestReceiveResistHalves(t *testing.T) {
	snap := buildSnapshot(t, punch())

	p := mustParticipant(t, testProgress("u1"), snap)
	p.Resist[entities.AttackStrike] = 50

	p.Receive(battle.Strike{Category: entities.AttackStrike, Amount: 50})

	assert.InDelta(t, 225, p.Health, 0.0001)
}

func TestReceivePierceIgnoresResist(t *testing.T) {
	snap := buildSnapshot(t, punch())

	p := mustParticipant(t, testProgress("u1"), snap)
	p.Resist[entities.AttackStrike] = 50

	p.Receive(battle.Strike{
		Category: entities.AttackStrike,
		Amount:   50,
		Effect:   entities.PowerEffectPierce,
	})

	assert.InDelta(t, 200, p.Health, 0.0001)
}

func TestReceiveDamageCap(t *testing.T) {
	snap := buildSnapshot(t,
		punch(),
		&entities.SpecialSkill{
			SkillMeta:       entities.SkillMeta{Name: "Stone Wall"},
			Effect:          entities.SpecialDamageCap,
			ModifierPercent: 10,
		},
	)

	prog := testProgress("u1")
	prog.Special = "Stone Wall"
	p := mustParticipant(t, prog, snap)

	p.Receive(battle.Strike{Category: entities.AttackStrike, Amount: 400})

	// capped at 10% of 250 max health
	assert.InDelta(t, 225, p.Health, 0.0001)
}

func TestReceiveFloorsAtZero(t *testing.T) {
	snap := buildSnapshot(t, punch())
	p := mustParticipant(t, testProgress("u1"), snap)

	p.Receive(battle.Strike{Category: entities.AttackStrike, Amount: 9999})

	assert.Equal(t, float64(0), p.Health)
	assert.False(t, p.Alive())
}

func TestEndRoundRegenAndClamp(t *testing.T) {
	snap := buildSnapshot(t,
		punch(),
		&entities.PassiveSkill{
			SkillMeta:       entities.SkillMeta{Name: "Troll Blood"},
			Effect:          entities.PassiveHealthRegen,
			ModifierPercent: 4,
		},
		&entities.PassiveSkill{
			SkillMeta:       entities.SkillMeta{Name: "Clarity"},
			Effect:          entities.PassiveEnergyRegen,
			ModifierPercent: 10,
		},
	)

	prog := testProgress("u1")
	prog.PassiveSlots = []string{"Troll Blood", "Clarity", entities.EmptySlot, entities.EmptySlot, entities.EmptySlot}
	p := mustParticipant(t, prog, snap)
	p.Health = 100
	p.Energy = 30

	alive := p.EndRound()
	require.True(t, alive)

	// +4% of 250 health, +10% of 100 energy plus the flat 10
	assert.InDelta(t, 110, p.Health, 0.0001)
	assert.InDelta(t, 50, p.Energy, 0.0001)

	p.Health = p.MaxHealth
	p.Energy = p.MaxEnergy
	p.EndRound()
	assert.InDelta(t, p.MaxHealth, p.Health, 0.0001)
	assert.InDelta(t, p.MaxEnergy, p.Energy, 0.0001)
}

func TestEndRoundNoHealthRegenWhenDead(t *testing.T) {
	snap := buildSnapshot(t,
		punch(),
		&entities.PassiveSkill{
			SkillMeta:       entities.SkillMeta{Name: "Troll Blood"},
			Effect:          entities.PassiveHealthRegen,
			ModifierPercent: 4,
		},
	)

	prog := testProgress("u1")
	prog.PassiveSlots[0] = "Troll Blood"
	p := mustParticipant(t, prog, snap)
	p.Health = 0

	alive := p.EndRound()

	assert.False(t, alive)
	assert.Equal(t, float64(0), p.Health)
}

func TestEndRoundScalingBoost(t *testing.T) {
	snap := buildSnapshot(t,
		punch(),
		&entities.SpecialSkill{
			SkillMeta:       entities.SkillMeta{Name: "Battle Fury"},
			Effect:          entities.SpecialScalingBoost,
			ModifierPercent: 2,
		},
	)

	prog := testProgress("u1")
	prog.Special = "Battle Fury"
	p := mustParticipant(t, prog, snap)

	p.EndRound()
	p.EndRound()

	assert.Equal(t, [4]float64{4, 4, 4, 4}, p.Boost)
}

func TestReviveTriggersExactlyOnce(t *testing.T) {
	snap := buildSnapshot(t,
		punch(),
		&entities.SpecialSkill{
			SkillMeta:       entities.SkillMeta{Name: "Second Wind"},
			Effect:          entities.SpecialRevive,
			ModifierPercent: 30,
		},
	)

	prog := testProgress("u1")
	prog.Special = "Second Wind"
	p := mustParticipant(t, prog, snap)

	p.Receive(battle.Strike{Category: entities.AttackStrike, Amount: 9999})
	alive := p.EndRound()

	require.True(t, alive)
	assert.InDelta(t, 75, p.Health, 0.0001)

	p.Receive(battle.Strike{Category: entities.AttackStrike, Amount: 9999})
	alive = p.EndRound()

	assert.False(t, alive)
	assert.Equal(t, float64(0), p.Health)
}

func TestExpBoostPercent(t *testing.T) {
	snap := buildSnapshot(t,
		punch(),
		&entities.SpecialSkill{
			SkillMeta:       entities.SkillMeta{Name: "Scholar"},
			Effect:          entities.SpecialExpBoost,
			ModifierPercent: 25,
		},
	)

	plain := mustParticipant(t, testProgress("u1"), snap)
	assert.Equal(t, float64(0), plain.ExpBoostPercent())

	prog := testProgress("u2")
	prog.Special = "Scholar"
	boosted := mustParticipant(t, prog, snap)
	assert.Equal(t, float64(25), boosted.ExpBoostPercent())
}
