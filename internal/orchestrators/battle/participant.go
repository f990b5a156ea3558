package battle

import (
	"math"

	"github.com/scrimmagebot/scrimmage/internal/catalog"
	"github.com/scrimmagebot/scrimmage/internal/entities"
	"github.com/scrimmagebot/scrimmage/internal/errors"
)

// Fractions of raw power damage fed back to (or taken from) the
// attacker by rider effects.
const (
	lifestealFraction   = 0.025
	manastealFraction   = 0.05
	hybridStealFraction = 0.01
	recoilFraction      = 0.07
)

// baseEnergyRegen is recovered by every participant each round on top
// of any energy-regen passives
const baseEnergyRegen = 10

// Participant is the in-battle snapshot of one player. It is built once
// from the durable progress record and the skill catalog, then mutated
// only by the duel that owns it. Health and energy are floats so regen
// fractions accumulate; they are rounded when damage lands.
type Participant struct {
	UserID string
	Name   string

	MaxHealth   float64
	Health      float64
	MaxEnergy   float64
	Energy      float64
	AttackPower float64
	Speed       int

	Basic   *entities.BasicSkill
	Special *entities.SpecialSkill
	Powers  [entities.PowerSlotCount]*entities.PowerSkill

	// Resist and Boost are percentages indexed by attack type,
	// accumulated from the equipped passives.
	Resist [entities.AttackTypeCount]float64
	Boost  [entities.AttackTypeCount]float64

	ReadyToAct bool

	regen           [2]float64 // absolute health/energy per round
	reviveThreshold float64    // percent of max health; consumed on use
	exhausted       bool       // stunned this round, skips the next
}

// NewParticipant resolves a progress record against the catalog. The
// equipped basic attack must resolve; equipped powers, passives, and the
// special that have dropped out of the catalog are silently left unset.
func NewParticipant(prog *entities.PlayerProgress, snap *catalog.Snapshot, name string) (*Participant, error) {
	basic := snap.FindBasic(prog.Basic)
	if basic == nil {
		return nil, errors.NotFoundf("basic attack %q is not in the skill catalog", prog.Basic)
	}

	p := &Participant{
		UserID:      prog.UserID,
		Name:        name,
		MaxHealth:   float64(prog.MaxHealth),
		Health:      float64(prog.MaxHealth),
		MaxEnergy:   float64(prog.MaxEnergy),
		Energy:      float64(prog.MaxEnergy),
		AttackPower: float64(prog.AttackPower),
		Speed:       prog.Speed,
		Basic:       basic,
		ReadyToAct:  true,
	}

	if prog.Special != "" && prog.Special != entities.EmptySlot {
		p.Special = snap.FindSpecial(prog.Special)
	}
	if p.Special != nil && p.Special.Effect == entities.SpecialRevive {
		p.reviveThreshold = p.Special.ModifierPercent
	}

	for i, slot := range prog.PowerSlots {
		if i >= entities.PowerSlotCount {
			break
		}
		if slot == entities.EmptySlot {
			continue
		}
		p.Powers[i] = snap.FindPower(slot)
	}

	var regenPercent [2]float64
	for _, slot := range prog.PassiveSlots {
		if slot == entities.EmptySlot {
			continue
		}
		passive := snap.FindPassive(slot)
		if passive == nil {
			continue
		}
		switch passive.Effect {
		case entities.PassiveResist:
			p.applyToTypes(&p.Resist, passive)
		case entities.PassiveBoost:
			p.applyToTypes(&p.Boost, passive)
		case entities.PassiveHealthRegen:
			regenPercent[0] += passive.ModifierPercent
		case entities.PassiveEnergyRegen:
			regenPercent[1] += passive.ModifierPercent
		}
	}
	p.regen[0] = p.MaxHealth * regenPercent[0] / 100
	p.regen[1] = p.MaxEnergy * regenPercent[1] / 100

	return p, nil
}

func (p *Participant) applyToTypes(arr *[entities.AttackTypeCount]float64, passive *entities.PassiveSkill) {
	if passive.AppliesTo == entities.AppliesAll {
		for i := range arr {
			arr[i] += passive.ModifierPercent
		}
		return
	}
	arr[passive.AppliesTo] += passive.ModifierPercent
}

// Alive reports whether the participant still has health left
func (p *Participant) Alive() bool {
	return p.Health > 0
}

// ExpBoostPercent returns the equipped special's experience bonus, or 0
func (p *Participant) ExpBoostPercent() float64 {
	if p.Special != nil && p.Special.Effect == entities.SpecialExpBoost {
		return p.Special.ModifierPercent
	}
	return 0
}

func (p *Participant) immuneToRiders() bool {
	return p.Special != nil && p.Special.Effect == entities.SpecialPowerImmunity
}

// AffordableActions lists the moves the participant can pay for right
// now. The basic attack is always affordable; a power move requires
// enough energy to cover its cost.
func (p *Participant) AffordableActions() []Action {
	actions := []Action{{Slot: 0, Skill: p.Basic}}
	for i, power := range p.Powers {
		if power == nil {
			continue
		}
		if p.Energy-float64(power.EnergyCost) >= 0 {
			actions = append(actions, Action{Slot: i + 1, Skill: power})
		}
	}
	return actions
}

// Attack resolves the chosen action into a Strike and applies its cost
// and rider effects to the attacker. Raw damage for both basic and
// power moves is (damage% of attack power) scaled by the attacker's
// category boost.
func (p *Participant) Attack(action Action) Strike {
	switch skill := action.Skill.(type) {
	case *entities.BasicSkill:
		raw := skill.DamagePercent / 100 * p.AttackPower
		raw *= 1 + p.Boost[skill.Type]/100
		return Strike{Category: skill.Type, Amount: raw}

	case *entities.PowerSkill:
		p.Energy -= float64(skill.EnergyCost)

		raw := skill.DamagePercent / 100 * p.AttackPower
		raw *= 1 + p.Boost[skill.Type]/100

		switch skill.Effect {
		case entities.PowerEffectLifesteal:
			p.Health += math.Round(lifestealFraction * raw)
		case entities.PowerEffectManasteal:
			p.Energy += math.Round(manastealFraction * raw)
		case entities.PowerEffectHybridSteal:
			gain := math.Round(hybridStealFraction * raw)
			p.Health += gain
			p.Energy += gain
		case entities.PowerEffectRecoil:
			if !p.immuneToRiders() {
				p.Health -= math.Round(recoilFraction * raw)
			}
		case entities.PowerEffectSelfStun:
			if !p.immuneToRiders() {
				p.ReadyToAct = false
				p.exhausted = true
			}
		}
		p.clampVitals()

		return Strike{Category: skill.Type, Amount: raw, Effect: skill.Effect}

	default:
		return Strike{}
	}
}

// Receive applies an incoming strike: resistance (unless the strike
// pierces), the damage-cap special, then subtraction floored at 0 and
// rounded to the nearest integer.
func (p *Participant) Receive(strike Strike) {
	damage := strike.Amount
	if strike.Effect != entities.PowerEffectPierce {
		damage -= damage * p.Resist[strike.Category] / 100
	}

	if p.Special != nil && p.Special.Effect == entities.SpecialDamageCap {
		most := p.MaxHealth * p.Special.ModifierPercent / 100
		if damage > most {
			damage = most
		}
	}

	p.Health -= damage
	if p.Health < 0 {
		p.Health = 0
	}
	p.Health = math.Round(p.Health)
}

// EndRound applies upkeep: regen, stun recovery, the scaling-boost
// special, and the one-shot revive. Returns whether the participant is
// still alive afterwards.
func (p *Participant) EndRound() bool {
	if p.Health > 0 {
		if !p.exhausted {
			p.ReadyToAct = true
		}
		p.exhausted = false
		p.Health += p.regen[0]
	}
	p.Energy += p.regen[1] + baseEnergyRegen
	p.clampVitals()

	if p.Special != nil && p.Special.Effect == entities.SpecialScalingBoost {
		for i := range p.Boost {
			p.Boost[i] += p.Special.ModifierPercent
		}
	}

	if p.Health == 0 && p.reviveThreshold > 0 {
		p.Health = math.Round(p.MaxHealth * p.reviveThreshold / 100)
		p.reviveThreshold = 0
	}

	return p.Health > 0
}

func (p *Participant) clampVitals() {
	if p.Health > p.MaxHealth {
		p.Health = p.MaxHealth
	}
	if p.Health < 0 {
		p.Health = 0
	}
	if p.Energy > p.MaxEnergy {
		p.Energy = p.MaxEnergy
	}
	if p.Energy < 0 {
		p.Energy = 0
	}
}
