// Package entities defines the domain types for the leveling game:
// skill definitions and per-user progression records.
package entities

import (
	"github.com/scrimmagebot/scrimmage/internal/errors"
)

// SkillCategory identifies which kind of skill a definition describes
type SkillCategory int

// Skill categories
const (
	CategoryBasic SkillCategory = iota
	CategoryPower
	CategoryPassive
	CategorySpecial
)

// String returns the display name of the category
func (c SkillCategory) String() string {
	switch c {
	case CategoryBasic:
		return "Basic Attack"
	case CategoryPower:
		return "Power Attack"
	case CategoryPassive:
		return "Passive"
	case CategorySpecial:
		return "Special"
	default:
		return "Unknown"
	}
}

// Wire discriminator values in the skills collection. These match the
// documents the bot has always written, so they do not follow category
// declaration order.
const (
	recordTypePower   = 0
	recordTypePassive = 1
	recordTypeSpecial = 2
	recordTypeBasic   = 3
)

// AttackType is one of the four weapon/element classes. Resistance and
// boost arrays are indexed by it.
type AttackType int

// Attack types
const (
	AttackStrike AttackType = iota
	AttackRanged
	AttackArcane
	AttackDivine
)

// AttackTypeCount is the number of attack types
const AttackTypeCount = 4

var attackIcons = [AttackTypeCount]string{"⚔", "🏹", "✡", "✨"}

// Icon returns the display icon for the attack type
func (a AttackType) Icon() string {
	if a < 0 || int(a) >= AttackTypeCount {
		return "?"
	}
	return attackIcons[a]
}

// AppliesTo scopes a passive to one attack type or to all four
type AppliesTo int

// AppliesAll marks a passive that affects every attack type
const AppliesAll AppliesTo = AttackTypeCount

// PowerEffect is the rider on a power attack
type PowerEffect int

// Power attack riders. Pierce bypasses the defender's resistance
// passives; the steal effects feed a fraction of the raw damage back to
// the attacker; Recoil and SelfStun hurt the attacker and are negated by
// the power-immunity special.
const (
	PowerEffectNone PowerEffect = iota
	PowerEffectPierce
	PowerEffectLifesteal
	PowerEffectManasteal
	PowerEffectHybridSteal
	PowerEffectRecoil
	PowerEffectSelfStun
)

// PassiveEffect is what an equipped passive modifies
type PassiveEffect int

// Passive effect kinds
const (
	PassiveResist PassiveEffect = iota
	PassiveBoost
	PassiveHealthRegen
	PassiveEnergyRegen
)

var passiveIcons = [4]string{"🛡", "⬆", "💖", "🍹"}

// SpecialEffect is the meta-effect of an equipped special
type SpecialEffect int

// Special effect kinds
const (
	SpecialScalingBoost SpecialEffect = iota
	SpecialDamageCap
	SpecialRevive
	SpecialExpBoost
	SpecialPowerImmunity
)

var specialIcons = [5]string{"🔥", "🤕", "😇", "🆙", "🙅"}

// SkillMeta holds the attributes every skill carries regardless of category
type SkillMeta struct {
	Name        string
	SPCost      int
	Description string
}

// Meta returns the shared skill attributes
func (m *SkillMeta) Meta() *SkillMeta { return m }

// Skill is the common view over the four skill definition types
type Skill interface {
	Meta() *SkillMeta
	Category() SkillCategory
	Icon() string
}

// BasicSkill is the always-affordable attack every account starts with one of
type BasicSkill struct {
	SkillMeta
	Type          AttackType
	DamagePercent float64 // % of attack power
}

// Category returns CategoryBasic
func (s *BasicSkill) Category() SkillCategory { return CategoryBasic }

// Icon returns the attack type icon
func (s *BasicSkill) Icon() string { return s.Type.Icon() }

// PowerSkill is an energy-gated attack, optionally with a rider effect
type PowerSkill struct {
	SkillMeta
	Type          AttackType
	DamagePercent float64
	EnergyCost    int // may be negative after rider discounts
	Effect        PowerEffect
}

// Category returns CategoryPower
func (s *PowerSkill) Category() SkillCategory { return CategoryPower }

// Icon returns the attack type icon
func (s *PowerSkill) Icon() string { return s.Type.Icon() }

// PassiveSkill permanently modifies resistance, boost, or regeneration
// while equipped
type PassiveSkill struct {
	SkillMeta
	Effect          PassiveEffect
	AppliesTo       AppliesTo // ignored for regen effects
	ModifierPercent float64
}

// Category returns CategoryPassive
func (s *PassiveSkill) Category() SkillCategory { return CategoryPassive }

// Icon returns the passive effect icon
func (s *PassiveSkill) Icon() string { return passiveIcons[s.Effect] }

// SpecialSkill grants a unique meta-effect while equipped
type SpecialSkill struct {
	SkillMeta
	Effect          SpecialEffect
	ModifierPercent float64
	RoundInterval   int
}

// Category returns CategorySpecial
func (s *SpecialSkill) Category() SkillCategory { return CategorySpecial }

// Icon returns the special effect icon
func (s *SpecialSkill) Icon() string { return specialIcons[s.Effect] }

// SkillRecord is the storage form of a skill definition. The overloaded
// v-slots keep compatibility with the documents already in the store:
// which slot means what depends on Type.
type SkillRecord struct {
	Type    int      `json:"type"`
	Name    string   `json:"name"`
	Mode    int      `json:"mode"`
	V0      *int     `json:"v0"`
	V1      *int     `json:"v1"`
	V2      *int     `json:"v2"`
	V3      *int     `json:"v3"`
	V4      *float64 `json:"v4"`
	V5      *float64 `json:"v5"`
	V6      *float64 `json:"v6"`
	Cost    int      `json:"cost"`
	Details string   `json:"details"`
}

// Decode converts a stored record into its typed skill definition.
// Records with an unrecognized type or mode are rejected so the catalog
// loader can drop them instead of aborting the whole load.
func (r *SkillRecord) Decode() (Skill, error) {
	if r.Name == "" {
		return nil, errors.InvalidArgument("skill record has no name")
	}

	meta := SkillMeta{
		Name:        r.Name,
		SPCost:      r.Cost,
		Description: r.Details,
	}

	switch r.Type {
	case recordTypeBasic:
		if r.Mode < 0 || r.Mode >= AttackTypeCount {
			return nil, errors.InvalidArgumentf("basic skill %q: unsupported mode %d", r.Name, r.Mode)
		}
		if r.V4 == nil {
			return nil, errors.InvalidArgumentf("basic skill %q: missing damage percent", r.Name)
		}
		return &BasicSkill{
			SkillMeta:     meta,
			Type:          AttackType(r.Mode),
			DamagePercent: *r.V4,
		}, nil

	case recordTypePower:
		if r.Mode < 0 || r.Mode >= AttackTypeCount {
			return nil, errors.InvalidArgumentf("power skill %q: unsupported mode %d", r.Name, r.Mode)
		}
		if r.V4 == nil || r.V0 == nil {
			return nil, errors.InvalidArgumentf("power skill %q: missing damage or energy cost", r.Name)
		}
		effect := PowerEffectNone
		if r.V1 != nil {
			// wire rider values are 0=pierce .. 5=self-stun
			if *r.V1 < 0 || *r.V1 > 5 {
				return nil, errors.InvalidArgumentf("power skill %q: unsupported rider %d", r.Name, *r.V1)
			}
			effect = PowerEffect(*r.V1 + 1)
		}
		return &PowerSkill{
			SkillMeta:     meta,
			Type:          AttackType(r.Mode),
			DamagePercent: *r.V4,
			EnergyCost:    *r.V0,
			Effect:        effect,
		}, nil

	case recordTypePassive:
		if r.Mode < 0 || r.Mode > int(PassiveEnergyRegen) {
			return nil, errors.InvalidArgumentf("passive skill %q: unsupported mode %d", r.Name, r.Mode)
		}
		if r.V4 == nil {
			return nil, errors.InvalidArgumentf("passive skill %q: missing modifier percent", r.Name)
		}
		appliesTo := AppliesAll
		if r.V0 != nil {
			if *r.V0 < 0 || *r.V0 > int(AppliesAll) {
				return nil, errors.InvalidArgumentf("passive skill %q: unsupported target %d", r.Name, *r.V0)
			}
			appliesTo = AppliesTo(*r.V0)
		}
		return &PassiveSkill{
			SkillMeta:       meta,
			Effect:          PassiveEffect(r.Mode),
			AppliesTo:       appliesTo,
			ModifierPercent: *r.V4,
		}, nil

	case recordTypeSpecial:
		if r.Mode < 0 || r.Mode > int(SpecialPowerImmunity) {
			return nil, errors.InvalidArgumentf("special skill %q: unsupported mode %d", r.Name, r.Mode)
		}
		s := &SpecialSkill{
			SkillMeta: meta,
			Effect:    SpecialEffect(r.Mode),
		}
		if r.V4 != nil {
			s.ModifierPercent = *r.V4
		}
		if r.V0 != nil {
			s.RoundInterval = *r.V0
		}
		return s, nil

	default:
		return nil, errors.InvalidArgumentf("skill %q: unsupported type %d", r.Name, r.Type)
	}
}

// EncodeSkill converts a typed skill definition into its storage record
func EncodeSkill(s Skill) *SkillRecord {
	meta := s.Meta()
	r := &SkillRecord{
		Name:    meta.Name,
		Cost:    meta.SPCost,
		Details: meta.Description,
	}

	intPtr := func(v int) *int { return &v }
	floatPtr := func(v float64) *float64 { return &v }

	switch sk := s.(type) {
	case *BasicSkill:
		r.Type = recordTypeBasic
		r.Mode = int(sk.Type)
		r.V4 = floatPtr(sk.DamagePercent)
	case *PowerSkill:
		r.Type = recordTypePower
		r.Mode = int(sk.Type)
		r.V4 = floatPtr(sk.DamagePercent)
		r.V0 = intPtr(sk.EnergyCost)
		if sk.Effect != PowerEffectNone {
			r.V1 = intPtr(int(sk.Effect) - 1)
		}
	case *PassiveSkill:
		r.Type = recordTypePassive
		r.Mode = int(sk.Effect)
		r.V4 = floatPtr(sk.ModifierPercent)
		r.V0 = intPtr(int(sk.AppliesTo))
	case *SpecialSkill:
		r.Type = recordTypeSpecial
		r.Mode = int(sk.Effect)
		r.V4 = floatPtr(sk.ModifierPercent)
		r.V0 = intPtr(sk.RoundInterval)
	}

	return r
}
