// Package catalog holds the in-memory skill catalog. A Snapshot is
// immutable once built; reloading produces a new Snapshot and swaps a
// pointer, so readers never observe a half-loaded catalog.
package catalog

import (
	"context"
	"log/slog"

	"github.com/scrimmagebot/scrimmage/internal/entities"
)

// Snapshot is an immutable view of every known skill, partitioned by
// category and indexed by exact name.
type Snapshot struct {
	Basics   []*entities.BasicSkill
	Powers   []*entities.PowerSkill
	Passives []*entities.PassiveSkill
	Specials []*entities.SpecialSkill

	byName map[string]entities.Skill
}

// BuildSnapshot decodes stored records into a snapshot. Records that
// fail decoding are dropped individually; one bad document must not
// take the whole catalog down.
func BuildSnapshot(ctx context.Context, records []*entities.SkillRecord) *Snapshot {
	s := &Snapshot{
		byName: make(map[string]entities.Skill, len(records)),
	}

	for _, rec := range records {
		skill, err := rec.Decode()
		if err != nil {
			slog.WarnContext(ctx, "dropping undecodable skill record",
				"skill", rec.Name,
				"type", rec.Type,
				"error", err.Error())
			continue
		}

		s.byName[skill.Meta().Name] = skill
		switch sk := skill.(type) {
		case *entities.BasicSkill:
			s.Basics = append(s.Basics, sk)
		case *entities.PowerSkill:
			s.Powers = append(s.Powers, sk)
		case *entities.PassiveSkill:
			s.Passives = append(s.Passives, sk)
		case *entities.SpecialSkill:
			s.Specials = append(s.Specials, sk)
		}
	}

	return s
}

// Find looks up a skill by exact name across all categories
func (s *Snapshot) Find(name string) (entities.Skill, bool) {
	skill, ok := s.byName[name]
	return skill, ok
}

// FindBasic resolves a name to a basic skill, or nil if absent or of
// another category
func (s *Snapshot) FindBasic(name string) *entities.BasicSkill {
	if skill, ok := s.byName[name]; ok {
		if basic, ok := skill.(*entities.BasicSkill); ok {
			return basic
		}
	}
	return nil
}

// FindPower resolves a name to a power skill
func (s *Snapshot) FindPower(name string) *entities.PowerSkill {
	if skill, ok := s.byName[name]; ok {
		if power, ok := skill.(*entities.PowerSkill); ok {
			return power
		}
	}
	return nil
}

// FindPassive resolves a name to a passive skill
func (s *Snapshot) FindPassive(name string) *entities.PassiveSkill {
	if skill, ok := s.byName[name]; ok {
		if passive, ok := skill.(*entities.PassiveSkill); ok {
			return passive
		}
	}
	return nil
}

// FindSpecial resolves a name to a special skill
func (s *Snapshot) FindSpecial(name string) *entities.SpecialSkill {
	if skill, ok := s.byName[name]; ok {
		if special, ok := skill.(*entities.SpecialSkill); ok {
			return special
		}
	}
	return nil
}

// Len returns the number of skills in the snapshot
func (s *Snapshot) Len() int {
	return len(s.byName)
}
