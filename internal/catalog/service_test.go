package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrimmagebot/scrimmage/internal/catalog"
	"github.com/scrimmagebot/scrimmage/internal/entities"
	"github.com/scrimmagebot/scrimmage/internal/errors"
	"github.com/scrimmagebot/scrimmage/internal/repositories/skills"
	"github.com/scrimmagebot/scrimmage/internal/testutils"
)

func newService(t *testing.T) (*catalog.Service, skills.Repository, func()) {
	client, cleanup := testutils.CreateTestRedisClient(t)

	repo, err := skills.NewRedis(&skills.RedisConfig{Client: client})
	require.NoError(t, err)

	svc, err := catalog.NewService(&catalog.Config{SkillRepo: repo})
	require.NoError(t, err)

	return svc, repo, cleanup
}

func seedSkills(t *testing.T, repo skills.Repository) {
	ctx := context.Background()

	defs := []entities.Skill{
		&entities.BasicSkill{
			SkillMeta:     entities.SkillMeta{Name: "Punch", SPCost: 5},
			Type:          entities.AttackStrike,
			DamagePercent: 100,
		},
		&entities.PowerSkill{
			SkillMeta:     entities.SkillMeta{Name: "Fireball", SPCost: 14},
			Type:          entities.AttackArcane,
			DamagePercent: 100,
			EnergyCost:    50,
		},
		&entities.PassiveSkill{
			SkillMeta:       entities.SkillMeta{Name: "Iron Skin", SPCost: 10},
			Effect:          entities.PassiveResist,
			AppliesTo:       entities.AppliesAll,
			ModifierPercent: 15,
		},
		&entities.SpecialSkill{
			SkillMeta:       entities.SkillMeta{Name: "Second Wind", SPCost: 40},
			Effect:          entities.SpecialRevive,
			ModifierPercent: 30,
		},
	}
	for _, def := range defs {
		_, err := repo.Insert(ctx, skills.InsertInput{Record: entities.EncodeSkill(def)})
		require.NoError(t, err)
	}
}

func TestCurrentBeforeReload(t *testing.T) {
	svc, _, cleanup := newService(t)
	defer cleanup()

	_, err := svc.Current()
	require.Error(t, err)
	assert.True(t, errors.IsUnavailable(err))
}

func TestReloadPartitionsByCategory(t *testing.T) {
	svc, repo, cleanup := newService(t)
	defer cleanup()

	seedSkills(t, repo)
	require.NoError(t, svc.Reload(context.Background()))

	snap, err := svc.Current()
	require.NoError(t, err)

	assert.Equal(t, 4, snap.Len())
	assert.Len(t, snap.Basics, 1)
	assert.Len(t, snap.Powers, 1)
	assert.Len(t, snap.Passives, 1)
	assert.Len(t, snap.Specials, 1)

	skill, ok := snap.Find("Fireball")
	require.True(t, ok)
	assert.Equal(t, entities.CategoryPower, skill.Category())

	assert.NotNil(t, snap.FindBasic("Punch"))
	assert.Nil(t, snap.FindBasic("Fireball"), "wrong category should not resolve")
	assert.NotNil(t, snap.FindSpecial("Second Wind"))

	_, ok = snap.Find("punch")
	assert.False(t, ok, "lookup is case-sensitive")
}

func TestReloadDropsCorruptRecords(t *testing.T) {
	svc, repo, cleanup := newService(t)
	defer cleanup()

	seedSkills(t, repo)

	// a record with an out-of-range mode decodes to nothing
	bad := &entities.SkillRecord{Type: 2, Name: "Glitch", Mode: 9}
	_, err := repo.Insert(context.Background(), skills.InsertInput{Record: bad})
	require.NoError(t, err)

	require.NoError(t, svc.Reload(context.Background()))

	snap, err := svc.Current()
	require.NoError(t, err)
	assert.Equal(t, 4, snap.Len())
	_, ok := snap.Find("Glitch")
	assert.False(t, ok)
}

func TestInsertRefreshesSnapshot(t *testing.T) {
	svc, repo, cleanup := newService(t)
	defer cleanup()

	seedSkills(t, repo)
	require.NoError(t, svc.Reload(context.Background()))

	newSkill := &entities.PowerSkill{
		SkillMeta:     entities.SkillMeta{Name: "Ice Lance", SPCost: 12},
		Type:          entities.AttackRanged,
		DamagePercent: 80,
		EnergyCost:    40,
	}
	require.NoError(t, svc.Insert(context.Background(), newSkill))

	snap, err := svc.Current()
	require.NoError(t, err)
	assert.NotNil(t, snap.FindPower("Ice Lance"))

	err = svc.Insert(context.Background(), newSkill)
	require.Error(t, err)
	assert.True(t, errors.IsAlreadyExists(err))
}

func TestRemoveRefreshesSnapshot(t *testing.T) {
	svc, repo, cleanup := newService(t)
	defer cleanup()

	seedSkills(t, repo)
	require.NoError(t, svc.Reload(context.Background()))

	deleted, err := svc.Remove(context.Background(), "Fireball")
	require.NoError(t, err)
	assert.True(t, deleted)

	snap, err := svc.Current()
	require.NoError(t, err)
	_, ok := snap.Find("Fireball")
	assert.False(t, ok)

	deleted, err = svc.Remove(context.Background(), "Fireball")
	require.NoError(t, err)
	assert.False(t, deleted)
}
