package skills_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/scrimmagebot/scrimmage/internal/entities"
	"github.com/scrimmagebot/scrimmage/internal/errors"
	"github.com/scrimmagebot/scrimmage/internal/repositories/skills"
	"github.com/scrimmagebot/scrimmage/internal/testutils"
)

type SkillsRedisTestSuite struct {
	suite.Suite
	repo    skills.Repository
	cleanup func()
	ctx     context.Context
}

func (s *SkillsRedisTestSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup

	repo, err := skills.NewRedis(&skills.RedisConfig{Client: client})
	s.Require().NoError(err)
	s.repo = repo
	s.ctx = context.Background()
}

func (s *SkillsRedisTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *SkillsRedisTestSuite) punchRecord() *entities.SkillRecord {
	return entities.EncodeSkill(&entities.BasicSkill{
		SkillMeta: entities.SkillMeta{
			Name:        "Punch",
			SPCost:      5,
			Description: "A plain punch.",
		},
		Type:          entities.AttackStrike,
		DamagePercent: 100,
	})
}

func (s *SkillsRedisTestSuite) TestInsertAndGet() {
	_, err := s.repo.Insert(s.ctx, skills.InsertInput{Record: s.punchRecord()})
	s.Require().NoError(err)

	out, err := s.repo.Get(s.ctx, skills.GetInput{Name: "Punch"})
	s.Require().NoError(err)
	s.Equal("Punch", out.Record.Name)
	s.Equal(3, out.Record.Type)

	skill, err := out.Record.Decode()
	s.Require().NoError(err)
	s.Equal(entities.CategoryBasic, skill.Category())
}

func (s *SkillsRedisTestSuite) TestGetIsCaseSensitive() {
	_, err := s.repo.Insert(s.ctx, skills.InsertInput{Record: s.punchRecord()})
	s.Require().NoError(err)

	_, err = s.repo.Get(s.ctx, skills.GetInput{Name: "punch"})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *SkillsRedisTestSuite) TestInsertDuplicate() {
	_, err := s.repo.Insert(s.ctx, skills.InsertInput{Record: s.punchRecord()})
	s.Require().NoError(err)

	_, err = s.repo.Insert(s.ctx, skills.InsertInput{Record: s.punchRecord()})
	s.Require().Error(err)
	s.True(errors.IsAlreadyExists(err))
}

func (s *SkillsRedisTestSuite) TestList() {
	_, err := s.repo.Insert(s.ctx, skills.InsertInput{Record: s.punchRecord()})
	s.Require().NoError(err)

	fireball := entities.EncodeSkill(&entities.PowerSkill{
		SkillMeta:     entities.SkillMeta{Name: "Fireball", SPCost: 14},
		Type:          entities.AttackArcane,
		DamagePercent: 100,
		EnergyCost:    50,
	})
	_, err = s.repo.Insert(s.ctx, skills.InsertInput{Record: fireball})
	s.Require().NoError(err)

	out, err := s.repo.List(s.ctx, skills.ListInput{})
	s.Require().NoError(err)
	s.Len(out.Records, 2)

	names := []string{out.Records[0].Name, out.Records[1].Name}
	s.ElementsMatch([]string{"Punch", "Fireball"}, names)
}

func (s *SkillsRedisTestSuite) TestListEmpty() {
	out, err := s.repo.List(s.ctx, skills.ListInput{})
	s.Require().NoError(err)
	s.Empty(out.Records)
}

func (s *SkillsRedisTestSuite) TestDelete() {
	_, err := s.repo.Insert(s.ctx, skills.InsertInput{Record: s.punchRecord()})
	s.Require().NoError(err)

	out, err := s.repo.Delete(s.ctx, skills.DeleteInput{Name: "Punch"})
	s.Require().NoError(err)
	s.True(out.Deleted)

	_, err = s.repo.Get(s.ctx, skills.GetInput{Name: "Punch"})
	s.True(errors.IsNotFound(err))

	listOut, err := s.repo.List(s.ctx, skills.ListInput{})
	s.Require().NoError(err)
	s.Empty(listOut.Records)
}

func (s *SkillsRedisTestSuite) TestDeleteAbsentIsNoop() {
	out, err := s.repo.Delete(s.ctx, skills.DeleteInput{Name: "Ghost"})
	s.Require().NoError(err)
	s.False(out.Deleted)
}

func (s *SkillsRedisTestSuite) TestValidation() {
	_, err := s.repo.Get(s.ctx, skills.GetInput{})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.repo.Insert(s.ctx, skills.InsertInput{})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.repo.Delete(s.ctx, skills.DeleteInput{})
	s.True(errors.IsInvalidArgument(err))
}

func TestSkillsRedisTestSuite(t *testing.T) {
	suite.Run(t, new(SkillsRedisTestSuite))
}
