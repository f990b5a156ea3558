package catalog

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/scrimmagebot/scrimmage/internal/entities"
	"github.com/scrimmagebot/scrimmage/internal/errors"
	"github.com/scrimmagebot/scrimmage/internal/repositories/skills"
)

// Service owns the current catalog snapshot and reloads it from
// storage. Until the first successful Reload the catalog is not ready
// and every catalog-dependent command must be rejected.
type Service struct {
	repo    skills.Repository
	current atomic.Pointer[Snapshot]
}

// Config holds the dependencies for the catalog service
type Config struct {
	SkillRepo skills.Repository
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.SkillRepo == nil {
		vb.RequiredField("SkillRepo")
	}

	return vb.Build()
}

// NewService creates a catalog service. The catalog starts empty;
// call Reload before serving commands.
func NewService(cfg *Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &Service{repo: cfg.SkillRepo}, nil
}

// Reload fetches all skill records and swaps in a fresh snapshot.
// On storage failure the catalog fails closed: the old snapshot is
// discarded so callers see "not ready" rather than stale data.
func (s *Service) Reload(ctx context.Context) error {
	out, err := s.repo.List(ctx, skills.ListInput{})
	if err != nil {
		s.current.Store(nil)
		return errors.Wrap(err, "failed to load skill catalog")
	}

	snapshot := BuildSnapshot(ctx, out.Records)
	s.current.Store(snapshot)

	slog.InfoContext(ctx, "skill catalog loaded",
		"basics", len(snapshot.Basics),
		"powers", len(snapshot.Powers),
		"passives", len(snapshot.Passives),
		"specials", len(snapshot.Specials),
	)

	return nil
}

// Current returns the latest snapshot, or errors.Unavailable if the
// catalog has not loaded yet
func (s *Service) Current() (*Snapshot, error) {
	snapshot := s.current.Load()
	if snapshot == nil {
		return nil, errors.Unavailable("skill catalog not loaded, try again later")
	}
	return snapshot, nil
}

// Insert validates and stores a new skill definition, then reloads.
// Returns errors.AlreadyExists if the name is taken.
func (s *Service) Insert(ctx context.Context, skill entities.Skill) error {
	if _, err := s.Current(); err != nil {
		return err
	}

	record := entities.EncodeSkill(skill)
	if _, err := record.Decode(); err != nil {
		return errors.Wrap(err, "skill definition does not round-trip")
	}

	if _, err := s.repo.Insert(ctx, skills.InsertInput{Record: record}); err != nil {
		return err
	}

	return s.Reload(ctx)
}

// Remove deletes a skill by name and reloads. Removing an absent skill
// is not an error.
func (s *Service) Remove(ctx context.Context, name string) (bool, error) {
	out, err := s.repo.Delete(ctx, skills.DeleteInput{Name: name})
	if err != nil {
		return false, err
	}

	if err := s.Reload(ctx); err != nil {
		return out.Deleted, err
	}
	return out.Deleted, nil
}
