package skills

import (
	"context"
	"encoding/json"
	"log/slog"

	redis "github.com/redis/go-redis/v9"

	"github.com/scrimmagebot/scrimmage/internal/entities"
	"github.com/scrimmagebot/scrimmage/internal/errors"
	redisclient "github.com/scrimmagebot/scrimmage/internal/redis"
)

const (
	skillKeyPrefix = "skill:"
	skillIndexKey  = "skill:index"

	errNameEmpty   = "skill name cannot be empty"
	errRecordNil   = "skill record cannot be nil"
)

// RedisConfig contains configuration for the Redis skills repository.
type RedisConfig struct {
	Client redisclient.Client
}

// Validate validates the RedisConfig.
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Client == nil {
		return errors.InvalidArgument("client cannot be nil")
	}
	return nil
}

type redisRepository struct {
	client redisclient.Client
}

// NewRedis creates a new Redis-backed skills repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &redisRepository{client: cfg.Client}, nil
}

// Ensure redisRepository implements Repository
var _ Repository = (*redisRepository)(nil)

func (r *redisRepository) List(ctx context.Context, _ ListInput) (*ListOutput, error) {
	names, err := r.client.SMembers(ctx, skillIndexKey).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read skill index")
	}

	records := make([]*entities.SkillRecord, 0, len(names))
	for _, name := range names {
		out, err := r.Get(ctx, GetInput{Name: name})
		if err != nil {
			if errors.IsNotFound(err) {
				// stale index entry, clean it up
				slog.WarnContext(ctx, "skill missing for index entry, removing",
					"skill", name)
				r.client.SRem(ctx, skillIndexKey, name)
				continue
			}
			return nil, errors.Wrapf(err, "failed to get skill %s", name)
		}
		records = append(records, out.Record)
	}

	return &ListOutput{Records: records}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.Name == "" {
		return nil, errors.InvalidArgument(errNameEmpty)
	}

	result, err := r.client.Get(ctx, skillKeyPrefix+input.Name).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("skill %q not found", input.Name)
		}
		return nil, errors.Wrapf(err, "failed to get skill")
	}

	var record entities.SkillRecord
	if err := json.Unmarshal([]byte(result), &record); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal skill record")
	}

	return &GetOutput{Record: &record}, nil
}

func (r *redisRepository) Insert(ctx context.Context, input InsertInput) (*InsertOutput, error) {
	if input.Record == nil {
		return nil, errors.InvalidArgument(errRecordNil)
	}
	if input.Record.Name == "" {
		return nil, errors.InvalidArgument(errNameEmpty)
	}

	key := skillKeyPrefix + input.Record.Name

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("skill %q already exists", input.Record.Name)
	}

	data, err := json.Marshal(input.Record)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal skill record")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, skillIndexKey, input.Record.Name)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to insert skill")
	}

	return &InsertOutput{Record: input.Record}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.Name == "" {
		return nil, errors.InvalidArgument(errNameEmpty)
	}

	pipe := r.client.TxPipeline()
	delCmd := pipe.Del(ctx, skillKeyPrefix+input.Name)
	pipe.SRem(ctx, skillIndexKey, input.Name)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete skill")
	}

	return &DeleteOutput{Deleted: delCmd.Val() > 0}, nil
}
