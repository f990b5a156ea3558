package progress

import (
	"context"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"

	"github.com/scrimmagebot/scrimmage/internal/entities"
	"github.com/scrimmagebot/scrimmage/internal/errors"
	redisclient "github.com/scrimmagebot/scrimmage/internal/redis"
)

const (
	progressKeyPrefix = "progress:"

	errProgressNil = "progress cannot be nil"
	errUserIDEmpty = "user ID cannot be empty"
)

// RedisConfig contains configuration for the Redis progress repository.
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

// NewRedis creates a new Redis-backed progress repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &redisRepository{client: cfg.Client}, nil
}

// Ensure redisRepository implements Repository
var _ Repository = (*redisRepository)(nil)

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.UserID == "" {
		return nil, errors.InvalidArgument(errUserIDEmpty)
	}

	result, err := r.client.Get(ctx, progressKeyPrefix+input.UserID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("no progression record for user %s", input.UserID)
		}
		return nil, errors.Wrapf(err, "failed to get progression record")
	}

	var p entities.PlayerProgress
	if err := json.Unmarshal([]byte(result), &p); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal progression record")
	}
	p.Normalize()

	return &GetOutput{Progress: &p}, nil
}

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Progress == nil {
		return nil, errors.InvalidArgument(errProgressNil)
	}
	if input.Progress.UserID == "" {
		return nil, errors.InvalidArgument(errUserIDEmpty)
	}

	key := progressKeyPrefix + input.Progress.UserID

	data, err := json.Marshal(input.Progress)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal progression record")
	}

	ok, err := r.client.SetNX(ctx, key, data, 0).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create progression record")
	}
	if !ok {
		return nil, errors.AlreadyExistsf("user %s already has a progression record", input.Progress.UserID)
	}

	return &CreateOutput{Progress: input.Progress}, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Progress == nil {
		return nil, errors.InvalidArgument(errProgressNil)
	}
	if input.Progress.UserID == "" {
		return nil, errors.InvalidArgument(errUserIDEmpty)
	}

	key := progressKeyPrefix + input.Progress.UserID

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists == 0 {
		return nil, errors.NotFoundf("no progression record for user %s", input.Progress.UserID)
	}

	data, err := json.Marshal(input.Progress)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal progression record")
	}

	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to update progression record")
	}

	return &UpdateOutput{Progress: input.Progress}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.UserID == "" {
		return nil, errors.InvalidArgument(errUserIDEmpty)
	}

	deleted, err := r.client.Del(ctx, progressKeyPrefix+input.UserID).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to delete progression record")
	}
	if deleted == 0 {
		return nil, errors.NotFoundf("no progression record for user %s", input.UserID)
	}

	return &DeleteOutput{}, nil
}
