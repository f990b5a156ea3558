package guildsettings

import (
	"context"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"

	"github.com/scrimmagebot/scrimmage/internal/errors"
	redisclient "github.com/scrimmagebot/scrimmage/internal/redis"
)

const (
	guildKeyPrefix = "guild:"

	errGuildIDEmpty  = "guild ID cannot be empty"
	errSettingsNil   = "settings cannot be nil"
)

// RedisConfig contains configuration for the Redis guild settings repository.
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

// NewRedis creates a new Redis-backed guild settings repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &redisRepository{client: cfg.Client}, nil
}

// Ensure redisRepository implements Repository
var _ Repository = (*redisRepository)(nil)

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.GuildID == "" {
		return nil, errors.InvalidArgument(errGuildIDEmpty)
	}

	result, err := r.client.Get(ctx, guildKeyPrefix+input.GuildID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("no settings for guild %s", input.GuildID)
		}
		return nil, errors.Wrapf(err, "failed to get guild settings")
	}

	var settings Settings
	if err := json.Unmarshal([]byte(result), &settings); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal guild settings")
	}

	return &GetOutput{Settings: &settings}, nil
}

func (r *redisRepository) Save(ctx context.Context, input SaveInput) (*SaveOutput, error) {
	if input.Settings == nil {
		return nil, errors.InvalidArgument(errSettingsNil)
	}
	if input.Settings.GuildID == "" {
		return nil, errors.InvalidArgument(errGuildIDEmpty)
	}

	data, err := json.Marshal(input.Settings)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal guild settings")
	}

	if err := r.client.Set(ctx, guildKeyPrefix+input.Settings.GuildID, data, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to save guild settings")
	}

	return &SaveOutput{Settings: input.Settings}, nil
}
