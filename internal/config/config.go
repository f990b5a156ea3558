// Package config loads bot configuration from the environment
package config

import (
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/scrimmagebot/scrimmage/internal/errors"
)

// Config holds everything the bot needs to run
type Config struct {
	// DiscordToken authenticates the gateway session
	DiscordToken string `env:"DISCORD_TOKEN,required"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// DefaultPrefix is used in guilds that have not set their own
	DefaultPrefix string `env:"COMMAND_PREFIX" envDefault:"[]"`

	// ActivityCooldown is the minimum gap between passive experience
	// grants for one user
	ActivityCooldown time.Duration `env:"ACTIVITY_COOLDOWN" envDefault:"20s"`

	// TurnTimeout bounds how long a duel waits for each move choice
	TurnTimeout time.Duration `env:"TURN_TIMEOUT" envDefault:"30s"`

	// AcceptTimeout bounds the challenge handshake
	AcceptTimeout time.Duration `env:"ACCEPT_TIMEOUT" envDefault:"30s"`

	// ConfirmTimeout bounds yes/no confirmations (learning a skill,
	// adding one to the catalog)
	ConfirmTimeout time.Duration `env:"CONFIRM_TIMEOUT" envDefault:"20s"`

	// RoundCap forces a draw when a duel drags on this many rounds
	RoundCap int `env:"ROUND_CAP" envDefault:"300"`

	// OwnerIDs are the user IDs allowed to run admin commands
	OwnerIDs []string `env:"OWNER_IDS" envSeparator:","`
}

// Load reads configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse environment")
	}
	return cfg, nil
}
