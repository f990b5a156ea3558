// Package guildsettings provides per-guild bot settings persistence:
// the command prefix and the set of channels where game commands and
// activity grants are ignored.
package guildsettings

//go:generate mockgen -destination=mock/mock_repository.go -package=guildsettingsmock github.com/scrimmagebot/scrimmage/internal/repositories/guildsettings Repository

import (
	"context"
)

// Settings is the per-guild settings document
type Settings struct {
	GuildID string `json:"guild_id"`

	// Prefix overrides the bot default when non-empty
	Prefix string `json:"prefix,omitempty"`

	// IgnoredChannels lists channel IDs where the bot stays quiet
	IgnoredChannels []string `json:"ignored_channels,omitempty"`
}

// IsIgnored reports whether the channel is on the guild's ignore list
func (s *Settings) IsIgnored(channelID string) bool {
	for _, id := range s.IgnoredChannels {
		if id == channelID {
			return true
		}
	}
	return false
}

// Repository defines the interface for guild settings persistence
type Repository interface {
	// Get retrieves settings for a guild
	// Returns errors.NotFound if the guild has never been configured
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Save upserts the settings document for a guild
	Save(ctx context.Context, input SaveInput) (*SaveOutput, error)
}

// GetInput defines the input for getting guild settings
type GetInput struct {
	GuildID string
}

// GetOutput defines the output for getting guild settings
type GetOutput struct {
	Settings *Settings
}

// SaveInput defines the input for saving guild settings
type SaveInput struct {
	Settings *Settings
}

// SaveOutput defines the output for saving guild settings
type SaveOutput struct {
	Settings *Settings
}
