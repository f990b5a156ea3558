package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/scrimmagebot/scrimmage/internal/orchestrators/progression"
)

// handleActivity grants passive experience for ordinary chatter. One
// grant per user per cooldown window, repeated identical messages are
// ignored, and ignored channels earn nothing.
func (h *Handler) handleActivity(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	if h.channelIgnored(ctx, m.GuildID, m.ChannelID) {
		return
	}

	userID := m.Author.ID
	now := h.clock.Now()

	h.mu.Lock()
	if last, ok := h.lastGrant[userID]; ok && now.Sub(last) < h.activityCooldown {
		h.mu.Unlock()
		return
	}
	if h.lastMsg[userID] == m.Content {
		h.mu.Unlock()
		return
	}
	h.lastGrant[userID] = now
	h.lastMsg[userID] = m.Content
	h.mu.Unlock()

	out, err := h.progression.ApplyActivity(ctx, &progression.ApplyActivityInput{UserID: userID})
	if err != nil {
		slog.ErrorContext(ctx, "activity grant failed",
			"user_id", userID,
			"error", err.Error(),
		)
		return
	}

	if out.LevelsGained > 0 {
		_, _ = s.ChannelMessageSend(m.ChannelID,
			fmt.Sprintf("%s is now Level %d!!", m.Author.Mention(), out.Progress.Level))
	}
}
