package discord

import (
	"context"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/scrimmagebot/scrimmage/internal/errors"
)

// Confirmation emojis
const (
	emojiYes = "✅"
	emojiNo  = "❌"
)

type reactionEvent struct {
	emoji  string
	userID string
}

type pendingWait struct {
	userID string // empty matches any user
	emojis map[string]struct{}
	ch     chan reactionEvent
}

// reactionWaiter bridges the gateway's reaction events to synchronous
// waits. A flow registers interest in a message, blocks on the channel,
// and the single MessageReactionAdd handler dispatches matches.
type reactionWaiter struct {
	mu      sync.Mutex
	pending map[string][]*pendingWait
}

func newReactionWaiter() *reactionWaiter {
	return &reactionWaiter{pending: make(map[string][]*pendingWait)}
}

func (w *reactionWaiter) handle(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if s.State.User != nil && r.UserID == s.State.User.ID {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for _, wait := range w.pending[r.MessageID] {
		if wait.userID != "" && wait.userID != r.UserID {
			continue
		}
		if _, ok := wait.emojis[r.Emoji.Name]; !ok {
			continue
		}
		select {
		case wait.ch <- reactionEvent{emoji: r.Emoji.Name, userID: r.UserID}:
		default:
		}
	}
}

func (w *reactionWaiter) register(messageID, userID string, emojis []string) *pendingWait {
	wait := &pendingWait{
		userID: userID,
		emojis: make(map[string]struct{}, len(emojis)),
		ch:     make(chan reactionEvent, 1),
	}
	for _, e := range emojis {
		wait.emojis[e] = struct{}{}
	}

	w.mu.Lock()
	w.pending[messageID] = append(w.pending[messageID], wait)
	w.mu.Unlock()

	return wait
}

func (w *reactionWaiter) unregister(messageID string, wait *pendingWait) {
	w.mu.Lock()
	defer w.mu.Unlock()

	waits := w.pending[messageID]
	for i, candidate := range waits {
		if candidate == wait {
			w.pending[messageID] = append(waits[:i], waits[i+1:]...)
			break
		}
	}
	if len(w.pending[messageID]) == 0 {
		delete(w.pending, messageID)
	}
}

// wait blocks until the user reacts to the message with one of the
// emojis, or the context expires
func (w *reactionWaiter) wait(ctx context.Context, messageID, userID string, emojis []string) (string, error) {
	pending := w.register(messageID, userID, emojis)
	defer w.unregister(messageID, pending)

	select {
	case ev := <-pending.ch:
		return ev.emoji, nil
	case <-ctx.Done():
		return "", errors.DeadlineExceeded("no reaction received in time")
	}
}
