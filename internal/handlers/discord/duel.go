package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/scrimmagebot/scrimmage/internal/errors"
	"github.com/scrimmagebot/scrimmage/internal/orchestrators/battle"
	"github.com/scrimmagebot/scrimmage/internal/orchestrators/progression"
)

// levelGapWarning is the level difference that triggers the mismatch
// warning in a challenge
const levelGapWarning = 10

var slotEmojis = []string{"👊", "1⃣", "2⃣", "3⃣", "4⃣", "5⃣"}

func slotEmoji(slot int) string {
	if slot < 0 || slot >= len(slotEmojis) {
		return "❔"
	}
	return slotEmojis[slot]
}

func emojiSlot(emoji string) (int, bool) {
	for slot, candidate := range slotEmojis {
		if candidate == emoji {
			return slot, true
		}
	}
	return 0, false
}

// tryEnterDuel marks both users as dueling; reports false if either is
// already in one
func (h *Handler) tryEnterDuel(a, b string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, busy := h.inDuel[a]; busy {
		return false
	}
	if _, busy := h.inDuel[b]; busy {
		return false
	}
	h.inDuel[a] = struct{}{}
	h.inDuel[b] = struct{}{}
	return true
}

func (h *Handler) leaveDuel(a, b string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.inDuel, a)
	delete(h.inDuel, b)
}

// handleChallenge runs the full duel flow: handshake, battle loop, and
// experience payout
func (h *Handler) handleChallenge(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	if len(m.Mentions) == 0 {
		return errors.InvalidArgument("who are you fighting? usage: challenge @user")
	}
	target := m.Mentions[0]

	if target.ID == m.Author.ID {
		_, err := s.ChannelMessageSend(m.ChannelID, "Whut")
		return err
	}
	if target.Bot {
		_, err := s.ChannelMessageSend(m.ChannelID,
			fmt.Sprintf("%s challenged a tin can... Nothing happened.", m.Author.Mention()))
		return err
	}

	snap, err := h.catalog.Current()
	if err != nil {
		return err
	}

	challengerOut, err := h.progression.GetProgress(ctx, &progression.GetProgressInput{UserID: m.Author.ID})
	if errors.IsNotFound(err) {
		return errors.FailedPrecondition("Where is your weapon?")
	}
	if err != nil {
		return err
	}
	targetOut, err := h.progression.GetProgress(ctx, &progression.GetProgressInput{UserID: target.ID})
	if errors.IsNotFound(err) {
		return errors.FailedPrecondition("Don't go attack random citizens!")
	}
	if err != nil {
		return err
	}

	if !h.tryEnterDuel(m.Author.ID, target.ID) {
		return errors.FailedPrecondition("one of you is already in a fight")
	}
	defer h.leaveDuel(m.Author.ID, target.ID)

	prompt := fmt.Sprintf("%s! %s have challenged you to a duel, do you accept?",
		target.Mention(), m.Author.Username)
	if challengerOut.Progress.Level-targetOut.Progress.Level >= levelGapWarning {
		prompt += fmt.Sprintf("\n\n||%s seem to be more powerful than you, you still want to accept?||",
			m.Author.Username)
	}

	msg, err := s.ChannelMessageSend(m.ChannelID, prompt)
	if err != nil {
		return err
	}

	acceptCtx, cancel := context.WithTimeout(ctx, h.acceptTimeout)
	for _, emoji := range []string{emojiYes, emojiNo} {
		if err := s.MessageReactionAdd(msg.ChannelID, msg.ID, emoji); err != nil {
			cancel()
			return errors.Wrap(err, "failed to add reaction")
		}
	}
	choice, err := h.reactions.wait(acceptCtx, msg.ID, target.ID, []string{emojiYes, emojiNo})
	cancel()
	if err != nil {
		_, _ = s.ChannelMessageEdit(msg.ChannelID, msg.ID,
			fmt.Sprintf("Well, looks like %s isn't here, fight cancelled everyone, nothing to see here.",
				target.Mention()))
		return nil
	}
	if choice == emojiNo {
		_, _ = s.ChannelMessageEdit(msg.ChannelID, msg.ID,
			fmt.Sprintf("%s declined %s's challenge, fight's over.",
				target.Mention(), m.Author.Mention()))
		return nil
	}

	p1, err := battle.NewParticipant(challengerOut.Progress, snap, m.Author.Username)
	if err != nil {
		return err
	}
	p2, err := battle.NewParticipant(targetOut.Progress, snap, target.Username)
	if err != nil {
		return err
	}

	engine, err := battle.NewEngine(&battle.Config{
		Choices: &reactionChoice{
			handler:   h,
			session:   s,
			channelID: msg.ChannelID,
			messageID: msg.ID,
			mentions:  map[string]string{p1.UserID: m.Author.Mention(), p2.UserID: target.Mention()},
		},
		Roller:      h.roller,
		TurnTimeout: h.turnTimeout,
		RoundCap:    h.roundCap,
	})
	if err != nil {
		return err
	}

	_, _ = s.ChannelMessageEdit(msg.ChannelID, msg.ID, "Round 1")

	outcome, err := engine.Run(ctx, p1, p2)
	if err != nil {
		return err
	}

	return h.settleDuel(ctx, s, msg, p1, p2, outcome)
}

// settleDuel announces the result and credits both sides
func (h *Handler) settleDuel(ctx context.Context, s *discordgo.Session, msg *discordgo.Message, p1, p2 *battle.Participant, outcome *battle.Outcome) error {
	if outcome.Draw {
		_, _ = s.ChannelMessageEditComplex(&discordgo.MessageEdit{
			Channel: msg.ChannelID,
			ID:      msg.ID,
			Content: strPtr("Battle dragged on... No winner can be determined...\n+10000XP for both party"),
			Embeds:  &[]*discordgo.MessageEmbed{},
		})

		_, err := h.progression.ApplyBattleResult(ctx, &progression.ApplyBattleResultInput{
			Winner: progression.BattleSide{UserID: p1.UserID, ExpBoostPercent: p1.ExpBoostPercent()},
			Loser:  progression.BattleSide{UserID: p2.UserID, ExpBoostPercent: p2.ExpBoostPercent()},
			Rounds: outcome.Rounds,
			Draw:   true,
		})
		return err
	}

	_, _ = s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel: msg.ChannelID,
		ID:      msg.ID,
		Content: strPtr(fmt.Sprintf("**%s** won the match against **%s**!",
			outcome.Winner.Name, outcome.Loser.Name)),
		Embeds: &[]*discordgo.MessageEmbed{},
	})

	_, err := h.progression.ApplyBattleResult(ctx, &progression.ApplyBattleResultInput{
		Winner: progression.BattleSide{
			UserID:          outcome.Winner.UserID,
			ExpBoostPercent: outcome.Winner.ExpBoostPercent(),
		},
		Loser: progression.BattleSide{
			UserID:          outcome.Loser.UserID,
			ExpBoostPercent: outcome.Loser.ExpBoostPercent(),
		},
		Rounds: outcome.Rounds,
	})
	return err
}

func strPtr(s string) *string { return &s }

// reactionChoice feeds the battle engine from message reactions: each
// turn it redraws the battle card, offers the affordable moves as
// reactions, and waits for the actor's pick under the engine's
// deadline.
type reactionChoice struct {
	handler   *Handler
	session   *discordgo.Session
	channelID string
	messageID string
	mentions  map[string]string
}

var _ battle.ChoiceProvider = (*reactionChoice)(nil)

func (r *reactionChoice) ChooseAction(ctx context.Context, round int, actor, opponent *battle.Participant, actions []battle.Action) (battle.Action, error) {
	emojis := make([]string, 0, len(actions))
	for _, action := range actions {
		emojis = append(emojis, slotEmoji(action.Slot))
	}

	_, err := r.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel: r.channelID,
		ID:      r.messageID,
		Content: strPtr(r.mentions[actor.UserID]),
		Embeds:  &[]*discordgo.MessageEmbed{turnEmbed(round, actor, opponent)},
	})
	if err != nil {
		return battle.Action{}, errors.Wrap(err, "failed to redraw battle message")
	}

	for _, emoji := range emojis {
		if err := r.session.MessageReactionAdd(r.channelID, r.messageID, emoji); err != nil {
			return battle.Action{}, errors.Wrap(err, "failed to add move reaction")
		}
	}

	emoji, err := r.handler.reactions.wait(ctx, r.messageID, actor.UserID, emojis)
	if err != nil {
		return battle.Action{}, err
	}
	_ = r.session.MessageReactionRemove(r.channelID, r.messageID, emoji, actor.UserID)

	slot, ok := emojiSlot(emoji)
	if !ok {
		return battle.Action{}, errors.Internalf("unexpected reaction %q", emoji)
	}
	for _, action := range actions {
		if action.Slot == slot {
			return action, nil
		}
	}
	return battle.Action{}, errors.Internalf("reaction %q does not match an offered move", emoji)
}
