package discord

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrimmagebot/scrimmage/internal/entities"
	"github.com/scrimmagebot/scrimmage/internal/errors"
	"github.com/scrimmagebot/scrimmage/internal/orchestrators/battle"
)

func TestParseCommandPrefix(t *testing.T) {
	name, args, ok := parseCommand("[]level @someone", "[]", "bot123")
	require.True(t, ok)
	assert.Equal(t, "level", name)
	assert.Equal(t, []string{"@someone"}, args)
}

func TestParseCommandLowercasesName(t *testing.T) {
	name, _, ok := parseCommand("[]CHALLENGE", "[]", "bot123")
	require.True(t, ok)
	assert.Equal(t, "challenge", name)
}

func TestParseCommandMention(t *testing.T) {
	name, args, ok := parseCommand("<@bot123> skills power", "[]", "bot123")
	require.True(t, ok)
	assert.Equal(t, "skills", name)
	assert.Equal(t, []string{"power"}, args)
}

func TestParseCommandNicknameMention(t *testing.T) {
	name, _, ok := parseCommand("<@!bot123> train hp", "[]", "bot123")
	require.True(t, ok)
	assert.Equal(t, "train", name)
}

func TestParseCommandNotACommand(t *testing.T) {
	_, _, ok := parseCommand("just chatting about levels", "[]", "bot123")
	assert.False(t, ok)
}

func TestParseCommandEmptyAfterPrefix(t *testing.T) {
	_, _, ok := parseCommand("[]   ", "[]", "bot123")
	assert.False(t, ok)
}

func TestMentionedUserID(t *testing.T) {
	assert.Equal(t, "42", mentionedUserID([]string{"<@42>"}))
	assert.Equal(t, "42", mentionedUserID([]string{"<@!42>"}))
	assert.Equal(t, "42", mentionedUserID([]string{"500", "<@42>"}))
	assert.Equal(t, "", mentionedUserID([]string{"nobody", "here"}))
	assert.Equal(t, "", mentionedUserID(nil))
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, strings.Repeat("▬", 14), progressBar(0, 100))
	assert.Equal(t, strings.Repeat("[▬](http://g.cn/)", 14), progressBar(100, 100))

	half := progressBar(50, 100)
	assert.Equal(t, 7, strings.Count(half, "(http://g.cn/)"))

	// overflow and a zero threshold both stay in range
	assert.Equal(t, strings.Repeat("[▬](http://g.cn/)", 14), progressBar(250, 100))
	assert.Equal(t, strings.Repeat("▬", 14), progressBar(10, 0))
}

func TestSlotEmojiRoundTrip(t *testing.T) {
	for slot := 0; slot < len(slotEmojis); slot++ {
		back, ok := emojiSlot(slotEmoji(slot))
		require.True(t, ok)
		assert.Equal(t, slot, back)
	}

	assert.Equal(t, "👊", slotEmoji(0))
	assert.Equal(t, "❔", slotEmoji(-1))
	assert.Equal(t, "❔", slotEmoji(6))

	_, ok := emojiSlot("✅")
	assert.False(t, ok)
}

func TestDerivePowerCosts(t *testing.T) {
	tests := []struct {
		name       string
		damage     float64
		effect     entities.PowerEffect
		wantSP     int
		wantEnergy int
	}{
		{"no rider", 70, entities.PowerEffectNone, 10, 35},
		{"pierce", 70, entities.PowerEffectPierce, 20, 60},
		{"lifesteal", 70, entities.PowerEffectLifesteal, 30, 65},
		{"manasteal", 70, entities.PowerEffectManasteal, 0, 15},
		{"hybrid steal", 70, entities.PowerEffectHybridSteal, -5, 5},
		{"recoil has no base cost", 70, entities.PowerEffectRecoil, 10, 35},
		{"self stun has no base cost", 70, entities.PowerEffectSelfStun, 10, 35},
		{"rounding", 100, entities.PowerEffectNone, 14, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sp, energy := derivePowerCosts(tt.damage, tt.effect)
			assert.Equal(t, tt.wantSP, sp)
			assert.Equal(t, tt.wantEnergy, energy)
		})
	}
}

func testDuelist() *battle.Participant {
	return &battle.Participant{
		Name:      "Kara",
		MaxHealth: 250,
		Health:    250,
		MaxEnergy: 100,
		Energy:    40,
		Basic: &entities.BasicSkill{
			SkillMeta:     entities.SkillMeta{Name: "Punch"},
			Type:          entities.AttackStrike,
			DamagePercent: 50,
		},
	}
}

func TestMoveListBasicOnly(t *testing.T) {
	list := moveList(testDuelist())

	assert.Contains(t, list, "====Basic Move====")
	assert.Contains(t, list, "👊 - ⚔ Punch")
	assert.NotContains(t, list, "====Power Moves====")
}

func TestMoveListMarksUnaffordablePowers(t *testing.T) {
	p := testDuelist()
	p.Powers[0] = &entities.PowerSkill{
		SkillMeta:     entities.SkillMeta{Name: "Jab"},
		Type:          entities.AttackStrike,
		DamagePercent: 80,
		EnergyCost:    30,
	}
	p.Powers[2] = &entities.PowerSkill{
		SkillMeta:     entities.SkillMeta{Name: "Meteor"},
		Type:          entities.AttackArcane,
		DamagePercent: 200,
		EnergyCost:    90,
	}

	list := moveList(p)

	assert.Contains(t, list, "====Power Moves====")
	assert.Contains(t, list, "1⃣ - ⚔ Jab")
	assert.NotContains(t, list, "~~1⃣")
	assert.Contains(t, list, "~~3⃣ - ✡ Meteor~~ Low Energy")
	assert.NotContains(t, list, "2⃣")
}

func TestTurnEmbedShowsOpponentHealth(t *testing.T) {
	actor := testDuelist()
	opponent := testDuelist()
	opponent.Name = "Rook"
	opponent.Health = 120

	embed := turnEmbed(3, actor, opponent)

	assert.Equal(t, "Rook's Health: 120", embed.Title)
	assert.Equal(t, "Kara's Turn [round 3]", embed.Author.Name)
	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "Options", embed.Fields[2].Name)
}

func newTestSession() *discordgo.Session {
	return &discordgo.Session{State: discordgo.NewState()}
}

func reactionAdd(messageID, userID, emoji string) *discordgo.MessageReactionAdd {
	return &discordgo.MessageReactionAdd{
		MessageReaction: &discordgo.MessageReaction{
			MessageID: messageID,
			UserID:    userID,
			Emoji:     discordgo.Emoji{Name: emoji},
		},
	}
}

func TestReactionWaiterDelivers(t *testing.T) {
	w := newReactionWaiter()
	s := newTestSession()

	done := make(chan struct{})
	var got string
	var err error
	go func() {
		defer close(done)
		got, err = w.wait(context.Background(), "msg1", "user1", []string{emojiYes, emojiNo})
	}()

	require.Eventually(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return len(w.pending["msg1"]) == 1
	}, time.Second, time.Millisecond)

	w.handle(s, reactionAdd("msg1", "user1", emojiYes))

	<-done
	require.NoError(t, err)
	assert.Equal(t, emojiYes, got)
}

func TestReactionWaiterFiltersUserAndEmoji(t *testing.T) {
	w := newReactionWaiter()
	s := newTestSession()

	pending := w.register("msg1", "user1", []string{emojiYes})
	defer w.unregister("msg1", pending)

	w.handle(s, reactionAdd("msg1", "intruder", emojiYes))
	w.handle(s, reactionAdd("msg1", "user1", "🎉"))
	w.handle(s, reactionAdd("msg2", "user1", emojiYes))

	select {
	case ev := <-pending.ch:
		t.Fatalf("unexpected delivery: %+v", ev)
	default:
	}

	w.handle(s, reactionAdd("msg1", "user1", emojiYes))
	select {
	case ev := <-pending.ch:
		assert.Equal(t, emojiYes, ev.emoji)
	default:
		t.Fatal("expected delivery")
	}
}

func TestReactionWaiterAnyUser(t *testing.T) {
	w := newReactionWaiter()
	s := newTestSession()

	pending := w.register("msg1", "", []string{emojiYes})
	defer w.unregister("msg1", pending)

	w.handle(s, reactionAdd("msg1", "whoever", emojiYes))

	select {
	case ev := <-pending.ch:
		assert.Equal(t, "whoever", ev.userID)
	default:
		t.Fatal("expected delivery")
	}
}

func TestReactionWaiterTimeout(t *testing.T) {
	w := newReactionWaiter()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := w.wait(ctx, "msg1", "user1", []string{emojiYes})
	require.Error(t, err)
	assert.True(t, errors.IsDeadlineExceeded(err))

	w.mu.Lock()
	defer w.mu.Unlock()
	assert.Empty(t, w.pending)
}
