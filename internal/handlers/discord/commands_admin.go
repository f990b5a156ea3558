package discord

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/scrimmagebot/scrimmage/internal/entities"
	"github.com/scrimmagebot/scrimmage/internal/errors"
	"github.com/scrimmagebot/scrimmage/internal/orchestrators/progression"
)

// Base costs for administrator-created basic attacks
const (
	basicSkillDamage = 100.0
	basicSkillSPCost = 5
)

// derivePowerCosts computes a power move's SP and energy costs from its
// damage and rider. Stronger riders tax the move, self-harming riders
// discount it, and both costs grow with damage.
func derivePowerCosts(damage float64, effect entities.PowerEffect) (spCost, energyCost int) {
	switch effect {
	case entities.PowerEffectPierce:
		spCost, energyCost = 10, 25
	case entities.PowerEffectLifesteal:
		spCost, energyCost = 20, 30
	case entities.PowerEffectManasteal:
		spCost, energyCost = -10, -20
	case entities.PowerEffectHybridSteal:
		spCost, energyCost = -15, -30
	}
	spCost += int(math.Round(damage / 7))
	energyCost += int(math.Round(damage / 2))
	return spCost, energyCost
}

func parseInt(args []string, i int, what string) (int, error) {
	if i >= len(args) {
		return 0, errors.InvalidArgumentf("missing %s", what)
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, errors.InvalidArgumentf("%s must be a number, got %q", what, args[i])
	}
	return n, nil
}

func parseFloat(args []string, i int, what string) (float64, error) {
	if i >= len(args) {
		return 0, errors.InvalidArgumentf("missing %s", what)
	}
	f, err := strconv.ParseFloat(args[i], 64)
	if err != nil {
		return 0, errors.InvalidArgumentf("%s must be a number, got %q", what, args[i])
	}
	return f, nil
}

// confirmInsert shows the skill card, waits for the admin's ✅, and
// stores the definition
func (h *Handler) confirmInsert(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, skill entities.Skill) error {
	msg, err := s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Content: "You sure you want to add this into the skill list?",
		Embed:   skillEmbed(skill),
	})
	if err != nil {
		return err
	}

	choice, err := h.confirm(ctx, s, msg, m.Author.ID)
	if err != nil {
		_, _ = s.ChannelMessageEdit(m.ChannelID, msg.ID, "Timed out")
		return nil
	}
	if choice != emojiYes {
		_, _ = s.ChannelMessageEdit(m.ChannelID, msg.ID, "Action Cancelled")
		return nil
	}

	if err := h.catalog.Insert(ctx, skill); err != nil {
		return err
	}

	_, _ = s.ChannelMessageEdit(m.ChannelID, msg.ID,
		fmt.Sprintf("**%s** added!", skill.Meta().Name))
	return nil
}

// handleAddBasic: `addbasic <name> <type 0-3> <description...>`
func (h *Handler) handleAddBasic(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	if len(args) < 2 {
		return errors.InvalidArgument("usage: addbasic <name> <type 0-3> <description>")
	}
	mode, err := parseInt(args, 1, "attack type")
	if err != nil {
		return err
	}
	if mode < 0 || mode >= entities.AttackTypeCount {
		return errors.InvalidArgumentf("attack type must be 0-%d", entities.AttackTypeCount-1)
	}

	return h.confirmInsert(ctx, s, m, &entities.BasicSkill{
		SkillMeta: entities.SkillMeta{
			Name:        args[0],
			SPCost:      basicSkillSPCost,
			Description: strings.Join(args[2:], " "),
		},
		Type:          entities.AttackType(mode),
		DamagePercent: basicSkillDamage,
	})
}

// handleAddPower: `addpower <name> <type 0-3> <damage%> <rider 0-5|-> <description...>`
func (h *Handler) handleAddPower(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	if len(args) < 4 {
		return errors.InvalidArgument("usage: addpower <name> <type 0-3> <damage%> <rider 0-5 or -> <description>")
	}
	mode, err := parseInt(args, 1, "attack type")
	if err != nil {
		return err
	}
	if mode < 0 || mode >= entities.AttackTypeCount {
		return errors.InvalidArgumentf("attack type must be 0-%d", entities.AttackTypeCount-1)
	}
	damage, err := parseFloat(args, 2, "damage percent")
	if err != nil {
		return err
	}

	effect := entities.PowerEffectNone
	if args[3] != "-" {
		rider, err := parseInt(args, 3, "rider")
		if err != nil {
			return err
		}
		if rider < 0 || rider > int(entities.PowerEffectSelfStun)-1 {
			return errors.InvalidArgumentf("rider must be 0-%d or -", int(entities.PowerEffectSelfStun)-1)
		}
		effect = entities.PowerEffect(rider + 1)
	}

	spCost, energyCost := derivePowerCosts(damage, effect)

	return h.confirmInsert(ctx, s, m, &entities.PowerSkill{
		SkillMeta: entities.SkillMeta{
			Name:        args[0],
			SPCost:      spCost,
			Description: strings.Join(args[4:], " "),
		},
		Type:          entities.AttackType(mode),
		DamagePercent: damage,
		EnergyCost:    energyCost,
		Effect:        effect,
	})
}

// handleAddPassive: `addpassive <name> <kind 0-3> <sp> <modifier%> <target 0-4> <description...>`
func (h *Handler) handleAddPassive(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	if len(args) < 5 {
		return errors.InvalidArgument("usage: addpassive <name> <kind 0-3> <sp> <modifier%> <target 0-4> <description>")
	}
	mode, err := parseInt(args, 1, "effect kind")
	if err != nil {
		return err
	}
	if mode < 0 || mode > int(entities.PassiveEnergyRegen) {
		return errors.InvalidArgumentf("effect kind must be 0-%d", int(entities.PassiveEnergyRegen))
	}
	sp, err := parseInt(args, 2, "sp cost")
	if err != nil {
		return err
	}
	modifier, err := parseFloat(args, 3, "modifier percent")
	if err != nil {
		return err
	}
	target, err := parseInt(args, 4, "target")
	if err != nil {
		return err
	}
	if target < 0 || target > int(entities.AppliesAll) {
		return errors.InvalidArgumentf("target must be 0-%d", int(entities.AppliesAll))
	}

	return h.confirmInsert(ctx, s, m, &entities.PassiveSkill{
		SkillMeta: entities.SkillMeta{
			Name:        args[0],
			SPCost:      sp,
			Description: strings.Join(args[5:], " "),
		},
		Effect:          entities.PassiveEffect(mode),
		AppliesTo:       entities.AppliesTo(target),
		ModifierPercent: modifier,
	})
}

// handleAddSpecial: `addspecial <name> <kind 0-4> <sp> <modifier%> <interval|-> <description...>`
func (h *Handler) handleAddSpecial(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	if len(args) < 4 {
		return errors.InvalidArgument("usage: addspecial <name> <kind 0-4> <sp> <modifier%> <interval or -> <description>")
	}
	mode, err := parseInt(args, 1, "effect kind")
	if err != nil {
		return err
	}
	if mode < 0 || mode > int(entities.SpecialPowerImmunity) {
		return errors.InvalidArgumentf("effect kind must be 0-%d", int(entities.SpecialPowerImmunity))
	}
	sp, err := parseInt(args, 2, "sp cost")
	if err != nil {
		return err
	}
	modifier, err := parseFloat(args, 3, "modifier percent")
	if err != nil {
		return err
	}

	interval := 0
	desc := ""
	if len(args) > 4 {
		if args[4] != "-" {
			if interval, err = parseInt(args, 4, "interval"); err != nil {
				return err
			}
		}
		desc = strings.Join(args[5:], " ")
	}

	return h.confirmInsert(ctx, s, m, &entities.SpecialSkill{
		SkillMeta: entities.SkillMeta{
			Name:        args[0],
			SPCost:      sp,
			Description: desc,
		},
		Effect:          entities.SpecialEffect(mode),
		ModifierPercent: modifier,
		RoundInterval:   interval,
	})
}

// handleRemoveSkill: `removeskill <name>`
func (h *Handler) handleRemoveSkill(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	if len(args) == 0 {
		return errors.InvalidArgument("usage: removeskill <name>")
	}
	name := strings.Join(args, " ")

	deleted, err := h.catalog.Remove(ctx, name)
	if err != nil {
		return err
	}
	if !deleted {
		return errors.NotFoundf("no skill named %q", name)
	}

	return s.MessageReactionAdd(m.ChannelID, m.ID, "👍")
}

// handleGiveExp: `giveexp <amount> [@user]` — administrative grant that
// leaves experience unreduced by level-ups
func (h *Handler) handleGiveExp(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	amount, err := parseInt(args, 0, "amount")
	if err != nil {
		return err
	}

	targetID := m.Author.ID
	if id := mentionedUserID(args); id != "" {
		targetID = id
	}

	out, err := h.progression.ApplyActivity(ctx, &progression.ApplyActivityInput{
		UserID: targetID,
		Amount: &amount,
		Cheat:  true,
	})
	if err != nil {
		return err
	}

	if out.Created {
		_, _ = s.ChannelMessageSend(m.ChannelID,
			"Since the user is new, a new profile has been created. Boosting now...")
	}
	return s.MessageReactionAdd(m.ChannelID, m.ID, "👍")
}

// handleExpMod: `expmod [n]` — show or set the global experience
// multiplier
func (h *Handler) handleExpMod(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	if len(args) == 0 {
		_, err := s.ChannelMessageSend(m.ChannelID,
			fmt.Sprintf("Current EXP modifier: **%d**", h.progression.Modifier()))
		return err
	}

	n, err := parseInt(args, 0, "modifier")
	if err != nil {
		return err
	}

	old := h.progression.Modifier()
	h.progression.SetModifier(n)
	_, err = s.ChannelMessageSend(m.ChannelID,
		fmt.Sprintf("EXP modifier has been changed from `%d` to **%d**", old, n))
	return err
}

// handleExpCooldown: `expcooldown [seconds]` — show or set the activity
// grant cooldown
func (h *Handler) handleExpCooldown(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	h.mu.Lock()
	current := h.activityCooldown
	h.mu.Unlock()

	if len(args) == 0 {
		_, err := s.ChannelMessageSend(m.ChannelID,
			fmt.Sprintf("The current EXP cooldown is **%s**", current))
		return err
	}

	seconds, err := parseInt(args, 0, "seconds")
	if err != nil {
		return err
	}
	if seconds < 0 {
		return errors.InvalidArgument("cooldown can't be negative")
	}

	h.mu.Lock()
	h.activityCooldown = time.Duration(seconds) * time.Second
	h.mu.Unlock()

	_, err = s.ChannelMessageSend(m.ChannelID,
		fmt.Sprintf("EXP cooldown changed from `%s` to **%ds**", current, seconds))
	return err
}

// handleDeleteLevel: `deletelevel <@user|userID>` — remove a player's
// record entirely
func (h *Handler) handleDeleteLevel(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	if len(args) == 0 {
		return errors.InvalidArgument("usage: deletelevel <@user or user ID>")
	}

	targetID := mentionedUserID(args)
	if targetID == "" {
		targetID = args[0]
	}

	if _, err := h.progression.DeleteProgress(ctx, &progression.DeleteProgressInput{UserID: targetID}); err != nil {
		return err
	}

	return s.MessageReactionAdd(m.ChannelID, m.ID, "👍")
}
