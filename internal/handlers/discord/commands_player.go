package discord

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/scrimmagebot/scrimmage/internal/entities"
	"github.com/scrimmagebot/scrimmage/internal/errors"
	"github.com/scrimmagebot/scrimmage/internal/orchestrators/progression"
	"github.com/scrimmagebot/scrimmage/internal/repositories/guildsettings"
)

// handleLevel shows a player's profile card
func (h *Handler) handleLevel(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	target := m.Author
	if len(m.Mentions) > 0 {
		target = m.Mentions[0]
	}
	if target.Bot {
		_, err := s.ChannelMessageSend(m.ChannelID, "That's a bot")
		return err
	}

	out, err := h.progression.GetProgress(ctx, &progression.GetProgressInput{UserID: target.ID})
	if errors.IsNotFound(err) {
		_, err = s.ChannelMessageSend(m.ChannelID, "Can't find anything about that person")
		return err
	}
	if err != nil {
		return err
	}

	_, err = s.ChannelMessageSendEmbed(m.ChannelID, levelEmbed(target.Username, out.Progress))
	return err
}

// handleSkill shows the caller's learned skills, or one skill's detail
// card when a name is given
func (h *Handler) handleSkill(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	snap, err := h.catalog.Current()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		out, err := h.progression.GetProgress(ctx, &progression.GetProgressInput{UserID: m.Author.ID})
		if err != nil {
			return err
		}
		_, err = s.ChannelMessageSendEmbed(m.ChannelID,
			learnedSkillsEmbed(m.Author.Username, out.Progress, snap))
		return err
	}

	name := strings.Join(args, " ")
	skill, ok := snap.Find(name)
	if !ok {
		_, err = s.ChannelMessageSend(m.ChannelID, "Hm? What skill is that?")
		return err
	}

	_, err = s.ChannelMessageSendEmbed(m.ChannelID, skillEmbed(skill))
	return err
}

// handleSkillList lists one category of the catalog
func (h *Handler) handleSkillList(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	if len(args) == 0 {
		_, err := s.ChannelMessageSend(m.ChannelID, "Which category? basic, power, passive, or special")
		return err
	}

	snap, err := h.catalog.Current()
	if err != nil {
		return err
	}

	var embed *discordgo.MessageEmbed
	switch strings.ToLower(args[0]) {
	case "basic":
		skills := make([]entities.Skill, 0, len(snap.Basics))
		for _, sk := range snap.Basics {
			skills = append(skills, sk)
		}
		embed = catalogEmbed("Basic Skills", colorBasic, skills)
	case "power":
		skills := make([]entities.Skill, 0, len(snap.Powers))
		for _, sk := range snap.Powers {
			skills = append(skills, sk)
		}
		embed = catalogEmbed("Attack Skills", colorPower, skills)
	case "passive":
		skills := make([]entities.Skill, 0, len(snap.Passives))
		for _, sk := range snap.Passives {
			skills = append(skills, sk)
		}
		embed = catalogEmbed("Passive Skills", colorPassive, skills)
	case "special":
		skills := make([]entities.Skill, 0, len(snap.Specials))
		for _, sk := range snap.Specials {
			skills = append(skills, sk)
		}
		embed = catalogEmbed("Special Skills", colorSpecial, skills)
	default:
		return errors.InvalidArgumentf("unknown category %q", args[0])
	}

	if len(embed.Fields) == 0 {
		_, err := s.ChannelMessageSend(m.ChannelID, "Nothing in that category yet")
		return err
	}

	_, err = s.ChannelMessageSendEmbed(m.ChannelID, embed)
	return err
}

// handleLearn spends SP on a skill after a reaction confirmation
func (h *Handler) handleLearn(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	if len(args) == 0 {
		return errors.InvalidArgument("which skill? usage: learn <name>")
	}
	name := strings.Join(args, " ")

	snap, err := h.catalog.Current()
	if err != nil {
		return err
	}
	skill, ok := snap.Find(name)
	if !ok {
		return errors.NotFound("Such skill don't exist.")
	}

	progOut, err := h.progression.GetProgress(ctx, &progression.GetProgressInput{UserID: m.Author.ID})
	if errors.IsNotFound(err) {
		return errors.FailedPrecondition("You have not begun your adventure yet. Try again later.")
	}
	if err != nil {
		return err
	}

	current := progOut.Progress.SkillPoints
	after := current - skill.Meta().SPCost

	msg, err := s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Content: fmt.Sprintf("You sure you want to learn this skill?\nYour current SP: **%d**\nSP after: **%d**",
			current, after),
		Embed: skillEmbed(skill),
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
		_, _ = s.ChannelMessageEdit(m.ChannelID, msg.ID, "Action cancelled")
		return nil
	}

	out, err := h.progression.LearnSkill(ctx, &progression.LearnSkillInput{
		UserID:    m.Author.ID,
		SkillName: name,
	})
	if err != nil {
		return err
	}

	_, _ = s.ChannelMessageEdit(m.ChannelID, msg.ID,
		fmt.Sprintf("%s learned `%s`!\nSP: %d ▶ %d",
			m.Author.Mention(), name, current, out.Progress.SkillPoints))
	return nil
}

// confirm adds the yes/no reactions and waits for the given user's pick
func (h *Handler) confirm(ctx context.Context, s *discordgo.Session, msg *discordgo.Message, userID string) (string, error) {
	for _, emoji := range []string{emojiYes, emojiNo} {
		if err := s.MessageReactionAdd(msg.ChannelID, msg.ID, emoji); err != nil {
			return "", errors.Wrap(err, "failed to add reaction")
		}
	}

	waitCtx, cancel := context.WithTimeout(ctx, h.confirmTimeout)
	defer cancel()

	return h.reactions.wait(waitCtx, msg.ID, userID, []string{emojiYes, emojiNo})
}

// handleEquip slots a learned skill: `equip <name> [slot]`
func (h *Handler) handleEquip(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	if len(args) == 0 {
		return errors.InvalidArgument("which skill? usage: equip <name> [slot]")
	}

	slot := 1
	if len(args) > 1 {
		if parsed, err := strconv.Atoi(args[len(args)-1]); err == nil {
			slot = parsed
			args = args[:len(args)-1]
		}
	}
	name := strings.Join(args, " ")

	out, err := h.progression.EquipSkill(ctx, &progression.EquipSkillInput{
		UserID:    m.Author.ID,
		SkillName: name,
		Slot:      slot,
	})
	if err != nil {
		return err
	}

	switch out.Category {
	case entities.CategoryPower, entities.CategoryPassive:
		_, err = s.ChannelMessageSend(m.ChannelID,
			fmt.Sprintf("%s |=> **%s**", slotEmoji(slot), name))
	default:
		_, err = s.ChannelMessageSend(m.ChannelID,
			fmt.Sprintf("Updated your %s skill to **%s**!", strings.ToLower(out.Category.String()), name))
	}
	return err
}

var trainableStats = map[string]progression.Stat{
	"hp":     progression.StatHealth,
	"health": progression.StatHealth,
	"mp":     progression.StatEnergy,
	"energy": progression.StatEnergy,
	"power":  progression.StatPower,
	"speed":  progression.StatSpeed,
}

// handleTrain spends one SP on a stat: `train <hp|mp|power|speed>`
func (h *Handler) handleTrain(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	if len(args) == 0 {
		return errors.InvalidArgument("which stat? usage: train <hp|mp|power|speed>")
	}

	stat, ok := trainableStats[strings.ToLower(args[0])]
	if !ok {
		return errors.InvalidArgumentf("unknown stat %q, pick hp, mp, power, or speed", args[0])
	}

	out, err := h.progression.TrainStat(ctx, &progression.TrainStatInput{
		UserID: m.Author.ID,
		Stat:   stat,
	})
	if err != nil {
		return err
	}

	_, err = s.ChannelMessageSend(m.ChannelID,
		fmt.Sprintf("%s +**%d**! Remaining SP: %d", stat, out.Gained, out.Progress.SkillPoints))
	return err
}

// requireManager gates guild-settings commands to server managers and
// bot owners
func (h *Handler) requireManager(s *discordgo.Session, m *discordgo.MessageCreate) error {
	if h.isOwner(m.Author.ID) {
		return nil
	}
	perms, err := s.UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil {
		return errors.Wrap(err, "failed to check permissions")
	}
	if perms&discordgo.PermissionManageServer == 0 {
		return errors.PermissionDenied("you need Manage Server to do that")
	}
	return nil
}

// handlePrefix shows or changes the guild's command prefix
func (h *Handler) handlePrefix(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	if len(args) == 0 {
		_, err := s.ChannelMessageSend(m.ChannelID,
			fmt.Sprintf("Current prefix: `%s`", h.guildPrefix(ctx, m.GuildID)))
		return err
	}

	if err := h.requireManager(s, m); err != nil {
		return err
	}

	settings := h.loadSettings(ctx, m.GuildID)
	settings.Prefix = args[0]
	if _, err := h.guilds.Save(ctx, guildsettings.SaveInput{Settings: settings}); err != nil {
		return err
	}

	_, err := s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("Prefix changed to `%s`", args[0]))
	return err
}

// handleIgnore adds or removes a channel from the activity/command
// ignore list: `ignore <add|remove> [#channel]`
func (h *Handler) handleIgnore(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	if err := h.requireManager(s, m); err != nil {
		return err
	}
	if len(args) == 0 {
		return errors.InvalidArgument("usage: ignore <add|remove> [#channel]")
	}

	channelID := m.ChannelID
	if len(args) > 1 {
		if id := mentionedChannelID(args[1]); id != "" {
			channelID = id
		}
	}

	settings := h.loadSettings(ctx, m.GuildID)

	switch strings.ToLower(args[0]) {
	case "add":
		if !settings.IsIgnored(channelID) {
			settings.IgnoredChannels = append(settings.IgnoredChannels, channelID)
		}
	case "remove":
		kept := settings.IgnoredChannels[:0]
		for _, id := range settings.IgnoredChannels {
			if id != channelID {
				kept = append(kept, id)
			}
		}
		settings.IgnoredChannels = kept
	default:
		return errors.InvalidArgumentf("unknown action %q, use add or remove", args[0])
	}

	if _, err := h.guilds.Save(ctx, guildsettings.SaveInput{Settings: settings}); err != nil {
		return err
	}

	_, err := s.ChannelMessageSend(m.ChannelID, "👍")
	return err
}

// loadSettings fetches the guild's settings, or a fresh default record
func (h *Handler) loadSettings(ctx context.Context, guildID string) *guildsettings.Settings {
	out, err := h.guilds.Get(ctx, guildsettings.GetInput{GuildID: guildID})
	if err != nil {
		return &guildsettings.Settings{GuildID: guildID}
	}
	return out.Settings
}

// mentionedChannelID extracts the channel ID from a <#id> mention
func mentionedChannelID(arg string) string {
	if strings.HasPrefix(arg, "<#") && strings.HasSuffix(arg, ">") {
		return strings.TrimSuffix(strings.TrimPrefix(arg, "<#"), ">")
	}
	return ""
}
