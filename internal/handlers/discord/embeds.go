package discord

import (
	"fmt"
	"math"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/scrimmagebot/scrimmage/internal/catalog"
	"github.com/scrimmagebot/scrimmage/internal/entities"
	"github.com/scrimmagebot/scrimmage/internal/orchestrators/battle"
	"github.com/scrimmagebot/scrimmage/internal/orchestrators/progression"
)

// Embed colors per skill category
const (
	colorBasic   = 0x00cec9
	colorPower   = 0xeb2f06
	colorPassive = 0x55efc4
	colorSpecial = 0x6c5ce7
	colorProfile = 0x1abc9c
)

const progressBarSegments = 14

// progressBar renders the 14-segment bar, filling with masked links so
// the filled part shows in the embed accent color
func progressBar(now, total float64) string {
	if total <= 0 {
		return strings.Repeat("▬", progressBarSegments)
	}
	fill := int(math.Round(progressBarSegments * now / total))
	if fill < 0 {
		fill = 0
	}
	if fill > progressBarSegments {
		fill = progressBarSegments
	}
	return strings.Repeat("[▬](http://g.cn/)", fill) + strings.Repeat("▬", progressBarSegments-fill)
}

var attackTypeNames = [entities.AttackTypeCount]string{"strike", "ranged", "arcane", "divine"}

func appliesToLabel(a entities.AppliesTo) string {
	if a == entities.AppliesAll {
		return "**all**"
	}
	return entities.AttackType(a).Icon()
}

// powerEffectLine describes a power move's rider
func powerEffectLine(effect entities.PowerEffect) string {
	switch effect {
	case entities.PowerEffectPierce:
		return "Ignores the target's damage resistance."
	case entities.PowerEffectLifesteal:
		return "Heal health equal to 2.5% of the damage dealt."
	case entities.PowerEffectManasteal:
		return "Restore energy equal to 5% of the damage dealt."
	case entities.PowerEffectHybridSteal:
		return "Restore health and energy equal to 1% of the damage dealt."
	case entities.PowerEffectRecoil:
		return "Take recoil damage equal to 7% of the damage dealt."
	case entities.PowerEffectSelfStun:
		return "You are exhausted and skip your next turn."
	default:
		return "None"
	}
}

func specialEffectLine(s *entities.SpecialSkill) string {
	switch s.Effect {
	case entities.SpecialScalingBoost:
		return fmt.Sprintf("Attack damage rises by %g%% every round.", s.ModifierPercent)
	case entities.SpecialDamageCap:
		return fmt.Sprintf("The most damage you can receive at once is %g%% of your health.", s.ModifierPercent)
	case entities.SpecialRevive:
		return fmt.Sprintf("When health reaches 0, return to life with %g%% health.", s.ModifierPercent)
	case entities.SpecialExpBoost:
		return fmt.Sprintf("Experience gained after battle is boosted by %g%%.", s.ModifierPercent)
	case entities.SpecialPowerImmunity:
		return "Negates all negative effects of power attacks (energy cost excluded)."
	default:
		return "None"
	}
}

func passiveEffectLine(p *entities.PassiveSkill) string {
	switch p.Effect {
	case entities.PassiveResist:
		return fmt.Sprintf("Resist damage from %s attacks by %g%%.", appliesToLabel(p.AppliesTo), p.ModifierPercent)
	case entities.PassiveBoost:
		return fmt.Sprintf("Increase %s attack damage by %g%%.", appliesToLabel(p.AppliesTo), p.ModifierPercent)
	case entities.PassiveHealthRegen:
		return fmt.Sprintf("Health regenerates by %g%% per round.", p.ModifierPercent)
	default:
		return fmt.Sprintf("Energy regenerates by %g%% per round.", p.ModifierPercent)
	}
}

// skillEmbed renders one skill's detail card
func skillEmbed(skill entities.Skill) *discordgo.MessageEmbed {
	meta := skill.Meta()
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s [%s] %s", skill.Icon(), skill.Category(), meta.Name),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "SP Cost", Value: fmt.Sprintf("%d", meta.SPCost), Inline: true},
		},
	}

	switch sk := skill.(type) {
	case *entities.BasicSkill:
		embed.Color = colorBasic
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Damage",
			Value: fmt.Sprintf("%g%% of attack power (%s)", sk.DamagePercent, attackTypeNames[sk.Type]),
		})
	case *entities.PowerSkill:
		embed.Color = colorPower
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "Energy Cost", Value: fmt.Sprintf("%d", sk.EnergyCost), Inline: true},
			&discordgo.MessageEmbedField{
				Name:  "Damage",
				Value: fmt.Sprintf("%g%% of attack power (%s)", sk.DamagePercent, attackTypeNames[sk.Type]),
			},
			&discordgo.MessageEmbedField{Name: "Special Effect", Value: powerEffectLine(sk.Effect)},
		)
	case *entities.PassiveSkill:
		embed.Color = colorPassive
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Special Effect", Value: passiveEffectLine(sk),
		})
	case *entities.SpecialSkill:
		embed.Color = colorSpecial
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Effect", Value: specialEffectLine(sk),
		})
	}

	if meta.Description != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Skill Info", Value: meta.Description,
		})
	}
	return embed
}

// levelEmbed renders a player's profile card
func levelEmbed(displayName string, prog *entities.PlayerProgress) *discordgo.MessageEmbed {
	threshold := progression.LevelThreshold(prog.Level)
	bar := progressBar(float64(prog.Experience), float64(threshold))

	special := prog.Special
	if special == "" || special == entities.EmptySlot {
		special = "None"
	}

	return &discordgo.MessageEmbed{
		Title: displayName,
		Color: colorProfile,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Health 💗", Value: fmt.Sprintf("%d", prog.MaxHealth), Inline: true},
			{Name: "Energy ⚡", Value: fmt.Sprintf("%d", prog.MaxEnergy), Inline: true},
			{Name: "Power 💪", Value: fmt.Sprintf("%d", prog.AttackPower), Inline: true},
			{Name: "Speed 👟", Value: fmt.Sprintf("%d", prog.Speed), Inline: true},
			{Name: "Basic Attack 👊", Value: prog.Basic, Inline: true},
			{Name: "Special 🏆", Value: special, Inline: true},
			{Name: "Power Attacks 🗡", Value: strings.Join(prog.PowerSlots, "\n")},
			{Name: "Passives 📙", Value: strings.Join(prog.PassiveSlots, "\n")},
			{
				Name: fmt.Sprintf("Level **%d**", prog.Level),
				Value: fmt.Sprintf("%s\n**%d** `EXP` until next level",
					bar, threshold-prog.Experience),
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Total Wins: %d | SP: %d", prog.Wins, prog.SkillPoints),
		},
	}
}

// catalogEmbed lists one category of the catalog grouped by icon
func catalogEmbed(title string, color int, skills []entities.Skill) *discordgo.MessageEmbed {
	groups := make(map[string][]string)
	var order []string
	for _, skill := range skills {
		icon := skill.Icon()
		if _, seen := groups[icon]; !seen {
			order = append(order, icon)
		}
		groups[icon] = append(groups[icon], skill.Meta().Name)
	}

	embed := &discordgo.MessageEmbed{Title: title, Color: color}
	for _, icon := range order {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   icon,
			Value:  strings.Join(groups[icon], "\n"),
			Inline: true,
		})
	}
	return embed
}

// moveList renders the action menu for a duel turn: the basic move plus
// each equipped power, struck through when unaffordable
func moveList(p *battle.Participant) string {
	var b strings.Builder
	fmt.Fprintf(&b, "====Basic Move====\n%s - %s %s", slotEmoji(0), p.Basic.Icon(), p.Basic.Name)

	hasPowers := false
	for _, power := range p.Powers {
		if power != nil {
			hasPowers = true
			break
		}
	}
	if !hasPowers {
		return b.String()
	}

	b.WriteString("\n====Power Moves====")
	for i, power := range p.Powers {
		if power == nil {
			continue
		}
		if p.Energy-float64(power.EnergyCost) >= 0 {
			fmt.Fprintf(&b, "\n%s - %s %s", slotEmoji(i+1), power.Icon(), power.Name)
		} else {
			fmt.Fprintf(&b, "\n~~%s - %s %s~~ Low Energy", slotEmoji(i+1), power.Icon(), power.Name)
		}
	}
	return b.String()
}

// turnEmbed renders the per-turn battle card
func turnEmbed(round int, actor, opponent *battle.Participant) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s's Health: %.0f", opponent.Name, opponent.Health),
		Author: &discordgo.MessageEmbedAuthor{
			Name: fmt.Sprintf("%s's Turn [round %d]", actor.Name, round),
		},
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "Your Health",
				Value: fmt.Sprintf("%s %.0f", progressBar(actor.Health, actor.MaxHealth), actor.Health),
			},
			{
				Name:  "Your Energy",
				Value: fmt.Sprintf("%s %.0f", progressBar(actor.Energy, actor.MaxEnergy), actor.Energy),
			},
			{Name: "Options", Value: moveList(actor)},
		},
	}
}

// learnedSkillsEmbed renders the user's learned skills grouped by
// category. Names no longer in the catalog are listed unadorned.
func learnedSkillsEmbed(displayName string, prog *entities.PlayerProgress, snap *catalog.Snapshot) *discordgo.MessageEmbed {
	var groups [4][]string
	for _, name := range prog.Learned {
		skill, ok := snap.Find(name)
		if !ok {
			continue
		}
		cat := skill.Category()
		groups[cat] = append(groups[cat], fmt.Sprintf("▶ %s %s", skill.Icon(), name))
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s's skills", displayName),
		Color: colorProfile,
	}
	labels := map[entities.SkillCategory]string{
		entities.CategoryBasic:   "Basic Attacks",
		entities.CategoryPower:   "Power Attacks",
		entities.CategoryPassive: "Passives",
		entities.CategorySpecial: "Specials",
	}
	for _, cat := range []entities.SkillCategory{
		entities.CategoryBasic, entities.CategoryPower, entities.CategoryPassive, entities.CategorySpecial,
	} {
		if len(groups[cat]) > 0 {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:   labels[cat],
				Value:  strings.Join(groups[cat], "\n"),
				Inline: true,
			})
		}
	}
	return embed
}
