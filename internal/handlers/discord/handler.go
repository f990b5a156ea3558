// Package discord is the bot's chat surface: the gateway session, the
// prefix command router, and the interactive reaction flows that drive
// duels and skill management.
package discord

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/scrimmagebot/scrimmage/internal/catalog"
	"github.com/scrimmagebot/scrimmage/internal/errors"
	"github.com/scrimmagebot/scrimmage/internal/orchestrators/progression"
	"github.com/scrimmagebot/scrimmage/internal/pkg/clock"
	"github.com/scrimmagebot/scrimmage/internal/pkg/random"
	"github.com/scrimmagebot/scrimmage/internal/repositories/guildsettings"
)

// Config holds the dependencies and tuning for the Discord handler
type Config struct {
	Token       string
	Progression progression.Service
	Catalog     *catalog.Service
	Guilds      guildsettings.Repository
	Roller      random.Roller
	Clock       clock.Clock

	DefaultPrefix    string
	OwnerIDs         []string
	ActivityCooldown time.Duration
	TurnTimeout      time.Duration
	AcceptTimeout    time.Duration
	ConfirmTimeout   time.Duration
	RoundCap         int
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Token == "" {
		vb.RequiredField("Token")
	}
	if c.Progression == nil {
		vb.RequiredField("Progression")
	}
	if c.Catalog == nil {
		vb.RequiredField("Catalog")
	}
	if c.Guilds == nil {
		vb.RequiredField("Guilds")
	}
	if c.Roller == nil {
		vb.RequiredField("Roller")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	if c.DefaultPrefix == "" {
		vb.RequiredField("DefaultPrefix")
	}

	return vb.Build()
}

type commandFunc func(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error

// Handler owns the gateway session and routes messages to commands
type Handler struct {
	session     *discordgo.Session
	progression progression.Service
	catalog     *catalog.Service
	guilds      guildsettings.Repository
	roller      random.Roller
	clock       clock.Clock

	defaultPrefix    string
	owners           map[string]struct{}
	activityCooldown time.Duration
	turnTimeout      time.Duration
	acceptTimeout    time.Duration
	confirmTimeout   time.Duration
	roundCap         int

	reactions *reactionWaiter
	commands  map[string]commandFunc

	mu        sync.Mutex
	lastGrant map[string]time.Time
	lastMsg   map[string]string
	inDuel    map[string]struct{}
}

// New creates the handler and its gateway session
func New(cfg *Config) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create discord session")
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsMessageContent

	owners := make(map[string]struct{}, len(cfg.OwnerIDs))
	for _, id := range cfg.OwnerIDs {
		owners[id] = struct{}{}
	}

	h := &Handler{
		session:          session,
		progression:      cfg.Progression,
		catalog:          cfg.Catalog,
		guilds:           cfg.Guilds,
		roller:           cfg.Roller,
		clock:            cfg.Clock,
		defaultPrefix:    cfg.DefaultPrefix,
		owners:           owners,
		activityCooldown: cfg.ActivityCooldown,
		turnTimeout:      cfg.TurnTimeout,
		acceptTimeout:    cfg.AcceptTimeout,
		confirmTimeout:   cfg.ConfirmTimeout,
		roundCap:         cfg.RoundCap,
		reactions:        newReactionWaiter(),
		lastGrant:        make(map[string]time.Time),
		lastMsg:          make(map[string]string),
		inDuel:           make(map[string]struct{}),
	}
	h.registerCommands()

	session.AddHandler(h.onReady)
	session.AddHandler(h.onMessageCreate)
	session.AddHandler(h.reactions.handle)

	return h, nil
}

func (h *Handler) registerCommands() {
	h.commands = map[string]commandFunc{
		"level":     h.handleLevel,
		"lvl":       h.handleLevel,
		"skill":     h.handleSkill,
		"skills":    h.handleSkillList,
		"sl":        h.handleSkillList,
		"learn":     h.handleLearn,
		"equip":     h.handleEquip,
		"train":     h.handleTrain,
		"challenge": h.handleChallenge,
		"prefix":    h.handlePrefix,
		"ignore":    h.handleIgnore,

		// admin
		"addbasic":    h.adminOnly(h.handleAddBasic),
		"addpower":    h.adminOnly(h.handleAddPower),
		"addpassive":  h.adminOnly(h.handleAddPassive),
		"addspecial":  h.adminOnly(h.handleAddSpecial),
		"removeskill": h.adminOnly(h.handleRemoveSkill),
		"giveexp":     h.adminOnly(h.handleGiveExp),
		"ge":          h.adminOnly(h.handleGiveExp),
		"expmod":      h.adminOnly(h.handleExpMod),
		"expcooldown": h.adminOnly(h.handleExpCooldown),
		"deletelevel": h.adminOnly(h.handleDeleteLevel),
	}
}

// Start opens the gateway connection
func (h *Handler) Start() error {
	if err := h.session.Open(); err != nil {
		return errors.Wrap(err, "failed to open discord session")
	}
	return nil
}

// Stop closes the gateway connection
func (h *Handler) Stop() error {
	return h.session.Close()
}

func (h *Handler) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	slog.Info("discord session ready",
		"username", r.User.Username,
		"guilds", len(r.Guilds),
	)
}

// isOwner reports whether the user may run admin commands
func (h *Handler) isOwner(userID string) bool {
	_, ok := h.owners[userID]
	return ok
}

func (h *Handler) adminOnly(next commandFunc) commandFunc {
	return func(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
		if !h.isOwner(m.Author.ID) {
			return errors.PermissionDenied("this command is reserved for bot administrators")
		}
		return next(ctx, s, m, args)
	}
}

// guildPrefix resolves the command prefix for a guild, falling back to
// the default when the guild has no settings
func (h *Handler) guildPrefix(ctx context.Context, guildID string) string {
	if guildID == "" {
		return h.defaultPrefix
	}
	out, err := h.guilds.Get(ctx, guildsettings.GetInput{GuildID: guildID})
	if err != nil || out.Settings.Prefix == "" {
		return h.defaultPrefix
	}
	return out.Settings.Prefix
}

// channelIgnored reports whether commands and activity grants are
// suppressed in the channel
func (h *Handler) channelIgnored(ctx context.Context, guildID, channelID string) bool {
	if guildID == "" {
		return false
	}
	out, err := h.guilds.Get(ctx, guildsettings.GetInput{GuildID: guildID})
	if err != nil {
		return false
	}
	return out.Settings.IsIgnored(channelID)
}

func (h *Handler) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	ctx := context.Background()

	name, args, ok := parseCommand(m.Content, h.guildPrefix(ctx, m.GuildID), s.State.User.ID)
	if !ok {
		h.handleActivity(ctx, s, m)
		return
	}

	cmd, ok := h.commands[name]
	if !ok {
		return
	}

	if h.channelIgnored(ctx, m.GuildID, m.ChannelID) {
		return
	}

	if err := cmd(ctx, s, m, args); err != nil {
		h.reportError(s, m.ChannelID, err)
	}
}

// reportError turns a taxonomy error into a user-facing message.
// Internal failures get a generic line and a log entry.
func (h *Handler) reportError(s *discordgo.Session, channelID string, err error) {
	msg := errors.GetMessage(err)
	switch {
	case errors.IsUnavailable(err),
		errors.IsNotFound(err),
		errors.IsInvalidArgument(err),
		errors.IsAlreadyExists(err),
		errors.IsFailedPrecondition(err),
		errors.IsPermissionDenied(err),
		errors.IsDeadlineExceeded(err):
		// user-caused, the message is safe to show
	default:
		slog.Error("command failed", "error", err.Error())
		msg = "Something went wrong, try again later"
	}
	_, _ = s.ChannelMessageSend(channelID, msg)
}

// parseCommand splits a message into a command name and arguments if it
// starts with the prefix or a bot mention
func parseCommand(content, prefix, botID string) (string, []string, bool) {
	var rest string
	switch {
	case strings.HasPrefix(content, prefix):
		rest = content[len(prefix):]
	case strings.HasPrefix(content, "<@"+botID+">"):
		rest = content[len("<@"+botID+">"):]
	case strings.HasPrefix(content, "<@!"+botID+">"):
		rest = content[len("<@!"+botID+">"):]
	default:
		return "", nil, false
	}

	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}

// mentionedUserID extracts the first user mention from the arguments
func mentionedUserID(args []string) string {
	for _, arg := range args {
		if strings.HasPrefix(arg, "<@") && strings.HasSuffix(arg, ">") {
			id := strings.TrimSuffix(strings.TrimPrefix(arg, "<@"), ">")
			id = strings.TrimPrefix(id, "!")
			if id != "" {
				return id
			}
		}
	}
	return ""
}
