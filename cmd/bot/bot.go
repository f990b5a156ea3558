package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/scrimmagebot/scrimmage/internal/catalog"
	"github.com/scrimmagebot/scrimmage/internal/config"
	"github.com/scrimmagebot/scrimmage/internal/handlers/discord"
	"github.com/scrimmagebot/scrimmage/internal/orchestrators/progression"
	"github.com/scrimmagebot/scrimmage/internal/pkg/clock"
	"github.com/scrimmagebot/scrimmage/internal/pkg/random"
	"github.com/scrimmagebot/scrimmage/internal/redis"
	"github.com/scrimmagebot/scrimmage/internal/repositories/guildsettings"
	"github.com/scrimmagebot/scrimmage/internal/repositories/progress"
	"github.com/scrimmagebot/scrimmage/internal/repositories/skills"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Start the bot",
	Long:  `Start the Discord gateway session with all configured services.`,
	RunE:  runBot,
}

func runBot(cmd *cobra.Command, args []string) error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := redis.NewClient(cfg.RedisAddr, &redis.Options{
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slog.Error("failed to close redis client", "error", err.Error())
		}
	}()

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
	}

	skillRepo, err := skills.NewRedis(&skills.RedisConfig{Client: client})
	if err != nil {
		return fmt.Errorf("failed to create skills repository: %w", err)
	}
	progressRepo, err := progress.NewRedis(&progress.RedisConfig{Client: client})
	if err != nil {
		return fmt.Errorf("failed to create progress repository: %w", err)
	}
	guildRepo, err := guildsettings.NewRedis(&guildsettings.RedisConfig{Client: client})
	if err != nil {
		return fmt.Errorf("failed to create guild settings repository: %w", err)
	}

	skillCatalog, err := catalog.NewService(&catalog.Config{SkillRepo: skillRepo})
	if err != nil {
		return fmt.Errorf("failed to create skill catalog: %w", err)
	}
	if err := skillCatalog.Reload(ctx); err != nil {
		return fmt.Errorf("failed to load skill catalog: %w", err)
	}

	roller := random.New()

	progressionSvc, err := progression.New(&progression.Config{
		ProgressRepo: progressRepo,
		Catalog:      skillCatalog,
		Roller:       roller,
	})
	if err != nil {
		return fmt.Errorf("failed to create progression service: %w", err)
	}

	handler, err := discord.New(&discord.Config{
		Token:            cfg.DiscordToken,
		Progression:      progressionSvc,
		Catalog:          skillCatalog,
		Guilds:           guildRepo,
		Roller:           roller,
		Clock:            clock.New(),
		DefaultPrefix:    cfg.DefaultPrefix,
		OwnerIDs:         cfg.OwnerIDs,
		ActivityCooldown: cfg.ActivityCooldown,
		TurnTimeout:      cfg.TurnTimeout,
		AcceptTimeout:    cfg.AcceptTimeout,
		ConfirmTimeout:   cfg.ConfirmTimeout,
		RoundCap:         cfg.RoundCap,
	})
	if err != nil {
		return fmt.Errorf("failed to create discord handler: %w", err)
	}

	if err := handler.Start(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	slog.Info("bot is running, press ctrl-c to exit")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("received shutdown signal, stopping")
	cancel()

	if err := handler.Stop(); err != nil {
		return fmt.Errorf("failed to close discord session: %w", err)
	}
	return nil
}
