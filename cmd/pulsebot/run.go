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

	"pulsebot/internal/analytics"
	"pulsebot/internal/approval"
	"pulsebot/internal/bus"
	"pulsebot/internal/channel"
	"pulsebot/internal/classify"
	"pulsebot/internal/config"
	"pulsebot/internal/convmem"
	"pulsebot/internal/engine"
	"pulsebot/internal/llm"
	"pulsebot/internal/metrics"
	"pulsebot/internal/persist"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the bot: connect channels and process messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(resolveConfigPath())
			if err != nil {
				return err
			}
			applyLogLevel(cfg.General.LogLevel)

			if cfg.Discord.Token == "" {
				return fmt.Errorf("discord token not configured (set DISCORD_TOKEN)")
			}
			if cfg.OpenAI.APIKey == "" {
				return fmt.Errorf("openai api key not configured (set OPENAI_API_KEY)")
			}

			channels, err := config.LoadChannels(cfg.Discord.ChannelsFile)
			if err != nil {
				return err
			}
			if len(channels) == 0 {
				return fmt.Errorf("no enabled channels in %s", cfg.Discord.ChannelsFile)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, err := persist.OpenStore(cfg.Persistence.DBPath, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			coll := metrics.NewCollector()
			ledger := analytics.NewLedger(logger)
			conv := convmem.NewStore(convmem.StoreConfig{
				Retention: time.Duration(cfg.Memory.RetentionHours) * time.Hour,
				Logger:    logger,
			})
			pm := persist.NewManager(persist.ManagerConfig{
				Store:                store,
				Ledger:               ledger,
				Conversations:        conv,
				Metrics:              coll,
				MessageDebounce:      time.Duration(cfg.Persistence.MessageDebounceSeconds) * time.Second,
				ConversationDebounce: time.Duration(cfg.Persistence.ConversationDebounceSeconds) * time.Second,
				Logger:               logger,
			})
			pm.Load()

			completer := llm.New(llm.Config{
				APIKey:      cfg.OpenAI.APIKey,
				Model:       cfg.OpenAI.Model,
				MaxTokens:   cfg.OpenAI.MaxTokens,
				Temperature: cfg.OpenAI.Temperature,
				Timeout:     time.Duration(cfg.OpenAI.TimeoutSeconds) * time.Second,
				Logger:      logger,
			})

			discord := channel.NewDiscord(channel.DiscordConfig{
				Token:           cfg.Discord.Token,
				GuildID:         cfg.Discord.GuildID,
				ReviewChannelID: cfg.Discord.ReviewChannelID,
				Channels:        channels,
				BackfillLimit:   cfg.Discord.BackfillLimit,
				Logger:          logger,
			})

			b := bus.New(100, logger)
			eng := engine.New(engine.Config{
				Bus:           b,
				Classifier:    classify.New(classify.Config{Completer: completer, Metrics: coll, Logger: logger}),
				Completer:     completer,
				Ledger:        ledger,
				Conversations: conv,
				Workflow:      approval.NewWorkflow(logger),
				Persist:       pm,
				Review:        discord,
				Metrics:       coll,
				Logger:        logger,
				Concurrency:   cfg.General.MaxConcurrentMessages,
			})
			discord.AttachDecider(eng)

			if err := discord.Start(ctx, b); err != nil {
				return err
			}
			defer discord.Stop()

			if cfg.Telegram.Enabled {
				if cfg.Telegram.Token == "" {
					return fmt.Errorf("telegram enabled but token not configured")
				}
				tg := channel.NewTelegram(channel.TelegramConfig{
					Token:     cfg.Telegram.Token,
					AllowFrom: cfg.Telegram.AllowFrom,
					Queries:   eng,
					Logger:    logger,
				})
				if err := tg.Start(ctx); err != nil {
					return err
				}
			}

			go eng.Run(ctx)

			if !pm.HasData() && cfg.Discord.BackfillLimit > 0 {
				logger.Info("no snapshot found, backfilling channel history")
				if err := discord.Backfill(ctx); err != nil {
					logger.Warn("backfill incomplete", "err", err)
				}
			}

			logger.Info("pulsebot running", "version", version, "channels", len(channels))
			<-ctx.Done()

			logger.Info("shutting down, flushing snapshots")
			b.Close()
			pm.Flush()
			for _, nv := range coll.Snapshot() {
				logger.Info("counter", "name", nv.Name, "value", nv.Value)
			}
			return nil
		},
	}
}

func applyLogLevel(level string) {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
