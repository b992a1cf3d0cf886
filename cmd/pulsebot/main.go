package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pulsebot/internal/config"
)

var (
	version    = "0.3.0"
	logger     *slog.Logger
	configPath string // overridable via --config flag
)

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:   "pulsebot",
		Short: "pulsebot: community analytics and welcome-review bot",
		Long:  "pulsebot tracks community channel activity, answers analytics questions, and runs a human-reviewed welcome reply workflow.",
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.json (default: ~/.pulsebot/config.json)")

	root.AddCommand(initCmd())
	root.AddCommand(runCmd())
	root.AddCommand(reportCmd())
	root.AddCommand(doctorCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the default config and channel map",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			if _, err := os.Stat(cfgPath); err == nil {
				return fmt.Errorf("config already exists at %s", cfgPath)
			}
			cfg := config.Defaults()
			if err := config.Save(cfgPath, cfg); err != nil {
				return err
			}
			if _, err := os.Stat(cfg.Discord.ChannelsFile); os.IsNotExist(err) {
				if err := os.MkdirAll(filepath.Dir(cfg.Discord.ChannelsFile), 0o755); err != nil {
					return err
				}
				if err := os.WriteFile(cfg.Discord.ChannelsFile, []byte(config.DefaultChannelsYAML), 0o644); err != nil {
					return err
				}
			}
			logger.Info("initialized", "config", cfgPath, "channels", cfg.Discord.ChannelsFile)
			fmt.Println("Edit the channel map and set DISCORD_TOKEN / OPENAI_API_KEY, then run 'pulsebot run'.")
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pulsebot v%s\n", version)
		},
	}
}
