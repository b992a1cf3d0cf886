package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pulsebot/internal/config"
	"pulsebot/internal/persist"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostic checks on your pulsebot installation",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			fmt.Printf("pulsebot doctor v%s\n\n", version)

			passed, failed := 0, 0

			if _, err := os.Stat(cfgPath); err != nil {
				printFail("Config file", fmt.Sprintf("not found at %s", cfgPath))
				fmt.Println("\nRun 'pulsebot init' to create a default configuration.")
				return nil
			}
			printPass("Config file", cfgPath)
			passed++

			cfg, err := config.Load(cfgPath)
			if err != nil {
				printFail("Config validation", err.Error())
				fmt.Printf("\n%d passed, %d failed\n", passed, failed+1)
				return nil
			}
			printPass("Config validation", "valid")
			passed++

			if cfg.Discord.Token == "" {
				printFail("Discord token", "empty (set DISCORD_TOKEN)")
				failed++
			} else {
				printPass("Discord token", "present")
				passed++
			}

			if cfg.OpenAI.APIKey == "" {
				printFail("OpenAI key", "empty (set OPENAI_API_KEY)")
				failed++
			} else {
				printPass("OpenAI key", "present")
				passed++
			}

			channels, err := config.LoadChannels(cfg.Discord.ChannelsFile)
			switch {
			case err != nil:
				printFail("Channel map", err.Error())
				failed++
			case len(channels) == 0:
				printFail("Channel map", "no enabled channels")
				failed++
			default:
				printPass("Channel map", fmt.Sprintf("%d enabled channels", len(channels)))
				passed++
			}

			store, err := persist.OpenStore(cfg.Persistence.DBPath, logger)
			if err != nil {
				printFail("Snapshot database", err.Error())
				failed++
			} else {
				printPass("Snapshot database", cfg.Persistence.DBPath)
				passed++
				store.Close()
			}

			fmt.Printf("\n%d passed, %d failed\n", passed, failed)
			return nil
		},
	}
}

func printPass(name, detail string) {
	fmt.Printf("  ok    %-20s %s\n", name, detail)
}

func printFail(name, detail string) {
	fmt.Printf("  FAIL  %-20s %s\n", name, detail)
}
