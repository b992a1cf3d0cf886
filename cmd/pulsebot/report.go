package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pulsebot/internal/analytics"
	"pulsebot/internal/config"
	"pulsebot/internal/convmem"
	"pulsebot/internal/persist"
)

func reportCmd() *cobra.Command {
	var topN int
	var minReplies int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the analytics report from the persisted snapshot",
		Long:  "Loads the message snapshot directly and prints the summary, top help topics, and most active threads. No network access.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(resolveConfigPath())
			if err != nil {
				return err
			}

			store, err := persist.OpenStore(cfg.Persistence.DBPath, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			ledger := analytics.NewLedger(logger)
			conv := convmem.NewStore(convmem.StoreConfig{Logger: logger})
			pm := persist.NewManager(persist.ManagerConfig{
				Store: store, Ledger: ledger, Conversations: conv, Logger: logger,
			})
			pm.Load()

			if !pm.HasData() {
				fmt.Println("No tracked messages yet.")
				return nil
			}

			fmt.Print(analytics.SummaryReport(ledger.Summarize()).Text)
			fmt.Println()
			fmt.Print(analytics.HelpTopicsReport(ledger.TopHelpTopics(topN)).Text)
			fmt.Println()
			fmt.Print(analytics.ThreadsReport(ledger.TopThreads(minReplies, topN), minReplies).Text)
			return nil
		},
	}

	cmd.Flags().IntVar(&topN, "top", 5, "entries per ranking")
	cmd.Flags().IntVar(&minReplies, "min-replies", 3, "minimum replies for a thread to rank")
	return cmd
}
