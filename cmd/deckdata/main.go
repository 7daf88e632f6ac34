package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/deckmeta/go-data/cache"
	"github.com/deckmeta/go-data/config"
	"github.com/deckmeta/go-data/fetch"
	"github.com/deckmeta/go-data/logger"
	"github.com/deckmeta/go-data/reports"
	"github.com/deckmeta/go-data/resilience"
)

func newClient() (*reports.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.NewConsoleLogger()
	transport := fetch.NewTransport(time.Duration(cfg.TimeoutMS)*time.Millisecond, log)
	fetcher := fetch.NewClient(transport, resilience.RetryConfig{
		MaxAttempts: cfg.RetryAttempts,
		Delay:       time.Duration(cfg.RetryDelayMS) * time.Millisecond,
	}, log)
	c := cache.NewInMemory(
		cache.WithDefaultTTL(time.Duration(cfg.JSONCacheTTLMS)*time.Millisecond),
		cache.WithMaxEntries(cfg.CacheMaxEntries),
		cache.WithCleanupThreshold(cfg.CacheCleanupThreshold),
	)
	return reports.NewClient(cfg, fetcher, c, log), nil
}

func printJSON(v any) error {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(buf))
	return nil
}

var rootCmd = &cobra.Command{
	Use:   "deckdata",
	Short: "Query published tournament report data",
}

var tournamentsCmd = &cobra.Command{
	Use:   "tournaments",
	Short: "List published tournaments, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		names, err := client.Tournaments(context.Background())
		if err != nil {
			return err
		}
		return printJSON(names)
	},
}

var masterCmd = &cobra.Command{
	Use:   "master <tournament>",
	Short: "Print a tournament's card-usage report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		m, err := client.Master(context.Background(), args[0])
		if err != nil {
			return err
		}
		return printJSON(m)
	},
}

var pickCmd = &cobra.Command{
	Use:   "pick <tournament> <card>",
	Short: "Pick the representative archetype for a card in an event",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		minTotal, err := cmd.Flags().GetInt("min-total")
		if err != nil {
			return err
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		picked, err := client.RepresentativeArchetype(context.Background(), args[0], args[1], minTotal)
		if err != nil {
			return err
		}
		if picked == nil {
			fmt.Println("no archetype qualifies")
			return nil
		}
		return printJSON(picked)
	},
}

func main() {
	pickCmd.Flags().Int("min-total", 0, "minimum archetype deck count to consider")
	rootCmd.AddCommand(tournamentsCmd, masterCmd, pickCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
