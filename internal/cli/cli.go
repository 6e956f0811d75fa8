package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/spfc-calendar/internal/config"
	"github.com/pfrederiksen/spfc-calendar/internal/event"
	"github.com/pfrederiksen/spfc-calendar/internal/logger"
	"github.com/pfrederiksen/spfc-calendar/internal/scraper"
	"github.com/pfrederiksen/spfc-calendar/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// Version is reported by the API and overridable at link time.
var Version = "1.1.0"

var (
	flagConfig   string
	flagDataDir  string
	flagLogLevel string
	flagFormat   string
	flagSort     string
	flagForce    bool
	flagAll      bool
	flagPending  bool
	flagWeeks    int
	flagVerbose  bool
	flagRef      string
	flagPast     bool

	cfg *config.Config
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spfc-calendar",
		Short: "São Paulo FC fixtures scraper and calendar API",
		Long: `Extracts the São Paulo FC fixture list through Firecrawl, caches it on disk,
tracks which fixtures were added to an external calendar and serves everything
over an authenticated HTTP API.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: loadConfig,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Directory holding the fixture cache (overrides config)")
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")

	cmd.AddCommand(
		newFetchCmd(),
		newStatusCmd(),
		newClearCmd(),
		newMarkCmd(),
		newUnmarkCmd(),
		newSyncedCmd(),
		newServeCmd(),
	)

	return cmd
}

// loadConfig resolves configuration and installs the process logger before
// any subcommand runs.
func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("data-dir") {
		loaded.DataDir = flagDataDir
	}
	if cmd.Flags().Changed("log-level") {
		loaded.LogLevel = flagLogLevel
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, _ := logger.ParseLevel(loaded.LogLevel)
	logger.SetDefault(logger.New(level, os.Stderr))

	cfg = loaded
	return nil
}

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Print fixtures, refreshing the cache when it is stale",
		Args:  cobra.NoArgs,
		RunE:  runFetch,
	}

	cmd.Flags().BoolVar(&flagForce, "force", false, "Ignore a valid cache and extract again")
	cmd.Flags().BoolVar(&flagAll, "all", false, "Include fixtures that already kicked off")
	cmd.Flags().BoolVar(&flagPending, "pending", false, "Only fixtures not yet in the external calendar")
	cmd.Flags().IntVar(&flagWeeks, "weeks", 0, "Only fixtures within N weeks (0 = no limit)")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text, json or ics")
	cmd.Flags().StringVar(&flagSort, "sort", "date", "Sort order: date, competition or opponent")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Show IDs and calendar references")

	return cmd
}

// runFetch is the main command logic
func runFetch(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(flagFormat, true)
	if err != nil {
		return err
	}
	order, err := parseSortOrder(flagSort)
	if err != nil {
		return err
	}
	if flagWeeks < 0 {
		return fmt.Errorf("--weeks must not be negative")
	}

	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	sc := scraper.New(store, scraper.Config{
		URL:         cfg.CalendarURL,
		Credentials: cfg.Credentials(),
		MaxRetries:  cfg.FirecrawlMaxRetries,
		RetryDelay:  cfg.RetryDelay(),
		BaseURL:     cfg.FirecrawlBaseURL,
	})

	events, fromCache, err := sc.Fetch(cmd.Context(), flagForce)
	if err != nil {
		return err
	}

	now := time.Now()
	event.SortByDate(events)
	switch {
	case flagWeeks > 0:
		events = event.FilterWithinWeeks(events, flagWeeks, now)
	case !flagAll:
		events = event.FilterFuture(events, now)
	}
	if flagPending {
		events = event.FilterPending(events)
	}
	sortEvents(events, order)

	return WriteOutput(cmd.OutOrStdout(), &OutputResult{
		CheckedAt:  now.UTC(),
		Events:     events,
		EventCount: len(events),
		FromCache:  fromCache,
		ShowAll:    flagAll,
	}, format, flagVerbose)
}

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show cache freshness and size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(flagFormat, false)
			if err != nil {
				return err
			}
			store, err := storage.New(cfg.DataDir)
			if err != nil {
				return fmt.Errorf("initializing storage: %w", err)
			}
			return WriteStatus(cmd.OutOrStdout(), store.Status(), format)
		},
	}

	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")

	return cmd
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the fixture cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.New(cfg.DataDir)
			if err != nil {
				return fmt.Errorf("initializing storage: %w", err)
			}
			if err := store.Clear(); err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
			return nil
		},
	}
}

func newMarkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mark ID",
		Short: "Record that a fixture was added to the external calendar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.New(cfg.DataDir)
			if err != nil {
				return fmt.Errorf("initializing storage: %w", err)
			}
			id := strings.TrimSpace(args[0])
			if !store.MarkSynced(id, flagRef) {
				return fmt.Errorf("fixture %s not found in cache", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %s as synced.\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagRef, "google-event-id", "", "External calendar event reference")

	return cmd
}

func newUnmarkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unmark ID",
		Short: "Clear the synced flag of a fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.New(cfg.DataDir)
			if err != nil {
				return fmt.Errorf("initializing storage: %w", err)
			}
			id := strings.TrimSpace(args[0])
			ref, ok := store.UnmarkSynced(id)
			if !ok {
				return fmt.Errorf("fixture %s not found or not synced", id)
			}
			if ref != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Unmarked %s (calendar event %s).\n", id, ref)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Unmarked %s.\n", id)
			}
			return nil
		},
	}
}

func newSyncedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "synced",
		Short: "List fixtures recorded in the external calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(flagFormat, true)
			if err != nil {
				return err
			}
			store, err := storage.New(cfg.DataDir)
			if err != nil {
				return fmt.Errorf("initializing storage: %w", err)
			}

			events := store.ListSynced()
			if flagPast {
				events = store.ListSyncedPast()
			}
			event.SortByDate(events)

			return WriteOutput(cmd.OutOrStdout(), &OutputResult{
				CheckedAt:  time.Now().UTC(),
				Events:     events,
				EventCount: len(events),
				FromCache:  true,
				ShowAll:    true,
			}, format, true)
		},
	}

	cmd.Flags().BoolVar(&flagPast, "past", false, "Only fixtures old enough to remove from the calendar")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text, json or ics")

	return cmd
}

func parseFormat(raw string, allowICS bool) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(raw)))
	switch {
	case format == FormatText, format == FormatJSON:
		return format, nil
	case format == FormatICS && allowICS:
		return format, nil
	}
	if allowICS {
		return "", fmt.Errorf("invalid format: %s (must be 'text', 'json' or 'ics')", raw)
	}
	return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", raw)
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(ExitError)
	}
}
