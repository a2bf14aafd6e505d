package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Huahuatgc/ribao/internal/config"
	"github.com/Huahuatgc/ribao/internal/deliver"
	"github.com/Huahuatgc/ribao/internal/fetch"
	"github.com/Huahuatgc/ribao/internal/greet"
	"github.com/Huahuatgc/ribao/internal/render"
	"github.com/Huahuatgc/ribao/internal/report"
	"github.com/Huahuatgc/ribao/internal/schedule"
	"github.com/Huahuatgc/ribao/internal/source"
	"github.com/Huahuatgc/ribao/internal/storage"
)

var (
	cfgFile string
	verbose bool
	sendTo  string
	outFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ribao",
		Short: "ribao — daily report image generator",
		Long: `ribao aggregates six public web sources (anime calendar, trending
keywords, quote of the day, holiday calendar, tech-news RSS, world-news
digest) into a single daily report image and delivers it to chat groups
on demand or on a schedule. Every source degrades to fixed placeholder
content when it is unreachable or returns an unexpected shape.`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(subscribeCmd())
	rootCmd.AddCommand(unsubscribeCmd())
	rootCmd.AddCommand(destinationsCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// generateCmd creates the "generate" subcommand: build one report now.
func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a report image now",
		Long:  "Fetch all sources, render the report card, and capture it as a PNG. Optionally deliver it to one destination.",
		RunE:  runGenerate,
	}
	cmd.Flags().StringVar(&sendTo, "to", "", "destination to deliver the image to (group ID or origin string)")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "copy the captured image to this path")
	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	client := fetch.NewClient(&cfg.Fetcher, logger)
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	imagePath, err := generateImage(ctx, cfg, client, logger)
	if err != nil {
		return err
	}

	if outFile != "" {
		if err := copyFile(imagePath, outFile); err != nil {
			return fmt.Errorf("copy image: %w", err)
		}
		logger.Info("image copied", "path", outFile)
	}

	if sendTo != "" {
		groupID, err := deliver.Normalize(sendTo)
		if err != nil {
			return err
		}
		sender := deliver.NewHTTPSender(&cfg.Deliver, logger)
		if err := sender.Send(ctx, groupID, imagePath); err != nil {
			return fmt.Errorf("deliver report: %w", err)
		}
	}

	fmt.Println(imagePath)
	return nil
}

// runCmd creates the "run" subcommand: the scheduled push daemon.
func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the scheduled push daemon",
		Long:  "Wait for the configured fire time every day, generate the report, and push it to all subscribed destinations.",
		RunE:  runDaemon,
	}
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if !cfg.Schedule.Enabled {
		return errors.New("schedule.enabled is false; enable it or use 'generate'")
	}

	client := fetch.NewClient(&cfg.Fetcher, logger)
	defer client.Close()

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("open subscription store: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Warn("closing store failed", "error", err)
		}
	}()

	sender := deliver.NewHTTPSender(&cfg.Deliver, logger)
	job := func(ctx context.Context, destinations []string) error {
		imagePath, err := generateImage(ctx, cfg, client, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := os.Remove(imagePath); err != nil {
				logger.Warn("removing report image failed", "path", imagePath, "error", err)
			}
		}()
		deliver.Broadcast(ctx, sender, destinations, imagePath, logger)
		return nil
	}

	logger.Info("push daemon starting",
		"fire_time", cfg.Schedule.FireTime,
		"configured_destinations", len(cfg.Schedule.Destinations),
	)
	schedule.New(&cfg.Schedule, store, job, schedule.SystemClock(), logger).Run(ctx)
	return nil
}

// subscribeCmd creates the "subscribe" subcommand.
func subscribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe [destination]",
		Short: "Subscribe a destination to the scheduled push",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, store storage.Store) error {
				groupID, err := deliver.Normalize(args[0])
				if err != nil {
					return err
				}
				return store.Add(ctx, groupID)
			})
		},
	}
}

// unsubscribeCmd creates the "unsubscribe" subcommand.
func unsubscribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unsubscribe [destination]",
		Short: "Unsubscribe a destination from the scheduled push",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, store storage.Store) error {
				groupID, err := deliver.Normalize(args[0])
				if err != nil {
					return err
				}
				return store.Remove(ctx, groupID)
			})
		},
	}
}

// destinationsCmd creates the "destinations" subcommand.
func destinationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "destinations",
		Short: "List subscribed destinations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, store storage.Store) error {
				list, err := store.List(ctx)
				if err != nil {
					return err
				}
				for _, d := range list {
					fmt.Println(d)
				}
				return nil
			})
		},
	}
}

// configCmd creates the "config" subcommand: print the effective config.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(cfg)
		},
	}
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ribao %s\n", config.Version)
		},
	}
}

// setup loads and validates configuration and builds the logger.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, setupLogger(&cfg.Logging), nil
}

// setupLogger builds the slog logger from config, with --verbose forcing
// debug level.
func setupLogger(cfg *config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// generateImage runs one full report cycle: aggregate, render, screenshot.
func generateImage(ctx context.Context, cfg *config.Config, client *fetch.Client, logger *slog.Logger) (string, error) {
	aggregator := report.NewAggregator(cfg.Report, report.Providers{
		Anime:     source.NewAnime(client, logger),
		Hotwords:  source.NewHotwords(client, logger),
		Quote:     source.NewQuote(client, cfg.API.Token, logger),
		Holidays:  source.NewHoliday(client, cfg.API.Token, logger),
		TechNews:  source.NewTechNews(client, logger),
		WorldNews: source.NewWorldNews(client, cfg.API.Token, logger),
		Greeting:  greet.New(cfg.AI, logger),
	}, logger)

	dataset := aggregator.Generate(ctx)

	renderer := render.New(&cfg.Render, logger)
	html, err := renderer.HTML(dataset)
	if err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	imagePath, err := renderer.Screenshot(ctx, html)
	if err != nil {
		return "", fmt.Errorf("capture report: %w", err)
	}
	return imagePath, nil
}

// withStore runs fn against the configured subscription store.
func withStore(fn func(ctx context.Context, store storage.Store) error) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("open subscription store: %w", err)
	}

	ctx := context.Background()
	defer func() {
		if err := store.Close(ctx); err != nil {
			logger.Warn("closing store failed", "error", err)
		}
	}()
	return fn(ctx, store)
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
