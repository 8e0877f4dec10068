// Copyright 2024-2026 Aiku AI

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aiku/telegram-keyword-bot/pkg/config"
	"github.com/aiku/telegram-keyword-bot/pkg/logging"
	"github.com/aiku/telegram-keyword-bot/pkg/mirror"
	"github.com/aiku/telegram-keyword-bot/pkg/monitor"
	"github.com/aiku/telegram-keyword-bot/pkg/rules"
	"github.com/aiku/telegram-keyword-bot/pkg/telegram"
)

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:   "keyword-bot",
		Short: "Forward Telegram messages that match keyword patterns",
		// Running without a subcommand starts the bot.
		RunE:          runBot,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Start the bot",
		Args:  cobra.NoArgs,
		RunE:  runBot,
	}

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Validate the config file and compile every keyword pattern",
		Args:  cobra.NoArgs,
		RunE:  runCheck,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "keyword-bot %s\n", Tag)
			fmt.Fprintf(out, "  commit: %s\n", Commit)
			fmt.Fprintf(out, "  built:  %s\n", BuildTime)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the config file")
	rootCmd.AddCommand(runCmd, checkCmd, versionCmd)
}

func runBot(cmd *cobra.Command, _ []string) error {
	file, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg := file.Config()

	log, logFile, err := logging.Setup(cfg.Logger, os.Stderr, time.Now())
	if err != nil {
		return err
	}
	defer logFile.Close()
	log.Info().Str("version", Tag).Str("config", file.Path()).Msg("Starting keyword bot")

	bot, err := buildBot(cfg, file, log)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize bot")
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := bot.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Bot stopped with error")
		return err
	}
	log.Info().Msg("Bot stopped")
	return nil
}

func buildBot(cfg config.Config, file *config.File, log zerolog.Logger) (*monitor.Bot, error) {
	store := rules.NewStore(cfg.Keyword.KeywordList, cfg.Keyword.ExcludeList, file, log)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := monitor.NewMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	httpClient, err := telegram.NewHTTPClient(cfg.Proxy, log)
	if err != nil {
		return nil, err
	}
	transport, err := telegram.New(telegram.Options{
		Token:      cfg.Account.BotToken,
		HTTPClient: httpClient,
	}, log)
	if err != nil {
		return nil, err
	}

	mirrors, err := mirror.FromConfig(cfg.Mirror, log)
	if err != nil {
		return nil, err
	}

	var admin *monitor.AdminAPI
	if cfg.Admin.ListenAddr != "" {
		admin = monitor.NewAdminAPI(store, registry, log)
	}

	return monitor.NewBot(monitor.Params{
		Transport: transport,
		Store:     store,
		Registry:  monitor.NewRegistry(cfg.Data),
		Metrics:   metrics,
		Mirrors:   mirrors,
		Logger:    log,
		Admin:     admin,
		AdminAddr: cfg.Admin.ListenAddr,
	}), nil
}

var errInvalidPatterns = errors.New("some keyword patterns do not compile")

func runCheck(cmd *cobra.Command, _ []string) error {
	file, err := config.Load(configPath)
	if err != nil {
		return err
	}
	return check(cmd.OutOrStdout(), file.Config())
}

func check(out io.Writer, cfg config.Config) error {
	rs := rules.NewStore(cfg.Keyword.KeywordList, cfg.Keyword.ExcludeList, nil, zerolog.Nop()).Snapshot()
	fmt.Fprintf(out, "%d keywords, %d exclude keywords\n", len(rs.IncludeTexts()), len(rs.ExcludeTexts()))
	for _, f := range rs.Failures {
		fmt.Fprintf(out, "invalid pattern %q: %v\n", f.Text, f.Err)
	}
	fmt.Fprintf(out, "%d command chats, %d result chats\n", len(cfg.Data.CommandIDList), len(cfg.Data.ResultIDList))
	if len(cfg.Data.ResultIDList) == 0 {
		fmt.Fprintln(out, "warning: result_id_list is empty, matches will not be forwarded")
	}
	if len(rs.Failures) > 0 {
		return errInvalidPatterns
	}
	fmt.Fprintln(out, "config OK")
	return nil
}
