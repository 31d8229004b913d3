package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"jira-feedback/internal/assist"
	"jira-feedback/internal/cache"
	"jira-feedback/internal/config"
	"jira-feedback/internal/feedback"
	"jira-feedback/internal/jira"
	"jira-feedback/internal/session"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var Version = "dev"

var (
	configPath string
	debugFlag  bool
)

// app holds everything a command needs once configuration is loaded.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	client  *jira.Client
	cache   cache.Cache
	service *feedback.Service
	closers []func() error
}

func (a *app) Close() {
	for _, c := range a.closers {
		_ = c()
	}
}

func newLogger(debug bool) *slog.Logger {
	level := pterm.LogLevelInfo
	if debug {
		level = pterm.LogLevelDebug
	}
	return slog.New(pterm.NewSlogHandler(pterm.DefaultLogger.WithLevel(level).WithWriter(os.Stderr)))
}

func loadApp(ctx context.Context) (*app, error) {
	logger := newLogger(debugFlag)
	config.LoadEnv(ctx, logger)

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	timeout, err := cfg.HTTPTimeout()
	if err != nil {
		return nil, err
	}
	client := jira.NewClient(cfg.Credentials(), jira.WithTimeout(timeout))

	a := &app{
		cfg:     cfg,
		logger:  logger,
		client:  client,
		service: feedback.NewService(client, cfg.FeedbackOptions(), logger),
	}

	a.cache = a.newCache(ctx, cfg.Cache.RedisURL)

	return a, nil
}

// newCache prefers Redis when configured. An unreachable Redis only costs
// the shared lookups, so it falls back to memory instead of failing.
func (a *app) newCache(ctx context.Context, redisURL string) cache.Cache {
	if redisURL == "" {
		return cache.NewMemory()
	}
	rc, err := cache.NewRedis(ctx, redisURL, "jira-feedback:")
	if err != nil {
		a.logger.Warn("redis unavailable, using in-memory cache", "error", err)
		return cache.NewMemory()
	}
	a.closers = append(a.closers, rc.Close)
	return rc
}

// requireJira treats incomplete credentials as a configuration-time failure.
func (a *app) requireJira() error {
	if a.client.ValidateConfiguration() {
		return nil
	}
	a.logger.Error("jira feedback configuration is invalid", "config", configPath)
	return fmt.Errorf("%w: run 'jira-feedback config' or set FEEDBACK_JIRA_* variables", jira.ErrMisconfigured)
}

func (a *app) suggester(ctx context.Context) session.TitleSuggester {
	if a.cfg.Gemini.APIKey == "" {
		return nil
	}
	s, err := assist.NewSuggester(ctx, a.cfg.Gemini.APIKey, a.cfg.Gemini.Model)
	if err != nil {
		a.logger.Warn("title suggestions unavailable", "error", err)
		return nil
	}
	return s
}

func runInteractive(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := loadApp(ctx)
	if err != nil {
		return err
	}

	if !config.Exists(configPath) && !a.client.ValidateConfiguration() {
		a.Close()
		fmt.Println("No configuration found. Let's set it up!")
		fmt.Println()
		if _, err := config.RunSetup(configPath); err != nil {
			return err
		}
		if a, err = loadApp(ctx); err != nil {
			return err
		}
	}
	defer a.Close()

	if err := a.requireJira(); err != nil {
		return err
	}

	runner := session.NewRunner(a.cfg, a.service, a.suggester(ctx))
	return runner.Run(ctx)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "jira-feedback",
		Short: "Send feedback to Jira from the terminal",
		Long: `jira-feedback collects feedback through a short form and files it as a
Jira Cloud issue.

Configuration is read from ~/.jira-feedback/config.json (or --config, JSON or
YAML), a .env file, and FEEDBACK_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runInteractive,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Path to the config file (.json, .yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		newSubmitCmd(),
		newIssueTypesCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if ctx.Err() != nil {
			pterm.Println()
			pterm.Println(pterm.Gray("Interrupted."))
			os.Exit(0)
		}
		if !errors.Is(err, session.ErrReported) {
			pterm.Error.Println(err.Error())
		}
		os.Exit(1)
	}
}
