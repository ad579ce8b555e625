package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/everydev1618/goaltair/bot"
	"github.com/everydev1618/goaltair/config"
	"github.com/everydev1618/goaltair/tools"
)

// runCmd starts the Telegram bot with the configured crews.
func runCmd(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "Crew configuration file (YAML)")
	dbPath := fs.String("db", "", "SQLite database path (overrides DB_PATH)")
	verbose := fs.Bool("verbose", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Println(`Usage: altair run [options]

Start the Telegram bot and route incoming messages to the agent crews.

Credentials come from the environment or a .env file: TELEGRAM_BOT_TOKEN
plus an ANTHROPIC_API_KEY or OPENAI_API_KEY. Without --config the built-in
crews are used. Without a database, history lives in memory only and
scheduled digests are unavailable.

Options:`)
		fs.PrintDefaults()
		fmt.Println(`
Examples:
  altair run
  altair run --config crews.yaml
  altair run --db altair.db --verbose`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	logger := setupLogger(*verbose)
	env := loadEnv()
	if err := env.RequireTelegram(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	requireProviderKey(env)

	cfg := loadConfig(*configPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := buildRegistry(ctx, env, logger)
	orch, err := config.Build(cfg, env, registry, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	routerOpts := []bot.RouterOption{
		bot.WithRouterLogger(logger),
		bot.WithHistoryLimit(env.HistoryMaxTurns),
	}

	path := *dbPath
	if path == "" {
		path = env.DBPath
	}
	var store *bot.SQLiteStore
	if path != "" {
		store, err = bot.NewSQLiteStore(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening database %s: %v\n", path, err)
			os.Exit(1)
		}
		defer store.Close()
		if err := store.Init(); err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing database: %v\n", err)
			os.Exit(1)
		}
		routerOpts = append(routerOpts, bot.WithStore(store))
	}

	router := bot.NewRouter(orch, routerOpts...)

	b, err := bot.NewBot(env.TelegramBotToken, router,
		bot.WithBotLogger(logger),
		bot.WithAllowedChats(env.AllowedChatIDs...),
		bot.WithAdminChat(env.AdminChatID),
		bot.WithTestMode(env.TestMode),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loaded: %s (%d crews)\n", cfg.Name, len(cfg.Crews))

	if store != nil {
		sched := bot.NewScheduler(router, b.Send,
			bot.WithSchedulerLogger(logger),
			bot.WithSchedulerStore(store),
		)
		go sched.Start(ctx)
	}

	if err := b.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogger installs the process-wide logger.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// loadEnv reads settings from the environment and any .env file present.
func loadEnv() *config.Env {
	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return env
}

// loadConfig reads the crew configuration, falling back to the built-in
// crews when no file is given.
func loadConfig(path string) *config.Config {
	if path == "" {
		return config.Default()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", path, err)
		os.Exit(1)
	}
	return cfg
}

// requireProviderKey exits when no LLM provider key is configured.
func requireProviderKey(env *config.Env) {
	if env.AnthropicAPIKey == "" && env.OpenAIAPIKey == "" {
		fmt.Fprintln(os.Stderr, "Error: no API key configured.")
		fmt.Fprintln(os.Stderr, "Set ANTHROPIC_API_KEY (or OPENAI_API_KEY with LLM_PROVIDER=openai) in the environment or a .env file.")
		os.Exit(1)
	}
}

// buildRegistry assembles the tool registry from the environment. Clock
// tools are always available; search and calendar degrade gracefully when
// their credentials are missing.
func buildRegistry(ctx context.Context, env *config.Env, logger *slog.Logger) *tools.Tools {
	registry := tools.NewTools()
	if err := tools.RegisterClockTools(registry); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering clock tools: %v\n", err)
		os.Exit(1)
	}

	search := tools.NewSearchClient(tools.WithSearchAPIKey(env.SerpAPIKey))
	if err := tools.RegisterSearchTools(registry, search); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering search tools: %v\n", err)
		os.Exit(1)
	}

	var src tools.EventSource
	if env.CalendarCredentials != "" && env.CalendarToken != "" {
		cal, err := tools.NewGoogleCalendar(ctx, env.CalendarCredentials, env.CalendarToken)
		if err != nil {
			logger.Warn("calendar tools run unauthenticated", "error", err)
		} else {
			src = cal
		}
	}
	if err := tools.RegisterCalendarTools(registry, src); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering calendar tools: %v\n", err)
		os.Exit(1)
	}

	return registry
}
