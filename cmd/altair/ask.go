package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/everydev1618/goaltair/config"
)

// askCmd sends a single message through the crews and prints the reply.
func askCmd(args []string) {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", "", "Crew configuration file (YAML)")
	timeout := fs.Duration("timeout", 5*time.Minute, "Maximum time to wait for a reply")
	verbose := fs.Bool("verbose", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Println(`Usage: altair ask [options] "message"

Send one message to the agent crews from the terminal and print the reply.
Useful for trying out a configuration without a Telegram bot.

Options:`)
		fs.PrintDefaults()
		fmt.Println(`
Examples:
  altair ask "what time is it in Tokyo?"
  altair ask --config crews.yaml "search for the latest Go release"`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: no message given")
		fs.Usage()
		os.Exit(1)
	}
	message := strings.Join(fs.Args(), " ")

	logger := setupLogger(*verbose)
	env := loadEnv()
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

	runCtx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	reply, err := orch.Respond(runCtx, message, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(reply)
}
