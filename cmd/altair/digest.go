package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/everydev1618/goaltair/bot"
)

// digestCmd manages scheduled digests in the bot database. The bot loads
// digests when it starts, so changes take effect on the next restart.
func digestCmd(args []string) {
	if len(args) < 1 {
		printDigestUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "add":
		digestAddCmd(args[1:])
	case "list":
		digestListCmd(args[1:])
	case "remove":
		digestRemoveCmd(args[1:])
	case "help", "-h", "--help":
		printDigestUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown digest command: %s\n\n", args[0])
		printDigestUsage()
		os.Exit(1)
	}
}

func printDigestUsage() {
	fmt.Println(`Usage: altair digest <command> [options]

Manage scheduled digests: cron-fired prompts whose replies are sent to a
Telegram chat. The bot loads digests at startup.

Commands:
  add     Add or replace a digest
  list    List all digests
  remove  Remove a digest by name

Examples:
  altair digest add --name agenda --cron "0 8 * * *" --chat 123456 --prompt "What is on my calendar today?"
  altair digest list
  altair digest remove agenda`)
}

func digestAddCmd(args []string) {
	fs := flag.NewFlagSet("digest add", flag.ExitOnError)
	name := fs.String("name", "", "Digest name (unique)")
	cronSpec := fs.String("cron", "", "Cron schedule, five fields (minute hour day month weekday)")
	chatID := fs.Int64("chat", 0, "Telegram chat ID that receives the digest")
	prompt := fs.String("prompt", "", "Message routed to the crews when the digest fires")
	disabled := fs.Bool("disabled", false, "Store the digest without scheduling it")
	dbPath := fs.String("db", "", "SQLite database path (overrides DB_PATH)")

	fs.Usage = func() {
		fmt.Println(`Usage: altair digest add [options]

Add a digest, replacing any existing digest with the same name.

Options:`)
		fs.PrintDefaults()
		fmt.Println(`
Examples:
  altair digest add --name agenda --cron "0 8 * * *" --chat 123456 --prompt "What is on my calendar today?"
  altair digest add --name news --cron "0 19 * * 1-5" --chat 123456 --prompt "search for today's top news"`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *name == "" || *cronSpec == "" || *chatID == 0 || *prompt == "" {
		fmt.Fprintln(os.Stderr, "Error: --name, --cron, --chat and --prompt are required")
		fs.Usage()
		os.Exit(1)
	}
	if _, err := cron.ParseStandard(*cronSpec); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid cron expression %q: %v\n", *cronSpec, err)
		os.Exit(1)
	}

	store := openStore(*dbPath)
	defer store.Close()

	d := bot.Digest{
		Name:      *name,
		Cron:      *cronSpec,
		ChatID:    *chatID,
		Prompt:    *prompt,
		Enabled:   !*disabled,
		CreatedAt: time.Now(),
	}
	if err := store.UpsertDigest(d); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Digest %q saved. Restart the bot to pick it up.\n", *name)
}

func digestListCmd(args []string) {
	fs := flag.NewFlagSet("digest list", flag.ExitOnError)
	dbPath := fs.String("db", "", "SQLite database path (overrides DB_PATH)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	store := openStore(*dbPath)
	defer store.Close()

	digests, err := store.ListDigests()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(digests) == 0 {
		fmt.Println("No digests configured.")
		return
	}
	for _, d := range digests {
		state := "enabled"
		if !d.Enabled {
			state = "disabled"
		}
		fmt.Printf("  %-20s %-16s chat %-12d %-8s %q\n", d.Name, d.Cron, d.ChatID, state, d.Prompt)
	}
}

func digestRemoveCmd(args []string) {
	fs := flag.NewFlagSet("digest remove", flag.ExitOnError)
	dbPath := fs.String("db", "", "SQLite database path (overrides DB_PATH)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: no digest name given")
		os.Exit(1)
	}
	name := fs.Arg(0)

	store := openStore(*dbPath)
	defer store.Close()

	if err := store.DeleteDigest(name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			fmt.Fprintf(os.Stderr, "Error: digest %q not found\n", name)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
	fmt.Printf("Digest %q removed.\n", name)
}

// openStore opens the bot database, falling back to DB_PATH when no flag
// is given.
func openStore(path string) *bot.SQLiteStore {
	if path == "" {
		path = loadEnv().DBPath
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "Error: no database configured. Pass --db or set DB_PATH.")
		os.Exit(1)
	}
	store, err := bot.NewSQLiteStore(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database %s: %v\n", path, err)
		os.Exit(1)
	}
	if err := store.Init(); err != nil {
		store.Close()
		fmt.Fprintf(os.Stderr, "Error initializing database: %v\n", err)
		os.Exit(1)
	}
	return store
}
