package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/everydev1618/goaltair/tools"
)

// authCalendarCmd walks through the Google Calendar OAuth consent flow and
// saves the resulting token for the calendar tools.
func authCalendarCmd(args []string) {
	fs := flag.NewFlagSet("auth-calendar", flag.ExitOnError)
	credentials := fs.String("credentials", "", "OAuth client credentials JSON (overrides GOOGLE_CALENDAR_CREDENTIALS)")
	tokenPath := fs.String("token", "", "Where to save the token (overrides GOOGLE_CALENDAR_TOKEN)")

	fs.Usage = func() {
		fmt.Println(`Usage: altair auth-calendar [options]

Authorize read-only access to a Google Calendar. Prints a consent URL,
waits for the authorization code, and saves the token where the calendar
tools expect it.

Options:`)
		fs.PrintDefaults()
		fmt.Println(`
Examples:
  altair auth-calendar
  altair auth-calendar --credentials credentials.json --token token.json`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	env := loadEnv()
	creds := *credentials
	if creds == "" {
		creds = env.CalendarCredentials
	}
	token := *tokenPath
	if token == "" {
		token = env.CalendarToken
	}
	if creds == "" || token == "" {
		fmt.Fprintln(os.Stderr, "Error: credentials and token paths are required.")
		fmt.Fprintln(os.Stderr, "Pass --credentials and --token or set GOOGLE_CALENDAR_CREDENTIALS and GOOGLE_CALENDAR_TOKEN.")
		os.Exit(1)
	}

	url, err := tools.CalendarAuthURL(creds)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Open this URL in your browser and approve access:")
	fmt.Println()
	fmt.Println("  " + url)
	fmt.Println()
	fmt.Print("Authorization code: ")

	scanner := bufio.NewScanner(os.Stdin)
	var code string
	if scanner.Scan() {
		code = strings.TrimSpace(scanner.Text())
	}
	if code == "" {
		fmt.Fprintln(os.Stderr, "Error: no authorization code provided")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := tools.CalendarExchange(ctx, creds, token, code); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Token saved to %s\n", token)
}
