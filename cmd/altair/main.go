// Package main provides the altair CLI.
package main

import (
	"fmt"
	"os"

	// Embedded zone database so timezone lookups work in minimal containers.
	_ "time/tzdata"
)

var (
	version = "dev"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "run":
		runCmd(args)
	case "ask":
		askCmd(args)
	case "validate":
		validateCmd(args)
	case "digest":
		digestCmd(args)
	case "auth-calendar":
		authCalendarCmd(args)
	case "version":
		fmt.Printf("altair %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Altair - Telegram Agent Crews

Usage:
  altair <command> [options]

Commands:
  run            Start the Telegram bot
  ask            Send one message to the crews from the terminal
  validate       Validate a crew configuration file
  digest         Manage scheduled digests
  auth-calendar  Authorize read-only Google Calendar access
  version        Print version information
  help           Show this help message

Examples:
  altair run
  altair run --config crews.yaml --db altair.db
  altair ask "what time is it in Tokyo?"
  altair validate crews.yaml

Run 'altair <command> --help' for more information on a command.`)
}
