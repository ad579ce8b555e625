package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/everydev1618/goaltair/config"
)

// validateCmd validates a crew configuration file without running anything.
func validateCmd(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	verbose := fs.Bool("verbose", false, "Show detailed validation results")

	fs.Usage = func() {
		fmt.Println(`Usage: altair validate <crews.yaml> [options]

Validate a crew configuration file without starting the bot.

Options:`)
		fs.PrintDefaults()
		fmt.Println(`
Examples:
  altair validate crews.yaml
  altair validate crews.yaml --verbose`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: no configuration file specified")
		fs.Usage()
		os.Exit(1)
	}
	file := fs.Arg(0)

	cfg, err := config.Load(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("File: %s\n", file)
		fmt.Printf("Name: %s\n", cfg.Name)
		fmt.Printf("Provider: %s\n", cfg.Provider)
		fmt.Println()

		names := make([]string, 0, len(cfg.Crews))
		for name := range cfg.Crews {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Printf("Crews (%d):\n", len(cfg.Crews))
		for _, name := range names {
			crew := cfg.Crews[name]
			fmt.Printf("  - %s: %d agents, %d tasks\n", name, len(crew.Agents), len(crew.Tasks))
			for _, agent := range crew.Agents {
				model := agent.Model
				if model == "" {
					model = "(default)"
				}
				line := fmt.Sprintf("      %s: model=%s", agent.Name, model)
				if len(agent.Tools) > 0 {
					line += " tools=" + strings.Join(agent.Tools, ",")
				}
				fmt.Println(line)
			}
		}
		fmt.Println()

		fmt.Println("Routing:")
		fmt.Printf("  gateway: %s\n", cfg.Routing.Gateway)
		fmt.Printf("  classifier: %s\n", cfg.Routing.Classifier)
		if len(cfg.Routing.Specialists) > 0 {
			intents := make([]string, 0, len(cfg.Routing.Specialists))
			for intent := range cfg.Routing.Specialists {
				intents = append(intents, intent)
			}
			sort.Strings(intents)
			for _, intent := range intents {
				fmt.Printf("  %s -> %s\n", intent, cfg.Routing.Specialists[intent])
			}
		}
	}

	fmt.Printf("Valid: %s\n", file)
}
