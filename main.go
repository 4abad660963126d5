package main

import (
	"fmt"
	"log/slog"
	"os"

	cmdestimate "cloud-carbon/command/estimate"
	cmdweb "cloud-carbon/command/web"
)

// Carbon emissions calculator for cloud compute and storage usage.
// Usage:
//   API_KEY=xxx cloud-carbon estimate [-plan ./plan.yml] [-out breakdown.csv]
//   API_KEY=xxx cloud-carbon web [-addr :8080] [-ui ./ui/dist]
// Notes:
// - Batches VM and storage entries per provider (aws, azure, gcp), submits
//   them to the Climatiq estimation API and reports the CO2e breakdown.
// - Requires a Climatiq API token with cloud computing endpoint access.

func main() {
	args := os.Args
	// Initialize slog logger (text to stderr, INFO level for now)
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(h))

	if len(args) > 1 {
		sub := args[1]
		rest := append([]string{}, args[2:]...)
		switch sub {
		case "estimate":
			if err := cmdestimate.Run(rest); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		case "web":
			if err := cmdweb.Run(rest); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		}
	}
	fmt.Fprintln(os.Stderr, "usage: cloud-carbon estimate [-plan ./plan.yml] [-out breakdown.csv] | web [-addr :8080] [-ui ./ui/dist]\nENV: API_KEY holds the estimation API token; set CONFIG_PATH to point to a YAML config file (default ./config.yml)")
	os.Exit(2)
}
