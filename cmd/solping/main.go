package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/nic0-dev/solping/service/config"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newApp(os.Getenv).RunContext(ctx, os.Args)
	stop()
	if err != nil {
		log.Fatal(err)
	}
}

// newApp builds the CLI. getenv is the configuration source; main passes
// os.Getenv, tests pass a map lookup.
func newApp(getenv func(string) string) *cli.App {
	return &cli.App{
		Name:  "solping",
		Usage: "Ping a Solana program with a signed no-op transaction",
		Description: `A command-line client that submits a single no-op instruction to an on-chain
program and waits for the cluster to confirm it.

Configuration is read from the environment (optionally seeded from a .env file):
  PRIVATE_KEY      base58-encoded secret key (required for ping and address)
  SOLANA_CLUSTER   devnet (default), testnet, mainnet-beta or localnet
  RPC_URL          explicit RPC endpoint, overrides SOLANA_CLUSTER
  COMMITMENT       processed, confirmed (default) or finalized
  PROGRAM_ID       program to ping
  LOG_LEVEL        debug, info (default), warn or error
  NATS_URL         publish confirmed pings to NATS (optional)
  PUSHGATEWAY_URL  push run metrics to a Prometheus Pushgateway (optional)`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Commands: []*cli.Command{
			pingCommand(getenv),
			statusCommand(getenv),
			addressCommand(getenv),
			versionCommand(),
		},
		// Global flags available to all commands
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load environment variables from this file if it exists",
				Value: ".env",
			},
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output in JSON format",
			},
		},
		Before: func(c *cli.Context) error {
			return config.LoadDotEnv(c.String("env-file"))
		},
	}
}

// loadConfig reads configuration and applies command-line overrides.
func loadConfig(c *cli.Context, getenv func(string) string) (*config.Config, error) {
	cfg, err := config.LoadFrom(getenv)
	if err != nil {
		return nil, err
	}

	overridden := false
	if c.IsSet("url") {
		cfg.RPCURL = c.String("url")
		overridden = true
	}
	if c.IsSet("commitment") {
		cfg.Commitment = c.String("commitment")
		overridden = true
	}
	if c.IsSet("program") {
		cfg.ProgramID = c.String("program")
		overridden = true
	}
	if overridden {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}
