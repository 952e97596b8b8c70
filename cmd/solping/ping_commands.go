package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/nic0-dev/solping/service/config"
	"github.com/nic0-dev/solping/service/metrics"
	"github.com/nic0-dev/solping/service/nats"
	"github.com/nic0-dev/solping/service/ping"
	solclient "github.com/nic0-dev/solping/service/solana"
)

const pushTimeout = 5 * time.Second

func pingCommand(getenv func(string) string) *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "Send a no-op instruction to the program and wait for confirmation",
		Description: `Builds one instruction addressed to PROGRAM_ID whose only account is the
caller's public key (read-only, non-signing) and whose data is empty, signs it
with PRIVATE_KEY and waits until the cluster reports it at the configured
commitment level.

Example:
  PRIVATE_KEY=... solping ping --commitment finalized`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "program",
				Usage: "Program ID to ping (overrides PROGRAM_ID)",
			},
			&cli.StringFlag{
				Name:  "commitment",
				Usage: "Commitment level: processed, confirmed or finalized (overrides COMMITMENT)",
			},
			&cli.StringFlag{
				Name:  "url",
				Usage: "RPC endpoint (overrides RPC_URL)",
			},
		},
		Action: func(c *cli.Context) error {
			// Progress lines stay off stdout when it carries a JSON document.
			progress := c.App.Writer
			if c.Bool("json") {
				progress = c.App.ErrWriter
			}
			fmt.Fprintln(progress, "Launching client...")

			cfg, err := loadConfig(c, getenv)
			if err != nil {
				return err
			}

			// Key material is checked before any connection exists.
			if err := cfg.RequirePrivateKey(); err != nil {
				return err
			}
			keypair, err := solclient.DecodeKeypair(cfg.PrivateKey)
			if err != nil {
				return err
			}

			programID, err := solana.PublicKeyFromBase58(cfg.ProgramID)
			if err != nil {
				return fmt.Errorf("invalid program id %q: %w", cfg.ProgramID, err)
			}
			commitment, err := solclient.ParseCommitment(cfg.Commitment)
			if err != nil {
				return err
			}

			logger := setupLogger(cfg.LogLevel, c.App.ErrWriter)
			registry := prometheus.NewRegistry()
			m := metrics.NewMetrics(registry)

			var publisher nats.Publisher
			if cfg.NATSURL != "" {
				pub, err := nats.NewPublisher(cfg.NATSURL, m, logger)
				if err != nil {
					logger.Warn("ping events will not be published", "error", err)
				} else {
					defer pub.Close()
					publisher = pub
				}
			}

			conn := solclient.NewConnection(
				solclient.NewRPCClient(cfg.RPCURL),
				endpointLabel(cfg),
				commitment,
				m,
				logger,
			)
			logger.Info("initialized solana RPC client",
				"endpoint", endpointLabel(cfg),
				"commitment", string(commitment),
			)

			pinger := ping.New(conn, publisher, m, logger, progress)
			result, err := pinger.Ping(c.Context, ping.Params{
				ProgramID:  programID,
				Keypair:    keypair,
				Cluster:    cfg.Cluster,
				Commitment: string(commitment),
			})

			pushMetrics(cfg, registry, logger)

			if err != nil {
				return err
			}

			return printPingResult(c, result)
		},
	}
}

// pushMetrics pushes the run's metrics when a Pushgateway is configured.
// Failures are logged; they never change the outcome of the run.
func pushMetrics(cfg *config.Config, g prometheus.Gatherer, logger *slog.Logger) {
	if cfg.PushgatewayURL == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()

	if err := metrics.Push(ctx, cfg.PushgatewayURL, g, map[string]string{"cluster": cfg.Cluster}); err != nil {
		logger.Warn("failed to push metrics", "error", err)
	}
}

func printPingResult(c *cli.Context, result *ping.Result) error {
	out := c.App.Writer
	if c.Bool("json") {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"signature":  result.Signature.String(),
			"program_id": result.ProgramID.String(),
			"payer":      result.Payer.String(),
			"cluster":    result.Cluster,
			"commitment": result.Commitment,
			"elapsed_ms": result.Elapsed.Milliseconds(),
		})
	}

	fmt.Fprintf(out, "✓ Transaction %s\n", result.Commitment)
	fmt.Fprintf(out, "  Signature: %s\n", result.Signature)
	fmt.Fprintf(out, "  Payer:     %s\n", result.Payer)
	fmt.Fprintf(out, "  Elapsed:   %s\n", result.Elapsed.Round(time.Millisecond))
	return nil
}
