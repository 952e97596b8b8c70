package main

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	solclient "github.com/nic0-dev/solping/service/solana"
)

func addressCommand(getenv func(string) string) *cli.Command {
	return &cli.Command{
		Name:  "address",
		Usage: "Print the public key of the configured PRIVATE_KEY",
		Description: `Decodes PRIVATE_KEY and prints the public key it signs as.
No network access is performed.`,
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c, getenv)
			if err != nil {
				return err
			}
			if err := cfg.RequirePrivateKey(); err != nil {
				return err
			}
			keypair, err := solclient.DecodeKeypair(cfg.PrivateKey)
			if err != nil {
				return err
			}

			if c.Bool("json") {
				return json.NewEncoder(c.App.Writer).Encode(map[string]string{
					"address": keypair.PublicKey().String(),
				})
			}
			fmt.Fprintln(c.App.Writer, keypair.PublicKey().String())
			return nil
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Action: func(c *cli.Context) error {
			out := c.App.Writer
			fmt.Fprintf(out, "solping CLI\n")
			fmt.Fprintf(out, "  Version: %s\n", version)
			fmt.Fprintf(out, "  Commit:  %s\n", commit)
			fmt.Fprintf(out, "  Built:   %s\n", date)
			return nil
		},
	}
}
