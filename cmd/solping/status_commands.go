package main

import (
	"encoding/json"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/itchyny/gojq"
	"github.com/urfave/cli/v2"

	solclient "github.com/nic0-dev/solping/service/solana"
)

// signatureStatus is the JSON view of a signature status; jq filters run against it.
type signatureStatus struct {
	Signature          string      `json:"signature"`
	Slot               uint64      `json:"slot"`
	Confirmations      *uint64     `json:"confirmations"`
	ConfirmationStatus string      `json:"confirmation_status"`
	Err                interface{} `json:"err"`
}

func statusCommand(getenv func(string) string) *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Show the confirmation status of a transaction signature",
		ArgsUsage: "SIGNATURE",
		Description: `Queries the RPC node for the status of a previously submitted transaction.

--jq applies a jq filter to the JSON form of the status and prints the result.
--must-jq fails the command unless every filter evaluates to a truthy value.

Examples:
  solping status 5j7s6N... --jq .confirmation_status
  solping status 5j7s6N... --must-jq '.confirmation_status == "finalized"'`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "url",
				Usage: "RPC endpoint (overrides RPC_URL)",
			},
			&cli.StringFlag{
				Name:  "jq",
				Usage: "jq filter applied to the status before printing",
			},
			&cli.StringSliceFlag{
				Name:  "must-jq",
				Usage: "jq filter that must evaluate truthy (can be repeated)",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("signature is required")
			}
			sig, err := solana.SignatureFromBase58(c.Args().Get(0))
			if err != nil {
				return fmt.Errorf("invalid signature: %w", err)
			}

			outputFilter, err := compileJQ(c.String("jq"))
			if err != nil {
				return err
			}
			mustFilters := make([]*gojq.Code, 0, len(c.StringSlice("must-jq")))
			for _, filter := range c.StringSlice("must-jq") {
				code, err := compileJQ(filter)
				if err != nil {
					return err
				}
				mustFilters = append(mustFilters, code)
			}

			cfg, err := loadConfig(c, getenv)
			if err != nil {
				return err
			}
			commitment, err := solclient.ParseCommitment(cfg.Commitment)
			if err != nil {
				return err
			}

			logger := setupLogger(cfg.LogLevel, c.App.ErrWriter)
			conn := solclient.NewConnection(solclient.NewRPCClient(cfg.RPCURL), endpointLabel(cfg), commitment, nil, logger)

			st, err := conn.SignatureStatus(c.Context, sig)
			if err != nil {
				return err
			}
			if st == nil {
				return fmt.Errorf("signature %s not found", sig)
			}

			view, err := toJQInput(newSignatureStatus(sig, st))
			if err != nil {
				return err
			}

			for i, code := range mustFilters {
				ok, err := evalTruthy(code, view)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("status does not satisfy filter %q", c.StringSlice("must-jq")[i])
				}
			}

			if outputFilter != nil {
				return printJQ(c, outputFilter, view)
			}

			if c.Bool("json") {
				enc := json.NewEncoder(c.App.Writer)
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}

			out := c.App.Writer
			fmt.Fprintf(out, "Signature: %s\n", sig)
			fmt.Fprintf(out, "  Slot:   %d\n", st.Slot)
			fmt.Fprintf(out, "  Status: %s\n", st.ConfirmationStatus)
			if st.Err != nil {
				fmt.Fprintf(out, "  Error:  %v\n", st.Err)
			}
			return nil
		},
	}
}

func newSignatureStatus(sig solana.Signature, st *rpc.SignatureStatusesResult) *signatureStatus {
	return &signatureStatus{
		Signature:          sig.String(),
		Slot:               st.Slot,
		Confirmations:      st.Confirmations,
		ConfirmationStatus: string(st.ConfirmationStatus),
		Err:                st.Err,
	}
}

// compileJQ parses and compiles filter. An empty filter yields nil.
func compileJQ(filter string) (*gojq.Code, error) {
	if filter == "" {
		return nil, nil
	}
	query, err := gojq.Parse(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to parse jq filter %q: %w", filter, err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq filter %q: %w", filter, err)
	}
	return code, nil
}

// toJQInput round-trips v through JSON so gojq sees plain maps and slices.
func toJQInput(v interface{}) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func evalTruthy(code *gojq.Code, input interface{}) (bool, error) {
	iter := code.Run(input)
	v, ok := iter.Next()
	if !ok {
		return false, nil
	}
	if err, isErr := v.(error); isErr {
		return false, fmt.Errorf("jq filter error: %w", err)
	}
	return isTruthy(v), nil
}

func printJQ(c *cli.Context, code *gojq.Code, input interface{}) error {
	iter := code.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			return nil
		}
		if err, isErr := v.(error); isErr {
			return fmt.Errorf("jq filter error: %w", err)
		}
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, string(data))
	}
}

// isTruthy checks if a jq result value is truthy.
// In jq, false and null are falsy, everything else is truthy.
func isTruthy(v interface{}) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}
