package ping

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/nic0-dev/solping/service/metrics"
	"github.com/nic0-dev/solping/service/nats"
	solclient "github.com/nic0-dev/solping/service/solana"
)

// Submitter signs, submits and confirms transactions.
// *solclient.Connection is the production implementation.
type Submitter interface {
	SendAndConfirm(ctx context.Context, instructions []solana.Instruction, signers []solana.PrivateKey) (solana.Signature, error)
}

// Result describes a confirmed ping.
type Result struct {
	Signature  solana.Signature
	ProgramID  solana.PublicKey
	Payer      solana.PublicKey
	Cluster    string
	Commitment string
	Elapsed    time.Duration
}

// Params are the inputs of a single ping.
type Params struct {
	ProgramID  solana.PublicKey
	Keypair    solana.PrivateKey
	Cluster    string
	Commitment string
}

// Pinger sends one no-op instruction to a program and waits for it to confirm.
type Pinger struct {
	submitter Submitter
	publisher nats.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	out       io.Writer
}

// New creates a Pinger. publisher and m may be nil to disable event
// publishing and metrics. Progress lines are written to out.
func New(submitter Submitter, publisher nats.Publisher, m *metrics.Metrics, logger *slog.Logger, out io.Writer) *Pinger {
	if out == nil {
		out = io.Discard
	}
	return &Pinger{
		submitter: submitter,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		out:       out,
	}
}

// Ping submits a single transaction with one instruction for params.ProgramID,
// signed by params.Keypair, and blocks until it is confirmed.
// Errors from the submitter are returned unchanged.
func (p *Pinger) Ping(ctx context.Context, params Params) (*Result, error) {
	if len(params.Keypair) == 0 {
		return nil, errors.New("keypair is required")
	}
	payer := params.Keypair.PublicKey()

	fmt.Fprintln(p.out, "--Pinging Program", params.ProgramID.String())
	p.logger.InfoContext(ctx, "pinging program",
		"program_id", params.ProgramID.String(),
		"payer", payer.String(),
		"cluster", params.Cluster,
	)

	instruction := solclient.NewPingInstruction(params.ProgramID, payer)

	start := time.Now()
	sig, err := p.submitter.SendAndConfirm(ctx,
		[]solana.Instruction{instruction},
		[]solana.PrivateKey{params.Keypair},
	)
	elapsed := time.Since(start)
	p.recordOutcome(params.ProgramID, err)
	if err != nil {
		p.logger.ErrorContext(ctx, "ping failed",
			"program_id", params.ProgramID.String(),
			"error", err,
		)
		return nil, err
	}

	result := &Result{
		Signature:  sig,
		ProgramID:  params.ProgramID,
		Payer:      payer,
		Cluster:    params.Cluster,
		Commitment: params.Commitment,
		Elapsed:    elapsed,
	}

	p.publish(ctx, result)

	return result, nil
}

// publish emits a PingEvent. A publish failure is logged and does not fail the run.
func (p *Pinger) publish(ctx context.Context, result *Result) {
	if p.publisher == nil {
		return
	}
	event := &nats.PingEvent{
		Signature:   result.Signature.String(),
		ProgramID:   result.ProgramID.String(),
		Payer:       result.Payer.String(),
		Cluster:     result.Cluster,
		Commitment:  result.Commitment,
		ConfirmedAt: time.Now().UTC(),
		ElapsedMS:   result.Elapsed.Milliseconds(),
	}
	if err := p.publisher.PublishPing(ctx, event); err != nil {
		p.logger.WarnContext(ctx, "failed to publish ping event",
			"signature", event.Signature,
			"error", err,
		)
	}
}

func (p *Pinger) recordOutcome(programID solana.PublicKey, err error) {
	if p.metrics == nil {
		return
	}
	outcome := "confirmed"
	var (
		netErr *solclient.NetworkError
		rejErr *solclient.RejectionError
	)
	switch {
	case err == nil:
	case errors.As(err, &rejErr):
		outcome = "rejected"
	case errors.As(err, &netErr):
		outcome = "network_error"
	default:
		outcome = "error"
	}
	p.metrics.RecordTransactionSubmitted(programID.String(), outcome)
}
