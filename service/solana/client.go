package solana

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"

	"github.com/nic0-dev/solping/service/metrics"
)

// RPCClient is an interface for the Solana RPC operations we need.
// This allows us to mock the RPC layer in tests without hitting real Solana nodes.
type RPCClient interface {
	GetLatestBlockhash(
		ctx context.Context,
		commitment rpc.CommitmentType,
	) (*rpc.GetLatestBlockhashResult, error)

	SendTransactionWithOpts(
		ctx context.Context,
		tx *solana.Transaction,
		opts rpc.TransactionOpts,
	) (solana.Signature, error)

	GetSignatureStatuses(
		ctx context.Context,
		searchTransactionHistory bool,
		signatures ...solana.Signature,
	) (*rpc.GetSignatureStatusesResult, error)

	GetBlockHeight(
		ctx context.Context,
		commitment rpc.CommitmentType,
	) (uint64, error)
}

const (
	defaultConfirmAttempts = 150
	defaultConfirmDelay    = 500 * time.Millisecond
)

// ConnectionOpt configures a Connection.
type ConnectionOpt func(*Connection)

// WithConfirmPolling sets how often and how many times the signature status is
// polled while waiting for confirmation. Zero attempts polls until the context
// is done.
func WithConfirmPolling(attempts uint, delay time.Duration) ConnectionOpt {
	return func(c *Connection) {
		c.confirmAttempts = attempts
		c.confirmDelay = delay
	}
}

// Connection is a handle on one RPC endpoint at a fixed commitment level.
// It submits transactions and waits for them to reach that commitment.
type Connection struct {
	rpc        RPCClient
	commitment rpc.CommitmentType
	endpoint   string // identifier for metrics and logs (e.g., "devnet" or rpc host)
	logger     *slog.Logger
	metrics    *metrics.Metrics

	confirmAttempts uint
	confirmDelay    time.Duration
}

// NewConnection creates a new Connection.
// If metrics is nil, no metrics will be recorded.
func NewConnection(
	rpcClient RPCClient,
	endpoint string,
	commitment rpc.CommitmentType,
	m *metrics.Metrics,
	logger *slog.Logger,
	opts ...ConnectionOpt,
) *Connection {
	c := &Connection{
		rpc:             rpcClient,
		commitment:      commitment,
		endpoint:        endpoint,
		logger:          logger,
		metrics:         m,
		confirmAttempts: defaultConfirmAttempts,
		confirmDelay:    defaultConfirmDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Commitment returns the commitment level the connection confirms at.
func (c *Connection) Commitment() rpc.CommitmentType {
	return c.commitment
}

// SendAndConfirm builds a transaction from instructions, signs it with every
// signer (the first one pays the fee), submits it once and blocks until the
// network reports it at the connection's commitment level.
//
// Failures are terminal: *NetworkError when the node cannot be reached or
// confirmation times out, *RejectionError when the network refuses or fails
// the transaction.
func (c *Connection) SendAndConfirm(
	ctx context.Context,
	instructions []solana.Instruction,
	signers []solana.PrivateKey,
) (solana.Signature, error) {
	if len(signers) == 0 {
		return solana.Signature{}, errors.New("at least one signer is required")
	}
	payer := signers[0].PublicKey()

	blockhash, err := c.getLatestBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, &NetworkError{Op: "getLatestBlockhash", Err: err}
	}
	if blockhash == nil || blockhash.Value == nil {
		return solana.Signature{}, &NetworkError{Op: "getLatestBlockhash", Err: errors.New("empty response")}
	}

	tx, err := solana.NewTransaction(
		instructions,
		blockhash.Value.Blockhash,
		solana.TransactionPayer(payer),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to create transaction: %w", err)
	}

	keys := make(map[solana.PublicKey]solana.PrivateKey, len(signers))
	for _, s := range signers {
		keys[s.PublicKey()] = s
	}
	if _, err := tx.Sign(func(pub solana.PublicKey) *solana.PrivateKey {
		if key, ok := keys[pub]; ok {
			return &key
		}
		return nil
	}); err != nil {
		return solana.Signature{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := c.sendTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, err
	}
	submitted := time.Now()

	c.logger.InfoContext(ctx, "transaction submitted",
		"signature", sig.String(),
		"payer", payer.String(),
		"last_valid_block_height", blockhash.Value.LastValidBlockHeight,
	)

	if err := c.confirm(ctx, sig, blockhash.Value.LastValidBlockHeight); err != nil {
		return sig, err
	}

	if c.metrics != nil {
		c.metrics.RecordConfirmation(string(c.commitment), time.Since(submitted).Seconds())
	}
	c.logger.InfoContext(ctx, "transaction confirmed",
		"signature", sig.String(),
		"commitment", string(c.commitment),
		"elapsed", time.Since(submitted).String(),
	)

	return sig, nil
}

// SignatureStatus returns the current status of sig, searching the full
// transaction history. A nil status means the node does not know the signature.
func (c *Connection) SignatureStatus(
	ctx context.Context,
	sig solana.Signature,
) (*rpc.SignatureStatusesResult, error) {
	start := time.Now()
	res, err := c.rpc.GetSignatureStatuses(ctx, true, sig)
	c.recordRPC("getSignatureStatuses", start, err)
	if err != nil {
		return nil, &NetworkError{Op: "getSignatureStatuses", Err: err}
	}
	if res == nil || len(res.Value) == 0 {
		return nil, nil
	}
	return res.Value[0], nil
}

func (c *Connection) getLatestBlockhash(ctx context.Context) (*rpc.GetLatestBlockhashResult, error) {
	start := time.Now()
	res, err := c.rpc.GetLatestBlockhash(ctx, c.commitment)
	c.recordRPC("getLatestBlockhash", start, err)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to get latest blockhash",
			"endpoint", c.endpoint,
			"error", err,
		)
	}
	return res, err
}

// sendTransaction submits tx exactly once with preflight at the connection's commitment.
func (c *Connection) sendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	start := time.Now()
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: c.commitment,
	})
	c.recordRPC("sendTransaction", start, err)
	if err == nil {
		return sig, nil
	}

	// A JSON-RPC error object means the node answered and refused the
	// transaction; anything else means we never got an answer.
	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		c.logger.ErrorContext(ctx, "transaction rejected",
			"code", rpcErr.Code,
			"message", rpcErr.Message,
		)
		return solana.Signature{}, &RejectionError{Reason: rpcErr.Message, Err: err}
	}

	c.logger.ErrorContext(ctx, "failed to send transaction",
		"endpoint", c.endpoint,
		"error", err,
	)
	return solana.Signature{}, &NetworkError{Op: "sendTransaction", Err: err}
}

// confirm polls the signature status until it reaches the commitment level,
// the transaction fails, its blockhash expires or the polling budget runs out.
func (c *Connection) confirm(ctx context.Context, sig solana.Signature, lastValidBlockHeight uint64) error {
	err := retry.Do(func() error {
		status, err := c.pollStatus(ctx, sig)
		if err != nil {
			return err
		}
		if status != nil && commitmentReached(status.ConfirmationStatus, c.commitment) {
			return nil
		}

		start := time.Now()
		height, err := c.rpc.GetBlockHeight(ctx, c.commitment)
		c.recordRPC("getBlockHeight", start, err)
		if err != nil || height <= lastValidBlockHeight {
			return errNotConfirmed
		}

		// The transaction may have landed after the status read above.
		// Only a signature the node still does not know has expired.
		status, err = c.pollStatus(ctx, sig)
		switch {
		case err != nil:
			return err
		case status == nil:
			return retry.Unrecoverable(&RejectionError{Signature: sig, Err: ErrBlockhashExpired})
		case commitmentReached(status.ConfirmationStatus, c.commitment):
			return nil
		default:
			return errNotConfirmed
		}
	},
		retry.Context(ctx),
		retry.Attempts(c.confirmAttempts),
		retry.Delay(c.confirmDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err == nil {
		return nil
	}

	var rejected *RejectionError
	switch {
	case errors.As(err, &rejected):
		return rejected
	case errors.Is(err, errNotConfirmed):
		return &NetworkError{Op: "confirmTransaction", Err: fmt.Errorf("%s: %w", sig, ErrConfirmationTimeout)}
	default:
		return &NetworkError{Op: "confirmTransaction", Err: err}
	}
}

// pollStatus reads the status of sig once. A nil status means the node does
// not know the signature yet. A transaction error is returned as an
// unrecoverable RejectionError; lookup failures are returned as is and retried.
func (c *Connection) pollStatus(ctx context.Context, sig solana.Signature) (*rpc.SignatureStatusesResult, error) {
	if c.metrics != nil {
		c.metrics.RecordConfirmationPoll(string(c.commitment))
	}

	start := time.Now()
	res, err := c.rpc.GetSignatureStatuses(ctx, false, sig)
	c.recordRPC("getSignatureStatuses", start, err)
	if err != nil {
		return nil, err
	}
	if res == nil || len(res.Value) == 0 || res.Value[0] == nil {
		return nil, nil
	}

	status := res.Value[0]
	if status.Err != nil {
		return nil, retry.Unrecoverable(&RejectionError{
			Signature: sig,
			Reason:    fmt.Sprintf("%v", status.Err),
		})
	}
	c.logger.DebugContext(ctx, "signature status",
		"signature", sig.String(),
		"status", string(status.ConfirmationStatus),
	)
	return status, nil
}

func (c *Connection) recordRPC(method string, start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	c.metrics.RecordRPCCall(method, status, c.endpoint, time.Since(start).Seconds())
}
