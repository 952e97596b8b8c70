package solana

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	// ErrConfirmationTimeout is wrapped in a NetworkError when the status
	// polling budget runs out before the commitment level is reached.
	ErrConfirmationTimeout = errors.New("transaction was not confirmed in time")

	// ErrBlockhashExpired is wrapped in a RejectionError when the chain moved
	// past the transaction's last valid block height without confirming it.
	ErrBlockhashExpired = errors.New("block height exceeded: transaction blockhash expired")

	errNotConfirmed = errors.New("transaction not yet confirmed")
)

// DecodeError is returned when secret key material cannot be turned into a keypair.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to decode private key: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("failed to decode private key: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// NetworkError is returned when the RPC endpoint could not be reached or
// did not answer in time. Op names the step that failed.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RejectionError is returned when the network refused the transaction,
// either at submission (preflight, stale blockhash, insufficient funds)
// or by reporting an execution error while confirming.
type RejectionError struct {
	Signature solana.Signature
	Reason    string
	Err       error
}

func (e *RejectionError) Error() string {
	msg := "transaction rejected"
	if e.Signature != (solana.Signature{}) {
		msg += " (" + e.Signature.String() + ")"
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RejectionError) Unwrap() error { return e.Err }
