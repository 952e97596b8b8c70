package solana

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go/rpc"
)

// ParseCommitment maps a commitment name to its RPC type. Only the three
// levels the cluster still recognizes are accepted.
func ParseCommitment(s string) (rpc.CommitmentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "processed":
		return rpc.CommitmentProcessed, nil
	case "confirmed":
		return rpc.CommitmentConfirmed, nil
	case "finalized":
		return rpc.CommitmentFinalized, nil
	default:
		return "", fmt.Errorf("unknown commitment level %q (want processed, confirmed or finalized)", s)
	}
}

// commitmentRank orders levels from weakest to strongest.
func commitmentRank(level string) int {
	switch level {
	case string(rpc.CommitmentProcessed):
		return 1
	case string(rpc.CommitmentConfirmed):
		return 2
	case string(rpc.CommitmentFinalized):
		return 3
	default:
		return 0
	}
}

// commitmentReached reports whether a signature status satisfies the wanted commitment.
func commitmentReached(status rpc.ConfirmationStatusType, want rpc.CommitmentType) bool {
	got := commitmentRank(string(status))
	return got > 0 && got >= commitmentRank(string(want))
}
