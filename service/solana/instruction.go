package solana

import (
	"github.com/gagliardetto/solana-go"
)

// NewPingInstruction builds a no-op instruction for programID. The only account
// is the given key, passed read-only and non-signing; the payload is empty.
func NewPingInstruction(programID, account solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		programID,
		solana.AccountMetaSlice{
			solana.NewAccountMeta(account, false, false),
		},
		[]byte{},
	)
}
