package entity

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/gaze-network/consensus-verifier/pkg/bitcoinconsensus"
)

// InputResult is the verification outcome of a single transaction input.
type InputResult struct {
	Index            uint32
	PreviousOutPoint wire.OutPoint
	PkScript         []byte
	Amount           int64 // in satoshi
	Valid            bool
	ErrorCode        bitcoinconsensus.ErrorCode
	Reason           string // empty when valid
}

// TransactionResult is the verification outcome of every input of a transaction.
type TransactionResult struct {
	TxHash      chainhash.Hash
	BlockHash   chainhash.Hash
	BlockHeight int64
	Flags       bitcoinconsensus.Flags
	Coinbase    bool
	Inputs      []*InputResult
	Valid       bool
}

// InvalidInputs returns the inputs that failed verification.
func (r *TransactionResult) InvalidInputs() []*InputResult {
	invalid := make([]*InputResult, 0)
	for _, in := range r.Inputs {
		if !in.Valid {
			invalid = append(invalid, in)
		}
	}
	return invalid
}

// VerificationRecord is a persisted input verification outcome.
type VerificationRecord struct {
	TxHash      chainhash.Hash
	InputIndex  uint32
	BlockHeight int64
	Flags       bitcoinconsensus.Flags
	Valid       bool
	ErrorCode   bitcoinconsensus.ErrorCode
	Reason      string
	CreatedAt   time.Time
}
