package datagateway

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/gaze-network/consensus-verifier/modules/verifier/entity"
)

type VerificationResultDataGateway interface {
	VerificationResultReaderDataGateway
	VerificationResultWriterDataGateway
}

type VerificationResultReaderDataGateway interface {
	// GetResultsByTxHash returns every recorded input result of the transaction, newest first.
	GetResultsByTxHash(ctx context.Context, txHash chainhash.Hash) ([]*entity.VerificationRecord, error)
}

type VerificationResultWriterDataGateway interface {
	InsertResults(ctx context.Context, result *entity.TransactionResult) error
}
