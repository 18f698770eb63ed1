package datagateway

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/gaze-network/consensus-verifier/core/types"
)

type BitcoinNodeDataGateway interface {
	// GetTransaction returns the transaction with its raw serialization. Returns errs.NotFound if the node doesn't know the transaction.
	GetTransaction(ctx context.Context, txHash chainhash.Hash) (*types.Transaction, error)
	// GetPrevOutput returns the output spent by the given outpoint. Returns errs.NotFound if the output doesn't exist.
	GetPrevOutput(ctx context.Context, outPoint wire.OutPoint) (*types.TxOut, error)
	// GetBlockCount returns the height of the node's best chain tip.
	GetBlockCount(ctx context.Context) (int64, error)
}
