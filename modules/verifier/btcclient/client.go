package btcclient

import (
	"context"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/btcsuite/btcd/wire"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/consensus-verifier/common/errs"
	"github.com/gaze-network/consensus-verifier/core/types"
	"github.com/gaze-network/consensus-verifier/modules/verifier/datagateway"
	"github.com/gaze-network/consensus-verifier/pkg/logger"
	"github.com/gaze-network/consensus-verifier/pkg/logger/slogx"
	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultCacheSize = 4096

// Make sure that interfaces are compatible with the rpcclient package
var (
	_ datagateway.BitcoinNodeDataGateway = (*Client)(nil)
	_ RPCClient                          = (*rpcclient.Client)(nil)
)

// RPCClient is the subset of the Bitcoin Core RPC client used by Client.
type RPCClient interface {
	GetRawTransaction(txHash *chainhash.Hash) (*btcutil.Tx, error)
	GetRawTransactionVerbose(txHash *chainhash.Hash) (*btcjson.TxRawResult, error)
	GetBlockHeaderVerbose(blockHash *chainhash.Hash) (*btcjson.GetBlockHeaderVerboseResult, error)
	GetBlockCount() (int64, error)
}

// Client fetches transactions and previous outputs from a Bitcoin Core node.
// Transactions fetched for their outputs are kept in a LRU cache, inputs of
// the same transaction often spend outputs of the same previous transaction.
type Client struct {
	client  RPCClient
	txCache *lru.Cache[chainhash.Hash, *wire.MsgTx]
}

func New(client RPCClient, cacheSize int) (*Client, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[chainhash.Hash, *wire.MsgTx](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create transaction cache")
	}
	return &Client{
		client:  client,
		txCache: cache,
	}, nil
}

func (c *Client) GetTransaction(ctx context.Context, txHash chainhash.Hash) (*types.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	verbose, err := c.client.GetRawTransactionVerbose(&txHash)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.Wrapf(errs.NotFound, "transaction %s not found", txHash)
		}
		return nil, errors.Wrapf(err, "failed to get raw transaction %s", txHash)
	}

	raw, err := hex.DecodeString(verbose.Hex)
	if err != nil {
		return nil, errors.Wrap(err, "node returned malformed transaction hex")
	}

	blockHeight := int64(types.UnconfirmedHeight)
	var blockHash chainhash.Hash
	if verbose.BlockHash != "" {
		hash, err := chainhash.NewHashFromStr(verbose.BlockHash)
		if err != nil {
			return nil, errors.Wrap(err, "node returned malformed block hash")
		}
		header, err := c.client.GetBlockHeaderVerbose(hash)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get block header %s", hash)
		}
		blockHash = *hash
		blockHeight = int64(header.Height)
	}

	tx, err := types.ParseRawTx(raw, blockHeight, blockHash)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	logger.DebugContext(ctx, "Fetched transaction from Bitcoin node",
		slogx.Stringer("txHash", txHash),
		slogx.Int64("blockHeight", blockHeight),
		slogx.Int("inputs", len(tx.TxIn)),
	)
	return tx, nil
}

func (c *Client) GetPrevOutput(ctx context.Context, outPoint wire.OutPoint) (*types.TxOut, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	msgTx, ok := c.txCache.Get(outPoint.Hash)
	if !ok {
		tx, err := c.client.GetRawTransaction(&outPoint.Hash)
		if err != nil {
			if isNotFound(err) {
				return nil, errors.Wrapf(errs.NotFound, "previous transaction %s not found", outPoint.Hash)
			}
			return nil, errors.Wrapf(err, "failed to get raw transaction %s", outPoint.Hash)
		}
		msgTx = tx.MsgTx()
		c.txCache.Add(outPoint.Hash, msgTx)
	}

	if int(outPoint.Index) >= len(msgTx.TxOut) {
		return nil, errors.Wrapf(errs.NotFound, "output %s not found", outPoint)
	}
	return types.ParseTxOut(msgTx.TxOut[outPoint.Index]), nil
}

func (c *Client) GetBlockCount(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, errors.WithStack(err)
	}
	count, err := c.client.GetBlockCount()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get block count")
	}
	return count, nil
}

// isNotFound reports whether the node answered that the transaction is unknown.
func isNotFound(err error) bool {
	var rpcErr *btcjson.RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr.Code == btcjson.ErrRPCNoTxInfo
	}
	return false
}
