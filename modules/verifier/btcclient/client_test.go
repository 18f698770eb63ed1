package btcclient

import (
	"bytes"
	"context"
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/consensus-verifier/common/errs"
	"github.com/gaze-network/consensus-verifier/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRPCClient struct {
	txs         map[chainhash.Hash]*wire.MsgTx
	blockHashes map[chainhash.Hash]chainhash.Hash // tx -> block
	heights     map[chainhash.Hash]int32
	tip         int64

	getRawTransactionCalls int
}

func newFakeRPCClient() *fakeRPCClient {
	return &fakeRPCClient{
		txs:         make(map[chainhash.Hash]*wire.MsgTx),
		blockHashes: make(map[chainhash.Hash]chainhash.Hash),
		heights:     make(map[chainhash.Hash]int32),
	}
}

func notFoundError() error {
	return &btcjson.RPCError{Code: btcjson.ErrRPCNoTxInfo, Message: "No such mempool or blockchain transaction"}
}

func (c *fakeRPCClient) GetRawTransaction(txHash *chainhash.Hash) (*btcutil.Tx, error) {
	c.getRawTransactionCalls++
	tx, ok := c.txs[*txHash]
	if !ok {
		return nil, notFoundError()
	}
	return btcutil.NewTx(tx), nil
}

func (c *fakeRPCClient) GetRawTransactionVerbose(txHash *chainhash.Hash) (*btcjson.TxRawResult, error) {
	tx, ok := c.txs[*txHash]
	if !ok {
		return nil, notFoundError()
	}
	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return nil, err
	}
	result := &btcjson.TxRawResult{
		Hex:  hex.EncodeToString(buf.Bytes()),
		Txid: txHash.String(),
	}
	if blockHash, ok := c.blockHashes[*txHash]; ok {
		result.BlockHash = blockHash.String()
	}
	return result, nil
}

func (c *fakeRPCClient) GetBlockHeaderVerbose(blockHash *chainhash.Hash) (*btcjson.GetBlockHeaderVerboseResult, error) {
	height, ok := c.heights[*blockHash]
	if !ok {
		return nil, &btcjson.RPCError{Code: btcjson.ErrRPCBlockNotFound, Message: "Block not found"}
	}
	return &btcjson.GetBlockHeaderVerboseResult{Hash: blockHash.String(), Height: height}, nil
}

func (c *fakeRPCClient) GetBlockCount() (int64, error) {
	return c.tip, nil
}

func newTx(outputs int) *wire.MsgTx {
	tx := wire.NewMsgTx(2)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&chainhash.Hash{1}, 0), []byte{0x51}, nil))
	for i := 0; i < outputs; i++ {
		tx.AddTxOut(wire.NewTxOut(int64(1_000*(i+1)), []byte{0x51, byte(i)}))
	}
	return tx
}

func TestGetTransaction(t *testing.T) {
	ctx := context.Background()
	rpc := newFakeRPCClient()

	confirmed := newTx(1)
	confirmedHash := confirmed.TxHash()
	blockHash := chainhash.DoubleHashH([]byte("block"))
	rpc.txs[confirmedHash] = confirmed
	rpc.blockHashes[confirmedHash] = blockHash
	rpc.heights[blockHash] = 840_000

	mempool := newTx(2)
	mempoolHash := mempool.TxHash()
	rpc.txs[mempoolHash] = mempool

	client, err := New(rpc, 0)
	require.NoError(t, err)

	t.Run("confirmed", func(t *testing.T) {
		tx, err := client.GetTransaction(ctx, confirmedHash)
		require.NoError(t, err)
		assert.Equal(t, confirmedHash, tx.TxHash)
		assert.Equal(t, blockHash, tx.BlockHash)
		assert.Equal(t, int64(840_000), tx.BlockHeight)
		assert.True(t, tx.IsConfirmed())
		assert.Equal(t, confirmed.SerializeSize(), len(tx.Raw))
	})
	t.Run("unconfirmed", func(t *testing.T) {
		tx, err := client.GetTransaction(ctx, mempoolHash)
		require.NoError(t, err)
		assert.Equal(t, int64(types.UnconfirmedHeight), tx.BlockHeight)
		assert.False(t, tx.IsConfirmed())
		assert.Len(t, tx.TxOut, 2)
	})
	t.Run("not found", func(t *testing.T) {
		_, err := client.GetTransaction(ctx, chainhash.Hash{9})
		assert.ErrorIs(t, err, errs.NotFound)
	})
	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := client.GetTransaction(ctx, confirmedHash)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestGetPrevOutput(t *testing.T) {
	ctx := context.Background()
	rpc := newFakeRPCClient()
	prev := newTx(3)
	prevHash := prev.TxHash()
	rpc.txs[prevHash] = prev

	client, err := New(rpc, 16)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		out, err := client.GetPrevOutput(ctx, wire.OutPoint{Hash: prevHash, Index: uint32(i)})
		require.NoError(t, err)
		assert.Equal(t, prev.TxOut[i].Value, out.Value)
		assert.Equal(t, prev.TxOut[i].PkScript, out.PkScript)
	}
	assert.Equal(t, 1, rpc.getRawTransactionCalls, "previous transaction should be cached")

	_, err = client.GetPrevOutput(ctx, wire.OutPoint{Hash: prevHash, Index: 3})
	assert.ErrorIs(t, err, errs.NotFound)

	_, err = client.GetPrevOutput(ctx, wire.OutPoint{Hash: chainhash.Hash{7}, Index: 0})
	assert.ErrorIs(t, err, errs.NotFound)
}

func TestGetBlockCount(t *testing.T) {
	rpc := newFakeRPCClient()
	rpc.tip = 850_000
	client, err := New(rpc, 0)
	require.NoError(t, err)

	count, err := client.GetBlockCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(850_000), count)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(errors.WithStack(notFoundError())))
	assert.False(t, isNotFound(&btcjson.RPCError{Code: btcjson.ErrRPCMisc}))
	assert.False(t, isNotFound(errors.New("connection refused")))
}
