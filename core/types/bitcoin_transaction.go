package types

import (
	"bytes"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/consensus-verifier/common"
	"github.com/gaze-network/consensus-verifier/common/errs"
	"github.com/samber/lo"
)

// UnconfirmedHeight is the block height of a transaction that is not yet in a block.
const UnconfirmedHeight = -1

type Transaction struct {
	BlockHeight int64 // UnconfirmedHeight for mempool transactions
	BlockHash   chainhash.Hash
	TxHash      chainhash.Hash
	Version     int32
	LockTime    uint32
	TxIn        []*TxIn
	TxOut       []*TxOut

	// Raw is the transaction serialized in Bitcoin wire format, witness included.
	Raw []byte
}

type TxIn struct {
	SignatureScript   []byte
	Witness           [][]byte
	Sequence          uint32
	PreviousOutIndex  uint32
	PreviousOutTxHash chainhash.Hash
}

// PreviousOutPoint returns the outpoint spent by the input.
func (in *TxIn) PreviousOutPoint() wire.OutPoint {
	return wire.OutPoint{Hash: in.PreviousOutTxHash, Index: in.PreviousOutIndex}
}

type TxOut struct {
	PkScript []byte
	Value    int64
}

// IsConfirmed reports whether the transaction is included in a block.
func (t *Transaction) IsConfirmed() bool {
	return t.BlockHeight != UnconfirmedHeight
}

// IsCoinbase reports whether the transaction is a coinbase, which has no
// previous outputs to verify.
func (t *Transaction) IsCoinbase() bool {
	if len(t.TxIn) != 1 {
		return false
	}
	in := t.TxIn[0]
	return in.PreviousOutIndex == wire.MaxPrevOutIndex && in.PreviousOutTxHash == common.ZeroHash
}

// ParseMsgTx parses btcd/wire.MsgTx to Transaction.
func ParseMsgTx(src *wire.MsgTx, blockHeight int64, blockHash chainhash.Hash) (*Transaction, error) {
	var buf bytes.Buffer
	buf.Grow(src.SerializeSize())
	if err := src.Serialize(&buf); err != nil {
		return nil, errors.Wrap(err, "failed to serialize transaction")
	}
	return &Transaction{
		BlockHeight: blockHeight,
		BlockHash:   blockHash,
		TxHash:      src.TxHash(),
		Version:     src.Version,
		LockTime:    src.LockTime,
		TxIn: lo.Map(src.TxIn, func(item *wire.TxIn, _ int) *TxIn {
			return ParseTxIn(item)
		}),
		TxOut: lo.Map(src.TxOut, func(item *wire.TxOut, _ int) *TxOut {
			return ParseTxOut(item)
		}),
		Raw: buf.Bytes(),
	}, nil
}

// ParseRawTx deserializes a transaction in Bitcoin wire format.
func ParseRawTx(raw []byte, blockHeight int64, blockHash chainhash.Hash) (*Transaction, error) {
	var msgTx wire.MsgTx
	if err := msgTx.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, errors.Wrap(errs.InvalidArgument, "malformed transaction: "+err.Error())
	}
	tx, err := ParseMsgTx(&msgTx, blockHeight, blockHash)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	tx.Raw = raw
	return tx, nil
}

// ParseTxIn parses btcd/wire.TxIn to TxIn.
func ParseTxIn(src *wire.TxIn) *TxIn {
	return &TxIn{
		SignatureScript:   src.SignatureScript,
		Witness:           src.Witness,
		Sequence:          src.Sequence,
		PreviousOutIndex:  src.PreviousOutPoint.Index,
		PreviousOutTxHash: src.PreviousOutPoint.Hash,
	}
}

// ParseTxOut parses btcd/wire.TxOut to TxOut.
func ParseTxOut(src *wire.TxOut) *TxOut {
	return &TxOut{
		PkScript: src.PkScript,
		Value:    src.Value,
	}
}
