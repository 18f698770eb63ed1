package bitcoinconsensus

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

// testSpend is a spent output together with a transaction spending it at
// input 0.
type testSpend struct {
	ScriptPubKey []byte
	Amount       int64
	Tx           *wire.MsgTx
	Raw          []byte
}

func testPrivateKey(seed byte) *btcec.PrivateKey {
	priv, _ := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{seed}, 32))
	return priv
}

func serializeTx(t *testing.T, tx *wire.MsgTx) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, tx.Serialize(&buf))
	return buf.Bytes()
}

func newUnsignedSpend(t *testing.T, pkScript []byte, amount int64) *wire.MsgTx {
	t.Helper()

	funding := wire.NewMsgTx(wire.TxVersion)
	funding.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&chainhash.Hash{}, wire.MaxPrevOutIndex), []byte{0x51}, nil))
	funding.AddTxOut(wire.NewTxOut(amount, pkScript))
	fundingHash := funding.TxHash()

	payee, err := txscript.NullDataScript([]byte("consensus-verifier"))
	require.NoError(t, err)

	tx := wire.NewMsgTx(2)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&fundingHash, 0), nil, nil))
	tx.AddTxOut(wire.NewTxOut(0, payee))
	tx.AddTxOut(wire.NewTxOut(amount-1_000, pkScript))
	return tx
}

// newP2PKHSpend returns a signed legacy pay-to-pubkey-hash spend.
func newP2PKHSpend(t *testing.T) testSpend {
	t.Helper()
	priv := testPrivateKey(0x11)
	addr, err := btcutil.NewAddressPubKeyHash(btcutil.Hash160(priv.PubKey().SerializeCompressed()), &chaincfg.MainNetParams)
	require.NoError(t, err)
	pkScript, err := txscript.PayToAddrScript(addr)
	require.NoError(t, err)

	const amount = 50_000
	tx := newUnsignedSpend(t, pkScript, amount)
	sigScript, err := txscript.SignatureScript(tx, 0, pkScript, txscript.SigHashAll, priv, true)
	require.NoError(t, err)
	tx.TxIn[0].SignatureScript = sigScript

	return testSpend{ScriptPubKey: pkScript, Amount: amount, Tx: tx, Raw: serializeTx(t, tx)}
}

// newP2WPKHSpend returns a signed native segwit v0 spend.
func newP2WPKHSpend(t *testing.T) testSpend {
	t.Helper()
	priv := testPrivateKey(0x22)
	addr, err := btcutil.NewAddressWitnessPubKeyHash(btcutil.Hash160(priv.PubKey().SerializeCompressed()), &chaincfg.MainNetParams)
	require.NoError(t, err)
	pkScript, err := txscript.PayToAddrScript(addr)
	require.NoError(t, err)

	const amount = 120_000
	tx := newUnsignedSpend(t, pkScript, amount)
	prevFetcher := txscript.NewCannedPrevOutputFetcher(pkScript, amount)
	sigHashes := txscript.NewTxSigHashes(tx, prevFetcher)
	witness, err := txscript.WitnessSignature(tx, sigHashes, 0, amount, pkScript, txscript.SigHashAll, priv, true)
	require.NoError(t, err)
	tx.TxIn[0].Witness = witness

	return testSpend{ScriptPubKey: pkScript, Amount: amount, Tx: tx, Raw: serializeTx(t, tx)}
}

// newCLTVSpend returns an unsigned spend of `<lockTime> CHECKLOCKTIMEVERIFY
// DROP TRUE` whose transaction lock time is below lockTime, so it is only
// valid while CHECKLOCKTIMEVERIFY is not enforced.
func newCLTVSpend(t *testing.T, lockTime int64) testSpend {
	t.Helper()
	pkScript, err := txscript.NewScriptBuilder().
		AddInt64(lockTime).
		AddOp(txscript.OP_CHECKLOCKTIMEVERIFY).
		AddOp(txscript.OP_DROP).
		AddOp(txscript.OP_TRUE).
		Script()
	require.NoError(t, err)

	const amount = 10_000
	tx := newUnsignedSpend(t, pkScript, amount)
	tx.LockTime = 0

	return testSpend{ScriptPubKey: pkScript, Amount: amount, Tx: tx, Raw: serializeTx(t, tx)}
}

// newP2SHSpend returns a spend of a pay-to-script-hash output whose redeem
// script is OP_TRUE.
func newP2SHSpend(t *testing.T) testSpend {
	t.Helper()
	redeemScript := []byte{txscript.OP_TRUE}
	addr, err := btcutil.NewAddressScriptHash(redeemScript, &chaincfg.MainNetParams)
	require.NoError(t, err)
	pkScript, err := txscript.PayToAddrScript(addr)
	require.NoError(t, err)

	const amount = 30_000
	tx := newUnsignedSpend(t, pkScript, amount)
	sigScript, err := txscript.NewScriptBuilder().AddData(redeemScript).Script()
	require.NoError(t, err)
	tx.TxIn[0].SignatureScript = sigScript

	return testSpend{ScriptPubKey: pkScript, Amount: amount, Tx: tx, Raw: serializeTx(t, tx)}
}

func mustDecodeHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

// A mainnet legacy transaction and the P2PKH output spent by its input 0.
const (
	mainnetSpentOutputHex = "76a9144bfbaf6afb76cc5771bc6404810d1cc041a6933988ac"
	mainnetTxHex          = "02000000013f7cebd65c27431a90bba7f796914fe8cc2ddfc3f2cbd6f7e5f2fc854534da95000000006b483045022100de1ac3bcdfb0332207c4a91f3832bd2c2915840165f876ab47c5f8996b971c3602201c6c053d750fadde599e6f5c4e1963df0f01fc0d97815e8157e3d59fe09ca30d012103699b464d1d8bc9e47d4fb1cdaa89a1c5783d68363c4dbc4b524ed3d857148617feffffff02836d3c01000000001976a914fc25d6d5c94003bf5b0c7b640a248e2c637fcfb088ac7ada8202000000001976a914fbed3d9b11183209a57999d54d59f67c019e756c88ac6acb0700"

	// offset of a byte inside the r value of the input's signature
	mainnetTxSignatureOffset = 53
)
