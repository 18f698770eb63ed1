package bitcoinconsensus

import (
	"bytes"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/gaze-network/consensus-verifier/pkg/logger"
	"github.com/gaze-network/consensus-verifier/pkg/logger/slogx"
)

// DefaultSigCacheSize is the number of signature verifications remembered by
// a ScriptEngine unless configured otherwise.
const DefaultSigCacheSize = 10_000

// ScriptEngine is a pure Go Engine backed by btcd's txscript. It performs the
// same checks as libbitcoinconsensus, in the same order, and reports failures
// with the same codes. It is safe for concurrent use.
type ScriptEngine struct {
	sigCache *txscript.SigCache
}

var _ Engine = (*ScriptEngine)(nil)

type ScriptEngineOption func(*ScriptEngine)

// WithSigCacheSize sets the signature cache capacity. Zero disables the cache.
func WithSigCacheSize(size uint) ScriptEngineOption {
	return func(e *ScriptEngine) {
		if size == 0 {
			e.sigCache = nil
			return
		}
		e.sigCache = txscript.NewSigCache(size)
	}
}

func NewScriptEngine(opts ...ScriptEngineOption) *ScriptEngine {
	e := &ScriptEngine{
		sigCache: txscript.NewSigCache(DefaultSigCacheSize),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *ScriptEngine) Name() string {
	return EngineNameTxScript
}

func (e *ScriptEngine) Version() int {
	return APIVersion
}

func (e *ScriptEngine) VerifyScriptWithAmount(scriptPubKey []byte, amount uint64, txTo []byte, nIn uint, flags Flags) (int, ErrorCode) {
	return e.verify(scriptPubKey, int64(amount), txTo, nIn, flags)
}

func (e *ScriptEngine) VerifyScript(scriptPubKey []byte, txTo []byte, nIn uint, flags Flags) (int, ErrorCode) {
	if flags.Has(FlagWitness) {
		return StatusInvalid, ErrAmountRequired
	}
	return e.verify(scriptPubKey, 0, txTo, nIn, flags)
}

func (e *ScriptEngine) verify(scriptPubKey []byte, amount int64, txTo []byte, nIn uint, flags Flags) (int, ErrorCode) {
	var tx wire.MsgTx
	if err := tx.Deserialize(bytes.NewReader(txTo)); err != nil {
		logger.Debug("failed to deserialize spending transaction", slogx.Error(err), slogx.Int("length", len(txTo)))
		return StatusInvalid, ErrTxDeserialize
	}
	if nIn >= uint(len(tx.TxIn)) {
		return StatusInvalid, ErrTxIndex
	}
	if tx.SerializeSize() != len(txTo) {
		return StatusInvalid, ErrTxSizeMismatch
	}

	sf, ok := witnessScriptFlags(scriptFlags(flags), scriptPubKey, tx.TxIn[nIn].Witness)
	if !ok {
		logger.Debug("unexpected witness without P2SH evaluation", slogx.Stringer("txHash", tx.TxHash()), slogx.Uint64("inputIndex", uint64(nIn)))
		return StatusInvalid, ErrOK
	}

	prevOutFetcher := txscript.NewCannedPrevOutputFetcher(scriptPubKey, amount)
	sigHashes := txscript.NewTxSigHashes(&tx, prevOutFetcher)
	vm, err := txscript.NewEngine(scriptPubKey, &tx, int(nIn), sf, e.sigCache, sigHashes, amount, prevOutFetcher)
	if err != nil {
		logger.Debug("script engine rejected input", slogx.Error(err), slogx.Stringer("txHash", tx.TxHash()), slogx.Uint64("inputIndex", uint64(nIn)))
		return StatusInvalid, ErrOK
	}
	if err := vm.Execute(); err != nil {
		logger.Debug("script execution failed", slogx.Error(err), slogx.Stringer("txHash", tx.TxHash()), slogx.Uint64("inputIndex", uint64(nIn)))
		return StatusInvalid, ErrOK
	}
	return StatusValid, ErrOK
}

var txScriptFlags = []struct {
	flag   Flags
	script txscript.ScriptFlags
}{
	{FlagP2SH, txscript.ScriptBip16},
	{FlagDERSig, txscript.ScriptVerifyDERSignatures},
	{FlagNullDummy, txscript.ScriptStrictMultiSig},
	{FlagCheckLockTimeVerify, txscript.ScriptVerifyCheckLockTimeVerify},
	{FlagCheckSequenceVerify, txscript.ScriptVerifyCheckSequenceVerify},
	{FlagWitness, txscript.ScriptVerifyWitness},
}

// scriptFlags maps libbitcoinconsensus flags to txscript flags. Unknown bits
// are ignored.
func scriptFlags(flags Flags) txscript.ScriptFlags {
	var sf txscript.ScriptFlags
	for _, f := range txScriptFlags {
		if flags.Has(f.flag) {
			sf |= f.script
		}
	}
	return sf
}

// witnessScriptFlags resolves witness verification without P2SH, which
// txscript refuses as an invalid flag combination. Bip16 only changes how
// P2SH outputs are evaluated, so it is enabled for every other output. A P2SH
// output is evaluated without its redeem script, so no witness program is
// reached and any witness data on the input is unexpected.
func witnessScriptFlags(sf txscript.ScriptFlags, scriptPubKey []byte, witness wire.TxWitness) (txscript.ScriptFlags, bool) {
	if sf&txscript.ScriptVerifyWitness == 0 || sf&txscript.ScriptBip16 != 0 {
		return sf, true
	}
	if !txscript.IsPayToScriptHash(scriptPubKey) {
		return sf | txscript.ScriptBip16, true
	}
	if len(witness) != 0 {
		return sf, false
	}
	return sf &^ txscript.ScriptVerifyWitness, true
}
