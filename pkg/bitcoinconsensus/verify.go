// Package bitcoinconsensus verifies Bitcoin transaction inputs with a
// libbitcoinconsensus compatible engine and computes the consensus flags
// active at a given mainnet height.
//
// The engine is libbitcoinconsensus itself when built with
// `-tags bitcoinconsensus` (cgo and pkg-config are required), and a pure Go
// engine backed by btcd's txscript otherwise.
package bitcoinconsensus

// Verifier binds the verification wrappers to an Engine. The zero value is not
// usable, use New.
type Verifier struct {
	engine Engine
}

func New(engine Engine) *Verifier {
	if engine == nil {
		engine = DefaultEngine()
	}
	return &Verifier{engine: engine}
}

// Engine returns the underlying engine.
func (v *Verifier) Engine() Engine {
	return v.engine
}

// Version returns the engine's reported version.
func (v *Verifier) Version() int {
	return v.engine.Version()
}

// Verify verifies a single input of a transaction with all supported rules
// enabled. It is equivalent to VerifyWithFlags with FlagsAll.
//
//   - spentOutput: scriptPubKey of the output being spent
//   - amount: value of the spent output in satoshis
//   - spendingTransaction: spending transaction in Bitcoin wire format
//   - inputIndex: index of the input within spendingTransaction
func (v *Verifier) Verify(spentOutput []byte, amount uint64, spendingTransaction []byte, inputIndex uint) error {
	return v.VerifyWithFlags(spentOutput, amount, spendingTransaction, inputIndex, FlagsAll)
}

// VerifyWithFlags is Verify with an explicit set of rules, e.g. the result of
// HeightToFlags for the block that includes the transaction.
func (v *Verifier) VerifyWithFlags(spentOutput []byte, amount uint64, spendingTransaction []byte, inputIndex uint, flags Flags) error {
	status, code := v.engine.VerifyScriptWithAmount(spentOutput, amount, spendingTransaction, inputIndex, flags)
	return result(status, code)
}

// VerifyWithoutAmount verifies an input without knowing the spent amount.
// Witness verification needs the amount, so FlagWitness yields ErrAmountRequired.
func (v *Verifier) VerifyWithoutAmount(spentOutput []byte, spendingTransaction []byte, inputIndex uint, flags Flags) error {
	status, code := v.engine.VerifyScript(spentOutput, spendingTransaction, inputIndex, flags)
	return result(status, code)
}

func result(status int, code ErrorCode) error {
	if status != StatusValid {
		return &Error{Code: code}
	}
	return nil
}

var defaultVerifier = New(nil)

// Version returns the default engine's reported version.
func Version() int {
	return defaultVerifier.Version()
}

// Verify verifies a single input with the default engine and all rules enabled.
func Verify(spentOutput []byte, amount uint64, spendingTransaction []byte, inputIndex uint) error {
	return defaultVerifier.Verify(spentOutput, amount, spendingTransaction, inputIndex)
}

// VerifyWithFlags verifies a single input with the default engine.
func VerifyWithFlags(spentOutput []byte, amount uint64, spendingTransaction []byte, inputIndex uint, flags Flags) error {
	return defaultVerifier.VerifyWithFlags(spentOutput, amount, spendingTransaction, inputIndex, flags)
}

// VerifyWithoutAmount verifies a single input with the default engine, without the spent amount.
func VerifyWithoutAmount(spentOutput []byte, spendingTransaction []byte, inputIndex uint, flags Flags) error {
	return defaultVerifier.VerifyWithoutAmount(spentOutput, spendingTransaction, inputIndex, flags)
}
