package bitcoinconsensus

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/consensus-verifier/common/errs"
)

// APIVersion is the libbitcoinconsensus API version implemented by the
// engines in this package (BITCOINCONSENSUS_API_VER).
const APIVersion = 1

// Status values returned by an Engine.
const (
	StatusInvalid = 0
	StatusValid   = 1
)

// Engine is the consensus verification engine behind the wrappers. It
// mirrors the libbitcoinconsensus C calls: a status of StatusValid means the
// spend verified, any other status is a failure detailed by code.
//
// Implementations must not retain or modify the given buffers.
type Engine interface {
	// Name identifies the engine implementation.
	Name() string

	// Version returns the engine's reported API version.
	Version() int

	// VerifyScriptWithAmount verifies input nIn of the serialized
	// transaction txTo against scriptPubKey holding amount satoshis.
	VerifyScriptWithAmount(scriptPubKey []byte, amount uint64, txTo []byte, nIn uint, flags Flags) (status int, code ErrorCode)

	// VerifyScript is VerifyScriptWithAmount without the amount. Engines
	// answer ErrAmountRequired when flags include FlagWitness.
	VerifyScript(scriptPubKey []byte, txTo []byte, nIn uint, flags Flags) (status int, code ErrorCode)
}

const (
	EngineNameNative   = "native"
	EngineNameTxScript = "txscript"
)

// NewEngine returns the engine with the given name. An empty name selects
// DefaultEngine.
func NewEngine(name string, opts ...ScriptEngineOption) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		if len(opts) > 0 && DefaultEngine().Name() == EngineNameTxScript {
			return NewScriptEngine(opts...), nil
		}
		return DefaultEngine(), nil
	case EngineNameTxScript:
		return NewScriptEngine(opts...), nil
	case EngineNameNative:
		engine, ok := nativeEngine()
		if !ok {
			return nil, errors.Wrap(errs.Unsupported, "native engine is not available, rebuild with `-tags bitcoinconsensus`")
		}
		return engine, nil
	default:
		return nil, errors.Wrapf(errs.InvalidArgument, "unknown engine %q", name)
	}
}

// DefaultEngine returns the native engine when the binary was built with the
// bitcoinconsensus tag, and a shared ScriptEngine otherwise.
func DefaultEngine() Engine {
	if engine, ok := nativeEngine(); ok {
		return engine
	}
	return defaultScriptEngine
}

var defaultScriptEngine = NewScriptEngine()
