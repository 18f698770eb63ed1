//go:build cgo && bitcoinconsensus

package bitcoinconsensus

/*
#cgo pkg-config: libbitcoinconsensus

#include <stdint.h>
#include <bitcoinconsensus.h>
*/
import "C"

import "unsafe"

// NativeEngine calls the system libbitcoinconsensus through cgo. This is the
// only code in the module that crosses a foreign call boundary.
type NativeEngine struct{}

var _ Engine = NativeEngine{}

func nativeEngine() (Engine, bool) {
	return NativeEngine{}, true
}

func (NativeEngine) Name() string {
	return EngineNameNative
}

func (NativeEngine) Version() int {
	return int(C.bitcoinconsensus_version())
}

func (NativeEngine) VerifyScriptWithAmount(scriptPubKey []byte, amount uint64, txTo []byte, nIn uint, flags Flags) (int, ErrorCode) {
	var cerr C.bitcoinconsensus_error
	scriptPtr, scriptLen := bytesArg(scriptPubKey)
	txPtr, txLen := bytesArg(txTo)

	ret := C.bitcoinconsensus_verify_script_with_amount(
		scriptPtr, scriptLen,
		C.int64_t(amount),
		txPtr, txLen,
		C.uint(nIn),
		C.uint(flags),
		&cerr,
	)
	return int(ret), ErrorCode(cerr)
}

func (NativeEngine) VerifyScript(scriptPubKey []byte, txTo []byte, nIn uint, flags Flags) (int, ErrorCode) {
	var cerr C.bitcoinconsensus_error
	scriptPtr, scriptLen := bytesArg(scriptPubKey)
	txPtr, txLen := bytesArg(txTo)

	ret := C.bitcoinconsensus_verify_script(
		scriptPtr, scriptLen,
		txPtr, txLen,
		C.uint(nIn),
		C.uint(flags),
		&cerr,
	)
	return int(ret), ErrorCode(cerr)
}

// bytesArg passes b to C without copying. Empty slices become a NULL pointer
// with zero length.
func bytesArg(b []byte) (*C.uchar, C.uint) {
	if len(b) == 0 {
		return nil, 0
	}
	return (*C.uchar)(unsafe.Pointer(&b[0])), C.uint(len(b))
}
