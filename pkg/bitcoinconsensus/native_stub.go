//go:build !(cgo && bitcoinconsensus)

package bitcoinconsensus

func nativeEngine() (Engine, bool) {
	return nil, false
}
