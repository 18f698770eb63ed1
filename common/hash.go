package common

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// ZeroHash is the previous output hash of coinbase inputs and the block hash of unconfirmed transactions.
var ZeroHash = chainhash.Hash{}
