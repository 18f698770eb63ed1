package btcutils

import (
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	BitcoinDecimals = 8
)

// FormatSatoshi formats a Satoshi amount as an exact Bitcoin decimal string with 8 decimals.
func FormatSatoshi(v uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), -BitcoinDecimals).StringFixed(BitcoinDecimals)
}
