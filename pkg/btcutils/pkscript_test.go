package btcutils

import (
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/txscript"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/consensus-verifier/common"
	"github.com/gaze-network/consensus-verifier/common/errs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPkScriptToAddress(t *testing.T) {
	testcases := []struct {
		name     string
		pkScript string
		network  common.Network
		expected string
		err      error
	}{
		{
			name:     "P2PKH mainnet",
			pkScript: "76a91462e907b15cbf27d5425399ebf6f0fb50ebb88f1888ac",
			network:  common.NetworkMainnet,
			expected: "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa",
		},
		{
			name:     "P2WPKH mainnet",
			pkScript: "0014751e76e8199196d454941c45d1b3a323f1433bd6",
			network:  common.NetworkMainnet,
			expected: "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4",
		},
		{
			name:     "P2WPKH testnet",
			pkScript: "0014751e76e8199196d454941c45d1b3a323f1433bd6",
			network:  common.NetworkTestnet,
			expected: "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx",
		},
		{
			name:     "non-standard",
			pkScript: hex.EncodeToString([]byte{txscript.OP_TRUE}),
			network:  common.NetworkMainnet,
			err:      errs.NotFound,
		},
		{
			name:     "unsupported network",
			pkScript: "0014751e76e8199196d454941c45d1b3a323f1433bd6",
			network:  common.Network("litecoin"),
			err:      errs.Unsupported,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			address, err := PkScriptToAddress(lo.Must(hex.DecodeString(tc.pkScript)), tc.network)
			if tc.err != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tc.err), err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, address)
		})
	}
}
