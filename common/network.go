package common

import "github.com/btcsuite/btcd/chaincfg"

type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
	NetworkSignet  Network = "signet"
	NetworkRegtest Network = "regtest"
)

var chainParams = map[Network]*chaincfg.Params{
	NetworkMainnet: &chaincfg.MainNetParams,
	NetworkTestnet: &chaincfg.TestNet3Params,
	NetworkSignet:  &chaincfg.SigNetParams,
	NetworkRegtest: &chaincfg.RegressionNetParams,
}

func (n Network) IsSupported() bool {
	_, ok := chainParams[n]
	return ok
}

// ChainParams returns nil for unsupported networks.
func (n Network) ChainParams() *chaincfg.Params {
	return chainParams[n]
}

// HasActivationHeights reports whether soft fork activation heights are known for the network.
// Other networks are verified with every soft fork active.
func (n Network) HasActivationHeights() bool {
	return n == NetworkMainnet
}

func (n Network) String() string {
	return string(n)
}
