package verifier

import (
	"github.com/gaze-network/consensus-verifier/common"
	"github.com/gaze-network/consensus-verifier/modules/verifier/datagateway"
	"github.com/gaze-network/consensus-verifier/pkg/automaxprocs"
	"github.com/gaze-network/consensus-verifier/pkg/bitcoinconsensus"
)

const Version = "v0.1.0"

// Service verifies transaction inputs with a consensus verification engine.
type Service struct {
	verifier    *bitcoinconsensus.Verifier
	network     common.Network
	concurrency int

	// optional
	nodeDg   datagateway.BitcoinNodeDataGateway
	resultDg datagateway.VerificationResultDataGateway
}

type Option func(*Service)

// WithNetwork sets the network of the verified transactions. Activation
// heights are only known for mainnet, other networks verify with every flag.
func WithNetwork(network common.Network) Option {
	return func(s *Service) {
		s.network = network
	}
}

// WithConcurrency limits the number of inputs verified in parallel, defaults to GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithBitcoinNode enables verification of transactions fetched from a Bitcoin node.
func WithBitcoinNode(dg datagateway.BitcoinNodeDataGateway) Option {
	return func(s *Service) {
		s.nodeDg = dg
	}
}

// WithResultRecorder persists the outcome of every verified transaction.
func WithResultRecorder(dg datagateway.VerificationResultDataGateway) Option {
	return func(s *Service) {
		s.resultDg = dg
	}
}

// New creates a verification service. A nil verifier uses the default engine.
func New(verifier *bitcoinconsensus.Verifier, opts ...Option) *Service {
	if verifier == nil {
		verifier = bitcoinconsensus.New(nil)
	}
	s := &Service{
		verifier:    verifier,
		network:     common.NetworkMainnet,
		concurrency: automaxprocs.Current(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Verifier() *bitcoinconsensus.Verifier {
	return s.verifier
}

func (s *Service) Network() common.Network {
	return s.network
}

// HasBitcoinNode reports whether transactions can be fetched by hash.
func (s *Service) HasBitcoinNode() bool {
	return s.nodeDg != nil
}

// HasResultRecorder reports whether verification results are persisted.
func (s *Service) HasResultRecorder() bool {
	return s.resultDg != nil
}
