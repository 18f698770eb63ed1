package verifier

import (
	"context"
	"encoding/hex"
	"math"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/consensus-verifier/common/errs"
	"github.com/gaze-network/consensus-verifier/modules/verifier/entity"
	"github.com/gaze-network/consensus-verifier/pkg/bitcoinconsensus"
	"github.com/gaze-network/consensus-verifier/pkg/logger"
	"github.com/gaze-network/consensus-verifier/pkg/logger/slogx"
)

// VerifyInputRequest is a caller-supplied spend.
type VerifyInputRequest struct {
	SpentOutput []byte // scriptPubKey of the spent output
	Amount      uint64 // in satoshi
	Transaction []byte
	InputIndex  uint32
	Flags       bitcoinconsensus.Flags
}

// ParseVerifyInputRequest decodes hex encoded buffers and a flags expression accepted by bitcoinconsensus.ParseFlags.
func ParseVerifyInputRequest(spentOutputHex string, amount uint64, txHex string, inputIndex uint32, flags string) (VerifyInputRequest, error) {
	spentOutput, err := decodeHex(spentOutputHex)
	if err != nil {
		return VerifyInputRequest{}, errors.Wrap(err, "invalid spent output")
	}
	tx, err := decodeHex(txHex)
	if err != nil {
		return VerifyInputRequest{}, errors.Wrap(err, "invalid transaction")
	}
	if len(tx) == 0 {
		return VerifyInputRequest{}, errors.Wrap(errs.ArgumentRequired, "transaction is required")
	}
	parsedFlags, err := bitcoinconsensus.ParseFlags(flags)
	if err != nil {
		return VerifyInputRequest{}, errors.WithStack(err)
	}
	return VerifyInputRequest{
		SpentOutput: spentOutput,
		Amount:      amount,
		Transaction: tx,
		InputIndex:  inputIndex,
		Flags:       parsedFlags,
	}, nil
}

// VerifyInput verifies a single input of a caller-supplied spend.
// Rejections are reported in the result, the returned error is reserved for
// failures of the verification itself.
func (s *Service) VerifyInput(ctx context.Context, req VerifyInputRequest) (*entity.InputResult, error) {
	if req.Amount > math.MaxInt64 {
		return nil, errors.Wrap(errs.InvalidArgument, "amount overflows int64")
	}
	result, err := s.verifyInput(ctx, req.SpentOutput, int64(req.Amount), req.Transaction, req.InputIndex, req.Flags)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return result, nil
}

func (s *Service) verifyInput(ctx context.Context, pkScript []byte, amount int64, tx []byte, index uint32, flags bitcoinconsensus.Flags) (*entity.InputResult, error) {
	result := &entity.InputResult{
		Index:    index,
		PkScript: pkScript,
		Amount:   amount,
		Valid:    true,
	}

	err := s.verifier.VerifyWithFlags(pkScript, uint64(amount), tx, uint(index), flags)
	if err == nil {
		return result, nil
	}

	code, ok := bitcoinconsensus.CodeOf(err)
	if !ok {
		return nil, errors.Wrap(err, "unexpected verification error")
	}
	result.Valid = false
	result.ErrorCode = code
	result.Reason = err.Error()

	logger.DebugContext(ctx, "Input rejected",
		slogx.Hex("pkScript", pkScript),
		slogx.Int64("index", int64(index)),
		slogx.Stringer("flags", flags),
		slogx.Stringer("code", code),
	)
	return result, nil
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(errs.InvalidArgument, err.Error())
	}
	return b, nil
}
