package verifier

import (
	"context"
	"math"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/consensus-verifier/common/errs"
	"github.com/gaze-network/consensus-verifier/core/types"
	"github.com/gaze-network/consensus-verifier/modules/verifier/entity"
	"github.com/gaze-network/consensus-verifier/pkg/bitcoinconsensus"
	"github.com/gaze-network/consensus-verifier/pkg/logger"
	"github.com/gaze-network/consensus-verifier/pkg/logger/slogx"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

type VerifyTransactionOptions struct {
	// Flags overrides the flags derived from the transaction's block height.
	Flags *bitcoinconsensus.Flags
}

// VerifyTransaction fetches the transaction and the outputs it spends from the
// Bitcoin node, then verifies every input.
func (s *Service) VerifyTransaction(ctx context.Context, txHash chainhash.Hash, opts VerifyTransactionOptions) (*entity.TransactionResult, error) {
	if s.nodeDg == nil {
		return nil, errors.Wrap(errs.Unsupported, "bitcoin node is not configured")
	}
	ctx = logger.WithContext(ctx, slogx.Stringer("txHash", txHash))

	tx, err := s.nodeDg.GetTransaction(ctx, txHash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	result := &entity.TransactionResult{
		TxHash:      tx.TxHash,
		BlockHash:   tx.BlockHash,
		BlockHeight: tx.BlockHeight,
		Inputs:      make([]*entity.InputResult, len(tx.TxIn)),
		Valid:       true,
	}

	// coinbase inputs don't spend a previous output
	if tx.IsCoinbase() {
		result.Coinbase = true
		result.Inputs = []*entity.InputResult{}
		logger.DebugContext(ctx, "Skipped coinbase transaction")
		return result, nil
	}

	flags, err := s.resolveFlags(ctx, tx, opts)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	result.Flags = flags

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)
	for i, in := range tx.TxIn {
		group.Go(func() error {
			prevOut, err := s.nodeDg.GetPrevOutput(gctx, in.PreviousOutPoint())
			if err != nil {
				return errors.Wrapf(err, "failed to get previous output of input %d", i)
			}
			input, err := s.verifyInput(gctx, prevOut.PkScript, prevOut.Value, tx.Raw, uint32(i), flags)
			if err != nil {
				return errors.Wrapf(err, "failed to verify input %d", i)
			}
			input.PreviousOutPoint = in.PreviousOutPoint()
			result.Inputs[i] = input
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, errors.WithStack(err)
	}

	result.Valid = lo.EveryBy(result.Inputs, func(in *entity.InputResult) bool { return in.Valid })

	logger.InfoContext(ctx, "Verified transaction",
		slogx.Int64("blockHeight", result.BlockHeight),
		slogx.Stringer("flags", flags),
		slogx.Int("inputs", len(result.Inputs)),
		slogx.Int("invalidInputs", len(result.InvalidInputs())),
		slogx.Bool("valid", result.Valid),
	)

	if s.resultDg != nil {
		if err := s.resultDg.InsertResults(ctx, result); err != nil {
			logger.ErrorContext(ctx, "Failed to record verification result", err)
		}
	}

	return result, nil
}

// GetResults returns the recorded verification results of a transaction.
func (s *Service) GetResults(ctx context.Context, txHash chainhash.Hash) ([]*entity.VerificationRecord, error) {
	if s.resultDg == nil {
		return nil, errors.Wrap(errs.Unsupported, "verification result recorder is not configured")
	}
	records, err := s.resultDg.GetResultsByTxHash(ctx, txHash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get verification results")
	}
	return records, nil
}

// FlagsAt returns the consensus flags for a block at the given height.
func (s *Service) FlagsAt(height int64) bitcoinconsensus.Flags {
	if !s.network.HasActivationHeights() {
		return bitcoinconsensus.FlagsAll
	}
	if height < 0 {
		return bitcoinconsensus.FlagsNone
	}
	if height > math.MaxUint32 {
		height = math.MaxUint32
	}
	return bitcoinconsensus.HeightToFlags(uint32(height))
}

func (s *Service) resolveFlags(ctx context.Context, tx *types.Transaction, opts VerifyTransactionOptions) (bitcoinconsensus.Flags, error) {
	if opts.Flags != nil {
		return *opts.Flags, nil
	}
	if !s.network.HasActivationHeights() {
		return bitcoinconsensus.FlagsAll, nil
	}

	height := tx.BlockHeight
	if !tx.IsConfirmed() {
		// mempool transactions are checked against the rules of the next block
		tip, err := s.nodeDg.GetBlockCount(ctx)
		if err != nil {
			return 0, errors.Wrap(err, "failed to get block count")
		}
		height = tip + 1
	}
	return s.FlagsAt(height), nil
}
