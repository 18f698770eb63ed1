package postgres

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/consensus-verifier/modules/verifier/entity"
	"github.com/gaze-network/consensus-verifier/modules/verifier/repository/postgres/gen"
	"github.com/gaze-network/consensus-verifier/pkg/bitcoinconsensus"
)

func mapInputResultToParams(result *entity.TransactionResult, input *entity.InputResult) gen.CreateVerificationResultsParams {
	return gen.CreateVerificationResultsParams{
		TxHash:      result.TxHash.String(),
		InputIndex:  int32(input.Index),
		BlockHeight: result.BlockHeight,
		Flags:       int64(result.Flags),
		Valid:       input.Valid,
		ErrorCode:   int16(input.ErrorCode),
		Reason:      input.Reason,
	}
}

func mapVerificationResultModelToEntity(src gen.VerificationResult) (*entity.VerificationRecord, error) {
	txHash, err := chainhash.NewHashFromStr(src.TxHash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse tx hash")
	}
	return &entity.VerificationRecord{
		TxHash:      *txHash,
		InputIndex:  uint32(src.InputIndex),
		BlockHeight: src.BlockHeight,
		Flags:       bitcoinconsensus.Flags(src.Flags),
		Valid:       src.Valid,
		ErrorCode:   bitcoinconsensus.ErrorCode(src.ErrorCode),
		Reason:      src.Reason,
		CreatedAt:   src.CreatedAt.Time,
	}, nil
}
