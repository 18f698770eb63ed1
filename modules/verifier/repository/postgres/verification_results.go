package postgres

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/consensus-verifier/modules/verifier/entity"
	"github.com/gaze-network/consensus-verifier/modules/verifier/repository/postgres/gen"
)

func (r *Repository) InsertResults(ctx context.Context, result *entity.TransactionResult) error {
	if len(result.Inputs) == 0 {
		return nil
	}

	params := make([]gen.CreateVerificationResultsParams, 0, len(result.Inputs))
	for _, input := range result.Inputs {
		params = append(params, mapInputResultToParams(result, input))
	}

	var execErrors []error
	r.queries.CreateVerificationResults(ctx, params).Exec(func(i int, err error) {
		if err != nil {
			execErrors = append(execErrors, errors.Wrapf(err, "failed to insert verification result of input %d", result.Inputs[i].Index))
		}
	})
	if len(execErrors) > 0 {
		return errors.Wrap(errors.Join(execErrors...), "error during exec")
	}
	return nil
}

func (r *Repository) GetResultsByTxHash(ctx context.Context, txHash chainhash.Hash) ([]*entity.VerificationRecord, error) {
	models, err := r.queries.GetVerificationResultsByTxHash(ctx, txHash.String())
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}

	records := make([]*entity.VerificationRecord, 0, len(models))
	for _, model := range models {
		record, err := mapVerificationResultModelToEntity(model)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse verification result model")
		}
		records = append(records, record)
	}
	return records, nil
}
