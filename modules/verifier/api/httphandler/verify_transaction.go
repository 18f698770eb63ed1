package httphandler

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/consensus-verifier/common"
	"github.com/gaze-network/consensus-verifier/common/errs"
	"github.com/gaze-network/consensus-verifier/modules/verifier"
	"github.com/gaze-network/consensus-verifier/modules/verifier/entity"
	"github.com/gaze-network/consensus-verifier/pkg/bitcoinconsensus"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type verifyTransactionRequest struct {
	Hash  string `params:"hash"`
	Flags string `query:"flags"`
}

func (r verifyTransactionRequest) Validate() error {
	var errList []error
	if len(r.Hash) == 0 {
		errList = append(errList, errs.NewPublicError("hash is required"))
	}
	if len(r.Hash) > chainhash.MaxHashStringSize {
		errList = append(errList, errs.NewPublicError(fmt.Sprintf("hash length must be less than or equal to %d bytes", chainhash.MaxHashStringSize)))
	}
	if len(errList) == 0 {
		return nil
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type verifyTransactionResult struct {
	TxId        string        `json:"txId"`
	BlockHash   string        `json:"blockHash,omitempty"`
	BlockHeight int64         `json:"blockHeight"`
	Coinbase    bool          `json:"coinbase"`
	Flags       flagsResult   `json:"flags"`
	Valid       bool          `json:"valid"`
	Inputs      []inputResult `json:"inputs"`
}

type verifyTransactionResponse = common.HttpResponse[verifyTransactionResult]

func (h *HttpHandler) VerifyTransaction(ctx *fiber.Ctx) (err error) {
	var req verifyTransactionRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	hash, err := chainhash.NewHashFromStr(req.Hash)
	if err != nil {
		return errs.NewPublicError("invalid transaction hash")
	}

	var opts verifier.VerifyTransactionOptions
	if req.Flags != "" {
		flags, err := bitcoinconsensus.ParseFlags(req.Flags)
		if err != nil {
			return errs.WithPublicMessage(err, "invalid flags")
		}
		opts.Flags = &flags
	}

	result, err := h.service.VerifyTransaction(ctx.UserContext(), *hash, opts)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return fiber.NewError(fiber.StatusNotFound, "transaction not found")
		}
		return errors.Wrap(err, "error during VerifyTransaction")
	}

	var blockHash string
	if result.BlockHash != common.ZeroHash {
		blockHash = result.BlockHash.String()
	}
	resp := verifyTransactionResponse{
		Result: &verifyTransactionResult{
			TxId:        result.TxHash.String(),
			BlockHash:   blockHash,
			BlockHeight: result.BlockHeight,
			Coinbase:    result.Coinbase,
			Flags:       mapFlags(result.Flags),
			Valid:       result.Valid,
			Inputs: lo.Map(result.Inputs, func(item *entity.InputResult, _ int) inputResult {
				return mapInputResult(item, h.service.Network(), true)
			}),
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
