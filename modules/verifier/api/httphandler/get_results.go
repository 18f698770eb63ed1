package httphandler

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/consensus-verifier/common"
	"github.com/gaze-network/consensus-verifier/common/errs"
	"github.com/gaze-network/consensus-verifier/modules/verifier/entity"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type getResultsRequest struct {
	Hash string `params:"hash"`
}

type verificationRecord struct {
	InputIndex  uint32      `json:"inputIndex"`
	BlockHeight int64       `json:"blockHeight"`
	Flags       flagsResult `json:"flags"`
	Valid       bool        `json:"valid"`
	ErrorCode   *string     `json:"errorCode,omitempty"`
	Error       *string     `json:"error,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

type getResultsResult struct {
	TxId    string               `json:"txId"`
	Records []verificationRecord `json:"records"`
}

type getResultsResponse = common.HttpResponse[getResultsResult]

func (h *HttpHandler) GetResults(ctx *fiber.Ctx) (err error) {
	var req getResultsRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	hash, err := chainhash.NewHashFromStr(req.Hash)
	if err != nil {
		return errs.NewPublicError("invalid transaction hash")
	}

	records, err := h.service.GetResults(ctx.UserContext(), *hash)
	if err != nil {
		return errors.Wrap(err, "error during GetResults")
	}
	if len(records) == 0 {
		return fiber.NewError(fiber.StatusNotFound, "verification results not found")
	}

	resp := getResultsResponse{
		Result: &getResultsResult{
			TxId: hash.String(),
			Records: lo.Map(records, func(item *entity.VerificationRecord, _ int) verificationRecord {
				record := verificationRecord{
					InputIndex:  item.InputIndex,
					BlockHeight: item.BlockHeight,
					Flags:       mapFlags(item.Flags),
					Valid:       item.Valid,
					CreatedAt:   item.CreatedAt,
				}
				if !item.Valid {
					code, reason := item.ErrorCode.String(), item.Reason
					record.ErrorCode, record.Error = &code, &reason
				}
				return record
			}),
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
