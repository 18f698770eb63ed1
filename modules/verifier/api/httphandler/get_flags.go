package httphandler

import (
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/consensus-verifier/common"
	"github.com/gaze-network/consensus-verifier/common/errs"
	"github.com/gofiber/fiber/v2"
)

type getFlagsRequest struct {
	Height string `params:"height"`
}

func (r getFlagsRequest) Validate() (int64, error) {
	if r.Height == "" {
		return 0, errs.NewPublicError("height is required")
	}
	height, err := strconv.ParseInt(r.Height, 10, 64)
	if err != nil || height < 0 {
		return 0, errs.NewPublicError("height must be a non-negative integer")
	}
	return height, nil
}

type getFlagsResult struct {
	Height int64 `json:"height"`
	flagsResult
}

type getFlagsResponse = common.HttpResponse[getFlagsResult]

func (h *HttpHandler) GetFlags(ctx *fiber.Ctx) (err error) {
	var req getFlagsRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	height, err := req.Validate()
	if err != nil {
		return errors.WithStack(err)
	}

	resp := getFlagsResponse{
		Result: &getFlagsResult{
			Height:      height,
			flagsResult: mapFlags(h.service.FlagsAt(height)),
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
