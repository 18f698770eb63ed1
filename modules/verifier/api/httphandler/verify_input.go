package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/consensus-verifier/common"
	"github.com/gaze-network/consensus-verifier/common/errs"
	"github.com/gaze-network/consensus-verifier/modules/verifier"
	"github.com/gofiber/fiber/v2"
)

type verifyInputRequest struct {
	SpentOutput string `json:"spentOutput"`
	Amount      uint64 `json:"amount"`
	Transaction string `json:"transaction"`
	InputIndex  uint32 `json:"inputIndex"`
	Flags       string `json:"flags"` // default: all
}

func (r verifyInputRequest) Validate() error {
	var errList []error
	if r.Transaction == "" {
		errList = append(errList, errors.New("'transaction' is required"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type verifyInputResult struct {
	inputResult
	Flags flagsResult `json:"flags"`
}

type verifyInputResponse = common.HttpResponse[verifyInputResult]

func (h *HttpHandler) VerifyInput(ctx *fiber.Ctx) (err error) {
	var req verifyInputRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	input, err := verifier.ParseVerifyInputRequest(req.SpentOutput, req.Amount, req.Transaction, req.InputIndex, req.Flags)
	if err != nil {
		return errs.WithPublicMessage(err, "invalid request")
	}

	result, err := h.service.VerifyInput(ctx.UserContext(), input)
	if err != nil {
		if errors.Is(err, errs.InvalidArgument) {
			return errs.WithPublicMessage(err, "invalid request")
		}
		return errors.Wrap(err, "error during VerifyInput")
	}

	resp := verifyInputResponse{
		Result: &verifyInputResult{
			inputResult: mapInputResult(result, h.service.Network(), false),
			Flags:       mapFlags(input.Flags),
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
