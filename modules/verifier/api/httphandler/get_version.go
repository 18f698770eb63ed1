package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/consensus-verifier/common"
	"github.com/gaze-network/consensus-verifier/core/constants"
	"github.com/gofiber/fiber/v2"
)

type getVersionResult struct {
	Version       string `json:"version"`
	Engine        string `json:"engine"`
	EngineVersion int    `json:"engineVersion"`
}

type getVersionResponse = common.HttpResponse[getVersionResult]

func (h *HttpHandler) GetVersion(ctx *fiber.Ctx) (err error) {
	verifier := h.service.Verifier()
	resp := getVersionResponse{
		Result: &getVersionResult{
			Version:       constants.Version,
			Engine:        verifier.Engine().Name(),
			EngineVersion: verifier.Version(),
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
