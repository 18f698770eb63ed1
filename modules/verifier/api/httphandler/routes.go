package httphandler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) Mount(router fiber.Router) error {
	r := router.Group("/v1")

	r.Get("/version", h.GetVersion)
	r.Get("/flags/:height", h.GetFlags)
	r.Post("/verify", h.VerifyInput)
	if h.service.HasBitcoinNode() {
		r.Get("/transactions/:hash/verify", h.VerifyTransaction)
	}
	if h.service.HasResultRecorder() {
		r.Get("/transactions/:hash/results", h.GetResults)
	}
	return nil
}
