package errorhandler

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/consensus-verifier/common"
	"github.com/gaze-network/consensus-verifier/common/errs"
	"github.com/gaze-network/consensus-verifier/pkg/logger"
	"github.com/gaze-network/consensus-verifier/pkg/logger/slogx"
	"github.com/gofiber/fiber/v2"
)

// kindStatuses maps error kinds to HTTP statuses. Messages of server side kinds aren't exposed.
var kindStatuses = []struct {
	kind   errs.ErrorKind
	status int
}{
	{errs.NotFound, http.StatusNotFound},
	{errs.InvalidArgument, http.StatusBadRequest},
	{errs.ArgumentRequired, http.StatusBadRequest},
	{errs.Unsupported, http.StatusNotImplemented},
	{errs.Unavailable, http.StatusServiceUnavailable},
}

func NewHTTPErrorHandler() func(ctx *fiber.Ctx, err error) error {
	return func(ctx *fiber.Ctx, err error) error {
		if e := new(errs.PublicError); errors.As(err, &e) {
			return sendError(ctx, http.StatusBadRequest, e.Message())
		}
		if e := new(fiber.Error); errors.As(err, &e) {
			return errors.WithStack(ctx.Status(e.Code).SendString(e.Error()))
		}

		status, message := http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
		for _, ks := range kindStatuses {
			if errors.Is(err, ks.kind) {
				status, message = ks.status, err.Error()
				break
			}
		}
		if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
			logger.ErrorContext(ctx.UserContext(), "Something went wrong, unhandled api error", err,
				slogx.String("event", "api_unhandled_error"),
				slogx.Int("status", status),
			)
			message = http.StatusText(status)
		}
		return sendError(ctx, status, message)
	}
}

func sendError(ctx *fiber.Ctx, status int, message string) error {
	return errors.WithStack(ctx.Status(status).JSON(common.HttpResponse[any]{Error: &message}))
}
