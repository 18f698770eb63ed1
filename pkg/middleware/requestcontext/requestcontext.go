// Package requestcontext populates the request's user context with per-request
// values (request id, client IP) before the handlers run.
package requestcontext

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/consensus-verifier/common"
	"github.com/gaze-network/consensus-verifier/pkg/logger"
	"github.com/gaze-network/consensus-verifier/pkg/logger/slogx"
	"github.com/gofiber/fiber/v2"
)

type Option func(ctx context.Context, c *fiber.Ctx) (context.Context, error)

// rejectError aborts the request with the given status.
type rejectError struct {
	status  int
	message string
}

func (r rejectError) Error() string {
	return r.message
}

func New(opts ...Option) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var err error
		ctx := c.UserContext()
		for i, opt := range opts {
			ctx, err = opt(ctx, c)
			if err == nil {
				continue
			}

			if rErr := (rejectError{}); errors.As(err, &rErr) {
				return errors.WithStack(c.Status(rErr.status).JSON(common.HttpResponse[any]{Error: &rErr.message}))
			}

			logger.ErrorContext(c.UserContext(), "Failed to extract request context", err,
				slogx.String("event", "requestcontext/error"),
				slogx.Int("optionIndex", i),
			)
			message := "internal server error"
			return errors.WithStack(c.Status(http.StatusInternalServerError).JSON(common.HttpResponse[any]{Error: &message}))
		}
		c.SetUserContext(ctx)
		return c.Next()
	}
}
