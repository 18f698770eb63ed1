package requestlogger

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/consensus-verifier/pkg/logger"
	"github.com/gaze-network/consensus-verifier/pkg/logger/slogx"
	"github.com/gaze-network/consensus-verifier/pkg/middleware/requestcontext"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type Config struct {
	// DisableInfo skips successful requests, failed requests are always logged.
	DisableInfo bool `mapstructure:"disable_info"`

	// WithRequestHeader logs request headers except HiddenRequestHeaders.
	WithRequestHeader    bool     `mapstructure:"request_header"`
	HiddenRequestHeaders []string `mapstructure:"hidden_request_headers"`

	// SkipPaths are never logged, E.g. health checks.
	SkipPaths []string `mapstructure:"skip_paths"`
}

// New logs every completed request with its latency and outcome.
func New(config Config) fiber.Handler {
	hidden := lo.SliceToMap(config.HiddenRequestHeaders, func(h string) (string, struct{}) {
		return strings.ToLower(strings.TrimSpace(h)), struct{}{}
	})
	skip := lo.SliceToMap(config.SkipPaths, func(p string) (string, struct{}) {
		return p, struct{}{}
	})

	return func(c *fiber.Ctx) error {
		if _, ok := skip[c.Path()]; ok {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()
		latency := time.Since(start)
		status := c.Response().StatusCode()

		level := slog.LevelInfo
		if err != nil || status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		if config.DisableInfo && level == slog.LevelInfo {
			return errors.WithStack(err)
		}

		request := []slog.Attr{
			slogx.String("method", c.Method()),
			slogx.String("path", c.Path()),
			slogx.String("route", c.Route().Path),
			slogx.String("ip", requestcontext.GetClientIP(c.UserContext())),
			slogx.String("remoteIP", c.Context().RemoteIP().String()),
			slogx.String("userAgent", string(c.Context().UserAgent())),
			slogx.Any("params", c.AllParams()),
			slogx.Any("query", c.Queries()),
			slogx.Int("length", len(c.Body())),
		}
		if config.WithRequestHeader {
			headers := make([]any, 0, len(c.GetReqHeaders()))
			for k, v := range c.GetReqHeaders() {
				if _, found := hidden[strings.ToLower(k)]; !found {
					headers = append(headers, slog.Any(k, v))
				}
			}
			request = append(request, slogx.Group("header", headers...))
		}

		attrs := []slog.Attr{
			slogx.String("event", "api_request"),
			slogx.Int64("latency", latency.Milliseconds()),
			slogx.Stringer("latencyHuman", latency),
			slog.Attr{Key: "request", Value: slog.GroupValue(request...)},
			slog.Attr{Key: "response", Value: slog.GroupValue(
				slogx.Int("status", status),
				slogx.Int("length", len(c.Response().Body())),
			)},
		}
		if level == slog.LevelError {
			logErr := err
			if logErr == nil {
				logErr = fiber.NewError(status)
			}
			attrs = append(attrs, slogx.Error(logErr))
		}

		logger.LogAttrs(c.UserContext(), level, "Request Completed", attrs...)
		return errors.WithStack(err)
	}
}
