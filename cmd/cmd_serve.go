package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/consensus-verifier/common/errs"
	"github.com/gaze-network/consensus-verifier/core/constants"
	"github.com/gaze-network/consensus-verifier/internal/config"
	"github.com/gaze-network/consensus-verifier/modules/verifier"
	"github.com/gaze-network/consensus-verifier/modules/verifier/api/httphandler"
	"github.com/gaze-network/consensus-verifier/pkg/automaxprocs"
	"github.com/gaze-network/consensus-verifier/pkg/errorhandler"
	"github.com/gaze-network/consensus-verifier/pkg/logger"
	"github.com/gaze-network/consensus-verifier/pkg/logger/slogx"
	"github.com/gaze-network/consensus-verifier/pkg/middleware/requestcontext"
	"github.com/gaze-network/consensus-verifier/pkg/middleware/requestlogger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

func NewServeCommand() *cobra.Command {
	// Create command
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the verification HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := automaxprocs.Init(cmd.Context()); err != nil {
				logger.ErrorContext(cmd.Context(), "Failed to set GOMAXPROCS", err)
			}
			return serveHandler(cmd, args)
		},
	}

	// Add local flags
	flags := serveCmd.Flags()
	flags.Int("port", 8080, "HTTP server port")
	flags.String("engine", "", "verification engine, E.g. `native` or `txscript`")

	// Bind flags to configuration
	config.BindPFlag("http_server.port", flags.Lookup("port"))
	config.BindPFlag("verifier.engine", flags.Lookup("engine"))

	return serveCmd
}

const (
	shutdownTimeout = 60 * time.Second
)

func serveHandler(cmd *cobra.Command, _ []string) error {
	conf := config.Load()

	// Validate inputs and configurations
	{
		if !conf.Network.IsSupported() {
			return errors.Wrapf(errs.Unsupported, "%q network is not supported", conf.Network.String())
		}
	}

	// Initialize application process context
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Add logger context
	ctx = logger.WithContext(ctx, slogx.Stringer("network", conf.Network))

	injector := newInjector(ctx, conf)

	// Initialize HTTP server
	do.Provide(injector, func(i do.Injector) (*fiber.App, error) {
		withClientIP, err := requestcontext.WithClientIP(conf.HTTPServer.RequestIP)
		if err != nil {
			return nil, errors.Wrap(err, "invalid http_server.request_ip configuration")
		}

		app := fiber.New(fiber.Config{
			AppName:      constants.AppName,
			ErrorHandler: errorhandler.NewHTTPErrorHandler(),
		})
		app.
			Use(favicon.New()).
			Use(cors.New()).
			Use(requestid.New()).
			Use(requestcontext.New(
				requestcontext.WithRequestId(),
				withClientIP,
			)).
			Use(requestlogger.New(conf.HTTPServer.Logger)).
			Use(fiberrecover.New(fiberrecover.Config{
				EnableStackTrace: true,
				StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
					buf := make([]byte, 1024) // bufLen = 1024
					buf = buf[:runtime.Stack(buf, false)]
					logger.ErrorContext(c.UserContext(), "Something went wrong, panic in http handler", errors.Errorf("panic: %v", e), slog.String("stacktrace", string(buf)))
				},
			})).
			Use(compress.New(compress.Config{
				Level: compress.LevelDefault,
			}))

		// Health check
		app.Get("/", func(c *fiber.Ctx) error {
			return errors.WithStack(c.SendStatus(http.StatusOK))
		})

		service, err := do.Invoke[*verifier.Service](i)
		if err != nil {
			return nil, errors.Wrap(err, "can't init verifier service")
		}
		if err := httphandler.New(service).Mount(app); err != nil {
			return nil, errors.Wrap(err, "can't mount verifier API")
		}

		return app, nil
	})

	// Run API server
	httpServer, err := do.Invoke[*fiber.App](injector)
	if err != nil {
		return errors.WithStack(err)
	}
	go func() {
		// stop main process if API stopped
		defer stop()

		logger.InfoContext(ctx, "Started HTTP server", slog.Int("port", conf.HTTPServer.Port))
		if err := httpServer.Listen(fmt.Sprintf(":%d", conf.HTTPServer.Port)); err != nil {
			logger.PanicContext(ctx, "Something went wrong, error during running HTTP server", slogx.Error(err))
		}
	}()

	logger.InfoContext(ctx, "Consensus verifier started")

	// Wait for interrupt signal to gracefully stop the server
	<-ctx.Done()

	// Force shutdown if timeout exceeded or got signal again
	go func() {
		defer os.Exit(1)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		select {
		case <-ctx.Done():
			logger.FatalContext(ctx, "Received exit signal again. Force shutdown...")
		case <-time.After(shutdownTimeout + 15*time.Second):
			logger.FatalContext(ctx, "Shutdown timeout exceeded. Force shutdown...")
		}
	}()

	if err := injector.Shutdown(); err != nil {
		logger.PanicContext(ctx, "Failed while gracefully shutting down", slogx.Error(err))
	}

	return nil
}
