package automaxprocs

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/consensus-verifier/pkg/logger"
	"github.com/gaze-network/consensus-verifier/pkg/logger/slogx"
	"go.uber.org/automaxprocs/maxprocs"
)

var (
	// undo reverts the last Init, nil if Init wasn't called.
	undo func()

	initialMaxProcs = Current()
)

// Init sets GOMAXPROCS to match the Linux container CPU quota and returns the resulting value.
// It's a no-op outside Linux containers and when the GOMAXPROCS environment variable is set.
func Init(ctx context.Context) (int, error) {
	ctx = logger.WithContext(ctx,
		slogx.String("package", "automaxprocs"),
		slogx.String("event", "set_gomaxprocs"),
		slogx.Int("prevMaxProcs", initialMaxProcs),
	)

	printf := func(format string, v ...any) {
		attrs := make([]slog.Attr, 0, 1)

		// maxprocs passes the new value except when undoing
		if val, ok := utils.Optional(v); ok {
			if n, ok := val.(int); ok {
				attrs = append(attrs, slogx.Int("maxProcs", n))
			}
		}
		logger.LogAttrs(ctx, slog.LevelInfo, fmt.Sprintf(format, v...), attrs...)
	}

	revert, err := maxprocs.Set(maxprocs.Logger(printf), maxprocs.Min(1))
	if err != nil {
		return Current(), errors.Wrap(err, "failed to set GOMAXPROCS")
	}
	undo = revert
	return Current(), nil
}

// Undo restores the GOMAXPROCS value from before Init.
func Undo() int {
	if undo != nil {
		undo()
		undo = nil
		return Current()
	}
	runtime.GOMAXPROCS(initialMaxProcs)
	return initialMaxProcs
}

// Current returns the current value of GOMAXPROCS.
func Current() int {
	return runtime.GOMAXPROCS(0)
}
