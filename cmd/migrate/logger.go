package migrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/gaze-network/consensus-verifier/pkg/logger"
	"github.com/golang-migrate/migrate/v4"
)

var _ migrate.Logger = (*migrateLogger)(nil)

// migrateLogger forwards golang-migrate progress to the application logger.
type migrateLogger struct {
	ctx     context.Context
	verbose bool
}

func (l *migrateLogger) Printf(format string, v ...any) {
	logger.InfoContext(l.ctx, strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *migrateLogger) Verbose() bool {
	return l.verbose
}
