package logger

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	LevelPanic = slog.Level(12)
	LevelFatal = slog.Level(16)
)

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, errors.Errorf("unknown log level %q", s)
}

// replaceLevelAttr names the panic and fatal levels that slog prints as ERROR+n.
func replaceLevelAttr(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) > 0 || attr.Key != slog.LevelKey {
		return attr
	}
	level, ok := attr.Value.Any().(slog.Level)
	if !ok || level < LevelPanic {
		return attr
	}

	name, base := "PANIC", LevelPanic
	if level >= LevelFatal {
		name, base = "FATAL", LevelFatal
	}
	if level != base {
		name = fmt.Sprintf("%s%+d", name, level-base)
	}
	return slog.String(attr.Key, name)
}
