package logger

import (
	"context"
	"log/slog"
)

type (
	handleFunc func(context.Context, slog.Record) error
	middleware func(handleFunc) handleFunc
)

// handler runs records through middlewares before the wrapped handler.
type handler struct {
	slog.Handler
	middlewares []middleware
	handle      handleFunc
}

func newHandler(h slog.Handler, middlewares ...middleware) *handler {
	handle := h.Handle
	for i := len(middlewares) - 1; i >= 0; i-- {
		handle = middlewares[i](handle)
	}
	return &handler{Handler: h, middlewares: middlewares, handle: handle}
}

func (h *handler) Handle(ctx context.Context, rec slog.Record) error {
	return h.handle(ctx, rec)
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return newHandler(h.Handler.WithAttrs(attrs), h.middlewares...)
}

func (h *handler) WithGroup(name string) slog.Handler {
	return newHandler(h.Handler.WithGroup(name), h.middlewares...)
}
