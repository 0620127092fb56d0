package logging

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

type Environment string

const (
	EnvDev     Environment = "dev"
	EnvStaging Environment = "staging"
	EnvProd    Environment = "prod"
)

// Module names the component a log line comes from.
type Module string

type ServiceInfo struct {
	Name     string
	Version  string
	Revision string
}

type Config struct {
	ServiceInfo   ServiceInfo
	Environment   Environment
	Level         slog.Level
	DefaultModule Module
	// GCPProjectID enables Cloud Logging trace correlation fields when set.
	GCPProjectID string
}

// NewLogger builds the process logger. Development uses the text handler; every other
// environment writes JSON.
func NewLogger(w io.Writer, cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var base slog.Handler
	if cfg.Environment == EnvDev {
		base = slog.NewTextHandler(w, opts)
	} else {
		base = slog.NewJSONHandler(w, opts)
	}

	h := &contextHandler{
		Handler:      base,
		gcpProjectID: cfg.GCPProjectID,
	}

	attrs := []any{
		slog.String("service", cfg.ServiceInfo.Name),
		slog.String("version", cfg.ServiceInfo.Version),
		slog.String("env", string(cfg.Environment)),
	}
	if cfg.ServiceInfo.Revision != "" {
		attrs = append(attrs, slog.String("revision", cfg.ServiceInfo.Revision))
	}
	if cfg.DefaultModule != "" {
		attrs = append(attrs, slog.String("module", string(cfg.DefaultModule)))
	}

	return slog.New(h).With(attrs...)
}

// contextHandler adds the request ID and trace identifiers carried by ctx.
type contextHandler struct {
	slog.Handler
	gcpProjectID string
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if requestID := RequestIDFromContext(ctx); requestID != "" {
		r.AddAttrs(slog.String("request_id", requestID))
	}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
		r.AddAttrs(gcpTraceAttrs(ctx, h.gcpProjectID)...)
	}

	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs), gcpProjectID: h.gcpProjectID}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name), gcpProjectID: h.gcpProjectID}
}
