//go:build !gcloud

package logging

import (
	"context"
	"log/slog"
)

// Cloud Logging correlation fields only exist in gcloud builds.
func gcpTraceAttrs(context.Context, string) []slog.Attr {
	return nil
}
