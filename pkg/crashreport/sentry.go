package crashreport

import (
	"context"

	"github.com/getsentry/sentry-go"
)

// SentryReporter sends reports to Sentry. Each report runs on a clone of the hub so
// request data attached to the scope does not leak between concurrent uploads.
type SentryReporter struct {
	hub *sentry.Hub
}

// NewSentryReporter uses hub, or the process-wide hub set up by sentry.Init when hub is nil.
func NewSentryReporter(hub *sentry.Hub) *SentryReporter {
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	return &SentryReporter{hub: hub}
}

func (r *SentryReporter) Report(ctx context.Context, msg string, err error) {
	hub := r.hub.Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", "upload")
		if req := RequestFrom(ctx); req != nil {
			scope.SetRequest(req)
		}
		if msg != "" {
			scope.SetContext("crash_report", sentry.Context{"message": msg})
		}
		hub.CaptureException(err)
	})
}
