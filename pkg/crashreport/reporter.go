// Package crashreport provides the collaborator the upload core uses to record faults
// worth alerting on. Reporting never changes control flow; callers still build and
// return their own response after reporting.
package crashreport

import (
	"context"
	"net/http"

	"github.com/apex/log"
)

type Reporter interface {
	// Report records err. msg is optional extra context and may be empty.
	Report(ctx context.Context, msg string, err error)
}

type requestKey struct{}

// WithRequest attaches the inbound request so reporters can include its method, path
// and headers.
func WithRequest(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, requestKey{}, r)
}

func RequestFrom(ctx context.Context) *http.Request {
	r, _ := ctx.Value(requestKey{}).(*http.Request)
	return r
}

// LogReporter writes reports to an apex/log logger.
type LogReporter struct {
	logger log.Interface
}

func NewLogReporter(logger log.Interface) *LogReporter {
	if logger == nil {
		logger = log.Log
	}
	return &LogReporter{logger: logger}
}

func (r *LogReporter) Report(ctx context.Context, msg string, err error) {
	fields := log.Fields{}
	if req := RequestFrom(ctx); req != nil {
		fields["method"] = req.Method
		fields["path"] = req.URL.Path
	}

	if msg == "" {
		msg = "crash report"
	}

	r.logger.WithFields(fields).WithError(err).Error(msg)
}

// Reporters fans a report out to every reporter in the list.
type Reporters []Reporter

func (rs Reporters) Report(ctx context.Context, msg string, err error) {
	for _, r := range rs {
		r.Report(ctx, msg, err)
	}
}
