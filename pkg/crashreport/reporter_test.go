package crashreport

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/apex/log"
	"github.com/apex/log/handlers/memory"
	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogReporterIncludesRequest(t *testing.T) {
	h := memory.New()
	logger := &log.Logger{Handler: h, Level: log.DebugLevel}
	reporter := NewLogReporter(logger)

	req := httptest.NewRequest("POST", "/ode/upload/nope", nil)
	ctx := WithRequest(context.Background(), req)
	reporter.Report(ctx, "unknown upload kind", errors.New("boom"))

	require.Len(t, h.Entries, 1)
	entry := h.Entries[0]
	assert.Equal(t, log.ErrorLevel, entry.Level)
	assert.Equal(t, "unknown upload kind", entry.Message)
	assert.Equal(t, "POST", entry.Fields["method"])
	assert.Equal(t, "/ode/upload/nope", entry.Fields["path"])
	assert.Equal(t, "boom", entry.Fields["error"])
}

func TestLogReporterDefaultMessage(t *testing.T) {
	h := memory.New()
	reporter := NewLogReporter(&log.Logger{Handler: h, Level: log.InfoLevel})

	reporter.Report(context.Background(), "", errors.New("boom"))

	require.Len(t, h.Entries, 1)
	assert.Equal(t, "crash report", h.Entries[0].Message)
	assert.NotContains(t, h.Entries[0].Fields, "path")
}

type recordingReporter struct {
	msgs []string
}

func (r *recordingReporter) Report(_ context.Context, msg string, _ error) {
	r.msgs = append(r.msgs, msg)
}

func TestReportersFanOut(t *testing.T) {
	r1, r2 := &recordingReporter{}, &recordingReporter{}
	Reporters{r1, r2}.Report(context.Background(), "m", errors.New("e"))

	assert.Equal(t, []string{"m"}, r1.msgs)
	assert.Equal(t, []string{"m"}, r2.msgs)
}

func TestSentryReporterCapturesException(t *testing.T) {
	var (
		mu     sync.Mutex
		events []*sentry.Event
	)

	client, err := sentry.NewClient(sentry.ClientOptions{
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, event)
			return nil
		},
	})
	require.NoError(t, err)

	hub := sentry.NewHub(client, sentry.NewScope())
	reporter := NewSentryReporter(hub)

	req := httptest.NewRequest("POST", "/ode/upload/file/12/a.png", nil)
	reporter.Report(WithRequest(context.Background(), req), "io failure", errors.New("disk gone"))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 1)
	assert.Equal(t, "upload", events[0].Tags["component"])
	require.NotNil(t, events[0].Request)
	assert.Contains(t, events[0].Request.URL, "/ode/upload/file/12/a.png")
	require.NotEmpty(t, events[0].Exception)
	assert.Equal(t, "disk gone", events[0].Exception[0].Value)
}
