package observes

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/ncobase/issues/ctxutil"
)

type SentryOptions struct {
	Dsn         string
	Name        string
	Release     string
	Environment string
}

// NewSentry initializes sentry and returns a flush function. A nil option
// or empty DSN leaves reporting off.
func NewSentry(opt *SentryOptions) (func(), error) {
	if opt == nil || opt.Dsn == "" {
		return func() {}, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              opt.Dsn,
		AttachStacktrace: true,
		ServerName:       opt.Name,
		Release:          opt.Release,
		Environment:      opt.Environment,
	})
	if err != nil {
		return func() {}, err
	}
	return func() { sentry.Flush(2 * time.Second) }, nil
}

// CaptureError reports err with the request trace id; a no-op when sentry
// is not initialized.
func CaptureError(ctx context.Context, err error) {
	if err == nil || sentry.CurrentHub().Client() == nil {
		return
	}
	hub := sentry.CurrentHub().Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		if traceID := ctxutil.GetTraceID(ctx); traceID != "" {
			scope.SetTag("trace_id", traceID)
		}
		hub.CaptureException(err)
	})
}
