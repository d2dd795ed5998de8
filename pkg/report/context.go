package report

import "context"

type reporterKey struct{}

// WithReporter attaches the given reporter to the context
func WithReporter(ctx context.Context, r *Reporter) context.Context {
	return context.WithValue(ctx, reporterKey{}, r)
}

// FromContext returns the reporter attached with WithReporter or a reporter that discards everything.
func FromContext(ctx context.Context) *Reporter {
	r := ctx.Value(reporterKey{})
	if r == nil {
		return Nop()
	}

	return r.(*Reporter)
}
