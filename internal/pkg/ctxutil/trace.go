package ctxutil

import "context"

type traceKey struct{}

type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	td, _ := ctx.Value(traceKey{}).(*TraceData)
	return td
}
