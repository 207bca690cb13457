package middleware

import (
	"context"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/borrowchecker/internal/metrics"
)

// MetricsInterceptor returns a Connect interceptor that counts calls and records their
// latency by procedure and result code ("ok" on success).
func MetricsInterceptor(m *metrics.Metrics) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
			}
			m.ObserveRPC(req.Spec().Procedure, code, time.Since(start))
			return resp, err
		}
	}
}
