package mid

import (
	"context"
	"net/http"

	"github.com/ardanlabs/corechain/business/sys/metrics"
	"github.com/ardanlabs/corechain/foundation/web"
)

// Metrics updates program counters using the expvar package.
func Metrics() web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			ctx = metrics.Set(ctx)

			err := handler(ctx, w, r)

			metrics.AddRequests(ctx)
			metrics.AddGoroutines(ctx)
			if err != nil {
				metrics.AddErrors(ctx)
			}

			return err
		}

		return h
	}

	return m
}
