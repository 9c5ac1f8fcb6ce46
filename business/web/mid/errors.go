package mid

import (
	"context"
	"net/http"

	"github.com/ardanlabs/corechain/business/sys/metrics"
	"github.com/ardanlabs/corechain/business/web/errs"
	"github.com/ardanlabs/corechain/foundation/web"
	"go.uber.org/zap"
)

// Errors handles errors coming out of the call chain. It detects normal
// application errors which are used to respond to the client in a
// uniform way. Every error is logged with the request's trace id.
func Errors(log *zap.SugaredLogger) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if err := handler(ctx, w, r); err != nil {
				v, verr := web.GetValues(ctx)
				if verr != nil {
					return web.NewShutdownError("web value missing from context")
				}

				log.Errorw("ERROR", "traceid", v.TraceID, "message", err)

				if web.IsDecodeError(err) {
					resp := errs.Response{
						Error: "data validation error",
						Fields: map[string]string{
							"details": web.GetDecodeErrorFields(err),
						},
					}
					if err := web.Respond(ctx, w, resp, http.StatusBadRequest); err != nil {
						return err
					}
					metrics.AddErrors(ctx)
					return nil
				}

				if trusted := errs.GetTrusted(err); trusted != nil {
					resp := errs.Response{Error: trusted.Err.Error()}
					if err := web.Respond(ctx, w, resp, trusted.Status); err != nil {
						return err
					}
					metrics.AddErrors(ctx)

					if web.IsShutdown(trusted.Err) {
						return trusted.Err
					}
					return nil
				}

				resp := errs.Response{Error: http.StatusText(http.StatusInternalServerError)}
				if err := web.Respond(ctx, w, resp, http.StatusInternalServerError); err != nil {
					return err
				}
				metrics.AddErrors(ctx)

				if web.IsShutdown(err) {
					return err
				}
			}

			return nil
		}

		return h
	}

	return m
}
