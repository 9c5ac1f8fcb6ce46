// Package web wraps httptreemux with the plumbing every handler needs:
// request-scoped values, a middleware chain, JSON responses, and clean
// shutdown signaling.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/dimfeld/httptreemux/v5"
	"github.com/google/uuid"
)

// ctxKey represents the type of value for the context key.
type ctxKey int

// KeyValues is the key used to store request-scoped values in a context.
const KeyValues ctxKey = 1

// Values carries request-scoped state through a handler's middleware chain.
type Values struct {
	TraceID    string
	Now        time.Time
	StatusCode int
}

// GetValues returns the Values stashed in ctx by the App's own wrapper, or
// an error if none is present, which should never happen for a request
// that came through App.Handle.
func GetValues(ctx context.Context) (*Values, error) {
	v, ok := ctx.Value(KeyValues).(*Values)
	if !ok {
		return nil, NewShutdownError("web value missing from context")
	}
	return v, nil
}

// GetTraceID returns the trace id from ctx, or "00000000..." if none is
// present.
func GetTraceID(ctx context.Context) string {
	v, ok := ctx.Value(KeyValues).(*Values)
	if !ok {
		return "00000000-0000-0000-0000-000000000000"
	}
	return v.TraceID
}

// setStatusCode records the status code that was written for a request, so
// logging middleware can report it after the handler has already written
// the response.
func setStatusCode(ctx context.Context, statusCode int) {
	v, ok := ctx.Value(KeyValues).(*Values)
	if !ok {
		return
	}
	v.StatusCode = statusCode
}

// =============================================================================

// Handler is the signature every application handler and middleware must
// implement.
type Handler func(ctx context.Context, w http.ResponseWriter, r *http.Request) error

// Middleware wraps a Handler with cross-cutting behavior and returns a new
// Handler.
type Middleware func(Handler) Handler

// wrapMiddleware wraps a handler with the given middleware, applied in the
// order given so the first middleware in the slice runs first.
func wrapMiddleware(mw []Middleware, handler Handler) Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		if mw[i] != nil {
			handler = mw[i](handler)
		}
	}
	return handler
}

// =============================================================================

// App is the entrypoint into the application and implements http.Handler.
type App struct {
	*httptreemux.ContextMux
	shutdown chan os.Signal
	mw       []Middleware
}

// NewApp constructs an App. Sending an os.Signal on shutdown from a
// handler or middleware asks the process to begin a graceful shutdown.
func NewApp(shutdown chan os.Signal, mw ...Middleware) *App {
	return &App{
		ContextMux: httptreemux.NewContextMux(),
		shutdown:   shutdown,
		mw:         mw,
	}
}

// SignalShutdown asks the process running this App to shut down.
func (a *App) SignalShutdown() {
	a.shutdown <- syscall.SIGTERM
}

// Handle registers a handler for the given method, version, and path,
// wrapped with the App's own middleware plus any route-specific middleware.
func (a *App) Handle(method string, version string, path string, handler Handler, mw ...Middleware) {
	handler = wrapMiddleware(mw, handler)
	handler = wrapMiddleware(a.mw, handler)

	h := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		v := Values{
			TraceID: uuid.NewString(),
			Now:     time.Now(),
		}
		ctx = context.WithValue(ctx, KeyValues, &v)

		if err := handler(ctx, w, r); err != nil {
			if IsShutdown(err) {
				a.SignalShutdown()
			}
		}
	}

	finalPath := path
	if version != "" {
		finalPath = "/" + version + path
	}

	a.ContextMux.Handle(method, finalPath, h)
}

// Param returns the web call parameters from the request.
func Param(r *http.Request, key string) string {
	m := httptreemux.ContextParams(r.Context())
	return m[key]
}

// =============================================================================

// Respond marshals data as JSON and writes it to w with the given status
// code. Passing a nil data with StatusNoContent writes no body.
func Respond(ctx context.Context, w http.ResponseWriter, data any, statusCode int) error {
	setStatusCode(ctx, statusCode)

	if statusCode == http.StatusNoContent {
		w.WriteHeader(statusCode)
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if _, err := w.Write(jsonData); err != nil {
		return err
	}

	return nil
}
