package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"onepager/internal/httputil"
)

// trackingWriter remembers whether the handler already sent headers.
type trackingWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *trackingWriter) WriteHeader(code int) {
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *trackingWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Recovery turns a handler panic into a 500 problem response. When the
// handler had already started its response the panic is only logged.
// http.ErrAbortHandler is re-raised so the server aborts the connection.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tw := &trackingWriter{ResponseWriter: w}

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				logger.Error("handler panicked",
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"response_started", tw.wroteHeader,
					"stack", string(debug.Stack()),
				)
				if !tw.wroteHeader {
					httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(tw, r)
		})
	}
}
