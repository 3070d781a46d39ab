package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"pet-adoption/internal/platform/httpresp"
	"pet-adoption/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Recover reemplaza a chimw.Recoverer: el panic se loguea y el cliente
// recibe el envelope JSON de 500 en lugar de texto plano.
func Recover(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				if log != nil {
					log.Error("panic recovered", map[string]any{
						"request_id": chimw.GetReqID(r.Context()),
						"panic":      fmt.Sprint(rec),
						"stack":      string(debug.Stack()),
					})
				}
				httpresp.Fail(w, http.StatusInternalServerError, "Internal Server Error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
