package middleware

import (
	"context"
	"net/http"

	"github.com/rs/xid"
)

type contextKey string

const requestIDKey contextKey = "requestID"

// RequestIDHeader is the response header carrying the request ID, so a
// client error report can quote an ID that grep finds in the server log.
const RequestIDHeader = "X-Request-Id"

// RequestID assigns every request a globally unique ID.
//
// WHY xid INSTEAD OF A COUNTER?
// chi ships a RequestID middleware that uses host+counter IDs, which repeat
// after a restart. xid values are 20-char sortable globally unique tokens —
// unique across restarts and across replicas, which matters once more than
// one instance writes to the same log aggregator.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := xid.New().String()
		w.Header().Set(RequestIDHeader, id)

		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the request's ID, or "" outside a request handled by
// the RequestID middleware.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
