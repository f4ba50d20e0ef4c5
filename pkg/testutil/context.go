package testutil

import (
	"net/http"
	"time"

	"caseledger/internal/platform/middleware"
	"caseledger/pkg/domain"
	"caseledger/pkg/requestcontext"
)

// WithPrincipal binds a principal to the request context.
// This simulates what the auth middleware would do for authenticated requests.
func WithPrincipal(req *http.Request, principal domain.Principal) *http.Request {
	ctx := middleware.WithPrincipal(req.Context(), principal)
	return req.WithContext(ctx)
}

// WithTime injects a fixed transition time into the request context.
func WithTime(req *http.Request, t time.Time) *http.Request {
	ctx := requestcontext.WithTime(req.Context(), t)
	return req.WithContext(ctx)
}
