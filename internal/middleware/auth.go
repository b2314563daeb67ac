package middleware

import (
	"context"
	"net/http"

	"github.com/drawlab/backend/pkg/errorx"
	"github.com/drawlab/backend/pkg/router"
	"github.com/drawlab/backend/pkg/xcontext"
)

// Authenticate reads the user id injected by the fronting gateway after it
// verified the credentials. Requests without one are rejected.
func Authenticate() router.MiddlewareFunc {
	return func(ctx context.Context, r *http.Request) (context.Context, error) {
		userID := r.Header.Get("X-User-Id")
		if userID == "" {
			return nil, errorx.New(errorx.Unauthenticated, "Not authenticated")
		}

		return xcontext.WithRequestUserID(ctx, userID), nil
	}
}
