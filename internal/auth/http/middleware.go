package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/lanewaylabs/gatehouse/internal/auth/service"
	"github.com/lanewaylabs/gatehouse/pkg/authsdk"
	"github.com/lanewaylabs/gatehouse/pkg/httpx"
)

type contextKey string

const tokenContextKey contextKey = "gatehouse.token_context"

// TokenContextFrom returns the validated token context attached by
// RequireBearer, if any.
func TokenContextFrom(ctx context.Context) (service.TokenContext, bool) {
	tc, ok := ctx.Value(tokenContextKey).(service.TokenContext)
	return tc, ok
}

// RequireBearer validates the Authorization bearer token against the
// resource service and attaches the resolved token context to the request.
// Failures answer 401 with a WWW-Authenticate challenge per RFC 6750.
func RequireBearer(resource *service.ResourceService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="gatehouse"`)
				authsdk.ErrInvalidToken.WriteError(w)
				return
			}

			tc, err := resource.ValidateBearerToken(r.Context(), raw)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="gatehouse", error="invalid_token"`)
				authsdk.ErrInvalidToken.WriteError(w)
				return
			}

			ctx := context.WithValue(r.Context(), tokenContextKey, tc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAnyScope rejects requests whose token carries none of the given
// scopes. It must sit inside RequireBearer.
func RequireAnyScope(scopes ...string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tc, ok := TokenContextFrom(r.Context())
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="gatehouse"`)
				authsdk.ErrInvalidToken.WriteError(w)
				return
			}

			for _, s := range scopes {
				if tc.HasScope(s) {
					next.ServeHTTP(w, r)
					return
				}
			}

			w.Header().Set("WWW-Authenticate",
				`Bearer realm="gatehouse", error="insufficient_scope"`)
			authsdk.ErrInsufficientScope.WriteError(w)
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
