package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/bancadosucesso/storefront-backend/api/responses"
	pkgerrors "github.com/bancadosucesso/storefront-backend/pkg/errors"
	"github.com/bancadosucesso/storefront-backend/pkg/logger"
)

const cartKeyHeader = "X-Cart-Key"

// Cart keys are opaque client-generated tokens. The charset check keeps
// arbitrary header content out of Redis key names.
var cartKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,128}$`)

// CartKey requires an X-Cart-Key header identifying the shopper's cart and
// seeds the request context with it.
func CartKey(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(cartKeyHeader))
			if key == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "missing cart key"))
				return
			}
			if !cartKeyPattern.MatchString(key) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid cart key"))
				return
			}

			ctx := WithCartKey(r.Context(), key)
			if logg != nil {
				ctx = logg.WithCartKey(ctx, key)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
