package httpx

import (
	"context"

	"github.com/aussiebroadwan/leadflow/pkg/jwtx"
)

type ctxKey string

const ctxKeyClaims ctxKey = "claims"

// ContextWithClaims stores verified bearer claims on ctx.
func ContextWithClaims(ctx context.Context, c jwtx.Claims) context.Context {
	return context.WithValue(ctx, ctxKeyClaims, c)
}

// ClaimsFromContext returns the verified claims, if the request carried a
// valid bearer token.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(ctxKeyClaims).(jwtx.Claims)
	return c, ok
}
