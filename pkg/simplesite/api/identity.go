package api

import (
	"context"
	"net/http"

	"github.com/awslabs/aws-lambda-go-api-proxy/core"
)

// AccountHeader carries the caller's account id from a trusted proxy or a
// test client.
const AccountHeader = "X-Account-Id"

// DevAccountID is the identity used when a request carries none.
const DevAccountID = "dev-account-1"

type contextKey string

const (
	claimsKey  contextKey = "authorizer_claims"
	accountKey contextKey = "account_id"
)

// WithClaims attaches authorizer claims to ctx, for callers that
// authenticate before the router outside of API Gateway.
func WithClaims(ctx context.Context, claims map[string]any) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the claims attached by WithClaims, or else the
// API Gateway authorizer claims carried by a proxied Lambda request.
func ClaimsFromContext(ctx context.Context) map[string]any {
	if claims, ok := ctx.Value(claimsKey).(map[string]any); ok {
		return claims
	}
	if gw, ok := core.GetAPIGatewayContextFromContext(ctx); ok {
		claims, _ := gw.Authorizer["claims"].(map[string]any)
		return claims
	}
	return nil
}

// AccountID returns the account resolved by IdentityMiddleware.
func AccountID(ctx context.Context) string {
	if id, ok := ctx.Value(accountKey).(string); ok {
		return id
	}
	return ""
}

// ResolveAccountID picks the caller's account: the account header first,
// then the authorizer "sub" claim, then DevAccountID.
func ResolveAccountID(r *http.Request) string {
	if id := r.Header.Get(AccountHeader); id != "" {
		return id
	}
	if sub, ok := ClaimsFromContext(r.Context())["sub"].(string); ok && sub != "" {
		return sub
	}
	return DevAccountID
}

// IdentityMiddleware stores the resolved account id in the request context
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), accountKey, ResolveAccountID(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
