package lambda_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-site/pkg/simplesite"
	"github.com/tendant/simple-site/pkg/simplesite/api"
	"github.com/tendant/simple-site/pkg/simplesite/lambda"
	"github.com/tendant/simple-site/pkg/simplesite/repo/memory"
	memorystorage "github.com/tendant/simple-site/pkg/simplesite/storage/memory"
)

func newAdapter(t *testing.T) *lambda.Adapter {
	t.Helper()
	svc, err := simplesite.New(
		simplesite.WithSiteRepository(memory.NewSiteRepository()),
		simplesite.WithPageRepository(memory.NewPageRepository()),
		simplesite.WithBlobStore(memorystorage.New()),
	)
	require.NoError(t, err)
	return lambda.New(api.NewHandler(svc).Routes())
}

func header(resp events.APIGatewayProxyResponse, name string) string {
	if values := resp.MultiValueHeaders[name]; len(values) > 0 {
		return values[0]
	}
	return resp.Headers[name]
}

func TestHandle_CreateAndListWithClaims(t *testing.T) {
	adapter := newAdapter(t)
	ctx := context.Background()
	authorizer := map[string]any{"claims": map[string]any{"sub": "cognito-user"}}

	resp, err := adapter.Handle(ctx, events.APIGatewayProxyRequest{
		HTTPMethod:     http.MethodPost,
		Path:           "/api/sites",
		Headers:        map[string]string{"content-type": "application/json"},
		Body:           `{"name":"Lambda Site"}`,
		RequestContext: events.APIGatewayProxyRequestContext{Authorizer: authorizer, RequestID: "req-1"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode, resp.Body)
	assert.Equal(t, "*", header(resp, "Access-Control-Allow-Origin"))
	assert.Equal(t, "application/json", header(resp, "Content-Type"))

	var site map[string]any
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &site))
	assert.Equal(t, "cognito-user", site["owner_account_id"])
	assert.Equal(t, "Lambda Site", site["name"])

	resp, err = adapter.Handle(ctx, events.APIGatewayProxyRequest{
		HTTPMethod:     http.MethodGet,
		Path:           "/api/sites",
		RequestContext: events.APIGatewayProxyRequestContext{Authorizer: authorizer},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sites []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &sites))
	assert.Len(t, sites, 1)
}

func TestHandle_Base64Body(t *testing.T) {
	adapter := newAdapter(t)

	resp, err := adapter.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodPost,
		Path:            "/api/sites",
		Body:            base64.StdEncoding.EncodeToString([]byte(`{"slug":"encoded"}`)),
		IsBase64Encoded: true,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Contains(t, resp.Body, `"slug":"encoded"`)
	assert.Contains(t, resp.Body, api.DevAccountID)
}

func TestHandle_InvalidBase64IsA500Response(t *testing.T) {
	adapter := newAdapter(t)

	resp, err := adapter.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodPost,
		Path:            "/api/sites",
		Body:            "not base64!",
		IsBase64Encoded: true,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "*", header(resp, "Access-Control-Allow-Origin"))
	assert.Equal(t, "GET,POST,PATCH,OPTIONS", header(resp, "Access-Control-Allow-Methods"))
	assert.Equal(t, "application/json", header(resp, "Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	assert.NotEmpty(t, body["error"])
}

func TestHandle_PreflightAndNotFound(t *testing.T) {
	adapter := newAdapter(t)
	ctx := context.Background()

	resp, err := adapter.Handle(ctx, events.APIGatewayProxyRequest{HTTPMethod: http.MethodOptions, Path: "/api/sites"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, resp.Body)

	resp, err = adapter.Handle(ctx, events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: "/nope"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Not found","path":"/nope","method":"GET"}`, resp.Body)
}

func TestHandle_HeaderOverridesClaims(t *testing.T) {
	adapter := newAdapter(t)

	resp, err := adapter.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/api/sites",
		Headers:    map[string]string{"x-account-id": "header-acct"},
		RequestContext: events.APIGatewayProxyRequestContext{
			Authorizer: map[string]any{"claims": map[string]any{"sub": "claims-acct"}},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Body, `"owner_account_id":"header-acct"`)
}

func TestHandle_QueryAndMultiValueHeaders(t *testing.T) {
	var got *http.Request
	var body []byte
	adapter := lambda.New(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))

	resp, err := adapter.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:                      http.MethodPatch,
		Path:                            "/api/pages/p1",
		MultiValueQueryStringParameters: map[string][]string{"b": {"2", "3"}},
		MultiValueHeaders:               map[string][]string{"Accept": {"application/json"}},
		Body:                            `{"name":"x"}`,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NotNil(t, got)
	assert.Equal(t, http.MethodPatch, got.Method)
	assert.Equal(t, "/api/pages/p1", got.URL.Path)
	assert.Equal(t, []string{"2", "3"}, got.URL.Query()["b"])
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.Equal(t, `{"name":"x"}`, string(body))
	assert.Nil(t, api.ClaimsFromContext(got.Context()))
}

func TestHandle_GatewayClaimsReachContext(t *testing.T) {
	var claims map[string]any
	adapter := lambda.New(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims = api.ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	_, err := adapter.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodGet,
		Path:       "/",
		RequestContext: events.APIGatewayProxyRequestContext{
			Authorizer: map[string]any{"claims": map[string]any{"sub": "gw-user", "email": "a@example.com"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "gw-user", claims["sub"])
	assert.Equal(t, "a@example.com", claims["email"])
}
