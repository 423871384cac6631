// Package lambda serves the API router behind API Gateway's Lambda proxy
// integration.
package lambda

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/tendant/simple-site/pkg/simplesite/api"
)

// Adapter converts proxy events into HTTP requests for handler
type Adapter struct {
	proxy *httpadapter.HandlerAdapter
}

// New creates an adapter around handler, normally api.Handler.Routes().
func New(handler http.Handler) *Adapter {
	return &Adapter{proxy: httpadapter.New(handler)}
}

// Handle is the Lambda entry point. The API Gateway request context travels
// in the request context, where identity resolution reads the authorizer
// claims. An event that cannot be converted is answered with a 500 rather
// than a Lambda error.
func (a *Adapter) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	resp, err := a.proxy.ProxyWithContext(ctx, event)
	if err != nil {
		return errorResponse(err), nil
	}
	return resp, nil
}

func errorResponse(err error) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(api.ErrorResponse{Error: err.Error()})
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusInternalServerError,
		MultiValueHeaders: map[string][]string{
			"Content-Type":                 {"application/json"},
			"Access-Control-Allow-Origin":  {api.AllowOrigin},
			"Access-Control-Allow-Headers": {api.AllowHeaders},
			"Access-Control-Allow-Methods": {api.AllowMethods},
		},
		Body: string(body),
	}
}
