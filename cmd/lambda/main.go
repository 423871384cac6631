package main

import (
	"context"
	"log"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/tendant/simple-site/internal/logging"
	"github.com/tendant/simple-site/pkg/simplesite"
	"github.com/tendant/simple-site/pkg/simplesite/api"
	"github.com/tendant/simple-site/pkg/simplesite/config"
	"github.com/tendant/simple-site/pkg/simplesite/lambda"
)

func main() {
	// Inside Lambda the repositories default to DynamoDB
	serverConfig, err := config.Load(
		config.WithRepositoryType(config.RepositoryDynamoDB),
		config.WithEnv(),
	)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(serverConfig.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	svc, cleanup, err := serverConfig.BuildService(context.Background(),
		simplesite.WithLogger(logger),
	)
	if err != nil {
		log.Fatalf("Failed to build service: %v", err)
	}
	defer cleanup()

	handler := api.NewHandler(svc, api.WithLogger(logger))
	awslambda.Start(lambda.New(handler.Routes()).Handle)
}
