package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/Konan-star/simplechat/handler"
	"github.com/Konan-star/simplechat/internal/config"
	"github.com/Konan-star/simplechat/internal/integrations/inference"
	"github.com/Konan-star/simplechat/internal/integrations/paramstore"
	"github.com/Konan-star/simplechat/internal/usecase"
)

func main() {
	ctx := context.Background()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// ---- Configuration (read only here) ----
	var params config.ParamGetter
	if os.Getenv(config.EnvEndpointParam) != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			logger.Error("failed to load AWS config", "err", err)
			os.Exit(1)
		}
		ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
		if err != nil {
			logger.Error("failed to create SSM client", "err", err)
			os.Exit(1)
		}
		params = ssmClient
	}

	cfg := config.Load(ctx, params, logger)
	if cfg.EndpointURL == "" {
		// Not fatal: every invocation reports the missing URL as a 500.
		logger.Warn("endpoint URL is not configured", "env", config.EnvEndpointURL)
	}

	// ---- Clients ----
	inferenceClient := inference.NewClient(cfg.EndpointURL)

	chatService, err := usecase.NewChatService(cfg, inferenceClient, logger)
	if err != nil {
		logger.Error("failed to create chat service", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	h, err := handler.NewHandler(chatService, logger)
	if err != nil {
		logger.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}
