package config

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

const (
	// EnvEndpointURL holds the downstream generation endpoint URL.
	EnvEndpointURL = "FASTAPI_ENDPOINT_URL"
	// EnvEndpointParam optionally names an SSM parameter holding the
	// endpoint URL; when set it takes precedence over EnvEndpointURL.
	EnvEndpointParam = "FASTAPI_ENDPOINT_PARAM"
)

// ParamGetter resolves a named parameter from Parameter Store.
type ParamGetter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// Config is the process-wide configuration, resolved once at startup and
// passed by reference into the handler stack.
type Config struct {
	EndpointURL string
}

// Load resolves the configuration from the environment and, when
// EnvEndpointParam is set, from Parameter Store. An empty endpoint URL is
// not an error here: every invocation surfaces it as a configuration
// failure, so the process still starts and serves error envelopes.
func Load(ctx context.Context, params ParamGetter, logger *slog.Logger) *Config {
	if logger == nil {
		logger = slog.Default()
	}

	url := strings.TrimSpace(os.Getenv(EnvEndpointURL))

	if name := strings.TrimSpace(os.Getenv(EnvEndpointParam)); name != "" && params != nil {
		v, err := params.GetParameter(ctx, name)
		if err != nil {
			logger.Error("failed to resolve endpoint URL from parameter store", "param", name, "err", err)
		} else if strings.TrimSpace(v) != "" {
			url = strings.TrimSpace(v)
		}
	}

	return &Config{EndpointURL: url}
}
