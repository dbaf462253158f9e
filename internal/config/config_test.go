package config

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeParams struct {
	val string
	err error
	got string
}

func (f *fakeParams) GetParameter(_ context.Context, name string) (string, error) {
	f.got = name
	return f.val, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv(EnvEndpointURL, "http://inference.local/generate")
	t.Setenv(EnvEndpointParam, "")

	cfg := Load(context.Background(), nil, testLogger())
	require.Equal(t, "http://inference.local/generate", cfg.EndpointURL)
}

func TestLoad_MissingEverywhere(t *testing.T) {
	t.Setenv(EnvEndpointURL, "")
	t.Setenv(EnvEndpointParam, "")

	cfg := Load(context.Background(), nil, testLogger())
	require.Empty(t, cfg.EndpointURL)
}

func TestLoad_ParamStoreTakesPrecedence(t *testing.T) {
	t.Setenv(EnvEndpointURL, "http://stale.local")
	t.Setenv(EnvEndpointParam, "/simplechat/endpoint-url")

	params := &fakeParams{val: "http://from-ssm.local/generate"}
	cfg := Load(context.Background(), params, testLogger())
	require.Equal(t, "/simplechat/endpoint-url", params.got)
	require.Equal(t, "http://from-ssm.local/generate", cfg.EndpointURL)
}

func TestLoad_ParamStoreFailureFallsBackToEnv(t *testing.T) {
	t.Setenv(EnvEndpointURL, "http://inference.local/generate")
	t.Setenv(EnvEndpointParam, "/simplechat/endpoint-url")

	params := &fakeParams{err: errors.New("access denied")}
	cfg := Load(context.Background(), params, testLogger())
	require.Equal(t, "http://inference.local/generate", cfg.EndpointURL)
}

func TestLoad_TrimsWhitespace(t *testing.T) {
	t.Setenv(EnvEndpointURL, "  http://inference.local/generate \n")
	t.Setenv(EnvEndpointParam, "")

	cfg := Load(context.Background(), nil, testLogger())
	require.Equal(t, "http://inference.local/generate", cfg.EndpointURL)
}
