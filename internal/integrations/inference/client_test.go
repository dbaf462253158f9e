package inference

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Konan-star/simplechat/internal/domain"
)

func TestGenerate_HappyPath(t *testing.T) {
	var gotMethod, gotContentType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"generated_text":"hello","conversationHistory":[{"role":"assistant","content":"hello"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	res, err := c.Generate(context.Background(), "hi", []domain.ChatMessage{{Role: "user", Content: "earlier"}})
	require.NoError(t, err)
	require.Equal(t, http.MethodPost, gotMethod)
	require.Equal(t, "application/json", gotContentType)
	require.Equal(t, "hello", res.GeneratedText)
	require.Equal(t, []domain.ChatMessage{{Role: "assistant", Content: "hello"}}, res.ConversationHistory)

	var sent map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(gotBody, &sent))
	require.JSONEq(t, `"hi"`, string(sent["prompt"]))
	require.JSONEq(t, `[{"role":"user","content":"earlier"}]`, string(sent["conversationHistory"]))
}

func TestGenerate_NilHistorySentAsEmptyArray(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"generated_text":"ok"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Generate(context.Background(), "hi", nil)
	require.NoError(t, err)
	require.Contains(t, string(gotBody), `"conversationHistory":[]`)
}

func TestGenerate_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"not found"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Generate(context.Background(), "hi", nil)
	require.Error(t, err)

	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	require.Equal(t, http.StatusNotFound, statusErr.HTTPStatusCode())
	require.Contains(t, statusErr.Error(), "404")
	require.Contains(t, statusErr.Body, "not found")
}

func TestGenerate_ConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url)
	_, err := c.Generate(context.Background(), "hi", nil)
	require.Error(t, err)

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	require.Equal(t, url, connErr.URL)
}

func TestGenerate_MalformedResponseBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not-json`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Generate(context.Background(), "hi", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode response")

	var statusErr *HTTPStatusError
	require.False(t, errors.As(err, &statusErr))
}
