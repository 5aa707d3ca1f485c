package dify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmylchreest/folio/pkg/dify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Path   string
	Auth   string
	Accept string
	Body   map[string]any
}

func capture(t *testing.T, r *http.Request) capturedRequest {
	t.Helper()

	var body map[string]any
	assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return capturedRequest{
		Path:   r.URL.Path,
		Auth:   r.Header.Get("Authorization"),
		Accept: r.Header.Get("Accept"),
		Body:   body,
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires API key", func(t *testing.T) {
		t.Parallel()

		_, err := dify.New(dify.Config{})
		assert.ErrorIs(t, err, dify.ErrMissingAPIKey)
	})
}

func TestClient_Run(t *testing.T) {
	t.Parallel()

	t.Run("blocking run against workflow endpoint", func(t *testing.T) {
		t.Parallel()

		var got capturedRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = capture(t, r)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":{"outputs":{"output":"<html></html>"}}}`))
		}))
		defer server.Close()

		client, err := dify.New(dify.Config{APIKey: "secret", BaseURL: server.URL + "/", WorkflowID: "wf-1"})
		require.NoError(t, err)

		run, err := client.Run(context.Background(), dify.Request{
			Inputs: map[string]any{"full_name": "Jane"},
			User:   "user-1",
		})
		require.NoError(t, err)

		assert.Equal(t, "/v1/workflows/wf-1/run", got.Path)
		assert.Equal(t, "Bearer secret", got.Auth)
		assert.Equal(t, "blocking", got.Body["response_mode"])
		assert.Equal(t, "user-1", got.Body["user"])
		assert.Equal(t, map[string]any{"full_name": "Jane"}, got.Body["inputs"])
		assert.NotContains(t, got.Body, "workflow_id")

		assert.True(t, run.OK())
		assert.Equal(t, dify.ModeBlocking, run.Mode)
		assert.Equal(t, server.URL+"/v1/workflows/wf-1/run", run.Endpoint)
		assert.Equal(t, map[string]any{
			"data": map[string]any{"outputs": map[string]any{"output": "<html></html>"}},
		}, run.Response)
	})

	t.Run("falls back to generic endpoint on 404", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		var fallback capturedRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			if r.URL.Path == "/v1/workflows/wf-2/run" {
				http.NotFound(w, r)
				return
			}
			fallback = capture(t, r)
			_, _ = w.Write([]byte(`{"answer":"ok"}`))
		}))
		defer server.Close()

		client, err := dify.New(dify.Config{APIKey: "k", BaseURL: server.URL, WorkflowID: "wf-2"})
		require.NoError(t, err)

		run, err := client.Run(context.Background(), dify.Request{})
		require.NoError(t, err)

		assert.Equal(t, int32(2), calls.Load())
		assert.Equal(t, "/v1/workflows/run", fallback.Path)
		assert.Equal(t, "wf-2", fallback.Body["workflow_id"])
		assert.Equal(t, "anonymous", fallback.Body["user"])
		assert.Equal(t, map[string]any{}, fallback.Body["inputs"])
		assert.Equal(t, map[string]any{"answer": "ok"}, run.Response)
	})

	t.Run("without workflow ID uses generic endpoint with ID from inputs", func(t *testing.T) {
		t.Parallel()

		var got capturedRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = capture(t, r)
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client, err := dify.New(dify.Config{APIKey: "k", BaseURL: server.URL})
		require.NoError(t, err)

		_, err = client.Run(context.Background(), dify.Request{
			Inputs: map[string]any{dify.WorkflowIDInput: "from-inputs"},
		})
		require.NoError(t, err)

		assert.Equal(t, "/v1/workflows/run", got.Path)
		assert.Equal(t, "from-inputs", got.Body["workflow_id"])
	})

	t.Run("error statuses are returned with payload", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":"unauthorized","message":"Access token is invalid"}`))
		}))
		defer server.Close()

		client, err := dify.New(dify.Config{APIKey: "bad", BaseURL: server.URL})
		require.NoError(t, err)

		run, err := client.Run(context.Background(), dify.Request{})
		require.NoError(t, err)

		assert.False(t, run.OK())
		assert.Equal(t, http.StatusUnauthorized, run.StatusCode)
		assert.Equal(t, "unauthorized", run.Response.(map[string]any)["code"])
	})

	t.Run("non-JSON body is wrapped as raw text", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>bad gateway</html>"))
		}))
		defer server.Close()

		client, err := dify.New(dify.Config{APIKey: "k", BaseURL: server.URL})
		require.NoError(t, err)

		run, err := client.Run(context.Background(), dify.Request{})
		require.NoError(t, err)

		assert.Equal(t, map[string]any{"raw_text": "<html>bad gateway</html>"}, run.Response)
	})

	t.Run("streaming run parses event stream", func(t *testing.T) {
		t.Parallel()

		var got capturedRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = capture(t, r)
			w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
			_, _ = w.Write([]byte("data: {\"event\":\"text_chunk\",\"data\":{\"text\":\"<p>\"}}\n\n" +
				"data: {\"event\":\"text_chunk\",\"data\":{\"text\":\"hi</p>\"}}\n\n" +
				"data: {\"event\":\"workflow_finished\",\"data\":{\"outputs\":{}}}\n\n"))
		}))
		defer server.Close()

		client, err := dify.New(dify.Config{APIKey: "k", BaseURL: server.URL})
		require.NoError(t, err)

		run, err := client.Run(context.Background(), dify.Request{Mode: dify.ModeStreaming})
		require.NoError(t, err)

		assert.Equal(t, "text/event-stream", got.Accept)
		assert.Equal(t, "streaming", got.Body["response_mode"])
		assert.Equal(t, dify.ModeStreaming, run.Mode)
		fragments, ok := run.Response.([]any)
		require.True(t, ok)
		assert.Len(t, fragments, 3)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client, err := dify.New(dify.Config{APIKey: "k", BaseURL: server.URL})
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err = client.Run(ctx, dify.Request{})
		require.Error(t, err)
	})
}
