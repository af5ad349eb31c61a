package httpclient_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/LWENA27/sms-getway/pkg/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoes the headers the client sent
func setupHeaderServer() *httptest.Server {
	handler := http.NewServeMux()
	handler.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Seen-Apikey", r.Header.Get("apikey"))
		w.Header().Set("X-Seen-Profile", r.Header.Get("Content-Profile"))
		w.Header().Set("X-Seen-Method", r.Method)
		body, _ := io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	})
	return httptest.NewServer(handler)
}

func TestHTTPClient_Get(t *testing.T) {
	server := setupHeaderServer()
	defer server.Close()

	client := httpclient.NewHTTPClient(5 * time.Second)

	resp, err := client.Get(context.Background(), server.URL+"/echo", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, http.MethodGet, resp.Header.Get("X-Seen-Method"))
}

func TestHTTPClient_PostWithDefaultHeaders(t *testing.T) {
	server := setupHeaderServer()
	defer server.Close()

	client := httpclient.NewHTTPClient(5*time.Second,
		httpclient.WithDefaultHeaders(map[string]string{"apikey": "service-key"}))

	resp, err := client.Post(context.Background(), server.URL+"/echo", strings.NewReader(`{"a":1}`),
		map[string]string{"Content-Profile": "sms_gateway"})
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, "service-key", resp.Header.Get("X-Seen-Apikey"))
	assert.Equal(t, "sms_gateway", resp.Header.Get("X-Seen-Profile"))
	assert.Equal(t, `{"a":1}`, string(body))
}

func TestHTTPClient_RequestHeaderOverridesDefault(t *testing.T) {
	server := setupHeaderServer()
	defer server.Close()

	client := httpclient.NewHTTPClient(5*time.Second,
		httpclient.WithDefaultHeaders(map[string]string{"apikey": "service-key"}))

	resp, err := client.Post(context.Background(), server.URL+"/echo", nil,
		map[string]string{"apikey": "other-key"})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "other-key", resp.Header.Get("X-Seen-Apikey"))
}

func TestHTTPClient_Do(t *testing.T) {
	server := setupHeaderServer()
	defer server.Close()

	client := httpclient.NewHTTPClient(5*time.Second,
		httpclient.WithDefaultHeaders(map[string]string{"apikey": "service-key"}))

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL+"/echo", nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "service-key", resp.Header.Get("X-Seen-Apikey"))
}

func TestHTTPClient_ContextCanceled(t *testing.T) {
	server := setupHeaderServer()
	defer server.Close()

	client := httpclient.NewHTTPClient(5 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Get(ctx, server.URL+"/echo", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
