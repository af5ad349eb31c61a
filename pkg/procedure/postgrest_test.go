package procedure_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/LWENA27/sms-getway/pkg/httpclient"
	"github.com/LWENA27/sms-getway/pkg/mocks"
	"github.com/LWENA27/sms-getway/pkg/procedure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	path    string
	profile string
	apiKey  string
	auth    string
	body    map[string]any
}

func newRPCServer(t *testing.T, status int, response string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path
		captured.profile = r.Header.Get("Content-Profile")
		captured.apiKey = r.Header.Get("apikey")
		captured.auth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &captured.body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
}

func newPostgREST(url string) *procedure.PostgREST {
	client := httpclient.NewHTTPClient(5*time.Second,
		httpclient.WithDefaultHeaders(procedure.ServiceHeaders("service-role-key")))
	return procedure.NewPostgREST(procedure.Config{URL: url + "/"}, client)
}

func TestPostgREST_Call(t *testing.T) {
	params := procedure.Params{
		{Name: "p_api_key", Value: "client-key"},
		{Name: "p_phone_number", Value: "+255700000001"},
		{Name: "p_priority", Value: 0},
	}

	t.Run("schema target sets profile headers", func(t *testing.T) {
		var captured capturedRequest
		server := newRPCServer(t, http.StatusOK, `{"success":true,"request_id":"r-1"}`, &captured)
		defer server.Close()

		raw, err := newPostgREST(server.URL).Call(context.Background(), "sms_gateway", "submit_sms_request", params)

		require.NoError(t, err)
		assert.JSONEq(t, `{"success":true,"request_id":"r-1"}`, string(raw))
		assert.Equal(t, "/rest/v1/rpc/submit_sms_request", captured.path)
		assert.Equal(t, "sms_gateway", captured.profile)
		assert.Equal(t, "service-role-key", captured.apiKey)
		assert.Equal(t, "Bearer service-role-key", captured.auth)
		assert.Equal(t, "client-key", captured.body["p_api_key"])
		assert.Equal(t, "+255700000001", captured.body["p_phone_number"])
		assert.EqualValues(t, 0, captured.body["p_priority"])
	})

	t.Run("default target omits profile header", func(t *testing.T) {
		var captured capturedRequest
		server := newRPCServer(t, http.StatusOK, `{"success":false,"error":"Invalid API key"}`, &captured)
		defer server.Close()

		raw, err := newPostgREST(server.URL).Call(context.Background(), procedure.DefaultTarget, "submit_sms_request", params)

		require.NoError(t, err)
		assert.JSONEq(t, `{"success":false,"error":"Invalid API key"}`, string(raw))
		assert.Empty(t, captured.profile)
	})

	t.Run("error status becomes api error", func(t *testing.T) {
		var captured capturedRequest
		server := newRPCServer(t, http.StatusNotAcceptable,
			`{"code":"PGRST106","message":"The schema must be one of the following: public","details":null,"hint":null}`,
			&captured)
		defer server.Close()

		_, err := newPostgREST(server.URL).Call(context.Background(), "sms_gateway", "submit_sms_request", params)

		require.Error(t, err)
		var apiErr *procedure.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusNotAcceptable, apiErr.StatusCode)
		assert.Equal(t, "PGRST106", apiErr.Code)
		assert.Equal(t, "The schema must be one of the following: public", err.Error())
	})

	t.Run("non json error body keeps raw text", func(t *testing.T) {
		var captured capturedRequest
		server := newRPCServer(t, http.StatusBadGateway, `upstream unavailable`, &captured)
		defer server.Close()

		_, err := newPostgREST(server.URL).Call(context.Background(), "sms_gateway", "get_sms_request_status", params)

		require.Error(t, err)
		assert.Equal(t, "upstream unavailable", err.Error())
	})

	t.Run("empty body decodes as null", func(t *testing.T) {
		var captured capturedRequest
		server := newRPCServer(t, http.StatusOK, ``, &captured)
		defer server.Close()

		raw, err := newPostgREST(server.URL).Call(context.Background(), "sms_gateway", "submit_sms_request", params)

		require.NoError(t, err)
		assert.Equal(t, "null", string(raw))
	})

	t.Run("invalid json body", func(t *testing.T) {
		var captured capturedRequest
		server := newRPCServer(t, http.StatusOK, `{"success":`, &captured)
		defer server.Close()

		_, err := newPostgREST(server.URL).Call(context.Background(), "sms_gateway", "submit_sms_request", params)

		assert.ErrorIs(t, err, procedure.ErrInvalidPayload)
	})
}

func TestPostgREST_TransportErrors(t *testing.T) {
	url := "https://project.supabase.co/rest/v1/rpc/submit_sms_request"

	t.Run("timeout", func(t *testing.T) {
		mockClient := &mocks.HTTPClient{}
		caller := procedure.NewPostgREST(procedure.Config{URL: "https://project.supabase.co"}, mockClient)

		mockClient.On("Post", context.Background(), url, mock.Anything, mock.Anything).
			Return((*http.Response)(nil), context.DeadlineExceeded)

		_, err := caller.Call(context.Background(), "sms_gateway", "submit_sms_request", nil)

		assert.ErrorIs(t, err, procedure.ErrTimeout)
		mockClient.AssertExpectations(t)
	})

	t.Run("network failure", func(t *testing.T) {
		mockClient := &mocks.HTTPClient{}
		caller := procedure.NewPostgREST(procedure.Config{URL: "https://project.supabase.co"}, mockClient)

		mockClient.On("Post", context.Background(), url, mock.Anything, mock.Anything).
			Return((*http.Response)(nil), errors.New("dial tcp: connection refused"))

		_, err := caller.Call(context.Background(), "sms_gateway", "submit_sms_request", nil)

		assert.ErrorIs(t, err, procedure.ErrNetwork)
		assert.Contains(t, err.Error(), "connection refused")
	})
}
