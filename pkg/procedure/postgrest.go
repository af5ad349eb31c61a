package procedure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/LWENA27/sms-getway/pkg/httpclient"
)

const (
	rpcPath         = "/rest/v1/rpc/"
	maxResponseSize = 4 << 20
)

// APIError is the error document PostgREST returns for failed calls.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details"`
	Hint       string `json:"hint"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("procedure call failed with status %d", e.StatusCode)
}

type PostgREST struct {
	baseURL string
	client  httpclient.HTTPClient
}

func NewPostgREST(cfg Config, client httpclient.HTTPClient) *PostgREST {
	return &PostgREST{baseURL: strings.TrimRight(cfg.URL, "/"), client: client}
}

// ServiceHeaders are the credentials PostgREST expects on every call.
func ServiceHeaders(serviceKey string) map[string]string {
	return map[string]string{
		"apikey":        serviceKey,
		"Authorization": "Bearer " + serviceKey,
	}
}

func (p *PostgREST) Call(ctx context.Context, target Target, name string, params Params) (json.RawMessage, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(params.Map()); err != nil {
		return nil, fmt.Errorf("encoding error: %w", err)
	}

	headers := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
	if target != DefaultTarget {
		headers["Content-Profile"] = string(target)
		headers["Accept-Profile"] = string(target)
	}

	resp, err := p.client.Post(ctx, p.baseURL+rpcPath+url.PathEscape(name), &buf, headers)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, decodeAPIError(resp.StatusCode, raw)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || resp.StatusCode == http.StatusNoContent {
		return json.RawMessage("null"), nil
	}

	if !json.Valid(raw) {
		return nil, ErrInvalidPayload
	}

	return raw, nil
}

func decodeAPIError(statusCode int, raw []byte) error {
	apiErr := &APIError{StatusCode: statusCode}
	if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}
