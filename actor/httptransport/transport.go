package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/go-actor-client/actor"
	"github.com/pkg/errors"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 1 << 20

	RequestIDHeader = "X-Request-ID"
)

// CallPath is the route a call to operation on actorID is posted to.
func CallPath(actorID, operation string) string {
	return "/api/v1/actors/" + url.PathEscape(actorID) + "/" + url.PathEscape(operation)
}

// CallRequest is the JSON body of a call.
type CallRequest struct {
	Args []any `json:"args"`
}

// Transport posts calls to a remote actor over HTTP.
type Transport struct {
	baseURL string
	actorID string
	client  *http.Client
}

var _ actor.Transport = (*Transport)(nil)

type Option func(*Transport)

func WithHTTPClient(client *http.Client) Option {
	return func(t *Transport) {
		t.client = client
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(t *Transport) {
		if timeout > 0 {
			client := *t.client
			client.Timeout = timeout
			t.client = &client
		}
	}
}

func New(baseURL, actorID string, options ...Option) *Transport {
	t := &Transport{
		baseURL: strings.TrimRight(baseURL, "/"),
		actorID: actorID,
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

func (t *Transport) Invoke(ctx context.Context, call actor.Call) ([]byte, error) {
	args := call.Args
	if args == nil {
		args = []any{}
	}
	body, err := json.Marshal(CallRequest{Args: args})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode call")
	}

	endpoint := t.baseURL + CallPath(t.actorID, call.Operation)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, call.RequestID)
	if call.Credential != "" {
		req.Header.Set("Authorization", "Bearer "+call.Credential)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to perform request")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return raw, nil
}
