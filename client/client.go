package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"jobselect/domain"
)

var tracer = otel.Tracer("jobselect/client")

// API is a thin JSON client for the job board HTTP API.
type API struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

type Option func(*API)

func WithHTTPClient(c *http.Client) Option {
	return func(a *API) { a.client = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(a *API) { a.logger = l }
}

func NewAPI(baseURL string, opts ...Option) *API {
	a := &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// request describes one API call. token is attached as a bearer credential
// when non-empty.
type request struct {
	method      string
	path        string
	token       string
	body        io.Reader
	contentType string
}

func jsonRequest(method, path, token string, payload any) (request, error) {
	r := request{method: method, path: path, token: token}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return request{}, domain.Internal("encode request", err)
		}
		r.body = bytes.NewReader(b)
		r.contentType = "application/json"
	}
	return r, nil
}

// do performs r and decodes a 2xx body into out. Transport failures are
// UpstreamUnavailable; error bodies are decoded into domain errors.
func (a *API) do(ctx context.Context, r request, out any) error {
	req, err := http.NewRequestWithContext(ctx, r.method, a.baseURL+r.path, r.body)
	if err != nil {
		return domain.Internal("create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Warn("request failed",
			zap.String("method", r.method),
			zap.String("path", r.path),
			zap.Error(err))
		return domain.NewError(domain.KindUpstreamUnavailable, "backend unreachable", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			a.logger.Warn("failed to close response body", zap.Error(cerr))
		}
	}()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewError(domain.KindUpstreamUnavailable, "decode response", err)
	}
	return nil
}

type errorBody struct {
	Error string      `json:"error"`
	Code  domain.Kind `json:"code"`
	Field string      `json:"field"`
}

func decodeError(resp *http.Response) error {
	var body errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &body)

	kind := body.Code
	if kind == "" {
		kind = domain.KindFromStatus(resp.StatusCode)
	}
	msg := body.Error
	if msg == "" {
		msg = fmt.Sprintf("backend answered %d", resp.StatusCode)
	}
	e := domain.NewError(kind, msg, nil)
	e.Field = body.Field
	return e
}
