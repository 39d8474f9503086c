package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// defaultMaxResponseSize caps how much of a collaborator response is read.
const defaultMaxResponseSize = 4 << 20

// Connector is a JSON client bound to one collaborator base URL.
type Connector struct {
	baseURL         string
	httpClient      *http.Client
	maxResponseSize int64
}

type ConnectorConfig struct {
	BaseURL string
	// MaxResponseSize defaults to 4 MiB when zero.
	MaxResponseSize int64
}

func NewConnector(config *ConnectorConfig, options ...HttpOpts) *Connector {
	limit := config.MaxResponseSize
	if limit <= 0 {
		limit = defaultMaxResponseSize
	}
	return &Connector{
		baseURL:         strings.TrimRight(config.BaseURL, "/"),
		httpClient:      newClient(options...),
		maxResponseSize: limit,
	}
}

type RequestOpt func(*request)

// request is one outbound call being assembled.
type request struct {
	method      string
	url         string
	body        io.Reader
	contentType string
	headers     http.Header
}

func WithHeader(key, value string) RequestOpt {
	return func(r *request) {
		r.headers.Set(key, value)
	}
}

// WithURL sends the request to url instead of baseURL+endpoint.
func WithURL(url string) RequestOpt {
	return func(r *request) {
		r.url = url
	}
}

func (c *Connector) newRequest(method, endpoint string, opts []RequestOpt) *request {
	r := &request{
		method:  method,
		url:     c.baseURL + endpoint,
		headers: http.Header{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DoRequest sends reqBody as JSON and decodes a JSON response into respBody
func (c *Connector) DoRequest(ctx context.Context, method, endpoint string, reqBody, respBody any, opts ...RequestOpt) error {
	r := c.newRequest(method, endpoint, opts)

	if reqBody != nil {
		payload, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		r.body = bytes.NewReader(payload)
		r.contentType = "application/json"
		ctx = withPayload(ctx, payload)
	}

	return c.do(ctx, r, respBody)
}

// DoMultipartRequest builds a multipart body with prepareBody and decodes a JSON response
func (c *Connector) DoMultipartRequest(ctx context.Context, method, endpoint string, prepareBody func(*multipart.Writer) error, respBody any, opts ...RequestOpt) error {
	r := c.newRequest(method, endpoint, opts)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := prepareBody(mw); err != nil {
		return fmt.Errorf("prepare multipart body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	r.body = &buf
	r.contentType = mw.FormDataContentType()
	ctx = withBodySize(ctx, buf.Len())

	return c.do(ctx, r, respBody)
}

func (c *Connector) do(ctx context.Context, r *request, respBody any) error {
	req, err := http.NewRequestWithContext(ctx, r.method, r.url, r.body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	for key, values := range r.headers {
		req.Header[key] = values
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseSize+1))
	if err != nil {
		return &NetworkError{Err: fmt.Errorf("read response body: %w", err)}
	}
	if int64(len(data)) > c.maxResponseSize {
		return fmt.Errorf("response from %s exceeds %d bytes", r.url, c.maxResponseSize)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return newHTTPError(resp.StatusCode, data)
	}

	if respBody == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, respBody); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
