package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RESTClient sends JSON requests to a hosted provider API. Non-200 answers
// are returned as *StatusError and every call is bounded by Timeout.
type RESTClient struct {
	Provider string
	BaseURL  string
	Header   http.Header // sent on every request, e.g. credentials
	Timeout  time.Duration
	HTTP     *http.Client
}

// NewRESTClient returns a client for baseURL with a trailing slash removed.
func NewRESTClient(provider, baseURL string, timeout time.Duration, header http.Header) *RESTClient {
	return &RESTClient{
		Provider: provider,
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Header:   header,
		Timeout:  timeout,
		HTTP:     &http.Client{},
	}
}

// Do sends in (when non-nil) as the JSON body of method path and decodes the
// 200 response into out (when non-nil). A body that fails to decode is a
// server_error ProviderError.
func (c *RESTClient) Do(ctx context.Context, method, path string, in, out any) error {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	var body io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", c.Provider, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	for k, vs := range c.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ReadStatusError(c.Provider, resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if pe := TransportError(c.Provider, err); pe != nil {
			return pe
		}
		return NewProviderError(ErrCodeServerError, c.Provider+": decode response", err)
	}
	return nil
}
