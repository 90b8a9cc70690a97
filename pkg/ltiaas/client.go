// Package ltiaas is a thin client for the LTIaaS HTTP API. It builds the
// Authorization header, issues one request per call and returns the decoded
// JSON body. Transport, status and decode failures are returned to the caller
// as errors; the client never retries.
package ltiaas

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/samvad-hq/ltiaas-client/pkg/httpclient"
)

// Client issues authenticated requests against one LTIaaS deployment.
// It is immutable after New and safe for concurrent use.
type Client struct {
	baseURL        string
	apiKey         string
	idTokenURL     string
	membershipsURL string

	http     httpclient.Client
	timeout  time.Duration
	log      Logger
	observer Observer
}

// New returns a client for baseURL (an origin without trailing slash) using apiKey.
// Neither argument is validated and no network I/O happens here.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:        baseURL,
		apiKey:         apiKey,
		idTokenURL:     baseURL + idTokenPath,
		membershipsURL: baseURL + membershipsPath,
		log:            noopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpclient.NewRestyClient(c.timeout)
	}
	return c
}

func (c *Client) BaseURL() string        { return c.baseURL }
func (c *Client) IDTokenURL() string     { return c.idTokenURL }
func (c *Client) MembershipsURL() string { return c.membershipsURL }

// GetIDToken retrieves the ID token for the launch identified by ltik.
func (c *Client) GetIDToken(ctx context.Context, ltik string) (any, error) {
	c.warnMissingLtik(OperationIDToken, ltik)
	var out any
	if err := c.do(ctx, OperationIDToken, MethodGet, c.idTokenURL, ltik, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetMemberships retrieves the context memberships for the launch identified by ltik.
func (c *Client) GetMemberships(ctx context.Context, ltik string) (any, error) {
	c.warnMissingLtik(OperationMemberships, ltik)
	var out any
	if err := c.do(ctx, OperationMemberships, MethodGet, c.membershipsURL, ltik, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MakeRequest sends a body-less request to url and returns the decoded JSON body
// (map[string]any, []any, string, float64, bool or nil). An empty ltik selects
// the bearer-only Authorization header.
func (c *Client) MakeRequest(ctx context.Context, method RequestMethod, url, ltik string) (any, error) {
	var out any
	if err := c.do(ctx, OperationRequest, method, url, ltik, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MakeRequestInto behaves like MakeRequest but decodes the body into out.
func (c *Client) MakeRequestInto(ctx context.Context, method RequestMethod, url, ltik string, out any) error {
	return c.do(ctx, OperationRequest, method, url, ltik, out)
}

func (c *Client) do(ctx context.Context, op Operation, method RequestMethod, url, ltik string, out any) error {
	verb, err := method.verb()
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	header, scheme := buildAuthorizationHeader(c.apiKey, ltik)
	start := time.Now()
	resp, err := c.http.Do(ctx, verb, url, map[string]string{"Authorization": header})
	if err != nil {
		err = fmt.Errorf("ltiaas %s %s: %w", verb, url, err)
		c.finish(op, method, url, scheme, 0, start, err)
		return err
	}

	status := resp.StatusCode()
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		err = &StatusError{Method: verb, URL: url, StatusCode: status, Body: resp.Body()}
		c.finish(op, method, url, scheme, status, start, err)
		return err
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		err = fmt.Errorf("decode ltiaas %s %s response: %w", verb, url, err)
		c.finish(op, method, url, scheme, status, start, err)
		return err
	}

	c.finish(op, method, url, scheme, status, start, nil)
	return nil
}

func (c *Client) finish(op Operation, method RequestMethod, url string, scheme authScheme, status int, start time.Time, err error) {
	elapsed := time.Since(start)
	fields := map[string]any{
		"operation":   string(op),
		"method":      method.String(),
		"url":         url,
		"auth_scheme": string(scheme),
		"status":      status,
		"elapsed_ms":  elapsed.Milliseconds(),
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	c.log.DebugObj("ltiaas request finished", "ltiaas_request", fields)

	if c.observer != nil {
		c.observer.ObserveRequest(RequestInfo{
			Operation:  op,
			Method:     method,
			StatusCode: status,
			Elapsed:    elapsed,
			Err:        err,
		})
	}
}

func (c *Client) warnMissingLtik(op Operation, ltik string) {
	if ltik != "" {
		return
	}
	c.log.WarnObj("ltiaas call without ltik; using bearer authorization", "ltiaas_auth", map[string]any{
		"operation": string(op),
	})
}
