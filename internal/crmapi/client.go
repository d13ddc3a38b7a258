// Package crmapi is the client of the CRM REST API: login, catalog and
// contact reads, and order creation.
package crmapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/crm-orderdesk/internal/domain/auth"
	"github.com/xenking/crm-orderdesk/internal/domain/catalog"
	"github.com/xenking/crm-orderdesk/internal/domain/contact"
	"github.com/xenking/crm-orderdesk/internal/domain/dashboard"
	"github.com/xenking/crm-orderdesk/internal/domain/order"
)

// Compile-time checks ensuring Client satisfies the domain interfaces.
var (
	_ auth.Authenticator = (*Client)(nil)
	_ catalog.Loader     = (*Client)(nil)
	_ contact.Lister     = (*Client)(nil)
	_ order.Gateway      = (*Client)(nil)
	_ order.Finder       = (*Client)(nil)
	_ dashboard.Reader   = (*Client)(nil)
)

const maxBodySize = 8 << 20

// StatusError is a non-success response without a more specific meaning.
type StatusError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
}

// Client calls the CRM API. Authentication is added by the transport
// (see httpclient.BearerAuth); Client only interprets responses.
type Client struct {
	base *url.URL
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// New creates a Client for the API rooted at baseURL, e.g.
// "https://crm.example.com/api/".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	c := &Client{base: u, http: http.DefaultClient}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type response struct {
	status int
	body   []byte
}

func (r response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// do sends a request to path and reads the body. path is resolved against
// the base URL and may carry a query or be an absolute link on the same host.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (response, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return response{}, errors.Wrapf(err, "parse path %q", path)
	}
	target := c.base.ResolveReference(ref)
	if target.Host != c.base.Host {
		return response{}, errors.Errorf("%s %s: host %q differs from api host %q", method, path, target.Host, c.base.Host)
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), rd)
	if err != nil {
		return response{}, errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return response{}, errors.Wrapf(err, "%s %s", method, path)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return response{}, errors.Wrapf(err, "read %s %s", method, path)
	}
	return response{status: resp.StatusCode, body: data}, nil
}

// call performs an authenticated request. A 401 maps to
// auth.ErrSessionExpired, other failures to *StatusError.
func (c *Client) call(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if resp.ok() {
		return resp.body, nil
	}
	if resp.status == http.StatusUnauthorized {
		return nil, errors.Wrapf(auth.ErrSessionExpired, "%s %s", method, path)
	}
	return nil, &StatusError{
		Method:  method,
		Path:    path,
		Status:  resp.status,
		Message: errorMessage(resp.body),
	}
}
