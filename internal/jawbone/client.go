// Package jawbone is a thin client for the paginated Jawbone UP REST API.
// It fetches one listing page or one record's high-resolution ticks per
// call; pagination policy and detail fan-out belong to the caller.
package jawbone

import (
	"context"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
)

type Client struct {
	http  *http.Client
	base  string
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the production API host. Used by tests.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.base = base
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		http:  &http.Client{Timeout: 30 * time.Second},
		base:  defaultBaseURL,
		token: token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchPage fetches one listing page. An empty cursor means the first page,
// built from the record type; otherwise the cursor is the absolute URL of
// the page to fetch. Page.Next is empty when the source reports no further
// pages.
func (c *Client) FetchPage(ctx context.Context, recordType, cursor string) (*Page, error) {
	url := cursor
	if url == "" {
		var err error
		if url, err = c.pageURL(recordType); err != nil {
			return nil, err
		}
	}

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var envelope pageEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &ProtocolError{URL: url, Reason: "malformed response body: " + err.Error()}
	}
	if envelope.Data == nil || envelope.Data.Items == nil {
		return nil, &ProtocolError{URL: url, Reason: "response has no item list"}
	}

	page := &Page{Items: envelope.Data.Items}
	if link := envelope.Data.Links.Next; link != "" {
		page.Next = c.base + link
	}
	return page, nil
}

// FetchDetail fetches the high-resolution ticks for one record. The
// returned Detail echoes the requested xid so the caller can match it back
// to the summary it belongs to.
func (c *Client) FetchDetail(ctx context.Context, recordType, xid string) (*Detail, error) {
	url, err := c.detailURL(recordType, xid)
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var envelope detailEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &ProtocolError{URL: url, Reason: "malformed response body: " + err.Error()}
	}
	return &Detail{XID: xid, Ticks: envelope.Data}, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if c.token == "" {
		return nil, &AuthError{Reason: "no OAuth token configured"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return io.ReadAll(resp.Body)
}
