package http

import (
	"net/http"
	"time"
)

// Client is a thin wrapper so components can share transport settings and
// tests can swap endpoints without touching the default client.
type Client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}
