package fetchers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// NewHTTPClient creates the resty client shared by every HTTP source.
// Server errors and transport errors are retried retryCount times.
func NewHTTPClient(retryCount int) *resty.Client {
	client := resty.New()
	client.SetRetryCount(retryCount)
	client.SetRetryWaitTime(500 * time.Millisecond)
	client.SetRetryMaxWaitTime(5 * time.Second)
	client.AddRetryCondition(func(resp *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		return resp != nil && resp.StatusCode() >= http.StatusInternalServerError
	})
	return client
}

// HTTPSource downloads a dataset over HTTP.
type HTTPSource struct {
	name   string
	url    string
	client *resty.Client
}

// NewHTTPSource creates an HTTP source. A nil client gets a default one
// without retries.
func NewHTTPSource(name, url string, client *resty.Client) *HTTPSource {
	if client == nil {
		client = NewHTTPClient(0)
	}
	return &HTTPSource{name: name, url: url, client: client}
}

func (s *HTTPSource) Name() string { return s.name }

// Fetch downloads the body. Any status other than 200 is an error.
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", s.url, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", s.url, resp.StatusCode())
	}
	return resp.Body(), nil
}
