package cloud

import (
	"context"
	"net/http"
	"time"
)

// HTTPProbe treats any HTTP answer from URL as "online". Only transport
// errors (DNS, refused, timeout) mean offline.
type HTTPProbe struct {
	url        string
	httpClient *http.Client
}

func NewHTTPProbe(url string, timeout time.Duration) *HTTPProbe {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HTTPProbe{url: url, httpClient: &http.Client{Timeout: timeout}}
}

func (p *HTTPProbe) Online(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		return false
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}
