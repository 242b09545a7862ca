package probe

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const httpBodyLimit = 1 << 20

// httpClient builds a probe-grade HTTP client: no redirects followed, no
// certificate verification (targets are IPs with self-signed certs), one
// overall deadline.
func httpClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig:   &tls.Config{InsecureSkipVerify: true},
			DisableKeepAlives: true,
		},
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// httpProbeResponse is the condensed view HTTP probers work with.
type httpProbeResponse struct {
	StatusCode int
	Headers    http.Header
	Body       string
}

// httpGet fetches one path and caps the body read.
func httpGet(ctx context.Context, client *http.Client, scheme, host string, port int, path string) (*httpProbeResponse, error) {
	url := fmt.Sprintf("%s://%s:%d%s", scheme, host, port, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "reconkit/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, httpBodyLimit))
	return &httpProbeResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       string(body),
	}, nil
}

// decodeJSONBody unmarshals a response body into a generic map, tolerating
// non-JSON bodies by returning nil.
func decodeJSONBody(body string) map[string]any {
	var out map[string]any
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return nil
	}
	return out
}

// extractTitleHint pulls the <title> text out of an HTML body, if any.
func extractTitleHint(body string) string {
	low := strings.ToLower(body)
	start := strings.Index(low, "<title>")
	if start < 0 {
		return ""
	}
	rest := body[start+len("<title>"):]
	end := strings.Index(strings.ToLower(rest), "</title>")
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}
