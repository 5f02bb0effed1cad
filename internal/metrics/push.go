package metrics

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/common/expfmt"

	"git.home.luguber.info/inful/workflow-telemetry/internal/errors"
	"git.home.luguber.info/inful/workflow-telemetry/internal/version"
)

// PushGateway delivers exposition documents to a Prometheus push gateway grouping key.
type PushGateway struct {
	url    string
	client *http.Client
}

// PushOption customizes a PushGateway.
type PushOption func(*PushGateway)

// WithHTTPClient overrides the HTTP client used for pushes.
func WithHTTPClient(c *http.Client) PushOption {
	return func(p *PushGateway) { p.client = c }
}

// NewPushGateway returns a client for the given grouping-key URL, e.g.
// http://host:9091/metrics/job/<job>/<label>/<value>.
func NewPushGateway(url string, opts ...PushOption) *PushGateway {
	p := &PushGateway{url: url, client: &http.Client{Timeout: 30 * time.Second}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// URL returns the target grouping-key URL.
func (p *PushGateway) URL() string { return p.url }

// Push replaces the metrics of the grouping key with body. Any 2xx response is success.
func (p *PushGateway) Push(ctx context.Context, body string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, p.url, strings.NewReader(body))
	if err != nil {
		return 0, errors.Wrap(err, errors.CategoryValidation, errors.SeverityError, "build push request").
			WithContext("url", p.url)
	}
	req.Header.Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, errors.NetworkError(p.url, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, errors.UnexpectedStatus(p.url, resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return resp.StatusCode, nil
}

// ValidatePushGatewayURL reports whether metrics export is enabled for url. An empty
// url disables export; a url without a /job/ segment cannot name a grouping key and
// is rejected.
func ValidatePushGatewayURL(url string) (bool, error) {
	if strings.TrimSpace(url) == "" {
		return false, nil
	}
	if !strings.Contains(url, "/job/") {
		return false, errors.ValidationFailed("prometheus_push_gateway_url",
			"must contain the job name, e.g. http(s)://<host>(:<port>)/metrics/job/<job-name>/<labelname1>/<labelvalue1>/...")
	}
	return true, nil
}
