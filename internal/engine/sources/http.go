package sources

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/chrontax/cra/internal/engine"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/samber/lo"
)

const DefaultHTTPTimeout = 30 * time.Second

var defaultHeaders = map[string]string{
	"User-Agent": "cra/0.1.0",
	"Accept":     "application/zip, application/x-tar, application/x-7z-compressed, */*",
}

type HTTPConfig struct {
	// Headers are sent with every request, on top of the default ones.
	Headers map[string]string
	Auth    *BasicAuthConfig
	// Timeout bounds a whole download. Zero means DefaultHTTPTimeout.
	Timeout  time.Duration
	Insecure bool
}

type BasicAuthConfig struct {
	Username string
	Password string
}

// HTTPSource downloads archives from absolute http(s) URLs with a plain GET.
type HTTPSource struct {
	httpClient *http.Client
	headers    map[string]string
}

type HTTPOption func(*HTTPSource)

func WithHTTPClient(httpClient *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		s.httpClient = httpClient
	}
}

func NewHTTPSource(cfg HTTPConfig, opts ...HTTPOption) (engine.Source, error) {
	source := &HTTPSource{}

	headers := lo.Assign(defaultHeaders, cfg.Headers)
	if cfg.Auth != nil {
		headers["Authorization"] = "Basic " + base64.StdEncoding.EncodeToString([]byte(cfg.Auth.Username+":"+cfg.Auth.Password))
	}
	source.headers = headers

	for _, opt := range opts {
		opt(source)
	}

	if source.httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultHTTPTimeout
		}

		transport := cleanhttp.DefaultPooledTransport()
		if cfg.Insecure {
			if transport.TLSClientConfig == nil {
				transport.TLSClientConfig = &tls.Config{}
			}

			transport.TLSClientConfig.InsecureSkipVerify = true
		}

		source.httpClient = &http.Client{
			Transport: transport,
			Timeout:   timeout,
		}
	}

	return source, nil
}

func parseHTTPURL(raw string) (*url.URL, error) {
	parsedURL, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse url '%s': %w", raw, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("url must use http or https scheme, got: %q", parsedURL.Scheme)
	}

	return parsedURL, nil
}

func (s *HTTPSource) Name() string {
	return "http"
}

func (s *HTTPSource) Kind() string {
	return "http"
}

func (s *HTTPSource) Read(ctx context.Context, path string) ([]byte, error) {
	target, err := parseHTTPURL(path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", target.Redacted(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to fetch %s: unexpected status %s", target.Redacted(), resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body from %s: %w", target.Redacted(), err)
	}

	return data, nil
}

func (s *HTTPSource) Close(ctx context.Context) error {
	return nil
}
