package transport

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/richard-senior/apex/internal/logger"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

var (
	httpClient     *http.Client
	httpClientOnce sync.Once
)

// extraRootCAs loads the PEM bundle named by APEX_CA_BUNDLE, if set.
// Corporate proxies that re-sign TLS need this.
func extraRootCAs() []byte {
	path := os.Getenv("APEX_CA_BUNDLE")
	if path == "" {
		return nil
	}
	pem, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Failed to read CA bundle", path, err)
		return nil
	}
	return pem
}

// GetCustomHTTPClient returns the shared HTTP client with the system roots plus any extra CA bundle
func GetCustomHTTPClient() *http.Client {
	httpClientOnce.Do(func() {
		rootCAs, err := x509.SystemCertPool()
		if err != nil {
			logger.Warn("Failed to get system cert pool", err)
			rootCAs = x509.NewCertPool()
		}
		if pem := extraRootCAs(); pem != nil {
			if ok := rootCAs.AppendCertsFromPEM(pem); !ok {
				logger.Warn("Failed to append CA bundle")
			} else {
				logger.Info("Added CA bundle to root CAs")
			}
		}

		httpClient = &http.Client{
			Transport: &http.Transport{
				TLSClientConfig:    &tls.Config{RootCAs: rootCAs},
				Proxy:              http.ProxyFromEnvironment,
				DisableCompression: true, // we negotiate br ourselves
			},
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				return nil
			},
		}
	})
	return httpClient
}

// StatusError is returned for non-200 responses
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request to %s returned error status %d", e.URL, e.Code)
}

// GetJSON fetches url with client and returns the decoded body.
// A nil client means the shared client.
func GetJSON(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = GetCustomHTTPClient()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}
	return ReadBody(resp)
}

// ReadBody reads a response body, undoing any gzip, deflate or brotli Content-Encoding
func ReadBody(resp *http.Response) ([]byte, error) {
	var reader io.ReadCloser = resp.Body
	switch enc := resp.Header.Get("Content-Encoding"); enc {
	case "gzip":
		var err error
		reader, err = NewGzipReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer reader.Close()
	case "deflate":
		reader, _ = NewDeflateReader(resp.Body)
		defer reader.Close()
	case "br":
		reader, _ = NewBrotliReader(resp.Body)
		defer reader.Close()
	case "", "identity":
	default:
		logger.Warn("Unknown content encoding:", enc)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	return data, nil
}

// NewGzipReader creates a gzip reader from the provided io.ReadCloser
func NewGzipReader(r io.ReadCloser) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

// NewDeflateReader creates a deflate reader from the provided io.ReadCloser
func NewDeflateReader(r io.ReadCloser) (io.ReadCloser, error) {
	return flate.NewReader(r), nil
}

// NewBrotliReader creates a brotli reader from the provided io.ReadCloser
func NewBrotliReader(r io.ReadCloser) (io.ReadCloser, error) {
	return io.NopCloser(brotli.NewReader(r)), nil
}
