// Package fetch resolves a document source reference into raw bytes.
// Supported references are http(s) URLs and s3://bucket/key objects.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"billex/internal/config"
	"billex/internal/domain"
	"billex/internal/port"
)

// Fetcher downloads documents from remote references. It performs no
// retries; a transient failure surfaces immediately as domain.ErrFetch.
type Fetcher struct {
	client   *http.Client
	storage  port.ObjectStorage
	maxBytes int64
}

// NewFetcher creates a Fetcher. storage may be nil, in which case s3://
// references are rejected.
func NewFetcher(cfg *config.FetchConfig, storage port.ObjectStorage) *Fetcher {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	maxBytes := cfg.MaxFileSizeMB * 1024 * 1024
	if maxBytes == 0 {
		maxBytes = 20 * 1024 * 1024
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		storage:  storage,
		maxBytes: maxBytes,
	}
}

// Fetch downloads the document the reference points at.
func (f *Fetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid document reference %q: %v", domain.ErrFetch, ref, err)
	}

	switch u.Scheme {
	case "http", "https":
		return f.fetchHTTP(ctx, ref)
	case "s3":
		return f.fetchS3(ctx, u)
	default:
		return nil, fmt.Errorf("%w: unsupported document reference scheme %q", domain.ErrFetch, u.Scheme)
	}
}

func (f *Fetcher) fetchHTTP(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetch, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned status %d", domain.ErrFetch, rawURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", domain.ErrFetch, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: document larger than %d bytes", domain.ErrFileTooLarge, f.maxBytes)
	}
	return data, nil
}

func (f *Fetcher) fetchS3(ctx context.Context, u *url.URL) ([]byte, error) {
	if f.storage == nil {
		return nil, fmt.Errorf("%w: s3 references require object storage configuration", domain.ErrFetch)
	}

	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("%w: s3 reference must be s3://bucket/key", domain.ErrFetch)
	}

	data, err := f.storage.Download(ctx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetch, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: document larger than %d bytes", domain.ErrFileTooLarge, f.maxBytes)
	}
	return data, nil
}
