package loader

import (
	"bytes"
	"context"
	"embed"
	"io"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/JonMunkholm/jobboard/internal/core"
)

// SampleFile is the bundled feed used when no remote source is configured.
const SampleFile = "sample-jobs.csv"

//go:embed sample-jobs.csv
var sampleFS embed.FS

// DefaultFetchTimeout bounds a single HTTP fetch when the caller supplies no client.
const DefaultFetchTimeout = 30 * time.Second

// Source yields raw CSV text. Any transport that returns the whole feed
// as bytes satisfies it.
type Source interface {
	// Name identifies the source in logs and status output.
	Name() string
	// Fetch returns the full feed. Failures are *core.FetchError.
	Fetch(ctx context.Context) ([]byte, error)
}

// HTTPSource fetches the feed with a GET request.
type HTTPSource struct {
	URL      string
	MaxBytes int64
	client   *http.Client
}

// NewHTTPSource creates an HTTP source. A nil client gets DefaultFetchTimeout.
func NewHTTPSource(url string, client *http.Client, maxBytes int64) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	return &HTTPSource{URL: url, MaxBytes: maxBytes, client: client}
}

func (s *HTTPSource) Name() string { return s.URL }

// Fetch performs one GET. Non-2xx statuses, empty bodies and transport
// failures all return *core.FetchError.
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, networkError(err)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &core.FetchError{
			StatusCode: resp.StatusCode,
			Message:    "Failed to fetch CSV: " + http.StatusText(resp.StatusCode),
		}
	}

	body, err := io.ReadAll(core.NewLimitedReader(resp.Body, s.MaxBytes))
	if err != nil {
		return nil, networkError(err)
	}
	return nonEmpty(body)
}

// FSSource reads the feed from a file system. The bundled sample is an
// FSSource over the embedded files.
type FSSource struct {
	FS   fs.FS
	Path string
}

// SampleSource returns the bundled sample feed.
func SampleSource() *FSSource {
	return &FSSource{FS: sampleFS, Path: SampleFile}
}

func (s *FSSource) Name() string { return s.Path }

func (s *FSSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, networkError(err)
	}
	data, err := fs.ReadFile(s.FS, s.Path)
	if err != nil {
		return nil, &core.FetchError{Message: "Failed to fetch CSV: " + err.Error(), Err: err}
	}
	return nonEmpty(data)
}

// FileSource reads the feed from a path on local disk.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return s.Path }

func (s FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, networkError(err)
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, &core.FetchError{Message: "Failed to fetch CSV: " + err.Error(), Err: err}
	}
	return nonEmpty(data)
}

func networkError(err error) error {
	return &core.FetchError{Message: "Network error: " + err.Error(), Err: err}
}

func nonEmpty(body []byte) ([]byte, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &core.FetchError{Message: "CSV file is empty"}
	}
	return body, nil
}
