package series

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Source is a byte resource holding newline-delimited samples.
type Source interface {
	// Open starts the fetch. It is the only blocking step of a load.
	Open(ctx context.Context) (io.ReadCloser, error)
	String() string
}

// FileSource reads samples from a local file.
type FileSource struct {
	Path string
}

func (s FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(s.Path)
}

func (s FileSource) String() string { return s.Path }

// HTTPSource fetches samples over HTTP(S). A non-2xx status counts as unavailable.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// DefaultHTTPTimeout bounds a fetch when the caller provides no client.
const DefaultHTTPTimeout = 30 * time.Second

func (s HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected HTTP status %s", resp.Status)
	}
	return resp.Body, nil
}

func (s HTTPSource) String() string { return s.URL }

// NewSource picks an HTTPSource for http(s) URLs and a FileSource otherwise.
func NewSource(location string, client *http.Client) Source {
	l := strings.TrimSpace(location)
	lower := strings.ToLower(l)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return HTTPSource{URL: l, Client: client}
	}
	return FileSource{Path: l}
}
