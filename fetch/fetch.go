// Package fetch downloads remote content for encoding.
//
// Download never returns an error: batch callers get nil for any failure and
// the failure is logged.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Fetcher downloads URLs over HTTP.
type Fetcher struct {
	// Client defaults to http.DefaultClient.
	Client *http.Client
	// Log defaults to the logrus standard logger.
	Log logrus.FieldLogger
	// MaxBytes caps the body size when non-zero; larger bodies are failures.
	MaxBytes int64
}

// Download returns the body of url, or nil if the request fails, the server
// answers with a non-2xx status, or the body cannot be read.
func (f *Fetcher) Download(ctx context.Context, url string) []byte {
	b, err := f.get(ctx, url)
	if err != nil {
		f.log().WithField("url", url).WithError(err).Warn("download failed")
		return nil
	}
	return b
}

// Download uses a zero Fetcher.
func Download(ctx context.Context, url string) []byte {
	var f Fetcher
	return f.Download(ctx, url)
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch: unexpected status %s", resp.Status)
	}

	var body io.Reader = resp.Body
	if f.MaxBytes > 0 {
		body = io.LimitReader(resp.Body, f.MaxBytes+1)
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if f.MaxBytes > 0 && int64(len(b)) > f.MaxBytes {
		return nil, fmt.Errorf("fetch: body exceeds %d bytes", f.MaxBytes)
	}
	return b, nil
}

func (f *Fetcher) log() logrus.FieldLogger {
	if f.Log == nil {
		return logrus.StandardLogger()
	}
	return f.Log
}
