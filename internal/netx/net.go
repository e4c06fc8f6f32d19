// Package netx downloads attachment files referenced by expense lines.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
)

// DefaultAttachmentName is used when a URL carries no usable file name.
const DefaultAttachmentName = "adjunto.jpg"

// Open issues a GET for url and returns the response body with the
// Content-Length reported by the server, or -1. Any non-200 status is an
// error. The caller closes the body.
func Open(ctx context.Context, client *http.Client, url string) (io.ReadCloser, int64, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, -1, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, -1, err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, resp.ContentLength, fmt.Errorf("download failed: %s; body: %s", resp.Status, string(b))
	}
	return resp.Body, resp.ContentLength, nil
}

// FileNameFromURL returns the last path segment of url without query or
// fragment, falling back to DefaultAttachmentName.
func FileNameFromURL(url string) string {
	clean, _, _ := strings.Cut(url, "?")
	clean, _, _ = strings.Cut(clean, "#")
	name := path.Base(clean)
	if name == "" || name == "." || name == "/" || strings.HasSuffix(clean, "/") {
		return DefaultAttachmentName
	}
	return name
}
