// Package imaging is the client for the external image-processing endpoint:
// one image in, a bounded-dimension optimized render plus a fixed-size
// thumbnail out.
package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/salamituns/visualmenu/internal/domain"
)

// Processed holds both decoded outputs. The endpoint re-encodes to JPEG at a
// fixed quality, so the mime type is constant.
type Processed struct {
	Optimized []byte
	Thumbnail []byte
	MimeType  string
}

type Client struct {
	endpoint string
	client   *http.Client
}

func New(endpoint string) *Client {
	return &Client{endpoint: endpoint, client: &http.Client{}}
}

// Enabled reports whether an endpoint is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.endpoint != ""
}

type response struct {
	Optimized string `json:"optimized"`
	Thumbnail string `json:"thumbnail"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Process uploads the image as multipart form data. Any non-success status is
// total failure; there is never partial output.
func (c *Client) Process(ctx context.Context, filename string, image io.Reader) (*Processed, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("image processing: %w", domain.ErrNotProvisioned)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("failed to buffer image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call imaging endpoint: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("imaging endpoint rejected credentials: %w", domain.ErrNotProvisioned)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return nil, fmt.Errorf("imaging endpoint returned status %d: %s", resp.StatusCode, e.Error)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode imaging response: %w", err)
	}

	optimized, err := base64.StdEncoding.DecodeString(body.Optimized)
	if err != nil {
		return nil, fmt.Errorf("failed to decode optimized image: %w", err)
	}
	thumbnail, err := base64.StdEncoding.DecodeString(body.Thumbnail)
	if err != nil {
		return nil, fmt.Errorf("failed to decode thumbnail: %w", err)
	}

	return &Processed{Optimized: optimized, Thumbnail: thumbnail, MimeType: "image/jpeg"}, nil
}
