// Package httpocr calls a cloud OCR endpoint that returns positioned text
// regions with confidence scores.
package httpocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/salamituns/visualmenu/internal/domain"
	"github.com/salamituns/visualmenu/internal/menuscan"
)

type Client struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func New(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{},
	}
}

type request struct {
	Image    string `json:"image"`
	MimeType string `json:"mime_type"`
}

type response struct {
	Regions []struct {
		Text       string  `json:"text"`
		X          float64 `json:"x"`
		Y          float64 `json:"y"`
		Confidence float64 `json:"confidence"`
	} `json:"regions"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Extract uploads the image and runs the positioned words through the line
// extraction. Any non-success status is total failure; 401/403 map to the
// not-provisioned sentinel so callers can tell a missing subscription apart
// from a transient outage.
func (c *Client) Extract(ctx context.Context, r io.Reader, mimeType string) ([]menuscan.ScannedItem, error) {
	imageData, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	payload, err := json.Marshal(request{
		Image:    base64.StdEncoding.EncodeToString(imageData),
		MimeType: mimeType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call ocr endpoint: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("ocr endpoint rejected credentials: %w", domain.ErrNotProvisioned)
	}
	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return nil, fmt.Errorf("ocr endpoint returned status %d: %s", resp.StatusCode, e.Error)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode ocr response: %w", err)
	}

	words := make([]menuscan.Word, 0, len(body.Regions))
	for _, region := range body.Regions {
		words = append(words, menuscan.Word{
			Text:       region.Text,
			X:          region.X,
			Y:          region.Y,
			Confidence: region.Confidence,
		})
	}
	return menuscan.ItemsFromWords(words), nil
}
