// Package claude extracts menu items with the Anthropic Messages API instead
// of a positional OCR pass: the model reads the photo and emits one
// structured line per item.
package claude

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/salamituns/visualmenu/internal/menuscan"
)

// extractionPrompt asks for one item per line so parsing stays trivial.
const extractionPrompt = `This is a photo of a restaurant menu. List every menu item you can read.
For each item respond with exactly one line in the format:
name | price | confidence
where price is a plain decimal number without a currency symbol and
confidence is your certainty in the reading from 0.0 to 1.0.
Do not include headers, sections, or any other text.`

type Extractor struct {
	client *anthropic.Client
	model  string
}

func New(apiKey, model string) *Extractor {
	return &Extractor{
		client: anthropic.NewClient(apiKey),
		model:  model,
	}
}

func (e *Extractor) Extract(ctx context.Context, r io.Reader, mimeType string) ([]menuscan.ScannedItem, error) {
	imageData, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	resp, err := e.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(e.model),
		MaxTokens: 2048,
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewImageMessageContent(anthropic.NewMessageContentSource(
						anthropic.MessagesContentSourceTypeBase64, normalizeMIME(mimeType), imageData)),
					anthropic.NewTextMessageContent(extractionPrompt),
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call claude: %w", err)
	}

	var text string
	for _, content := range resp.Content {
		if content.Type == anthropic.MessagesContentTypeText {
			text = content.GetText()
			break
		}
	}
	return parseResponse(text), nil
}

// parseResponse parses "name | price | confidence" lines, skipping anything
// that does not fit the format.
func parseResponse(raw string) []menuscan.ScannedItem {
	items := make([]menuscan.ScannedItem, 0)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) < 2 {
			continue
		}

		name := strings.TrimSpace(parts[0])
		if name == "" {
			continue
		}
		price, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(parts[1]), ",", "."), 64)
		if err != nil {
			continue
		}

		// Missing confidence reads as fully confident; the shared filter
		// still applies the price check.
		confidence := 1.0
		if len(parts) >= 3 {
			if v, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64); err == nil {
				confidence = v
			}
		}

		items = append(items, menuscan.ScannedItem{
			Name:       name,
			Price:      price,
			Confidence: confidence,
		})
	}
	return items
}

func normalizeMIME(mimeType string) string {
	switch mimeType {
	case "image/png", "image/gif", "image/webp":
		return mimeType
	default:
		return "image/jpeg"
	}
}
