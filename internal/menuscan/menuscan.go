// Package menuscan turns OCR output from a photographed menu into structured
// menu-item candidates.
package menuscan

import (
	"context"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Extractor produces unfiltered menu-item candidates from a menu photo.
// Backends either return positioned words run through ItemsFromWords, or a
// structured extraction scored by the model itself.
type Extractor interface {
	Extract(ctx context.Context, r io.Reader, mimeType string) ([]ScannedItem, error)
}

// Word is one recognized token with its top-left position and the OCR
// engine's confidence in [0, 1].
type Word struct {
	Text       string
	X          float64
	Y          float64
	Confidence float64
}

// ScannedItem is one extracted menu-item candidate.
type ScannedItem struct {
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Confidence float64 `json:"confidence"`
}

// lineTolerancePx is the vertical clustering tolerance: words whose Y
// positions differ by no more than this belong to the same line.
const lineTolerancePx = 12.0

// MinConfidence is the acceptance threshold for extracted items.
const MinConfidence = 0.7

// priceRe matches currency-like tokens: an optional currency symbol, digits,
// and an optional two-digit decimal part with either separator.
var priceRe = regexp.MustCompile(`^[$€£]?\s?(\d{1,5}(?:[.,]\d{1,2})?)$`)

// ExtractItems groups words into lines by vertical position, orders each line
// left-to-right, and accumulates name tokens until a price token closes out
// the current item. Items below MinConfidence or without a positive price are
// discarded.
func ExtractItems(words []Word) []ScannedItem {
	return Filter(ItemsFromWords(words))
}

// ItemsFromWords runs the line-clustering extraction without the confidence
// and price filters.
func ItemsFromWords(words []Word) []ScannedItem {
	items := make([]ScannedItem, 0)
	for _, line := range clusterLines(words) {
		items = append(items, extractFromLine(line)...)
	}
	return items
}

// Filter drops candidates that fail the confidence threshold or lack a
// positive price.
func Filter(items []ScannedItem) []ScannedItem {
	out := make([]ScannedItem, 0, len(items))
	for _, it := range items {
		if it.Confidence < MinConfidence {
			continue
		}
		if it.Price <= 0 {
			continue
		}
		if strings.TrimSpace(it.Name) == "" {
			continue
		}
		out = append(out, it)
	}
	return out
}

// clusterLines buckets words into lines: words sorted by Y, a new line starts
// whenever the gap from the line's first word exceeds the tolerance. Each
// line is then ordered left-to-right.
func clusterLines(words []Word) [][]Word {
	if len(words) == 0 {
		return nil
	}
	sorted := make([]Word, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y < sorted[j].Y })

	lines := make([][]Word, 0)
	current := []Word{sorted[0]}
	anchor := sorted[0].Y
	for _, w := range sorted[1:] {
		if w.Y-anchor > lineTolerancePx {
			lines = append(lines, current)
			current = []Word{w}
			anchor = w.Y
			continue
		}
		current = append(current, w)
	}
	lines = append(lines, current)

	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool { return line[i].X < line[j].X })
	}
	return lines
}

// extractFromLine walks a line's words left to right, accumulating name
// tokens; a currency-like token closes the current item with that price.
func extractFromLine(line []Word) []ScannedItem {
	items := make([]ScannedItem, 0)
	var nameParts []string
	var confSum float64

	flush := func(price float64, priceConf float64) {
		n := len(nameParts)
		conf := priceConf
		if n > 0 {
			conf = (confSum + priceConf) / float64(n+1)
		}
		items = append(items, ScannedItem{
			Name:       strings.Join(nameParts, " "),
			Price:      price,
			Confidence: conf,
		})
		nameParts = nil
		confSum = 0
	}

	for _, w := range line {
		if price, ok := parsePrice(w.Text); ok {
			flush(price, w.Confidence)
			continue
		}
		nameParts = append(nameParts, w.Text)
		confSum += w.Confidence
	}
	// Trailing words without a price never become an item.
	return items
}

func parsePrice(token string) (float64, bool) {
	m := priceRe.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
