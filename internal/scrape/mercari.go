package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"marketwatch/internal/domain"
	"marketwatch/internal/fetch"
)

const mercariBaseURL = "https://jp.mercari.com"

// MercariScraper extracts listings from the JSON payloads Mercari embeds in
// script tags on its search results page. Item data sits behind a fixed
// nested path; the first script block that yields a non-empty items array
// wins and scanning stops.
type MercariScraper struct {
	client  *fetch.Client
	logger  *zap.Logger
	baseURL string
}

func NewMercariScraper(client *fetch.Client, logger *zap.Logger) *MercariScraper {
	return &MercariScraper{client: client, logger: logger, baseURL: mercariBaseURL}
}

func (s *MercariScraper) Source() string { return "Mercari" }

func (s *MercariScraper) Scrape(ctx context.Context, keyword string) ([]domain.Listing, error) {
	searchURL := fmt.Sprintf("%s/search?keyword=%s&status=on_sale", s.baseURL, url.QueryEscape(keyword))
	body, err := s.client.Get(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	var listings []domain.Listing
	doc.Find(`script[type="application/json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var payload any
		if err := json.Unmarshal([]byte(sel.Text()), &payload); err != nil {
			// malformed block, try the next one
			return true
		}

		raw, ok := lookupPath(payload, "props", "pageProps", "pageData", "searchPage", "items")
		if !ok {
			return true
		}
		items, ok := raw.([]any)
		if !ok || len(items) == 0 {
			return true
		}

		for _, entry := range items {
			item, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			id := stringValue(item["id"])
			name := stringValue(item["name"])
			price, hasPrice := numericValue(item["price"])
			if id == "" || name == "" || !hasPrice {
				continue
			}
			listings = append(listings, domain.Listing{
				Source: s.Source(),
				Title:  name,
				Price:  domain.FormatGroupedYen(price),
				URL:    fmt.Sprintf("%s/item/%s", s.baseURL, id),
			})
		}

		// stop once a block produced listings
		return len(listings) == 0
	})

	if len(listings) == 0 {
		s.logger.Warn("no structured data block matched",
			zap.String("source", s.Source()),
			zap.String("keyword", keyword))
	}
	return listings, nil
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

// numericValue accepts the price field as either a JSON number or a string
// of digits, which the upstream payload has served both ways.
func numericValue(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
