package scrape

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"marketwatch/internal/domain"
	"marketwatch/internal/fetch"
)

const yahooBaseURL = "https://auctions.yahoo.co.jp"

// YahooAuctionScraper selects listing cards straight out of the Yahoo
// Auctions search results markup. An item needs both a title link and a
// price label; anything partial is dropped, not defaulted.
type YahooAuctionScraper struct {
	client  *fetch.Client
	logger  *zap.Logger
	baseURL string
}

func NewYahooAuctionScraper(client *fetch.Client, logger *zap.Logger) *YahooAuctionScraper {
	return &YahooAuctionScraper{client: client, logger: logger, baseURL: yahooBaseURL}
}

func (s *YahooAuctionScraper) Source() string { return "Yahoo Auctions" }

func (s *YahooAuctionScraper) Scrape(ctx context.Context, keyword string) ([]domain.Listing, error) {
	escaped := url.QueryEscape(keyword)
	searchURL := fmt.Sprintf("%s/search/search?p=%s&va=%s", s.baseURL, escaped, escaped)
	body, err := s.client.Get(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	var listings []domain.Listing
	doc.Find("li.Product").Each(func(_ int, product *goquery.Selection) {
		titleLink := product.Find("a.Product__titleLink").First()
		priceLabel := product.Find(".Product__priceValue").First()
		if titleLink.Length() == 0 || priceLabel.Length() == 0 {
			return
		}
		href, ok := titleLink.Attr("href")
		if !ok || href == "" {
			return
		}
		listings = append(listings, domain.Listing{
			Source: s.Source(),
			Title:  strings.TrimSpace(titleLink.Text()),
			Price:  strings.TrimSpace(priceLabel.Text()),
			URL:    href,
		})
	})

	if len(listings) == 0 {
		s.logger.Warn("no product cards matched, markup may have changed",
			zap.String("source", s.Source()),
			zap.String("keyword", keyword))
	}
	return listings, nil
}
