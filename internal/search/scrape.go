package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly"

	"github.com/jaki95/playlist-downloader/config"
)

// ScrapeProvider reads results from the video site's search page, which
// embeds them as a JSON blob inside a script block.
type ScrapeProvider struct {
	baseURL   string
	userAgent string
	marker    string
	markers   []config.MarkerPair
	timeout   time.Duration
}

func NewScrapeProvider(cfg config.SearchConfig) *ScrapeProvider {
	return &ScrapeProvider{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		marker:    cfg.Marker,
		markers:   cfg.Markers,
		timeout:   cfg.Timeout,
	}
}

func (p *ScrapeProvider) Name() string {
	return ProviderScrape
}

// FindVideoIDs returns the ids of results whose description contains the
// provenance marker. A page without the expected structure is an error.
func (p *ScrapeProvider) FindVideoIDs(ctx context.Context, query string) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	page, err := p.fetch(p.searchURL(query))
	if err != nil {
		return nil, err
	}

	data, err := ParseInitialData(string(page), p.markers)
	if err != nil {
		if errors.Is(err, ErrInitialDataNotFound) {
			return nil, fmt.Errorf("%w (page title %q)", err, pageTitle(page))
		}
		return nil, err
	}

	candidates, err := Candidates(data)
	if err != nil {
		return nil, err
	}
	for _, c := range candidates {
		slog.Debug("Search candidate", "videoID", c.VideoID, "description", c.Description)
	}

	ids := FilterByMarker(candidates, p.marker)
	slog.Debug("Search finished", "query", query, "candidates", len(candidates), "matches", len(ids))
	return ids, nil
}

func (p *ScrapeProvider) searchURL(query string) string {
	return fmt.Sprintf("%s/results?search_query=%s", p.baseURL, url.QueryEscape(query))
}

func (p *ScrapeProvider) fetch(searchURL string) ([]byte, error) {
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.UserAgent(p.userAgent),
	)
	if p.timeout > 0 {
		c.SetRequestTimeout(p.timeout)
	}

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.5")
		r.Headers.Set("Connection", "keep-alive")
		r.Headers.Set("Upgrade-Insecure-Requests", "1")
	})

	var body []byte
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	slog.Debug("Fetching search results", "url", searchURL)
	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("failed to fetch search results: %w", err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty search results page")
	}
	return body, nil
}

// pageTitle returns the document title, useful when the page is a consent
// or captcha interstitial instead of search results.
func pageTitle(page []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
