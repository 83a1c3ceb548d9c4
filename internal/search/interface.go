// Package search finds video identifiers for a track query.
package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jaki95/playlist-downloader/config"
)

// Provider returns candidate video ids for a query, best match first.
type Provider interface {
	FindVideoIDs(ctx context.Context, query string) ([]string, error)
	Name() string
}

const (
	ProviderScrape = "scrape"
	ProviderAPI    = "api"
)

var (
	ErrInitialDataNotFound = errors.New("initial data not found in search page")
	ErrInitialDataInvalid  = errors.New("initial data is not valid JSON")
	ErrNoAPIKey            = errors.New("YouTube Data API key not set")
)

// New returns the provider selected by cfg.Provider.
func New(cfg config.SearchConfig) (Provider, error) {
	switch cfg.Provider {
	case ProviderScrape, "":
		return NewScrapeProvider(cfg), nil
	case ProviderAPI:
		provider, err := NewDataAPIProvider(cfg, &http.Client{Timeout: cfg.Timeout})
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unknown search provider: %s", cfg.Provider)
	}
}
