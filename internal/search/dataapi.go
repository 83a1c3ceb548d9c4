package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/jaki95/playlist-downloader/config"
	"github.com/jaki95/playlist-downloader/internal/domain"
)

const dataAPIMaxResults = 25

// DataAPIProvider searches through the YouTube Data API v3 and applies the
// same provenance filter as the scraper.
type DataAPIProvider struct {
	baseURL    string
	apiKey     string
	marker     string
	httpClient *http.Client
}

func NewDataAPIProvider(cfg config.SearchConfig, httpClient *http.Client) (*DataAPIProvider, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &DataAPIProvider{
		baseURL:    strings.TrimRight(cfg.APIBaseURL, "/"),
		apiKey:     cfg.APIKey,
		marker:     cfg.Marker,
		httpClient: httpClient,
	}, nil
}

func (p *DataAPIProvider) Name() string {
	return ProviderAPI
}

type dataAPIResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Description string `json:"description"`
		} `json:"snippet"`
	} `json:"items"`
}

func (p *DataAPIProvider) FindVideoIDs(ctx context.Context, query string) ([]string, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("maxResults", fmt.Sprintf("%d", dataAPIMaxResults))
	params.Set("q", query)
	params.Set("key", p.apiKey)

	reqURL := fmt.Sprintf("%s/search?%s", p.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	var result dataAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	candidates := make([]domain.VideoCandidate, 0, len(result.Items))
	for _, item := range result.Items {
		if item.ID.VideoID == "" {
			continue
		}
		candidates = append(candidates, domain.VideoCandidate{
			VideoID:     item.ID.VideoID,
			Description: item.Snippet.Description,
		})
	}

	ids := FilterByMarker(candidates, p.marker)
	slog.Debug("Data API search finished", "query", query, "candidates", len(candidates), "matches", len(ids))
	return ids, nil
}
