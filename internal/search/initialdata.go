package search

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jaki95/playlist-downloader/config"
	"github.com/jaki95/playlist-downloader/internal/domain"
	"github.com/jaki95/playlist-downloader/internal/textutil"
)

// resultsPath leads from the initial data root to the ordered search results.
var resultsPath = []any{
	"contents",
	"twoColumnSearchResultsRenderer",
	"primaryContents",
	"sectionListRenderer",
	"contents", 0,
	"itemSectionRenderer",
	"contents",
}

// PathError reports a key or index missing from the initial data.
type PathError struct {
	Path string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("initial data has no %s", e.Path)
}

// ParseInitialData isolates the JSON assigned to the page's initial data
// variable using the first marker pair that yields valid JSON.
func ParseInitialData(page string, markers []config.MarkerPair) (map[string]any, error) {
	var lastErr error = ErrInitialDataNotFound
	for _, m := range markers {
		raw := strings.TrimSpace(textutil.Between(page, m.Start, m.End))
		if raw == "" {
			continue
		}
		// drop the statement terminator
		raw = raw[:len(raw)-1]

		var data map[string]any
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			lastErr = fmt.Errorf("%w: %v", ErrInitialDataInvalid, err)
			continue
		}
		return data, nil
	}
	return nil, lastErr
}

// Candidates walks the search results and returns every video entry that
// carries a description snippet, in page order.
func Candidates(data map[string]any) ([]domain.VideoCandidate, error) {
	node, err := lookup(data, resultsPath)
	if err != nil {
		return nil, err
	}
	entries, ok := node.([]any)
	if !ok {
		return nil, &PathError{Path: formatPath(resultsPath)}
	}

	var candidates []domain.VideoCandidate
	for _, e := range entries {
		entry, ok := e.(map[string]any)
		if !ok {
			continue
		}
		renderer, ok := entry["videoRenderer"].(map[string]any)
		if !ok {
			continue
		}
		videoID, ok := renderer["videoId"].(string)
		if !ok || videoID == "" {
			continue
		}
		snippet, ok := renderer["descriptionSnippet"].(map[string]any)
		if !ok {
			continue
		}
		runs, ok := snippet["runs"].([]any)
		if !ok {
			continue
		}

		var description strings.Builder
		for _, r := range runs {
			run, ok := r.(map[string]any)
			if !ok {
				continue
			}
			if text, ok := run["text"].(string); ok {
				description.WriteString(text)
			}
		}

		candidates = append(candidates, domain.VideoCandidate{
			VideoID:     videoID,
			Description: description.String(),
		})
	}
	return candidates, nil
}

// FilterByMarker keeps the ids of candidates whose description contains marker.
func FilterByMarker(candidates []domain.VideoCandidate, marker string) []string {
	var ids []string
	for _, c := range candidates {
		if strings.Contains(c.Description, marker) {
			ids = append(ids, c.VideoID)
		}
	}
	return ids
}

func lookup(node any, path []any) (any, error) {
	for i, step := range path {
		switch key := step.(type) {
		case string:
			obj, ok := node.(map[string]any)
			if !ok {
				return nil, &PathError{Path: formatPath(path[:i+1])}
			}
			if node, ok = obj[key]; !ok {
				return nil, &PathError{Path: formatPath(path[:i+1])}
			}
		case int:
			arr, ok := node.([]any)
			if !ok || key >= len(arr) {
				return nil, &PathError{Path: formatPath(path[:i+1])}
			}
			node = arr[key]
		}
	}
	return node, nil
}

func formatPath(path []any) string {
	var b strings.Builder
	for _, step := range path {
		switch key := step.(type) {
		case string:
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(key)
		case int:
			fmt.Fprintf(&b, "[%d]", key)
		}
	}
	return b.String()
}
