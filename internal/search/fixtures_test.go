package search

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func videoEntry(id string, runs ...string) map[string]any {
	renderer := map[string]any{}
	if id != "" {
		renderer["videoId"] = id
	}
	if runs != nil {
		snippetRuns := make([]any, 0, len(runs))
		for _, r := range runs {
			snippetRuns = append(snippetRuns, map[string]any{"text": r})
		}
		renderer["descriptionSnippet"] = map[string]any{"runs": snippetRuns}
	}
	return map[string]any{"videoRenderer": renderer}
}

func initialData(entries ...any) map[string]any {
	return map[string]any{
		"contents": map[string]any{
			"twoColumnSearchResultsRenderer": map[string]any{
				"primaryContents": map[string]any{
					"sectionListRenderer": map[string]any{
						"contents": []any{
							map[string]any{
								"itemSectionRenderer": map[string]any{
									"contents": entries,
								},
							},
						},
					},
				},
			},
		},
	}
}

// mixedResults holds two marked videos (aaa, eee) among entries that must be
// filtered out for different reasons.
func mixedResults() map[string]any {
	return initialData(
		videoEntry("aaa", "Provided to YouTube by ", "Warp Records"),
		videoEntry("bbb", "Live at Wembley"),
		map[string]any{"channelRenderer": map[string]any{"channelId": "ch"}},
		videoEntry("ccc"),
		map[string]any{"videoRenderer": map[string]any{"videoId": "ddd", "descriptionSnippet": map[string]any{}}},
		videoEntry("", "Provided to YouTube by nobody"),
		videoEntry("eee", "Provided to YouTube", " by Sony"),
	)
}

func legacyPage(t *testing.T, data map[string]any) string {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return fmt.Sprintf(`<!DOCTYPE html><html><head><title>results - YouTube</title></head><body>
<script>
    window["ytInitialData"] = %s;
    window["ytInitialPlayerResponse"] = null;
</script>
</body></html>`, raw)
}

func currentPage(t *testing.T, data map[string]any) string {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return fmt.Sprintf(`<!DOCTYPE html><html><head><title>results - YouTube</title></head><body>
<script nonce="x">var ytInitialData = %s;</script>
<script>var ytInitialPlayerResponse = null;</script>
</body></html>`, raw)
}
