package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaki95/playlist-downloader/internal/domain"
	"github.com/jaki95/playlist-downloader/internal/progress"
)

func TestRun_RequiresTwoArguments(t *testing.T) {
	var stdout, stderr bytes.Buffer

	assert.Equal(t, 1, run(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "accepts 2 arg(s)")

	stdout.Reset()
	stderr.Reset()
	assert.Equal(t, 1, run([]string{"token"}, &stdout, &stderr))
}

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer

	assert.Equal(t, 0, run([]string{"--help"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "playlist-downloader BEARER PLAYLISTID")
	assert.Contains(t, stdout.String(), "--playlist")
}

func TestRun_WithoutPlaylistExport(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run([]string{"token", "37i9dQZF1DXcBWIGoYBM5M", "-o", t.TempDir()}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "No local playlist export given")
}

func TestRun_MalformedPlaylist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playlist.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tracks": []}`), 0644))
	var stdout, stderr bytes.Buffer

	code := run([]string{"token", "id", "-p", path, "-o", t.TempDir()}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "malformed playlist")
}

func TestRun_EmptyPlaylist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playlist.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"items": []}`), 0644))
	var stdout, stderr bytes.Buffer

	code := run([]string{"token", "id", "-p", path, "-o", t.TempDir()}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "Downloaded 0 of 0 tracks")
}

func TestRun_InvalidProvider(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run([]string{"token", "id", "--provider", "bing"}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "invalid search provider")
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRun_ProviderFlagOverridesConfigFile(t *testing.T) {
	configPath := writeFile(t, "config.yaml", "search:\n  provider: bing\n")
	var stdout, stderr bytes.Buffer

	code := run([]string{"token", "id", "-c", configPath, "--provider", "scrape"}, &stdout, &stderr)
	assert.Equal(t, 0, code, stderr.String())

	stderr.Reset()
	code = run([]string{"token", "id", "-c", configPath}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "invalid search provider")
}

func TestRun_JSONLogFormatWritesProgressEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>results</title></head><body><script>var ytInitialData = {"contents":{"twoColumnSearchResultsRenderer":{"primaryContents":{"sectionListRenderer":{"contents":[{"itemSectionRenderer":{"contents":[]}}]}}}}};</script></body></html>`)
	}))
	defer server.Close()

	configPath := writeFile(t, "config.yaml", fmt.Sprintf("log_format: json\nsearch:\n  base_url: %s\n", server.URL))
	playlistPath := writeFile(t, "playlist.json", `{"items": [{"track": {"name": "Song", "artists": [{"name": "Band"}]}}]}`)
	var stdout, stderr bytes.Buffer

	code := run([]string{"token", "id", "-c", configPath, "-p", playlistPath, "-o", t.TempDir()}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stderr.String(), `"stage":"searching"`)
	assert.Contains(t, stderr.String(), `"stage":"complete"`)
	assert.Contains(t, stdout.String(), "no_match: Song by Band")
}

func TestEventWriter(t *testing.T) {
	var buf bytes.Buffer
	tracker := progress.NewTracker()
	tracker.AddListener(newEventWriter(&buf))

	tracker.StartTrack(1, 4, 0, "Song Band")
	tracker.Update(progress.StageComplete, "done")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), `"currentTrack":"Song Band"`)
	assert.Contains(t, string(lines[1]), `"progress":25`)
}

func TestPrintReport(t *testing.T) {
	report := &domain.Report{}
	report.Add(&domain.Result{Track: &domain.Track{Name: "Song", Artist: "Band"}, Outcome: domain.OutcomeDownloaded})
	report.Add(&domain.Result{Track: &domain.Track{Name: "Other", Artist: "Group"}, Outcome: domain.OutcomeNoMatch})

	var buf bytes.Buffer
	printReport(&buf, report)

	assert.Contains(t, buf.String(), "Downloaded 1 of 2 tracks")
	assert.Contains(t, buf.String(), "no_match: Other by Group")
	assert.NotContains(t, buf.String(), "Song by Band")
}

func TestProgressRenderer(t *testing.T) {
	var buf bytes.Buffer
	tracker := progress.NewTracker()
	tracker.AddListener(newProgressRenderer(&buf))

	tracker.StartTrack(1, 2, 0, "Song Band")
	tracker.Update(progress.StageComplete, "done")

	assert.Contains(t, buf.String(), "1/2")
	assert.Contains(t, buf.String(), "50%")
}
