// Package pipeline runs a playlist through search, fetch and storage.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jaki95/playlist-downloader/internal/audio"
	"github.com/jaki95/playlist-downloader/internal/domain"
	"github.com/jaki95/playlist-downloader/internal/downloader"
	"github.com/jaki95/playlist-downloader/internal/playlist"
	"github.com/jaki95/playlist-downloader/internal/progress"
	"github.com/jaki95/playlist-downloader/internal/search"
	"github.com/jaki95/playlist-downloader/internal/storage"
)

// Driver processes playlist tracks one at a time. A failing track is recorded
// in the report and never stops the batch.
type Driver struct {
	provider search.Provider
	fetcher  downloader.Fetcher
	tagger   audio.Tagger
	storage  storage.Storage
	tracker  *progress.Tracker
}

type Option func(*Driver)

// WithTagger writes track metadata into every fetched file.
func WithTagger(t audio.Tagger) Option {
	return func(d *Driver) { d.tagger = t }
}

// WithStorage hands every fetched file to s.
func WithStorage(s storage.Storage) Option {
	return func(d *Driver) { d.storage = s }
}

// WithTracker publishes per-track progress to t.
func WithTracker(t *progress.Tracker) Option {
	return func(d *Driver) { d.tracker = t }
}

func NewDriver(provider search.Provider, fetcher downloader.Fetcher, opts ...Option) *Driver {
	d := &Driver{
		provider: provider,
		fetcher:  fetcher,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.tracker == nil {
		d.tracker = progress.NewTracker()
	}
	return d
}

// DownloadPlaylist reads the export at path and fetches the first official
// upload of every track. Only an unreadable playlist or a cancelled context
// produce an error.
func (d *Driver) DownloadPlaylist(ctx context.Context, path string) (*domain.Report, error) {
	pl, err := playlist.Read(path)
	if err != nil {
		slog.Error("Failed to read playlist", "path", path, "error", err)
		return nil, fmt.Errorf("failed to read playlist: %w", err)
	}

	slog.Info("Starting playlist", "name", pl.Name, "tracks", len(pl.Tracks), "skipped", len(pl.Skipped), "provider", d.provider.Name())

	report := &domain.Report{Playlist: pl.Name}
	skipped := pl.Skipped

	// malformed items are reported at their position in the export
	addSkippedBefore := func(index int) {
		for len(skipped) > 0 && skipped[0].Index < index {
			report.Add(malformedResult(skipped[0]))
			skipped = skipped[1:]
		}
	}

	total := len(pl.Tracks)
	for i, track := range pl.Tracks {
		select {
		case <-ctx.Done():
			slog.Warn("Playlist cancelled", "processed", i, "total", total)
			logSummary(report)
			return report, ctx.Err()
		default:
		}

		addSkippedBefore(track.Index)
		d.tracker.StartTrack(i+1, total, i, track.Query())
		report.Add(d.processTrack(ctx, pl, track))
	}
	for _, entry := range skipped {
		report.Add(malformedResult(entry))
	}

	logSummary(report)
	return report, nil
}

func malformedResult(entry domain.SkippedEntry) *domain.Result {
	return &domain.Result{
		Outcome: domain.OutcomeMalformed,
		Err:     fmt.Errorf("%w: item %d: %s", playlist.ErrMalformedPlaylist, entry.Index, entry.Reason),
	}
}

func (d *Driver) processTrack(ctx context.Context, pl *domain.Playlist, track *domain.Track) *domain.Result {
	result := &domain.Result{Track: track}
	query := track.Query()

	ids, err := d.provider.FindVideoIDs(ctx, query)
	if err != nil {
		slog.Error("Search failed", "track", track.Number, "query", query, "error", err)
		return d.fail(result, domain.OutcomeSearchFailed, err)
	}
	if len(ids) == 0 {
		slog.Info("No official upload found", "track", track.Number, "query", query)
		result.Outcome = domain.OutcomeNoMatch
		d.tracker.Update(progress.StageComplete, "No match for "+query)
		return result
	}

	result.VideoID = ids[0]
	slog.Info("Downloading track", "track", track.Number, "query", query, "videoID", result.VideoID, "candidates", len(ids))
	d.tracker.Update(progress.StageDownloading, fmt.Sprintf("Downloading %s", downloader.WatchURL(result.VideoID)))

	path, err := d.fetcher.Fetch(ctx, result.VideoID)
	if err != nil {
		slog.Error("Fetch failed", "track", track.Number, "videoID", result.VideoID, "error", err)
		return d.fail(result, domain.OutcomeFetchFailed, err)
	}
	result.Path = path

	if path == "" {
		result.Outcome = domain.OutcomeDownloaded
		d.tracker.Update(progress.StageComplete, "Downloaded "+query)
		return result
	}

	if d.tagger != nil {
		if err := d.tagger.Tag(path, audio.MetadataFor(pl, track)); err != nil {
			slog.Error("Tagging failed", "track", track.Number, "path", path, "error", err)
			return d.fail(result, domain.OutcomeStoreFailed, err)
		}
	}

	if d.storage != nil {
		final, err := d.storage.Store(ctx, path)
		if err != nil {
			slog.Error("Store failed", "track", track.Number, "path", path, "error", err)
			return d.fail(result, domain.OutcomeStoreFailed, err)
		}
		result.Path = final
	}

	slog.Info("Track downloaded", "track", track.Number, "path", result.Path)
	result.Outcome = domain.OutcomeDownloaded
	d.tracker.Update(progress.StageComplete, "Downloaded "+query)
	return result
}

func (d *Driver) fail(result *domain.Result, outcome domain.Outcome, err error) *domain.Result {
	result.Outcome = outcome
	result.Err = err
	d.tracker.SetError(err)
	return result
}

func logSummary(report *domain.Report) {
	slog.Info("Playlist finished",
		"playlist", report.Playlist,
		"total", len(report.Results),
		string(domain.OutcomeDownloaded), report.Count(domain.OutcomeDownloaded),
		string(domain.OutcomeNoMatch), report.Count(domain.OutcomeNoMatch),
		string(domain.OutcomeSearchFailed), report.Count(domain.OutcomeSearchFailed),
		string(domain.OutcomeFetchFailed), report.Count(domain.OutcomeFetchFailed),
		string(domain.OutcomeStoreFailed), report.Count(domain.OutcomeStoreFailed),
		string(domain.OutcomeMalformed), report.Count(domain.OutcomeMalformed),
	)
}
