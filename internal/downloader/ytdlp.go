package downloader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/jaki95/playlist-downloader/config"
)

const progressInterval = 500 * time.Millisecond

// Options configure a YtDlpFetcher.
type Options struct {
	Format         string
	Codec          string
	Quality        string
	OutputDir      string
	OutputTemplate string
	Hooks          Hooks
}

// OptionsFromConfig builds fetcher options from the download and storage settings.
func OptionsFromConfig(cfg *config.Config, hooks Hooks) Options {
	return Options{
		Format:         cfg.Download.Format,
		Codec:          cfg.Download.Codec,
		Quality:        cfg.Download.Quality,
		OutputDir:      cfg.Storage.OutputDir,
		OutputTemplate: cfg.Download.OutputTemplate,
		Hooks:          hooks,
	}
}

// YtDlpFetcher fetches the best available audio with yt-dlp and extracts it
// to the configured codec.
type YtDlpFetcher struct {
	opts Options
}

func NewYtDlpFetcher(opts Options) *YtDlpFetcher {
	if opts.Format == "" {
		opts.Format = "bestaudio/best"
	}
	if opts.Codec == "" {
		opts.Codec = "mp3"
	}
	if opts.Quality == "" {
		opts.Quality = "192"
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if opts.OutputTemplate == "" {
		opts.OutputTemplate = "%(title)s-%(id)s.%(ext)s"
	}
	return &YtDlpFetcher{opts: opts}
}

// Install makes sure a yt-dlp binary is available, downloading one if needed.
func Install(ctx context.Context) error {
	if _, err := ytdlp.Install(ctx, nil); err != nil {
		return fmt.Errorf("failed to install yt-dlp: %w", err)
	}
	return nil
}

func (f *YtDlpFetcher) Fetch(ctx context.Context, videoID string) (string, error) {
	if err := os.MkdirAll(f.opts.OutputDir, 0755); err != nil {
		return "", &FetchError{VideoID: videoID, Err: fmt.Errorf("failed to create output directory: %w", err)}
	}

	notifier := newStatusNotifier(videoID, f.opts.Hooks.Status)

	cmd := ytdlp.New().
		Format(f.opts.Format).
		ExtractAudio().
		AudioFormat(f.opts.Codec).
		AudioQuality(f.opts.Quality).
		NoPlaylist().
		Output(filepath.Join(f.opts.OutputDir, f.opts.OutputTemplate)).
		ProgressFunc(progressInterval, func(update ytdlp.ProgressUpdate) {
			notifier.notify(string(update.Status), update.Filename)
		})

	url := WatchURL(videoID)
	slog.Info("Fetching audio", "videoID", videoID, "url", url, "codec", f.opts.Codec, "quality", f.opts.Quality)

	result, err := cmd.Run(ctx, url)
	if result != nil {
		emitLogs(f.opts.Hooks.Log, result.Stdout, result.Stderr)
	}
	if err != nil {
		notifier.notify(StateError, "")
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &FetchError{VideoID: videoID, Err: err}
	}

	path := resolveOutput(f.opts.OutputDir, videoID, f.opts.Codec, notifier.lastFilename())
	if path == "" {
		slog.Warn("Could not locate fetched audio file", "videoID", videoID, "dir", f.opts.OutputDir)
	}
	return path, nil
}

// emitLogs passes every non-warning output line to log.
func emitLogs(log func(string), outputs ...string) {
	if log == nil {
		return
	}
	for _, out := range outputs {
		for _, line := range strings.Split(out, "\n") {
			line = strings.TrimRight(line, "\r")
			if line == "" || isWarning(line) {
				continue
			}
			log(line)
		}
	}
}

func isWarning(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "WARNING:")
}

// statusNotifier collapses repeated progress updates into state changes.
type statusNotifier struct {
	mu       sync.Mutex
	videoID  string
	fn       func(Status)
	state    string
	filename string
}

func newStatusNotifier(videoID string, fn func(Status)) *statusNotifier {
	return &statusNotifier{videoID: videoID, fn: fn}
}

func (n *statusNotifier) notify(state, filename string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if filename != "" {
		n.filename = filename
	}
	if state == "" || state == n.state {
		return
	}
	n.state = state
	if n.fn != nil {
		n.fn(Status{VideoID: n.videoID, State: state, Filename: n.filename})
	}
}

func (n *statusNotifier) lastFilename() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.filename
}

// resolveOutput finds the transcoded file. yt-dlp reports the name of the
// downloaded stream, which the audio extraction step replaces with the codec
// extension.
func resolveOutput(dir, videoID, codec, downloaded string) string {
	if downloaded != "" {
		candidate := strings.TrimSuffix(downloaded, filepath.Ext(downloaded)) + "." + codec
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.Contains(name, videoID) {
			continue
		}
		if strings.EqualFold(filepath.Ext(name), "."+codec) {
			return filepath.Join(dir, name)
		}
	}
	return ""
}
