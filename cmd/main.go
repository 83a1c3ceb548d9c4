package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/jaki95/playlist-downloader/config"
	"github.com/jaki95/playlist-downloader/internal/audio"
	"github.com/jaki95/playlist-downloader/internal/domain"
	"github.com/jaki95/playlist-downloader/internal/downloader"
	"github.com/jaki95/playlist-downloader/internal/pipeline"
	"github.com/jaki95/playlist-downloader/internal/progress"
	"github.com/jaki95/playlist-downloader/internal/search"
	"github.com/jaki95/playlist-downloader/internal/storage"
)

const defaultConfigPath = "./config/config.yaml"

type options struct {
	playlistPath string
	configPath   string
	outputDir    string
	provider     string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	// a missing .env is fine
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "playlist-downloader BEARER PLAYLISTID",
		Short: "Download the official audio of every track in a playlist",
		Long: `Looks up every track of a playlist export on YouTube, picks the first
result published by a label or distributor ("Provided to YouTube") and
downloads its audio as mp3.`,
		Example: `  playlist-downloader "$TOKEN" 37i9dQZF1DXcBWIGoYBM5M -p playlist.json
  playlist-downloader "$TOKEN" 37i9dQZF1DXcBWIGoYBM5M -p playlist.json -o ./music --provider api`,
		Args:          cobra.ExactArgs(2),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runDownload(cmd.Context(), opts, args[0], args[1], stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.Flags().StringVarP(&opts.playlistPath, "playlist", "p", "", "Path to a playlist export (JSON with items[].track)")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", defaultConfigPath, "Path to the YAML config file")
	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", "", "Output directory (overrides storage.output_dir)")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "Search provider: scrape or api (overrides search.provider)")

	return cmd
}

func runDownload(ctx context.Context, opts *options, bearer, playlistID string, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	setupLogger(cfg, stderr)

	// the bearer token and playlist id are accepted but not used to call the playlist API
	slog.Debug("Received playlist reference", "playlistID", playlistID, "bearerSet", bearer != "")

	if opts.playlistPath == "" {
		fmt.Fprintln(stdout, "No local playlist export given (use --playlist); nothing to download.")
		return nil
	}

	if cfg.Download.AutoInstall {
		if err := downloader.Install(ctx); err != nil {
			return err
		}
	}

	provider, err := search.New(cfg.Search)
	if err != nil {
		return err
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	tracker := progress.NewTracker()
	tracker.AddListener(newProgressRenderer(stdout))
	if cfg.LogFormat == "json" {
		tracker.AddListener(newEventWriter(stderr))
	}

	fetcher := downloader.NewYtDlpFetcher(downloader.OptionsFromConfig(cfg, fetchHooks(stderr, tracker)))

	driverOpts := []pipeline.Option{
		pipeline.WithStorage(store),
		pipeline.WithTracker(tracker),
	}
	if cfg.Tagging.Enabled {
		driverOpts = append(driverOpts, pipeline.WithTagger(audio.NewID3Tagger()))
	}

	report, err := pipeline.NewDriver(provider, fetcher, driverOpts...).DownloadPlaylist(ctx, opts.playlistPath)
	if err != nil {
		state := tracker.CurrentState()
		slog.Error("Playlist run stopped", "stage", state.Stage, "progress", state.Progress, "error", err)
		return err
	}

	printReport(stdout, report)
	return nil
}

func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if opts.outputDir != "" {
		cfg.Storage.OutputDir = opts.outputDir
	}
	if opts.provider != "" {
		cfg.Search.Provider = opts.provider
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogger(cfg *config.Config, w io.Writer) {
	handlerOpts := &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	slog.SetDefault(slog.New(handler))
}

// fetchHooks prints yt-dlp output and moves the tracker to converting once the
// download finishes.
func fetchHooks(w io.Writer, tracker *progress.Tracker) downloader.Hooks {
	base := downloader.WriterHooks(w)
	return downloader.Hooks{
		Log: base.Log,
		Status: func(s downloader.Status) {
			base.Status(s)
			if s.State == downloader.StateFinished {
				tracker.Update(progress.StageConverting, "Converting "+s.VideoID)
			}
		},
	}
}

// newProgressRenderer draws a bar over the playlist's tracks. The bar is
// created on the first event since the track count is only known then.
func newProgressRenderer(stdout io.Writer) func(progress.Event) {
	var bar *progressbar.ProgressBar

	return func(e progress.Event) {
		if e.TrackDetails == nil {
			return
		}
		if bar == nil {
			bar = progressbar.NewOptions(
				e.TrackDetails.TotalTracks,
				progressbar.OptionSetWriter(barWriter(stdout)),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionSetTheme(progressbar.ThemeASCII),
				progressbar.OptionFullWidth(),
				progressbar.OptionShowCount(),
			)
		}
		bar.Describe(fmt.Sprintf("[cyan][%d/%d][reset] %3.0f%% %s: %s",
			e.TrackDetails.TrackNumber, e.TrackDetails.TotalTracks, e.Progress, e.Stage, e.TrackDetails.CurrentTrack))
		_ = bar.Set(e.TrackDetails.ProcessedTracks)
	}
}

// newEventWriter writes every progress event as a JSON line.
func newEventWriter(w io.Writer) func(progress.Event) {
	enc := json.NewEncoder(w)
	return func(e progress.Event) {
		if err := enc.Encode(e); err != nil {
			slog.Warn("Failed to write progress event", "error", err)
		}
	}
}

func barWriter(stdout io.Writer) io.Writer {
	if stdout == os.Stdout {
		return ansi.NewAnsiStdout()
	}
	return stdout
}

func printReport(w io.Writer, report *domain.Report) {
	fmt.Fprintf(w, "\nDownloaded %d of %d tracks\n", report.Count(domain.OutcomeDownloaded), len(report.Results))
	for _, res := range report.Results {
		switch {
		case res.Err != nil && res.Track != nil:
			fmt.Fprintf(w, "  %s: %s (%v)\n", res.Outcome, res.Track, res.Err)
		case res.Err != nil:
			fmt.Fprintf(w, "  %s: %v\n", res.Outcome, res.Err)
		case res.Outcome == domain.OutcomeNoMatch:
			fmt.Fprintf(w, "  %s: %s\n", res.Outcome, res.Track)
		}
	}
}
