// Command harvester visits streaming pages headlessly, extracts one
// download URL per page, and writes an IDM enqueue script for the results.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/use-agent/harvester/batch"
	"github.com/use-agent/harvester/config"
	"github.com/use-agent/harvester/extract"
	"github.com/use-agent/harvester/output"
	"github.com/use-agent/harvester/ratelimit"
	"github.com/use-agent/harvester/retry"
	"github.com/use-agent/harvester/scraper"
	"gopkg.in/natefinch/lumberjack.v2"
)

var Version = "dev"

var (
	configFile  string
	inputFile   string
	urlList     string
	outputDir   string
	idmPath     string
	downloadDir string
	delay       int
	maxPerMin   int
	timeout     int
	concurrency int
	logLevel    string
	logFile     string
	headless    bool
	stealthMode bool
)

var rootCmd = &cobra.Command{
	Use:     "harvester",
	Short:   "Batch streaming-page link harvester for IDM",
	Version: Version,
	Long: `harvester visits each given page in a headless browser, captures media
network traffic, runs a chain of extraction heuristics, and hands the
resulting download links to an IDM enqueue script.

URLs come from a line-delimited file (--input) or a comma-separated
list (--urls).`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&configFile, "config", "c", "", "path to YAML configuration file")
	f.StringVarP(&inputFile, "input", "i", "", "path to text file containing URLs (one per line)")
	f.StringVar(&urlList, "urls", "", "comma-separated list of URLs to process")
	f.StringVarP(&outputDir, "output-dir", "o", "./out", "directory for output files")
	f.StringVar(&idmPath, "idm-path", "", "path to the IDM executable")
	f.StringVar(&downloadDir, "download-dir", "", "directory where IDM should save downloads")
	f.IntVarP(&delay, "delay", "d", 5, "minimum delay between page loads in seconds")
	f.IntVarP(&maxPerMin, "max-per-minute", "m", 10, "maximum pages to process per minute")
	f.IntVarP(&timeout, "timeout", "t", 15, "timeout for waiting for a download link in seconds")
	f.IntVar(&concurrency, "concurrency", 4, "number of pages processed concurrently")
	f.StringVar(&logLevel, "log-level", "", "log level (debug|info|warn|error)")
	f.StringVar(&logFile, "log-file", "", "path to a rotated log file")
	f.BoolVar(&headless, "headless", true, "run the browser headless")
	f.BoolVar(&stealthMode, "stealth", false, "inject anti-bot-detection JS")
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	initLogger(cfg)

	urls, err := gatherURLs(inputFile, urlList)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return errors.New("no URLs provided: use --input or --urls")
	}
	slog.Info("starting link harvest",
		"urls", len(urls),
		"delay", cfg.Delay(),
		"maxPerMinute", cfg.MaxRequestsPerMinute,
		"concurrency", cfg.Concurrency,
	)

	limiter := ratelimit.New(cfg.Delay(), cfg.MaxRequestsPerMinute)
	pipeline := extract.New(extract.Options{
		PrimarySelectors: cfg.Selectors.Primary,
		PopupSelectors:   cfg.Selectors.Popup,
		ValidityMarkers:  cfg.ValidityMarkers,
	})
	navRetry := retry.Policy{
		MaxRetries: cfg.Retry.MaxRetries,
		BaseDelay:  cfg.Retry.BaseDelay,
		Retryable: func(err error) bool {
			return !errors.Is(err, context.Canceled)
		},
	}

	session := scraper.NewSession(cfg, limiter, pipeline, navRetry)
	defer session.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch := batch.New(session, cfg.Concurrency, batch.WithProgress(true))
	links := orch.Run(ctx, urls)

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("cannot create output directory: %w", err)
	}

	linksPath := filepath.Join(cfg.OutputDir, output.LinksFileName)
	if err := output.WriteLinks(links, linksPath); err != nil {
		return fmt.Errorf("cannot write link list: %w", err)
	}
	slog.Info("download links written", "path", linksPath, "count", len(links))

	windows := runtime.GOOS == "windows"
	scriptPath := filepath.Join(cfg.OutputDir, output.ScriptName(windows))
	if err := output.WriteEnqueueScript(scriptPath, cfg.IDMPath, cfg.DownloadDir, windows); err != nil {
		return fmt.Errorf("cannot write enqueue script: %w", err)
	}
	slog.Info("enqueue script written", "path", scriptPath)

	// Individual failures never propagate, but a run that harvested
	// nothing at all is still a failed run.
	if len(links) == 0 {
		return errors.New("no download links were found")
	}

	slog.Info("link harvest completed", "links", len(links))
	return nil
}

// applyFlagOverrides layers explicitly-set CLI flags over the file config.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("delay") {
		cfg.DelayBetweenRequests = delay
	}
	if f.Changed("max-per-minute") {
		cfg.MaxRequestsPerMinute = maxPerMin
	}
	if f.Changed("timeout") {
		cfg.Timeout = timeout
	}
	if f.Changed("concurrency") {
		cfg.Concurrency = concurrency
	}
	if f.Changed("output-dir") {
		cfg.OutputDir = outputDir
	}
	if f.Changed("idm-path") {
		cfg.IDMPath = idmPath
	}
	if f.Changed("download-dir") {
		cfg.DownloadDir = downloadDir
	}
	if f.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if f.Changed("log-file") {
		cfg.LogFile = logFile
	}
	if f.Changed("headless") {
		cfg.Headless = headless
	}
	if f.Changed("stealth") {
		cfg.Stealth = stealthMode
	}
}

// initLogger configures slog: text on stderr, optionally teed into a
// lumberjack-rotated file.
func initLogger(cfg *config.Config) {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var w io.Writer = os.Stderr
	if cfg.LogFile != "" {
		w = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		})
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
