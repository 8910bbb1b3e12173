package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"image-compressor-go/internal/batch"
	"image-compressor-go/internal/compressor"
	"image-compressor-go/internal/config"
	"image-compressor-go/internal/extractor"
	"image-compressor-go/internal/logger"
	"image-compressor-go/internal/statistics"
	"image-compressor-go/internal/web"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	imagesDir string
	noFail    bool
	verbose   bool
	quiet     bool
	version   = "dev"
	port      int
)

// rootCmd is the base command for the CLI. Without a subcommand it runs the batch.
var rootCmd = &cobra.Command{
	Use:   "image-compressor",
	Short: "Convert website PNG images into compressed JPEGs",
	Long: `image-compressor converts a fixed list of PNG images into JPEG files
sized for the web.

For every job it:
- flattens transparency onto a white background
- downsizes to the job's maximum width with Lanczos resampling
- applies the EXIF orientation and strips metadata
- writes a JPEG at the job's quality and reports the size reduction`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd)
	},
}

// jobsCmd lists the configured jobs with resolved paths.
var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List the configured compression jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJobs(cmd)
	},
}

// inspectCmd shows what the compressor would see for a single file.
var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Show dimensions, color model and orientation of an image",
	Long: `Decodes the given image and prints its dimensions, color model and
EXIF orientation. This is useful for checking why an output came out
rotated or sized unexpectedly.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(args[0])
	},
}

// serveCmd starts the web interface server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts an HTTP server that can trigger the batch and report progress.

Endpoints:
- GET  /api/status      current run state
- GET  /api/jobs        configured jobs
- POST /api/run         start a batch
- GET  /api/statistics  last run summary and per-job reports
- GET  /ws              per-job progress over WebSocket`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&imagesDir, "images-dir", "", "directory the job paths are relative to")

	rootCmd.Flags().BoolVar(&noFail, "no-fail", false, "exit 0 even when a job fails")

	serveCmd.Flags().IntVar(&port, "port", 0, "port to run web server on (default from config, 8080)")

	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(serveCmd)
}

// runBatch executes every configured job and prints the report to the command's output.
func runBatch(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if noFail {
		cfg.FailOnError = false
	}

	log := setupLogger(cfg)
	comp, cleanup, err := buildCompressor(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats := statistics.NewStatistics()
	runner := batch.NewRunner(log, comp, stats, cmd.OutOrStdout())
	runner.Run(ctx, cfg.ResolvedJobs())

	if verbose && !quiet {
		fmt.Fprintln(cmd.ErrOrStderr(), "\n"+stats.GetSummary())
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("interrupted: %w", err)
	}
	if stats.HasFailures() && cfg.FailOnError {
		return fmt.Errorf("%d of %d jobs failed\n%s", stats.Snapshot().Failed, stats.Snapshot().Total, stats.GetErrorSummary())
	}
	return nil
}

// runJobs prints the resolved job table.
func runJobs(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Images directory: %s\n\n", cfg.ImagesDir)
	for i, job := range cfg.ResolvedJobs() {
		state := "missing"
		if fileExists(job.Source) {
			state = "ready"
		}
		fmt.Fprintf(out, "%d. %s -> %s (quality %d, max width %d) [%s]\n",
			i+1, job.Source, job.Destination, job.Quality, job.MaxWidth, state)
	}
	return nil
}

// runInspect prints decoded image details for a given file.
func runInspect(filePath string) error {
	if !fileExists(filePath) {
		return fmt.Errorf("file does not exist: %s", filePath)
	}

	fmt.Printf("Inspecting: %s\n", filePath)

	img, err := imaging.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}
	b := img.Bounds()
	fmt.Printf("Dimensions: %dx%d\n", b.Dx(), b.Dy())
	fmt.Printf("Color model: %T\n", img)

	log := logrus.New()
	log.SetOutput(os.Stderr)
	orientation, err := extractor.NewEXIFExtractor(log).ExtractOrientation(filePath)
	if err != nil {
		fmt.Printf("Error extracting orientation: %v\n", err)
		return nil
	}
	fmt.Printf("Orientation: %d (%s)\n", int(orientation), orientation)
	if orientation.SwapsAxes() {
		fmt.Printf("Output dimensions before resize: %dx%d\n", b.Dy(), b.Dx())
	}
	return nil
}

// runServe starts the web server and handles graceful shutdown.
func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = port
	}

	log := setupLogger(cfg)
	comp, cleanup, err := buildCompressor(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	server := web.NewServer(cfg, log, comp)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	fmt.Printf("🚀 Image compressor API started on http://localhost:%d\n", cfg.Server.Port)
	fmt.Printf("🛑 Press Ctrl+C to stop the server\n\n")

	select {
	case err := <-errChan:
		return fmt.Errorf("server failed to start: %w", err)
	case <-sigChan:
	}
	fmt.Println("\n🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	fmt.Println("✅ Server stopped gracefully")
	return nil
}

// loadConfig loads configuration and applies CLI overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}

	if imagesDir != "" {
		cfg.ImagesDir = imagesDir
	}

	return cfg, nil
}

// buildCompressor wires the orientation source and optimizer chosen in cfg.
// The returned cleanup must be called once the compressor is no longer used.
func buildCompressor(cfg *config.Config, log *logrus.Logger) (compressor.Compressor, func(), error) {
	cleanup := func() {}

	var orientation extractor.OrientationExtractor
	switch cfg.OrientationSource {
	case config.OrientationExiftool:
		et, err := extractor.NewExiftoolExtractor(log)
		if err != nil {
			log.WithError(err).Warn("exiftool unavailable, falling back to goexif")
			orientation = extractor.NewEXIFExtractor(log)
			break
		}
		orientation = et
		cleanup = func() {
			if err := et.Close(); err != nil {
				log.WithError(err).Warn("Failed to close exiftool")
			}
		}
	case config.OrientationNone:
	default:
		orientation = extractor.NewEXIFExtractor(log)
	}

	var optimizer compressor.Optimizer
	switch cfg.Optimizer {
	case config.OptimizerJpegtran:
		jt := compressor.LookupJpegtran()
		if jt == nil {
			cleanup()
			return nil, nil, fmt.Errorf("optimizer jpegtran requested but not found in PATH")
		}
		optimizer = jt
	case config.OptimizerAuto:
		// A nil *JpegtranOptimizer must not end up in a non-nil interface.
		if jt := compressor.LookupJpegtran(); jt != nil {
			optimizer = jt
		}
	}

	if orientation != nil {
		log.WithField("source", orientation.Name()).Debug("Orientation source selected")
	}
	log.WithField("optimizer", optimizer != nil).Debug("Optimizer selected")

	return compressor.NewDefaultCompressor(log, orientation, optimizer), cleanup, nil
}

// setupLogger configures and returns a logger.
func setupLogger(cfg *config.Config) *logrus.Logger {
	loggerCfg := logger.LoggerConfig{
		Level:      cfg.Logging.Level,
		FilePath:   cfg.Logging.FilePath,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
		Compress:   cfg.Logging.Compress,
		Console:    verbose,
	}

	if verbose {
		loggerCfg.Level = "debug"
	}
	if quiet {
		loggerCfg.Level = "error"
	}

	log, err := logger.NewLogger(loggerCfg)
	if err != nil {
		log = logrus.New()
		log.SetOutput(os.Stderr)
		log.SetLevel(logrus.InfoLevel)
	}

	return log
}

// fileExists returns true if the given path exists and is a file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
