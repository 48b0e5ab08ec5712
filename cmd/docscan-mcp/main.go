package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/docscan-mcp/internal/capture"
	"github.com/ironsheep/docscan-mcp/internal/config"
	"github.com/ironsheep/docscan-mcp/internal/detection"
	"github.com/ironsheep/docscan-mcp/internal/ocr"
	"github.com/ironsheep/docscan-mcp/internal/server"
	"github.com/ironsheep/docscan-mcp/internal/throttle"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "docscan-mcp: %v\n", err)
		os.Exit(2)
	}

	// Handle --version, --help and the preview subcommand
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("docscan-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			fmt.Printf("  OpenCV:     %s\n", gocv.OpenCVVersion())
			return
		case "--help", "-h", "help":
			printHelp()
			return
		case "preview":
			device := cfg.CameraDevice
			if len(os.Args) > 2 {
				device = os.Args[2]
			}
			log := newLogger(cfg)
			if err := runPreview(cfg, log, device); err != nil {
				log.WithError(err).Fatal("Preview failed")
			}
			return
		default:
			fmt.Fprintf(os.Stderr, "docscan-mcp: unknown argument %q (see --help)\n", os.Args[1])
			os.Exit(2)
		}
	}

	log := newLogger(cfg)
	log.WithFields(logrus.Fields{
		"version":   Version,
		"built":     BuildTime,
		"commit":    GitCommit,
		"tesseract": ocr.Version(),
	}).Debug("Document scanner MCP server starting")

	srv := server.New(cfg, log).WithVersion(Version)
	defer srv.Close()

	if err := srv.Run(); err != nil {
		log.WithError(err).Fatal("Server error")
	}
}

func printHelp() {
	fmt.Println("docscan-mcp - MCP server for scanning paper documents")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  docscan-mcp                   Serve MCP over stdin/stdout")
	fmt.Println("  docscan-mcp preview [device]  Run live boundary detection on a camera")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  DOCSCAN_LOG_LEVEL=info        debug, info, warn or error")
	fmt.Println("  DOCSCAN_LOG_FORMAT=           text or json (default: text at debug, json otherwise)")
	fmt.Println("  DOCSCAN_MAX_WIDTH=4000        Largest captured frame width")
	fmt.Println("  DOCSCAN_MAX_HEIGHT=6000       Largest captured frame height")
	fmt.Println("  DOCSCAN_PREVIEW_SIZE=1024     Longest side of preview thumbnails")
	fmt.Println("  DOCSCAN_OCR_LANGUAGE=eng      Tesseract language")
	fmt.Println("  DOCSCAN_CAMERA_DEVICE=0       Camera used by preview")
	fmt.Println("  DOCSCAN_PORTRAIT=false        Turn landscape captures upright")
	fmt.Println()
	fmt.Println("The server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}

// newLogger writes to stderr; stdout is reserved for the MCP protocol.
func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(cfg.LogLevel)
	log.SetFormatter(cfg.Formatter())
	return log
}

// runPreview streams camera frames through boundary detection and logs each
// result until interrupted.
func runPreview(cfg *config.Config, log *logrus.Logger, device string) error {
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	cam, err := capture.Open(device)
	if err != nil {
		return err
	}
	defer cam.Close()

	preview := throttle.NewPreview[gocv.Mat](detection.Detect, func(m gocv.Mat) { m.Close() }, log)
	preview.Start(ctx)

	go func() {
		for {
			select {
			case out := <-preview.Results():
				entry := log.WithFields(logrus.Fields{
					"seq":         out.Seq,
					"found":       out.Found,
					"duration_ms": out.Duration.Milliseconds(),
				})
				if out.Found {
					entry = entry.WithField("quad", out.Quad)
				}
				entry.Info("Detection")
			case <-preview.Done():
				return
			}
		}
	}()

	log.WithField("device", device).Info("Preview started, press Ctrl+C to stop")

	runErr := capture.Run(ctx, cam, preview, capture.Options{
		Portrait: cfg.Portrait,
		Log:      log,
	})

	cancel()
	<-preview.Done()

	stats := preview.Stats()
	log.WithFields(logrus.Fields{
		"accepted":  stats.Accepted,
		"dropped":   stats.Dropped,
		"completed": stats.Completed,
	}).Info("Preview stopped")

	return runErr
}
