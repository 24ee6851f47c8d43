package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/horus/internal/domain/model"
	"github.com/okian/horus/internal/preview"
)

// Default configuration constants.
const (
	defaultTimeout = 10 * time.Second
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		baseURL  = flag.String("url", "http://localhost:9080", "Base URL of the service")
		kind     = flag.String("kind", string(model.KindRadar), "Widget kind: radar, hexradar or waveform")
		interval = flag.Duration("interval", 0, "Select a random marker this often, 0 disables")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile  = flag.String("log", "", "Log file (default: preview_TIMESTAMP.log)")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		preview.ShowHelp()
		return 0
	}

	closeLog, err := preview.SetupLogging(*logFile)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return 1
	}
	defer func() { _ = closeLog() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config := preview.Config{
		BaseURL:  *baseURL,
		Kind:     model.Kind(*kind),
		Interval: *interval,
		Timeout:  *timeout,
		LogFile:  *logFile,
	}

	if _, err := preview.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Preview failed: " + err.Error() + "\n")
		return 1
	}
	return 0
}
