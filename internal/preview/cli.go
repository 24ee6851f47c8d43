package preview

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/okian/horus/pkg/logger"
)

const (
	logFilePermission = 0600
)

// SetupLogging routes the global logger into a file, since the screen is
// owned by the preview. If logFile is empty, a timestamped name is used.
// The returned func closes the file.
func SetupLogging(logFile string) (func() error, error) {
	if logFile == "" {
		logFile = "preview_" + time.Now().Format("20060102_150405") + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	if err := logger.InitWith(logger.Options{Writer: file}); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return file.Close, nil
}

// ShowHelp prints usage information for the preview tool.
func ShowHelp() {
	os.Stdout.WriteString(`Horus Widget Preview
====================

Mounts one live widget on a running Horus server and draws it in the terminal.

Usage:
  go run ./cmd/horus-preview [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -kind string
        Widget kind: radar, hexradar or waveform (default "radar")
  -interval duration
        Select a random marker this often, 0 disables (default 0)
  -timeout duration
        HTTP request timeout (default 10s)
  -log string
        Log file (default: preview_TIMESTAMP.log)
  -help
        Show this help message

Keys:
  1-9     select the marker with that number
  space   select a random marker
  q, Esc  quit and unmount the widget

Examples:
  # Watch the waveform and let it select on its own every two seconds
  go run ./cmd/horus-preview -kind waveform -interval 2s
`)
}
