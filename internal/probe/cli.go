package probe

import (
	"fmt"
	"io"

	"github.com/okian/edupredict/pkg/logger"
)

// SetupLogging initializes the global logger for the probe. With verbose set
// debug lines are shown; logFile, when set, also receives every line.
func SetupLogging(verbose bool, logFile string) error {
	if err := logger.Init(logger.WithFile(logFile)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the probe.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `edupredict probe
================

Sends prediction requests to a running edupredict service and checks every
answer: status 200, a known label that is the argmax, three probabilities in
class order summing to 1, a percent string per class and the echoed
X-Request-ID. The first record is always the fixed round-trip record.

Usage:
  probe [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -count int
        Number of records to send (default 100)
  -seed int
        Seed for the random records (default 1)
  -workers int
        Number of concurrent workers (default CPU cores)
  -timeout duration
        HTTP request timeout (default 10s)
  -output string
        Write a JSON report of every exchange to this file
  -log string
        Also write log lines to this file
  -verbose
        Enable verbose logging
  -help
        Show this help message

Exit status is 1 when the service is unreachable or any answer violates the contract.
`)
}
