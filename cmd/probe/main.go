package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/okian/edupredict/internal/probe"
)

// Default configuration constants.
const (
	defaultCount        = 100
	defaultSeed         = 1
	defaultTimeout      = 10 * time.Second
	defaultProbeTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		count      = flag.Int("count", defaultCount, "Number of records to send")
		seed       = flag.Int64("seed", defaultSeed, "Seed for the random records")
		workers    = flag.Int("workers", runtime.NumCPU(), "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Write a JSON report of every exchange to this file")
		logFile    = flag.String("log", "", "Also write log lines to this file")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		probe.ShowHelp(os.Stdout)
		return
	}

	if err := probe.SetupLogging(*verbose, *logFile); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "failed to setup logging:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultProbeTimeout)
	defer cancel()

	config := &probe.Config{
		BaseURL:    *baseURL,
		Count:      *count,
		Seed:       *seed,
		Workers:    *workers,
		Timeout:    *timeout,
		OutputFile: *outputFile,
		Verbose:    *verbose,
	}

	if _, err := probe.Run(ctx, config); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "probe failed:", err)
		cancel()
		os.Exit(1)
	}
}
