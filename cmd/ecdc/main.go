package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/hmaury/go-ecdc/internal/audioio"
	"github.com/hmaury/go-ecdc/internal/cli"
	"github.com/hmaury/go-ecdc/internal/codec"
	"github.com/hmaury/go-ecdc/internal/infer"
	"github.com/hmaury/go-ecdc/internal/plan"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes. Success is implicit; every failure path prints one diagnostic
// line to stderr and exits non-zero.
const (
	ExitOK         = 0
	ExitGeneral    = 1
	ExitUsage      = 2
	ExitValidation = 4
	ExitCodec      = 5
	ExitInterrupt  = 130
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// Context with signal cancellation.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	env := cli.DefaultEnv()
	rootCmd := cli.RootCmd(env, fmt.Sprintf("%s (commit: %s)", version, commit))
	rootCmd.AddCommand(cli.ConfigCmd(env))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps errors to exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	// Check for context cancellation (interrupt).
	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	// Usage errors (ExitUsage = 2): Cobra flag/arg parsing errors.
	if isCobraUsageError(err) {
		return ExitUsage
	}

	// Validation errors (ExitValidation = 4): everything detectable before
	// any codec work.
	if errors.Is(err, cli.ErrInputNotFound) || errors.Is(err, cli.ErrOutputDirMissing) ||
		errors.Is(err, cli.ErrOutputExists) || errors.Is(err, plan.ErrOutputExtension) ||
		errors.Is(err, codec.ErrBandwidthUnsupported) || errors.Is(err, codec.ErrUnknownModel) ||
		errors.Is(err, audioio.ErrUnsupportedFormat) || errors.Is(err, audioio.ErrInvalidAudio) ||
		errors.Is(err, audioio.ErrChannelLayout) {
		return ExitValidation
	}

	// Codec errors (ExitCodec = 5): the inference server failed or is
	// unreachable.
	if errors.Is(err, infer.ErrServer) {
		return ExitCodec
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate
// Cobra usage errors. Cobra doesn't expose typed errors, so string matching
// is the only reliable approach; these patterns are stable across Cobra
// versions (tested with v1.8+).
var cobraUsageErrorPatterns = []string{
	"required flag",          // Missing required flag
	"unknown flag",           // Flag doesn't exist
	"unknown shorthand",      // Short flag doesn't exist
	"flag needs an argument", // Flag provided without value
	"invalid argument",       // Invalid flag value type
	"accepts ",               // Wrong number of arguments (e.g., "accepts 1 arg(s)")
	"requires at least",      // Too few arguments
	"requires at most",       // Too many arguments
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
