package cli

import "errors"

// CLI-specific sentinel errors. These are the validation failures detected
// before any codec work begins.

var (
	// ErrInputNotFound indicates the input file does not exist.
	ErrInputNotFound = errors.New("input file does not exist")

	// ErrOutputDirMissing indicates the output's parent directory does not
	// exist.
	ErrOutputDirMissing = errors.New("output folder does not exist")

	// ErrOutputExists indicates the output file already exists and --force
	// was not given.
	ErrOutputExists = errors.New("output file already exists")
)
