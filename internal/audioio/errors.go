package audioio

import "errors"

// Sentinel errors for audio loading and saving.
var (
	// ErrUnsupportedFormat indicates an input container this adapter cannot
	// decode.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrInvalidAudio indicates a file with a recognized extension whose
	// contents could not be decoded.
	ErrInvalidAudio = errors.New("invalid audio file")

	// ErrChannelLayout indicates a channel conversion the adapter cannot
	// perform.
	ErrChannelLayout = errors.New("unsupported channel conversion")
)
