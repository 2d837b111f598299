package codec

import "errors"

// Sentinel errors for codec configuration.
var (
	// ErrUnknownModel indicates a model name not present in the registry.
	ErrUnknownModel = errors.New("unknown codec model")

	// ErrBandwidthUnsupported indicates a target bandwidth outside the
	// selected model's supported set.
	ErrBandwidthUnsupported = errors.New("bandwidth not supported by model")
)
