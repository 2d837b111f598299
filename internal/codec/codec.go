// Package codec defines the contract with the neural audio codec: model
// variants, target bandwidths, and the encode/decode operations. The codec
// itself is an external capability; see internal/infer for the default
// implementation.
package codec

import (
	"context"
	"fmt"
	"strconv"
)

// Model names understood by the registry.
const (
	Model24kHz = "encodec_24khz"
	Model48kHz = "encodec_48khz"
)

// Bandwidth is a target bandwidth in kbit/s. Only values listed in a model's
// Spec are valid for that model.
type Bandwidth float64

// The full set of bandwidths any model variant supports.
const (
	Bandwidth1_5 Bandwidth = 1.5
	Bandwidth3   Bandwidth = 3
	Bandwidth6   Bandwidth = 6
	Bandwidth12  Bandwidth = 12
	Bandwidth24  Bandwidth = 24
)

// DefaultBandwidth is used when no bandwidth flag is given.
const DefaultBandwidth = Bandwidth6

// String formats the bandwidth the way users write it on the command line
// ("1.5", "3", "24").
func (b Bandwidth) String() string {
	return strconv.FormatFloat(float64(b), 'f', -1, 64)
}

// Spec describes a model variant: its native format and the bandwidths it
// can target.
type Spec struct {
	Name       string
	SampleRate int
	Channels   int
	Bandwidths []Bandwidth
}

// Supports reports whether b belongs to the model's supported set.
func (s Spec) Supports(b Bandwidth) bool {
	for _, v := range s.Bandwidths {
		if v == b {
			return true
		}
	}
	return false
}

// specs is the model registry. The 24 kHz mono model supports the full
// bandwidth set; the HQ 48 kHz stereo model does not go down to 1.5 kbit/s.
var specs = map[string]Spec{
	Model24kHz: {
		Name:       Model24kHz,
		SampleRate: 24000,
		Channels:   1,
		Bandwidths: []Bandwidth{Bandwidth1_5, Bandwidth3, Bandwidth6, Bandwidth12, Bandwidth24},
	},
	Model48kHz: {
		Name:       Model48kHz,
		SampleRate: 48000,
		Channels:   2,
		Bandwidths: []Bandwidth{Bandwidth3, Bandwidth6, Bandwidth12, Bandwidth24},
	},
}

// SpecFor returns the spec for a registered model name.
func SpecFor(name string) (Spec, error) {
	s, ok := specs[name]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %s", ErrUnknownModel, name)
	}
	return s, nil
}

// SpecForTier picks the model variant for a quality tier: the HQ tier maps
// to the 48 kHz stereo model, the default tier to the 24 kHz mono one.
func SpecForTier(hq bool) Spec {
	if hq {
		return specs[Model48kHz]
	}
	return specs[Model24kHz]
}

// Model is one loaded codec variant. SetTargetBandwidth must be called with
// a supported bandwidth before Encode; Encode and Decode may run for a long
// time and honor ctx cancellation.
type Model interface {
	Spec() Spec

	// SetTargetBandwidth selects the bandwidth used by subsequent Encode
	// calls. Returns ErrBandwidthUnsupported if the spec does not list it.
	SetTargetBandwidth(b Bandwidth) error

	// Encode compresses a waveform already converted to the model's native
	// sample rate and channel count. useLM enables language-model-assisted
	// entropy coding (smaller output, roughly 5x slower).
	Encode(ctx context.Context, w *Waveform, useLM bool) ([]byte, error)

	// EncodeEmbedding runs the encoder only, skipping quantization and
	// entropy coding, and returns the serialized embedding.
	EncodeEmbedding(ctx context.Context, w *Waveform) ([]byte, error)

	// Decode reconstructs a waveform from a compressed payload. The result
	// carries its own sample rate.
	Decode(ctx context.Context, payload []byte) (*Waveform, error)
}
