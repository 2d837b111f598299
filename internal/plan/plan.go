// Package plan classifies an invocation into one of the four pipeline modes
// from the input and output paths alone. Resolution is a pure function: no
// filesystem access, no side effects.
package plan

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// File suffixes making up the extension contract. Comparison is always
// case-insensitive.
const (
	BitstreamSuffix = ".ecdc"
	EmbeddingSuffix = ".pt"
	AudioSuffix     = ".wav"
)

// DefaultDecompressSuffix is appended to the input stem when decompressing
// without an explicit output path.
const DefaultDecompressSuffix = "_decompressed"

// ErrOutputExtension indicates an output path whose extension is illegal for
// the resolved mode.
var ErrOutputExtension = errors.New("illegal output extension")

// Mode is the closed set of pipelines the driver can run.
type Mode int

const (
	// Decompress reads a bitstream and writes a reconstructed waveform.
	Decompress Mode = iota
	// CompressBitstream encodes a waveform and persists the bitstream.
	CompressBitstream
	// CompressEmbedding runs the encoder only and persists the embedding.
	CompressEmbedding
	// CompressRoundTrip encodes then immediately decodes, writing audio.
	CompressRoundTrip
)

func (m Mode) String() string {
	switch m {
	case Decompress:
		return "decompress"
	case CompressBitstream:
		return "compress"
	case CompressEmbedding:
		return "embed"
	case CompressRoundTrip:
		return "roundtrip"
	default:
		return "unknown"
	}
}

// Compression reports whether the mode belongs to the compression family,
// i.e. starts from a playable input rather than a bitstream.
func (m Mode) Compression() bool {
	return m != Decompress
}

// Plan is a resolved invocation: the mode to run and the effective paths.
// Invariant: Output's extension is legal for Mode.
type Plan struct {
	Mode   Mode
	Input  string
	Output string
}

// ext returns the lowercased extension of p.
func ext(p string) string {
	return strings.ToLower(filepath.Ext(p))
}

// stem returns p without its extension, keeping the directory part.
func stem(p string) string {
	return strings.TrimSuffix(p, filepath.Ext(p))
}

// Resolve classifies an invocation. A bitstream input selects decompression;
// anything else selects the compression family, with the output extension
// picking the terminal pipeline. When output is empty a default is derived
// from the input stem. The decompress suffix is appended exactly once, even
// if the input stem already ends with it.
func Resolve(input, output, decompressSuffix string) (Plan, error) {
	if ext(input) == BitstreamSuffix {
		if output == "" {
			output = stem(input) + decompressSuffix + AudioSuffix
		} else if ext(output) != AudioSuffix {
			return Plan{}, fmt.Errorf("%w: output extension must be %s", ErrOutputExtension, AudioSuffix)
		}
		return Plan{Mode: Decompress, Input: input, Output: output}, nil
	}

	if output == "" {
		output = stem(input) + BitstreamSuffix
	}
	var mode Mode
	switch ext(output) {
	case BitstreamSuffix:
		mode = CompressBitstream
	case EmbeddingSuffix:
		mode = CompressEmbedding
	case AudioSuffix:
		mode = CompressRoundTrip
	default:
		return Plan{}, fmt.Errorf("%w: output extension must be %s, %s or %s",
			ErrOutputExtension, AudioSuffix, EmbeddingSuffix, BitstreamSuffix)
	}
	return Plan{Mode: mode, Input: input, Output: output}, nil
}
