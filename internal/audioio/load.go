// Package audioio adapts audio containers to the codec's waveform type:
// loading from wav/mp3/ogg, converting sample rate and channel layout, and
// writing playable PCM16 WAV output.
package audioio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"

	"github.com/hmaury/go-ecdc/internal/codec"
)

// loaders maps input extensions to their decoders.
var loaders = map[string]func(*os.File) (*codec.Waveform, error){
	".wav": loadWAV,
	".mp3": loadMP3,
	".ogg": loadOgg,
}

// SupportedFormatsList returns the accepted input formats, sorted and
// comma-separated for error messages.
func SupportedFormatsList() string {
	formats := make([]string, 0, len(loaders))
	for ext := range loaders {
		formats = append(formats, strings.TrimPrefix(ext, "."))
	}
	slices.Sort(formats)
	return strings.Join(formats, ", ")
}

// Load reads a waveform from any supported container, chosen by extension
// (case-insensitive).
func Load(path string) (*codec.Waveform, error) {
	ext := strings.ToLower(filepath.Ext(path))
	load, ok := loaders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, ext, SupportedFormatsList())
	}

	f, err := os.Open(path) // #nosec G304 -- user-specified input file
	if err != nil {
		return nil, fmt.Errorf("cannot open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	w, err := load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return w, nil
}

func loadWAV(f *os.File) (*codec.Waveform, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not a WAV file", ErrInvalidAudio)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAudio, err)
	}

	bits := dec.BitDepth
	if bits == 0 {
		bits = 16
	}
	scale := float32(int(1) << (bits - 1))

	samples := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float32(v) / scale
	}

	return &codec.Waveform{
		Samples:    samples,
		Channels:   buf.Format.NumChannels,
		SampleRate: buf.Format.SampleRate,
	}, nil
}

func loadMP3(f *os.File) (*codec.Waveform, error) {
	dec, err := gomp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAudio, err)
	}

	// go-mp3 always emits 16-bit little-endian stereo PCM.
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAudio, err)
	}

	samples := make([]float32, len(raw)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(raw[2*i : 2*i+2]))
		samples[i] = float32(v) / 32768.0
	}

	return &codec.Waveform{
		Samples:    samples,
		Channels:   2,
		SampleRate: dec.SampleRate(),
	}, nil
}

func loadOgg(f *os.File) (*codec.Waveform, error) {
	samples, format, err := oggvorbis.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAudio, err)
	}

	return &codec.Waveform{
		Samples:    samples,
		Channels:   format.Channels,
		SampleRate: format.SampleRate,
	}, nil
}
