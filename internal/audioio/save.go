package audioio

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/hmaury/go-ecdc/internal/codec"
)

// saveLimit is the amplitude ceiling applied on save. With rescale the whole
// waveform is scaled down to this peak; without it, samples are clamped.
const saveLimit = 0.99

// Save writes a waveform as 16-bit PCM WAV. The file is created or
// truncated; overwrite policy is the caller's responsibility.
func Save(w *codec.Waveform, path string, rescale bool) error {
	gain := float32(1)
	if rescale {
		if peak := w.Peak(); peak > saveLimit {
			gain = saveLimit / peak
		}
	}

	data := make([]int, len(w.Samples))
	for i, s := range w.Samples {
		s *= gain
		if s > saveLimit {
			s = saveLimit
		} else if s < -saveLimit {
			s = -saveLimit
		}
		data[i] = int(s * 32767)
	}

	f, err := os.Create(path) // #nosec G304 -- validated output path
	if err != nil {
		return fmt.Errorf("cannot create output file: %w", err)
	}

	enc := wav.NewEncoder(f, w.SampleRate, 16, w.Channels, 1)
	writeErr := enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: w.Channels, SampleRate: w.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	})
	closeErr := enc.Close()
	fileErr := f.Close()

	if writeErr != nil {
		_ = os.Remove(path)
		return fmt.Errorf("failed to write output: %w", writeErr)
	}
	if closeErr != nil {
		_ = os.Remove(path)
		return fmt.Errorf("failed to finalize output: %w", closeErr)
	}
	if fileErr != nil {
		return fmt.Errorf("failed to close output: %w", fileErr)
	}
	return nil
}
