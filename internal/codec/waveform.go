package codec

// Waveform is an interleaved multi-channel sample buffer with its sample
// rate. Samples are float32 in [-1, 1]; one pipeline run owns a waveform
// exclusively, so methods never copy defensively.
type Waveform struct {
	Samples    []float32
	Channels   int
	SampleRate int
}

// Frames returns the number of frames (samples per channel).
func (w *Waveform) Frames() int {
	if w.Channels == 0 {
		return 0
	}
	return len(w.Samples) / w.Channels
}

// Peak returns the maximum absolute sample magnitude, 0 for an empty buffer.
func (w *Waveform) Peak() float32 {
	var peak float32
	for _, s := range w.Samples {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	return peak
}
