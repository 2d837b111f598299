package audioio

import (
	"fmt"

	"github.com/hmaury/go-ecdc/internal/codec"
)

// Convert remixes a waveform to the target channel count and resamples it to
// the target rate, in that order. The input waveform is not modified; when no
// conversion is needed the input is returned as-is.
func Convert(w *codec.Waveform, targetRate, targetChannels int) (*codec.Waveform, error) {
	if w.Channels == targetChannels && w.SampleRate == targetRate {
		return w, nil
	}

	samples := w.Samples
	channels := w.Channels
	if channels != targetChannels {
		var err error
		samples, err = remix(samples, channels, targetChannels)
		if err != nil {
			return nil, err
		}
		channels = targetChannels
	}

	if w.SampleRate != targetRate {
		samples = resample(samples, channels, w.SampleRate, targetRate)
	}

	return &codec.Waveform{
		Samples:    samples,
		Channels:   channels,
		SampleRate: targetRate,
	}, nil
}

// remix converts between channel layouts: any layout downmixes to mono by
// averaging, mono upmixes by duplication. Other conversions are rejected.
func remix(samples []float32, src, dst int) ([]float32, error) {
	switch {
	case dst == 1:
		frames := len(samples) / src
		out := make([]float32, frames)
		for i := 0; i < frames; i++ {
			var sum float32
			for c := 0; c < src; c++ {
				sum += samples[i*src+c]
			}
			out[i] = sum / float32(src)
		}
		return out, nil
	case src == 1:
		out := make([]float32, len(samples)*dst)
		for i, s := range samples {
			for c := 0; c < dst; c++ {
				out[i*dst+c] = s
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %d -> %d channels", ErrChannelLayout, src, dst)
	}
}

// resample converts interleaved samples from srcRate to dstRate using cubic
// Hermite interpolation per channel.
func resample(samples []float32, channels, srcRate, dstRate int) []float32 {
	srcFrames := len(samples) / channels
	if srcFrames == 0 {
		return nil
	}

	ratio := float64(srcRate) / float64(dstRate)
	dstFrames := int(float64(srcFrames) * float64(dstRate) / float64(srcRate))
	out := make([]float32, dstFrames*channels)

	frame := func(i, c int) float32 {
		if i < 0 {
			i = 0
		}
		if i >= srcFrames {
			i = srcFrames - 1
		}
		return samples[i*channels+c]
	}

	for i := 0; i < dstFrames; i++ {
		pos := float64(i) * ratio
		i1 := int(pos)
		t := float32(pos - float64(i1))
		for c := 0; c < channels; c++ {
			out[i*channels+c] = cubic(
				frame(i1-1, c), frame(i1, c), frame(i1+1, c), frame(i1+2, c), t)
		}
	}
	return out
}

// cubic evaluates a Catmull-Rom spline through y0..y3 at t in [0,1) between
// y1 and y2.
func cubic(y0, y1, y2, y3, t float32) float32 {
	a := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	b := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	c := -0.5*y0 + 0.5*y2
	return ((a*t+b)*t+c)*t + y1
}
