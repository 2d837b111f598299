package infer

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/hmaury/go-ecdc/internal/codec"
)

// Model is a server-side codec variant bound to one device for the duration
// of a run. It implements codec.Model.
type Model struct {
	client    *Client
	spec      codec.Spec
	device    codec.Device
	bandwidth codec.Bandwidth
}

var _ codec.Model = (*Model)(nil)

// Spec returns the bound variant's spec.
func (m *Model) Spec() codec.Spec { return m.spec }

// SetTargetBandwidth selects the bandwidth for subsequent Encode calls.
func (m *Model) SetTargetBandwidth(b codec.Bandwidth) error {
	if !m.spec.Supports(b) {
		return fmt.Errorf("%w: %s (model %s)", codec.ErrBandwidthUnsupported, b, m.spec.Name)
	}
	m.bandwidth = b
	return nil
}

// encodeRequest carries a waveform to the server. Samples are interleaved
// float32 at the model's native rate and layout.
type encodeRequest struct {
	Model      string    `json:"model"`
	Device     string    `json:"device"`
	Bandwidth  float64   `json:"bandwidth,omitempty"`
	UseLM      bool      `json:"use_lm,omitempty"`
	SampleRate int       `json:"sample_rate"`
	Channels   int       `json:"channels"`
	Samples    []float32 `json:"samples"`
}

// binaryResponse wraps an opaque payload (bitstream or embedding).
type binaryResponse struct {
	Payload []byte `json:"payload"`
}

// decodeRequest carries a compressed payload back to the server. The payload
// header names the model variant, so none is sent.
type decodeRequest struct {
	Device  string `json:"device"`
	Payload []byte `json:"payload"`
}

// decodeResponse is the reconstructed waveform.
type decodeResponse struct {
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
	Samples    string `json:"samples"` // base64 little-endian float32
}

// Encode compresses a waveform to an opaque bitstream payload.
func (m *Model) Encode(ctx context.Context, w *codec.Waveform, useLM bool) ([]byte, error) {
	body, err := m.client.post(ctx, "/encode", encodeRequest{
		Model:      m.spec.Name,
		Device:     string(m.device),
		Bandwidth:  float64(m.bandwidth),
		UseLM:      useLM,
		SampleRate: w.SampleRate,
		Channels:   w.Channels,
		Samples:    w.Samples,
	})
	if err != nil {
		return nil, err
	}
	return unwrapPayload(body)
}

// EncodeEmbedding runs the encoder only and returns the serialized
// embedding, skipping quantization and entropy coding.
func (m *Model) EncodeEmbedding(ctx context.Context, w *codec.Waveform) ([]byte, error) {
	body, err := m.client.post(ctx, "/embed", encodeRequest{
		Model:      m.spec.Name,
		Device:     string(m.device),
		SampleRate: w.SampleRate,
		Channels:   w.Channels,
		Samples:    w.Samples,
	})
	if err != nil {
		return nil, err
	}
	return unwrapPayload(body)
}

// Decode reconstructs a waveform from a compressed payload.
func (m *Model) Decode(ctx context.Context, payload []byte) (*codec.Waveform, error) {
	return m.client.Decode(ctx, payload, m.device)
}

func unwrapPayload(body []byte) ([]byte, error) {
	var resp binaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return resp.Payload, nil
}

// decodeSamples unpacks base64 little-endian float32 samples.
func decodeSamples(s string) ([]float32, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode samples: %w", err)
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("decode samples: %d bytes is not a float32 array", len(raw))
	}
	samples := make([]float32, len(raw)/4)
	for i := range samples {
		bits := binary.LittleEndian.Uint32(raw[4*i : 4*i+4])
		samples[i] = math.Float32frombits(bits)
	}
	return samples, nil
}
