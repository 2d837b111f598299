// Package infer talks to a local EnCodec inference server over HTTP. It is
// the default implementation of the codec capability: the neural encoder,
// quantizer, entropy coder, and decoder all live behind the server; this
// client only moves waveforms and payloads across.
package infer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hmaury/go-ecdc/internal/codec"
)

// DefaultServerURL is used when no server URL is configured.
const DefaultServerURL = "http://127.0.0.1:8331"

// ErrServer indicates the inference server rejected or failed a request.
var ErrServer = errors.New("inference server error")

// Client communicates with the inference server's REST API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates an inference client. baseURL falls back to
// DefaultServerURL when empty. Codec calls can legitimately run for minutes,
// so no client-level timeout is set; cancellation comes from the context.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultServerURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{},
	}
}

// Health reports server status and accelerator availability.
type Health struct {
	Status string `json:"status"`
	CUDA   bool   `json:"cuda"`
}

// Health queries the server's health endpoint.
func (c *Client) Health(ctx context.Context) (Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return Health{}, fmt.Errorf("create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return Health{}, fmt.Errorf("%w: %v", ErrServer, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Health{}, fmt.Errorf("%w: health returned %s", ErrServer, resp.Status)
	}

	var h Health
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return Health{}, fmt.Errorf("decode health response: %w", err)
	}
	return h, nil
}

// Model binds a registered model variant on the selected device. The model
// weights stay server-side; this only validates the name locally.
func (c *Client) Model(name string, device codec.Device) (codec.Model, error) {
	spec, err := codec.SpecFor(name)
	if err != nil {
		return nil, err
	}
	return &Model{
		client: c,
		spec:   spec,
		device: device,
	}, nil
}

// Decode reconstructs a waveform from a compressed payload. The payload
// header identifies the model variant, so decoding needs no prior Model
// binding; this is what the decompression pipeline uses.
func (c *Client) Decode(ctx context.Context, payload []byte, device codec.Device) (*codec.Waveform, error) {
	body, err := c.post(ctx, "/decode", decodeRequest{
		Device:  string(device),
		Payload: payload,
	})
	if err != nil {
		return nil, err
	}

	var resp decodeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	samples, err := decodeSamples(resp.Samples)
	if err != nil {
		return nil, err
	}
	return &codec.Waveform{
		Samples:    samples,
		Channels:   resp.Channels,
		SampleRate: resp.SampleRate,
	}, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// post sends a JSON body and returns the raw response body.
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServer, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %s returned %s: %s", ErrServer, path, resp.Status, bytes.TrimSpace(msg))
	}

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return out, nil
}
