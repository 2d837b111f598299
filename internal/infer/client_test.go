package infer

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hmaury/go-ecdc/internal/codec"
)

func TestHealth(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("path = %q, want /health", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		_ = json.NewEncoder(w).Encode(Health{Status: "ok", CUDA: true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk-test")
	h, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if h.Status != "ok" || !h.CUDA {
		t.Errorf("Health() = %+v, want ok with cuda", h)
	}
}

func TestHealthServerDown(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(nil)
	srv.Close() // connection refused from here on

	c := NewClient(srv.URL, "")
	if _, err := c.Health(context.Background()); !errors.Is(err, ErrServer) {
		t.Fatalf("error = %v, want ErrServer", err)
	}
}

func TestModelUnknownName(t *testing.T) {
	t.Parallel()

	c := NewClient("http://example.invalid", "")
	if _, err := c.Model("encodec_96khz", codec.DeviceCPU); !errors.Is(err, codec.ErrUnknownModel) {
		t.Fatalf("error = %v, want ErrUnknownModel", err)
	}
}

func TestSetTargetBandwidth(t *testing.T) {
	t.Parallel()

	c := NewClient("http://example.invalid", "")
	m, err := c.Model(codec.Model48kHz, codec.DeviceCPU)
	if err != nil {
		t.Fatalf("Model() error = %v", err)
	}

	if err := m.SetTargetBandwidth(codec.Bandwidth6); err != nil {
		t.Errorf("SetTargetBandwidth(6) error = %v", err)
	}
	if err := m.SetTargetBandwidth(codec.Bandwidth1_5); !errors.Is(err, codec.ErrBandwidthUnsupported) {
		t.Errorf("SetTargetBandwidth(1.5) error = %v, want ErrBandwidthUnsupported", err)
	}
}

func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	payload := []byte{0xec, 0xdc, 0x01, 0x02}
	outSamples := []float32{0.25, -0.25, 0.5}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/encode":
			var req encodeRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode encode request: %v", err)
			}
			if req.Model != codec.Model24kHz || req.Bandwidth != 6 || !req.UseLM {
				t.Errorf("encode request = %+v", req)
			}
			if req.Device != "cuda" {
				t.Errorf("device = %q, want cuda", req.Device)
			}
			_ = json.NewEncoder(w).Encode(binaryResponse{Payload: payload})
		case "/decode":
			var req decodeRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode decode request: %v", err)
			}
			if string(req.Payload) != string(payload) {
				t.Errorf("payload = %x, want %x", req.Payload, payload)
			}
			raw := make([]byte, 4*len(outSamples))
			for i, s := range outSamples {
				binary.LittleEndian.PutUint32(raw[4*i:], math.Float32bits(s))
			}
			_ = json.NewEncoder(w).Encode(decodeResponse{
				SampleRate: 24000,
				Channels:   1,
				Samples:    base64.StdEncoding.EncodeToString(raw),
			})
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	m, err := c.Model(codec.Model24kHz, codec.DeviceCUDA)
	if err != nil {
		t.Fatalf("Model() error = %v", err)
	}
	if err := m.SetTargetBandwidth(codec.Bandwidth6); err != nil {
		t.Fatalf("SetTargetBandwidth() error = %v", err)
	}

	in := &codec.Waveform{Samples: []float32{0.1, 0.2}, Channels: 1, SampleRate: 24000}
	got, err := m.Encode(context.Background(), in, true)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("Encode() = %x, want %x", got, payload)
	}

	out, err := m.Decode(context.Background(), got)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if out.SampleRate != 24000 || out.Channels != 1 {
		t.Errorf("decoded format = %d Hz / %d ch", out.SampleRate, out.Channels)
	}
	if len(out.Samples) != len(outSamples) {
		t.Fatalf("decoded %d samples, want %d", len(out.Samples), len(outSamples))
	}
	for i, s := range outSamples {
		if out.Samples[i] != s {
			t.Errorf("sample %d = %v, want %v", i, out.Samples[i], s)
		}
	}
}

func TestEncodeServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model weights not found", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	m, err := c.Model(codec.Model24kHz, codec.DeviceCPU)
	if err != nil {
		t.Fatalf("Model() error = %v", err)
	}
	w := &codec.Waveform{Samples: []float32{0}, Channels: 1, SampleRate: 24000}
	if _, err := m.Encode(context.Background(), w, false); !errors.Is(err, ErrServer) {
		t.Fatalf("error = %v, want ErrServer", err)
	}
}

func TestDefaultServerURL(t *testing.T) {
	t.Parallel()

	c := NewClient("", "")
	if c.baseURL != DefaultServerURL {
		t.Errorf("baseURL = %q, want %q", c.baseURL, DefaultServerURL)
	}
}
