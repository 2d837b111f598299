package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hmaury/go-ecdc/internal/codec"
	"github.com/hmaury/go-ecdc/internal/config"
)

// fakeConfigLoader returns a canned config.
type fakeConfigLoader struct {
	cfg config.Config
	err error
}

func (l *fakeConfigLoader) Load() (config.Config, error) {
	return l.cfg, l.err
}

// fakeModel implements codec.Model with canned responses and call counters.
type fakeModel struct {
	spec      codec.Spec
	bandwidth codec.Bandwidth

	payload   []byte
	embedding []byte
	decoded   *codec.Waveform

	encodeCalls int
	embedCalls  int
	decodeCalls int
	lastUseLM   bool
	lastInput   *codec.Waveform

	encodeErr error
}

func (m *fakeModel) Spec() codec.Spec { return m.spec }

func (m *fakeModel) SetTargetBandwidth(b codec.Bandwidth) error {
	if !m.spec.Supports(b) {
		return fmt.Errorf("%w: %s", codec.ErrBandwidthUnsupported, b)
	}
	m.bandwidth = b
	return nil
}

func (m *fakeModel) Encode(_ context.Context, w *codec.Waveform, useLM bool) ([]byte, error) {
	m.encodeCalls++
	m.lastUseLM = useLM
	m.lastInput = w
	if m.encodeErr != nil {
		return nil, m.encodeErr
	}
	return m.payload, nil
}

func (m *fakeModel) EncodeEmbedding(_ context.Context, w *codec.Waveform) ([]byte, error) {
	m.embedCalls++
	m.lastInput = w
	return m.embedding, nil
}

func (m *fakeModel) Decode(context.Context, []byte) (*codec.Waveform, error) {
	m.decodeCalls++
	return m.decoded, nil
}

// fakeCapability tracks model bindings and registry-level decodes.
type fakeCapability struct {
	model *fakeModel

	cuda      bool
	healthErr error

	decoded     *codec.Waveform
	decodeCalls int
	lastPayload []byte

	modelCalls int
	lastName   string
	lastDevice codec.Device
}

func (c *fakeCapability) AcceleratorAvailable(context.Context) (bool, error) {
	if c.healthErr != nil {
		return false, c.healthErr
	}
	return c.cuda, nil
}

func (c *fakeCapability) Model(name string, device codec.Device) (codec.Model, error) {
	c.modelCalls++
	c.lastName = name
	c.lastDevice = device
	return c.model, nil
}

func (c *fakeCapability) Decode(_ context.Context, payload []byte, device codec.Device) (*codec.Waveform, error) {
	c.decodeCalls++
	c.lastPayload = payload
	c.lastDevice = device
	return c.decoded, nil
}

// fakeFactory hands out one capability and records its configuration.
type fakeFactory struct {
	capability *fakeCapability
	lastURL    string
	lastKey    string
}

func (f *fakeFactory) NewCapability(serverURL, apiKey string) Capability {
	f.lastURL = serverURL
	f.lastKey = apiKey
	return f.capability
}

// fakeAudio implements AudioIO in memory, except that Save creates a real
// marker file so tests can assert on output existence.
type fakeAudio struct {
	loaded  *codec.Waveform
	loadErr error

	loadCalls    int
	convertCalls int
	lastRate     int
	lastChannels int

	saveCalls   int
	lastSaved   *codec.Waveform
	lastRescale bool
}

func (a *fakeAudio) Load(string) (*codec.Waveform, error) {
	a.loadCalls++
	if a.loadErr != nil {
		return nil, a.loadErr
	}
	return a.loaded, nil
}

func (a *fakeAudio) Convert(w *codec.Waveform, targetRate, targetChannels int) (*codec.Waveform, error) {
	a.convertCalls++
	a.lastRate = targetRate
	a.lastChannels = targetChannels
	return w, nil
}

func (a *fakeAudio) Save(w *codec.Waveform, path string, rescale bool) error {
	a.saveCalls++
	a.lastSaved = w
	a.lastRescale = rescale
	return os.WriteFile(path, []byte("RIFF"), 0o644)
}

// testNow returns a deterministic clock advancing one second per call.
func testNow() func() time.Time {
	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	calls := 0
	return func() time.Time {
		t := base.Add(time.Duration(calls) * time.Second)
		calls++
		return t
	}
}
