package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/hmaury/go-ecdc/internal/audioio"
	"github.com/hmaury/go-ecdc/internal/codec"
	"github.com/hmaury/go-ecdc/internal/config"
	"github.com/hmaury/go-ecdc/internal/infer"
)

// Env holds injectable dependencies for the CLI. This is the central
// injection point for testing the driver in isolation.
//
// All fields have production defaults via DefaultEnv(). Tests can override
// specific fields using the With* options or by creating a custom Env.
type Env struct {
	// I/O and environment
	Stdout io.Writer
	Stderr io.Writer
	Now    func() time.Time

	// External collaborators
	Config ConfigLoader
	Codec  CapabilityFactory
	Audio  AudioIO
}

// ConfigLoader loads the persistent user configuration.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// Capability is the external codec: a registry of model variants plus
// accelerator discovery. The neural network itself lives behind it.
type Capability interface {
	// AcceleratorAvailable reports whether accelerated compute can be used.
	AcceleratorAvailable(ctx context.Context) (bool, error)

	// Model binds a registered model variant on the given device.
	Model(name string, device codec.Device) (codec.Model, error)

	// Decode reconstructs a waveform from a compressed payload without a
	// prior model binding; the payload names its own variant.
	Decode(ctx context.Context, payload []byte, device codec.Device) (*codec.Waveform, error)
}

// CapabilityFactory builds the codec capability from its configuration.
type CapabilityFactory interface {
	NewCapability(serverURL, apiKey string) Capability
}

// AudioIO loads, converts, and persists waveforms.
type AudioIO interface {
	Load(path string) (*codec.Waveform, error)
	Convert(w *codec.Waveform, targetRate, targetChannels int) (*codec.Waveform, error)
	Save(w *codec.Waveform, path string, rescale bool) error
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.Config = l
	}
}

// WithNow sets the time provider.
func WithNow(fn func() time.Time) EnvOption {
	return func(e *Env) {
		e.Now = fn
	}
}

// WithCapabilityFactory sets the codec capability factory.
func WithCapabilityFactory(f CapabilityFactory) EnvOption {
	return func(e *Env) {
		e.Codec = f
	}
}

// WithAudioIO sets the audio adapter.
func WithAudioIO(a AudioIO) EnvOption {
	return func(e *Env) {
		e.Audio = a
	}
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Now:    time.Now,
		Config: &defaultConfigLoader{},
		Codec:  &defaultCapabilityFactory{},
		Audio:  &defaultAudioIO{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

// defaultCapabilityFactory builds the HTTP inference client.
type defaultCapabilityFactory struct{}

func (defaultCapabilityFactory) NewCapability(serverURL, apiKey string) Capability {
	return &inferCapability{client: infer.NewClient(serverURL, apiKey)}
}

// inferCapability adapts infer.Client to the Capability interface.
type inferCapability struct {
	client *infer.Client
}

func (c *inferCapability) AcceleratorAvailable(ctx context.Context) (bool, error) {
	h, err := c.client.Health(ctx)
	if err != nil {
		return false, err
	}
	return h.CUDA, nil
}

func (c *inferCapability) Model(name string, device codec.Device) (codec.Model, error) {
	return c.client.Model(name, device)
}

func (c *inferCapability) Decode(ctx context.Context, payload []byte, device codec.Device) (*codec.Waveform, error) {
	return c.client.Decode(ctx, payload, device)
}

// defaultAudioIO implements AudioIO using the audioio package.
type defaultAudioIO struct{}

func (defaultAudioIO) Load(path string) (*codec.Waveform, error) {
	return audioio.Load(path)
}

func (defaultAudioIO) Convert(w *codec.Waveform, targetRate, targetChannels int) (*codec.Waveform, error) {
	return audioio.Convert(w, targetRate, targetChannels)
}

func (defaultAudioIO) Save(w *codec.Waveform, path string, rescale bool) error {
	return audioio.Save(w, path, rescale)
}

// Compile-time interface verification.
var (
	_ ConfigLoader      = (*defaultConfigLoader)(nil)
	_ CapabilityFactory = (*defaultCapabilityFactory)(nil)
	_ Capability        = (*inferCapability)(nil)
	_ AudioIO           = (*defaultAudioIO)(nil)
)
