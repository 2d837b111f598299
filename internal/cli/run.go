package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hmaury/go-ecdc/internal/codec"
	"github.com/hmaury/go-ecdc/internal/plan"
)

// clipLimit is the peak magnitude above which a reconstructed waveform is
// considered clipped.
const clipLimit = 0.99

// Run resolves, validates, and executes one pipeline.
// Validation order: input exists -> mode/extension -> output dir -> overwrite
// policy -> bandwidth membership. Everything runs before the first codec call
// so a doomed invocation wastes no model work.
func Run(ctx context.Context, env *Env, opts Options) error {
	start := env.Now()

	// === VALIDATION (fail-fast) ===

	// 1. Input exists
	if _, err := os.Stat(opts.Input); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrInputNotFound, opts.Input)
		}
		return fmt.Errorf("cannot access input file: %w", err)
	}

	// 2. Pipeline mode and effective output path; extension legality is
	// enforced by Resolve, so a Plan never carries an illegal output.
	p, err := plan.Resolve(opts.Input, opts.Output, opts.DecompressSuffix)
	if err != nil {
		return err
	}

	// 3. Output directory exists
	// 4. Output does not already exist, unless --force
	if err := checkOutput(p.Output, opts.Force); err != nil {
		return err
	}

	// 5. Requested bandwidth belongs to the selected model's supported set
	// (compression family only; decompression reads the bandwidth from the
	// bitstream itself)
	spec := codec.SpecForTier(opts.HQ)
	if p.Mode.Compression() && !spec.Supports(opts.Bandwidth) {
		return fmt.Errorf("%w: bandwidth %s is not supported by the model %s",
			codec.ErrBandwidthUnsupported, opts.Bandwidth, spec.Name)
	}

	// === DEVICE ===

	cfg, err := env.Config.Load()
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to load config: %v\n", err)
	}

	// Chosen once per invocation; every codec call in this run uses it.
	capability := env.Codec.NewCapability(cfg.ServerURL, cfg.APIKey)
	device := codec.DeviceCPU
	if opts.GPU {
		available, err := capability.AcceleratorAvailable(ctx)
		if err != nil {
			return err
		}
		device = codec.Select(true, available)
	}

	// === PIPELINE ===

	switch p.Mode {
	case plan.Decompress:
		err = runDecompress(ctx, env, capability, p, opts, device)
	case plan.CompressBitstream, plan.CompressEmbedding, plan.CompressRoundTrip:
		err = runCompression(ctx, env, capability, p, opts, spec, device)
	default:
		err = fmt.Errorf("unhandled pipeline mode %v", p.Mode)
	}
	if err != nil {
		return err
	}

	if opts.Time {
		elapsed := env.Now().Sub(start).Seconds()
		fmt.Fprintf(env.Stdout, "Time elapsed: %.3f seconds for b=%s, hq=%v, lm=%v, device=%s\n",
			elapsed, opts.Bandwidth, opts.HQ, opts.LM, device)
	}
	return nil
}

// checkOutput validates the output location: its directory must exist, and
// the file itself must not, unless force is set.
func checkOutput(path string, force bool) error {
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrOutputDirMissing, path)
		}
		return fmt.Errorf("cannot access output folder: %w", err)
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%w: %s (use -f/--force to overwrite)", ErrOutputExists, path)
	}
	return nil
}

// runDecompress reads a bitstream, decodes it, and writes playable audio.
func runDecompress(ctx context.Context, env *Env, capability Capability, p plan.Plan, opts Options, device codec.Device) error {
	payload, err := os.ReadFile(p.Input) // #nosec G304 -- validated input path
	if err != nil {
		return fmt.Errorf("cannot read input file: %w", err)
	}

	out, err := capability.Decode(ctx, payload, device)
	if err != nil {
		return err
	}

	checkClipping(env, out, opts.Rescale)
	return env.Audio.Save(out, p.Output, opts.Rescale)
}

// runCompression runs the three compression-family pipelines. The waveform is
// converted to the model's native rate and layout before any encode.
func runCompression(ctx context.Context, env *Env, capability Capability, p plan.Plan, opts Options, spec codec.Spec, device codec.Device) error {
	model, err := capability.Model(spec.Name, device)
	if err != nil {
		return err
	}
	// Precondition of Encode; the bandwidth was validated above.
	if err := model.SetTargetBandwidth(opts.Bandwidth); err != nil {
		return err
	}

	w, err := env.Audio.Load(p.Input)
	if err != nil {
		return err
	}
	w, err = env.Audio.Convert(w, spec.SampleRate, spec.Channels)
	if err != nil {
		return err
	}

	switch p.Mode {
	case plan.CompressBitstream:
		payload, err := model.Encode(ctx, w, opts.LM)
		if err != nil {
			return err
		}
		return writeOutput(p.Output, payload)

	case plan.CompressEmbedding:
		// The LM flag only affects entropy coding, which this path skips
		// entirely; it is accepted and ignored.
		emb, err := model.EncodeEmbedding(ctx, w)
		if err != nil {
			return err
		}
		return writeOutput(p.Output, emb)

	case plan.CompressRoundTrip:
		payload, err := model.Encode(ctx, w, opts.LM)
		if err != nil {
			return err
		}
		out, err := model.Decode(ctx, payload)
		if err != nil {
			return err
		}
		checkClipping(env, out, opts.Rescale)
		return env.Audio.Save(out, p.Output, opts.Rescale)

	default:
		return fmt.Errorf("unhandled compression mode %v", p.Mode)
	}
}

// writeOutput persists an opaque payload (bitstream or embedding) verbatim.
func writeOutput(path string, payload []byte) error {
	// #nosec G306 -- user-facing output file with standard permissions
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// checkClipping warns when a waveform destined for playback exceeds the
// clipping limit and rescaling was not requested. It never blocks output.
func checkClipping(env *Env, w *codec.Waveform, rescale bool) {
	if rescale {
		return
	}
	if peak := w.Peak(); peak > clipLimit {
		fmt.Fprintf(env.Stderr, "Clipping!! max scale %.2f, limit is %.2f. "+
			"To avoid clipping, use the -r option to rescale the output.\n", peak, clipLimit)
	}
}
