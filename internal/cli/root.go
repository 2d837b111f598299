package cli

import (
	"github.com/spf13/cobra"

	"github.com/hmaury/go-ecdc/internal/codec"
	"github.com/hmaury/go-ecdc/internal/plan"
)

// Options is the immutable invocation configuration, built once from the
// parsed command line and passed explicitly to everything that needs it.
type Options struct {
	Input            string
	Output           string
	Bandwidth        codec.Bandwidth
	HQ               bool
	LM               bool
	Force            bool
	DecompressSuffix string
	Rescale          bool
	GPU              bool
	Time             bool
}

// RootCmd creates the ecdc command. The env parameter provides injectable
// dependencies for testing.
func RootCmd(env *Env, version string) *cobra.Command {
	var (
		bandwidth float64
		hq        bool
		lm        bool
		force     bool
		suffix    string
		rescale   bool
		gpu       bool
		showTime  bool
	)

	cmd := &cobra.Command{
		Use:   "ecdc <input> [output]",
		Short: "High fidelity neural audio codec",
		Long: `High fidelity neural audio codec.

If the input is a .ecdc bitstream, it is decompressed to a .wav file. Any
other input is compressed: to a .ecdc bitstream by default, to an encoder
embedding if the output ends in .pt, or through a full compression and
decompression cycle if the output ends in .wav (to preview the lossy
degradation without an intermediate file).`,
		Example: `  ecdc sample.wav                 # produces sample.ecdc
  ecdc sample.ecdc                # produces sample_decompressed.wav
  ecdc sample.wav degraded.wav    # compression/decompression cycle
  ecdc sample.wav sample.pt       # encoder embedding only
  ecdc -q -b 12 music.wav         # 48 kHz stereo model at 12 kbit/s`,
		Version: version,
		Args:    cobra.RangeArgs(1, 2),
		// Silence Cobra's default error/usage printing; main handles it.
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := Options{
				Input:            args[0],
				Bandwidth:        codec.Bandwidth(bandwidth),
				HQ:               hq,
				LM:               lm,
				Force:            force,
				DecompressSuffix: suffix,
				Rescale:          rescale,
				GPU:              gpu,
				Time:             showTime,
			}
			if len(args) == 2 {
				opts.Output = args[1]
			}
			return Run(cmd.Context(), env, opts)
		},
	}

	cmd.Flags().Float64VarP(&bandwidth, "bandwidth", "b", float64(codec.DefaultBandwidth),
		"Target bandwidth in kbit/s (1.5, 3, 6, 12 or 24); 1.5 is not supported with --hq")
	cmd.Flags().BoolVarP(&hq, "hq", "q", false,
		"Use the HQ stereo model operating on 48 kHz sampled audio")
	cmd.Flags().BoolVarP(&lm, "lm", "l", false,
		"Use a language model to reduce the output size (roughly 5x slower)")
	cmd.Flags().BoolVarP(&force, "force", "f", false,
		"Overwrite the output file if it exists")
	cmd.Flags().StringVarP(&suffix, "decompress-suffix", "s", plan.DefaultDecompressSuffix,
		"Suffix for the decompressed output file (if no output path specified)")
	cmd.Flags().BoolVarP(&rescale, "rescale", "r", false,
		"Automatically rescale the output to avoid clipping")
	cmd.Flags().BoolVarP(&gpu, "gpu", "g", false,
		"Use accelerated compute if available")
	cmd.Flags().BoolVarP(&showTime, "time", "t", false,
		"Print elapsed time information")

	return cmd
}
