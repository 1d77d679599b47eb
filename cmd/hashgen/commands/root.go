package commands

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mgaillard/hashsearch/hashstore"
	"github.com/mgaillard/hashsearch/source"
)

// DefaultSeed makes runs without --seed reproducible.
var DefaultSeed = []uint{11, 16}

// chunk bounds the codes buffered between writes.
const chunk = 1 << 16

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd returns the hashgen command.
func NewRootCmd() *cobra.Command {
	var (
		seed        []uint
		output      string
		compression string
	)

	cmd := &cobra.Command{
		Use:   "hashgen N",
		Short: "Generate uniformly random 64-bit codes",
		Long: `hashgen writes N uniformly random 64-bit codes, one decimal code per line.

The generator is seeded with a fixed default seed so repeated runs produce
the same population.

Examples:
  hashgen 1000000 > population.txt
  hashgen 1000000 --compression zstd -o population.txt.zst`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				return fmt.Errorf("invalid count %q", args[0])
			}
			if len(seed) != 2 {
				return errors.New("--seed takes exactly two values")
			}
			c, err := source.ParseCompression(compression)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				w = f
			}

			zw, err := source.NewWriter(w, c)
			if err != nil {
				return err
			}
			if err := Generate(zw, n, uint64(seed[0]), uint64(seed[1])); err != nil {
				return err
			}
			return zw.Close()
		},
	}

	cmd.Flags().UintSliceVar(&seed, "seed", DefaultSeed, "PCG seed pair")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&compression, "compression", "none", "output compression: none, gzip, zstd, lz4")
	return cmd
}

// Generate writes n random codes drawn from a PCG seeded with (seed1, seed2).
func Generate(w io.Writer, n int, seed1, seed2 uint64) error {
	rng := rand.New(rand.NewPCG(seed1, seed2))
	codes := make([]uint64, 0, min(n, chunk))
	for n > 0 {
		codes = codes[:0]
		for range min(n, chunk) {
			codes = append(codes, rng.Uint64())
		}
		if err := hashstore.WriteCodes(w, codes); err != nil {
			return err
		}
		n -= len(codes)
	}
	return nil
}
