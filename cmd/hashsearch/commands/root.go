package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mgaillard/hashsearch"
	"github.com/mgaillard/hashsearch/hashstore"
)

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

type globalFlags struct {
	configFile  string
	input       string
	backend     string
	threshold   int
	logLevel    string
	logFormat   string
	compression string
}

// NewRootCmd returns the hashsearch command tree.
func NewRootCmd() *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:   "hashsearch [flags] query...",
		Short: "Find population hashes within a Hamming radius",
		Long: `hashsearch loads a population of 64-bit hashes and prints, for every query,
the hashes within --threshold bits.

Backends:
  bruteforce  exact scan, duplicates preserved
  gpu         exact device filter, duplicates collapse
  indexed     multi-index hashing, at most k matches per query

Examples:
  hashsearch -i population.txt -t 8 1234567890 987654321
  hashsearch -i s3://bucket/population.txt.zst --backend indexed --config hashsearch.yaml 42
  hashgen 1000 | hashsearch -i - -t 20 42`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			queries, err := parseQueries(args)
			if err != nil {
				return err
			}
			cfg, err := resolveConfig(cmd, flags)
			if err != nil {
				return err
			}
			s, err := openSearcher(cmd, cfg, flags.input)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			results, err := s.BatchSearch(cmd.Context(), queries, cfg.Threshold)
			if err != nil {
				return err
			}
			return printResults(cmd.OutOrStdout(), results)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "YAML config file")
	pf.StringVarP(&flags.input, "input", "i", "", `population: path, "-", s3://bucket/key or minio://bucket/key`)
	pf.StringVarP(&flags.backend, "backend", "b", "", "backend: bruteforce, gpu, indexed")
	pf.IntVarP(&flags.threshold, "threshold", "t", 0, "maximum Hamming distance (inclusive)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&flags.logFormat, "log-format", "", "log format: text, json")
	pf.StringVar(&flags.compression, "compression", "", "input compression: auto, none, gzip, zstd, lz4")

	cmd.AddCommand(newServeCmd(&flags))
	return cmd
}

// resolveConfig loads the config file and applies the flags that were set.
func resolveConfig(cmd *cobra.Command, flags globalFlags) (Config, error) {
	cfg := DefaultConfig()
	if flags.configFile != "" {
		var err error
		if cfg, err = LoadConfig(flags.configFile); err != nil {
			return Config{}, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("backend") {
		cfg.Backend = flags.backend
	}
	if changed("threshold") {
		cfg.Threshold = flags.threshold
	}
	if changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
	if changed("log-format") {
		cfg.Log.Format = flags.logFormat
	}
	if changed("compression") {
		cfg.Compression = flags.compression
	}
	return cfg, cfg.Validate()
}

func openSearcher(cmd *cobra.Command, cfg Config, input string, extra ...hashsearch.Option) (*hashsearch.Searcher[uint64], error) {
	ctx := cmd.Context()

	backend, err := hashsearch.ParseBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}
	rc := cfg.Controller()
	opts, err := cfg.SearcherOptions(cfg.Logger(cmd.ErrOrStderr()), rc, extra...)
	if err != nil {
		return nil, err
	}

	src, err := OpenInput(ctx, cfg, input, cmd.InOrStdin(), rc)
	if err != nil {
		return nil, err
	}

	s, err := hashsearch.New[uint64](backend, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := s.Load(ctx, src); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func parseQueries(args []string) ([]uint64, error) {
	queries := make([]uint64, len(args))
	for i, a := range args {
		q, err := hashstore.ParseCode[uint64](a)
		if err != nil {
			return nil, fmt.Errorf("invalid query %q: %w", a, err)
		}
		queries[i] = q
	}
	return queries, nil
}

func printResults(w io.Writer, results []hashsearch.Result[uint64]) error {
	var buf []byte
	for _, r := range results {
		buf = strconv.AppendUint(buf[:0], r.Query, 10)
		buf = fmt.Appendf(buf, ": %d matches", len(r.Matches))
		if r.Truncated {
			buf = append(buf, " (truncated)"...)
		}
		buf = append(buf, '\n')
		for _, m := range r.Matches {
			buf = fmt.Appendf(buf, "  %d\t%d\n", m.Hash, m.Distance)
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}
