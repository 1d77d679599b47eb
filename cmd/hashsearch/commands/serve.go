package commands

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/mgaillard/hashsearch"
	"github.com/mgaillard/hashsearch/hashstore"
	hsprom "github.com/mgaillard/hashsearch/metrics/prometheus"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve searches over HTTP",
		Long: `serve loads the population once and answers searches over HTTP.

Endpoints:
  GET /search?q=<code>[&q=<code>...][&t=<threshold>]
  GET /info
  GET /metrics   Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, *flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				cfg.Serve.Listen = listen
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector())
			mc, err := hsprom.NewCollector(reg, "hashsearch")
			if err != nil {
				return err
			}

			s, err := openSearcher(cmd, cfg, flags.input, hashsearch.WithMetricsCollector(mc))
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := &http.Server{
				Addr:              cfg.Serve.Listen,
				Handler:           NewHandler(s, cfg.Threshold, reg),
				ReadHeaderTimeout: 5 * time.Second,
			}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			cmd.PrintErrf("listening on %s\n", cfg.Serve.Listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config, :8080)")
	return cmd
}

type searchResponse struct {
	Query     string        `json:"query"`
	Truncated bool          `json:"truncated,omitempty"`
	Matches   []matchRecord `json:"matches"`
}

type matchRecord struct {
	Hash     string `json:"hash"`
	Distance int    `json:"distance"`
}

// NewHandler routes /search, /info and /metrics. Codes are rendered as
// decimal strings since they exceed the JSON safe integer range.
func NewHandler(s hashstore.Store[uint64], defaultThreshold int, gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /search", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		queries, err := parseQueries(q["q"])
		if err != nil || len(queries) == 0 {
			http.Error(w, "at least one decimal q parameter is required", http.StatusBadRequest)
			return
		}
		threshold := defaultThreshold
		if t := q.Get("t"); t != "" {
			if threshold, err = strconv.Atoi(t); err != nil {
				http.Error(w, "invalid threshold", http.StatusBadRequest)
				return
			}
		}

		results, err := s.BatchSearch(r.Context(), queries, threshold)
		switch {
		case errors.Is(err, hashstore.ErrInvalidThreshold):
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		case err != nil:
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		resp := make([]searchResponse, len(results))
		for i, res := range results {
			resp[i] = searchResponse{
				Query:     strconv.FormatUint(res.Query, 10),
				Truncated: res.Truncated,
				Matches:   make([]matchRecord, len(res.Matches)),
			}
			for j, m := range res.Matches {
				resp[i].Matches[j] = matchRecord{Hash: strconv.FormatUint(m.Hash, 10), Distance: m.Distance}
			}
		}
		writeJSON(w, resp)
	})

	mux.HandleFunc("GET /info", func(w http.ResponseWriter, _ *http.Request) {
		info := s.Info()
		writeJSON(w, map[string]any{
			"backend":      info.Backend,
			"exact":        info.Exact,
			"deduplicated": info.Deduplicated,
			"k":            info.K,
			"state":        s.State().String(),
		})
	})

	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
