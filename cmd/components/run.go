package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-components/pkg/cc"
	"github.com/dd0wney/cluso-components/pkg/config"
	"github.com/dd0wney/cluso-components/pkg/logging"
	"github.com/dd0wney/cluso-components/pkg/metrics"
	"github.com/dd0wney/cluso-components/pkg/tabio"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Read an edge list on stdin and write (node, label) pairs",
	Long: `Reads a whitespace-delimited edge list (two uint32 fields per line) on
stdin and writes one "node<TAB>label" line per observed node once the
labeling converges. Capacity must cover the number of input edges; with a
backing path the edge array lives in a mapped temporary file that is
unlinked immediately, so the graph may exceed physical memory.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().IntP("capacity", "N", 0, "maximum number of edges (required)")
	runCmd.Flags().StringP("backing", "t", "", "path for the disk-backed edge array (default: anonymous memory)")
	runCmd.Flags().BoolP("reverse-index", "r", false, "maintain a label → members index to speed up relabeling")
	runCmd.Flags().StringP("output", "o", "-", "output path (- for stdout)")
	runCmd.Flags().Bool("compress", false, "snappy-compress the output stream")
	runCmd.Flags().String("metrics-listen", "", "serve Prometheus metrics on this address during the run")
	runCmd.Flags().String("log-level", "", "log level: debug, info, warn, error")
	runCmd.Flags().String("config", "", "YAML config file; flags override file values")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := assembleConfig(cmd)
	if err != nil {
		return &cc.Error{Op: "configure", Kind: cc.KindConfig, Cause: err}
	}

	log := logging.NewJSONLogger(os.Stderr, logging.ParseLevel(cfg.LogLevel)).
		With(logging.F("run_id", uuid.NewString()))

	met := metrics.NewRegistry()
	if cfg.MetricsAddr != "" {
		met.Serve(cfg.MetricsAddr, func(err error) {
			log.Warn("metrics listener failed", logging.F("error", err.Error()))
		})
	}

	store, err := cc.BuildEdgeStore(cfg.Capacity, cfg.BackingPath)
	if err != nil {
		return err
	}
	defer store.Close()

	start := time.Now()
	skipped, err := cc.ReadGraph(os.Stdin, store, log, met)
	if err != nil {
		return err
	}
	readDone := time.Now()
	log.Info("input read",
		logging.F("edges", store.Len()),
		logging.F("skipped", skipped),
		logging.F("elapsed", readDone.Sub(start).String()))

	driver := cc.NewDriver(store, cc.Options{
		ReverseIndex: cfg.ReverseIndex,
		Logger:       log,
		Metrics:      met,
	})
	if err := driver.Run(); err != nil {
		log.Error("run failed",
			logging.F("kind", cc.Classify(err).String()),
			logging.F("error", err.Error()))
		return err
	}
	convergeDone := time.Now()

	out, closeOut, err := openOutput(cfg.Output)
	if err != nil {
		return &cc.Error{Op: "open output", Kind: cc.KindResource, Cause: err}
	}
	w := tabio.NewWriter(out, cfg.Compress)
	if err := driver.WriteLabels(w); err != nil {
		closeOut()
		return &cc.Error{Op: "emit labels", Kind: cc.KindResource, Cause: err}
	}
	if err := w.Close(); err != nil {
		closeOut()
		return &cc.Error{Op: "emit labels", Kind: cc.KindResource, Cause: err}
	}
	if err := closeOut(); err != nil {
		return &cc.Error{Op: "emit labels", Kind: cc.KindResource, Cause: err}
	}

	log.Info("done",
		logging.F("nodes", driver.Nodes()),
		logging.F("iterations", driver.Iterations()),
		logging.F("read_elapsed", readDone.Sub(start).String()),
		logging.F("converge_elapsed", convergeDone.Sub(readDone).String()),
		logging.F("emit_elapsed", time.Since(convergeDone).String()))
	return nil
}

// assembleConfig layers defaults, the optional config file and explicitly
// set flags, then validates the result.
func assembleConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := config.LoadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("capacity") {
		cfg.Capacity, _ = flags.GetInt("capacity")
	}
	if flags.Changed("backing") {
		cfg.BackingPath, _ = flags.GetString("backing")
	}
	if flags.Changed("reverse-index") {
		cfg.ReverseIndex, _ = flags.GetBool("reverse-index")
	}
	if flags.Changed("output") {
		cfg.Output, _ = flags.GetString("output")
	}
	if flags.Changed("compress") {
		cfg.Compress, _ = flags.GetBool("compress")
	}
	if flags.Changed("metrics-listen") {
		cfg.MetricsAddr, _ = flags.GetString("metrics-listen")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output %s: %w", path, err)
	}
	return f, f.Close, nil
}
