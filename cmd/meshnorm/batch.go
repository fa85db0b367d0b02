package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/chazu/meshalign/pkg/align"
	"github.com/chazu/meshalign/pkg/batch"
	"github.com/chazu/meshalign/pkg/catalog"
	"github.com/chazu/meshalign/pkg/logging"
	"github.com/chazu/meshalign/pkg/meshio"
	"github.com/chazu/meshalign/pkg/pipeline"
)

func runBatch(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("run", stderr)
	catalogPath := fs.String("catalog", "", "landmark catalog (TOML); empty uses the built-in catalog")
	in := fs.String("in", ".", "directory holding the catalog's mesh files")
	out := fs.String("out", "normalized_models", "output directory")
	format := fs.String("format", "same", "output format: obj, stl or same")
	workers := fs.Int("workers", 0, "meshes processed concurrently (0 = GOMAXPROCS)")
	attempts := fs.Uint("attempts", batch.DefaultAttempts, "tries per file read or write")
	tolerance := fs.Float64("tolerance", 5, "warn when the landmark RMSD exceeds this (0 disables)")
	degenerate := fs.Float64("degenerate-tolerance", align.DefaultDegenerateTolerance, "smallest accepted σ₂/σ₁ of the landmark covariance")
	level := fs.String("log-level", "info", "log level: debug, info, warn, error")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	logger, err := logging.New(stderr, *level)
	if err != nil {
		return err
	}

	cat := catalog.Default()
	if *catalogPath != "" {
		if cat, err = catalog.Load(*catalogPath); err != nil {
			return err
		}
	}

	cfg := batch.Config{
		InputDir:  *in,
		OutputDir: *out,
		Workers:   *workers,
		Attempts:  *attempts,
		Tolerance: *tolerance,
	}
	if *format != "same" {
		if cfg.Format, err = meshio.ParseFormat(*format); err != nil {
			return err
		}
	}

	r := batch.NewRunner(cfg, logger)
	r.Pipeline = pipeline.New(align.Aligner{
		DegenerateTolerance: *degenerate,
		Logger:              logger.WithPrefix("align"),
	})

	report, err := r.Run(ctx, cat)
	if report != nil {
		printReport(stdout, report)
	}
	if err != nil {
		return err
	}
	if n := len(report.Failed()); n > 0 {
		return fmt.Errorf("%w: %d of %d", errFailedItems, n, len(report.Items))
	}
	return nil
}

func printReport(w io.Writer, report *batch.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "MESH\tSTATUS\tVERTICES\tRMSD\tMAX\tOUTPUT\n")
	for _, it := range report.Items {
		if it.OK() {
			fmt.Fprintf(tw, "%s\tok\t%d\t%.4f\t%.4f\t%s\n", it.Name, it.Vertices, it.RMSD, it.MaxResidual, it.Output)
		} else {
			fmt.Fprintf(tw, "%s\tfailed\t-\t-\t-\t%v\n", it.Name, it.Err)
		}
	}
	tw.Flush()
}
