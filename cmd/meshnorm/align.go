package main

import (
	"fmt"
	"io"

	"github.com/chazu/meshalign/pkg/align"
	"github.com/chazu/meshalign/pkg/catalog"
	"github.com/chazu/meshalign/pkg/logging"
	"github.com/chazu/meshalign/pkg/meshio"
	"github.com/chazu/meshalign/pkg/pipeline"
)

func runAlign(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("align", stderr)
	modelFlag := fs.String("model", "", `model landmarks "x,y,z; x,y,z; ..."`)
	referenceFlag := fs.String("reference", "", "reference landmarks; empty uses the catalog reference")
	weightsFlag := fs.String("weights", "", "per-landmark weights a,b,c,...")
	catalogPath := fs.String("catalog", "", "landmark catalog (TOML); empty uses the built-in catalog")
	entry := fs.String("entry", "", "take the model landmarks from this catalog entry")
	out := fs.String("o", "", "output mesh file (required)")
	level := fs.String("log-level", "warn", "log level: debug, info, warn, error")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 || *out == "" {
		fmt.Fprintln(stderr, "usage: meshnorm align [flags] -o out.obj in.obj")
		fs.PrintDefaults()
		return errUsage
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

	reference := cat.ReferenceSet()
	if *referenceFlag != "" {
		if reference, err = parsePoints(*referenceFlag); err != nil {
			return fmt.Errorf("-reference: %w", err)
		}
	}

	var model align.PointSet
	var weights []float64
	switch {
	case *entry != "" && *modelFlag != "":
		return fmt.Errorf("-model and -entry are mutually exclusive")
	case *entry != "":
		e, ok := cat.Lookup(*entry)
		if !ok {
			return fmt.Errorf("no catalog entry %q", *entry)
		}
		model, weights = e.PointSet(), e.Weights
	case *modelFlag != "":
		if model, err = parsePoints(*modelFlag); err != nil {
			return fmt.Errorf("-model: %w", err)
		}
	default:
		return fmt.Errorf("one of -model or -entry is required")
	}
	if *weightsFlag != "" {
		if weights, err = parseFloats(*weightsFlag); err != nil {
			return fmt.Errorf("-weights: %w", err)
		}
	}

	m, err := meshio.Load(fs.Arg(0))
	if err != nil {
		return err
	}

	p := pipeline.New(align.Aligner{Logger: logger})
	res, err := p.AlignWeighted(m, model, reference, weights)
	if err != nil {
		return err
	}
	if err := meshio.Save(*out, res.Mesh); err != nil {
		return err
	}

	printTransform(stdout, res)
	logger.Info("normalized", "in", fs.Arg(0), "out", *out, "rmsd", res.RMSD)
	return nil
}

func printTransform(w io.Writer, res *pipeline.Result) {
	t := res.Transform
	fmt.Fprintln(w, "rotation:")
	for _, row := range t.Rotation {
		fmt.Fprintf(w, "  % .8f % .8f % .8f\n", row[0], row[1], row[2])
	}
	tr := t.Translation()
	fmt.Fprintf(w, "translation: % .6f % .6f % .6f\n", tr.X, tr.Y, tr.Z)
	fmt.Fprintf(w, "model centroid: % .6f % .6f % .6f\n", t.ModelCentroid.X, t.ModelCentroid.Y, t.ModelCentroid.Z)
	fmt.Fprintf(w, "reference centroid: % .6f % .6f % .6f\n", t.ReferenceCentroid.X, t.ReferenceCentroid.Y, t.ReferenceCentroid.Z)
	fmt.Fprintln(w, "normalized landmarks:")
	for i, p := range res.NormalizedModel {
		fmt.Fprintf(w, "  % .6f % .6f % .6f  residual %.6f\n", p.X, p.Y, p.Z, res.Residuals[i])
	}
	fmt.Fprintf(w, "rmsd: %.6f\n", res.RMSD)
}
