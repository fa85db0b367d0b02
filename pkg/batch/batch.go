// Package batch is the driver that normalizes every mesh of a catalog: it
// loads each mesh file, aligns it against the catalog's reference landmarks
// and writes the result to an output directory. A failing mesh is reported
// and skipped; the rest of the batch continues.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/chazu/meshalign/pkg/align"
	"github.com/chazu/meshalign/pkg/catalog"
	"github.com/chazu/meshalign/pkg/logging"
	"github.com/chazu/meshalign/pkg/mesh"
	"github.com/chazu/meshalign/pkg/meshio"
	"github.com/chazu/meshalign/pkg/pipeline"
)

const (
	// DefaultAttempts is the number of tries per file read or write.
	DefaultAttempts = 3
	// DefaultRetryDelay is the base delay between tries.
	DefaultRetryDelay = 100 * time.Millisecond
)

// Config controls a batch run.
type Config struct {
	InputDir  string        // relative catalog file paths resolve against it
	OutputDir string        // created if missing
	Format    meshio.Format // output format; empty keeps the input extension
	Workers   int           // concurrent meshes; <= 0 uses GOMAXPROCS
	Attempts  uint          // tries per file read or write; 0 uses DefaultAttempts
	// RetryDelay is the base backoff between tries; 0 uses DefaultRetryDelay.
	RetryDelay time.Duration
	// Tolerance is the landmark RMSD above which a fit is logged as poor.
	// Zero disables the check.
	Tolerance float64
}

// ItemResult is the outcome for one catalog entry.
type ItemResult struct {
	Name        string
	Input       string
	Output      string // empty unless the mesh was written
	Vertices    int
	Transform   align.RigidTransform
	RMSD        float64
	MaxResidual float64
	Duration    time.Duration
	Err         error
}

// OK reports whether the mesh was normalized and written.
func (r ItemResult) OK() bool {
	return r.Err == nil
}

// Report summarizes a run. Items are in catalog order.
type Report struct {
	RunID   string
	Started time.Time
	Elapsed time.Duration
	Items   []ItemResult
}

// Succeeded returns the number of meshes written.
func (r *Report) Succeeded() int {
	n := 0
	for _, it := range r.Items {
		if it.OK() {
			n++
		}
	}
	return n
}

// Failed returns the items that did not complete.
func (r *Report) Failed() []ItemResult {
	var out []ItemResult
	for _, it := range r.Items {
		if !it.OK() {
			out = append(out, it)
		}
	}
	return out
}

// Runner executes batch runs.
type Runner struct {
	Config   Config
	Pipeline *pipeline.Pipeline
	Logger   *log.Logger

	load func(string) (*mesh.Mesh, error)
	save func(string, *mesh.Mesh) error
}

// NewRunner returns a runner with a default pipeline.
func NewRunner(cfg Config, logger *log.Logger) *Runner {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Runner{
		Config:   cfg,
		Pipeline: &pipeline.Pipeline{},
		Logger:   logger,
		load:     meshio.Load,
		save:     meshio.Save,
	}
}

// Run normalizes every mesh in the catalog. Per-mesh failures are recorded
// in the report and do not stop the batch. The returned error is non-nil
// only when the run itself could not proceed (output directory, context
// cancellation); the report is returned in every case.
func (r *Runner) Run(ctx context.Context, cat *catalog.Catalog) (*Report, error) {
	report := &Report{
		RunID:   uuid.NewString(),
		Started: time.Now(),
		Items:   make([]ItemResult, len(cat.Meshes)),
	}
	logger := r.Logger.With("run", report.RunID)

	for i, e := range cat.Meshes {
		report.Items[i] = ItemResult{Name: e.Label(), Input: r.inputPath(e)}
	}

	if err := os.MkdirAll(r.Config.OutputDir, 0o755); err != nil {
		return report, fmt.Errorf("batch: create output directory: %w", err)
	}

	reference := cat.ReferenceSet()
	logger.Info("batch started", "meshes", len(cat.Meshes), "workers", r.workers(), "out", r.Config.OutputDir)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())
	scheduled := make([]bool, len(cat.Meshes))
	for i, e := range cat.Meshes {
		if gctx.Err() != nil {
			break
		}
		scheduled[i] = true
		g.Go(func() error {
			report.Items[i] = r.process(gctx, logger, e, reference, report.Items[i])
			return nil
		})
	}
	_ = g.Wait()
	report.Elapsed = time.Since(report.Started)

	if err := ctx.Err(); err != nil {
		for i, ok := range scheduled {
			if !ok {
				report.Items[i].Err = err
			}
		}
		logger.Warn("batch cancelled", "err", err)
		return report, err
	}

	failed := len(report.Failed())
	logger.Info("batch finished",
		"succeeded", report.Succeeded(),
		"failed", failed,
		"elapsed", report.Elapsed.Round(time.Millisecond))
	return report, nil
}

func (r *Runner) process(ctx context.Context, logger *log.Logger, e catalog.Entry, reference align.PointSet, item ItemResult) ItemResult {
	start := time.Now()
	logger = logger.With("mesh", item.Name)

	logger.Debug("loading", "path", item.Input)
	var m *mesh.Mesh
	err := r.retry(ctx, logger, "load", func() error {
		var err error
		m, err = r.load(item.Input)
		return err
	})
	if err != nil {
		item.Err = fmt.Errorf("load: %w", err)
		logger.Error("skipping mesh", "err", item.Err)
		item.Duration = time.Since(start)
		return item
	}
	item.Vertices = m.VertexCount()

	res, err := r.Pipeline.AlignWeighted(m, e.PointSet(), reference, e.Weights)
	if err != nil {
		item.Err = err
		logger.Error("skipping mesh", "kind", align.KindOf(err), "err", err)
		item.Duration = time.Since(start)
		return item
	}
	item.Transform = res.Transform
	item.RMSD = res.RMSD
	item.MaxResidual = align.MaxResidual(res.Residuals)
	logger.Debug("normalized landmarks", "points", res.NormalizedModel, "residuals", res.Residuals)
	if tol := r.Config.Tolerance; tol > 0 && res.RMSD > tol {
		logger.Warn("landmark fit exceeds tolerance", "rmsd", res.RMSD, "tolerance", tol)
	}

	out := r.outputPath(e)
	err = r.retry(ctx, logger, "save", func() error {
		return r.save(out, res.Mesh)
	})
	if err != nil {
		item.Err = fmt.Errorf("save: %w", err)
		logger.Error("skipping mesh", "err", item.Err)
		item.Duration = time.Since(start)
		return item
	}
	item.Output = out
	item.Duration = time.Since(start)
	logger.Info("normalized", "out", out, "vertices", item.Vertices, "rmsd", res.RMSD)
	return item
}

// retry runs fn until it succeeds, fails permanently or the attempts run out.
// Only filesystem errors other than missing files and permissions are
// retried.
func (r *Runner) retry(ctx context.Context, logger *log.Logger, op string, fn func() error) error {
	return retry.Do(fn,
		retry.Context(ctx),
		retry.Attempts(r.attempts()),
		retry.Delay(r.retryDelay()),
		retry.LastErrorOnly(true),
		retry.RetryIf(transient),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("retrying", "op", op, "attempt", n+1, "err", err)
		}),
	)
}

func transient(err error) bool {
	var pe *fs.PathError
	if !errors.As(err, &pe) {
		return false
	}
	return !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, fs.ErrPermission)
}

func (r *Runner) inputPath(e catalog.Entry) string {
	if filepath.IsAbs(e.File) || r.Config.InputDir == "" {
		return e.File
	}
	return filepath.Join(r.Config.InputDir, e.File)
}

func (r *Runner) outputPath(e catalog.Entry) string {
	out := filepath.Join(r.Config.OutputDir, filepath.Base(e.File))
	if r.Config.Format != "" {
		out = meshio.WithFormat(out, r.Config.Format)
	}
	return out
}

func (r *Runner) workers() int {
	if r.Config.Workers > 0 {
		return r.Config.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (r *Runner) attempts() uint {
	if r.Config.Attempts > 0 {
		return r.Config.Attempts
	}
	return DefaultAttempts
}

func (r *Runner) retryDelay() time.Duration {
	if r.Config.RetryDelay > 0 {
		return r.Config.RetryDelay
	}
	return DefaultRetryDelay
}
