package acquisition

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atacama-sky/goes-abi-cli/internal/abi"
	"github.com/atacama-sky/goes-abi-cli/internal/ncfile"
	"github.com/atacama-sky/goes-abi-cli/internal/observability"
	"github.com/gammazero/workerpool"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/schollz/progressbar/v3"
)

// CropFunc cuts the window w out of the netCDF file src and writes it to dst.
type CropFunc func(src, dst string, w abi.Window, region abi.Region) error

// CropToRegion is the CropFunc used for real downloads.
func CropToRegion(src, dst string, w abi.Window, region abi.Region) error {
	f, err := ncfile.ReadWindow(src, w)
	if err != nil {
		return err
	}
	f.Region = string(region)
	// the full disk axes have no fill; a cut marks -1 like the CMI fill
	f.XPack.Fill, f.XPack.HasFill = -1, true
	f.YPack.Fill, f.YPack.HasFill = -1, true
	return ncfile.Write(dst, f)
}

type Config struct {
	// DataDir maps a product family to its local data directory.
	DataDir      func(family string) string
	Retries      int
	RetryDelay   time.Duration
	SkipExisting bool
}

type Fetcher struct {
	bucket  Bucket
	lister  *Lister
	cfg     Config
	crop    CropFunc
	clock   clockwork.Clock
	metrics *observability.Metrics
	log     *slog.Logger
	bar     io.Writer
}

type Option func(*Fetcher)

func WithCrop(c CropFunc) Option                  { return func(f *Fetcher) { f.crop = c } }
func WithClock(c clockwork.Clock) Option          { return func(f *Fetcher) { f.clock = c } }
func WithMetrics(m *observability.Metrics) Option { return func(f *Fetcher) { f.metrics = m } }
func WithLogger(l *slog.Logger) Option            { return func(f *Fetcher) { f.log = l } }
func WithProgressWriter(w io.Writer) Option       { return func(f *Fetcher) { f.bar = w } }

func NewFetcher(bucket Bucket, lister *Lister, cfg Config, opts ...Option) *Fetcher {
	f := &Fetcher{
		bucket: bucket,
		lister: lister,
		cfg:    cfg,
		crop:   CropToRegion,
		clock:  clockwork.NewRealClock(),
		log:    slog.Default(),
		bar:    os.Stderr,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.lister == nil {
		f.lister = NewLister(bucket, nil, f.clock, f.metrics)
	}
	return f
}

// Result is the outcome of one task.
type Result struct {
	Task     Task
	Path     string
	Attempts int
	Skipped  bool
	Err      error
}

// Succeeded reports whether the task produced a file with the expected name ending.
func (r Result) Succeeded() bool {
	return r.Err == nil && strings.HasSuffix(r.Path, abi.ExpectedSuffix(r.Task.Product, r.Task.Region))
}

// Fetch runs a task, retrying failed attempts up to the configured count.
func (f *Fetcher) Fetch(ctx context.Context, task Task) Result {
	res := Result{Task: task}
	var err error
	for attempt := 1; attempt <= f.cfg.Retries+1; attempt++ {
		res.Attempts = attempt
		start := f.clock.Now()
		res.Path, res.Skipped, err = f.fetchOnce(ctx, task)
		if err == nil {
			f.observe("success", task, start)
			if res.Skipped {
				f.observe("skipped", task, time.Time{})
			}
			f.log.Info("acquired", "task", task.String(), "path", res.Path, "attempt", attempt, "skipped", res.Skipped)
			return res
		}
		if ctx.Err() != nil {
			break
		}
		f.observe("retry", task, start)
		f.log.Warn("attempt failed", "task", task.String(), "attempt", attempt, "error", err)
		if attempt <= f.cfg.Retries && !f.wait(ctx) {
			break
		}
	}
	f.observe("failure", task, time.Time{})
	res.Err = &FetchFailure{Task: task, Attempts: res.Attempts, Err: err}
	return res
}

func (f *Fetcher) wait(ctx context.Context) bool {
	if f.cfg.RetryDelay <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-f.clock.After(f.cfg.RetryDelay):
		return true
	}
}

func (f *Fetcher) observe(outcome string, task Task, start time.Time) {
	if f.metrics == nil {
		return
	}
	f.metrics.DownloadAttempts.WithLabelValues(string(task.Product), outcome).Inc()
	if outcome == "success" && !start.IsZero() {
		f.metrics.DownloadDuration.Observe(f.clock.Since(start).Seconds())
	}
}

func (f *Fetcher) fetchOnce(ctx context.Context, task Task) (string, bool, error) {
	base := f.cfg.DataDir(task.Product.Family())
	bandDir := filepath.Join(base, abi.BandDir(task.Band))

	if f.cfg.SkipExisting {
		if path, ok := findExisting(bandDir, abi.LocalPattern(task.Product, task.Band, task.Timestamp, task.Region)); ok {
			return path, true, nil
		}
	}

	prefix := abi.ObjectPrefix(task.Product, task.Timestamp)
	pattern := abi.ObjectPattern(task.Product, task.Band, task.Timestamp)
	keys, err := f.lister.List(ctx, prefix, task.Timestamp)
	if err != nil {
		return "", false, err
	}
	matches := abi.MatchObjects(keys, pattern)
	if len(matches) != 1 {
		return "", false, &ObjectNotFoundError{Prefix: prefix, Pattern: pattern, Matches: matches}
	}

	tempDir := filepath.Join(base, "temp")
	for _, dir := range []string{tempDir, bandDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", false, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	name := abi.LocalName(matches[0])
	tmp := filepath.Join(tempDir, uuid.NewString()+"-"+name)
	defer os.Remove(tmp)
	if err := f.bucket.Download(ctx, matches[0], tmp); err != nil {
		return "", false, err
	}

	if !task.Product.IsFullDisk() {
		final := filepath.Join(bandDir, name)
		if err := os.Rename(tmp, final); err != nil {
			return "", false, fmt.Errorf("failed to move %s into place: %w", name, err)
		}
		return final, false, nil
	}

	w, err := abi.RegionWindow(task.Region, task.Band)
	if err != nil {
		return "", false, err
	}
	regional := abi.RegionFileName(name, task.Region)
	tmpRegional := filepath.Join(tempDir, uuid.NewString()+"-"+regional)
	defer os.Remove(tmpRegional)
	if err := f.crop(tmp, tmpRegional, w, task.Region); err != nil {
		return "", false, fmt.Errorf("failed to cut %s to region %s: %w", name, task.Region, err)
	}
	final := filepath.Join(bandDir, regional)
	if err := os.Rename(tmpRegional, final); err != nil {
		return "", false, fmt.Errorf("failed to move %s into place: %w", regional, err)
	}
	return final, false, nil
}

func findExisting(dir, pattern string) (string, bool) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil || len(matches) == 0 {
		return "", false
	}
	return matches[0], true
}

// BatchResult collects the results of a batch in task order.
type BatchResult struct {
	Results []Result
}

// AllSucceeded is the aggregate pass/fail signal of a batch.
func (b BatchResult) AllSucceeded() bool {
	for _, r := range b.Results {
		if !r.Succeeded() {
			return false
		}
	}
	return true
}

func (b BatchResult) Failed() []Result {
	var failed []Result
	for _, r := range b.Results {
		if !r.Succeeded() {
			failed = append(failed, r)
		}
	}
	return failed
}

// Err joins the errors of all failed tasks.
func (b BatchResult) Err() error {
	var errs []error
	for _, r := range b.Failed() {
		if r.Err != nil {
			errs = append(errs, r.Err)
		} else {
			errs = append(errs, fmt.Errorf("%s: unexpected file name %s", r.Task, r.Path))
		}
	}
	return errors.Join(errs...)
}

// Batch runs tasks in chunks of at most maxParallel. Each chunk runs on its own worker pool
// and finishes before the next one starts. A failing task never stops its siblings.
func (f *Fetcher) Batch(ctx context.Context, tasks []Task, maxParallel int) BatchResult {
	if maxParallel < 1 {
		maxParallel = 1
	}
	results := make([]Result, len(tasks))
	bar := progressbar.NewOptions(len(tasks),
		progressbar.OptionSetWriter(f.bar),
		progressbar.OptionSetDescription("Downloading"),
		progressbar.OptionShowCount(),
	)

	for start := 0; start < len(tasks); start += maxParallel {
		end := min(start+maxParallel, len(tasks))
		wp := workerpool.New(end - start)
		for i := start; i < end; i++ {
			wp.Submit(func() {
				results[i] = f.Fetch(ctx, tasks[i])
				_ = bar.Add(1)
			})
		}
		wp.StopWait()
	}
	_ = bar.Finish()
	return BatchResult{Results: results}
}
