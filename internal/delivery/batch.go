package delivery

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/forest-guardian/landsat-toa/internal/landsat"
	"github.com/forest-guardian/landsat-toa/internal/notification"
	"github.com/forest-guardian/landsat-toa/internal/raster"
	"github.com/gammazero/workerpool"
	"github.com/gocarina/gocsv"
	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"
)

// Job is one row of a batch CSV.
type Job struct {
	Scene   string `csv:"scene"`
	Product string `csv:"product"`
	Band    int    `csv:"band"`
	// Window is "top:bottom:left:right", empty for the full scene.
	Window string `csv:"window"`
	Output string `csv:"output"`
}

// JobResult is one row of the results CSV.
type JobResult struct {
	Scene      string `csv:"scene"`
	Product    string `csv:"product"`
	Band       int    `csv:"band"`
	Output     string `csv:"output"`
	Status     string `csv:"status"`
	Error      string `csv:"error"`
	Rows       int    `csv:"rows"`
	Cols       int    `csv:"cols"`
	ValidCells int    `csv:"valid_cells"`
	DurationMs int64  `csv:"duration_ms"`
}

const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// BatchOptions configures RunBatch.
type BatchOptions struct {
	Naming    landsat.Naming
	OutputDir string
	Workers   int
	Policy    landsat.MaskPolicy
	// SkipCloudFilter disables BQA masking for every job.
	SkipCloudFilter bool
	Alpha           float64
	// ResultsPath is where the results CSV is written; empty skips it.
	ResultsPath string
	Progress    bool
	Notify      bool
}

// ReadJobs parses a batch CSV.
func ReadJobs(path string) ([]*Job, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &raster.NotFoundError{Path: path, Err: err}
	}
	defer file.Close()

	var jobs []*Job
	if err := gocsv.UnmarshalFile(file, &jobs); err != nil {
		return nil, fmt.Errorf("failed to read jobs from %s: %w", path, err)
	}
	return jobs, nil
}

// RunBatch runs every job of the CSV at jobsPath on a bounded worker pool.
// Failed jobs are reported in the results and do not stop the batch. An error
// is returned when the jobs cannot be read or every job failed.
func RunBatch(ctx context.Context, jobsPath string, opts BatchOptions) ([]*JobResult, error) {
	jobs, err := ReadJobs(jobsPath)
	if err != nil {
		return nil, err
	}
	results := RunJobs(ctx, jobs, opts)

	if opts.ResultsPath != "" {
		if err := WriteResults(opts.ResultsPath, results); err != nil {
			return results, err
		}
	}

	var failures []string
	for _, r := range results {
		if r.Status == StatusFailed {
			failures = append(failures, fmt.Sprintf("%s %s: %s", r.Scene, r.Product, r.Error))
		}
	}
	log.WithField("jobs", jobsPath).Infof("batch finished: %d jobs, %d failed", len(results), len(failures))

	if len(results) > 0 && len(failures) == len(results) {
		err := fmt.Errorf("all %d jobs failed: %s", len(results), strings.Join(failures, "; "))
		if opts.Notify {
			if nerr := notification.SendDiscordErrorNotification(err.Error()); nerr != nil {
				log.Warnf("failed to send notification: %v", nerr)
			}
		}
		return results, err
	}
	if opts.Notify {
		msg := fmt.Sprintf("Batch %s completed: %d jobs, %d failed.", filepath.Base(jobsPath), len(results), len(failures))
		if len(failures) > 0 {
			msg += "\nErrors: " + strings.Join(failures, "\n")
		}
		if err := notification.SendDiscordSuccessNotification(msg); err != nil {
			log.Warnf("failed to send notification: %v", err)
		}
	}
	return results, nil
}

// RunJobs executes jobs concurrently and returns their results in job order.
func RunJobs(ctx context.Context, jobs []*Job, opts BatchOptions) []*JobResult {
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	var (
		mu          sync.Mutex
		results     = make([]*JobResult, len(jobs))
		progressBar *progressbar.ProgressBar
	)
	if opts.Progress {
		progressBar = progressbar.Default(int64(len(jobs)), "Running batch")
	}

	wp := workerpool.New(workers)
	for i, job := range jobs {
		wp.Submit(func() {
			result := runJob(ctx, job, opts)
			mu.Lock()
			results[i] = result
			if progressBar != nil {
				progressBar.Add(1)
			}
			mu.Unlock()
		})
	}
	wp.StopWait()
	return results
}

func runJob(ctx context.Context, job *Job, opts BatchOptions) *JobResult {
	start := time.Now()
	result := &JobResult{Scene: job.Scene, Product: job.Product, Band: job.Band, Status: StatusOK}
	fail := func(err error) *JobResult {
		result.Status = StatusFailed
		result.Error = err.Error()
		result.DurationMs = time.Since(start).Milliseconds()
		log.WithFields(log.Fields{"scene": job.Scene, "product": job.Product}).Errorf("job failed: %v", err)
		return result
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	window, err := raster.ParseWindow(job.Window)
	if err != nil {
		return fail(err)
	}
	out := job.Output
	if out == "" {
		out = defaultOutput(job)
	}
	if !filepath.IsAbs(out) {
		out = filepath.Join(opts.OutputDir, out)
	}
	if err := os.MkdirAll(filepath.Dir(out), os.ModePerm); err != nil {
		return fail(fmt.Errorf("failed to create output folder: %w", err))
	}

	policy := opts.Policy
	if policy == nil {
		policy = landsat.DefaultMaskPolicy
	}
	product, err := BuildProduct(ctx, Request{
		Scene:   opts.Naming.Scene(job.Scene),
		Product: job.Product,
		Band:    job.Band,
		Window:  window,
		Options: landsat.ReflectanceOptions{SkipCloudFilter: opts.SkipCloudFilter, Policy: policy},
		Alpha:   opts.Alpha,
		Output:  out,
	})
	if err != nil {
		return fail(err)
	}

	result.Output = product.Output
	result.Rows = product.Rows
	result.Cols = product.Cols
	result.ValidCells = product.ValidCells
	result.DurationMs = time.Since(start).Milliseconds()
	return result
}

func defaultOutput(job *Job) string {
	name := fmt.Sprintf("%s_%s", job.Scene, strings.ToLower(job.Product))
	switch strings.ToLower(job.Product) {
	case ProductTOA:
		return fmt.Sprintf("%s_B%d.TIF", name, job.Band)
	case ProductPreview:
		return fmt.Sprintf("%s_B%d.png", name, job.Band)
	default:
		return name + ".TIF"
	}
}

// WriteResults writes results as CSV.
func WriteResults(path string, results []*JobResult) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create results folder: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&results, file); err != nil {
		return fmt.Errorf("failed to write results to %s: %w", path, err)
	}
	return nil
}

// WriteResultsTo writes results as CSV to w.
func WriteResultsTo(w io.Writer, results []*JobResult) error {
	return gocsv.Marshal(&results, w)
}
