// Package batch runs a list of compression jobs sequentially and reports
// per-job size deltas.
package batch

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"

	"image-compressor-go/internal/compressor"
	"image-compressor-go/internal/statistics"

	"github.com/sirupsen/logrus"
)

// Status is the outcome of a single job.
type Status string

const (
	StatusCompressed Status = "compressed"
	StatusSkipped    Status = "skipped"
	StatusFailed     Status = "failed"
)

// JobReport describes what happened to one job.
type JobReport struct {
	Index          int            `json:"index"`
	Job            compressor.Job `json:"job"`
	Status         Status         `json:"status"`
	OriginalSize   int64          `json:"original_size"`
	CompressedSize int64          `json:"compressed_size"`
	Reduction      float64        `json:"reduction"`
	Width          int            `json:"width,omitempty"`
	Height         int            `json:"height,omitempty"`
	ErrorKind      string         `json:"error_kind,omitempty"`
	Error          string         `json:"error,omitempty"`
}

// ReportHook receives each JobReport as soon as the job finishes.
type ReportHook func(JobReport)

// Runner processes jobs one at a time, in declared order.
type Runner struct {
	logger     *logrus.Logger
	compressor compressor.Compressor
	stats      *statistics.Statistics
	report     *Reporter
	hook       ReportHook
}

// NewRunner returns a Runner writing its human-readable report to out.
func NewRunner(
	logger *logrus.Logger,
	comp compressor.Compressor,
	stats *statistics.Statistics,
	out io.Writer,
) *Runner {
	return NewRunnerWithHook(logger, comp, stats, out, nil)
}

// NewRunnerWithHook is like NewRunner but also forwards every JobReport to hook.
func NewRunnerWithHook(
	logger *logrus.Logger,
	comp compressor.Compressor,
	stats *statistics.Statistics,
	out io.Writer,
	hook ReportHook,
) *Runner {
	return &Runner{
		logger:     logger,
		compressor: comp,
		stats:      stats,
		report:     NewReporter(out),
		hook:       hook,
	}
}

// Run processes every job and returns one report per visited job.
// Individual failures never stop the batch; only ctx cancellation does.
func (r *Runner) Run(ctx context.Context, jobs []compressor.Job) []JobReport {
	r.logger.Infof("Starting compression of %d images", len(jobs))
	r.stats.SetTotal(len(jobs))
	r.report.Header()

	reports := make([]JobReport, 0, len(jobs))
	for i, job := range jobs {
		if ctx.Err() != nil {
			r.logger.Warn("Interrupted, stopping batch")
			break
		}

		rep := r.processJob(ctx, job)
		rep.Index = i
		reports = append(reports, rep)
		if r.hook != nil {
			r.hook(rep)
		}
	}

	r.report.Footer()
	r.stats.Finalize()
	r.logger.Info("Compression batch completed")
	return reports
}

// processJob handles one job: existence check, compress, verify output.
func (r *Runner) processJob(ctx context.Context, job compressor.Job) JobReport {
	r.stats.IncrementProcessed()
	rep := JobReport{Job: job}

	info, err := os.Stat(job.Source)
	if errors.Is(err, fs.ErrNotExist) {
		r.logger.WithField("file", job.Source).Warn("Source not found, skipping")
		r.report.Skipped(job)
		r.stats.IncrementSkipped()
		rep.Status = StatusSkipped
		return rep
	}
	if err == nil {
		rep.OriginalSize = info.Size()
	}

	r.report.Compressing(job)
	res, cerr := r.compressor.Compress(ctx, job)
	if cerr != nil {
		r.report.Error(job, cerr)
	}
	if cerr == nil && err != nil {
		cerr = err
	}

	if cerr == nil {
		outInfo, statErr := os.Stat(job.Destination)
		if statErr != nil {
			cerr = statErr
		} else {
			rep.Status = StatusCompressed
			rep.CompressedSize = outInfo.Size()
			rep.Reduction = compressor.Reduction(rep.OriginalSize, rep.CompressedSize)
			rep.Width, rep.Height = res.Width, res.Height
			r.stats.RecordCompressed(rep.OriginalSize, rep.CompressedSize, res.Optimized)
			r.report.Compressed(rep)
			return rep
		}
	}

	rep.Status = StatusFailed
	rep.Error = cerr.Error()
	if kind := compressor.KindOf(cerr); kind != 0 {
		rep.ErrorKind = kind.String()
	}
	r.stats.IncrementFailed()
	r.stats.AddError(job.Source, "compress", cerr.Error())
	r.report.Failed(job)
	return rep
}
