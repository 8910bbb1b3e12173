package batch

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"image-compressor-go/internal/compressor"
	"image-compressor-go/internal/statistics"
)

// NextSteps is printed after every batch.
var NextSteps = []string{
	"1. Update your HTML/CSS to use the new .jpg files instead of .png",
	"2. Test the website to ensure images display correctly",
	"3. If satisfied, you can delete the original .png files to save space",
}

// Reporter writes the human-readable compression report.
type Reporter struct {
	w io.Writer
}

// NewReporter returns a Reporter writing to w.
func NewReporter(w io.Writer) *Reporter {
	if w == nil {
		w = io.Discard
	}
	return &Reporter{w: w}
}

func (p *Reporter) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(p.w, format, args...)
}

// Header prints the report title.
func (p *Reporter) Header() {
	p.printf("Image Compression Report\n")
	p.printf("%s\n", strings.Repeat("=", 50))
}

// Skipped prints the notice for a missing source.
func (p *Reporter) Skipped(job compressor.Job) {
	p.printf("❌ %s not found, skipping...\n", filepath.Base(job.Source))
}

// Compressing prints the progress line before a job runs.
func (p *Reporter) Compressing(job compressor.Job) {
	p.printf("🔄 Compressing %s...\n", filepath.Base(job.Source))
}

// Compressed prints both sizes and the reduction.
func (p *Reporter) Compressed(rep JobReport) {
	p.printf("✅ %s -> %s\n", filepath.Base(rep.Job.Source), filepath.Base(rep.Job.Destination))
	p.printf("   Original: %s MB\n", statistics.FormatMB(rep.OriginalSize))
	p.printf("   Compressed: %s MB\n", statistics.FormatMB(rep.CompressedSize))
	p.printf("   Reduction: %.1f%%\n", rep.Reduction)
	p.printf("\n")
}

// Error prints the cause of a failed job. Typed errors are reduced to their cause
// since the path is already part of the line.
func (p *Reporter) Error(job compressor.Job, err error) {
	var ce *compressor.Error
	if errors.As(err, &ce) && ce.Err != nil {
		err = ce.Err
	}
	p.printf("Error processing %s: %v\n", job.Source, err)
}

// Failed prints the notice for a job that produced no output.
func (p *Reporter) Failed(job compressor.Job) {
	p.printf("❌ Failed to create %s\n", filepath.Base(job.Destination))
}

// Footer prints the completion message and follow-up instructions.
func (p *Reporter) Footer() {
	p.printf("Compression completed!\n")
	p.printf("\nNext steps:\n")
	for _, step := range NextSteps {
		p.printf("%s\n", step)
	}
}
