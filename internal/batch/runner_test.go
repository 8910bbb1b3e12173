package batch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"image-compressor-go/internal/compressor"
	"image-compressor-go/internal/logger"
	"image-compressor-go/internal/statistics"
	"image-compressor-go/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noOutputCompressor reports success but never writes the destination.
type noOutputCompressor struct{}

func (noOutputCompressor) Compress(_ context.Context, job compressor.Job) (compressor.Result, error) {
	return compressor.Result{Source: job.Source, Destination: job.Destination}, nil
}

// recordingCompressor remembers the order of jobs it was asked to run.
type recordingCompressor struct {
	seen []string
}

func (r *recordingCompressor) Compress(_ context.Context, job compressor.Job) (compressor.Result, error) {
	r.seen = append(r.seen, filepath.Base(job.Source))
	return compressor.Result{}, &compressor.Error{Kind: compressor.KindDecodeFailure, Path: job.Source, Err: errors.New("nope")}
}

func newRunner(c compressor.Compressor, out *bytes.Buffer) (*Runner, *statistics.Statistics) {
	stats := statistics.NewStatistics()
	return NewRunner(logger.Discard(), c, stats, out), stats
}

func realCompressor() compressor.Compressor {
	return compressor.NewDefaultCompressor(logger.Discard(), nil, nil)
}

func TestRun_Report(t *testing.T) {
	dir := t.TempDir()
	testutil.WritePNG(t, filepath.Join(dir, "background.png"), testutil.Noisy(600, 400, 7))
	testutil.WritePNG(t, filepath.Join(dir, "logo-large.png"), testutil.Gradient(400, 300))

	jobs := []compressor.Job{
		{Source: filepath.Join(dir, "background.png"), Destination: filepath.Join(dir, "background.jpg"), Quality: 80, MaxWidth: 300},
		{Source: filepath.Join(dir, "background2.png"), Destination: filepath.Join(dir, "background2.jpg"), Quality: 80, MaxWidth: 1920},
		{Source: filepath.Join(dir, "logo-large.png"), Destination: filepath.Join(dir, "logo-large.jpg"), Quality: 90, MaxWidth: 800},
	}

	var out bytes.Buffer
	r, stats := newRunner(realCompressor(), &out)
	reports := r.Run(context.Background(), jobs)

	require.Len(t, reports, 3)
	assert.Equal(t, StatusCompressed, reports[0].Status)
	assert.Equal(t, 300, reports[0].Width)
	assert.Equal(t, 200, reports[0].Height)
	assert.Equal(t, StatusSkipped, reports[1].Status)
	assert.Equal(t, StatusCompressed, reports[2].Status)
	assert.Equal(t, 400, reports[2].Width)
	assert.Equal(t, 2, reports[2].Index)

	assert.NoFileExists(t, filepath.Join(dir, "background2.jpg"))
	assert.FileExists(t, filepath.Join(dir, "logo-large.jpg"))

	text := out.String()
	lines := strings.Split(text, "\n")
	assert.Equal(t, "Image Compression Report", lines[0])
	assert.Equal(t, strings.Repeat("=", 50), lines[1])
	assert.Equal(t, "🔄 Compressing background.png...", lines[2])
	assert.Equal(t, "✅ background.png -> background.jpg", lines[3])
	assert.True(t, strings.HasPrefix(lines[4], "   Original: "))
	assert.True(t, strings.HasSuffix(lines[4], " MB"))
	assert.True(t, strings.HasPrefix(lines[5], "   Compressed: "))
	assert.True(t, strings.HasPrefix(lines[6], "   Reduction: "))
	assert.Equal(t, "", lines[7])
	assert.Equal(t, "❌ background2.png not found, skipping...", lines[8])
	assert.Contains(t, text, "✅ logo-large.png -> logo-large.jpg")
	assert.True(t, strings.HasSuffix(text, "Compression completed!\n\nNext steps:\n"+strings.Join(NextSteps, "\n")+"\n"))

	snap := stats.Snapshot()
	assert.Equal(t, int64(3), snap.Total)
	assert.Equal(t, int64(2), snap.Compressed)
	assert.Equal(t, int64(1), snap.Skipped)
	assert.Zero(t, snap.Failed)
	assert.False(t, stats.HasFailures())
}

func TestRun_ReductionMatchesFileSizes(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.png")
	out := filepath.Join(dir, "a.jpg")
	testutil.WritePNG(t, in, testutil.Noisy(200, 100, 3))

	var buf bytes.Buffer
	r, _ := newRunner(realCompressor(), &buf)
	reports := r.Run(context.Background(), []compressor.Job{{Source: in, Destination: out, Quality: 80, MaxWidth: 100}})
	require.Len(t, reports, 1)

	inInfo, err := os.Stat(in)
	require.NoError(t, err)
	outInfo, err := os.Stat(out)
	require.NoError(t, err)

	rep := reports[0]
	assert.Equal(t, inInfo.Size(), rep.OriginalSize)
	assert.Equal(t, outInfo.Size(), rep.CompressedSize)
	want := float64(inInfo.Size()-outInfo.Size()) / float64(inInfo.Size()) * 100
	assert.InDelta(t, want, rep.Reduction, 1e-9)
	assert.Contains(t, buf.String(), "   Original: "+statistics.FormatMB(inInfo.Size())+" MB\n")
}

func TestRun_MissingSourceCreatesNothing(t *testing.T) {
	dir := t.TempDir()
	rec := &recordingCompressor{}
	var out bytes.Buffer
	r, stats := newRunner(rec, &out)

	reports := r.Run(context.Background(), []compressor.Job{
		{Source: filepath.Join(dir, "gone.png"), Destination: filepath.Join(dir, "gone.jpg"), Quality: 80, MaxWidth: 10},
	})

	require.Len(t, reports, 1)
	assert.Equal(t, StatusSkipped, reports[0].Status)
	assert.Empty(t, rec.seen, "compressor must not run for a missing source")
	assert.NoFileExists(t, filepath.Join(dir, "gone.jpg"))
	assert.False(t, stats.HasFailures())
}

func TestRun_FailuresDoNotStopBatch(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		testutil.WriteFile(t, filepath.Join(dir, name), []byte("x"))
	}
	rec := &recordingCompressor{}
	var out bytes.Buffer
	r, stats := newRunner(rec, &out)

	reports := r.Run(context.Background(), []compressor.Job{
		{Source: filepath.Join(dir, "a.png"), Destination: filepath.Join(dir, "a.jpg")},
		{Source: filepath.Join(dir, "b.png"), Destination: filepath.Join(dir, "b.jpg")},
		{Source: filepath.Join(dir, "c.png"), Destination: filepath.Join(dir, "c.jpg")},
	})

	assert.Equal(t, []string{"a.png", "b.png", "c.png"}, rec.seen)
	require.Len(t, reports, 3)
	for _, rep := range reports {
		assert.Equal(t, StatusFailed, rep.Status)
		assert.Equal(t, "decode_failure", rep.ErrorKind)
	}
	assert.Equal(t, 3, strings.Count(out.String(), "❌ Failed to create"))
	assert.Contains(t, out.String(), "Error processing "+filepath.Join(dir, "b.png")+": nope\n❌ Failed to create b.jpg\n")
	assert.Equal(t, int64(3), stats.Snapshot().Failed)
	assert.Len(t, stats.Snapshot().Errors, 3)
	assert.Contains(t, out.String(), "Compression completed!")
}

func TestRun_OutputMissingAfterProcessing(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.png")
	testutil.WritePNG(t, in, testutil.Opaque(4, 4))

	var out bytes.Buffer
	r, stats := newRunner(noOutputCompressor{}, &out)
	reports := r.Run(context.Background(), []compressor.Job{{Source: in, Destination: filepath.Join(dir, "a.jpg")}})

	require.Len(t, reports, 1)
	assert.Equal(t, StatusFailed, reports[0].Status)
	assert.Empty(t, reports[0].ErrorKind)
	assert.Contains(t, out.String(), "❌ Failed to create a.jpg")
	assert.NotContains(t, out.String(), "Error processing")
	assert.True(t, stats.HasFailures())
}

func TestRun_Hook(t *testing.T) {
	dir := t.TempDir()
	var got []JobReport
	r := NewRunnerWithHook(logger.Discard(), &recordingCompressor{}, statistics.NewStatistics(), nil, func(rep JobReport) {
		got = append(got, rep)
	})

	r.Run(context.Background(), []compressor.Job{
		{Source: filepath.Join(dir, "x.png"), Destination: filepath.Join(dir, "x.jpg")},
		{Source: filepath.Join(dir, "y.png"), Destination: filepath.Join(dir, "y.jpg")},
	})
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Index)
	assert.Equal(t, 1, got[1].Index)
}

func TestRun_Cancelled(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recordingCompressor{}
	var out bytes.Buffer
	r, _ := newRunner(rec, &out)
	testutil.WriteFile(t, filepath.Join(dir, "a.png"), []byte("x"))

	reports := r.Run(ctx, []compressor.Job{{Source: filepath.Join(dir, "a.png"), Destination: filepath.Join(dir, "a.jpg")}})
	assert.Empty(t, reports)
	assert.Empty(t, rec.seen)
	assert.Contains(t, out.String(), "Compression completed!")
}

func TestReporter_ErrorPlainCause(t *testing.T) {
	var out bytes.Buffer
	NewReporter(&out).Error(compressor.Job{Source: "images/a.png"}, errors.New("bad header"))
	assert.Equal(t, "Error processing images/a.png: bad header\n", out.String())
}
