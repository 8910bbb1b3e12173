package compressor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"image-compressor-go/internal/extractor"
	"image-compressor-go/internal/logger"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
)

// DefaultCompressor is the default implementation of the Compressor interface.
type DefaultCompressor struct {
	logger      *logrus.Logger
	orientation extractor.OrientationExtractor
	optimizer   Optimizer
}

// NewDefaultCompressor creates a new DefaultCompressor instance.
// orientation and optimizer may be nil, disabling the respective step.
func NewDefaultCompressor(log *logrus.Logger, orientation extractor.OrientationExtractor, optimizer Optimizer) *DefaultCompressor {
	return &DefaultCompressor{
		logger:      log,
		orientation: orientation,
		optimizer:   optimizer,
	}
}

// Compress decodes job.Source, flattens it onto white, downsizes it to job.MaxWidth,
// applies the source EXIF orientation and writes a JPEG to job.Destination.
// The destination is replaced atomically; on failure it is left untouched.
func (c *DefaultCompressor) Compress(ctx context.Context, job Job) (Result, error) {
	res := Result{
		Source:      job.Source,
		Destination: job.Destination,
		StartedAt:   time.Now(),
	}
	log := logger.WithFileOperation(c.logger, job.Source, "compress")

	fail := func(kind Kind, path string, err error) (Result, error) {
		res.FinishedAt = time.Now()
		ce := newError(kind, path, err)
		log.WithField("kind", kind.String()).Errorf("Error processing %s: %v", job.Source, err)
		return res, ce
	}

	info, err := os.Stat(job.Source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fail(KindSourceMissing, job.Source, err)
		}
		return fail(KindDecodeFailure, job.Source, err)
	}
	if info.IsDir() {
		return fail(KindDecodeFailure, job.Source, fmt.Errorf("is a directory"))
	}
	res.OriginalSize = info.Size()

	img, err := imaging.Open(job.Source)
	if err != nil {
		return fail(KindDecodeFailure, job.Source, err)
	}

	out := flatten(img)
	out = fitWidth(out, job.MaxWidth)

	orientation := c.readOrientation(log, job.Source)
	out = orient(out, orientation)
	res.Orientation = int(orientation)

	b := out.Bounds()
	res.Width, res.Height = b.Dx(), b.Dy()

	optimized, err := c.writeAtomic(ctx, log, out, job)
	if err != nil {
		return fail(KindEncodeFailure, job.Destination, err)
	}
	res.Optimized = optimized

	compInfo, err := os.Stat(job.Destination)
	if err != nil {
		return fail(KindEncodeFailure, job.Destination, fmt.Errorf("stat compressed: %w", err))
	}
	res.CompressedSize = compInfo.Size()
	res.FinishedAt = time.Now()

	log.WithFields(logrus.Fields{
		"destination": job.Destination,
		"width":       res.Width,
		"height":      res.Height,
		"quality":     job.Quality,
		"optimized":   res.Optimized,
		"original":    res.OriginalSize,
		"compressed":  res.CompressedSize,
	}).Info("Image compressed")
	return res, nil
}

// readOrientation returns the source orientation; metadata problems are never fatal.
func (c *DefaultCompressor) readOrientation(log *logrus.Entry, path string) extractor.Orientation {
	if c.orientation == nil {
		return extractor.OrientationUnspecified
	}
	o, err := c.orientation.ExtractOrientation(path)
	if err != nil {
		log.WithField("extractor", c.orientation.Name()).Warnf("Could not read orientation: %v", err)
		return extractor.OrientationUnspecified
	}
	return o
}

// writeAtomic encodes img into a temporary file next to the destination,
// optionally optimizes it, and renames it into place.
func (c *DefaultCompressor) writeAtomic(ctx context.Context, log *logrus.Entry, img *image.NRGBA, job Job) (bool, error) {
	dir := filepath.Dir(job.Destination)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(job.Destination)+".*.tmp")
	if err != nil {
		return false, fmt.Errorf("create tmp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	w := bufio.NewWriter(tmp)
	if err := imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(job.Quality)); err != nil {
		return false, fmt.Errorf("encode error: %w", err)
	}
	if err := w.Flush(); err != nil {
		return false, fmt.Errorf("write tmp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return false, fmt.Errorf("sync tmp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return false, fmt.Errorf("close tmp file: %w", err)
	}

	optimized := false
	if c.optimizer != nil {
		if err := c.optimizer.Optimize(ctx, tmpPath); err != nil {
			log.Warnf("Optimization skipped: %v", err)
		} else {
			optimized = true
		}
	}

	if err := os.Chmod(tmpPath, 0644); err != nil {
		return false, fmt.Errorf("chmod tmp file: %w", err)
	}
	if err := os.Rename(tmpPath, job.Destination); err != nil {
		return false, fmt.Errorf("rename error: %w", err)
	}
	committed = true
	return optimized, nil
}
