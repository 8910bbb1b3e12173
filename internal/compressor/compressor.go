package compressor

import (
	"context"
	"time"
)

// Job describes a single PNG to JPEG conversion.
type Job struct {
	Source      string `mapstructure:"source" json:"source"`
	Destination string `mapstructure:"destination" json:"destination"`
	Quality     int    `mapstructure:"quality" json:"quality"`
	MaxWidth    int    `mapstructure:"max_width" json:"max_width"`
}

// Result describes the outcome of compressing a single job.
type Result struct {
	Source         string
	Destination    string
	OriginalSize   int64
	CompressedSize int64
	Width          int
	Height         int
	Orientation    int
	Optimized      bool
	StartedAt      time.Time
	FinishedAt     time.Time
}

// PercentageSaved returns the size reduction relative to the original file.
func (r Result) PercentageSaved() float64 {
	return Reduction(r.OriginalSize, r.CompressedSize)
}

// Reduction returns (original - compressed) / original * 100, or 0 for an empty original.
func Reduction(original, compressed int64) float64 {
	if original <= 0 {
		return 0
	}
	return float64(original-compressed) / float64(original) * 100
}

// Compressor defines the interface for image compression.
type Compressor interface {
	// Compress converts job.Source into a flattened, resized JPEG at job.Destination.
	// Errors returned are always of type *Error.
	Compress(ctx context.Context, job Job) (Result, error)
}
