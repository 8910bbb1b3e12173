package compressor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Optimizer losslessly rewrites an encoded JPEG in place.
type Optimizer interface {
	Optimize(ctx context.Context, path string) error
}

// JpegtranOptimizer rebuilds Huffman tables with `jpegtran -optimize`.
type JpegtranOptimizer struct {
	Binary string
}

// LookupJpegtran returns an optimizer backed by jpegtran, or nil if it is not on PATH.
func LookupJpegtran() *JpegtranOptimizer {
	bin, err := exec.LookPath("jpegtran")
	if err != nil {
		return nil
	}
	return &JpegtranOptimizer{Binary: bin}
}

// Optimize implements Optimizer. Metadata is dropped (-copy none).
func (o *JpegtranOptimizer) Optimize(ctx context.Context, path string) error {
	outfile := path + ".opt"
	args := []string{
		"-copy", "none",
		"-optimize",
		"-outfile", outfile,
		path,
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, o.Binary, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		_ = os.Remove(outfile)
		return fmt.Errorf("jpegtran failed: %v: %s", err, strings.TrimSpace(stderr.String()))
	}

	if err := os.Rename(outfile, path); err != nil {
		_ = os.Remove(outfile)
		return fmt.Errorf("rename optimized file: %w", err)
	}
	return nil
}
