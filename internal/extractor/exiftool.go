package extractor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/barasher/go-exiftool"
	"github.com/sirupsen/logrus"
)

// ExiftoolExtractor reads orientation through a long-running exiftool process.
// It needs the exiftool binary on PATH; call Close when done.
type ExiftoolExtractor struct {
	logger *logrus.Logger
	et     *exiftool.Exiftool
	mutex  sync.Mutex
}

// NewExiftoolExtractor starts exiftool with numeric (unconverted) tag output.
func NewExiftoolExtractor(logger *logrus.Logger) (*ExiftoolExtractor, error) {
	et, err := exiftool.NewExiftool(exiftool.NoPrintConversion())
	if err != nil {
		return nil, fmt.Errorf("failed to start exiftool: %w", err)
	}
	return &ExiftoolExtractor{logger: logger, et: et}, nil
}

// Name implements OrientationExtractor.
func (e *ExiftoolExtractor) Name() string {
	return "exiftool"
}

// ExtractOrientation implements OrientationExtractor.
func (e *ExiftoolExtractor) ExtractOrientation(filePath string) (Orientation, error) {
	e.mutex.Lock()
	files := e.et.ExtractMetadata(filePath)
	e.mutex.Unlock()

	if len(files) == 0 {
		return OrientationUnspecified, fmt.Errorf("exiftool returned no metadata for %s", filePath)
	}
	if files[0].Err != nil {
		return OrientationUnspecified, files[0].Err
	}

	v, err := files[0].GetInt("Orientation")
	if err != nil {
		if errors.Is(err, exiftool.ErrKeyNotFound) {
			return OrientationUnspecified, nil
		}
		return OrientationUnspecified, fmt.Errorf("failed to parse orientation: %w", err)
	}

	o := fromTag(v)
	e.logger.Debugf("exiftool orientation %d (%s) for %s", v, o, filePath)
	return o, nil
}

// Close stops the exiftool process.
func (e *ExiftoolExtractor) Close() error {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.et.Close()
}
