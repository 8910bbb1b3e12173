package extractor

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/sirupsen/logrus"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// maxExifChunk bounds the eXIf chunk we are willing to buffer.
const maxExifChunk = 1 << 20

// EXIFExtractor reads orientation using the rwcarlsen/goexif library.
// PNG files are supported through their eXIf chunk.
type EXIFExtractor struct {
	logger *logrus.Logger
}

// NewEXIFExtractor returns a new EXIFExtractor.
func NewEXIFExtractor(logger *logrus.Logger) *EXIFExtractor {
	return &EXIFExtractor{logger: logger}
}

// Name implements OrientationExtractor.
func (e *EXIFExtractor) Name() string {
	return "goexif"
}

// ExtractOrientation implements OrientationExtractor.
func (e *EXIFExtractor) ExtractOrientation(filePath string) (Orientation, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return OrientationUnspecified, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	r := bufio.NewReader(file)
	head, err := r.Peek(len(pngSignature))
	if err == nil && bytes.Equal(head, pngSignature) {
		raw, err := readPNGExif(r)
		if err != nil {
			return OrientationUnspecified, fmt.Errorf("failed to read PNG chunks: %w", err)
		}
		if raw == nil {
			e.logger.Debugf("No eXIf chunk in %s", filePath)
			return OrientationUnspecified, nil
		}
		return e.decode(bytes.NewReader(raw), filePath)
	}

	return e.decode(r, filePath)
}

func (e *EXIFExtractor) decode(r io.Reader, filePath string) (Orientation, error) {
	x, err := exif.Decode(r)
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		e.logger.Debugf("No EXIF data in %s: %v", filePath, err)
		return OrientationUnspecified, nil
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		if exif.IsTagNotPresentError(err) {
			return OrientationUnspecified, nil
		}
		return OrientationUnspecified, fmt.Errorf("failed to read orientation tag: %w", err)
	}

	v, err := tag.Int(0)
	if err != nil {
		return OrientationUnspecified, fmt.Errorf("failed to parse orientation tag: %w", err)
	}

	o := fromTag(int64(v))
	e.logger.Debugf("Extracted orientation %d (%s) from %s", v, o, filePath)
	return o, nil
}

// readPNGExif walks the PNG chunk list and returns the payload of the eXIf chunk,
// or nil when the image has none.
func readPNGExif(r io.Reader) ([]byte, error) {
	if _, err := io.CopyN(io.Discard, r, int64(len(pngSignature))); err != nil {
		return nil, err
	}

	var hdr [8]byte
	for {
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, err
		}
		length := binary.BigEndian.Uint32(hdr[:4])
		kind := string(hdr[4:8])

		switch kind {
		case "eXIf":
			if length > maxExifChunk {
				return nil, fmt.Errorf("eXIf chunk too large: %d bytes", length)
			}
			data := make([]byte, length)
			if _, err := io.ReadFull(r, data); err != nil {
				return nil, err
			}
			return data, nil
		case "IEND":
			return nil, nil
		}

		// chunk data + CRC
		if _, err := io.CopyN(io.Discard, r, int64(length)+4); err != nil {
			return nil, err
		}
	}
}
