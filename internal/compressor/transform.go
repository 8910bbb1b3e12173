package compressor

import (
	"image"
	"image/color"
	"math"

	"image-compressor-go/internal/extractor"

	"github.com/disintegration/imaging"
)

// flatten removes transparency and palette information, returning a fully opaque image.
// Images that cannot vouch for their own opacity are composited over white.
func flatten(img image.Image) *image.NRGBA {
	// Clone expands palette entries to explicit NRGBA and rebases bounds at 0,0.
	src := imaging.Clone(img)
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return src
	}
	b := src.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, src, image.Pt(0, 0), 1.0)
}

// scaledHeight returns round(height * maxWidth / width), never less than 1.
func scaledHeight(width, height, maxWidth int) int {
	h := int(math.Round(float64(height) * float64(maxWidth) / float64(width)))
	if h < 1 {
		h = 1
	}
	return h
}

// fitWidth downscales img with Lanczos when it is wider than maxWidth.
// A non-positive maxWidth disables resizing.
func fitWidth(img *image.NRGBA, maxWidth int) *image.NRGBA {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return img
	}
	return imaging.Resize(img, maxWidth, scaledHeight(b.Dx(), b.Dy(), maxWidth), imaging.Lanczos)
}

// orient bakes the EXIF orientation into the pixel buffer.
func orient(img *image.NRGBA, o extractor.Orientation) *image.NRGBA {
	switch o {
	case extractor.OrientationFlipH:
		return imaging.FlipH(img)
	case extractor.OrientationRotate180:
		return imaging.Rotate180(img)
	case extractor.OrientationFlipV:
		return imaging.FlipV(img)
	case extractor.OrientationTranspose:
		return imaging.Transpose(img)
	case extractor.OrientationRotate270:
		return imaging.Rotate270(img)
	case extractor.OrientationTransverse:
		return imaging.Transverse(img)
	case extractor.OrientationRotate90:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
