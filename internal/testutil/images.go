// Package testutil builds synthetic images for package tests.
package testutil

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

// Gradient returns a w×h NRGBA image whose alpha ramps from 0 on the left to 255 on the right.
func Gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := uint8(x * 255 / max(w-1, 1))
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(y % 256), G: 40, B: 200, A: a})
		}
	}
	return img
}

// Gradient64 is Gradient with 16 bits per channel. It encodes as a 16-bit RGBA PNG.
func Gradient64(w, h int) *image.NRGBA64 {
	img := image.NewNRGBA64(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := uint16(x * 0xffff / max(w-1, 1))
			img.SetNRGBA64(x, y, color.NRGBA64{R: uint16(y * 257), G: 0x2828, B: 0xc8c8, A: a})
		}
	}
	return img
}

// Noisy returns a w×h NRGBA image of seeded random pixels with random alpha.
// Its PNG encoding is close to the raw pixel size.
func Noisy(w, h int, seed int64) *image.NRGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	rng.Read(img.Pix)
	return img
}

// Opaque returns a w×h fully opaque RGBA image.
func Opaque(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 90, A: 255})
		}
	}
	return img
}

// Paletted returns a w×h palette image; index 0 is fully transparent.
func Paletted(w, h int) *image.Paletted {
	pal := color.Palette{
		color.NRGBA{0, 0, 0, 0},
		color.NRGBA{255, 0, 0, 255},
		color.NRGBA{0, 0, 255, 255},
	}
	img := image.NewPaletted(image.Rect(0, 0, w, h), pal)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetColorIndex(x, y, uint8((x/4+y/4)%3))
		}
	}
	return img
}

// EncodePNG returns img as PNG bytes.
func EncodePNG(t testing.TB, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

// WritePNG encodes img as PNG at path.
func WritePNG(t testing.TB, path string, img image.Image) {
	t.Helper()
	WriteFile(t, path, EncodePNG(t, img))
}

// WriteFile writes data at path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// GrayAlphaPNG hand-encodes an 8-bit gray+alpha PNG (color type 4). The left
// half is fully transparent, the right half is opaque with the given gray level.
// The stdlib encoder never emits this color type.
func GrayAlphaPNG(t testing.TB, w, h int, gray uint8) []byte {
	t.Helper()
	var raw bytes.Buffer
	for y := 0; y < h; y++ {
		raw.WriteByte(0) // filter: none
		for x := 0; x < w; x++ {
			if x < w/2 {
				raw.Write([]byte{0, 0})
			} else {
				raw.Write([]byte{gray, 255})
			}
		}
	}

	var idat bytes.Buffer
	zw := zlib.NewWriter(&idat)
	if _, err := zw.Write(raw.Bytes()); err != nil {
		t.Fatalf("zlib: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zlib: %v", err)
	}

	var ihdr bytes.Buffer
	_ = binary.Write(&ihdr, binary.BigEndian, uint32(w))
	_ = binary.Write(&ihdr, binary.BigEndian, uint32(h))
	ihdr.Write([]byte{8, 4, 0, 0, 0}) // depth, color type, compression, filter, interlace

	var out bytes.Buffer
	out.WriteString("\x89PNG\r\n\x1a\n")
	writeChunk(&out, "IHDR", ihdr.Bytes())
	writeChunk(&out, "IDAT", idat.Bytes())
	writeChunk(&out, "IEND", nil)
	return out.Bytes()
}

func writeChunk(b *bytes.Buffer, typ string, data []byte) {
	_ = binary.Write(b, binary.BigEndian, uint32(len(data)))
	body := append([]byte(typ), data...)
	b.Write(body)
	_ = binary.Write(b, binary.BigEndian, crc32.ChecksumIEEE(body))
}

// ExifOrientation returns a minimal little-endian TIFF block holding only
// the Orientation tag.
func ExifOrientation(orientation uint16) []byte {
	var b bytes.Buffer
	b.WriteString("II*\x00")
	_ = binary.Write(&b, binary.LittleEndian, uint32(8)) // IFD0 offset
	_ = binary.Write(&b, binary.LittleEndian, uint16(1)) // entry count
	_ = binary.Write(&b, binary.LittleEndian, uint16(0x0112))
	_ = binary.Write(&b, binary.LittleEndian, uint16(3)) // SHORT
	_ = binary.Write(&b, binary.LittleEndian, uint32(1))
	_ = binary.Write(&b, binary.LittleEndian, orientation)
	_ = binary.Write(&b, binary.LittleEndian, uint16(0)) // value padding
	_ = binary.Write(&b, binary.LittleEndian, uint32(0)) // no next IFD
	return b.Bytes()
}

// PNGWithOrientation encodes img as PNG and inserts an eXIf chunk after IHDR.
func PNGWithOrientation(t testing.TB, img image.Image, orientation uint16) []byte {
	t.Helper()
	data := EncodePNG(t, img)

	// signature (8) + IHDR length/type (8) + IHDR data (13) + CRC (4)
	const ihdrEnd = 8 + 8 + 13 + 4
	payload := ExifOrientation(orientation)

	var chunk bytes.Buffer
	writeChunk(&chunk, "eXIf", payload)

	out := make([]byte, 0, len(data)+chunk.Len())
	out = append(out, data[:ihdrEnd]...)
	out = append(out, chunk.Bytes()...)
	out = append(out, data[ihdrEnd:]...)
	return out
}

// DecodeJPEG opens path and decodes it as JPEG.
func DecodeJPEG(t testing.TB, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	img, err := jpeg.Decode(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return img
}
