// Package testutil builds image fixtures for tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"testing"
)

// EXIF tag ids
const (
	tagDateTime          = 0x0132
	tagExifIFDPointer    = 0x8769
	tagGPSIFDPointer     = 0x8825
	tagDateTimeOriginal  = 0x9003
	tagDateTimeDigitized = 0x9004

	typeASCII = 2
	typeLong  = 4
)

// CaptureDates are the EXIF timestamps of a fixture in "YYYY:MM:DD HH:MM:SS"
// form. Empty fields are left out; all empty means no EXIF segment at all.
type CaptureDates struct {
	Original  string
	Digitized string
	DateTime  string

	// BrokenGPS adds a GPS IFD pointer to an offset past the end of the data.
	BrokenGPS bool
}

func (d CaptureDates) empty() bool {
	return d.Original == "" && d.Digitized == "" && d.DateTime == ""
}

// Date returns CaptureDates with only DateTimeOriginal set.
func Date(s string) CaptureDates {
	return CaptureDates{Original: s}
}

// Solid returns a w×h image filled with c.
func Solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

// WriteJPEG writes a gray w×h JPEG carrying the given capture dates.
func WriteJPEG(t testing.TB, path string, w, h int, dates CaptureDates) {
	t.Helper()
	data, err := ExifJPEG(Solid(w, h, color.Gray{Y: 96}), dates)
	if err != nil {
		t.Fatalf("encoding jpeg fixture: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing jpeg fixture: %v", err)
	}
}

// WritePNG writes a w×h PNG filled with c.
func WritePNG(t testing.TB, path string, w, h int, c color.Color) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, Solid(w, h, c)); err != nil {
		t.Fatalf("encoding png fixture: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("writing png fixture: %v", err)
	}
}

// ExifJPEG encodes img as JPEG and inserts an APP1 EXIF segment right after
// the start-of-image marker.
func ExifJPEG(img image.Image, dates CaptureDates) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	data := buf.Bytes()
	if dates.empty() {
		return data, nil
	}

	payload := append([]byte("Exif\x00\x00"), exifTIFF(dates)...)
	segment := []byte{0xFF, 0xE1}
	segment = binary.BigEndian.AppendUint16(segment, uint16(len(payload)+2))
	segment = append(segment, payload...)

	out := make([]byte, 0, len(data)+len(segment))
	out = append(out, data[:2]...)
	out = append(out, segment...)
	out = append(out, data[2:]...)
	return out, nil
}

// WriteExifPNG writes a w×h PNG filled with c whose eXIf chunk carries the
// given capture dates.
func WriteExifPNG(t testing.TB, path string, w, h int, c color.Color, dates CaptureDates) {
	t.Helper()
	data, err := ExifPNG(Solid(w, h, c), dates)
	if err != nil {
		t.Fatalf("encoding png fixture: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing png fixture: %v", err)
	}
}

// ExifPNG encodes img as PNG and inserts an eXIf chunk right after IHDR.
func ExifPNG(img image.Image, dates CaptureDates) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	data := buf.Bytes()
	if dates.empty() {
		return data, nil
	}

	payload := exifTIFF(dates)
	chunk := binary.BigEndian.AppendUint32(nil, uint32(len(payload)))
	chunk = append(chunk, "eXIf"...)
	chunk = append(chunk, payload...)
	chunk = binary.BigEndian.AppendUint32(chunk, crc32.ChecksumIEEE(chunk[4:]))

	// signature (8) + IHDR length, type, 13 data bytes and CRC
	const ihdrEnd = 8 + 4 + 4 + 13 + 4
	out := make([]byte, 0, len(data)+len(chunk))
	out = append(out, data[:ihdrEnd]...)
	out = append(out, chunk...)
	out = append(out, data[ihdrEnd:]...)
	return out, nil
}

type asciiField struct {
	tag uint16
	val string
}

// exifTIFF builds a big-endian TIFF structure with DateTime in IFD0 and the
// original/digitized timestamps in the EXIF sub-IFD.
func exifTIFF(dates CaptureDates) []byte {
	be := binary.BigEndian

	var ifd0, sub []asciiField
	if dates.DateTime != "" {
		ifd0 = append(ifd0, asciiField{tagDateTime, dates.DateTime})
	}
	if dates.Original != "" {
		sub = append(sub, asciiField{tagDateTimeOriginal, dates.Original})
	}
	if dates.Digitized != "" {
		sub = append(sub, asciiField{tagDateTimeDigitized, dates.Digitized})
	}

	ifd0Count := len(ifd0)
	if len(sub) > 0 {
		ifd0Count++
	}
	if dates.BrokenGPS {
		ifd0Count++
	}
	subOff := 8 + 2 + 12*ifd0Count + 4
	dataOff := subOff
	if len(sub) > 0 {
		dataOff += 2 + 12*len(sub) + 4
	}

	var values []byte
	entry := func(out []byte, tag, typ uint16, count, value uint32) []byte {
		out = be.AppendUint16(out, tag)
		out = be.AppendUint16(out, typ)
		out = be.AppendUint32(out, count)
		return be.AppendUint32(out, value)
	}
	ascii := func(out []byte, f asciiField) []byte {
		val := append([]byte(f.val), 0)
		// padded so short strings are never stored inline
		for len(val) <= 4 {
			val = append(val, 0)
		}
		out = entry(out, f.tag, typeASCII, uint32(len(val)), uint32(dataOff+len(values)))
		values = append(values, val...)
		return out
	}

	out := []byte{'M', 'M', 0, 42, 0, 0, 0, 8}
	out = be.AppendUint16(out, uint16(ifd0Count))
	for _, f := range ifd0 {
		out = ascii(out, f)
	}
	if len(sub) > 0 {
		out = entry(out, tagExifIFDPointer, typeLong, 1, uint32(subOff))
	}
	if dates.BrokenGPS {
		out = entry(out, tagGPSIFDPointer, typeLong, 1, 0xFFFFFF)
	}
	out = be.AppendUint32(out, 0)

	if len(sub) > 0 {
		out = be.AppendUint16(out, uint16(len(sub)))
		for _, f := range sub {
			out = ascii(out, f)
		}
		out = be.AppendUint32(out, 0)
	}

	return append(out, values...)
}
