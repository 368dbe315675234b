package watermark

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/sirupsen/logrus"
)

// DefaultDateLayout formats capture dates as YYYY-MM-DD.
const DefaultDateLayout = "2006-01-02"

const exifDateTimeLayout = "2006:01:02 15:04:05"

// maxPNGExifSize bounds the eXIf chunk read into memory.
const maxPNGExifSize = 16 << 20

var (
	pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

	errNoPNGExif = errors.New("png has no eXIf chunk")
)

// captureDateFields are tried in order of preference.
var captureDateFields = []exif.FieldName{
	exif.DateTimeOriginal,
	exif.DateTimeDigitized,
	exif.DateTime,
}

// DateReader extracts the capture date text of an image.
type DateReader interface {
	ReadCaptureDate(path string) (string, bool)
}

// ExifDateReader reads the capture date from EXIF metadata.
type ExifDateReader struct {
	Layout string
	Logger logrus.FieldLogger
}

// NewExifDateReader returns a reader formatting dates with layout.
func NewExifDateReader(layout string, logger logrus.FieldLogger) *ExifDateReader {
	if layout == "" {
		layout = DefaultDateLayout
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &ExifDateReader{Layout: layout, Logger: logger}
}

// ReadCaptureDate returns the formatted capture date, or false when the file
// cannot be read, carries no EXIF data or no parsable timestamp.
func (r *ExifDateReader) ReadCaptureDate(path string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		r.logger().WithError(err).WithField("file", path).Debug("Cannot open file for EXIF")
		return "", false
	}
	defer f.Close()

	x, err := decodeExif(f)
	if err != nil {
		if x == nil || exif.IsCriticalError(err) {
			r.logger().WithError(err).WithField("file", path).Debug("No EXIF data")
			return "", false
		}
		r.logger().WithError(err).WithField("file", path).Debug("Partially readable EXIF data")
	}

	for _, name := range captureDateFields {
		tag, err := x.Get(name)
		if err != nil {
			continue
		}
		s, err := tag.StringVal()
		if err != nil {
			continue
		}
		if t, ok := parseExifDateTime(s); ok {
			return t.Format(r.layout()), true
		}
	}
	return "", false
}

// decodeExif decodes the EXIF data of a JPEG or TIFF stream, or of the eXIf
// chunk of a PNG. The returned *Exif may be usable despite a non-critical
// error.
func decodeExif(f io.ReadSeeker) (*exif.Exif, error) {
	sig := make([]byte, len(pngSignature))
	if _, err := io.ReadFull(f, sig); err == nil && bytes.Equal(sig, pngSignature) {
		data, err := pngExifChunk(f)
		if err != nil {
			return nil, err
		}
		return exif.Decode(bytes.NewReader(data))
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return exif.Decode(f)
}

// pngExifChunk walks the chunks following the PNG signature and returns the
// eXIf payload.
func pngExifChunk(r io.Reader) ([]byte, error) {
	var hdr [8]byte
	for {
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return nil, fmt.Errorf("reading png chunk header: %w", err)
		}
		length := binary.BigEndian.Uint32(hdr[:4])
		typ := string(hdr[4:])

		switch typ {
		case "eXIf":
			if length > maxPNGExifSize {
				return nil, fmt.Errorf("eXIf chunk too large: %d bytes", length)
			}
			data := make([]byte, length)
			if _, err := io.ReadFull(r, data); err != nil {
				return nil, fmt.Errorf("reading eXIf chunk: %w", err)
			}
			return data, nil
		case "IEND":
			return nil, errNoPNGExif
		}

		// data and CRC
		if _, err := io.CopyN(io.Discard, r, int64(length)+4); err != nil {
			return nil, fmt.Errorf("skipping %s chunk: %w", typ, err)
		}
	}
}

func (r *ExifDateReader) layout() string {
	if r.Layout == "" {
		return DefaultDateLayout
	}
	return r.Layout
}

func (r *ExifDateReader) logger() logrus.FieldLogger {
	if r.Logger == nil {
		return logrus.StandardLogger()
	}
	return r.Logger
}

// parseExifDateTime parses the EXIF "YYYY:MM:DD HH:MM:SS" form.
func parseExifDateTime(s string) (time.Time, bool) {
	t, err := time.Parse(exifDateTimeLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
