package watermark

import (
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	plotfont "gonum.org/v1/plot/font"
	"gonum.org/v1/plot/vg"
)

// Font is a font face sized for drawing. Implementations may additionally
// provide TextSizer, TextBounder or TextLengther for measuring text.
type Font interface {
	Name() string
	Face() font.Face
}

// FontLoader acquires a font of the given pixel size. It must always return
// a usable font.
type FontLoader interface {
	LoadFont(fontPath string, size int) Font
}

// DefaultSystemFontPaths returns the candidate font files tried for the given
// GOOS when no preferred font is configured or it cannot be loaded.
func DefaultSystemFontPaths(goos string) []string {
	switch goos {
	case "windows":
		return []string{
			`C:\Windows\Fonts\simhei.ttf`,
			`C:\Windows\Fonts\simsun.ttc`,
			`C:\Windows\Fonts\arial.ttf`,
		}
	case "darwin":
		return []string{
			"/System/Library/Fonts/PingFang.ttc",
			"/System/Library/Fonts/Helvetica.ttc",
			"/Library/Fonts/Arial.ttf",
		}
	default:
		return []string{
			"/usr/share/fonts/truetype/wqy/wqy-microhei.ttc",
			"/usr/share/fonts/truetype/droid/DroidSansFallbackFull.ttf",
			"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
			"/usr/share/fonts/TTF/DejaVuSans.ttf",
		}
	}
}

type fontKey struct {
	path string
	size int
}

// FontManager handles font loading with fallback to system fonts and then to
// an embedded font. It is not safe for concurrent use.
type FontManager struct {
	systemFontPaths []string
	logger          logrus.FieldLogger

	parsed map[string]*opentype.Font
	loaded map[fontKey]Font
}

// NewFontManager creates a font manager using the system font paths of the
// running platform
func NewFontManager() *FontManager {
	return &FontManager{
		systemFontPaths: DefaultSystemFontPaths(runtime.GOOS),
		logger:          logrus.New(),
		parsed:          make(map[string]*opentype.Font),
		loaded:          make(map[fontKey]Font),
	}
}

// SetSystemFontPaths sets custom system font paths
func (fm *FontManager) SetSystemFontPaths(paths []string) {
	fm.systemFontPaths = paths
	fm.loaded = make(map[fontKey]Font)
}

// SetLogger sets the logger used to report font fallbacks
func (fm *FontManager) SetLogger(logger logrus.FieldLogger) {
	if logger != nil {
		fm.logger = logger
	}
}

// LoadFont loads fontPath at the given size. When it is empty or unusable the
// system font paths are tried, then the embedded Go Regular font, then a
// fixed 7x13 bitmap face.
func (fm *FontManager) LoadFont(fontPath string, size int) Font {
	key := fontKey{path: fontPath, size: size}
	if f, ok := fm.loaded[key]; ok {
		return f
	}
	f := fm.resolve(fontPath, size)
	fm.loaded[key] = f
	fm.logger.WithField("font", f.Name()).WithField("size", size).Debug("Font loaded")
	return f
}

func (fm *FontManager) resolve(fontPath string, size int) Font {
	if fontPath != "" {
		f, err := fm.loadFontFromPath(fontPath, size)
		if err == nil {
			return f
		}
		fm.logger.WithError(err).WithField("font", fontPath).Warn("Failed to load font, trying system fonts")
	}

	for _, path := range fm.systemFontPaths {
		if !fm.fileExists(path) {
			continue
		}
		f, err := fm.loadFontFromPath(path, size)
		if err == nil {
			return f
		}
		fm.logger.WithError(err).WithField("font", path).Debug("Skipping system font")
	}

	fm.logger.Warn("No suitable font found, using the embedded default font")
	if f, err := embeddedFont(size); err == nil {
		return f
	}
	return bitmapFont{face: basicfont.Face7x13}
}

// loadFontFromPath loads a font or the first font of a collection
func (fm *FontManager) loadFontFromPath(path string, size int) (Font, error) {
	otf, ok := fm.parsed[path]
	if !ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading font file %s: %w", path, err)
		}
		otf, err = parseFont(data)
		if err != nil {
			return nil, fmt.Errorf("parsing font file %s: %w", path, err)
		}
		fm.parsed[path] = otf
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return newOutlineFont(name, otf, size)
}

func parseFont(data []byte) (*opentype.Font, error) {
	otf, err := opentype.Parse(data)
	if err == nil {
		return otf, nil
	}
	coll, cerr := opentype.ParseCollection(data)
	if cerr != nil || coll.NumFonts() == 0 {
		return nil, err
	}
	return coll.Font(0)
}

func embeddedFont(size int) (Font, error) {
	otf, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return newOutlineFont("goregular", otf, size)
}

// fileExists checks if a file exists
func (fm *FontManager) fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// GetAvailableSystemFonts returns a list of available system fonts
func (fm *FontManager) GetAvailableSystemFonts() []string {
	var available []string
	for _, path := range fm.systemFontPaths {
		if fm.fileExists(path) {
			available = append(available, path)
		}
	}
	return available
}

// outlineFont is a scalable font. Its size and bounds measurements come from
// the plot text metrics and the rasterizing face respectively.
type outlineFont struct {
	name    string
	face    font.Face
	metrics plotfont.Face
}

func newOutlineFont(name string, otf *opentype.Font, size int) (*outlineFont, error) {
	face, err := opentype.NewFace(otf, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("creating face for %s: %w", name, err)
	}
	return &outlineFont{
		name: name,
		face: face,
		metrics: plotfont.Face{
			Font: plotfont.Font{Typeface: plotfont.Typeface(name), Size: vg.Length(size)},
			Face: otf,
		},
	}, nil
}

func (f *outlineFont) Name() string    { return f.name }
func (f *outlineFont) Face() font.Face { return f.face }

// TextSize reports the advance width and the line height. At 72 DPI one
// point is one pixel.
func (f *outlineFont) TextSize(text string) (int, int) {
	w := f.metrics.Width(text)
	h := f.metrics.Extents().Height
	return int(math.Ceil(float64(w))), int(math.Ceil(float64(h)))
}

func (f *outlineFont) TextBounds(text string) image.Rectangle {
	b, _ := font.BoundString(f.face, text)
	return image.Rect(b.Min.X.Floor(), b.Min.Y.Floor(), b.Max.X.Ceil(), b.Max.Y.Ceil())
}

// bitmapFont is a fixed-size face; it ignores the requested size.
type bitmapFont struct {
	face font.Face
}

func (f bitmapFont) Name() string    { return "basicfont-7x13" }
func (f bitmapFont) Face() font.Face { return f.face }

func (f bitmapFont) TextLength(text string) int {
	return font.MeasureString(f.face, text).Ceil()
}
