// Package watermark stamps images with their capture date as visible text.
package watermark

import (
	"fmt"
	"image/draw"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
)

const (
	DefaultFontSize     = 36
	DefaultQuality      = 95
	DefaultOutputSuffix = "_watermark"
)

// Options holds the settings shared by every file of a run
type Options struct {
	Position     Position
	FontSize     int
	Color        Color
	Padding      int
	FontPath     string
	Quality      int
	AutoOrient   bool
	OutputSuffix string
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() *Options {
	return &Options{
		Position:     RightBottom,
		FontSize:     DefaultFontSize,
		Color:        DefaultColor,
		Padding:      DefaultPadding,
		Quality:      DefaultQuality,
		OutputSuffix: DefaultOutputSuffix,
	}
}

// ValidateOptions validates the watermark options
func ValidateOptions(opts *Options) error {
	if opts == nil {
		return fmt.Errorf("options cannot be nil")
	}

	if _, err := ParsePosition(string(opts.Position)); err != nil {
		return err
	}

	if opts.FontSize <= 0 {
		return fmt.Errorf("font size must be positive, got: %d", opts.FontSize)
	}

	if opts.Padding < 0 {
		return fmt.Errorf("padding cannot be negative, got: %d", opts.Padding)
	}

	if opts.Quality < 1 || opts.Quality > 100 {
		return fmt.Errorf("quality must be between 1 and 100, got: %d", opts.Quality)
	}

	if strings.TrimSpace(opts.OutputSuffix) == "" {
		return fmt.Errorf("output suffix cannot be empty")
	}

	return nil
}

// Request describes the watermark for a single file
type Request struct {
	SourcePath string
	OutputPath string
	Text       string
	Position   Position
	FontSize   int
	Color      Color
	Padding    int
}

// Renderer draws a request's text onto its source image and saves the result
type Renderer struct {
	fonts      FontLoader
	drawer     TextDrawer
	fontPath   string
	quality    int
	autoOrient bool
	logger     logrus.FieldLogger
}

// NewRenderer creates a renderer. A nil fonts uses a new FontManager.
func NewRenderer(opts *Options, fonts FontLoader, logger logrus.FieldLogger) *Renderer {
	if logger == nil {
		logger = logrus.New()
	}
	if fonts == nil {
		fm := NewFontManager()
		fm.SetLogger(logger)
		fonts = fm
	}
	return &Renderer{
		fonts:      fonts,
		drawer:     FaceDrawer{},
		fontPath:   opts.FontPath,
		quality:    opts.Quality,
		autoOrient: opts.AutoOrient,
		logger:     logger,
	}
}

// SetDrawer replaces the text drawing primitive
func (r *Renderer) SetDrawer(d TextDrawer) {
	if d != nil {
		r.drawer = d
	}
}

// Render watermarks req.SourcePath into req.OutputPath. Failures at any step
// are returned as errors; Render does not panic.
func (r *Renderer) Render(req *Request) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("rendering %s: %v", req.SourcePath, rec)
		}
	}()

	src, err := imaging.Open(req.SourcePath, imaging.AutoOrientation(r.autoOrient))
	if err != nil {
		return fmt.Errorf("opening image: %w", err)
	}

	canvas := imaging.Clone(src)
	if err := r.stamp(canvas, req); err != nil {
		return fmt.Errorf("drawing text: %w", err)
	}

	if err := imaging.Save(canvas, req.OutputPath, imaging.JPEGQuality(r.quality)); err != nil {
		return fmt.Errorf("saving image: %w", err)
	}
	return nil
}

// stamp measures, places and draws the request text on dst.
func (r *Renderer) stamp(dst draw.Image, req *Request) error {
	f := r.fonts.LoadFont(r.fontPath, req.FontSize)

	text, strategy := measureText(f, req.Text, req.FontSize)
	bounds := dst.Bounds()
	img := Extent{Width: bounds.Dx(), Height: bounds.Dy()}
	pt := ComputePosition(img, text, req.Position, req.Padding).Add(bounds.Min)

	r.logger.WithFields(logrus.Fields{
		"file":     req.SourcePath,
		"font":     f.Name(),
		"measure":  strategy,
		"image":    img.String(),
		"text":     text.String(),
		"position": pt.String(),
	}).Debug("Placing watermark")

	return drawWithFallback(r.drawer, dst, pt, req.Text, f, req.Color)
}
