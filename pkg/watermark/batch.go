package watermark

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrInvalidInput is returned when the input path is neither a file nor a
// directory.
var ErrInvalidInput = errors.New("input path is neither a file nor a directory")

// SupportedExtensions lists the image extensions that are processed,
// compared case-insensitively.
var SupportedExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff"}

// IsSupportedImage reports whether path has a supported image extension
func IsSupportedImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, supportedExt := range SupportedExtensions {
		if ext == supportedExt {
			return true
		}
	}
	return false
}

// FileStatus is the outcome of a single file
type FileStatus int

const (
	StatusProcessed FileStatus = iota
	StatusUnsupported
	StatusNoDate
	StatusFailed
)

func (s FileStatus) String() string {
	switch s {
	case StatusProcessed:
		return "processed"
	case StatusUnsupported:
		return "unsupported"
	case StatusNoDate:
		return "no-date"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("FileStatus(%d)", int(s))
}

// FileResult records what happened to one candidate file
type FileResult struct {
	Path       string
	OutputPath string
	Status     FileStatus
	Err        error
}

// BatchResult contains the results of batch processing
type BatchResult struct {
	OutputDir      string
	TotalCount     int
	ProcessedCount int
	SkippedCount   int
	ErrorCount     int
	Files          []FileResult
	Errors         []BatchError
}

// BatchError represents an error that occurred during batch processing
type BatchError struct {
	FilePath string
	Error    error
}

// BatchOptions configures batch processing collaborators. Nil fields get
// defaults.
type BatchOptions struct {
	Logger     logrus.FieldLogger
	DateReader DateReader
	Fonts      FontLoader
	Drawer     TextDrawer
}

// BatchProcessor stamps every supported image of a file or directory, one
// file at a time.
type BatchProcessor struct {
	options  *Options
	renderer *Renderer
	dates    DateReader
	logger   logrus.FieldLogger
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(opts *Options, batchOptions *BatchOptions) (*BatchProcessor, error) {
	if err := ValidateOptions(opts); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if batchOptions == nil {
		batchOptions = &BatchOptions{}
	}

	logger := batchOptions.Logger
	if logger == nil {
		logger = logrus.New()
	}

	dates := batchOptions.DateReader
	if dates == nil {
		dates = NewExifDateReader(DefaultDateLayout, logger)
	}

	renderer := NewRenderer(opts, batchOptions.Fonts, logger)
	renderer.SetDrawer(batchOptions.Drawer)

	return &BatchProcessor{
		options:  opts,
		renderer: renderer,
		dates:    dates,
		logger:   logger,
	}, nil
}

// Process stamps inputPath, a single image or a directory whose direct
// children are stamped. Results go to OutputDir of the returned result.
// Only an invalid input path or an uncreatable output directory is an
// error; per-file failures are recorded in the result.
func (bp *BatchProcessor) Process(inputPath string) (*BatchResult, error) {
	files, baseDir, err := resolveInput(inputPath)
	if err != nil {
		return nil, err
	}

	outputDir := OutputDir(baseDir, bp.options.OutputSuffix)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	bp.logger.WithFields(logrus.Fields{
		"input":      inputPath,
		"output_dir": outputDir,
		"files":      len(files),
		"position":   bp.options.Position,
		"size":       bp.options.FontSize,
		"color":      bp.options.Color.String(),
	}).Info("Starting batch processing")

	result := &BatchResult{
		OutputDir: outputDir,
		Errors:    make([]BatchError, 0),
	}
	for _, file := range files {
		fr := bp.processFile(file, outputDir)
		bp.record(result, fr)
	}

	bp.logger.WithFields(logrus.Fields{
		"processed": result.ProcessedCount,
		"skipped":   result.SkippedCount,
		"errors":    result.ErrorCount,
		"total":     result.TotalCount,
	}).Info("Batch processing completed")

	return result, nil
}

func (bp *BatchProcessor) processFile(path, outputDir string) FileResult {
	if !IsSupportedImage(path) {
		return FileResult{Path: path, Status: StatusUnsupported}
	}

	date, ok := bp.dates.ReadCaptureDate(path)
	if !ok {
		bp.logger.WithField("file", path).Warn("No capture date found, skipping file")
		return FileResult{Path: path, Status: StatusNoDate}
	}

	outputPath := filepath.Join(outputDir, filepath.Base(path))
	req := &Request{
		SourcePath: path,
		OutputPath: outputPath,
		Text:       date,
		Position:   bp.options.Position,
		FontSize:   bp.options.FontSize,
		Color:      bp.options.Color,
		Padding:    bp.options.Padding,
	}
	if err := bp.renderer.Render(req); err != nil {
		bp.logger.WithError(err).WithField("file", path).Error("Failed to watermark image")
		return FileResult{Path: path, OutputPath: outputPath, Status: StatusFailed, Err: err}
	}

	bp.logger.WithField("file", path).WithField("output", outputPath).WithField("date", date).Info("Watermarked image")
	return FileResult{Path: path, OutputPath: outputPath, Status: StatusProcessed}
}

func (bp *BatchProcessor) record(result *BatchResult, fr FileResult) {
	result.Files = append(result.Files, fr)
	switch fr.Status {
	case StatusUnsupported:
		return
	case StatusProcessed:
		result.ProcessedCount++
	case StatusNoDate:
		result.SkippedCount++
	case StatusFailed:
		result.ErrorCount++
		result.Errors = append(result.Errors, BatchError{FilePath: fr.Path, Error: fr.Err})
	}
	result.TotalCount++
}

// resolveInput returns the candidate files of inputPath and the directory the
// output directory is derived from.
func resolveInput(inputPath string) ([]string, string, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %v", ErrInvalidInput, inputPath, err)
	}

	switch {
	case info.Mode().IsRegular():
		return []string{inputPath}, filepath.Dir(inputPath), nil
	case info.IsDir():
		entries, err := os.ReadDir(inputPath)
		if err != nil {
			return nil, "", fmt.Errorf("reading directory %s: %w", inputPath, err)
		}
		var files []string
		for _, entry := range entries {
			path := filepath.Join(inputPath, entry.Name())
			// follow symlinks, skip directories
			if fi, err := os.Stat(path); err == nil && fi.Mode().IsRegular() {
				files = append(files, path)
			}
		}
		return files, inputPath, nil
	default:
		return nil, "", fmt.Errorf("%w: %s", ErrInvalidInput, inputPath)
	}
}

// OutputDir returns the directory watermarked copies of files in baseDir are
// written to: baseDir/<name of baseDir><suffix>.
func OutputDir(baseDir, suffix string) string {
	dir := filepath.Clean(baseDir)
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return filepath.Join(dir, filepath.Base(dir)+suffix)
}
