package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/denysvitali/date-watermark/pkg/watermark"
)

func addStampFlags(cmd *cobra.Command) {
	positions := make([]string, len(watermark.Positions))
	for i, p := range watermark.Positions {
		positions[i] = p.String()
	}

	cmd.Flags().StringP("position", "p", watermark.RightBottom.String(),
		"watermark position ("+strings.Join(positions, ", ")+")")
	cmd.Flags().IntP("size", "s", watermark.DefaultFontSize, "font size in pixels")
	cmd.Flags().StringP("color", "c", "transparent",
		"text color: a name (white, black, red, ...), #RRGGBB, #RRGGBBAA, rgb(r, g, b) or rgba(r, g, b, a)")
	cmd.Flags().Int("padding", watermark.DefaultPadding, "distance in pixels between the text and the image edges")
	cmd.Flags().StringP("font", "f", "", "path to a TTF/OTF/TTC font file")
	cmd.Flags().IntP("quality", "q", watermark.DefaultQuality, "JPEG output quality (1-100)")
	cmd.Flags().Bool("auto-orient", false, "rotate images according to their EXIF orientation before stamping")
}

func (a *app) runStamp(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	opts, err := a.configMgr.CreateWatermarkOptions()
	if err != nil {
		return fmt.Errorf("creating watermark options: %w", err)
	}

	batchProcessor, err := watermark.NewBatchProcessor(opts, &watermark.BatchOptions{
		Logger:     a.logger,
		DateReader: a.configMgr.CreateDateReader(),
		Fonts:      a.configMgr.CreateFontManager(),
	})
	if err != nil {
		return fmt.Errorf("creating batch processor: %w", err)
	}

	result, err := batchProcessor.Process(inputPath)
	if errors.Is(err, watermark.ErrInvalidInput) {
		a.logger.WithError(err).WithField("path", inputPath).Error("Path does not exist")
		return nil
	}
	if err != nil {
		return fmt.Errorf("processing %s: %w", inputPath, err)
	}

	// Report results
	if result.ErrorCount > 0 {
		a.logger.Warnf("Completed with %d errors out of %d files", result.ErrorCount, result.TotalCount)
		for _, batchErr := range result.Errors {
			a.logger.WithError(batchErr.Error).WithField("file", batchErr.FilePath).Error("Processing failed")
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Done! Processed %d file(s), output directory: %s\n",
		result.ProcessedCount, result.OutputDir)
	return nil
}
