package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/denysvitali/date-watermark/internal/config"
	"github.com/denysvitali/date-watermark/pkg/watermark"
)

func newConfigCmd(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  `Manage configuration files for the date watermark tool.`,
	}

	generateConfigCmd := &cobra.Command{
		Use:   "generate [filename]",
		Short: "Generate example configuration file",
		Long: `Generate an example configuration file with default values.

Example:
  date-watermark config generate date-watermark.yaml
  date-watermark config generate  # generates to default location`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.runGenerateConfig,
	}

	showConfigCmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  `Display the current configuration values.`,
		Args:  cobra.NoArgs,
		RunE:  a.runShowConfig,
	}

	configCmd.AddCommand(generateConfigCmd)
	configCmd.AddCommand(showConfigCmd)
	return configCmd
}

func (a *app) runGenerateConfig(cmd *cobra.Command, args []string) error {
	var filename string
	if len(args) > 0 {
		filename = args[0]
	} else {
		filename = config.GetDefaultConfigPath()
	}

	a.logger.WithField("file", filename).Info("Generating configuration file")

	if err := config.GenerateExampleConfig(filename); err != nil {
		return fmt.Errorf("generating config file: %w", err)
	}

	a.logger.Infof("Configuration file generated: %s", filename)
	return nil
}

func (a *app) runShowConfig(cmd *cobra.Command, args []string) error {
	appConfig := a.configMgr.GetAppConfig()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Current Configuration:\n")
	fmt.Fprintf(out, "  Position:          %s\n", appConfig.Position)
	fmt.Fprintf(out, "  Font Size:         %d\n", appConfig.FontSize)
	fmt.Fprintf(out, "  Color:             %s (%s)\n", appConfig.Color, watermark.ParseColor(appConfig.Color))
	fmt.Fprintf(out, "  Padding:           %d\n", appConfig.Padding)
	fmt.Fprintf(out, "  Font Path:         %s\n", appConfig.FontPath)
	fmt.Fprintf(out, "  Quality:           %d\n", appConfig.Quality)
	fmt.Fprintf(out, "  Auto Orient:       %t\n", appConfig.AutoOrient)
	fmt.Fprintf(out, "  Output Suffix:     %s\n", appConfig.OutputSuffix)
	fmt.Fprintf(out, "  Date Layout:       %s\n", appConfig.DateLayout)
	fmt.Fprintf(out, "  Log Level:         %s\n", appConfig.LogLevel)

	available := make(map[string]bool)
	for _, path := range a.configMgr.CreateFontManager().GetAvailableSystemFonts() {
		available[path] = true
	}

	fmt.Fprintf(out, "\nSystem Font Paths:\n")
	for _, path := range appConfig.SystemFontPaths {
		status := "missing"
		if available[path] {
			status = "found"
		}
		fmt.Fprintf(out, "  - %s (%s)\n", path, status)
	}

	return nil
}
