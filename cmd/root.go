package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/denysvitali/date-watermark/internal/config"
)

// app holds the state shared by the commands of one invocation
type app struct {
	cfgFile   string
	configMgr *config.Manager
	logger    *logrus.Logger
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "date-watermark [path]",
		Short: "Stamp photos with the date they were taken",
		Long: `Date Watermark reads the capture date from the EXIF metadata of a photo
and draws it onto the image. The path may be a single image or a directory,
in which case every image directly inside it is processed.

Watermarked copies are written to <dir>/<dir>_watermark; originals are
never modified. Images without a capture date are skipped.`,
		Example: `  date-watermark ./holiday
  date-watermark IMG_0001.jpg --position left-top --size 48 --color "#FFA500"
  date-watermark ./holiday -p center-bottom -c "rgba(255, 255, 255, 200)"`,
		Args:              cobra.ExactArgs(1),
		PersistentPreRunE: a.initialize,
		RunE:              a.runStamp,
		SilenceUsage:      true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.config/date-watermark/date-watermark.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("verbose", false, "verbose output")

	addStampFlags(rootCmd)
	rootCmd.AddCommand(newConfigCmd(a))

	return rootCmd
}

// Execute executes the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// initialize loads the configuration and sets up the logger
func (a *app) initialize(cmd *cobra.Command, args []string) error {
	a.logger = logrus.New()
	a.logger.SetOutput(cmd.ErrOrStderr())

	a.configMgr = config.NewManager()
	a.configMgr.SetLogger(a.logger)
	if err := a.configMgr.BindFlags(cmd.Flags()); err != nil {
		return err
	}
	if err := a.configMgr.LoadConfig(a.cfgFile); err != nil {
		a.logger.WithError(err).Warn("Failed to load configuration, using defaults")
	}

	// Set log level
	level, err := logrus.ParseLevel(a.configMgr.GetString("log_level"))
	if err != nil {
		level = logrus.InfoLevel
	}
	a.logger.SetLevel(level)

	// Set formatter
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		a.logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	} else {
		a.logger.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: true,
			DisableColors:    false,
		})
	}

	return nil
}
