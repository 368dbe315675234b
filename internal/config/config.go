// Package config provides configuration management for the date watermark tool
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/denysvitali/date-watermark/pkg/watermark"
)

// AppConfig represents the application configuration
type AppConfig struct {
	Position     string `mapstructure:"position"`
	FontSize     int    `mapstructure:"font_size"`
	Color        string `mapstructure:"color"`
	Padding      int    `mapstructure:"padding"`
	FontPath     string `mapstructure:"font_path"`
	Quality      int    `mapstructure:"quality"`
	AutoOrient   bool   `mapstructure:"auto_orient"`
	OutputSuffix string `mapstructure:"output_suffix"`
	DateLayout   string `mapstructure:"date_layout"`
	LogLevel     string `mapstructure:"log_level"`

	// System font paths
	SystemFontPaths []string `mapstructure:"system_font_paths"`
}

// flagKeys maps command line flag names to configuration keys
var flagKeys = map[string]string{
	"position":    "position",
	"size":        "font_size",
	"color":       "color",
	"padding":     "padding",
	"font":        "font_path",
	"quality":     "quality",
	"auto-orient": "auto_orient",
	"log-level":   "log_level",
}

// Manager handles configuration loading and management
type Manager struct {
	config *AppConfig
	viper  *viper.Viper
	logger logrus.FieldLogger
}

// NewManager creates a new configuration manager
func NewManager() *Manager {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	return &Manager{
		config: &AppConfig{},
		viper:  v,
		logger: logrus.New(),
	}
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("position", string(watermark.RightBottom))
	v.SetDefault("font_size", watermark.DefaultFontSize)
	v.SetDefault("color", "transparent")
	v.SetDefault("padding", watermark.DefaultPadding)
	v.SetDefault("font_path", "")
	v.SetDefault("quality", watermark.DefaultQuality)
	v.SetDefault("auto_orient", false)
	v.SetDefault("output_suffix", watermark.DefaultOutputSuffix)
	v.SetDefault("date_layout", watermark.DefaultDateLayout)
	v.SetDefault("log_level", "info")
	v.SetDefault("system_font_paths", watermark.DefaultSystemFontPaths(runtime.GOOS))
}

// SetLogger sets the logger used for configuration warnings
func (m *Manager) SetLogger(logger logrus.FieldLogger) {
	if logger != nil {
		m.logger = logger
	}
}

// BindFlags binds the known command line flags of fs to their configuration keys
func (m *Manager) BindFlags(fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := m.viper.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("binding flag %s: %w", name, err)
		}
	}
	return nil
}

// LoadConfig loads configuration from file and environment
func (m *Manager) LoadConfig(configFile string) error {
	if configFile != "" {
		m.viper.SetConfigFile(configFile)
	} else {
		// Look for config in standard locations
		m.viper.SetConfigName("date-watermark")
		m.viper.SetConfigType("yaml")
		m.viper.AddConfigPath(".")
		m.viper.AddConfigPath("$HOME/.config/date-watermark")
		m.viper.AddConfigPath("/etc/date-watermark")
	}

	// Environment variable support
	m.viper.SetEnvPrefix("DATE_WATERMARK")
	m.viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	m.viper.AutomaticEnv()

	// Read config file if it exists
	if err := m.viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	return m.refresh()
}

func (m *Manager) refresh() error {
	if err := m.viper.Unmarshal(m.config); err != nil {
		return fmt.Errorf("unmarshaling config: %w", err)
	}
	return nil
}

// GetAppConfig returns the loaded application configuration
func (m *Manager) GetAppConfig() *AppConfig {
	if err := m.refresh(); err != nil {
		m.logger.WithError(err).Warn("Failed to refresh configuration, showing last loaded values")
	}
	return m.config
}

// GetString returns the effective value of a configuration key
func (m *Manager) GetString(key string) string {
	return m.viper.GetString(key)
}

// CreateWatermarkOptions builds validated watermark options from the
// effective configuration. An unparsable color falls back to the default
// color with a warning; an unknown position is an error.
func (m *Manager) CreateWatermarkOptions() (*watermark.Options, error) {
	position, err := watermark.ParsePosition(m.viper.GetString("position"))
	if err != nil {
		return nil, err
	}

	colorSpec := m.viper.GetString("color")
	color, err := watermark.TryParseColor(colorSpec)
	if err != nil {
		m.logger.WithError(err).WithField("color", colorSpec).Warn("Using default color")
	}

	opts := &watermark.Options{
		Position:     position,
		FontSize:     m.viper.GetInt("font_size"),
		Color:        color,
		Padding:      m.viper.GetInt("padding"),
		FontPath:     m.viper.GetString("font_path"),
		Quality:      m.viper.GetInt("quality"),
		AutoOrient:   m.viper.GetBool("auto_orient"),
		OutputSuffix: m.viper.GetString("output_suffix"),
	}
	if err := watermark.ValidateOptions(opts); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return opts, nil
}

// CreateFontManager returns a font manager using the configured system font paths
func (m *Manager) CreateFontManager() *watermark.FontManager {
	fm := watermark.NewFontManager()
	fm.SetLogger(m.logger)
	fm.SetSystemFontPaths(m.viper.GetStringSlice("system_font_paths"))
	return fm
}

// CreateDateReader returns an EXIF date reader using the configured date layout
func (m *Manager) CreateDateReader() *watermark.ExifDateReader {
	return watermark.NewExifDateReader(m.viper.GetString("date_layout"), m.logger)
}

// SaveConfig saves the current configuration to a file
func (m *Manager) SaveConfig(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return m.viper.WriteConfigAs(filename)
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./date-watermark.yaml"
	}
	return filepath.Join(homeDir, ".config", "date-watermark", "date-watermark.yaml")
}

// GenerateExampleConfig creates an example configuration file
func GenerateExampleConfig(filename string) error {
	manager := NewManager()

	// Set some example values
	manager.viper.Set("position", string(watermark.RightBottom))
	manager.viper.Set("font_size", 48)
	manager.viper.Set("color", "#FFA500C0")
	manager.viper.Set("quality", 90)

	return manager.SaveConfig(filename)
}
