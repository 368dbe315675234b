package config

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denysvitali/date-watermark/pkg/watermark"
)

func loadManager(t *testing.T, configFile string) *Manager {
	t.Helper()
	m := NewManager()
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	m.SetLogger(quiet)
	require.NoError(t, m.LoadConfig(configFile))
	return m
}

// chdir moves into dir so no config file from the working directory is found.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	m := loadManager(t, "")

	opts, err := m.CreateWatermarkOptions()
	require.NoError(t, err)
	assert.Equal(t, watermark.DefaultOptions(), opts)

	cfg := m.GetAppConfig()
	assert.Equal(t, "right-bottom", cfg.Position)
	assert.Equal(t, 36, cfg.FontSize)
	assert.Equal(t, "transparent", cfg.Color)
	assert.Equal(t, 10, cfg.Padding)
	assert.Equal(t, "2006-01-02", cfg.DateLayout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, watermark.DefaultSystemFontPaths(runtime.GOOS), cfg.SystemFontPaths)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`position: left-top
font_size: 48
color: "rgba(10, 20, 30, 40)"
padding: 4
quality: 80
date_layout: "02.01.2006"
output_suffix: _stamped
system_font_paths:
  - /opt/fonts/a.ttf
`), 0o644))

	m := loadManager(t, file)
	opts, err := m.CreateWatermarkOptions()
	require.NoError(t, err)
	assert.Equal(t, &watermark.Options{
		Position:     watermark.LeftTop,
		FontSize:     48,
		Color:        watermark.Color{R: 10, G: 20, B: 30, A: 40},
		Padding:      4,
		Quality:      80,
		OutputSuffix: "_stamped",
	}, opts)
	assert.Equal(t, "02.01.2006", m.CreateDateReader().Layout)
	assert.Equal(t, []string{"/opt/fonts/a.ttf"}, m.GetAppConfig().SystemFontPaths)
}

func TestLoadConfigBrokenFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(file, []byte("position: [unterminated"), 0o644))

	assert.Error(t, NewManager().LoadConfig(file))
}

func TestEnvironmentOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DATE_WATERMARK_POSITION", "center")
	t.Setenv("DATE_WATERMARK_FONT_SIZE", "20")

	opts, err := loadManager(t, "").CreateWatermarkOptions()
	require.NoError(t, err)
	assert.Equal(t, watermark.Center, opts.Position)
	assert.Equal(t, 20, opts.FontSize)
}

func TestFlagsTakePrecedence(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DATE_WATERMARK_POSITION", "center")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.StringP("position", "p", "right-bottom", "")
	fs.IntP("size", "s", 36, "")
	fs.StringP("color", "c", "transparent", "")
	require.NoError(t, fs.Parse([]string{"-p", "left-bottom", "-c", "#FF0000"}))

	m := NewManager()
	require.NoError(t, m.BindFlags(fs))
	require.NoError(t, m.LoadConfig(""))

	opts, err := m.CreateWatermarkOptions()
	require.NoError(t, err)
	assert.Equal(t, watermark.LeftBottom, opts.Position)
	assert.Equal(t, watermark.Color{R: 255, A: 255}, opts.Color)
	assert.Equal(t, 36, opts.FontSize)
}

func TestCreateWatermarkOptionsErrors(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("DATE_WATERMARK_POSITION", "upper-left")
	_, err := loadManager(t, "").CreateWatermarkOptions()
	assert.ErrorIs(t, err, watermark.ErrUnknownPosition)

	t.Setenv("DATE_WATERMARK_POSITION", "center")
	t.Setenv("DATE_WATERMARK_QUALITY", "0")
	_, err = loadManager(t, "").CreateWatermarkOptions()
	assert.Error(t, err)
}

func TestBadColorFallsBackWithWarning(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DATE_WATERMARK_COLOR", "not-a-color")

	logger, hook := test.NewNullLogger()
	m := NewManager()
	m.SetLogger(logger)
	require.NoError(t, m.LoadConfig(""))

	opts, err := m.CreateWatermarkOptions()
	require.NoError(t, err)
	assert.Equal(t, watermark.DefaultColor, opts.Color)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "not-a-color", hook.LastEntry().Data["color"])
}

func TestGenerateExampleConfig(t *testing.T) {
	file := filepath.Join(t.TempDir(), "sub", "date-watermark.yaml")
	require.NoError(t, GenerateExampleConfig(file))
	assert.FileExists(t, file)

	m := loadManager(t, file)
	opts, err := m.CreateWatermarkOptions()
	require.NoError(t, err)
	assert.Equal(t, 48, opts.FontSize)
	assert.Equal(t, watermark.Color{R: 255, G: 165, A: 192}, opts.Color)
	assert.Equal(t, 90, opts.Quality)
}

func TestGetDefaultConfigPath(t *testing.T) {
	assert.Equal(t, "date-watermark.yaml", filepath.Base(GetDefaultConfigPath()))
}

func TestGetAppConfigLogsRefreshFailure(t *testing.T) {
	chdir(t, t.TempDir())

	logger, hook := test.NewNullLogger()
	m := NewManager()
	m.SetLogger(logger)
	require.NoError(t, m.LoadConfig(""))

	t.Setenv("DATE_WATERMARK_FONT_SIZE", "huge")
	assert.NotNil(t, m.GetAppConfig())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Error(t, hook.LastEntry().Data[logrus.ErrorKey].(error))
}
