package watermark

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

func TestDefaultSystemFontPaths(t *testing.T) {
	for _, goos := range []string{"windows", "darwin", "linux", "freebsd"} {
		assert.NotEmpty(t, DefaultSystemFontPaths(goos), goos)
	}
	assert.Contains(t, DefaultSystemFontPaths("windows"), `C:\Windows\Fonts\simhei.ttf`)
	assert.Contains(t, DefaultSystemFontPaths("darwin"), "/System/Library/Fonts/PingFang.ttc")
	assert.Contains(t, DefaultSystemFontPaths("linux"), "/usr/share/fonts/truetype/wqy/wqy-microhei.ttc")
}

func TestFontManagerFallsBackToEmbeddedFont(t *testing.T) {
	fm := NewFontManager()
	fm.SetSystemFontPaths([]string{filepath.Join(t.TempDir(), "missing.ttf")})

	f := fm.LoadFont("", 24)
	require.NotNil(t, f)
	assert.Equal(t, "goregular", f.Name())
	assert.NotNil(t, f.Face())

	broken := filepath.Join(t.TempDir(), "broken.ttf")
	require.NoError(t, os.WriteFile(broken, []byte("not a font"), 0o644))
	f = fm.LoadFont(broken, 24)
	assert.Equal(t, "goregular", f.Name())
}

func TestFontManagerPreferredAndSystemFonts(t *testing.T) {
	dir := t.TempDir()
	bold := filepath.Join(dir, "GoBold.ttf")
	regular := filepath.Join(dir, "GoRegular.ttf")
	require.NoError(t, os.WriteFile(bold, gobold.TTF, 0o644))
	require.NoError(t, os.WriteFile(regular, goregular.TTF, 0o644))

	fm := NewFontManager()
	fm.SetSystemFontPaths([]string{filepath.Join(dir, "missing.ttf"), regular})

	assert.Equal(t, "GoBold", fm.LoadFont(bold, 30).Name())
	assert.Equal(t, "GoRegular", fm.LoadFont("", 30).Name())
	assert.Equal(t, "GoRegular", fm.LoadFont(filepath.Join(dir, "nope.ttf"), 30).Name())
	assert.Equal(t, []string{regular}, fm.GetAvailableSystemFonts())
}

func TestFontManagerCachesBySize(t *testing.T) {
	fm := NewFontManager()
	fm.SetSystemFontPaths(nil)

	a := fm.LoadFont("", 20)
	b := fm.LoadFont("", 20)
	c := fm.LoadFont("", 40)
	assert.Same(t, a, b)
	assert.NotSame(t, a, c)

	small := MeasureText(a, "2024-01-01", 20)
	large := MeasureText(c, "2024-01-01", 40)
	assert.Greater(t, large.Width, small.Width)
	assert.Greater(t, large.Height, small.Height)
}
