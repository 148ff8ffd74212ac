package media

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/cinematch/internal/config"
)

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected Kind
	}{
		{name: "TMDB poster", url: "https://image.tmdb.org/t/p/w500/abc.jpg", expected: KindImage},
		{name: "JPEG uppercase", url: "https://image.tmdb.org/t/p/w500/ABC.JPEG", expected: KindImage},
		{name: "PNG with query", url: "http://cdn.test/p.png?v=2", expected: KindImage},
		{name: "WebP", url: "https://cdn.test/poster.webp", expected: KindImage},
		{name: "search page", url: "https://www.themoviedb.org/search?query=heat", expected: KindWeb},
		{name: "extension in query only", url: "https://cdn.test/view?file=a.jpg", expected: KindWeb},
		{name: "placeholder path", url: "/placeholder-movie.jpg", expected: KindUnknown},
		{name: "file scheme", url: "file:///tmp/a.jpg", expected: KindUnknown},
		{name: "empty", url: "", expected: KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectKind(tt.url))
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "image", KindImage.String())
	assert.Equal(t, "web page", KindWeb.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}

func TestMovieSearchURL(t *testing.T) {
	assert.Equal(t, "https://www.themoviedb.org/search?query=The+Dark+Knight", MovieSearchURL(" The Dark Knight "))
}

type startCall struct {
	name string
	args []string
}

func fakeLookPath(installed ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, i := range installed {
			if i == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", exec.ErrNotFound
	}
}

func newTestLauncher(t *testing.T, goos string, installed []string, startErr error) (*Launcher, *[]startCall) {
	t.Helper()
	registry, err := parseViewers(viewersTOML)
	require.NoError(t, err)
	registry.goos = goos

	var calls []startCall
	start := func(name string, args ...string) error {
		calls = append(calls, startCall{name: name, args: args})
		return startErr
	}
	cfg := config.TestConfig().Media
	return newLauncher(cfg, registry, goos, fakeLookPath(installed...), start), &calls
}

func TestLauncher_ViewerSelection(t *testing.T) {
	tests := []struct {
		name      string
		goos      string
		installed []string
		wantImage string
		wantWeb   string
	}{
		{"linux with feh", "linux", []string{"feh", "xdg-open"}, "feh", "xdg-open"},
		{"linux prefers first installed", "linux", []string{"eog", "sxiv", "xdg-open"}, "sxiv", "xdg-open"},
		{"linux nothing installed", "linux", nil, "xdg-open", "xdg-open"},
		{"darwin", "darwin", []string{"qlmanage", "open"}, "qlmanage", "open"},
		{"windows", "windows", []string{"cmd"}, "start", "start"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newTestLauncher(t, tt.goos, tt.installed, nil)
			assert.Equal(t, tt.wantImage, l.Viewer(KindImage))
			assert.Equal(t, tt.wantWeb, l.Viewer(KindWeb))
		})
	}
}

func TestLauncher_Open(t *testing.T) {
	l, calls := newTestLauncher(t, "linux", []string{"feh", "xdg-open"}, nil)

	poster := "https://image.tmdb.org/t/p/w500/abc.jpg"
	require.NoError(t, l.Open(poster))
	require.Len(t, *calls, 1)
	assert.Equal(t, "feh", (*calls)[0].name)
	assert.Equal(t, []string{"--scale-down", "--auto-zoom", poster}, (*calls)[0].args)

	page := MovieSearchURL("Heat")
	require.NoError(t, l.Open(page))
	require.Len(t, *calls, 2)
	assert.Equal(t, "xdg-open", (*calls)[1].name)
	assert.Equal(t, []string{page}, (*calls)[1].args)
}

func TestLauncher_OpenWindowsUsesCmd(t *testing.T) {
	l, calls := newTestLauncher(t, "windows", []string{"cmd"}, nil)

	require.NoError(t, l.Open("https://www.themoviedb.org/movie/27205"))
	require.Len(t, *calls, 1)
	assert.Equal(t, "cmd", (*calls)[0].name)
	assert.Equal(t, []string{"/c", "start", "", "https://www.themoviedb.org/movie/27205"}, (*calls)[0].args)
}

func TestLauncher_OpenErrors(t *testing.T) {
	l, calls := newTestLauncher(t, "linux", []string{"xdg-open"}, errors.New("exec failed"))

	err := l.Open("/placeholder-movie.jpg")
	require.Error(t, err)
	assert.Empty(t, *calls, "non-http URLs are never handed to a program")

	err = l.Open("https://image.tmdb.org/t/p/w500/abc.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start xdg-open")
}

func TestNewLauncher(t *testing.T) {
	l := NewLauncher(config.TestConfig())
	require.NotNil(t, l)
	assert.NotEmpty(t, l.Viewer(KindImage))
	assert.NotEmpty(t, l.Viewer(KindWeb))
}
