// Package media opens poster images and web pages in an external program
// chosen per platform from the configured viewer lists.
package media

import (
	"fmt"
	"net/url"
	"os/exec"
	"path"
	"runtime"
	"strings"

	"github.com/pders01/cinematch/internal/config"
	"github.com/pders01/cinematch/internal/debuglog"
)

type Kind int

const (
	KindImage Kind = iota
	KindWeb
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindWeb:
		return "web page"
	default:
		return "unknown"
	}
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true, ".svg": true,
}

// DetectKind classifies a URL by the extension of its path. Other http(s)
// URLs are web pages.
func DetectKind(raw string) Kind {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return KindUnknown
	}
	if imageExtensions[strings.ToLower(path.Ext(u.Path))] {
		return KindImage
	}
	return KindWeb
}

// MovieSearchURL is the TMDB web search page for a title, used when a
// movie has no poster.
func MovieSearchURL(title string) string {
	return "https://www.themoviedb.org/search?query=" + url.QueryEscape(strings.TrimSpace(title))
}

// Opener is what the UI needs to show a URL outside the terminal.
type Opener interface {
	Open(url string) error
}

type Launcher struct {
	imageViewer   string
	webViewer     string
	defaultOpener string
	registry      *ViewerRegistry

	// start runs a program without waiting for it to exit.
	start func(name string, args ...string) error
}

func NewLauncher(cfg *config.Config) *Launcher {
	registry, err := NewViewerRegistry()
	if err != nil {
		debuglog.Warnf("media: viewer definitions unavailable: %v", err)
		registry = &ViewerRegistry{viewers: make(map[string]ViewerDefinition), goos: runtime.GOOS}
	}
	return newLauncher(cfg.Media, registry, runtime.GOOS, exec.LookPath, startDetached)
}

func newLauncher(cfg config.MediaConfig, registry *ViewerRegistry, goos string,
	lookPath func(string) (string, error), start func(string, ...string) error) *Launcher {

	defaultOpener := cfg.DefaultOpener
	if defaultOpener == "" {
		switch goos {
		case "linux":
			defaultOpener = "xdg-open"
		case "windows":
			defaultOpener = "start"
		default:
			defaultOpener = "open"
		}
	}

	var viewers config.MediaViewers
	switch goos {
	case "darwin":
		viewers = cfg.Darwin
	case "linux":
		viewers = cfg.Linux
	case "windows":
		viewers = cfg.Windows
	default:
		viewers = cfg.Darwin
	}

	l := &Launcher{
		defaultOpener: defaultOpener,
		registry:      registry,
		start:         start,
	}
	l.imageViewer = l.findViewer(viewers.Image, KindImage, lookPath)
	l.webViewer = l.findViewer(viewers.Web, KindWeb, lookPath)

	if l.imageViewer == "" {
		l.imageViewer = defaultOpener
	}
	if l.webViewer == "" {
		l.webViewer = defaultOpener
	}
	return l
}

func (l *Launcher) findViewer(candidates []string, kind Kind, lookPath func(string) (string, error)) string {
	for _, c := range candidates {
		if l.registry.Supports(c, kind) && l.registry.lookupExecutable(c, lookPath) {
			return c
		}
	}
	return ""
}

// Viewer returns the program chosen for kind.
func (l *Launcher) Viewer(kind Kind) string {
	if kind == KindImage {
		return l.imageViewer
	}
	if kind == KindWeb {
		return l.webViewer
	}
	return l.defaultOpener
}

func (l *Launcher) Open(rawURL string) error {
	kind := DetectKind(rawURL)
	if kind == KindUnknown {
		return fmt.Errorf("not an http(s) URL: %q", rawURL)
	}

	viewer := l.Viewer(kind)
	if viewer == "" {
		return fmt.Errorf("no application found to open %s", kind)
	}

	name, args, err := l.registry.Command(viewer, kind, rawURL)
	if err != nil {
		name, args = viewer, []string{rawURL}
	}

	debuglog.Debugf("media: %s %v", name, args)
	if err := l.start(name, args...); err != nil {
		return fmt.Errorf("failed to start %s: %w", viewer, err)
	}
	return nil
}

// startDetached starts a GUI program and reaps it in the background.
func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
