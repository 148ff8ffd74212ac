package media

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pelletier/go-toml/v2"
)

//go:embed viewers.toml
var viewersTOML []byte

// ViewerDefinition defines how a viewer program is invoked.
type ViewerDefinition struct {
	Description string   `toml:"description"`
	Platforms   []string `toml:"platforms"`
	// Command is the executable when it differs from the viewer name,
	// e.g. "start" runs through "cmd".
	Command string      `toml:"command,omitempty"`
	Image   *KindConfig `toml:"image,omitempty"`
	Web     *KindConfig `toml:"web,omitempty"`
}

type KindConfig struct {
	Args []string `toml:"args,omitempty"`
}

type viewersFile struct {
	Viewers map[string]ViewerDefinition `toml:"viewers"`
}

// ViewerRegistry maps viewer names to their definitions.
type ViewerRegistry struct {
	viewers map[string]ViewerDefinition
	goos    string
}

// NewViewerRegistry loads the built-in definitions and merges the user's
// viewers.toml when one exists.
func NewViewerRegistry() (*ViewerRegistry, error) {
	r, err := parseViewers(viewersTOML)
	if err != nil {
		return nil, err
	}
	if home, err := os.UserHomeDir(); err == nil {
		_ = r.MergeFile(filepath.Join(home, ".config", "cinematch", "viewers.toml"))
	}
	return r, nil
}

func parseViewers(data []byte) (*ViewerRegistry, error) {
	var f viewersFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing viewers.toml: %w", err)
	}
	if f.Viewers == nil {
		f.Viewers = make(map[string]ViewerDefinition)
	}
	return &ViewerRegistry{viewers: f.Viewers, goos: runtime.GOOS}, nil
}

// MergeFile overrides definitions with those from path. A missing file is
// not an error.
func (r *ViewerRegistry) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	user, err := parseViewers(data)
	if err != nil {
		return err
	}
	for name, def := range user.viewers {
		r.viewers[name] = def
	}
	return nil
}

// Command builds the invocation of viewer for a URL of the given kind.
// Unknown viewers are run as "<name> <url>".
func (r *ViewerRegistry) Command(viewer string, kind Kind, url string) (string, []string, error) {
	def, ok := r.viewers[viewer]
	if !ok {
		return viewer, []string{url}, nil
	}

	if !contains(def.Platforms, r.goos) {
		return "", nil, fmt.Errorf("%s not supported on %s", viewer, r.goos)
	}

	var kc *KindConfig
	switch kind {
	case KindImage:
		kc = def.Image
	case KindWeb:
		kc = def.Web
	}
	if kc == nil {
		return "", nil, fmt.Errorf("%s cannot open %s", viewer, kind)
	}

	name := viewer
	if def.Command != "" {
		name = def.Command
	}
	args := append(append([]string{}, kc.Args...), url)
	return name, args, nil
}

// Supports reports whether viewer can open kind on this platform. Viewers
// without a definition are assumed to handle anything.
func (r *ViewerRegistry) Supports(viewer string, kind Kind) bool {
	def, ok := r.viewers[viewer]
	if !ok {
		return true
	}
	if !contains(def.Platforms, r.goos) {
		return false
	}
	switch kind {
	case KindImage:
		return def.Image != nil
	case KindWeb:
		return def.Web != nil
	default:
		return false
	}
}

// lookupExecutable reports whether viewer's program is installed.
func (r *ViewerRegistry) lookupExecutable(viewer string, lookPath func(string) (string, error)) bool {
	name := viewer
	if def, ok := r.viewers[viewer]; ok && def.Command != "" {
		name = def.Command
	}
	_, err := lookPath(name)
	return err == nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
