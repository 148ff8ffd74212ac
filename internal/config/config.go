// Package config loads the client configuration from TOML, environment
// variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/pders01/cinematch/internal/splash"
	"github.com/pders01/cinematch/internal/validation"
)

// EnvPrefix prefixes every environment override, e.g. CINEMATCH_API_BASE_URL.
const EnvPrefix = "CINEMATCH"

type Config struct {
	API      APIConfig      `mapstructure:"api" toml:"api"`
	Database DatabaseConfig `mapstructure:"database" toml:"database"`
	Search   SearchConfig   `mapstructure:"search" toml:"search"`
	UI       UIConfig       `mapstructure:"ui" toml:"ui"`
	Media    MediaConfig    `mapstructure:"media" toml:"media"`
	Keys     KeyConfig      `mapstructure:"keys" toml:"keys"`
	Log      LogConfig      `mapstructure:"log" toml:"log"`
}

type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url" validate:"required"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
	UserAgent string        `mapstructure:"user_agent" validate:"required"`
}

type DatabaseConfig struct {
	Path        string        `mapstructure:"path" validate:"required"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gte=0"`
	SearchIndex string        `mapstructure:"search_index"`
}

type SearchConfig struct {
	DefaultThreshold float64  `mapstructure:"default_threshold" toml:"default_threshold" validate:"gte=0.1,lte=1,tenths"`
	SampleTitles     []string `mapstructure:"sample_titles" toml:"sample_titles" validate:"dive,notblank"`
	SuggestionLimit  int      `mapstructure:"suggestion_limit" toml:"suggestion_limit" validate:"gte=0,lte=20"`
	// RememberQueries adds typed titles to the suggestion corpus. Off by
	// default; only titles the backend returned are kept.
	RememberQueries bool `mapstructure:"remember_queries" toml:"remember_queries"`
}

type UIConfig struct {
	Colors      UIColors     `mapstructure:"colors"`
	LightColors UIColors     `mapstructure:"light_colors"`
	Splash      SplashConfig `mapstructure:"splash"`
	Card        CardConfig   `mapstructure:"card"`
}

type UIColors struct {
	Primary    string `mapstructure:"primary" toml:"primary" validate:"omitempty,hexcolor"`
	Secondary  string `mapstructure:"secondary" toml:"secondary" validate:"omitempty,hexcolor"`
	Accent     string `mapstructure:"accent" toml:"accent" validate:"omitempty,hexcolor"`
	Background string `mapstructure:"background" toml:"background" validate:"omitempty,hexcolor"`
	Surface    string `mapstructure:"surface" toml:"surface" validate:"omitempty,hexcolor"`
	Text       string `mapstructure:"text" toml:"text" validate:"omitempty,hexcolor"`
	Muted      string `mapstructure:"muted" toml:"muted" validate:"omitempty,hexcolor"`
	Error      string `mapstructure:"error" toml:"error" validate:"omitempty,hexcolor"`
	Success    string `mapstructure:"success" toml:"success" validate:"omitempty,hexcolor"`
	Warning    string `mapstructure:"warning" toml:"warning" validate:"omitempty,hexcolor"`
}

type SplashConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Duration  time.Duration `mapstructure:"duration" validate:"gte=0"`
	Tick      time.Duration `mapstructure:"tick" validate:"gte=0"`
	PostDelay time.Duration `mapstructure:"post_delay" validate:"gte=0"`
}

type CardConfig struct {
	TitleLength    int    `mapstructure:"title_length" toml:"title_length" validate:"gte=0"`
	OverviewLength int    `mapstructure:"overview_length" toml:"overview_length" validate:"gte=0"`
	MaxGenres      int    `mapstructure:"max_genres" toml:"max_genres" validate:"gte=0"`
	ImageSize      string `mapstructure:"image_size" toml:"image_size" validate:"oneof=w92 w154 w185 w342 w500 w780 original"`
}

type MediaConfig struct {
	Darwin        MediaViewers `mapstructure:"darwin" toml:"darwin"`
	Linux         MediaViewers `mapstructure:"linux" toml:"linux"`
	Windows       MediaViewers `mapstructure:"windows" toml:"windows"`
	DefaultOpener string       `mapstructure:"default_opener" toml:"default_opener"`
}

// MediaViewers lists candidate programs in order of preference.
type MediaViewers struct {
	Image []string `mapstructure:"image" toml:"image"`
	Web   []string `mapstructure:"web" toml:"web"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier" toml:"modifier" validate:"oneof=ctrl alt"`
	Bindings KeyBindings `mapstructure:"bindings" toml:"bindings"`
}

type KeyBindings struct {
	Quit       string `mapstructure:"quit" toml:"quit" validate:"required"`
	ToggleDark string `mapstructure:"toggle_dark" toml:"toggle_dark" validate:"required"`
	Open       string `mapstructure:"open" toml:"open" validate:"required"`
	Help       string `mapstructure:"help" toml:"help" validate:"required"`
	Back       string `mapstructure:"back" toml:"back" validate:"required"`
}

type LogConfig struct {
	Level string `mapstructure:"level" toml:"level" validate:"omitempty,oneof=debug info warn warning error off disabled"`
	File  string `mapstructure:"file" toml:"file"`
}

var defaultSampleTitles = []string{
	"The Godfather",
	"Inception",
	"The Matrix",
	"Pulp Fiction",
	"The Dark Knight",
	"Interstellar",
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		API: APIConfig{
			BaseURL:   "http://127.0.0.1:8000",
			Timeout:   30 * time.Second,
			UserAgent: "cinematch/1.0 (https://github.com/pders01/cinematch)",
		},
		Database: DatabaseConfig{
			Path:        filepath.Join(homeDir, ".cinematch.db"),
			Timeout:     1 * time.Second,
			SearchIndex: filepath.Join(homeDir, ".cinematch", "index.bleve"),
		},
		Search: SearchConfig{
			DefaultThreshold: 0.6,
			SampleTitles:     append([]string(nil), defaultSampleTitles...),
			SuggestionLimit:  5,
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:    "#60A5FA",
				Secondary:  "#A78BFA",
				Accent:     "#F472B6",
				Background: "#0F172A",
				Surface:    "#1E293B",
				Text:       "#F1F5F9",
				Muted:      "#94A3B8",
				Error:      "#F87171",
				Success:    "#4ADE80",
				Warning:    "#FACC15",
			},
			LightColors: UIColors{
				Primary:    "#2563EB",
				Secondary:  "#7C3AED",
				Accent:     "#DB2777",
				Background: "#F8FAFC",
				Surface:    "#FFFFFF",
				Text:       "#0F172A",
				Muted:      "#64748B",
				Error:      "#DC2626",
				Success:    "#16A34A",
				Warning:    "#CA8A04",
			},
			Splash: SplashConfig{
				Enabled:   true,
				Duration:  splash.DefaultDuration,
				Tick:      splash.DefaultTick,
				PostDelay: splash.DefaultPostDelay,
			},
			Card: CardConfig{
				TitleLength:    50,
				OverviewLength: 120,
				MaxGenres:      2,
				ImageSize:      "w500",
			},
		},
		Media: MediaConfig{
			Darwin: MediaViewers{
				Image: []string{"qlmanage", "open"},
				Web:   []string{"open"},
			},
			Linux: MediaViewers{
				Image: []string{"feh", "sxiv", "eog", "xdg-open"},
				Web:   []string{"xdg-open", "sensible-browser"},
			},
			Windows: MediaViewers{
				Image: []string{"start"},
				Web:   []string{"start"},
			},
			DefaultOpener: getDefaultOpener(),
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:       "q",
				ToggleDark: "t",
				Open:       "o",
				Help:       "?",
				Back:       "esc",
			},
		},
		Log: LogConfig{
			Level: "off",
		},
	}
}

// Default returns the built-in configuration without reading any file.
func Default() *Config {
	cfg := defaultConfig()
	expandPaths(cfg)
	return cfg
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

// DefaultPath is ~/.config/cinematch/config.toml.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "cinematch", "config.toml")
}

// setDefaults registers every leaf key so that partial config files and
// environment overrides merge with the built-in values.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.timeout", cfg.API.Timeout)
	v.SetDefault("api.user_agent", cfg.API.UserAgent)

	v.SetDefault("database.path", cfg.Database.Path)
	v.SetDefault("database.timeout", cfg.Database.Timeout)
	v.SetDefault("database.search_index", cfg.Database.SearchIndex)

	v.SetDefault("search.default_threshold", cfg.Search.DefaultThreshold)
	v.SetDefault("search.sample_titles", cfg.Search.SampleTitles)
	v.SetDefault("search.suggestion_limit", cfg.Search.SuggestionLimit)
	v.SetDefault("search.remember_queries", cfg.Search.RememberQueries)

	setColorDefaults(v, "ui.colors", cfg.UI.Colors)
	setColorDefaults(v, "ui.light_colors", cfg.UI.LightColors)

	v.SetDefault("ui.splash.enabled", cfg.UI.Splash.Enabled)
	v.SetDefault("ui.splash.duration", cfg.UI.Splash.Duration)
	v.SetDefault("ui.splash.tick", cfg.UI.Splash.Tick)
	v.SetDefault("ui.splash.post_delay", cfg.UI.Splash.PostDelay)

	v.SetDefault("ui.card.title_length", cfg.UI.Card.TitleLength)
	v.SetDefault("ui.card.overview_length", cfg.UI.Card.OverviewLength)
	v.SetDefault("ui.card.max_genres", cfg.UI.Card.MaxGenres)
	v.SetDefault("ui.card.image_size", cfg.UI.Card.ImageSize)

	for name, viewers := range map[string]MediaViewers{
		"darwin":  cfg.Media.Darwin,
		"linux":   cfg.Media.Linux,
		"windows": cfg.Media.Windows,
	} {
		v.SetDefault("media."+name+".image", viewers.Image)
		v.SetDefault("media."+name+".web", viewers.Web)
	}
	v.SetDefault("media.default_opener", cfg.Media.DefaultOpener)

	v.SetDefault("keys.modifier", cfg.Keys.Modifier)
	v.SetDefault("keys.bindings.quit", cfg.Keys.Bindings.Quit)
	v.SetDefault("keys.bindings.toggle_dark", cfg.Keys.Bindings.ToggleDark)
	v.SetDefault("keys.bindings.open", cfg.Keys.Bindings.Open)
	v.SetDefault("keys.bindings.help", cfg.Keys.Bindings.Help)
	v.SetDefault("keys.bindings.back", cfg.Keys.Bindings.Back)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)
}

func setColorDefaults(v *viper.Viper, prefix string, c UIColors) {
	v.SetDefault(prefix+".primary", c.Primary)
	v.SetDefault(prefix+".secondary", c.Secondary)
	v.SetDefault(prefix+".accent", c.Accent)
	v.SetDefault(prefix+".background", c.Background)
	v.SetDefault(prefix+".surface", c.Surface)
	v.SetDefault(prefix+".text", c.Text)
	v.SetDefault(prefix+".muted", c.Muted)
	v.SetDefault(prefix+".error", c.Error)
	v.SetDefault(prefix+".success", c.Success)
	v.SetDefault(prefix+".warning", c.Warning)
}

// Load reads configPath, or config.toml from ~/.config/cinematch and the
// working directory when configPath is empty. A missing default file is
// not an error; a missing explicit file is.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v, defaultConfig())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Dir(DefaultPath()))
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(&config)

	if err := Validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks field rules and normalises the API base URL in place.
func Validate(cfg *Config) error {
	if err := validation.ValidateStruct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	base, err := validation.NewEndpointValidator().ValidateAndNormalize(cfg.API.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid config: api.base_url: %w", err)
	}
	cfg.API.BaseURL = base
	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Database.SearchIndex = expandPath(cfg.Database.SearchIndex)
	cfg.Log.File = expandPath(cfg.Log.File)
}

// fileLayout is the on-disk shape. Durations are written as strings such
// as "30s" so the file stays hand-editable.
type fileLayout struct {
	API      map[string]any `toml:"api"`
	Database map[string]any `toml:"database"`
	Search   SearchConfig   `toml:"search"`
	UI       map[string]any `toml:"ui"`
	Media    MediaConfig    `toml:"media"`
	Keys     KeyConfig      `toml:"keys"`
	Log      LogConfig      `toml:"log"`
}

// Marshal renders cfg as TOML.
func Marshal(cfg *Config) ([]byte, error) {
	layout := fileLayout{
		API: map[string]any{
			"base_url":   cfg.API.BaseURL,
			"timeout":    cfg.API.Timeout.String(),
			"user_agent": cfg.API.UserAgent,
		},
		Database: map[string]any{
			"path":         cfg.Database.Path,
			"timeout":      cfg.Database.Timeout.String(),
			"search_index": cfg.Database.SearchIndex,
		},
		Search: cfg.Search,
		UI: map[string]any{
			"colors":       cfg.UI.Colors,
			"light_colors": cfg.UI.LightColors,
			"splash": map[string]any{
				"enabled":    cfg.UI.Splash.Enabled,
				"duration":   cfg.UI.Splash.Duration.String(),
				"tick":       cfg.UI.Splash.Tick.String(),
				"post_delay": cfg.UI.Splash.PostDelay.String(),
			},
			"card": cfg.UI.Card,
		},
		Media: cfg.Media,
		Keys:  cfg.Keys,
		Log:   cfg.Log,
	}

	data, err := toml.Marshal(layout)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return data, nil
}

func Save(config *Config, path string) error {
	data, err := Marshal(config)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
