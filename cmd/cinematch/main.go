package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/cinematch/internal/config"
	"github.com/pders01/cinematch/internal/debuglog"
	"github.com/pders01/cinematch/internal/format"
	"github.com/pders01/cinematch/internal/recommend"
	"github.com/pders01/cinematch/internal/storage"
	"github.com/pders01/cinematch/internal/tui"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	configPath string
	dbPath     string
	apiURL     string
	threshold  float64
	quiet      bool
	noSplash   bool
	logLevel   string
	logFile    string
)

var rootCmd = &cobra.Command{
	Use:           tui.AppName,
	Short:         tui.Tagline,
	Long:          "CineMatch finds movies similar to one you love, straight from the terminal.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", tui.AppName, Version)
		fmt.Fprintln(out, tui.Tagline)
		fmt.Fprintln(out, "github.com/pders01/cinematch")
	},
}

var configGenCmd = &cobra.Command{
	Use:   "generate-config",
	Short: "Write the default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.DefaultPath()
		}
		if err := config.GenerateDefaultConfig(path); err != nil {
			return fmt.Errorf("failed to generate config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Generated default configuration at: %s\n", path)
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as TOML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		data, err := config.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend <title>",
	Short: "Print recommendations for a title without starting the UI",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		client, err := recommend.NewClient(recommend.Options{
			BaseURL:   cfg.API.BaseURL,
			UserAgent: cfg.API.UserAgent,
			Timeout:   cfg.API.Timeout,
		})
		if err != nil {
			return err
		}

		req := recommend.NewRequest(strings.Join(args, " "), cfg.Search.DefaultThreshold)
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.API.Timeout)
		defer cancel()

		resp, err := client.Recommend(ctx, req)
		if err != nil {
			debuglog.Errorf("recommend %q: %v", req.Title, err)
			return errors.New(recommend.ErrorMessage(err))
		}
		printRecommendations(cmd.OutOrStdout(), resp, cfg.UI.Card)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the titles remembered for suggestions",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.GetAllTitles()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No remembered titles")
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(out, "%4d  %s  (%s)\n", e.Count, e.Title, e.Source)
		}
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget every remembered title",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.ClearTitles(); err != nil {
			return fmt.Errorf("clearing history: %w", err)
		}
		if err := dropSearchIndex(cfg); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Cleared suggestion history")
		return nil
	},
}

var historyForgetCmd = &cobra.Command{
	Use:   "forget <title>",
	Short: "Forget one remembered title",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		title := strings.Join(args, " ")
		entry, err := store.GetTitle(title)
		if err != nil {
			return fmt.Errorf("%q is not in the history", title)
		}
		if err := store.DeleteTitle(entry.Title); err != nil {
			return fmt.Errorf("forgetting %q: %w", entry.Title, err)
		}
		if err := dropSearchIndex(cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Forgot %q\n", entry.Title)
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to configuration file")
	flags.StringVar(&dbPath, "db", "", "Path to database file (overrides config)")
	flags.StringVar(&apiURL, "api-url", "", "Recommendation service base URL (overrides config)")
	flags.Float64Var(&threshold, "threshold", 0, "Initial similarity threshold between 0.1 and 1.0")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error or off")
	flags.StringVar(&logFile, "log-file", "", "Log file path")

	rootCmd.Flags().BoolVar(&quiet, "quiet", false, "Skip startup banner")
	rootCmd.Flags().BoolVar(&noSplash, "no-splash", false, "Skip the intro animation")

	historyCmd.AddCommand(historyClearCmd, historyForgetCmd)
	rootCmd.AddCommand(versionCmd, configGenCmd, configCmd, recommendCmd, historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies flag overrides on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	if flags.Changed("threshold") {
		cfg.Search.DefaultThreshold = tui.ThresholdFromFloat(threshold).Float()
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}
	if noSplash {
		cfg.UI.Splash.Enabled = false
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.File); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newStore(cfg *config.Config) (*storage.Store, error) {
	store, err := storage.NewStoreWithTimeout(cfg.Database.Path, cfg.Database.Timeout)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", cfg.Database.Path, err)
	}
	if v, err := store.SchemaVersion(); err != nil {
		debuglog.Warnf("reading schema version: %v", err)
	} else {
		debuglog.Infof("opened %s (schema v%d)", store.Path(), v)
	}
	return store, nil
}

func openStore(cmd *cobra.Command) (*config.Config, *storage.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	store, err := newStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, store, nil
}

// dropSearchIndex removes the on-disk index; the next start rebuilds it
// from the store, so removed titles stop being suggested.
func dropSearchIndex(cfg *config.Config) error {
	if cfg.Database.SearchIndex == "" {
		return nil
	}
	if err := os.RemoveAll(cfg.Database.SearchIndex); err != nil {
		return fmt.Errorf("removing search index: %w", err)
	}
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer debuglog.Close()

	if !quiet {
		tui.PrintBanner(Version)
	}

	store, err := newStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	app, err := tui.NewApp(store, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	debuglog.Infof("starting %s %s against %s", tui.AppName, Version, cfg.API.BaseURL)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func printRecommendations(w io.Writer, resp *recommend.Response, cc config.CardConfig) {
	if resp.CorrectedTitle != "" {
		fmt.Fprintln(w, tui.MsgShowingResultsFor(resp.CorrectedTitle))
		fmt.Fprintln(w)
	}
	if len(resp.Recommended) == 0 {
		fmt.Fprintln(w, tui.MsgNoResults)
		fmt.Fprintln(w, tui.MsgNoResultsHint)
		return
	}

	for i, m := range resp.Recommended {
		line := fmt.Sprintf("%2d. %s", i+1, format.Truncate(m.Title, cc.TitleLength))
		if year := format.FormatReleaseYear(m.ReleaseYear); year != "" {
			line += " (" + year + ")"
		}
		if m.HasRating() {
			line += fmt.Sprintf("  ★ %.1f", m.VoteAverage)
		}
		fmt.Fprintln(w, line)
		if genres := m.GenreList(cc.MaxGenres); len(genres) > 0 {
			fmt.Fprintf(w, "    %s\n", strings.Join(genres, " · "))
		}
		if m.Overview != "" {
			fmt.Fprintf(w, "    %s\n", format.Truncate(m.Overview, cc.OverviewLength))
		}
	}
}
