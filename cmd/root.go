package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/trimline-cli/api"
	"github.com/user/trimline-cli/config"
	"github.com/user/trimline-cli/db"
	"github.com/user/trimline-cli/deps"
	"github.com/user/trimline-cli/logging"
)

var Version = "0.1.0"

var (
	configPath string
	logLevel   string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "trimline-cli",
	Short: "Select and cut trim ranges from video assets",
	Long: `trimline-cli is a terminal tool for picking a [start, end] range of a video
in mpv and queueing the cut with a local trim service.

Features:
  - Drag in/out handles and the playhead on a terminal timeline
  - Playback confined to the selected range
  - Duration discovery through configurable HTTP sources
  - A local HTTP service that probes assets and cuts with ffmpeg`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
}

// setup loads the configuration and initialises logging. Interactive commands
// log to the configured file so the terminal stays clean.
func setup(cmd *cobra.Command) error {
	path := configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return fmt.Errorf("failed to locate config: %w", err)
		}
		path = p
	}

	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.Log.Level = logLevel
	}
	cfg = loaded

	var out io.Writer = os.Stderr
	if cmd.Annotations["interactive"] == "true" && cfg.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := logging.OpenFile(cfg.Log.File)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
	}
	logging.Configure(logging.Config{Level: cfg.Log.Level, Output: out})
	return nil
}

// openDB opens the configured database, creating its directory.
func openDB() (*sql.DB, error) {
	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("trimline-cli version %s\n", Version)
	},
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check system dependencies",
	Long:  `Check that mpv, ffmpeg and ffprobe are installed, the database opens, and the trim service answers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Checking dependencies...")
		fmt.Println()

		allGood := true
		for _, check := range []struct {
			name, binary, url string
		}{
			{"mpv", cfg.Player.Binary, deps.MpvInstallURL},
			{"ffmpeg", "ffmpeg", deps.FfmpegInstallURL},
			{"ffprobe", "ffprobe", deps.FfmpegInstallURL},
		} {
			if err := deps.CheckBinary(check.name, check.binary, check.url); err != nil {
				fmt.Printf("✗ %s: NOT FOUND\n", check.name)
				fmt.Printf("  Install from: %s\n", check.url)
				allGood = false
			} else {
				fmt.Printf("✓ %s: OK\n", check.name)
			}
		}

		database, err := openDB()
		if err != nil {
			fmt.Printf("✗ database: %v\n", err)
			allGood = false
		} else {
			version, err := db.SchemaVersion(database)
			database.Close()
			if err != nil {
				fmt.Printf("✗ database: %v\n", err)
				allGood = false
			} else {
				fmt.Printf("✓ database: %s (schema %d)\n", cfg.Database.Path, version)
			}
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Second)
		defer cancel()
		if err := api.NewClient(cfg.Server.BaseURL, 3*time.Second).Health(ctx); err != nil {
			fmt.Printf("✗ trim service (%s): %v\n", cfg.Server.BaseURL, err)
			fmt.Println("  Start it with: trimline-cli serve")
			allGood = false
		} else {
			fmt.Printf("✓ trim service: %s\n", cfg.Server.BaseURL)
		}

		fmt.Println()
		if !allGood {
			return fmt.Errorf("some checks failed")
		}
		fmt.Println("All checks passed!")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default is the user config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(doctorCmd)
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
