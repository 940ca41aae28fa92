package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/trimline-cli/clip"
	"github.com/user/trimline-cli/deps"
	"github.com/user/trimline-cli/logging"
	"github.com/user/trimline-cli/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local trim service",
	Long: `Run the local HTTP service that reports asset durations (probed with ffprobe)
and cuts committed trim ranges with ffmpeg in the background.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ffmpeg, _ := cmd.Flags().GetString("ffmpeg")
		ffprobe, _ := cmd.Flags().GetString("ffprobe")
		listen, _ := cmd.Flags().GetString("listen")
		if listen == "" {
			listen = cfg.Server.Listen
		}

		if err := errors.Join(
			deps.CheckBinary("ffmpeg", ffmpeg, deps.FfmpegInstallURL),
			deps.CheckBinary("ffprobe", ffprobe, deps.FfmpegInstallURL),
		); err != nil {
			return err
		}
		if err := os.MkdirAll(cfg.Server.OutputDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		database, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		proc := &clip.Processor{
			DB:        database,
			OutputDir: cfg.Server.OutputDir,
			FFmpeg:    ffmpeg,
			Logger:    logging.WithComponent("clip"),
		}
		proc.Start(ctx)

		srv := server.New(server.Config{
			DB:        database,
			Jobs:      proc,
			FFprobe:   ffprobe,
			RateLimit: cfg.Server.RateLimit,
			Logger:    logging.WithComponent("server"),
		})
		err = srv.ListenAndServe(ctx, listen)

		cancel()
		proc.Wait()
		return err
	},
}

func init() {
	serveCmd.Flags().String("listen", "", "listen address (default from config)")
	serveCmd.Flags().String("ffmpeg", "ffmpeg", "ffmpeg binary")
	serveCmd.Flags().String("ffprobe", "ffprobe", "ffprobe binary")
	rootCmd.AddCommand(serveCmd)
}
