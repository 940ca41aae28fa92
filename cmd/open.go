package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/trimline-cli/api"
	"github.com/user/trimline-cli/logging"
	"github.com/user/trimline-cli/mpv"
	"github.com/user/trimline-cli/resolver"
	"github.com/user/trimline-cli/tui"
)

const mpvStartTimeout = 5 * time.Second

var openCmd = &cobra.Command{
	Use:   "open <asset-id | video-file>",
	Short: "Open an asset in mpv and pick a trim range",
	Long: `Open an asset (or a video file, registering it on the fly) in mpv and start
the trim timeline. Drag the handles or use the keyboard to select a range, then
press s to queue the cut with the trim service.`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{"interactive": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDB()
		if err != nil {
			return err
		}
		asset, err := findAsset(database, args[0])
		database.Close()
		if err != nil {
			return err
		}

		logger := logging.WithComponent("open")
		fmt.Printf("Opening video: %s\n", asset.Title)
		process, err := mpv.LaunchMpv(asset.Path, mpv.LaunchOptions{
			Binary:      cfg.Player.Binary,
			SocketPath:  cfg.Player.SocketPath,
			StartPaused: true,
		})
		if err != nil {
			return fmt.Errorf("failed to launch mpv: %w", err)
		}

		client := mpv.NewClient(cfg.Player.SocketPath)
		ctx, cancel := context.WithTimeout(cmd.Context(), mpvStartTimeout)
		err = mpv.WaitForSocket(ctx, client)
		cancel()
		if err != nil {
			if process.Process != nil {
				_ = process.Process.Kill()
			}
			return fmt.Errorf("failed to connect to mpv: %w", err)
		}
		defer func() {
			_ = client.Quit()
			_ = client.Close()
			if err := process.Wait(); err != nil {
				logger.Debug().Err(err).Msg("mpv exited")
			}
		}()

		tuiLogger := logging.WithComponent("tui")
		return tui.Run(tui.Options{
			AssetID:   asset.ID,
			Title:     asset.Title,
			Player:    mpv.NewPlayer(client),
			Resolver:  resolver.FromConfig(cfg.Resolver, cfg.Timeline.PlaceholderDuration),
			Committer: api.NewClient(cfg.Server.BaseURL, cfg.Resolver.Timeout),
			Timeline:  cfg.Timeline,
			Logger:    &tuiLogger,
		})
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
}
