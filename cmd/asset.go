package cmd

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/user/trimline-cli/db"
	"github.com/user/trimline-cli/pkg/timeutil"
	"github.com/user/trimline-cli/tui/forms"
)

var assetCmd = &cobra.Command{
	Use:   "asset",
	Short: "Manage video assets",
	Long:  `Register, list, and remove the video files trim ranges are cut from.`,
}

var assetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all assets",
	Long:  `Display all registered assets with their cached duration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		assets, err := db.SelectAssets(database)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTitle\tDuration\tPath")
		fmt.Fprintln(w, "--\t-----\t--------\t----")
		for _, a := range assets {
			duration := "?"
			if a.Duration != nil {
				duration = timeutil.FormatClock(*a.Duration)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.ID, a.Title, duration, a.Path)
		}
		w.Flush()

		if len(assets) == 0 {
			fmt.Println("\nNo assets found.")
		} else {
			fmt.Printf("\n%d asset(s) found.\n", len(assets))
		}
		return nil
	},
}

var assetAddCmd = &cobra.Command{
	Use:   "add [video-file]",
	Short: "Register a video file",
	Long:  `Register a video file as an asset. Without arguments an interactive form is shown.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")
		title, _ := cmd.Flags().GetString("title")

		var path string
		if len(args) == 1 {
			path = args[0]
		} else {
			var result forms.AssetFormResult
			if err := forms.NewAssetForm(&result).Run(); err != nil {
				return err
			}
			path, title = result.Path, result.Title
		}

		database, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		asset, err := registerAsset(database, path, id, title)
		if err != nil {
			return err
		}
		fmt.Printf("Asset %s added: %s\n", asset.ID, asset.Title)
		return nil
	},
}

var assetRmCmd = &cobra.Command{
	Use:   "rm <asset-id>",
	Short: "Remove an asset",
	Long:  `Remove an asset and its trim job history. Cut files on disk are kept.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		if err := db.DeleteAsset(database, args[0]); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return fmt.Errorf("asset not found: %s", args[0])
			}
			return err
		}
		fmt.Printf("Asset %s removed.\n", args[0])
		return nil
	},
}

// registerAsset stores path as an asset. An empty id gets a fresh UUID and an
// empty title defaults to the file name without extension.
func registerAsset(database *sql.DB, path, id, title string) (*db.Asset, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	info, err := os.Stat(absPath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("video file not found: %s", absPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to access video file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a video file: %s", absPath)
	}

	if id == "" {
		id = uuid.NewString()
	}
	if title == "" {
		base := filepath.Base(absPath)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	asset := db.Asset{ID: id, Path: absPath, Title: title, Filesize: info.Size()}
	if err := db.InsertAsset(database, asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

// findAsset looks an asset up by ID, or by file path when arg names an existing
// file. Unregistered files are registered on the fly.
func findAsset(database *sql.DB, arg string) (*db.Asset, error) {
	a, err := db.SelectAssetByID(database, arg)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}

	if _, statErr := os.Stat(arg); statErr != nil {
		return nil, fmt.Errorf("no asset or video file named %q", arg)
	}
	absPath, err := filepath.Abs(arg)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	assets, err := db.SelectAssets(database)
	if err != nil {
		return nil, err
	}
	for i := range assets {
		if assets[i].Path == absPath {
			return &assets[i], nil
		}
	}
	return registerAsset(database, absPath, "", "")
}

func init() {
	assetAddCmd.Flags().String("id", "", "asset ID (default: a new UUID)")
	assetAddCmd.Flags().String("title", "", "display title (default: file name)")

	assetCmd.AddCommand(assetListCmd)
	assetCmd.AddCommand(assetAddCmd)
	assetCmd.AddCommand(assetRmCmd)
	rootCmd.AddCommand(assetCmd)
}
