package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/trimline-cli/pkg/timeutil"
	"github.com/user/trimline-cli/resolver"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <asset-id>",
	Short: "Look up an asset's duration",
	Long:  `Run the configured duration sources in order and print the first duration found.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := resolver.FromConfig(cfg.Resolver, cfg.Timeline.PlaceholderDuration)
		fmt.Printf("Sources: %s\n", strings.Join(r.Sources(), " → "))

		res := r.Resolve(cmd.Context(), args[0])
		if res.Placeholder {
			fmt.Printf("No source reported a duration; placeholder %s\n", timeutil.FormatTime(res.Duration))
			return nil
		}
		fmt.Printf("Duration: %s (%.3fs, from %s)\n", timeutil.FormatTime(res.Duration), res.Duration, res.Source)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
