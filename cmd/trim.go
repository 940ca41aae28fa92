package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/trimline-cli/api"
	"github.com/user/trimline-cli/db"
	"github.com/user/trimline-cli/pkg/timeutil"
	"github.com/user/trimline-cli/trim"
	"github.com/user/trimline-cli/tui/forms"
)

const jobPollInterval = time.Second

var trimCmd = &cobra.Command{
	Use:   "trim",
	Short: "Commit and inspect trim jobs",
	Long:  `Queue cuts of an asset and follow the trim jobs run by the trim service.`,
}

var trimListCmd = &cobra.Command{
	Use:   "list <asset-id | video-file>",
	Short: "List trim jobs of an asset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		asset, err := findAsset(database, args[0])
		if err != nil {
			return err
		}
		jobs, err := db.SelectTrimJobsByAsset(database, asset.ID)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Job\tIn\tOut\tStatus\tOutput")
		fmt.Fprintln(w, "---\t--\t---\t------\t------")
		for _, j := range jobs {
			out := j.OutputPath
			if j.Status == db.StatusError {
				out = j.Log
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				j.ID, timeutil.FormatTime(j.Start), timeutil.FormatTime(j.End), j.Status, out)
		}
		w.Flush()

		if len(jobs) == 0 {
			fmt.Println("\nNo trim jobs found.")
		} else {
			fmt.Printf("\n%d trim job(s) found.\n", len(jobs))
		}
		return nil
	},
}

var trimStatusCmd = &cobra.Command{
	Use:   "status <job-id>",
	Short: "Show a trim job's status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wait, _ := cmd.Flags().GetBool("wait")
		client := api.NewClient(cfg.Server.BaseURL, cfg.Resolver.Timeout)

		job, err := followJob(cmd.Context(), client, args[0], wait)
		if err != nil {
			return err
		}
		printJob(job)
		return nil
	},
}

var trimCommitCmd = &cobra.Command{
	Use:   "commit <asset-id | video-file>",
	Short: "Queue a cut of an asset",
	Long: `Queue a cut of [--start, --end] from an asset with the trim service. Without
--start and --end an interactive form asks for them.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		startStr, _ := cmd.Flags().GetString("start")
		endStr, _ := cmd.Flags().GetString("end")
		yes, _ := cmd.Flags().GetBool("yes")
		wait, _ := cmd.Flags().GetBool("wait")

		database, err := openDB()
		if err != nil {
			return err
		}
		asset, err := findAsset(database, args[0])
		database.Close()
		if err != nil {
			return err
		}

		var duration float64
		if asset.Duration != nil {
			duration = *asset.Duration
		}

		form := forms.TrimFormResult{Start: startStr, End: endStr}
		if startStr == "" || endStr == "" {
			if err := forms.NewTrimForm(asset.Title, duration, &form).Run(); err != nil {
				return err
			}
		}
		rng, err := form.Range()
		if err != nil {
			return err
		}
		if duration > 0 && rng.End > duration {
			return fmt.Errorf("out point %s is past the end (%s)", timeutil.FormatTime(rng.End), timeutil.FormatTime(duration))
		}

		if !yes {
			confirm := true
			if err := forms.NewConfirmCommitForm(asset.Title, rng.Start, rng.End, &confirm).Run(); err != nil {
				return err
			}
			if !confirm {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		client := api.NewClient(cfg.Server.BaseURL, cfg.Resolver.Timeout)
		accepted, err := commitRange(cmd.Context(), client, asset.ID, rng)
		if err != nil {
			return err
		}
		fmt.Printf("Trim %s queued as job %s\n", rng, accepted.JobID)

		if !wait {
			return nil
		}
		job, err := followJob(cmd.Context(), client, accepted.JobID, true)
		if err != nil {
			return err
		}
		printJob(job)
		return nil
	},
}

func commitRange(ctx context.Context, client *api.Client, assetID string, rng trim.Range) (*api.TrimAccepted, error) {
	accepted, err := client.CommitTrim(ctx, assetID, rng.Start, rng.End)
	if err != nil {
		return nil, fmt.Errorf("failed to commit trim: %w", err)
	}
	return accepted, nil
}

// followJob fetches a job, polling until it finishes when wait is set.
func followJob(ctx context.Context, client *api.Client, jobID string, wait bool) (*api.TrimJob, error) {
	ticker := time.NewTicker(jobPollInterval)
	defer ticker.Stop()

	for {
		job, err := client.TrimStatus(ctx, jobID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch trim job: %w", err)
		}
		if !wait || job.Status == db.StatusCompleted || job.Status == db.StatusError {
			return job, nil
		}
		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-ticker.C:
		}
	}
}

func printJob(job *api.TrimJob) {
	fmt.Printf("Job:     %s\n", job.JobID)
	fmt.Printf("Asset:   %s\n", job.AssetID)
	fmt.Printf("Range:   %s → %s\n", timeutil.FormatTime(job.Start), timeutil.FormatTime(job.End))
	fmt.Printf("Status:  %s\n", job.Status)
	if job.OutputPath != "" {
		fmt.Printf("Output:  %s\n", job.OutputPath)
	}
	if job.Error != "" {
		fmt.Printf("Error:   %s\n", job.Error)
	}
}

func init() {
	trimCommitCmd.Flags().String("start", "", "in point (SS, MM:SS or H:MM:SS)")
	trimCommitCmd.Flags().String("end", "", "out point (SS, MM:SS or H:MM:SS)")
	trimCommitCmd.Flags().BoolP("yes", "y", false, "skip the confirmation")
	trimCommitCmd.Flags().Bool("wait", false, "wait for the cut to finish")
	trimStatusCmd.Flags().Bool("wait", false, "poll until the job finishes")

	trimCmd.AddCommand(trimListCmd)
	trimCmd.AddCommand(trimStatusCmd)
	trimCmd.AddCommand(trimCommitCmd)
	rootCmd.AddCommand(trimCmd)
}
