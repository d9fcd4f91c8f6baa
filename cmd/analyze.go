package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"sentry-console/internal/client"
	"sentry-console/pkg/models"
)

// Variables to hold flag values
var (
	analyzeFile    string
	analyzeMode    string
	analyzeWait    bool
	analyzeTimeout time.Duration
)

const jobPollInterval = 2 * time.Second

// Parent Command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run offline analysis on recorded video",
	Long:  `Upload a video to the pose or transformer pipeline and follow the job's progress.`,
}

// Upload Command
var analyzeUploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a video for offline analysis",
	Example: `  sentry-console analyze upload --file lobby.mp4 --mode transformer --wait
  sentry-console analyze upload --file yard.mp4 --mode pose`,
	Run: func(cmd *cobra.Command, args []string) {
		mode, err := models.ParseAnalysisMode(analyzeMode)
		exitOnErr("parsing mode", err)

		f, err := os.Open(analyzeFile)
		exitOnErr("opening video", err)
		defer f.Close()

		api, _ := getClient()
		// Uploads are bounded by --timeout, not the request timeout.
		ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
		defer cancel()
		api.HTTP.SetTimeout(analyzeTimeout)

		fmt.Printf("Uploading %s to the %s pipeline ...\n", analyzeFile, mode)
		ack, err := api.UploadVideo(ctx, mode, f, filepath.Base(analyzeFile))
		exitOnErr("uploading video", err)

		if ack.Message != "" {
			fmt.Println(ack.Message)
		} else {
			fmt.Println("Upload accepted.")
		}

		if !analyzeWait {
			return
		}

		job, err := waitForJob(ctx, api, mode)
		exitOnErr("waiting for job", err)
		if job.Status == models.JobError {
			fmt.Printf("Analysis of %s failed.\n", job.File)
			os.Exit(1)
		}
		fmt.Printf("Analysis complete. See 'sentry-console reports list'.\n")
	},
}

// waitForJob polls the job status until it reaches a terminal state.
func waitForJob(ctx context.Context, api *client.SentryClient, mode models.AnalysisMode) (*models.JobStatus, error) {
	ticker := time.NewTicker(jobPollInterval)
	defer ticker.Stop()

	for {
		job, err := api.GetJobStatus(ctx, mode)
		if err != nil && !client.IsTransient(err) {
			return nil, err
		}
		if err == nil {
			fmt.Printf("  %s %3.0f%%\n", job.Status, job.Progress)
			if job.Done() {
				return job, nil
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Status Command
var analyzeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the progress of the current analysis job",
	Run: func(cmd *cobra.Command, args []string) {
		mode, err := models.ParseAnalysisMode(analyzeMode)
		exitOnErr("parsing mode", err)

		api, s := getClient()
		ctx, cancel := requestContext(s)
		defer cancel()

		job, err := api.GetJobStatus(ctx, mode)
		exitOnErr("fetching job status", err)

		if jsonOutput {
			printJSON(job)
			return
		}

		file := job.File
		if file == "" {
			file = "-"
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "MODE\tSTATUS\tPROGRESS\tFILE")
		fmt.Fprintln(w, "----\t------\t--------\t----")
		fmt.Fprintf(w, "%s\t%s\t%.0f%%\t%s\n", mode, job.Status, job.Progress, file)
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.AddCommand(analyzeUploadCmd)
	analyzeCmd.AddCommand(analyzeStatusCmd)

	analyzeUploadCmd.Flags().StringVar(&analyzeFile, "file", "", "Video file to analyze")
	analyzeUploadCmd.Flags().BoolVar(&analyzeWait, "wait", false, "Wait for the job to finish")
	analyzeUploadCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 30*time.Minute, "Give up uploading and waiting after this long")
	_ = analyzeUploadCmd.MarkFlagRequired("file")

	for _, c := range []*cobra.Command{analyzeUploadCmd, analyzeStatusCmd} {
		c.Flags().StringVar(&analyzeMode, "mode", string(models.ModeTransformer), "Pipeline: pose or transformer")
	}
}
