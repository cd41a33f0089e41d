package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/valuehunter/hunter/internal/scheduler"
	"github.com/valuehunter/hunter/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage the job scheduler",
	Long: `Starts the scheduler daemon or manages its jobs.

Registered jobs:
  daily_valuation - full pipeline run, weekdays after the US close

Subcommands:
  start   - start the scheduler daemon
  list    - list registered jobs
  run     - run a job immediately

Example:
  go run ./cmd/hunter scheduler start
  go run ./cmd/hunter scheduler run daily_valuation`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler daemon",
		RunE:  runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run a job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func initScheduler() (*scheduler.Scheduler, *app, error) {
	app, err := buildApp()
	if err != nil {
		return nil, nil, err
	}

	sched := scheduler.New(app.log)
	if err := sched.AddJob(jobs.NewValuationJob(app.runner, app.cfg.Schedule, app.log)); err != nil {
		app.close()
		return nil, nil, fmt.Errorf("register jobs: %w", err)
	}

	return sched, app, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	sched, app, err := initScheduler()
	if err != nil {
		return err
	}
	defer app.close()

	sched.Start()

	fmt.Println("Scheduler started")
	fmt.Println("Registered jobs:")
	for _, jobName := range sched.Jobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, app, err := initScheduler()
	if err != nil {
		return err
	}
	defer app.close()

	fmt.Println("Registered jobs:")
	for _, jobName := range sched.Jobs() {
		fmt.Printf("  - %s\n", jobName)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	sched, app, err := initScheduler()
	if err != nil {
		return err
	}
	defer app.close()

	if err := sched.RunJob(jobName); err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	// RunJob is asynchronous; wait for the run to land in history
	// before exiting.
	fmt.Printf("Running job: %s\n", jobName)
	for {
		history, err := sched.History(jobName)
		if err != nil {
			return err
		}
		if result := history.Latest(); result != nil {
			if !result.Success {
				return fmt.Errorf("job %s failed: %s", jobName, result.Error)
			}
			fmt.Printf("Job %s completed in %s\n", jobName, result.Duration)
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
}
