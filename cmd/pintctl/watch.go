package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/veritaxlabs/pintae_backend/config"
	"github.com/veritaxlabs/pintae_backend/ingest"
	"github.com/veritaxlabs/pintae_backend/models"
	"github.com/veritaxlabs/pintae_backend/utils"
	"github.com/veritaxlabs/pintae_backend/workflow"
)

var (
	watchDirection string
	watchProfile   []string
	watchDebounce  time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <dataset-dir>",
	Short: "Re-validate a dataset directory whenever its CSV files change",
	Long: `Watch validates the dataset once, then re-runs validation every time one
of the CSV files in the directory is written. Editors fire several filesystem
events per save, so runs are debounced.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchDirection, "direction", "d", "AR", "transaction direction (AR or AP)")
	watchCmd.Flags().StringSliceVar(&watchProfile, "profile-trn", nil, "organization TRN for the profile check, repeatable")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "settle time before re-running after a change")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	direction, err := models.ParseDirection(watchDirection)
	if err != nil {
		return err
	}

	var profile *models.OrganizationProfile
	if len(watchProfile) > 0 {
		profile = &models.OrganizationProfile{OurEntityTRNs: utils.UniqueSlice(watchProfile)}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	logger := config.GetLogger()
	validateOnce(dir, direction, profile, logger)

	timer := time.NewTimer(watchDebounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	fmt.Printf("watching %s (ctrl-c to stop)\n", dir)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Write | fsnotify.Create | fsnotify.Rename) {
				continue
			}
			if !strings.HasSuffix(event.Name, ".csv") {
				continue
			}
			if pending {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
			}
			pending = true
			timer.Reset(watchDebounce)

		case <-timer.C:
			if pending {
				pending = false
				validateOnce(dir, direction, profile, logger)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.WithFields(logrus.Fields{"dir": dir}).Warn("watch error: " + err.Error())

		case <-sigCtx.Done():
			return nil
		}
	}
}

// validateOnce runs one validation pass and prints the outcome. Load and run
// failures are reported and swallowed so the watch loop keeps going.
func validateOnce(dir string, direction models.Direction, profile *models.OrganizationProfile, logger *logrus.Logger) {
	ds, err := ingest.LoadDataset(dir)
	if err != nil {
		logger.WithFields(logrus.Fields{"dir": dir}).Warn("dataset not loadable: " + err.Error())
		return
	}

	report, err := workflow.ExecuteCheckRun(workflow.RunRequest{
		Direction: direction,
		Buyers:    ds.Buyers,
		Headers:   ds.Headers,
		Lines:     ds.Lines,
		Profile:   profile,
	})
	if err != nil {
		logger.WithFields(logrus.Fields{"dir": dir}).Warn("validation failed: " + err.Error())
		return
	}

	fmt.Printf("[%s] invoices=%d exceptions=%d score=%d\n",
		time.Now().Format("15:04:05"), report.Run.TotalInvoices,
		report.Run.TotalExceptions, report.Run.Score)
	for _, ex := range report.Exceptions {
		fmt.Printf("  [%s] %s  invoice=%s  %s\n", ex.Severity, ex.RuleId, ex.InvoiceId, ex.Message)
	}
}
