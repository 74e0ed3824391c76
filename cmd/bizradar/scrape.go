package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bizradar/audit"
	"bizradar/automation"
	"bizradar/geocode"
	"bizradar/jobs"
	"bizradar/models"
	"bizradar/storage"
	"bizradar/utils"
)

var (
	scrapeLocation string
	scrapeLat      float64
	scrapeLng      float64
	scrapeRadius   int
	scrapeMax      int
	scrapeOutput   string
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <business-type>",
	Short: "Run one analysis job to completion and write the results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		allocCtx, cancelAlloc := utils.NewAllocator(context.Background(), cfg)
		defer cancelAlloc()

		artifacts, err := storage.NewDirArtifactStore(cfg.ScreenshotDir)
		if err != nil {
			return err
		}

		browser := automation.NewChromeBrowser(allocCtx)
		geocoder := geocode.NewClient(cfg.GeocoderBaseURL, cfg.GeocoderUserAgent, cfg.GeocoderEmail, log)
		auditor := audit.New(artifacts, cfg.AuditTimeout, cfg.VerifyEmailMX, log)

		store := jobs.NewStore()
		orchestrator := jobs.NewOrchestrator(store, browser, geocoder, auditor, log, jobs.Options{
			DefaultMaxResults: cfg.DefaultMaxResults,
			MaxConcurrentJobs: cfg.MaxConcurrentJobs,
			NavTimeout:        cfg.NavTimeout,
			PanelTimeout:      cfg.PanelTimeout,
			GlobalTimeout:     cfg.GlobalTimeout,
		})

		jobID, err := orchestrator.Submit(models.SubmitRequest{
			BusinessType: args[0],
			Location:     scrapeLocation,
			Options: models.SubmitOptions{
				MaxResults: scrapeMax,
				Lat:        scrapeLat,
				Lng:        scrapeLng,
				Radius:     scrapeRadius,
			},
		})
		if err != nil {
			return err
		}
		log.Info("job started", "job", jobID)

		job := waitForJob(orchestrator, jobID)
		if job.Status == models.StatusFailed {
			return fmt.Errorf("job failed: %s", job.Error)
		}

		written, err := utils.WriteJSON(scrapeOutput, job.Results)
		if err != nil {
			return fmt.Errorf("write results: %w", err)
		}
		log.Info("results written", "file", scrapeOutput, "records", written)

		if cfg.ArchiveEnabled() {
			pg, err := storage.NewPostgresStore(cfg)
			if err != nil {
				return fmt.Errorf("connect archive: %w", err)
			}
			defer pg.Close()

			saveCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			saved, err := pg.SaveRecords(saveCtx, jobID, job.Results)
			if err != nil {
				return fmt.Errorf("archive results: %w", err)
			}
			log.Info("results archived", "rows", saved)
		}

		printStats(utils.BuildSummaryStats(job.Results))
		return nil
	},
}

func init() {
	scrapeCmd.Flags().StringVarP(&scrapeLocation, "location", "l", "", "free-text location, e.g. \"Chicago\"")
	scrapeCmd.Flags().Float64Var(&scrapeLat, "lat", 0, "map center latitude")
	scrapeCmd.Flags().Float64Var(&scrapeLng, "lng", 0, "map center longitude")
	scrapeCmd.Flags().IntVar(&scrapeRadius, "radius", 0, "search radius in meters around the center")
	scrapeCmd.Flags().IntVarP(&scrapeMax, "max", "m", 0, "maximum businesses to analyze")
	scrapeCmd.Flags().StringVarP(&scrapeOutput, "output", "o", "results.json", "output JSON file")
}

func waitForJob(orchestrator *jobs.Orchestrator, jobID string) models.Job {
	for {
		job, ok := orchestrator.Status(jobID)
		if !ok || job.Status.Terminal() {
			return job
		}
		time.Sleep(2 * time.Second)
	}
}

func printStats(stats utils.SummaryStats) {
	fmt.Printf("\nAnalyzed %d businesses\n", stats.TotalBusinesses)
	if stats.TotalBusinesses == 0 {
		return
	}
	fmt.Printf("  with website: %d, with phone: %d, with email: %d\n",
		stats.WithWebsite, stats.WithPhone, stats.WithEmail)
	fmt.Printf("  avg completeness: %.1f/10, avg site quality: %.1f/10\n",
		stats.AverageCompleteness, stats.AverageQuality)
	if len(stats.TopQualitySites) > 0 {
		fmt.Println("  top sites:")
		for _, record := range stats.TopQualitySites {
			fmt.Printf("    %-30s quality %d/10  %s\n",
				record.Name, record.Audit.QualityScore, record.Website)
		}
	}
}
