package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dadoscraper/pkg/config"
	"dadoscraper/pkg/logger"
	"dadoscraper/pkg/scraper"
	"dadoscraper/pkg/ui"
)

var (
	// Scrape command flags
	pageSize   int
	concurrent int
	timeout    int
	outputDir  string
	retries    int
	retryDelay int
	rateLimit  int
	licenses   []string
)

// summaryRounding keeps the elapsed time in the report readable
const summaryRounding = 100 * time.Millisecond

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Download the catalog, one license partition at a time",
	Long: `Download all catalog pages for the configured license filters.

Each partition is probed for its record count, split into pages, and
fetched concurrently. Raw page responses land in the output directory as
{start}-{end}.json, named after the global record range of the page.

A partition whose count cannot be determined is skipped for this run;
partitions are independent, so re-running picks it up again.`,
	Example: `  # Download with default settings
  dadoscraper scrape

  # Larger pages, fewer parallel requests
  dadoscraper scrape --page-size 1000 --concurrency 4

  # Only two license partitions, custom output directory
  dadoscraper scrape --licenses cc-by,cc-zero --output ./catalog

  # More patient retry budget
  dadoscraper scrape --retries 5 --retry-delay 10`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runScrape(cmd)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().IntVar(&pageSize, "page-size", 500, "records per page request")
	scrapeCmd.Flags().IntVar(&concurrent, "concurrency", 10, "maximum parallel page requests")
	scrapeCmd.Flags().IntVar(&timeout, "timeout", 90, "request timeout in seconds")
	scrapeCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for page files (default: scraped_data)")
	scrapeCmd.Flags().IntVar(&retries, "retries", 3, "attempts per page before giving up")
	scrapeCmd.Flags().IntVar(&retryDelay, "retry-delay", 5, "seconds to wait between failed attempts")
	scrapeCmd.Flags().IntVar(&rateLimit, "rate-limit", 0, "requests per minute (0 disables pacing)")
	scrapeCmd.Flags().StringSliceVar(&licenses, "licenses", nil, "license filters to scrape, in order (default: cc-by,cc-zero,odc-odbl,odc-pddl)")
}

func runScrape(cmd *cobra.Command) {
	// Build flags map from command line, only including flags the user set
	flags := make(map[string]interface{})
	if cmd.Flags().Changed("page-size") {
		flags["page-size"] = pageSize
	}
	if cmd.Flags().Changed("concurrency") {
		flags["concurrency"] = concurrent
	}
	if cmd.Flags().Changed("timeout") {
		flags["timeout"] = timeout
	}
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if cmd.Flags().Changed("retries") {
		flags["retries"] = retries
	}
	if cmd.Flags().Changed("retry-delay") {
		flags["retry-delay"] = retryDelay
	}
	if cmd.Flags().Changed("rate-limit") {
		flags["rate-limit"] = rateLimit
	}
	if len(licenses) > 0 {
		flags["licenses"] = licenses
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	// Load configuration
	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}
	logger.WithField("version", version).Info("dadoscraper starting")

	ui.PrintInfo("Output directory", cfg.Output.Directory)
	ui.PrintInfo("License partitions", strings.Join(labelLicenses(cfg.Scrape.Licenses), ", "))

	// Interrupts stop new waves; in-flight page attempts finish naturally
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := scraper.New(cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize scraper")
		ui.PrintError("Failed to initialize scraper", err.Error())
		os.Exit(1)
	}

	summary, err := s.Run(ctx)
	if err != nil {
		logger.WithError(err).Error("Scrape run failed")
		ui.PrintError("SCRAPE RUN FAILED", err.Error())
		os.Exit(1)
	}

	printSummary(summary)

	if summary.Interrupted {
		ui.PrintWarning("Run interrupted; remaining categories were not attempted")
		return
	}
	ui.PrintSuccess("All scraping tasks are complete")
}

// printSummary renders the final run report
func printSummary(summary *scraper.Summary) {
	fmt.Println()
	ui.PrintHighlight("[RUN SUMMARY]")
	for _, cat := range summary.Categories {
		label := cat.License
		if label == "" {
			label = "none"
		}
		if cat.Skipped {
			ui.PrintInfo(label, fmt.Sprintf("skipped (%s)", cat.SkipReason))
			continue
		}
		ui.PrintInfo(label, fmt.Sprintf("%d records, %d/%d pages saved", cat.Total, cat.Saved, cat.Pages))
	}
	ui.PrintInfo("Pages saved", fmt.Sprintf("%d", summary.PagesSaved))
	if summary.PagesFailed > 0 {
		ui.PrintWarning("Pages failed", summary.PagesFailed)
		ui.PrintWarning("Missing record ranges", strings.Join(summary.MissingRanges, ", "))
	}
	ui.PrintInfo("Elapsed", summary.Elapsed.Round(summaryRounding).String())
}

// labelLicenses maps the empty "no filter" entry to a readable label
func labelLicenses(list []string) []string {
	out := make([]string, len(list))
	for i, l := range list {
		if l == "" {
			out[i] = "none"
		} else {
			out[i] = l
		}
	}
	return out
}
