package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/HappymanOkajima/element-hunter/internal/config"
	"github.com/HappymanOkajima/element-hunter/internal/crawler"
	"github.com/HappymanOkajima/element-hunter/internal/driver"
	"github.com/HappymanOkajima/element-hunter/internal/report"
)

var (
	cfgFile    string
	verbose    bool
	outputDir  string
	depth      int
	maxPages   int
	delayMs    int
	timeoutMs  int
	siteID     string
	siteName   string
	threshold  float64
	driverType string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "elementhunter",
		Short: "Element Hunter — site structure fingerprinter",
		Long: `Element Hunter crawls a website from its root and extracts a structural
fingerprint of every reachable page: tag census with samples, link graph,
readable content, representative images, and a site color palette. The
result is a single JSON document describing the site's shape, consumed by
a downstream renderer.`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(crawlCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// crawlCmd creates the "crawl" subcommand.
func crawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [url]",
		Short: "Crawl a site and write its fingerprint document",
		Args:  cobra.ExactArgs(1),
		RunE:  runCrawl,
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "output directory for {siteId}.json")
	cmd.Flags().IntVarP(&depth, "depth", "d", 3, "maximum crawl depth")
	cmd.Flags().IntVarP(&maxPages, "max-pages", "m", 50, "maximum number of pages to crawl")
	cmd.Flags().IntVar(&delayMs, "delay", 1000, "politeness delay between page loads, in milliseconds")
	cmd.Flags().IntVar(&timeoutMs, "timeout", 30000, "per-page navigation timeout, in milliseconds")
	cmd.Flags().StringVar(&siteID, "site-id", "", "override the derived site id")
	cmd.Flags().StringVar(&siteName, "site-name", "", "override the derived site name")
	cmd.Flags().Float64Var(&threshold, "threshold", 0.8, "common-link occurrence threshold (0-1)")
	cmd.Flags().StringVar(&driverType, "driver", "", "page driver: browser or static")

	return cmd
}

// runCrawl executes the crawl command.
func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyCLIOverrides(cmd, cfg)
	cfg.Crawl.URL = args[0]

	logger := setupLogger(cfg)

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := config.ValidateURL(cfg.Crawl.URL); err != nil {
		return fmt.Errorf("invalid URL %q: %w", cfg.Crawl.URL, err)
	}

	drv, err := driver.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create driver: %w", err)
	}
	defer drv.Close()

	writer, err := report.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create writer: %w", err)
	}
	defer writer.Close()

	// SIGINT/SIGTERM cancel the crawl cooperatively at the next
	// traversal gate; whatever was recorded so far is still analyzed
	// and written.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out, err := crawler.New(cfg, drv, logger).Run(ctx)
	if err != nil {
		return fmt.Errorf("crawl: %w", err)
	}

	if err := writer.Write(ctx, out); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	fmt.Printf("\nCrawl complete in %s\n", time.Duration(out.DurationMs)*time.Millisecond)
	fmt.Printf("   Site:      %s (%s)\n", out.SiteName, out.SiteID)
	fmt.Printf("   Pages:     %d crawled, %d elements total\n", out.TotalPages, out.TotalElements)
	fmt.Printf("   Links:     %d common, %d rare tags\n", len(out.CommonLinks), len(out.RareTags))
	if fw, ok := writer.(*report.FileWriter); ok {
		fmt.Printf("   Output:    %s\n", fw.LastPath)
	}

	return nil
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Element Hunter %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("Crawl:\n")
			fmt.Printf("  Max Depth:         %d\n", cfg.Crawl.MaxDepth)
			fmt.Printf("  Max Pages:         %d\n", cfg.Crawl.MaxPages)
			fmt.Printf("  Delay:             %s\n", cfg.Crawl.Delay)
			fmt.Printf("  Timeout:           %s\n", cfg.Crawl.Timeout)
			fmt.Printf("  Common Threshold:  %g\n", cfg.Crawl.CommonLinkThreshold)
			fmt.Printf("\nDriver:\n")
			fmt.Printf("  Type:              %s\n", cfg.Driver.Type)
			fmt.Printf("  Stealth:           %v\n", cfg.Driver.Stealth)
			fmt.Printf("\nOutput:\n")
			fmt.Printf("  Type:              %s\n", cfg.Output.Type)
			fmt.Printf("  Dir:               %s\n", cfg.Output.Dir)
			return nil
		},
	}
}

// setupLogger creates a structured logger per the logging config.
func setupLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// applyCLIOverrides applies explicitly set command-line flags to the config.
func applyCLIOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output.Dir = outputDir
	}
	if flags.Changed("depth") {
		cfg.Crawl.MaxDepth = depth
	}
	if flags.Changed("max-pages") {
		cfg.Crawl.MaxPages = maxPages
	}
	if flags.Changed("delay") {
		cfg.Crawl.Delay = time.Duration(delayMs) * time.Millisecond
	}
	if flags.Changed("timeout") {
		cfg.Crawl.Timeout = time.Duration(timeoutMs) * time.Millisecond
	}
	if flags.Changed("site-id") {
		cfg.Crawl.SiteID = siteID
	}
	if flags.Changed("site-name") {
		cfg.Crawl.SiteName = siteName
	}
	if flags.Changed("threshold") {
		cfg.Crawl.CommonLinkThreshold = threshold
	}
	if flags.Changed("driver") {
		cfg.Driver.Type = driverType
	}
}
