package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sagekit/sage/internal/config"
	"github.com/sagekit/sage/internal/scrape"
	"github.com/spf13/cobra"
)

var (
	scrapeURLsFile string
	scrapeSelector string
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape [url]...",
	Short: "Download documentation pages into the local corpus",
	Long: `Scrape downloads the given pages, extracts the configured content fragment
from each one and saves it under the data directory as page_N.html. Repeated
runs extend the corpus; existing pages are never overwritten.

URLs come from the arguments, from --urls-file (one per line, # comments), or
both. Scraping needs no API keys.`,
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeURLsFile, "urls-file", "", "file with one URL per line")
	scrapeCmd.Flags().StringVarP(&scrapeSelector, "selector", "s", "", "CSS selector for the content fragment (overrides config)")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(_ *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	urls := append([]string{}, args...)
	if scrapeURLsFile != "" {
		fromFile, err := readURLsFile(scrapeURLsFile)
		if err != nil {
			return err
		}
		urls = append(urls, fromFile...)
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs given: pass them as arguments or via --urls-file")
	}

	scraperCfg := cfg.Scraper
	if scrapeSelector != "" {
		scraperCfg.Selector = scrapeSelector
	}

	scraper, err := scrape.NewScraper(scraperCfg, newLogger())
	if err != nil {
		return fmt.Errorf("creating scraper: %w", err)
	}

	result, err := scraper.Run(urls, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("scraping: %w", err)
	}

	fmt.Printf("Scraped %d pages into %s in %s (%d failed)\n",
		result.PagesSaved, cfg.DataDir, result.Duration.Round(time.Millisecond), result.PagesFailed)
	return nil
}

// readURLsFile reads one URL per line, skipping blanks and # comments.
func readURLsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening urls file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading urls file: %w", err)
	}
	return urls, nil
}
