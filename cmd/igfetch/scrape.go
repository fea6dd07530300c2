package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"igfetch/pkg/config"
	"igfetch/pkg/logger"
	"igfetch/pkg/output"
	"igfetch/pkg/scraper"
)

var (
	// Scrape command flags
	maxPosts      int
	outputDir     string
	outputFile    string
	proxyURL      string
	headerProfile string
	concurrency   int
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape <username> [username...]",
	Short: "Scrape one or more public profiles",
	Long: `Scrape public profile metadata and the post feed for each given
username. No credentials are needed; only public data is collected.

Each username gets its own session with a fresh browser identity. When
several usernames are given they are scraped concurrently, bounded by
--concurrency.`,
	Example: `  # Scrape a profile and its full feed
  igfetch scrape natgeo

  # Only the 50 most recent posts
  igfetch scrape natgeo --max-posts 50

  # Several accounts through a proxy
  igfetch scrape natgeo nasa --proxy socks5://127.0.0.1:9050

  # Pin a browser identity instead of picking one at random
  igfetch scrape natgeo --profile firefox-windows`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().IntVar(&maxPosts, "max-posts", 0, "maximum posts per account (0 = all)")
	scrapeCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory for result files (default: output)")
	scrapeCmd.Flags().StringVar(&outputFile, "output", "", "explicit result filename (single account only)")
	scrapeCmd.Flags().StringVar(&proxyURL, "proxy", "", "proxy URL (http, https, or socks5)")
	scrapeCmd.Flags().StringVar(&headerProfile, "profile", "", "browser header profile to pin (default: random)")
	scrapeCmd.Flags().IntVar(&concurrency, "concurrency", 0, "accounts scraped in parallel")
}

func runScrape(cmd *cobra.Command, args []string) error {
	usernames := make([]string, 0, len(args))
	for _, arg := range args {
		username := strings.TrimSpace(strings.TrimPrefix(arg, "@"))
		if username != "" {
			usernames = append(usernames, username)
		}
	}
	if len(usernames) == 0 {
		return fmt.Errorf("no usernames given")
	}
	if outputFile != "" && len(usernames) > 1 {
		return fmt.Errorf("--output is only valid with a single username")
	}

	flags := map[string]interface{}{
		"max-posts":   maxPosts,
		"output-dir":  outputDir,
		"output":      outputFile,
		"proxy":       proxyURL,
		"profile":     headerProfile,
		"concurrency": concurrency,
		"log-level":   logLevel,
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return err
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("igfetch starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	writer, err := output.NewWriter(cfg.Output.Directory)
	if err != nil {
		return err
	}

	s := scraper.New(cfg)
	results, err := s.ScrapeAll(ctx, usernames)
	if err != nil && ctx.Err() == nil {
		return err
	}

	failed := 0
	for _, account := range results {
		if account.Err != nil || account.Result == nil {
			failed++
			continue
		}

		result := account.Result
		path := ""
		if cfg.Output.File != "" {
			path, err = writer.WriteNamed(result, cfg.Output.File)
		} else {
			path, err = writer.Write(result)
		}
		if err != nil {
			log.WithError(err).WithField("username", account.Username).Error("failed to write result")
			failed++
			continue
		}

		fmt.Printf("%s: %d posts (profile reports %d) -> %s\n",
			account.Username, result.TotalPostsScraped, result.Profile.PostsCount, path)

		// A profile that reports posts but yielded none means the feed
		// was blocked outright; surface that as a failure.
		if result.TotalPostsScraped == 0 && result.Profile.PostsCount > 0 {
			log.WarnWithFields("no posts scraped from non-empty profile", map[string]interface{}{
				"username":    account.Username,
				"posts_count": result.Profile.PostsCount,
			})
			failed++
		}
	}

	if ctx.Err() != nil {
		log.Warn("scrape interrupted; partial results were written")
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d accounts failed", failed, len(usernames))
	}
	return nil
}
