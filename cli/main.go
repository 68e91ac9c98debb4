package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ytscout"
	"ytscout/auth"
	"ytscout/config"
)

const version = "0.3.0"

// probeChannelID is the channel the quota command looks up by default,
// the one the YouTube API documentation uses in its examples.
const probeChannelID = "UC_x5XG1OV2P6uZZ5FSM9Ttw"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "subscriptions":
		cmdSubscriptions(args)
	case "recommend":
		cmdRecommend(args)
	case "discover":
		cmdDiscover(args)
	case "quota":
		cmdQuota(args)
	case "version", "-v", "--version":
		fmt.Printf("ytscout %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `ytscout - find YouTube channels worth subscribing to

Usage:
  ytscout subscriptions [flags]          Fetch and save your subscriptions
  ytscout recommend [flags] <channel>    Rank your subscriptions against a seed channel
  ytscout discover [flags] <channel>     Find new channels similar to a seed channel
  ytscout quota [flags] [channel-id]     Show quota and cache diagnostics
  ytscout version                        Print the version
  ytscout help                           Show this help message

Examples:
  ytscout subscriptions                              # OAuth consent on first run
  ytscout recommend Veritasium                       # Rank subscriptions by similarity
  ytscout discover -save "Smarter Every Day"         # Find new channels, save the report
  ytscout discover -min-subs 100000 UCHnyfMqiRRG1u-2MsSQLbXA
  ytscout quota                                      # One lookup, then print counters

Flags go before the channel argument.
For help on a specific command: ytscout <command> -h
`)
}

func cmdSubscriptions(args []string) {
	fs := flag.NewFlagSet("subscriptions", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	output := fs.String("output", "", "Output directory (overrides config)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ytscout subscriptions [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	cfg := loadConfig(*configPath)
	if *output != "" {
		cfg.OutputDir = *output
	}
	setupLogging(cfg.LogLevel)

	ctx, cancel := runContext()
	defer cancel()

	fmt.Fprintln(os.Stderr, "Fetching your subscriptions...")
	list, err := ytscout.SyncSubscriptions(ctx, cfg)
	if err != nil {
		fail(err)
	}

	preview := list.Subscriptions
	if len(preview) > 10 {
		preview = preview[:10]
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHANNEL\tID")
	for _, sub := range preview {
		fmt.Fprintf(w, "%s\t%s\n", truncate(sub.Title, 40), sub.ChannelID)
	}
	w.Flush()
	if len(list.Subscriptions) > len(preview) {
		fmt.Printf("... and %d more\n", len(list.Subscriptions)-len(preview))
	}

	fmt.Printf("\nTotal: %d subscriptions saved to %s\n", list.Count, cfg.OutputDir)
}

func cmdRecommend(args []string) {
	fs := flag.NewFlagSet("recommend", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	top := fs.Int("top", 0, "Number of results (overrides config)")
	minScore := fs.Float64("min-score", -1, "Minimum similarity score in [0, 1] (overrides config)")
	save := fs.Bool("save", false, "Save the report to the output directory")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ytscout recommend [flags] <channel>\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if fs.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: missing channel name or ID\n")
		fs.Usage()
		os.Exit(1)
	}
	seed := strings.Join(fs.Args(), " ")

	cfg := loadConfig(*configPath)
	if *top > 0 {
		cfg.Recommend.TopN = *top
	}
	if *minScore >= 0 {
		cfg.Recommend.MinScore = *minScore
	}
	setupLogging(cfg.LogLevel)

	ctx, cancel := runContext()
	defer cancel()

	fmt.Fprintf(os.Stderr, "Ranking your subscriptions against %q...\n", seed)
	res, err := ytscout.Recommend(ctx, cfg, seed)
	if err != nil {
		fail(err)
	}

	fmt.Printf("Subscriptions most similar to %s:\n\n", res.Seed.Title)
	printResults(res, false)
	finishRun(ctx, cfg, res, *save)
}

func cmdDiscover(args []string) {
	fs := flag.NewFlagSet("discover", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	top := fs.Int("top", 0, "Number of results (overrides config)")
	minSubs := fs.Int64("min-subs", -1, "Minimum subscriber count for results (overrides config)")
	maxCandidates := fs.Int("max-candidates", 0, "Cap on candidates scored (overrides config)")
	save := fs.Bool("save", false, "Save the report to the output directory")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ytscout discover [flags] <channel>\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if fs.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: missing channel name or ID\n")
		fs.Usage()
		os.Exit(1)
	}
	seed := strings.Join(fs.Args(), " ")

	cfg := loadConfig(*configPath)
	if *top > 0 {
		cfg.Discover.TopN = *top
	}
	if *minSubs >= 0 {
		cfg.Discover.MinSubscribers = *minSubs
	}
	if *maxCandidates > 0 {
		cfg.Discover.MaxCandidates = *maxCandidates
	}
	setupLogging(cfg.LogLevel)

	ctx, cancel := runContext()
	defer cancel()

	fmt.Fprintf(os.Stderr, "Discovering channels similar to %q...\n", seed)
	res, err := ytscout.Discover(ctx, cfg, seed)
	if err != nil {
		fail(err)
	}

	fmt.Printf("Channels similar to %s that you are not subscribed to:\n\n", res.Seed.Title)
	printResults(res, true)
	finishRun(ctx, cfg, res, *save)
}

func cmdQuota(args []string) {
	fs := flag.NewFlagSet("quota", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ytscout quota [flags] [channel-id]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	channelID := probeChannelID
	if fs.NArg() > 0 {
		channelID = fs.Arg(0)
	}

	cfg := loadConfig(*configPath)
	setupLogging(cfg.LogLevel)

	ctx, cancel := runContext()
	defer cancel()

	stats, err := ytscout.QuotaProbe(ctx, cfg, channelID)
	if err != nil {
		fail(err)
	}

	fmt.Printf("Probe lookup:            %s (%s)\n", stats.Channel.Title, stats.Channel.ID)
	fmt.Printf("Quota used this session: %d units\n", stats.QuotaUsed)
	fmt.Printf("Quota remaining today:   %d units\n", stats.QuotaRemaining)
	redis := "off"
	if stats.Cache.RedisEnabled {
		redis = "on"
	}
	fmt.Printf("Cache:                   %d hits, %d misses, %d local entries, redis %s\n",
		stats.Cache.Hits, stats.Cache.Misses, stats.Cache.LocalEntries, redis)
}

// printResults renders the ranked table, or the guidance line when the
// run produced nothing.
func printResults(res *ytscout.Result, withCounts bool) {
	if len(res.Ranked) == 0 {
		fmt.Println("No channels found matching the criteria.")
		fmt.Println("Consider lowering -min-score or -min-subs, or trying another seed channel.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if withCounts {
		fmt.Fprintln(w, "RANK\tSCORE\tFOUND\tSUBSCRIBERS\tCHANNEL\tURL")
	} else {
		fmt.Fprintln(w, "RANK\tSCORE\tSUBSCRIBERS\tCHANNEL\tURL")
	}

	for i, r := range res.Ranked {
		subs := "hidden"
		if r.Channel.KnownSubscribers() {
			subs = humanCount(r.Channel.Subscribers)
		}
		if withCounts {
			fmt.Fprintf(w, "%d\t%.3f\t%d\t%s\t%s\t%s\n",
				i+1, r.Score, r.DiscoveryCount, subs, truncate(r.Channel.Title, 40), r.Channel.URL())
		} else {
			fmt.Fprintf(w, "%d\t%.3f\t%s\t%s\t%s\n",
				i+1, r.Score, subs, truncate(r.Channel.Title, 40), r.Channel.URL())
		}
	}
	w.Flush()
}

// finishRun saves the report when requested and prints the quota spend.
func finishRun(ctx context.Context, cfg *config.Config, res *ytscout.Result, save bool) {
	if save {
		path, err := ytscout.SaveReport(ctx, cfg, res.Report)
		if err != nil {
			fail(err)
		}
		fmt.Printf("\nReport saved to %s\n", path)
	}
	fmt.Fprintf(os.Stderr, "\nQuota used: %d units\n", res.QuotaUsed)
}

func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// setupLogging points the global logger at stderr with the configured
// level so progress output and results stay separable.
func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		With().Timestamp().Logger()
}

func runContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// fail prints the error, with guidance for the cases a user can fix, and
// exits nonzero.
func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	switch {
	case errors.Is(err, ytscout.ErrSetupRequired):
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, auth.SetupInstructions())
	case errors.Is(err, ytscout.ErrQuotaExhausted):
		fmt.Fprintln(os.Stderr, "The daily API quota is spent. Try again after it resets (midnight Pacific).")
	case errors.Is(err, ytscout.ErrNoCredentials):
		fmt.Fprintln(os.Stderr, "Set an API key via YTSCOUT_API_KEY or the api_key config field.")
	}
	os.Exit(1)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func humanCount(n int64) string {
	switch {
	case n >= 1000000:
		return fmt.Sprintf("%.1fM", float64(n)/1000000)
	case n >= 1000:
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	default:
		return fmt.Sprintf("%d", n)
	}
}
