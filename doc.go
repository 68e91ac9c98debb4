// Package ytscout finds YouTube channels worth subscribing to.
//
// It compares channels by what they publish (title, description, and
// recent upload text), their topic categories, and their audience size,
// and ranks candidates for a seed channel the user already likes.
//
// Overview
//
// ytscout provides three flows:
//
//   - SyncSubscriptions: fetch the authenticated user's subscriptions
//     and save them as JSON and text artifacts
//   - Recommend: rank the saved subscriptions by similarity to a seed
//     channel
//   - Discover: find channels outside the subscriptions by walking the
//     seed's most popular videos' related results and topic searches
//
// Quick Start
//
// Discover channels similar to one you like:
//
//	cfg, err := config.Load("")
//	if err != nil {
//		log.Fatal(err)
//	}
//	res, err := ytscout.Discover(ctx, cfg, "Veritasium")
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, r := range res.Ranked {
//		fmt.Printf("%.2f  %s\n", r.Score, r.Channel.Title)
//	}
//
// Persist the run as a report file:
//
//	path, err := ytscout.SaveReport(ctx, cfg, res.Report)
//
// Configuration
//
// ytscout loads settings from multiple sources:
//
//   1. Environment variables (highest priority)
//   2. Config file (ytscout.json or ~/.config/ytscout/ytscout.json)
//   3. Default values (lowest priority)
//
// Environment variables:
//
//   - YTSCOUT_API_KEY: YouTube Data API key
//   - YTSCOUT_CLIENT_SECRETS: OAuth client secrets file
//   - YTSCOUT_TOKEN_FILE: cached OAuth token file
//   - YTSCOUT_OUTPUT_DIR: artifact output directory
//   - YTSCOUT_REDIS_URL: optional shared cache tier
//   - YTSCOUT_DAILY_QUOTA: API unit budget per day
//   - YTSCOUT_REQUESTS_PER_SECOND: API call pacing
//   - YTSCOUT_LOG_LEVEL: debug, info, warn, or error
//
// Credentials
//
// Public-data flows (Recommend, Discover) need an API key from the
// Google Cloud console with the YouTube Data API v3 enabled. The
// subscriptions flow additionally needs an OAuth client ("Desktop app"
// type); the first run opens a browser for consent and caches the token.
//
// Error Handling
//
// All operations return errors that work with errors.Is and errors.As:
//
//	if errors.Is(err, ytscout.ErrQuotaExhausted) {
//		fmt.Println("Daily API budget spent, try tomorrow")
//	}
//
// Advanced Usage
//
// For more control, use the sub-packages directly:
//
//   - youtube: the metadata provider (quota accounting, caching, retry)
//   - recommend: the scoring and ranking engine
//   - storage: artifact persistence
//   - config: configuration management
//   - auth: the OAuth browser flow
//
package ytscout
