// Package scraper orchestrates profile and feed scraping: one isolated
// session per account, cursor pagination with partial-result semantics,
// and bounded concurrency across accounts.
package scraper

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"igfetch/pkg/config"
	errs "igfetch/pkg/errors"
	"igfetch/pkg/headers"
	"igfetch/pkg/instagram"
	"igfetch/pkg/logger"
	"igfetch/pkg/models"
	"igfetch/pkg/parse"
	"igfetch/pkg/ratelimit"
)

// Session is one isolated scrape identity: its own cookie jar, header
// profile, and discovered tokens. Sessions are never shared between
// accounts scraped concurrently.
type Session struct {
	ID      string
	Profile headers.Profile

	client SessionClient
	log    logger.Logger
}

// Scraper coordinates scrape sessions according to configuration
type Scraper struct {
	config *config.Config
	logger logger.Logger
}

// New creates a Scraper
func New(cfg *config.Config) *Scraper {
	return &Scraper{
		config: cfg,
		logger: logger.GetLogger(),
	}
}

// NewSession builds a fresh session with a pinned header profile. When
// the configuration names a profile it is used; otherwise one is picked
// at random.
func (s *Scraper) NewSession() (*Session, error) {
	var profile headers.Profile
	if s.config.Scrape.HeaderProfile != "" {
		p, err := headers.ByName(s.config.Scrape.HeaderProfile)
		if err != nil {
			return nil, errs.Wrap(errs.ErrorTypeUnknown, "invalid header profile", err)
		}
		profile = p
	} else {
		profile = headers.Random()
	}

	limiter := s.buildLimiter()

	client, err := instagram.NewClient(s.config, profile, limiter, s.logger)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	return &Session{
		ID:      id,
		Profile: profile,
		client:  client,
		log: s.logger.WithFields(map[string]interface{}{
			"session":        shortID(id),
			"header_profile": profile.Name,
		}),
	}, nil
}

// buildLimiter assembles the pacing chain: the randomized per-request
// delay, plus a requests-per-minute bucket when one is configured.
func (s *Scraper) buildLimiter() ratelimit.Limiter {
	pacer := ratelimit.NewPacer(s.config.Pacing.MinDelay, s.config.Pacing.MaxDelay)
	if s.config.Pacing.RequestsPerMinute <= 0 {
		return pacer
	}
	return ratelimit.Chain{
		ratelimit.NewTokenBucket(s.config.Pacing.RequestsPerMinute, time.Minute),
		pacer,
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// ScrapeProfile fetches and parses one profile document on the given
// session.
func (s *Scraper) ScrapeProfile(ctx context.Context, session *Session, username string) (models.Profile, error) {
	html, err := session.client.FetchProfilePage(ctx, username)
	if err != nil {
		return models.Profile{}, err
	}

	profile, err := parse.Profile(html)
	if err != nil {
		return models.Profile{}, err
	}
	if profile.Username == "" {
		profile.Username = username
	}

	return profile, nil
}

// ScrapeFull scrapes one account end to end: bootstrap, profile, then
// the paginated feed. The profile fetch is the only hard failure; feed
// errors yield a partial result with the error recorded.
func (s *Scraper) ScrapeFull(ctx context.Context, username string) (*models.ScrapeResult, error) {
	session, err := s.NewSession()
	if err != nil {
		return nil, err
	}

	session.log.InfoWithFields("starting scrape", map[string]interface{}{
		"username": username,
	})

	if err := session.client.Initialize(ctx); err != nil {
		return nil, err
	}

	return s.scrapeWithSession(ctx, session, username)
}

// scrapeWithSession runs the profile and feed phases on an initialized
// session.
func (s *Scraper) scrapeWithSession(ctx context.Context, session *Session, username string) (*models.ScrapeResult, error) {
	profile, err := s.ScrapeProfile(ctx, session, username)
	if err != nil {
		return nil, err
	}

	pager := newPaginator(session.client, username,
		s.config.Scrape.PostsPerPage, s.config.Scrape.MaxPosts, session.log)
	pager.run(ctx)

	if profile.UserID == "" && pager.userID != "" {
		profile.UserID = pager.userID
	}

	result := &models.ScrapeResult{
		Profile:           profile,
		Posts:             pager.posts,
		TotalPostsScraped: len(pager.posts),
		HasMorePosts:      pager.hasMore,
		ScrapeCompletedAt: time.Now().UTC(),
		Errors:            pager.errors,
	}

	session.log.InfoWithFields("scrape finished", map[string]interface{}{
		"username": username,
		"posts":    result.TotalPostsScraped,
		"has_more": result.HasMorePosts,
		"partial":  len(result.Errors) > 0,
	})

	return result, nil
}

// AccountResult pairs one username with its scrape outcome
type AccountResult struct {
	Username string
	Result   *models.ScrapeResult
	Err      error
}

// ScrapeAll scrapes many accounts with bounded concurrency. Each account
// gets its own session. One account's failure does not stop the others;
// only context cancellation aborts the whole run.
func (s *Scraper) ScrapeAll(ctx context.Context, usernames []string) ([]AccountResult, error) {
	results := make([]AccountResult, len(usernames))

	g, ctx := errgroup.WithContext(ctx)
	concurrency := s.config.Scrape.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	g.SetLimit(concurrency)

	for i, username := range usernames {
		g.Go(func() error {
			result, err := s.ScrapeFull(ctx, username)
			results[i] = AccountResult{Username: username, Result: result, Err: err}
			if err != nil {
				s.logger.ErrorWithFields("account scrape failed", map[string]interface{}{
					"username": username,
					"error":    err.Error(),
				})
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
