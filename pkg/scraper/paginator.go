package scraper

import (
	"context"

	"igfetch/pkg/logger"
	"igfetch/pkg/models"
	"igfetch/pkg/parse"
)

// paginatorState tracks where the feed walk is in its lifecycle
type paginatorState int

const (
	stateNotStarted paginatorState = iota
	stateFetchingPage
	stateAccumulating
	stateExhausted
	stateAborted
)

// paginator walks a user's feed page by page, accumulating normalized
// posts until the feed is exhausted, the configured cap is reached, or a
// page fetch fails. A failure never discards pages already accumulated.
type paginator struct {
	client   SessionClient
	username string
	pageSize int
	maxPosts int
	log      logger.Logger

	state   paginatorState
	cursor  string
	posts   []models.Post
	errors  []string
	userID  string
	hasMore bool
}

func newPaginator(client SessionClient, username string, pageSize, maxPosts int, log logger.Logger) *paginator {
	if log == nil {
		log = logger.GetLogger()
	}
	return &paginator{
		client:   client,
		username: username,
		pageSize: pageSize,
		maxPosts: maxPosts,
		log:      log,
		state:    stateNotStarted,
	}
}

// capped reports whether the post cap is set and reached
func (p *paginator) capped() bool {
	return p.maxPosts > 0 && len(p.posts) >= p.maxPosts
}

// run drives the walk to a terminal state
func (p *paginator) run(ctx context.Context) {
	page := 0
	for {
		if p.capped() {
			p.posts = p.posts[:p.maxPosts]
			p.state = stateExhausted
			return
		}

		p.state = stateFetchingPage
		feed, err := p.client.FetchFeedPage(ctx, p.username, p.cursor, p.pageSize)
		if err != nil {
			// Abort: keep every page already accumulated, record the
			// failure, and stop paginating this account.
			p.state = stateAborted
			p.hasMore = false
			p.errors = append(p.errors, err.Error())
			p.log.WarnWithFields("feed pagination aborted", map[string]interface{}{
				"username": p.username,
				"page":     page,
				"error":    err.Error(),
			})
			return
		}

		p.state = stateAccumulating
		posts, nextMaxID, more := parse.Feed(feed, p.username)
		p.posts = append(p.posts, posts...)
		p.cursor = nextMaxID
		p.hasMore = more
		page++

		if p.userID == "" && feed.User != nil {
			p.userID = feed.User.PK.String()
		}

		p.log.DebugWithFields("feed page accumulated", map[string]interface{}{
			"username": p.username,
			"page":     page,
			"posts":    len(p.posts),
			"more":     more,
		})

		if !more || nextMaxID == "" || len(posts) == 0 {
			if p.capped() {
				p.posts = p.posts[:p.maxPosts]
			}
			p.state = stateExhausted
			return
		}
	}
}
