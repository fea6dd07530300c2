package scraper

import (
	"context"

	"igfetch/pkg/instagram"
)

// SessionClient defines the operations a scrape session needs from the
// underlying HTTP client.
type SessionClient interface {
	Initialize(ctx context.Context) error
	FetchProfilePage(ctx context.Context, username string) (string, error)
	FetchFeedPage(ctx context.Context, username, maxID string, count int) (*instagram.FeedResponse, error)
}
