package scraper

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igfetch/pkg/config"
	errs "igfetch/pkg/errors"
	"igfetch/pkg/instagram"
	"igfetch/pkg/logger"
)

// fakeClient serves scripted feed pages without touching the network
type fakeClient struct {
	profileHTML string
	profileErr  error
	pages       []fakePage
	fetches     int
}

type fakePage struct {
	feed *instagram.FeedResponse
	err  error
}

func (f *fakeClient) Initialize(ctx context.Context) error { return nil }

func (f *fakeClient) FetchProfilePage(ctx context.Context, username string) (string, error) {
	if f.profileErr != nil {
		return "", f.profileErr
	}
	return f.profileHTML, nil
}

func (f *fakeClient) FetchFeedPage(ctx context.Context, username, maxID string, count int) (*instagram.FeedResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.fetches >= len(f.pages) {
		return nil, errs.New(errs.ErrorTypeUnknown, "no more scripted pages")
	}
	page := f.pages[f.fetches]
	f.fetches++
	return page.feed, page.err
}

// feedPage builds one scripted page of n posts starting at sequence
// start, with the given cursor and more flag.
func feedPage(start, n int, nextMaxID string, more bool) *instagram.FeedResponse {
	items := make([]instagram.FeedItem, n)
	for i := range items {
		items[i] = instagram.FeedItem{
			ID:        fmt.Sprintf("%d_456", start+i),
			Code:      fmt.Sprintf("POST%d", start+i),
			MediaType: instagram.MediaTypeImage,
		}
	}
	return &instagram.FeedResponse{
		Items:         items,
		NextMaxID:     nextMaxID,
		MoreAvailable: more,
		Status:        "ok",
		User:          &instagram.FeedUser{PK: instagram.NumericID("456")},
	}
}

func testLogger(t *testing.T) logger.Logger {
	t.Helper()
	return logger.GetLogger()
}

func TestPaginatorWalksToExhaustion(t *testing.T) {
	client := &fakeClient{pages: []fakePage{
		{feed: feedPage(0, 12, "c1", true)},
		{feed: feedPage(12, 12, "c2", true)},
		{feed: feedPage(24, 6, "", false)},
	}}

	p := newPaginator(client, "natgeo", 12, 0, testLogger(t))
	p.run(context.Background())

	assert.Equal(t, stateExhausted, p.state)
	assert.Len(t, p.posts, 30)
	assert.False(t, p.hasMore)
	assert.Empty(t, p.errors)
	assert.Equal(t, 3, client.fetches)
	assert.Equal(t, "456", p.userID)
	assert.Equal(t, "POST0", p.posts[0].Shortcode)
	assert.Equal(t, "POST29", p.posts[29].Shortcode)
}

func TestPaginatorCapTruncatesExactly(t *testing.T) {
	client := &fakeClient{pages: []fakePage{
		{feed: feedPage(0, 12, "c1", true)},
		{feed: feedPage(12, 12, "c2", true)},
		{feed: feedPage(24, 12, "c3", true)},
	}}

	p := newPaginator(client, "natgeo", 12, 20, testLogger(t))
	p.run(context.Background())

	assert.Equal(t, stateExhausted, p.state)
	assert.Len(t, p.posts, 20)
	assert.Equal(t, 2, client.fetches, "cap reached after second page")
	assert.True(t, p.hasMore, "feed still had more when the cap hit")
}

func TestPaginatorAbortKeepsAccumulatedPages(t *testing.T) {
	client := &fakeClient{pages: []fakePage{
		{feed: feedPage(0, 12, "c1", true)},
		{err: errs.New(errs.ErrorTypeChallengeRequired, "challenge presented")},
	}}

	p := newPaginator(client, "natgeo", 12, 0, testLogger(t))
	p.run(context.Background())

	assert.Equal(t, stateAborted, p.state)
	assert.Len(t, p.posts, 12)
	assert.False(t, p.hasMore)
	require.Len(t, p.errors, 1)
	assert.Contains(t, p.errors[0], "challenge")
}

func TestPaginatorCancellationKeepsAccumulatedPages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &fakeClient{pages: []fakePage{
		{feed: feedPage(0, 12, "c1", true)},
	}}

	p := newPaginator(client, "natgeo", 12, 0, testLogger(t))
	p.run(ctx)

	assert.Equal(t, stateAborted, p.state)
	assert.Empty(t, p.posts)
	require.Len(t, p.errors, 1)
}

func TestScrapeWithSessionBackfillsUserID(t *testing.T) {
	client := &fakeClient{
		profileHTML: `<meta property="og:title" content="Nat Geo (@natgeo)"/>` +
			`<meta property="og:description" content="100 Followers, 5 Following, 30 Posts - wild"/>`,
		pages: []fakePage{
			{feed: feedPage(0, 3, "", false)},
		},
	}

	s := New(config.DefaultConfig())
	session := &Session{ID: "test", client: client, log: testLogger(t)}

	result, err := s.scrapeWithSession(context.Background(), session, "natgeo")
	require.NoError(t, err)

	assert.Equal(t, "natgeo", result.Profile.Username)
	assert.Equal(t, "456", result.Profile.UserID)
	assert.Equal(t, 3, result.TotalPostsScraped)
	assert.False(t, result.HasMorePosts)
	assert.Empty(t, result.Errors)
	assert.False(t, result.ScrapeCompletedAt.IsZero())
}

func TestScrapeWithSessionProfileFailureIsHard(t *testing.T) {
	client := &fakeClient{
		profileErr: errs.New(errs.ErrorTypeNotFound, "account does not exist"),
	}

	s := New(config.DefaultConfig())
	session := &Session{ID: "test", client: client, log: testLogger(t)}

	_, err := s.scrapeWithSession(context.Background(), session, "ghost")
	require.Error(t, err)

	var typed *errs.Error
	require.ErrorAs(t, err, &typed)
	assert.True(t, errs.IsFatalBlock(typed.Type))
}

func TestScrapeWithSessionFeedFailureIsPartial(t *testing.T) {
	client := &fakeClient{
		profileHTML: `<meta property="og:title" content="Nat Geo (@natgeo)"/>` +
			`<meta property="og:description" content="100 Followers, 5 Following, 30 Posts - wild"/>`,
		pages: []fakePage{
			{feed: feedPage(0, 12, "c1", true)},
			{err: errs.New(errs.ErrorTypeRateLimit, "rate limited")},
		},
	}

	s := New(config.DefaultConfig())
	session := &Session{ID: "test", client: client, log: testLogger(t)}

	result, err := s.scrapeWithSession(context.Background(), session, "natgeo")
	require.NoError(t, err)

	assert.Equal(t, 12, result.TotalPostsScraped)
	assert.False(t, result.HasMorePosts)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "rate limited")
}

func TestNewSessionPinsNamedProfile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Scrape.HeaderProfile = "firefox-windows"

	s := New(cfg)
	session, err := s.NewSession()
	require.NoError(t, err)

	assert.Equal(t, "firefox-windows", session.Profile.Name)
	assert.NotEmpty(t, session.ID)
}

func TestNewSessionRejectsUnknownProfile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Scrape.HeaderProfile = "netscape-navigator"

	s := New(cfg)
	_, err := s.NewSession()
	require.Error(t, err)
}
