package parse

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igfetch/pkg/instagram"
)

func TestMediaType(t *testing.T) {
	tests := []struct {
		code        int
		productType string
		want        string
	}{
		{instagram.MediaTypeCarousel, "", "carousel"},
		{instagram.MediaTypeCarousel, "clips", "carousel"},
		{instagram.MediaTypeVideo, "clips", "reel"},
		{instagram.MediaTypeVideo, "", "video"},
		{instagram.MediaTypeVideo, "feed", "video"},
		{instagram.MediaTypeImage, "", "image"},
		{99, "", "image"},
	}

	for _, test := range tests {
		assert.Equalf(t, test.want, MediaType(test.code, test.productType),
			"code=%d productType=%q", test.code, test.productType)
	}
}

func feedItem(t *testing.T, payload string) instagram.FeedItem {
	t.Helper()
	var item instagram.FeedItem
	require.NoError(t, json.Unmarshal([]byte(payload), &item))
	return item
}

func TestMediaURLOrdering(t *testing.T) {
	item := feedItem(t, `{
		"pk": 1,
		"code": "CAR",
		"media_type": 8,
		"image_versions2": {"candidates": [{"url": "https://cdn/cover.jpg"}]},
		"carousel_media": [
			{"image_versions2": {"candidates": [{"url": "https://cdn/c1.jpg"}]}},
			{
				"image_versions2": {"candidates": [{"url": "https://cdn/c2.jpg"}]},
				"video_versions": [{"url": "https://cdn/c2.mp4"}]
			}
		]
	}`)

	assert.Equal(t, []string{
		"https://cdn/cover.jpg",
		"https://cdn/c1.jpg",
		"https://cdn/c2.jpg",
		"https://cdn/c2.mp4",
	}, MediaURLs(item))
}

func TestPostNormalization(t *testing.T) {
	item := feedItem(t, `{
		"pk": 321,
		"code": "ABC123",
		"caption": {"text": "sunset over the dunes"},
		"like_count": 1500,
		"comment_count": 42,
		"play_count": 90000,
		"view_count": 80000,
		"taken_at": 1700000000,
		"media_type": 2,
		"product_type": "clips",
		"video_duration": 17.3,
		"image_versions2": {"candidates": [{"url": "https://cdn/thumb.jpg"}]},
		"video_versions": [{"url": "https://cdn/reel.mp4"}],
		"location": {"pk": 555, "name": "Sahara", "slug": "sahara"},
		"user": {"pk": 456, "username": "natgeo"}
	}`)

	post := Post(item, "natgeo")

	assert.Equal(t, "321", post.ID)
	assert.Equal(t, "ABC123", post.Shortcode)
	assert.Equal(t, "sunset over the dunes", post.Caption)
	assert.Equal(t, 1500, post.LikeCount)
	assert.Equal(t, 42, post.CommentCount)
	assert.Equal(t, int64(90000), post.ViewCount, "play count wins over view count")
	assert.Equal(t, int64(1700000000), post.Timestamp)
	assert.Equal(t, "reel", post.MediaType)
	assert.True(t, post.IsVideo)
	assert.Equal(t, 17.3, post.VideoDuration)
	assert.Equal(t, []string{"https://cdn/thumb.jpg", "https://cdn/reel.mp4"}, post.MediaURLs)
	assert.Equal(t, "https://cdn/thumb.jpg", post.ThumbnailURL)
	require.NotNil(t, post.Location)
	assert.Equal(t, "555", post.Location.ID)
	assert.Equal(t, "Sahara", post.Location.Name)
	assert.Equal(t, "natgeo", post.OwnerUsername)
	assert.Equal(t, "456", post.OwnerID)
	assert.Equal(t, "https://www.instagram.com/p/ABC123/", post.Permalink())
	assert.Equal(t, int64(1700000000), post.TakenAt().Unix())
}

func TestPostViewCountFallback(t *testing.T) {
	item := feedItem(t, `{"pk": 1, "code": "X", "media_type": 2, "view_count": 500}`)
	assert.Equal(t, int64(500), Post(item, "u").ViewCount)
}

func TestFeedSkipsItemsWithoutIdentifiers(t *testing.T) {
	var feed instagram.FeedResponse
	require.NoError(t, json.Unmarshal([]byte(`{
		"items": [
			{"pk": 1, "code": "A", "media_type": 1},
			{},
			{"pk": 2, "code": "B", "media_type": 1}
		],
		"next_max_id": "cursor-2",
		"more_available": true
	}`), &feed))

	posts, nextMaxID, more := Feed(&feed, "natgeo")

	require.Len(t, posts, 2)
	assert.Equal(t, "A", posts[0].Shortcode)
	assert.Equal(t, "B", posts[1].Shortcode)
	assert.Equal(t, "cursor-2", nextMaxID)
	assert.True(t, more)
}
