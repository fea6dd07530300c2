package instagram

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileURL(t *testing.T) {
	assert.Equal(t, "https://www.instagram.com/natgeo/", ProfileURL("natgeo"))
}

func TestFeedURL(t *testing.T) {
	assert.Equal(t,
		"https://www.instagram.com/api/v1/feed/user/natgeo/username/?count=12",
		FeedURL("natgeo", 12, ""))

	assert.Equal(t,
		"https://www.instagram.com/api/v1/feed/user/natgeo/username/?count=12&max_id=QVFD_123%3D%3D",
		FeedURL("natgeo", 12, "QVFD_123=="))
}

func TestNumericIDAcceptsStringAndNumber(t *testing.T) {
	var v struct {
		PK NumericID `json:"pk"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"pk":"17841400039600391"}`), &v))
	assert.Equal(t, "17841400039600391", v.PK.String())

	require.NoError(t, json.Unmarshal([]byte(`{"pk":17841400039600391}`), &v))
	assert.Equal(t, "17841400039600391", v.PK.String())
	assert.Equal(t, int64(17841400039600391), v.PK.Int64())

	require.NoError(t, json.Unmarshal([]byte(`{"pk":null}`), &v))
	assert.Empty(t, v.PK.String())
}

func TestFeedResponseDecoding(t *testing.T) {
	payload := `{
		"items": [
			{
				"pk": 123,
				"code": "ABC123",
				"caption": {"text": "hello"},
				"like_count": 10,
				"comment_count": 2,
				"taken_at": 1700000000,
				"media_type": 2,
				"product_type": "clips",
				"video_duration": 12.5,
				"image_versions2": {"candidates": [{"url": "https://cdn/img.jpg"}]},
				"video_versions": [{"url": "https://cdn/vid.mp4"}],
				"user": {"pk": 456, "username": "natgeo"}
			}
		],
		"next_max_id": "cursor-1",
		"more_available": true,
		"status": "ok",
		"user": {"pk": 456}
	}`

	var feed FeedResponse
	require.NoError(t, json.Unmarshal([]byte(payload), &feed))

	require.Len(t, feed.Items, 1)
	item := feed.Items[0]
	assert.Equal(t, "123", item.PK.String())
	assert.Equal(t, "ABC123", item.Code)
	assert.Equal(t, "hello", item.Caption.Text)
	assert.Equal(t, MediaTypeVideo, item.MediaType)
	assert.Equal(t, ProductTypeClips, item.ProductType)
	assert.Equal(t, "cursor-1", feed.NextMaxID)
	assert.True(t, feed.MoreAvailable)
	assert.Equal(t, "456", feed.User.PK.String())
}
