package parse

import (
	"time"

	"igfetch/pkg/instagram"
	"igfetch/pkg/logger"
	"igfetch/pkg/models"
)

// MediaType resolves the normalized media type for a feed item. The
// carousel code wins outright; a video code paired with the clips product
// type is a reel; any other video code is a video; everything else is an
// image.
func MediaType(code int, productType string) string {
	switch {
	case code == instagram.MediaTypeCarousel:
		return "carousel"
	case code == instagram.MediaTypeVideo && productType == instagram.ProductTypeClips:
		return "reel"
	case code == instagram.MediaTypeVideo:
		return "video"
	default:
		return "image"
	}
}

// MediaURLs flattens an item's media into one ordered list: the primary
// image candidate, the primary video variant, then each carousel child's
// image and/or video in child order.
func MediaURLs(item instagram.FeedItem) []string {
	var urls []string

	appendItem := func(it instagram.FeedItem) {
		if it.ImageVersions != nil && len(it.ImageVersions.Candidates) > 0 {
			urls = append(urls, it.ImageVersions.Candidates[0].URL)
		}
		if len(it.VideoVersions) > 0 {
			urls = append(urls, it.VideoVersions[0].URL)
		}
	}

	appendItem(item)
	for _, child := range item.CarouselMedia {
		appendItem(child)
	}

	return urls
}

// Post maps one raw feed item to a normalized post record. ownerUsername
// is used when the item does not carry its own owner block.
func Post(item instagram.FeedItem, ownerUsername string) models.Post {
	post := models.Post{
		ID:            item.PK.String(),
		Shortcode:     item.Code,
		LikeCount:     item.LikeCount,
		CommentCount:  item.CommentCount,
		Timestamp:     item.TakenAt,
		MediaType:     MediaType(item.MediaType, item.ProductType),
		IsVideo:       item.MediaType == instagram.MediaTypeVideo,
		VideoDuration: item.VideoDuration,
		MediaURLs:     MediaURLs(item),
		OwnerUsername: ownerUsername,
		ScrapedAt:     time.Now().UTC(),
	}

	if post.ID == "" {
		post.ID = item.ID
	}

	if item.Caption != nil {
		post.Caption = item.Caption.Text
	}

	// Play count is preferred; some item kinds only report view count.
	if item.PlayCount > 0 {
		post.ViewCount = item.PlayCount
	} else {
		post.ViewCount = item.ViewCount
	}

	if item.ImageVersions != nil && len(item.ImageVersions.Candidates) > 0 {
		post.ThumbnailURL = item.ImageVersions.Candidates[0].URL
	}

	if item.Location != nil {
		id := item.Location.PK.String()
		if id == "" {
			id = item.Location.ID.String()
		}
		post.Location = &models.Location{
			ID:   id,
			Name: item.Location.Name,
			Slug: item.Location.Slug,
		}
	}

	if item.User != nil {
		post.OwnerID = item.User.PK.String()
		if post.OwnerUsername == "" {
			post.OwnerUsername = item.User.Username
		}
	}

	return post
}

// Feed maps a feed API page to normalized posts plus the pagination
// signals. Items that fail to normalize are skipped with a warning; one
// bad item must not sink the page.
func Feed(feed *instagram.FeedResponse, ownerUsername string) ([]models.Post, string, bool) {
	posts := make([]models.Post, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.PK.String() == "" && item.ID == "" && item.Code == "" {
			logger.GetLogger().WarnWithFields("skipping feed item with no identifiers", map[string]interface{}{
				"owner": ownerUsername,
			})
			continue
		}
		posts = append(posts, Post(item, ownerUsername))
	}

	return posts, feed.NextMaxID, feed.MoreAvailable
}
