package models

import (
	"fmt"
	"time"
)

// SessionTokens holds the dynamic API tokens discovered at bootstrap.
// CSRFToken may be updated when a fresh cookie value is observed on a
// later response; the other fields are fixed for the session.
type SessionTokens struct {
	AppID     string
	CSRFToken string
	ASBDID    string
}

// Location is the optional place attached to a post
type Location struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// Profile holds identity, bio, and engagement fields extracted from a
// profile document. UserID may be empty when the HTML alone does not
// expose it; the feed paginator back-fills it from the first feed page.
type Profile struct {
	UserID         string    `json:"user_id"`
	Username       string    `json:"username"`
	FullName       string    `json:"full_name"`
	Biography      string    `json:"biography"`
	FollowerCount  int       `json:"follower_count"`
	FollowingCount int       `json:"following_count"`
	PostsCount     int       `json:"posts_count"`
	ProfilePicURL  string    `json:"profile_pic_url"`
	ScrapedAt      time.Time `json:"scraped_at"`
}

// Post is one normalized feed item
type Post struct {
	ID            string    `json:"id"`
	Shortcode     string    `json:"shortcode"`
	Caption       string    `json:"caption,omitempty"`
	LikeCount     int       `json:"like_count"`
	CommentCount  int       `json:"comment_count"`
	ViewCount     int64     `json:"view_count,omitempty"`
	Timestamp     int64     `json:"timestamp"`
	MediaType     string    `json:"media_type"`
	IsVideo       bool      `json:"is_video"`
	VideoDuration float64   `json:"video_duration,omitempty"`
	MediaURLs     []string  `json:"media_urls"`
	ThumbnailURL  string    `json:"thumbnail_url,omitempty"`
	Location      *Location `json:"location,omitempty"`
	OwnerUsername string    `json:"owner_username"`
	OwnerID       string    `json:"owner_id"`
	ScrapedAt     time.Time `json:"scraped_at"`
}

// Permalink derives the canonical post URL from the shortcode. It is a
// pure function of the shortcode and cannot be set independently.
func (p Post) Permalink() string {
	if p.Shortcode == "" {
		return ""
	}
	return fmt.Sprintf("https://www.instagram.com/p/%s/", p.Shortcode)
}

// TakenAt derives the post's calendar time from its unix timestamp.
func (p Post) TakenAt() time.Time {
	if p.Timestamp == 0 {
		return time.Time{}
	}
	return time.Unix(p.Timestamp, 0).UTC()
}

// ScrapeResult is the complete outcome of one account scrape. A partial
// result carries everything accumulated before the failure plus a
// non-empty Errors list.
type ScrapeResult struct {
	Profile           Profile   `json:"profile"`
	Posts             []Post    `json:"posts"`
	TotalPostsScraped int       `json:"total_posts_scraped"`
	HasMorePosts      bool      `json:"has_more_posts"`
	ScrapeCompletedAt time.Time `json:"scrape_completed_at"`
	Errors            []string  `json:"errors"`
}
