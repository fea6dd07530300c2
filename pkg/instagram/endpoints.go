package instagram

import (
	"fmt"
	"net/url"
)

const (
	// BaseURL is the target site root
	BaseURL = "https://www.instagram.com"
	// APIURL is the web API root
	APIURL = BaseURL + "/api/v1"
)

// ProfileURL returns the profile document URL for a username
func ProfileURL(username string) string {
	return fmt.Sprintf("%s/%s/", BaseURL, url.PathEscape(username))
}

// FeedURL returns the paginated feed API URL for a username. maxID is the
// opaque cursor from the previous page; empty on the first request.
func FeedURL(username string, count int, maxID string) string {
	u := fmt.Sprintf("%s/feed/user/%s/username/?count=%d", APIURL, url.PathEscape(username), count)
	if maxID != "" {
		u += "&max_id=" + url.QueryEscape(maxID)
	}
	return u
}
