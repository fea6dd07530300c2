// Package parse turns raw profile documents and feed API payloads into
// normalized records.
package parse

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	errs "igfetch/pkg/errors"
	"igfetch/pkg/models"
)

var (
	ogTitleRe       = regexp.MustCompile(`<meta property="og:title" content="([^"]+)"`)
	ogDescriptionRe = regexp.MustCompile(`<meta property="og:description" content="([^"]+)"`)
	ogImageRe       = regexp.MustCompile(`<meta property="og:image" content="([^"]+)"`)

	// og:title carries "Full Name (@username)"
	titleNameRe = regexp.MustCompile(`^(.+?)\s*\(@(\w+)\)`)

	// og:description carries "N Followers, M Following, P Posts - bio"
	followersRe = regexp.MustCompile(`(?i)([\d.,]+[KMB]?)\s*Followers`)
	followingRe = regexp.MustCompile(`(?i)([\d.,]+[KMB]?)\s*Following`)
	postsRe     = regexp.MustCompile(`(?i)([\d.,]+[KMB]?)\s*Posts`)
	bioRe       = regexp.MustCompile(`Posts\s*[-–]\s*(.+?)(?:$|\s*See Instagram)`)
)

// Count parses abbreviated count strings such as "31K", "1.5M", "2B", or
// "12,345". Empty or non-numeric input yields 0.
func Count(s string) int {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}

	multipliers := []struct {
		suffix string
		factor float64
	}{
		{"K", 1e3},
		{"M", 1e6},
		{"B", 1e9},
	}

	for _, m := range multipliers {
		if strings.HasSuffix(s, m.suffix) {
			val, err := strconv.ParseFloat(strings.TrimSuffix(s, m.suffix), 64)
			if err != nil {
				return 0
			}
			return int(val * m.factor)
		}
	}

	val, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return val
}

// Profile extracts a profile record from the document's og meta tags.
// A document with neither og:title nor og:description is a parse failure,
// never a silently empty record.
func Profile(htmlBody string) (models.Profile, error) {
	profile := models.Profile{ScrapedAt: time.Now().UTC()}

	titleMatch := ogTitleRe.FindStringSubmatch(htmlBody)
	descMatch := ogDescriptionRe.FindStringSubmatch(htmlBody)
	if titleMatch == nil && descMatch == nil {
		return models.Profile{}, errs.New(errs.ErrorTypeParsing,
			"could not extract profile data from HTML meta tags")
	}

	if titleMatch != nil {
		title := html.UnescapeString(titleMatch[1])
		if m := titleNameRe.FindStringSubmatch(title); m != nil {
			profile.FullName = strings.TrimSpace(m[1])
			profile.Username = m[2]
		}
	}

	if descMatch != nil {
		desc := html.UnescapeString(descMatch[1])
		if m := followersRe.FindStringSubmatch(desc); m != nil {
			profile.FollowerCount = Count(m[1])
		}
		if m := followingRe.FindStringSubmatch(desc); m != nil {
			profile.FollowingCount = Count(m[1])
		}
		if m := postsRe.FindStringSubmatch(desc); m != nil {
			profile.PostsCount = Count(m[1])
		}
		if m := bioRe.FindStringSubmatch(desc); m != nil {
			profile.Biography = strings.TrimSpace(m[1])
		}
	}

	if m := ogImageRe.FindStringSubmatch(htmlBody); m != nil {
		profile.ProfilePicURL = html.UnescapeString(m[1])
	}

	return profile, nil
}
