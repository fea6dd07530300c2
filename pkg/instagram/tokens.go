package instagram

import (
	"regexp"

	"igfetch/pkg/models"
)

// Token discovery is three-tiered: a primary embedded pattern, a secondary
// embedding, and a hardcoded last-resort constant. The constants trade
// freshness for availability; they will go stale eventually and need
// periodic refresh against a live page.
var (
	appIDPattern    = regexp.MustCompile(`"X-IG-App-ID":"(\d+)"`)
	appIDAltPattern = regexp.MustCompile(`\{"APP_ID":"(\d+)"`)
	asbdIDPattern   = regexp.MustCompile(`"X-ASBD-ID":"(\d+)"`)
)

const (
	fallbackAppID  = "936619743392459"
	fallbackASBDID = "129477"
)

// ExtractAppID pulls the application id from page source, falling back to
// the known historical constant when both patterns miss.
func ExtractAppID(html string) string {
	if m := appIDPattern.FindStringSubmatch(html); m != nil {
		return m[1]
	}
	if m := appIDAltPattern.FindStringSubmatch(html); m != nil {
		return m[1]
	}
	return fallbackAppID
}

// ExtractASBDID pulls the anti-bot signature id from page source
func ExtractASBDID(html string) string {
	if m := asbdIDPattern.FindStringSubmatch(html); m != nil {
		return m[1]
	}
	return fallbackASBDID
}

// DiscoverTokens extracts all session tokens from page HTML. The csrf
// token always comes from cookie state; it is never synthesized here.
func DiscoverTokens(html, csrfToken string) models.SessionTokens {
	return models.SessionTokens{
		AppID:     ExtractAppID(html),
		CSRFToken: csrfToken,
		ASBDID:    ExtractASBDID(html),
	}
}
