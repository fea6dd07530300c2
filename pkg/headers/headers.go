// Package headers builds internally consistent browser header sets. A
// profile is pinned once per session; every request for that session
// presents the same identity.
package headers

import (
	"fmt"
	"math/rand"
	"sort"

	http "github.com/bogdanfinn/fhttp"
)

// Profile is one synthetic browser identity. It is an immutable value:
// chosen at session construction and threaded through every request
// builder, never mutated afterward.
type Profile struct {
	Name           string
	UserAgent      string
	AcceptLanguage string

	// Client-hint headers. Only Chromium-family browsers send these; a
	// profile without them must omit the headers entirely, since sending
	// blanks from a Firefox or Safari user agent is a detectable
	// inconsistency.
	SecCHUA         string
	SecCHUAMobile   string
	SecCHUAPlatform string
}

// hasClientHints reports whether this browser family sends Sec-CH-UA headers
func (p Profile) hasClientHints() bool {
	return p.SecCHUA != ""
}

var profiles = map[string]Profile{
	"chrome-windows": {
		Name: "chrome-windows",
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
			"AppleWebKit/537.36 (KHTML, like Gecko) " +
			"Chrome/120.0.0.0 Safari/537.36",
		AcceptLanguage:  "en-US,en;q=0.9",
		SecCHUA:         `"Not_A Brand";v="8", "Chromium";v="120", "Google Chrome";v="120"`,
		SecCHUAMobile:   "?0",
		SecCHUAPlatform: `"Windows"`,
	},
	"chrome-mac": {
		Name: "chrome-mac",
		UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
			"AppleWebKit/537.36 (KHTML, like Gecko) " +
			"Chrome/120.0.0.0 Safari/537.36",
		AcceptLanguage:  "en-US,en;q=0.9",
		SecCHUA:         `"Not_A Brand";v="8", "Chromium";v="120", "Google Chrome";v="120"`,
		SecCHUAMobile:   "?0",
		SecCHUAPlatform: `"macOS"`,
	},
	"firefox-windows": {
		Name: "firefox-windows",
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) " +
			"Gecko/20100101 Firefox/121.0",
		AcceptLanguage: "en-US,en;q=0.5",
	},
	"safari-mac": {
		Name: "safari-mac",
		UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0) " +
			"AppleWebKit/605.1.15 (KHTML, like Gecko) " +
			"Version/17.0 Safari/605.1.15",
		AcceptLanguage: "en-US,en;q=0.9",
	},
	"edge-windows": {
		Name: "edge-windows",
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
			"AppleWebKit/537.36 (KHTML, like Gecko) " +
			"Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
		AcceptLanguage:  "en-US,en;q=0.9",
		SecCHUA:         `"Not_A Brand";v="8", "Chromium";v="120", "Microsoft Edge";v="120"`,
		SecCHUAMobile:   "?0",
		SecCHUAPlatform: `"Windows"`,
	},
}

// documentHeaderOrder is the wire order for document navigation requests
var documentHeaderOrder = []string{
	"user-agent",
	"accept",
	"accept-language",
	"accept-encoding",
	"cache-control",
	"pragma",
	"sec-ch-ua",
	"sec-ch-ua-mobile",
	"sec-ch-ua-platform",
	"sec-fetch-dest",
	"sec-fetch-mode",
	"sec-fetch-site",
	"sec-fetch-user",
	"upgrade-insecure-requests",
}

// ajaxHeaderOrder is the wire order for XHR requests against the feed API
var ajaxHeaderOrder = []string{
	"user-agent",
	"accept",
	"accept-language",
	"accept-encoding",
	"x-requested-with",
	"x-ig-app-id",
	"x-csrftoken",
	"x-asbd-id",
	"sec-ch-ua",
	"sec-ch-ua-mobile",
	"sec-ch-ua-platform",
	"sec-fetch-dest",
	"sec-fetch-mode",
	"sec-fetch-site",
	"referer",
}

// ByName returns the named profile from the catalog
func ByName(name string) (Profile, error) {
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown header profile: %q", name)
	}
	return p, nil
}

// Random picks a profile from the catalog
func Random() Profile {
	names := Names()
	return profiles[names[rand.Intn(len(names))]]
}

// Names returns the catalog's profile names in stable order
func Names() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Base returns headers for document navigation requests
func (p Profile) Base() http.Header {
	h := http.Header{}
	h.Set("User-Agent", p.UserAgent)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	h.Set("Accept-Language", p.AcceptLanguage)
	h.Set("Accept-Encoding", "gzip, deflate")
	h.Set("Cache-Control", "no-cache")
	h.Set("Pragma", "no-cache")
	h.Set("Sec-Fetch-Dest", "document")
	h.Set("Sec-Fetch-Mode", "navigate")
	h.Set("Sec-Fetch-Site", "none")
	h.Set("Sec-Fetch-User", "?1")
	h.Set("Upgrade-Insecure-Requests", "1")

	p.applyClientHints(h)
	h[http.HeaderOrderKey] = documentHeaderOrder

	return h
}

// AJAX returns headers for feed API requests. The csrf and app-id tokens
// come from the session; the asbd id header is attached only when the
// session discovered one.
func (p Profile) AJAX(appID, csrfToken, asbdID string) http.Header {
	h := http.Header{}
	h.Set("User-Agent", p.UserAgent)
	h.Set("Accept", "*/*")
	h.Set("Accept-Language", p.AcceptLanguage)
	h.Set("Accept-Encoding", "gzip, deflate")
	h.Set("X-Requested-With", "XMLHttpRequest")
	h.Set("X-IG-App-ID", appID)
	h.Set("X-CSRFToken", csrfToken)
	if asbdID != "" {
		h.Set("X-ASBD-ID", asbdID)
	}
	h.Set("Sec-Fetch-Dest", "empty")
	h.Set("Sec-Fetch-Mode", "cors")
	h.Set("Sec-Fetch-Site", "same-origin")
	h.Set("Referer", "https://www.instagram.com/")

	p.applyClientHints(h)
	h[http.HeaderOrderKey] = ajaxHeaderOrder

	return h
}

func (p Profile) applyClientHints(h http.Header) {
	if !p.hasClientHints() {
		return
	}
	h.Set("Sec-CH-UA", p.SecCHUA)
	h.Set("Sec-CH-UA-Mobile", p.SecCHUAMobile)
	h.Set("Sec-CH-UA-Platform", p.SecCHUAPlatform)
}
