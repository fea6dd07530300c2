package instagram

import (
	"strings"

	errs "igfetch/pkg/errors"
)

// Classification is the block detector's verdict on a response
type Classification string

const (
	ClassificationNone              Classification = "none"
	ClassificationLoginRequired     Classification = "login_required"
	ClassificationChallengeRequired Classification = "challenge_required"
	ClassificationRateLimited       Classification = "rate_limited"
	ClassificationNotFound          Classification = "not_found"
)

// Phrase tables scanned case-insensitively against the body. Checked in
// order; within a table the first match wins.
var blockPatterns = []struct {
	classification Classification
	phrases        []string
}{
	{ClassificationLoginRequired, []string{
		"login required",
		"please wait a few minutes before you try again",
	}},
	{ClassificationChallengeRequired, []string{
		"checkpoint_required",
	}},
	{ClassificationNotFound, []string{
		"page not found",
		"sorry, this page isn",
	}},
	{ClassificationRateLimited, []string{
		"please wait a few minutes",
		"rate limit",
	}},
}

const (
	loginRedirectPath     = "/accounts/login"
	challengeRedirectPath = "/challenge"

	// A rendered page with both og markers is conclusive proof of
	// unblocked content, regardless of what the phrase scan would say.
	titleMarker       = `property="og:title"`
	descriptionMarker = `property="og:description"`

	// Bodies shorter than this without the expected marker token look
	// truncated rather than denied.
	minPlausibleBodyLength = 1000
	expectedBodyMarker     = "username"
)

// Classify inspects the response's final path and body and returns the
// block classification. The og-marker suppression rule overrides the
// phrase scan: both markers present forces None.
func Classify(finalPath, body string) Classification {
	if strings.Contains(finalPath, loginRedirectPath) {
		return ClassificationLoginRequired
	}
	if strings.Contains(finalPath, challengeRedirectPath) {
		return ClassificationChallengeRequired
	}

	if strings.Contains(body, titleMarker) && strings.Contains(body, descriptionMarker) {
		return ClassificationNone
	}

	lower := strings.ToLower(body)
	for _, table := range blockPatterns {
		for _, phrase := range table.phrases {
			if strings.Contains(lower, phrase) {
				return table.classification
			}
		}
	}

	return ClassificationNone
}

// CheckBlocks classifies a response and converts the verdict into a typed
// error. It runs after every request that produced a response, before any
// parsing. A clean but implausibly small body yields a generic retryable
// signal, distinguishing truncation from a denial.
func CheckBlocks(finalPath, body string) error {
	switch c := Classify(finalPath, body); c {
	case ClassificationLoginRequired:
		return errs.New(errs.ErrorTypeLoginRequired, "redirected to login page")
	case ClassificationChallengeRequired:
		return errs.New(errs.ErrorTypeChallengeRequired, "challenge/verification required")
	case ClassificationRateLimited:
		return errs.New(errs.ErrorTypeRateLimit, "rate limit phrase in response body")
	case ClassificationNotFound:
		return errs.New(errs.ErrorTypeNotFound, "page not found")
	}

	// Both og markers present means conclusive content; skip the
	// truncation heuristic as well.
	if strings.Contains(body, titleMarker) && strings.Contains(body, descriptionMarker) {
		return nil
	}

	if len(body) < minPlausibleBodyLength && !strings.Contains(body, expectedBodyMarker) {
		return errs.New(errs.ErrorTypeRetryable, "empty or minimal response received")
	}

	return nil
}
