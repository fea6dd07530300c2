// Package output persists scrape results as JSON documents.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	errs "igfetch/pkg/errors"
	"igfetch/pkg/logger"
	"igfetch/pkg/models"
)

// Writer persists scrape results under a base directory
type Writer struct {
	dir string
	log logger.Logger
}

// NewWriter creates the output directory if needed and returns a Writer
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeUnknown, "failed to create output directory", err)
	}
	return &Writer{dir: dir, log: logger.GetLogger()}, nil
}

// document is the serialized form of a scrape result. Permalink and
// taken-at are derived fields; they are materialized here so consumers
// of the JSON do not need to re-derive them.
type document struct {
	Profile           models.Profile `json:"profile"`
	Posts             []postDocument `json:"posts"`
	TotalPostsScraped int            `json:"total_posts_scraped"`
	HasMorePosts      bool           `json:"has_more_posts"`
	ScrapeCompletedAt time.Time      `json:"scrape_completed_at"`
	Errors            []string       `json:"errors"`
}

type postDocument struct {
	models.Post
	Permalink string `json:"permalink,omitempty"`
	TakenAt   string `json:"taken_at,omitempty"`
}

func toDocument(result *models.ScrapeResult) document {
	posts := make([]postDocument, len(result.Posts))
	for i, post := range result.Posts {
		doc := postDocument{Post: post, Permalink: post.Permalink()}
		if taken := post.TakenAt(); !taken.IsZero() {
			doc.TakenAt = taken.Format(time.RFC3339)
		}
		posts[i] = doc
	}

	errors := result.Errors
	if errors == nil {
		errors = []string{}
	}

	return document{
		Profile:           result.Profile,
		Posts:             posts,
		TotalPostsScraped: result.TotalPostsScraped,
		HasMorePosts:      result.HasMorePosts,
		ScrapeCompletedAt: result.ScrapeCompletedAt,
		Errors:            errors,
	}
}

// Filename builds the default result filename for a username
func Filename(username string, at time.Time) string {
	return fmt.Sprintf("%s_%s.json", username, at.Format("20060102_150405"))
}

// Write persists one result as <username>_<timestamp>.json under the
// writer's directory and returns the written path.
func (w *Writer) Write(result *models.ScrapeResult) (string, error) {
	name := Filename(result.Profile.Username, result.ScrapeCompletedAt)
	return w.WriteNamed(result, name)
}

// WriteNamed persists one result under an explicit filename. The write
// goes through a temp file so a crash never leaves a half-written
// document behind.
func (w *Writer) WriteNamed(result *models.ScrapeResult, name string) (string, error) {
	path := filepath.Join(w.dir, name)

	data, err := json.MarshalIndent(toDocument(result), "", "  ")
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeUnknown, "failed to serialize result", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return "", errs.Wrap(errs.ErrorTypeUnknown, "failed to write result file", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", errs.Wrap(errs.ErrorTypeUnknown, "failed to finalize result file", err)
	}

	w.log.InfoWithFields("result written", map[string]interface{}{
		"path":  path,
		"posts": result.TotalPostsScraped,
	})

	return path, nil
}
