package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPermalinkDerivation(t *testing.T) {
	post := Post{Shortcode: "ABC123"}

	want := "https://www.instagram.com/p/ABC123/"
	assert.Equal(t, want, post.Permalink())
	// Pure function: same result on every call
	assert.Equal(t, want, post.Permalink())

	assert.Empty(t, Post{}.Permalink())
}

func TestTakenAtDerivation(t *testing.T) {
	post := Post{Timestamp: 1700000000}

	want := time.Unix(1700000000, 0).UTC()
	assert.Equal(t, want, post.TakenAt())
	assert.Equal(t, time.UTC, post.TakenAt().Location())

	assert.True(t, Post{}.TakenAt().IsZero())
}
