package catalog

import (
	"context"
	"testing"

	"watchparty/internal/core/domain"
	"watchparty/pkg/config"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	c := NewMemoryCatalog([]config.MovieEntry{
		{Slug: "inception", Title: "Inception", Poster: "/p.jpg", StreamURL: "https://media.example.com/i.m3u8"},
	})

	movie, err := c.Resolve(context.Background(), "inception")
	assert.NoError(t, err)
	assert.Equal(t, "Inception", movie.Title)

	// Callers get a copy, not a handle into the catalog
	movie.Title = "mutated"
	again, _ := c.Resolve(context.Background(), "inception")
	assert.Equal(t, "Inception", again.Title)
}

func TestResolveUnknownSlug(t *testing.T) {
	c := NewMemoryCatalog(nil)
	_, err := c.Resolve(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrMovieNotFound)
}
