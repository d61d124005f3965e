package catalog

import (
	"context"
	"sync"

	"watchparty/internal/core/domain"
	"watchparty/internal/core/ports"
	"watchparty/pkg/config"
)

// MemoryCatalog is a read-only slug lookup seeded from configuration. The
// real catalog (browsing, search, detail pages) is collaborator territory;
// the engine only ever calls Resolve and never writes back.
type MemoryCatalog struct {
	mu     sync.RWMutex
	movies map[string]*domain.Movie
}

func NewMemoryCatalog(entries []config.MovieEntry) ports.CatalogResolver {
	movies := make(map[string]*domain.Movie, len(entries))
	for _, e := range entries {
		movies[e.Slug] = &domain.Movie{
			Slug:      e.Slug,
			Title:     e.Title,
			Poster:    e.Poster,
			StreamURL: e.StreamURL,
		}
	}
	return &MemoryCatalog{movies: movies}
}

func (c *MemoryCatalog) Resolve(ctx context.Context, slug string) (*domain.Movie, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	movie, exists := c.movies[slug]
	if !exists {
		return nil, domain.ErrMovieNotFound
	}

	m := *movie
	return &m, nil
}
