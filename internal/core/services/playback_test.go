package services

import (
	"testing"

	"watchparty/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func TestPlaybackApplyNewer(t *testing.T) {
	sync := NewPlaybackSync(testLogger())

	adopted := sync.Apply(domain.PlaybackState{CurrentTime: 120, IsPlaying: true, LastUpdated: 1000, UpdatedBy: testUserID})
	assert.True(t, adopted)
	assert.Equal(t, float64(120), sync.Current().CurrentTime)
	assert.True(t, sync.Current().IsPlaying)
}

func TestPlaybackDiscardsStale(t *testing.T) {
	sync := NewPlaybackSync(testLogger())
	sync.Apply(domain.PlaybackState{CurrentTime: 120, IsPlaying: true, LastUpdated: 2000, UpdatedBy: testUserID})

	// An older write arriving late must not rewind the clock
	adopted := sync.Apply(domain.PlaybackState{CurrentTime: 30, IsPlaying: false, LastUpdated: 1000, UpdatedBy: testUserID})
	assert.False(t, adopted)
	assert.Equal(t, float64(120), sync.Current().CurrentTime)
}

func TestPlaybackEqualTimestampIsStale(t *testing.T) {
	sync := NewPlaybackSync(testLogger())
	sync.Apply(domain.PlaybackState{CurrentTime: 120, IsPlaying: true, LastUpdated: 2000, UpdatedBy: testUserID})

	adopted := sync.Apply(domain.PlaybackState{CurrentTime: 999, IsPlaying: false, LastUpdated: 2000, UpdatedBy: testUserID})
	assert.False(t, adopted)
	assert.Equal(t, float64(120), sync.Current().CurrentTime)
	assert.True(t, sync.Current().IsPlaying)
}
