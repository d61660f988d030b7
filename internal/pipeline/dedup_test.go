package pipeline

import (
	"fmt"
	"strings"
	"testing"

	"github.com/filingradar/filingradar/internal/domain"
	"github.com/stretchr/testify/assert"
)

func announcement(key, company, summary, date string) domain.Announcement {
	return domain.Announcement{
		IdentityKey: key,
		Company:     company,
		Summary:     summary,
		RawDate:     date,
	}
}

func TestDedupCache_SeenAfterAdd(t *testing.T) {
	c := NewDedupCache(0)

	rec := announcement("k1", "Acme", "Dividend declared.", "2025-06-01T10:00:00")
	assert.False(t, c.Seen(rec))

	c.Add(rec)
	assert.True(t, c.Seen(rec))
}

func TestDedupCache_FingerprintCatchesRekeyedDuplicate(t *testing.T) {
	c := NewDedupCache(0)

	// Push-delivered duplicate of an already-polled record: same company,
	// date and summary prefix, different synthesized identity key.
	first := announcement("corp-1", "Acme", "Dividend of Rs 5 declared by the board.", "2025-06-01T10:00:00")
	second := announcement("corp-2", "Acme", "Dividend of Rs 5 declared by the board.", "2025-06-01T10:00:00")

	c.Add(first)
	assert.True(t, c.Seen(second))
}

func TestDedupCache_FingerprintUsesSummaryPrefix(t *testing.T) {
	c := NewDedupCache(0)

	prefix := strings.Repeat("x", fingerprintChars)
	first := announcement("a", "Acme", prefix+" tail one", "2025-06-01")
	second := announcement("b", "Acme", prefix+" tail two", "2025-06-01")

	c.Add(first)
	// Divergence past the prefix does not defeat the fingerprint.
	assert.True(t, c.Seen(second))
}

func TestDedupCache_PartialFieldsDegradeGracefully(t *testing.T) {
	c := NewDedupCache(0)

	empty := domain.Announcement{IdentityKey: "only-key"}
	c.Add(empty)

	// A record with no fingerprintable content matches by key only.
	assert.True(t, c.Seen(domain.Announcement{IdentityKey: "only-key"}))
	assert.False(t, c.Seen(domain.Announcement{IdentityKey: "other"}))
}

func TestDedupCache_EvictionBound(t *testing.T) {
	const capacity = 10
	c := NewDedupCache(capacity)

	for i := 0; i < capacity*3; i++ {
		c.Add(announcement(fmt.Sprintf("k%d", i), "Acme", fmt.Sprintf("summary %d", i), "2025-06-01"))

		assert.LessOrEqual(t, c.Len(), capacity)
		// The most recently added key always survives eviction.
		assert.True(t, c.Seen(announcement(fmt.Sprintf("k%d", i), "Acme", fmt.Sprintf("summary %d", i), "2025-06-01")))
	}

	// The oldest half is gone.
	assert.False(t, c.Seen(announcement("k0", "Acme", "summary 0", "2025-06-01")))
}

func TestDedupCache_Clear(t *testing.T) {
	c := NewDedupCache(0)

	rec := announcement("k1", "Acme", "text", "2025-06-01")
	c.Add(rec)
	c.Clear()

	assert.Zero(t, c.Len())
	assert.False(t, c.Seen(rec))
}

func TestDedupCache_AddIsIdempotentPerKey(t *testing.T) {
	c := NewDedupCache(0)

	rec := announcement("k1", "Acme", "text", "2025-06-01")
	c.Add(rec)
	c.Add(rec)

	assert.Equal(t, 1, c.Len())
}
