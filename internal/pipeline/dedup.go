package pipeline

import (
	"strings"

	"github.com/filingradar/filingradar/internal/domain"
	"github.com/filingradar/filingradar/pkg/utils"
)

const (
	DefaultDedupCapacity = 1000
	fingerprintChars     = 100
)

type dedupEntry struct {
	key   string
	print string
}

// DedupCache is the bounded seen-set suppressing duplicate delivery across the
// polling and push paths. A record counts as seen when its identity key
// matches, or when its content fingerprint matches one admitted earlier under
// a different synthesized key.
//
// Not safe for concurrent use; the live coordinator owns it exclusively.
type DedupCache struct {
	capacity int
	keys     map[string]struct{}
	prints   map[string]struct{}
	order    []dedupEntry
}

func NewDedupCache(capacity int) *DedupCache {
	if capacity <= 0 {
		capacity = DefaultDedupCapacity
	}
	c := &DedupCache{capacity: capacity}
	c.Clear()
	return c
}

// Fingerprint derives the secondary duplicate signal: company, summary prefix
// and raw date joined with a separator. Empty parts are filtered so partial
// records still fingerprint usefully; a record with nothing to hash yields ""
// and is exempt from fingerprint matching.
func Fingerprint(a domain.Announcement) string {
	parts := utils.RemoveEmptyStrings([]string{
		a.Company,
		utils.TruncateRunes(a.Summary, fingerprintChars),
		a.RawDate,
	})
	return strings.Join(parts, "|")
}

func (c *DedupCache) Seen(a domain.Announcement) bool {
	if _, ok := c.keys[a.IdentityKey]; ok {
		return true
	}
	if print := Fingerprint(a); print != "" {
		if _, ok := c.prints[print]; ok {
			return true
		}
	}
	return false
}

func (c *DedupCache) Add(a domain.Announcement) {
	if _, ok := c.keys[a.IdentityKey]; ok {
		return
	}

	print := Fingerprint(a)
	c.keys[a.IdentityKey] = struct{}{}
	if print != "" {
		c.prints[print] = struct{}{}
	}
	c.order = append(c.order, dedupEntry{key: a.IdentityKey, print: print})

	if len(c.order) > c.capacity {
		c.evict()
	}
}

// evict keeps only the most recently added half, in insertion order. This
// approximates LRU without tracking access times; event volume is low enough
// that the approximation never matters in practice.
func (c *DedupCache) evict() {
	keep := len(c.order) / 2
	drop := c.order[:len(c.order)-keep]
	for _, e := range drop {
		delete(c.keys, e.key)
		if e.print != "" {
			delete(c.prints, e.print)
		}
	}
	c.order = append([]dedupEntry(nil), c.order[len(c.order)-keep:]...)
}

// Clear resets all seen-state. Invoked on live-channel (re)connection so a
// backlog replay is not mistaken for stale duplicates.
func (c *DedupCache) Clear() {
	c.keys = make(map[string]struct{})
	c.prints = make(map[string]struct{})
	c.order = nil
}

func (c *DedupCache) Len() int {
	return len(c.order)
}
