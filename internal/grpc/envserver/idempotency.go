package envserver

import (
	"sync"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

const (
	defaultReplyTTL  = 10 * time.Minute
	maxCachedReplies = 1000
)

type cachedReply struct {
	reply     *structpb.Struct
	createdAt time.Time
}

// IdempotencyCache remembers Step replies by client request ID so that a
// retried request does not advance the episode twice.
type IdempotencyCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	replies map[string]cachedReply
	now     func() time.Time
}

func NewIdempotencyCache(ttl time.Duration) *IdempotencyCache {
	if ttl <= 0 {
		ttl = defaultReplyTTL
	}
	return &IdempotencyCache{
		ttl:     ttl,
		replies: make(map[string]cachedReply),
		now:     time.Now,
	}
}

// Check returns the reply stored under key, or nil.
func (c *IdempotencyCache) Check(key string) *structpb.Struct {
	if key == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.replies[key]
	if !ok || c.now().Sub(entry.createdAt) > c.ttl {
		return nil
	}
	return entry.reply
}

// Store caches reply under key. An empty key is ignored.
func (c *IdempotencyCache) Store(key string, reply *structpb.Struct) {
	if key == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.replies[key] = cachedReply{reply: reply, createdAt: c.now()}
	if len(c.replies) > maxCachedReplies {
		c.evictLocked()
	}
}

// Len returns the number of cached replies, expired ones included.
func (c *IdempotencyCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.replies)
}

// evictLocked drops expired replies, then the oldest ones until the cache
// is back under its bound. Must be called with mu held.
func (c *IdempotencyCache) evictLocked() {
	cutoff := c.now().Add(-c.ttl)
	for key, entry := range c.replies {
		if entry.createdAt.Before(cutoff) {
			delete(c.replies, key)
		}
	}
	for len(c.replies) > maxCachedReplies {
		var oldestKey string
		var oldest time.Time
		for key, entry := range c.replies {
			if oldestKey == "" || entry.createdAt.Before(oldest) {
				oldestKey, oldest = key, entry.createdAt
			}
		}
		delete(c.replies, oldestKey)
	}
}
