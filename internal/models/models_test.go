package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBlogPostBeforeCreateStampsDate(t *testing.T) {
	post := &BlogPost{Title: "  Hello World  ", Content: "body"}
	require.NoError(t, post.BeforeCreate(nil))

	require.Equal(t, "Hello World", post.Title)
	require.False(t, post.DatePosted.IsZero())
}

func TestBlogPostBeforeCreateKeepsExplicitDate(t *testing.T) {
	posted := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	post := &BlogPost{Title: "t", Content: "c", DatePosted: posted}
	require.NoError(t, post.BeforeCreate(nil))
	require.Equal(t, posted, post.DatePosted)
}

func TestBlogPostTable(t *testing.T) {
	require.Equal(t, "blog_post", BlogPost{}.TableName())
}

func TestCacheEntryExpired(t *testing.T) {
	now := time.Now()

	require.False(t, CacheEntry{}.Expired(now))
	require.False(t, CacheEntry{ExpiresAt: now.Add(time.Minute)}.Expired(now))
	require.True(t, CacheEntry{ExpiresAt: now.Add(-time.Second)}.Expired(now))
}
