package cache

import (
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
)

var (
	rs     *redsync.Redsync
	rsOnce sync.Once
)

// GetRedsync returns the shared redsync instance backed by the cache client.
func GetRedsync() *redsync.Redsync {
	rsOnce.Do(func() {
		pool := goredis.NewPool(GetClient())
		rs = redsync.New(pool)
	})
	return rs
}

// NewMutex creates a named distributed mutex with a processing-scoped expiry.
func NewMutex(name string, expiry time.Duration) *redsync.Mutex {
	return GetRedsync().NewMutex(name, redsync.WithExpiry(expiry), redsync.WithTries(3))
}
