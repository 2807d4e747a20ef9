package payment

import (
	"time"

	"github.com/MikageWorks/UnseiPay/internal/pkg/cache"
)

// issueLockTTL bounds how long an issuance lock can be held by a crashed
// request before it self-releases.
const issueLockTTL = 10 * time.Second

// defaultLocker serializes issuance per user with a redis-backed mutex.
type defaultLocker struct{}

func (defaultLocker) Lock(name string) (func(), error) {
	mu := cache.NewMutex(name, issueLockTTL)
	if err := mu.Lock(); err != nil {
		return nil, err
	}
	return func() {
		_, _ = mu.Unlock()
	}, nil
}
