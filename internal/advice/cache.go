package advice

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// newAnswerCache holds at most size answers, each for ttl. A non-positive ttl
// disables caching and returns nil.
func newAnswerCache(size int, ttl time.Duration) *expirable.LRU[string, string] {
	if ttl <= 0 {
		return nil
	}

	return expirable.NewLRU[string, string](size, nil, ttl)
}
