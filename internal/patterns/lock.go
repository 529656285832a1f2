package patterns

import (
	"hash/fnv"
	"sync"
)

// keyedMutex stripes locks by pattern key so concurrent learners serialize
// per key, not per manager. Stripe count matches the store shard count.
type keyedMutex struct {
	stripes [shardCount]sync.Mutex
}

// lock acquires the stripe for key and returns its release func.
func (k *keyedMutex) lock(key string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	mu := &k.stripes[h.Sum32()%shardCount]
	mu.Lock()
	return mu.Unlock
}
