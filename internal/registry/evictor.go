// evictor.go houses the eviction loop for Registry.  Every EvictInterval
// it scans the map and removes:
//
//   - board handles idle longer than idleTTL
//   - least-recently-used handles when map size exceeds maxEntries
//
// Eviction only closes the pool; the database file stays on disk, so the
// next request for that board re-opens it transparently.  Each eviction
// event is logged and updates Prometheus counters.
package registry

import (
	"sort"
	"sync/atomic"
	"time"

	"github.com/yakboard/yakboard/internal/metrics"
)

func (r *Registry) evictLoop() {
	for {
		select {
		case <-r.quit:
			return
		case <-r.evictTicker.C:
		}
		now := time.Now().UnixNano()
		var count int

		// ----------------------------------------------------------------
		// Idle eviction pass
		// ----------------------------------------------------------------
		r.m.Range(func(key, value any) bool {
			count++
			ent := value.(*entry)
			idle := time.Duration(now-atomic.LoadInt64(&ent.lastSeen)) * time.Nanosecond
			if idle > r.idleTTL {
				_ = ent.handle.Close()
				r.m.Delete(key)
				r.log.Infow("board evicted", "board", key, "idle", idle.Truncate(time.Second))
				metrics.BoardEvictTotal.Inc()
				metrics.ActiveBoards.Dec()
			}
			return true
		})

		// ----------------------------------------------------------------
		// LRU eviction pass
		// ----------------------------------------------------------------
		if r.maxEntries > 0 && count > r.maxEntries {
			type kv struct {
				key string
				at  int64
			}
			var all []kv
			r.m.Range(func(key, value any) bool {
				ent := value.(*entry)
				all = append(all, kv{key: key.(string), at: atomic.LoadInt64(&ent.lastSeen)})
				return true
			})
			sort.Slice(all, func(i, j int) bool { return all[i].at < all[j].at })
			for i := 0; i < count-r.maxEntries && i < len(all); i++ {
				if v, ok := r.m.LoadAndDelete(all[i].key); ok {
					_ = v.(*entry).handle.Close()
					r.log.Infow("board evicted", "board", all[i].key, "reason", "lru pressure")
					metrics.BoardEvictTotal.Inc()
					metrics.ActiveBoards.Dec()
				}
			}
		}
	}
}
